package joining

import (
	"context"
	"fmt"
	"strconv"

	"github.com/satishbabariya/joinsql/query/filter"
	"github.com/satishbabariya/joinsql/schema"
)

// ResolveJoins returns copies of joins with empty id lists defaulted to the
// joined table's primary key. The input is not modified and resolving an
// already resolved list returns an equal list.
func ResolveJoins(ctx context.Context, lookup schema.Lookup, joins []JoinDescriptor) ([]JoinDescriptor, error) {
	resolved := make([]JoinDescriptor, len(joins))
	for i, j := range joins {
		j.SortBy = append([]filter.SortBy(nil), j.SortBy...)
		j.IDs = append([]string(nil), j.IDs...)
		if len(j.IDs) == 0 {
			pk, err := lookup.LookupPrimaryKey(ctx, j.Table)
			if err != nil {
				return nil, fmt.Errorf("%w: primary key of %s: %w", ErrSchemaLookup, j.Table, err)
			}
			j.IDs = pk
		}
		resolved[i] = j
	}
	return resolved, nil
}

// ForeignIDColumn names the surrogate column of id ordinal of join step
func ForeignIDColumn(step, ordinal int) string {
	return ForeignIDPrefix + "_" + strconv.Itoa(step) + "_" + strconv.Itoa(ordinal)
}

// ParentKeyColumn names the surrogate column of the root primary key ordinal
func ParentKeyColumn(ordinal int) string {
	return ParentKeyPrefix + "_" + strconv.Itoa(ordinal)
}

// joinKeys are the rendered key expressions of a join step
type joinKeys struct {
	foreign string
	joining string
}

// addJoins emits one INNER JOIN per step, aliasing tables already in use.
// Keys are encoded against their own table's mapping. Side tables of the
// joining key are joined before the step; those of the foreign key are
// nested with the step's table:
//
//	INNER JOIN (step LEFT JOIN side alias ON ...) ON (foreign = joining)
func (b *build) addJoins() error {
	d := b.planner.dialect
	prev := b.rootRef
	for i, j := range b.joins {
		ref := tableRef{table: j.Table}
		if alias, aliased := b.aliases.Assign(j.Table); aliased {
			ref.alias = alias
		}

		foreignKey, foreignSides, err := b.predicatesWith(ref, b.mappingOf(i)).EncodeKey(j.ForeignKey)
		if err != nil {
			return fmt.Errorf("foreign key of %s: %w", j.Table, err)
		}
		joiningKey, joiningSides, err := b.predicatesWith(prev, b.mappingOf(i-1)).EncodeKey(j.JoiningKey)
		if err != nil {
			return fmt.Errorf("joining key of %s: %w", j.Table, err)
		}

		source := ref.source(d)
		if len(foreignSides) > 0 {
			source = "(" + source + renderJoins(foreignSides) + ")"
		}
		b.stmt.joins = append(b.stmt.joins, joiningSides...)
		b.stmt.joins = append(b.stmt.joins, joinClause{
			kind:   "INNER JOIN",
			source: source,
			on:     "(" + foreignKey + " = " + joiningKey + ")",
		})
		b.refs = append(b.refs, ref)
		b.keys = append(b.keys, joinKeys{foreign: foreignKey, joining: joiningKey})
		prev = ref
	}
	return nil
}

// addSelectList emits the root primary key, the root attributes, the
// per-step foreign ids and the root key surrogates, in that order
func (b *build) addSelectList() {
	d := b.planner.dialect
	for _, pk := range b.rootPK {
		b.stmt.addColumn(b.rootRef.column(d, pk))
	}

	for _, name := range b.attributes() {
		if b.root.IsPrimaryKey(name) {
			continue
		}
		col, ok := b.root.Column(name)
		if ok && col.Geometry {
			b.stmt.addColumn(d.EncodeGeometryColumn(b.rootRef.column(d, name), col.SRID) + " AS " + d.QuoteIdentifier(name))
			continue
		}
		b.stmt.addColumn(b.rootRef.column(d, name))
	}

	for i, j := range b.joins {
		for k, id := range j.IDs {
			b.stmt.addColumn(b.refs[i].column(d, id) + " AS " + d.QuoteIdentifier(ForeignIDColumn(i, k)))
		}
	}

	if len(b.joins) > 0 && !b.plan.HasIDColumn() {
		for k, pk := range b.rootPK {
			b.stmt.addColumn(b.rootRef.column(d, pk) + " AS " + d.QuoteIdentifier(ParentKeyColumn(k)))
		}
	}
}

// attributes returns the requested root columns, every column when none are named
func (b *build) attributes() []string {
	if b.plan.Properties != nil {
		return b.plan.Properties
	}
	names := make([]string, 0, len(b.root.Columns))
	for _, c := range b.root.Columns {
		names = append(names, c.Name)
	}
	return names
}
