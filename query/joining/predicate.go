package joining

import (
	"context"
	"fmt"
	"strings"

	"github.com/satishbabariya/joinsql/mapping"
	"github.com/satishbabariya/joinsql/query/dialect"
	"github.com/satishbabariya/joinsql/query/encoder"
	"github.com/satishbabariya/joinsql/query/filter"
	"github.com/satishbabariya/joinsql/schema"
)

// PredicateEncoder encodes filters evaluated against one table reference of a
// joining statement. On top of the generic encoder it rewrites multi-valued
// references against their side tables and turns predicates on chained
// attributes into correlated EXISTS subqueries.
type PredicateEncoder struct {
	ctx     context.Context
	dialect dialect.Dialect
	lookup  schema.Lookup
	mapping *mapping.FeatureTypeMapping
	ref     tableRef
	params  *encoder.Params
	aliases *AliasTable
}

// NewPredicateEncoder creates an encoder for filters on table, referenced by
// alias when one is given. Literals are bound into params for prepared dialects.
func NewPredicateEncoder(ctx context.Context, d dialect.Dialect, lookup schema.Lookup, m *mapping.FeatureTypeMapping, table, alias string, params *encoder.Params) *PredicateEncoder {
	return &PredicateEncoder{
		ctx:     ctx,
		dialect: d,
		lookup:  lookup,
		mapping: m,
		ref:     tableRef{table: table, alias: alias},
		params:  params,
		aliases: NewAliasTable(table, alias),
	}
}

// WithAliases makes side tables and chain links take their aliases from
// aliases, the table of the statement the encoded SQL is part of
func (p *PredicateEncoder) WithAliases(aliases *AliasTable) *PredicateEncoder {
	p.aliases = aliases
	return p
}

// Encode renders f as a boolean SQL expression
func (p *PredicateEncoder) Encode(f filter.Filter) (string, error) {
	rewritten, err := p.rewriteMultiValued(f)
	if err != nil {
		return "", err
	}
	enc := encoder.New(p.dialect,
		encoder.WithFieldEncoder(p.field(p.ref)),
		encoder.WithParams(p.params),
		encoder.WithPredicateHook(p.nestedHook),
	)
	sql, err := enc.Encode(rewritten)
	if err != nil {
		return "", translationError(err)
	}
	return sql, nil
}

// MultiValueJoins returns the LEFT JOINs against the side tables referenced by f
func (p *PredicateEncoder) MultiValueJoins(f filter.Filter) ([]joinClause, error) {
	return p.multiValueJoins(p.mapping, p.ref, f)
}

// EncodeKey renders a join key expression inline. Multi-valued references are
// rewritten against their side tables, whose LEFT JOINs are returned with it.
func (p *PredicateEncoder) EncodeKey(x filter.Expression) (string, []joinClause, error) {
	holder := filter.IsNull{Expr: x}
	joins, err := p.MultiValueJoins(holder)
	if err != nil {
		return "", nil, err
	}
	rewritten, err := p.rewriteMultiValued(holder)
	if err != nil {
		return "", nil, err
	}
	sql, err := encodeKey(p.dialect, rewritten.(filter.IsNull).Expr, p.ref)
	if err != nil {
		return "", nil, err
	}
	return sql, joins, nil
}

// sideAlias returns the alias of a multi-valued side table
func (p *PredicateEncoder) sideAlias(table, id string) string {
	return p.aliases.Reserve(table+"/"+id, id)
}

func (p *PredicateEncoder) field(ref tableRef) encoder.FieldEncoder {
	return func(column string) string {
		return ref.column(p.dialect, column)
	}
}

// rewriteMultiValued replaces multi-valued markers with their value encoded
// against the side table, qualified with the side table id
func (p *PredicateEncoder) rewriteMultiValued(f filter.Filter) (filter.Filter, error) {
	return filter.RewriteExpressions(f, func(e filter.Expression) (filter.Expression, error) {
		mv, ok := e.(filter.MultiValued)
		if !ok {
			return e, nil
		}
		if mv.Value == nil {
			return nil, fmt.Errorf("%w: multi-valued reference %q has no value expression", ErrUnsupportedFilter, mv.ID)
		}
		alias := p.sideAlias(mv.TargetTable, mv.ID)
		side := encoder.New(p.dialect, encoder.WithFieldEncoder(func(column string) string {
			return p.dialect.QualifyColumn(alias, column)
		}))
		sql, err := side.EncodeExpression(mv.Value)
		if err != nil {
			return nil, err
		}
		return filter.Raw{SQL: sql}, nil
	})
}

// nestedHook encodes leaf predicates on a chained attribute as EXISTS
func (p *PredicateEncoder) nestedHook(e *encoder.Encoder, f filter.Filter) (string, bool, error) {
	paths := filter.NestedPaths(f)
	switch len(paths) {
	case 0:
		return "", false, nil
	case 1:
		sql, err := p.encodeNested(e, f, paths[0])
		return sql, err == nil, err
	default:
		return "", false, fmt.Errorf("%w: predicate compares nested attributes %s", ErrUnsupportedFilter, strings.Join(paths, ", "))
	}
}

func (p *PredicateEncoder) encodeNested(e *encoder.Encoder, f filter.Filter, path string) (string, error) {
	if p.mapping == nil {
		return "", fmt.Errorf("%w: nested attribute %q", ErrMissingMapping, path)
	}
	chain, err := mapping.ResolveFeatureChain(p.mapping, path)
	if err != nil {
		return "", err
	}
	if chain == nil {
		return "", fmt.Errorf("%w: %q is not a chained attribute of %s", ErrUnsupportedFilter, path, p.mapping.Name)
	}

	negate := false
	if chain.AttributePath == "" {
		// only null checks make sense on the nested feature itself
		isNull, ok := f.(filter.IsNull)
		if !ok {
			return "", fmt.Errorf("%w: %T on nested feature %q", ErrUnsupportedFilter, f, path)
		}
		negate = !isNull.Negate
	}

	exists, err := p.existsSubquery(e, f, path, chain)
	if err != nil {
		return "", err
	}
	if negate {
		return "NOT " + exists, nil
	}
	return exists, nil
}

// existsSubquery builds
//
//	EXISTS (SELECT <leaf pk> FROM leaf alias [LEFT JOIN side tables]
//	        [INNER JOIN link_i alias_i ON cond(i)]... WHERE <leaf predicate> AND cond(0))
//
// where cond(i) equates link i's source with link i+1's target.
func (p *PredicateEncoder) existsSubquery(e *encoder.Encoder, f filter.Filter, path string, chain *mapping.FeatureChain) (string, error) {
	refs := p.linkRefs(chain.Links)
	leaf := chain.Last()
	leafRef := refs[len(refs)-1]

	pk, err := p.lookup.LookupPrimaryKey(p.ctx, leaf.Table)
	if err != nil {
		return "", fmt.Errorf("%w: primary key of %s: %w", ErrSchemaLookup, leaf.Table, err)
	}

	sub := newSelect(leafRef.source(p.dialect))
	for _, col := range pk {
		sub.addColumn(leafRef.column(p.dialect, col))
	}
	if len(sub.columns) == 0 {
		sub.columns = []string{"1"}
	}

	var where []string
	if chain.AttributePath != "" {
		leafFilter, err := mapping.RenameProperty(f, path, chain.AttributePath)
		if err != nil {
			return "", err
		}
		if leafFilter, err = mapping.Unroll(leafFilter, leaf.Mapping); err != nil {
			return "", err
		}
		mvJoins, err := p.multiValueJoins(leaf.Mapping, leafRef, leafFilter)
		if err != nil {
			return "", err
		}
		sub.joins = append(sub.joins, mvJoins...)

		if leafFilter, err = p.rewriteMultiValued(leafFilter); err != nil {
			return "", err
		}
		predicate, err := e.Derive(
			encoder.WithFieldEncoder(p.field(leafRef)),
			encoder.WithPredicateHook(nil),
		).Encode(leafFilter)
		if err != nil {
			return "", err
		}
		where = append(where, predicate)
	}

	links := chain.Links
	for i := len(links) - 2; i >= 1; i-- {
		on, err := p.linkCondition(links, refs, i)
		if err != nil {
			return "", err
		}
		sub.joins = append(sub.joins, joinClause{kind: "INNER JOIN", source: refs[i].source(p.dialect), on: on})
	}

	root, err := p.linkCondition(links, refs, 0)
	if err != nil {
		return "", err
	}
	where = append(where, root)
	sub.where = strings.Join(where, " AND ")

	return "EXISTS (" + sub.render(p.dialect) + ")", nil
}

// linkRefs returns how each chain link is referenced. The root link is
// referenced the way the enclosing statement references it.
func (p *PredicateEncoder) linkRefs(links []mapping.ChainLink) []tableRef {
	refs := make([]tableRef, len(links))
	refs[0] = p.ref
	for i := 1; i < len(links); i++ {
		refs[i] = tableRef{table: links[i].Table, alias: p.aliases.Reserve(links[i].Alias, links[i].Alias)}
	}
	return refs
}

// linkCondition renders parent.Source = child.Target for links i and i+1
func (p *PredicateEncoder) linkCondition(links []mapping.ChainLink, refs []tableRef, i int) (string, error) {
	source, err := encodeKey(p.dialect, links[i].Source, refs[i])
	if err != nil {
		return "", err
	}
	target, err := encodeKey(p.dialect, links[i+1].Target, refs[i+1])
	if err != nil {
		return "", err
	}
	return source + " = " + target, nil
}

// encodeKey renders a join key expression inline against ref
func encodeKey(d dialect.Dialect, x filter.Expression, ref tableRef) (string, error) {
	enc := encoder.New(d, encoder.WithFieldEncoder(func(column string) string {
		return ref.column(d, column)
	}))
	sql, err := enc.EncodeExpression(x)
	if err != nil {
		return "", translationError(err)
	}
	return sql, nil
}

// multiValueJoins renders one LEFT JOIN per side table referenced by f,
// aliased by the side table id unless the statement already uses that name.
// Unreferenced side tables are not joined; the subqueries scanning them select DISTINCT keys.
func (p *PredicateEncoder) multiValueJoins(m *mapping.FeatureTypeMapping, ref tableRef, f filter.Filter) ([]joinClause, error) {
	d := p.dialect
	var ids []string
	seen := map[string]bool{}
	filter.Inspect(f, func(e filter.Expression) {
		if mv, ok := e.(filter.MultiValued); ok && !seen[mv.ID] {
			seen[mv.ID] = true
			ids = append(ids, mv.ID)
		}
	})
	if len(ids) == 0 {
		return nil, nil
	}
	if m == nil {
		return nil, fmt.Errorf("%w: multi-valued attribute %q", ErrMissingMapping, ids[0])
	}

	joins := make([]joinClause, 0, len(ids))
	for _, id := range ids {
		mv, ok := m.MultipleValue(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no multi-valued attribute %q", mapping.ErrMappingNotFound, m.Name, id)
		}
		alias := p.sideAlias(mv.TargetTable, mv.ID)
		joins = append(joins, joinClause{
			kind:   "LEFT JOIN",
			source: d.QuoteTable(mv.TargetTable) + " " + d.QuoteIdentifier(alias),
			on:     ref.column(d, mv.SourceColumn) + " = " + d.QualifyColumn(alias, mv.TargetColumn),
		})
	}
	return joins, nil
}
