package joining

import (
	"context"
	"fmt"
	"time"

	"github.com/satishbabariya/joinsql/internal/debug"
	"github.com/satishbabariya/joinsql/mapping"
	"github.com/satishbabariya/joinsql/query/dialect"
	"github.com/satishbabariya/joinsql/query/encoder"
	"github.com/satishbabariya/joinsql/query/filter"
	"github.com/satishbabariya/joinsql/schema"
	"github.com/satishbabariya/joinsql/telemetry"
)

// Planner generates joining statements for one dialect. It holds no
// per-statement state and is safe for concurrent use.
type Planner struct {
	dialect dialect.Dialect
	lookup  schema.Lookup
}

// NewPlanner creates a planner. The lookup is consulted for primary keys and
// columns on every call, so callers wanting caching pass a schema.CachedLookup.
func NewPlanner(d dialect.Dialect, lookup schema.Lookup) *Planner {
	return &Planner{dialect: d, lookup: lookup}
}

// Dialect returns the planner's dialect
func (p *Planner) Dialect() dialect.Dialect {
	return p.dialect
}

// Lookup returns the planner's schema lookup
func (p *Planner) Lookup() schema.Lookup {
	return p.lookup
}

// build holds the state of one statement generation
type build struct {
	ctx     context.Context
	planner *Planner
	plan    QueryPlan
	isCount bool

	root    *schema.Table
	rootPK  []string
	rootRef tableRef
	joins   []JoinDescriptor
	refs    []tableRef
	keys    []joinKeys
	aliases *AliasTable
	params  *encoder.Params
	stmt    *selectStmt
}

// BuildSelectStatement generates the SELECT for plan
func (p *Planner) BuildSelectStatement(ctx context.Context, plan QueryPlan) (*Statement, error) {
	started := time.Now()
	b, err := p.build(ctx, plan, false)
	if err != nil {
		telemetry.RecordFailure(failureReason(err))
		return nil, err
	}
	st := b.statement(b.stmt.render(p.dialect))
	telemetry.RecordPlan(telemetry.KindSelect, started)
	debug.Debug("joining select", "type", plan.TypeName, "joins", len(plan.Joins), "sql", st.SQL, "args", len(st.Args))
	return st, nil
}

func (p *Planner) build(ctx context.Context, plan QueryPlan, isCount bool) (*build, error) {
	if err := validateSort(plan); err != nil {
		return nil, err
	}
	b, err := p.newBuild(ctx, plan, isCount)
	if err != nil {
		return nil, err
	}

	if err := b.addJoins(); err != nil {
		return nil, err
	}
	b.addSelectList()

	pagingIDs, err := b.applyPaging(plan.Filter)
	if err != nil {
		return nil, err
	}
	if err := b.addFilter(pagingIDs); err != nil {
		return nil, err
	}

	if !isCount {
		if err := b.addOrderBy(); err != nil {
			return nil, err
		}
		if pagingIDs == nil && p.dialect.IsLimitOffsetSupported() {
			b.stmt.limit = plan.limit()
			b.stmt.offset = plan.StartIndex
		}
	}
	return b, nil
}

func (p *Planner) newBuild(ctx context.Context, plan QueryPlan, isCount bool) (*build, error) {
	root, err := p.lookup.LookupTable(ctx, plan.TypeName)
	if err != nil {
		return nil, fmt.Errorf("%w: table %s: %w", ErrSchemaLookup, plan.TypeName, err)
	}
	joins, err := ResolveJoins(ctx, p.lookup, plan.Joins)
	if err != nil {
		return nil, err
	}
	rootRef := tableRef{table: plan.TypeName}
	return &build{
		ctx:     ctx,
		planner: p,
		plan:    plan,
		isCount: isCount,
		root:    root,
		rootPK:  root.PrimaryKeyColumns(),
		rootRef: rootRef,
		joins:   joins,
		aliases: NewAliasTable(plan.TypeName),
		params:  encoder.NewParams(),
		stmt:    newSelect(rootRef.source(p.dialect)),
	}, nil
}

func (b *build) statement(sql string) *Statement {
	aliases := make([]string, len(b.refs))
	for i, r := range b.refs {
		aliases[i] = r.alias
	}
	return &Statement{
		SQL:     sql,
		Args:    b.params.Values(),
		Joins:   b.joins,
		Aliases: aliases,
	}
}

// last returns the table the filter is written against: the last join step, or the root
func (b *build) last() (string, tableRef) {
	if len(b.joins) == 0 {
		return b.plan.TypeName, b.rootRef
	}
	i := len(b.joins) - 1
	return b.joins[i].Table, b.refs[i]
}

func (b *build) lastSort() []filter.SortBy {
	if len(b.joins) == 0 {
		return b.plan.SortBy
	}
	return b.joins[len(b.joins)-1].SortBy
}

func (b *build) primaryKey(table string) ([]string, error) {
	if table == b.plan.TypeName {
		return b.rootPK, nil
	}
	pk, err := b.planner.lookup.LookupPrimaryKey(b.ctx, table)
	if err != nil {
		return nil, fmt.Errorf("%w: primary key of %s: %w", ErrSchemaLookup, table, err)
	}
	return pk, nil
}

func (b *build) predicates(ref tableRef) *PredicateEncoder {
	return b.predicatesWith(ref, b.plan.Mapping)
}

func (b *build) predicatesWith(ref tableRef, m *mapping.FeatureTypeMapping) *PredicateEncoder {
	return NewPredicateEncoder(b.ctx, b.planner.dialect, b.planner.lookup, m, ref.table, ref.alias, b.params).WithAliases(b.aliases)
}

// mappingOf returns the mapping of join step i, or of the root when i is -1
func (b *build) mappingOf(i int) *mapping.FeatureTypeMapping {
	table := b.plan.TypeName
	if i >= 0 {
		if m := b.joins[i].Mapping; m != nil {
			return m
		}
		table = b.joins[i].Table
	}
	if m := b.plan.Mapping; m != nil && m.SourceTable == table {
		return m
	}
	return nil
}

// addFilter places the filter. Unless the plan asks for a subset, the
// filter selects keys through a DISTINCT subquery so every row sharing a
// matching key is returned:
//
//	INNER JOIN (SELECT DISTINCT keys FROM last WHERE f) temp_alias_used_for_filter ON (...)
//
// Otherwise it goes to the WHERE clause, unless the paging subquery already applied it.
func (b *build) addFilter(pagingIDs []string) error {
	f := b.plan.Filter
	if filter.IsInclude(f) {
		return nil
	}
	table, ref := b.last()

	if !b.plan.Subset {
		keys, err := b.filterKeys(table, pagingIDs)
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			return b.addFilterJoin(table, ref, keys, f)
		}
		if pagingIDs != nil {
			return nil
		}
	} else if pagingIDs != nil {
		return nil
	}

	pe := b.predicates(ref)
	joins, err := pe.MultiValueJoins(f)
	if err != nil {
		return err
	}
	b.stmt.joins = append(b.stmt.joins, joins...)
	where, err := pe.Encode(f)
	if err != nil {
		return err
	}
	b.stmt.where = where
	return nil
}

// filterKeys returns the columns of the filter join: the last step's sort
// keys, or its primary key, without the columns the paging subquery already joins on
func (b *build) filterKeys(table string, pagingIDs []string) ([]string, error) {
	var keys []string
	if sort := b.lastSort(); len(sort) > 0 {
		for _, s := range sort {
			keys = append(keys, s.Property)
		}
	} else {
		pk, err := b.primaryKey(table)
		if err != nil {
			return nil, err
		}
		keys = pk
	}

	paged := make(map[string]bool, len(pagingIDs))
	for _, id := range pagingIDs {
		paged[id] = true
	}
	out := keys[:0:0]
	seen := map[string]bool{}
	for _, k := range keys {
		if paged[k] || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out, nil
}

func (b *build) addFilterJoin(table string, ref tableRef, keys []string, f filter.Filter) error {
	d := b.planner.dialect
	scope := tableRef{table: table}

	sub := newSelect(scope.source(d))
	sub.distinct = true
	for _, k := range keys {
		sub.addColumn(scope.column(d, k))
	}
	if err := b.scopeFilter(sub, scope, f); err != nil {
		return err
	}

	alias, _ := b.aliases.Assign(filterAlias)
	temp := tableRef{alias: alias}
	left := make([]string, len(keys))
	right := make([]string, len(keys))
	for i, k := range keys {
		left[i] = ref.column(d, k)
		right[i] = temp.column(d, k)
	}
	b.stmt.joins = append(b.stmt.joins, joinClause{
		kind:   "INNER JOIN",
		source: sub.subquery(d, alias),
		on:     equalities(left, right),
	})
	return nil
}
