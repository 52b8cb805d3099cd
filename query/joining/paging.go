package joining

import (
	"github.com/satishbabariya/joinsql/query/filter"
	"github.com/satishbabariya/joinsql/telemetry"
)

// pagingTarget selects where the paging window applies: the root when it is
// denormalised and has no joins, otherwise the last join step. ok is false
// when the statement is paged with a plain LIMIT/OFFSET instead.
func (b *build) pagingTarget() (table string, ref tableRef, ids []string, sort []filter.SortBy, ok bool) {
	if b.isCount || !b.plan.Paged() || !b.planner.dialect.IsLimitOffsetSupported() {
		return "", tableRef{}, nil, nil, false
	}
	if len(b.joins) == 0 {
		if !b.plan.Denormalised {
			return "", tableRef{}, nil, nil, false
		}
		ids = b.plan.IDs
		if len(ids) == 0 {
			ids = b.rootPK
		}
		return b.plan.TypeName, b.rootRef, ids, b.plan.SortBy, len(ids) > 0
	}
	last := len(b.joins) - 1
	j := b.joins[last]
	return j.Table, b.refs[last], j.IDs, j.SortBy, len(j.IDs) > 0
}

// applyPaging joins the statement to a subquery selecting the distinct ids of
// the requested page, so a feature spread over several rows is never cut:
//
//	INNER JOIN (SELECT DISTINCT ids FROM t [WHERE f] ORDER BY ... LIMIT n OFFSET m) alias ON (...)
//
// It returns the id columns paged on, nil when paging was not applied this way.
func (b *build) applyPaging(f filter.Filter) ([]string, error) {
	table, target, ids, sort, ok := b.pagingTarget()
	if !ok {
		return nil, nil
	}
	d := b.planner.dialect
	scope := tableRef{table: table}

	sub := newSelect(scope.source(d))
	sub.distinct = true
	for _, id := range ids {
		sub.addColumn(scope.column(d, id))
	}
	o := &orderBy{seen: map[string]bool{}}
	for _, s := range sort {
		col := scope.column(d, s.Property)
		sub.addColumn(col)
		o.add(col, s.Order)
	}
	for _, id := range ids {
		col := scope.column(d, id)
		if !o.seen[col] {
			o.seen[col] = true
			o.items = append(o.items, col)
		}
	}
	sub.orderBy = o.items

	if !filter.IsInclude(f) {
		if err := b.scopeFilter(sub, scope, f); err != nil {
			return nil, err
		}
	}
	sub.limit = b.plan.limit()
	sub.offset = b.plan.StartIndex

	alias, _ := b.aliases.Assign(table)
	paged := tableRef{alias: alias}
	left := make([]string, len(ids))
	right := make([]string, len(ids))
	for i, id := range ids {
		left[i] = target.column(d, id)
		right[i] = paged.column(d, id)
	}
	b.stmt.joins = append(b.stmt.joins, joinClause{
		kind:   "INNER JOIN",
		source: sub.subquery(d, alias),
		on:     equalities(left, right),
	})

	telemetry.PagingSubqueries.Inc()
	return ids, nil
}

// scopeFilter adds f to a subquery scanning scope, with the side-table joins it needs
func (b *build) scopeFilter(sub *selectStmt, scope tableRef, f filter.Filter) error {
	pe := b.predicates(scope)
	joins, err := pe.MultiValueJoins(f)
	if err != nil {
		return err
	}
	sub.joins = append(sub.joins, joins...)
	where, err := pe.Encode(f)
	if err != nil {
		return err
	}
	sub.where = where
	return nil
}
