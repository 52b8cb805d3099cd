package joining

import (
	"context"
	"time"

	"github.com/satishbabariya/joinsql/internal/debug"
	"github.com/satishbabariya/joinsql/query/filter"
	"github.com/satishbabariya/joinsql/telemetry"
)

// BuildCountStatement generates a statement counting the distinct root
// features matched by plan. Paging and ordering are ignored.
func (p *Planner) BuildCountStatement(ctx context.Context, plan QueryPlan) (*Statement, error) {
	started := time.Now()
	st, err := p.buildCount(ctx, plan)
	if err != nil {
		telemetry.RecordFailure(failureReason(err))
		return nil, err
	}
	telemetry.RecordPlan(telemetry.KindCount, started)
	debug.Debug("joining count", "type", plan.TypeName, "sql", st.SQL, "args", len(st.Args))
	return st, nil
}

func (p *Planner) buildCount(ctx context.Context, plan QueryPlan) (*Statement, error) {
	if len(plan.Joins) == 0 && len(filter.NestedPaths(plan.Filter)) == 0 && !filter.HasMultiValued(plan.Filter) {
		return p.simpleCount(ctx, plan)
	}

	// count the feature ids of the full joining select
	inner, err := p.build(ctx, plan, true)
	if err != nil {
		return nil, err
	}
	d := p.dialect
	counted := tableRef{alias: countAlias}

	ids := inner.countIDs()
	for _, id := range ids {
		inner.stmt.addColumn(inner.rootRef.column(d, id))
	}
	distinct := newSelect(inner.stmt.subquery(d, countAlias))
	distinct.distinct = true
	for _, id := range ids {
		distinct.addColumn(counted.column(d, id))
	}
	if len(distinct.columns) == 0 {
		distinct.distinct = false
	}

	count := newSelect(distinct.subquery(d, distinctAlias))
	count.columns = []string{"COUNT(*)"}
	return inner.statement(count.render(d)), nil
}

// simpleCount counts the distinct ids of the root table:
//
//	SELECT COUNT(*) FROM (SELECT DISTINCT ids FROM root [WHERE f]) DISTINCT_TABLE
func (p *Planner) simpleCount(ctx context.Context, plan QueryPlan) (*Statement, error) {
	if err := validateSort(plan); err != nil {
		return nil, err
	}
	b, err := p.newBuild(ctx, plan, true)
	if err != nil {
		return nil, err
	}
	d := p.dialect

	ids := b.countIDs()
	inner := newSelect(b.rootRef.source(d))
	for _, id := range ids {
		inner.addColumn(b.rootRef.column(d, id))
	}
	if !filter.IsInclude(plan.Filter) {
		where, err := b.predicates(b.rootRef).Encode(plan.Filter)
		if err != nil {
			return nil, err
		}
		inner.where = where
	}

	if len(ids) == 0 {
		inner.columns = []string{"COUNT(*)"}
		return b.statement(inner.render(d)), nil
	}
	inner.distinct = true
	count := newSelect(inner.subquery(d, distinctAlias))
	count.columns = []string{"COUNT(*)"}
	return b.statement(count.render(d)), nil
}

// countIDs returns the columns identifying a root feature: the mapping's id
// columns when set, else the plan's ids, else the primary key
func (b *build) countIDs() []string {
	if m := b.plan.Mapping; m != nil && len(m.IDColumns) > 0 && m.SourceTable == b.plan.TypeName {
		return m.IDColumns
	}
	if b.plan.HasIDColumn() {
		return b.plan.IDs
	}
	return b.rootPK
}
