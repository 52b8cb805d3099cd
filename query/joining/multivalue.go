package joining

import (
	"context"
	"fmt"
	"time"

	"github.com/satishbabariya/joinsql/internal/debug"
	"github.com/satishbabariya/joinsql/mapping"
	"github.com/satishbabariya/joinsql/query/filter"
	"github.com/satishbabariya/joinsql/telemetry"
)

// BuildMultiValueStatement generates the statement reading the side-table
// values of mv for the features selected by plan:
//
//	SELECT target.pk, target.props, target.targetColumn FROM target
//	INNER JOIN (<joining select of sourceColumn>) mv ON mv.sourceColumn = target.targetColumn
func (p *Planner) BuildMultiValueStatement(ctx context.Context, plan QueryPlan, mv *mapping.MultipleValue) (*Statement, error) {
	started := time.Now()
	st, err := p.buildMultiValue(ctx, plan, mv)
	if err != nil {
		telemetry.RecordFailure(failureReason(err))
		return nil, err
	}
	telemetry.RecordPlan(telemetry.KindMultiValue, started)
	debug.Debug("joining multi-valued", "type", plan.TypeName, "side_table", mv.TargetTable, "sql", st.SQL, "args", len(st.Args))
	return st, nil
}

func (p *Planner) buildMultiValue(ctx context.Context, plan QueryPlan, mv *mapping.MultipleValue) (*Statement, error) {
	if mv == nil {
		return nil, fmt.Errorf("%w: no multi-valued attribute", ErrMissingMapping)
	}
	inner, err := p.build(ctx, plan, false)
	if err != nil {
		return nil, err
	}
	d := p.dialect

	_, last := inner.last()
	inner.stmt.distinct = false
	inner.stmt.columns = []string{last.column(d, mv.SourceColumn)}
	if inner.stmt.limit < 0 && inner.stmt.offset == 0 {
		// a derived table only needs ordering to delimit a page
		inner.stmt.orderBy = nil
	}

	pk, err := inner.primaryKey(mv.TargetTable)
	if err != nil {
		return nil, err
	}
	target := tableRef{table: mv.TargetTable}
	sourced := tableRef{alias: valuesAlias}

	outer := newSelect(target.source(d))
	outer.distinct = true
	for _, col := range pk {
		outer.addColumn(target.column(d, col))
	}
	for _, col := range mv.Properties {
		outer.addColumn(target.column(d, col))
	}
	outer.addColumn(target.column(d, mv.TargetColumn))
	outer.joins = append(outer.joins, joinClause{
		kind:   "INNER JOIN",
		source: inner.stmt.subquery(d, valuesAlias),
		on:     sourced.column(d, mv.SourceColumn) + " = " + target.column(d, mv.TargetColumn),
	})

	o := &orderBy{seen: map[string]bool{}}
	o.add(target.column(d, mv.TargetColumn), filter.Ascending)
	for _, col := range pk {
		o.add(target.column(d, col), filter.Ascending)
	}
	outer.orderBy = o.items

	return inner.statement(outer.render(d)), nil
}
