package joining

import (
	"fmt"

	"github.com/satishbabariya/joinsql/query/filter"
)

// validateSort rejects natural and reverse order keys anywhere in the plan
func validateSort(plan QueryPlan) error {
	check := func(table string, sort []filter.SortBy) error {
		for _, s := range sort {
			if s.IsNatural() {
				return fmt.Errorf("%w: %s", ErrNaturalOrder, table)
			}
		}
		return nil
	}
	if err := check(plan.TypeName, plan.SortBy); err != nil {
		return err
	}
	for _, j := range plan.Joins {
		if err := check(j.Table, j.SortBy); err != nil {
			return err
		}
	}
	return nil
}

// orderBy is the ORDER BY list under construction. A column is emitted once,
// the first time it is seen.
type orderBy struct {
	seen  map[string]bool
	items []string
}

func (o *orderBy) add(column string, order filter.SortOrder) {
	if o.seen[column] {
		return
	}
	o.seen[column] = true
	o.items = append(o.items, column+" "+order.String())
}

// addOrderBy walks the steps from the last join back to the root so deeper
// keys come first. Each step contributes its sort keys, or its primary key
// when it has none, followed by the tie-break against the next step.
func (b *build) addOrderBy() error {
	d := b.planner.dialect
	o := &orderBy{seen: map[string]bool{}}

	for j := len(b.joins) - 1; j >= -1; j-- {
		table, ref, sort := b.plan.TypeName, b.rootRef, b.plan.SortBy
		if j >= 0 {
			table, ref, sort = b.joins[j].Table, b.refs[j], b.joins[j].SortBy
		}

		if len(sort) > 0 {
			for _, s := range sort {
				o.add(ref.column(d, s.Property), s.Order)
			}
		} else {
			pk, err := b.primaryKey(table)
			if err != nil {
				return err
			}
			for _, col := range pk {
				o.add(ref.column(d, col), filter.Ascending)
			}
		}

		if j+1 < len(b.joins) {
			b.addTieBreak(o, j+1)
		}
	}

	for _, pk := range b.rootPK {
		o.add(b.rootRef.column(d, pk), filter.Ascending)
	}

	b.stmt.orderBy = o.items
	return nil
}

// addTieBreak sorts the rows of join step child that match their parent first
func (b *build) addTieBreak(o *orderBy, child int) {
	keys := b.keys[child]
	// keys already ordered on make the tie-break redundant
	if o.seen[keys.joining] || o.seen[keys.foreign] {
		return
	}
	o.add("CASE WHEN "+keys.foreign+" = "+keys.joining+" THEN 0 ELSE 1 END", filter.Ascending)
}
