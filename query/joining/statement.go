package joining

import (
	"strings"

	"github.com/satishbabariya/joinsql/query/dialect"
)

// tableRef is a table as referenced in a statement: by alias when it has one
type tableRef struct {
	table string
	alias string
}

// qualifier renders the prefix used for the table's columns
func (r tableRef) qualifier(d dialect.Dialect) string {
	if r.alias != "" {
		return d.QuoteIdentifier(r.alias)
	}
	return d.QuoteTable(r.table)
}

// column renders a qualified column of the table
func (r tableRef) column(d dialect.Dialect, name string) string {
	return r.qualifier(d) + "." + d.QuoteIdentifier(name)
}

// source renders the table for a FROM or JOIN clause
func (r tableRef) source(d dialect.Dialect) string {
	if r.alias != "" {
		return d.QuoteTable(r.table) + " " + d.QuoteIdentifier(r.alias)
	}
	return d.QuoteTable(r.table)
}

// joinClause is one JOIN of a select statement
type joinClause struct {
	kind   string
	source string
	on     string
}

// selectStmt is the statement tree; it is rendered once, after planning
type selectStmt struct {
	distinct bool
	columns  []string
	from     string
	joins    []joinClause
	where    string
	orderBy  []string
	limit    int
	offset   int
}

func newSelect(from string) *selectStmt {
	return &selectStmt{from: from, limit: -1}
}

func (s *selectStmt) addColumn(col string) {
	for _, c := range s.columns {
		if c == col {
			return
		}
	}
	s.columns = append(s.columns, col)
}

func (s *selectStmt) render(d dialect.Dialect) string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if s.distinct {
		sb.WriteString("DISTINCT ")
	}
	if len(s.columns) == 0 {
		sb.WriteString("*")
	} else {
		sb.WriteString(strings.Join(s.columns, ", "))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(s.from)

	sb.WriteString(renderJoins(s.joins))

	if s.where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(s.where)
	}

	if len(s.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(s.orderBy, ", "))
	}

	if s.limit >= 0 || s.offset > 0 {
		d.ApplyLimitOffset(&sb, s.limit, s.offset)
	}
	return sb.String()
}

func renderJoins(joins []joinClause) string {
	var sb strings.Builder
	for _, j := range joins {
		sb.WriteString(" ")
		sb.WriteString(j.kind)
		sb.WriteString(" ")
		sb.WriteString(j.source)
		sb.WriteString(" ON ")
		sb.WriteString(j.on)
	}
	return sb.String()
}

// subquery renders s as a derived table source
func (s *selectStmt) subquery(d dialect.Dialect, alias string) string {
	return "(" + s.render(d) + ") " + d.QuoteIdentifier(alias)
}

// equalities renders (l1 = r1 AND l2 = r2 ...)
func equalities(left, right []string) string {
	parts := make([]string, len(left))
	for i := range left {
		parts[i] = left[i] + " = " + right[i]
	}
	return "(" + strings.Join(parts, " AND ") + ")"
}
