package dialect

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// mysqlMaxRows is the documented way to express "all remaining rows" with an offset
const mysqlMaxRows = "18446744073709551615"

// MySQL renders MySQL SQL
type MySQL struct {
	base
}

// NewMySQL creates the MySQL dialect
func NewMySQL(opts ...Option) *MySQL {
	return &MySQL{base: newBase(true, opts)}
}

func (d *MySQL) Name() string {
	return "mysql"
}

func (d *MySQL) QuoteIdentifier(name string) string {
	return quoteWith("`", "`", name)
}

func (d *MySQL) QuoteTable(name string) string {
	return d.qualifyTable(name, d.QuoteIdentifier)
}

func (d *MySQL) QualifyColumn(table, column string) string {
	return d.QuoteIdentifier(table) + "." + d.QuoteIdentifier(column)
}

// QuoteString also escapes backslashes, which MySQL treats as escape characters
func (d *MySQL) QuoteString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (d *MySQL) EncodeGeometryColumn(column string, srid int) string {
	return fmt.Sprintf("ST_AsWKB(%s)", column)
}

func (d *MySQL) EncodeGeometryValue(wkt string, srid int) string {
	return fmt.Sprintf("ST_GeomFromText(%s, %d)", d.QuoteString(wkt), srid)
}

func (d *MySQL) EncodeGeometryParameter(placeholder string, srid int) string {
	return fmt.Sprintf("ST_GeomFromWKB(%s, %d)", placeholder, srid)
}

func (d *MySQL) EncodeEnvelope(b orb.Bound, srid int) string {
	return d.EncodeGeometryValue(envelopeWKT(b), srid)
}

func (d *MySQL) EncodeSpatialPredicate(op, left, right string) string {
	return fmt.Sprintf("ST_%s(%s, %s)", op, left, right)
}

func (d *MySQL) ApplyLimitOffset(sb *strings.Builder, limit, offset int) {
	applyLimitOffset(sb, limit, offset, mysqlMaxRows)
}
