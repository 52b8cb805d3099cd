package dialect

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// SQLite renders SQLite/SpatiaLite SQL
type SQLite struct {
	base
}

// NewSQLite creates the SQLite dialect
func NewSQLite(opts ...Option) *SQLite {
	return &SQLite{base: newBase(true, opts)}
}

func (d *SQLite) Name() string {
	return "sqlite"
}

func (d *SQLite) QuoteIdentifier(name string) string {
	return quoteWith(`"`, `"`, name)
}

func (d *SQLite) QuoteTable(name string) string {
	return d.qualifyTable(name, d.QuoteIdentifier)
}

func (d *SQLite) QualifyColumn(table, column string) string {
	return d.QuoteIdentifier(table) + "." + d.QuoteIdentifier(column)
}

// BoolLiteral uses integers, SQLite has no boolean storage class
func (d *SQLite) BoolLiteral(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func (d *SQLite) EncodeGeometryColumn(column string, srid int) string {
	return fmt.Sprintf("AsBinary(%s)", column)
}

func (d *SQLite) EncodeGeometryValue(wkt string, srid int) string {
	return fmt.Sprintf("GeomFromText(%s, %d)", d.QuoteString(wkt), srid)
}

func (d *SQLite) EncodeGeometryParameter(placeholder string, srid int) string {
	return fmt.Sprintf("GeomFromWKB(%s, %d)", placeholder, srid)
}

func (d *SQLite) EncodeEnvelope(b orb.Bound, srid int) string {
	return fmt.Sprintf("BuildMbr(%s, %s, %s, %s, %d)",
		formatFloat(b.Min.X()), formatFloat(b.Min.Y()), formatFloat(b.Max.X()), formatFloat(b.Max.Y()), srid)
}

func (d *SQLite) EncodeSpatialPredicate(op, left, right string) string {
	return fmt.Sprintf("%s(%s, %s)", op, left, right)
}

// ApplyLimitOffset uses LIMIT -1, SQLite requires a LIMIT before OFFSET
func (d *SQLite) ApplyLimitOffset(sb *strings.Builder, limit, offset int) {
	applyLimitOffset(sb, limit, offset, "-1")
}
