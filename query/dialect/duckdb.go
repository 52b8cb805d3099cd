package dialect

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// DuckDB renders DuckDB SQL with the spatial extension
type DuckDB struct {
	base
}

// NewDuckDB creates the DuckDB dialect
func NewDuckDB(opts ...Option) *DuckDB {
	return &DuckDB{base: newBase(true, opts)}
}

func (d *DuckDB) Name() string {
	return "duckdb"
}

func (d *DuckDB) QuoteIdentifier(name string) string {
	return quoteWith(`"`, `"`, name)
}

func (d *DuckDB) QuoteTable(name string) string {
	return d.qualifyTable(name, d.QuoteIdentifier)
}

func (d *DuckDB) QualifyColumn(table, column string) string {
	return d.QuoteIdentifier(table) + "." + d.QuoteIdentifier(column)
}

func (d *DuckDB) EncodeGeometryColumn(column string, srid int) string {
	return fmt.Sprintf("ST_AsWKB(%s)", column)
}

// EncodeGeometryValue ignores the srid, DuckDB geometries carry no reference system
func (d *DuckDB) EncodeGeometryValue(wkt string, srid int) string {
	return fmt.Sprintf("ST_GeomFromText(%s)", d.QuoteString(wkt))
}

func (d *DuckDB) EncodeGeometryParameter(placeholder string, srid int) string {
	return fmt.Sprintf("ST_GeomFromWKB(%s)", placeholder)
}

func (d *DuckDB) EncodeEnvelope(b orb.Bound, srid int) string {
	return fmt.Sprintf("ST_MakeEnvelope(%s, %s, %s, %s)",
		formatFloat(b.Min.X()), formatFloat(b.Min.Y()), formatFloat(b.Max.X()), formatFloat(b.Max.Y()))
}

func (d *DuckDB) EncodeSpatialPredicate(op, left, right string) string {
	return fmt.Sprintf("ST_%s(%s, %s)", op, left, right)
}

func (d *DuckDB) ApplyLimitOffset(sb *strings.Builder, limit, offset int) {
	applyLimitOffset(sb, limit, offset, "")
}

func (d *DuckDB) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}
