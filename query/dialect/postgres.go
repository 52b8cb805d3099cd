package dialect

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// Postgres renders PostgreSQL/PostGIS SQL
type Postgres struct {
	base
}

// NewPostgres creates the PostgreSQL dialect; literals are bound as $n parameters by default
func NewPostgres(opts ...Option) *Postgres {
	return &Postgres{base: newBase(true, opts)}
}

func (d *Postgres) Name() string {
	return "postgres"
}

func (d *Postgres) QuoteIdentifier(name string) string {
	return quoteWith(`"`, `"`, name)
}

func (d *Postgres) QuoteTable(name string) string {
	return d.qualifyTable(name, d.QuoteIdentifier)
}

func (d *Postgres) QualifyColumn(table, column string) string {
	return d.QuoteIdentifier(table) + "." + d.QuoteIdentifier(column)
}

func (d *Postgres) EncodeGeometryColumn(column string, srid int) string {
	return fmt.Sprintf("ST_AsEWKB(%s)", column)
}

func (d *Postgres) EncodeGeometryValue(wkt string, srid int) string {
	return fmt.Sprintf("ST_GeomFromText(%s, %d)", d.QuoteString(wkt), srid)
}

func (d *Postgres) EncodeGeometryParameter(placeholder string, srid int) string {
	return fmt.Sprintf("ST_GeomFromWKB(%s, %d)", placeholder, srid)
}

func (d *Postgres) EncodeEnvelope(b orb.Bound, srid int) string {
	return fmt.Sprintf("ST_MakeEnvelope(%s, %s, %s, %s, %d)",
		formatFloat(b.Min.X()), formatFloat(b.Min.Y()), formatFloat(b.Max.X()), formatFloat(b.Max.Y()), srid)
}

func (d *Postgres) EncodeSpatialPredicate(op, left, right string) string {
	return fmt.Sprintf("ST_%s(%s, %s)", op, left, right)
}

func (d *Postgres) ApplyLimitOffset(sb *strings.Builder, limit, offset int) {
	applyLimitOffset(sb, limit, offset, "")
}

func (d *Postgres) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}
