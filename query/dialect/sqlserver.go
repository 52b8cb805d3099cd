package dialect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// SQLServer renders Microsoft SQL Server SQL
type SQLServer struct {
	base
}

// NewSQLServer creates the SQL Server dialect
func NewSQLServer(opts ...Option) *SQLServer {
	return &SQLServer{base: newBase(true, opts)}
}

func (d *SQLServer) Name() string {
	return "sqlserver"
}

func (d *SQLServer) QuoteIdentifier(name string) string {
	return quoteWith("[", "]", name)
}

func (d *SQLServer) QuoteTable(name string) string {
	return d.qualifyTable(name, d.QuoteIdentifier)
}

func (d *SQLServer) QualifyColumn(table, column string) string {
	return d.QuoteIdentifier(table) + "." + d.QuoteIdentifier(column)
}

func (d *SQLServer) QuoteString(s string) string {
	return "N'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (d *SQLServer) BoolLiteral(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func (d *SQLServer) EncodeGeometryColumn(column string, srid int) string {
	return fmt.Sprintf("%s.STAsBinary()", column)
}

func (d *SQLServer) EncodeGeometryValue(wkt string, srid int) string {
	return fmt.Sprintf("geometry::STGeomFromText(%s, %d)", d.QuoteString(wkt), srid)
}

func (d *SQLServer) EncodeGeometryParameter(placeholder string, srid int) string {
	return fmt.Sprintf("geometry::STGeomFromWKB(%s, %d)", placeholder, srid)
}

func (d *SQLServer) EncodeEnvelope(b orb.Bound, srid int) string {
	return d.EncodeGeometryValue(envelopeWKT(b), srid)
}

// EncodeSpatialPredicate uses the geometry methods, which return a bit
func (d *SQLServer) EncodeSpatialPredicate(op, left, right string) string {
	return fmt.Sprintf("%s.ST%s(%s) = 1", left, op, right)
}

// ApplyLimitOffset renders OFFSET/FETCH, which requires an ORDER BY in the statement
func (d *SQLServer) ApplyLimitOffset(sb *strings.Builder, limit, offset int) {
	if limit < 0 && offset <= 0 {
		return
	}
	sb.WriteString(" OFFSET ")
	sb.WriteString(strconv.Itoa(offset))
	sb.WriteString(" ROWS")
	if limit >= 0 {
		sb.WriteString(" FETCH NEXT ")
		sb.WriteString(strconv.Itoa(limit))
		sb.WriteString(" ROWS ONLY")
	}
}

func (d *SQLServer) Placeholder(index int) string {
	return fmt.Sprintf("@p%d", index)
}
