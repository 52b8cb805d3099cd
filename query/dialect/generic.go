package dialect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/paulmach/orb"
)

var safeIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reserved words that must stay quoted even in the generic dialect
var reserved = map[string]bool{
	"select": true, "from": true, "where": true, "order": true, "group": true,
	"by": true, "join": true, "inner": true, "left": true, "on": true,
	"and": true, "or": true, "not": true, "limit": true, "offset": true,
	"table": true, "user": true, "case": true, "when": true, "end": true,
}

// Generic renders ANSI SQL and quotes identifiers only when they need it
type Generic struct {
	base
}

// NewGeneric creates the generic dialect
func NewGeneric(opts ...Option) *Generic {
	return &Generic{base: newBase(false, opts)}
}

func (d *Generic) Name() string {
	return "generic"
}

func (d *Generic) QuoteIdentifier(name string) string {
	if safeIdent.MatchString(name) && !reserved[strings.ToLower(name)] {
		return name
	}
	return quoteWith(`"`, `"`, name)
}

func (d *Generic) QuoteTable(name string) string {
	return d.qualifyTable(name, d.QuoteIdentifier)
}

func (d *Generic) QualifyColumn(table, column string) string {
	return d.QuoteIdentifier(table) + "." + d.QuoteIdentifier(column)
}

func (d *Generic) EncodeGeometryColumn(column string, srid int) string {
	return fmt.Sprintf("ST_AsBinary(%s)", column)
}

func (d *Generic) EncodeGeometryValue(wkt string, srid int) string {
	return fmt.Sprintf("ST_GeomFromText(%s, %d)", d.QuoteString(wkt), srid)
}

func (d *Generic) EncodeGeometryParameter(placeholder string, srid int) string {
	return fmt.Sprintf("ST_GeomFromWKB(%s, %d)", placeholder, srid)
}

func (d *Generic) EncodeEnvelope(b orb.Bound, srid int) string {
	return d.EncodeGeometryValue(envelopeWKT(b), srid)
}

func (d *Generic) EncodeSpatialPredicate(op, left, right string) string {
	return fmt.Sprintf("ST_%s(%s, %s)", op, left, right)
}

func (d *Generic) ApplyLimitOffset(sb *strings.Builder, limit, offset int) {
	applyLimitOffset(sb, limit, offset, "")
}
