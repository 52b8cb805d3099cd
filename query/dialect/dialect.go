// Package dialect provides the database-specific SQL fragments used by the joining planner.
package dialect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// Dialect renders identifiers, literals and the clauses that differ between databases
type Dialect interface {
	// Name returns the provider name of the dialect
	Name() string
	// QuoteIdentifier quotes a bare identifier (column or alias)
	QuoteIdentifier(name string) string
	// QuoteTable quotes a table name, schema-qualified when a schema is configured
	QuoteTable(name string) string
	// QualifyColumn renders table.column with both parts quoted as identifiers
	QualifyColumn(table, column string) string
	// QuoteString renders a string literal
	QuoteString(s string) string
	// BoolLiteral renders a boolean literal
	BoolLiteral(b bool) string

	// EncodeGeometryColumn wraps an already-qualified geometry column for reading
	EncodeGeometryColumn(column string, srid int) string
	// EncodeGeometryValue renders an inline geometry from its WKT representation
	EncodeGeometryValue(wkt string, srid int) string
	// EncodeGeometryParameter renders a geometry bound as WKB through a placeholder
	EncodeGeometryParameter(placeholder string, srid int) string
	// EncodeEnvelope renders a rectangular envelope
	EncodeEnvelope(b orb.Bound, srid int) string
	// EncodeSpatialPredicate renders a binary spatial predicate such as Intersects
	EncodeSpatialPredicate(op, left, right string) string

	// IsLimitOffsetSupported reports whether ApplyLimitOffset can be used
	IsLimitOffsetSupported() bool
	// ApplyLimitOffset appends the paging clause; a negative limit means unbounded
	ApplyLimitOffset(sb *strings.Builder, limit, offset int)

	// Prepared reports whether literals are bound as statement parameters
	Prepared() bool
	// Placeholder returns the parameter marker for the 1-based index
	Placeholder(index int) string
}

// Option configures a dialect
type Option func(*base)

// WithSchema qualifies every table with the given database schema
func WithSchema(schema string) Option {
	return func(b *base) {
		b.schema = schema
	}
}

// WithoutLimitOffset disables LIMIT/OFFSET support
func WithoutLimitOffset() Option {
	return func(b *base) {
		b.noLimitOffset = true
	}
}

// WithPreparedStatements toggles binding literals as parameters
func WithPreparedStatements(enabled bool) Option {
	return func(b *base) {
		b.prepared = enabled
	}
}

// ByName resolves a dialect from its provider name
func ByName(name string, opts ...Option) (Dialect, error) {
	switch strings.ToLower(name) {
	case "postgresql", "postgres":
		return NewPostgres(opts...), nil
	case "mysql":
		return NewMySQL(opts...), nil
	case "sqlite", "sqlite3":
		return NewSQLite(opts...), nil
	case "duckdb":
		return NewDuckDB(opts...), nil
	case "sqlserver", "mssql":
		return NewSQLServer(opts...), nil
	case "generic", "":
		return NewGeneric(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDialect, name)
	}
}

// base carries the options shared by every dialect
type base struct {
	schema        string
	noLimitOffset bool
	prepared      bool
}

func newBase(prepared bool, opts []Option) base {
	b := base{prepared: prepared}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b base) IsLimitOffsetSupported() bool {
	return !b.noLimitOffset
}

func (b base) Prepared() bool {
	return b.prepared
}

func (b base) QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (b base) BoolLiteral(v bool) string {
	if v {
		return "TRUE"
	}
	return "FALSE"
}

func (b base) Placeholder(index int) string {
	return "?"
}

// quoteWith doubles any embedded quote character
func quoteWith(open, close, name string) string {
	return open + strings.ReplaceAll(name, close, close+close) + close
}

// qualifyTable prefixes the configured schema
func (b base) qualifyTable(name string, quote func(string) string) string {
	if b.schema == "" {
		return quote(name)
	}
	return quote(b.schema) + "." + quote(name)
}

// applyLimitOffset renders the common "LIMIT n OFFSET m" form
func applyLimitOffset(sb *strings.Builder, limit, offset int, unbounded string) {
	if limit >= 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(limit))
		sb.WriteString(" OFFSET ")
		sb.WriteString(strconv.Itoa(offset))
		return
	}
	if offset > 0 {
		if unbounded != "" {
			sb.WriteString(" LIMIT ")
			sb.WriteString(unbounded)
		}
		sb.WriteString(" OFFSET ")
		sb.WriteString(strconv.Itoa(offset))
	}
}

// envelopeWKT renders the bound as a closed polygon
func envelopeWKT(b orb.Bound) string {
	return wkt.MarshalString(b.ToPolygon())
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
