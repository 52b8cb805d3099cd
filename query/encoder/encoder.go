// Package encoder translates filter trees into SQL boolean expressions.
package encoder

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/satishbabariya/joinsql/query/dialect"
	"github.com/satishbabariya/joinsql/query/filter"
)

// FieldEncoder renders a column reference, typically qualifying it with a table or alias
type FieldEncoder func(column string) string

// PredicateHook gets a chance to encode a leaf predicate before the default
// translation. It returns handled=false to fall through.
type PredicateHook func(e *Encoder, f filter.Filter) (sql string, handled bool, err error)

// Encoder translates filters for one dialect. An Encoder with params binds
// literals as placeholders; without params literals are rendered inline.
type Encoder struct {
	dialect dialect.Dialect
	fields  FieldEncoder
	params  *Params
	hook    PredicateHook
}

// Option configures an Encoder
type Option func(*Encoder)

// WithFieldEncoder sets the column renderer
func WithFieldEncoder(f FieldEncoder) Option {
	return func(e *Encoder) {
		e.fields = f
	}
}

// WithParams binds literals into p
func WithParams(p *Params) Option {
	return func(e *Encoder) {
		e.params = p
	}
}

// WithPredicateHook installs a hook consulted for every leaf predicate
func WithPredicateHook(h PredicateHook) Option {
	return func(e *Encoder) {
		e.hook = h
	}
}

// New creates an encoder for the dialect
func New(d dialect.Dialect, opts ...Option) *Encoder {
	e := &Encoder{dialect: d}
	for _, opt := range opts {
		opt(e)
	}
	if e.fields == nil {
		e.fields = d.QuoteIdentifier
	}
	return e
}

// Derive returns a copy of the encoder with the options applied
func (e *Encoder) Derive(opts ...Option) *Encoder {
	c := *e
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// Dialect returns the encoder's dialect
func (e *Encoder) Dialect() dialect.Dialect {
	return e.dialect
}

// Params returns the shared parameter list, nil when literals are inlined
func (e *Encoder) Params() *Params {
	return e.params
}

// Qualify renders a column through the field encoder
func (e *Encoder) Qualify(column string) string {
	return e.fields(column)
}

// Encode renders f as a boolean SQL expression, without a WHERE keyword
func (e *Encoder) Encode(f filter.Filter) (string, error) {
	switch n := f.(type) {
	case nil, filter.Include:
		return "1 = 1", nil
	case filter.Exclude:
		return "1 = 0", nil
	case filter.And:
		return e.encodeLogical(n.Children, "AND", "1 = 1")
	case filter.Or:
		return e.encodeLogical(n.Children, "OR", "1 = 0")
	case filter.Not:
		child, err := e.Encode(n.Child)
		if err != nil {
			return "", err
		}
		return "NOT (" + child + ")", nil
	}

	if e.hook != nil {
		sql, handled, err := e.hook(e, f)
		if err != nil {
			return "", err
		}
		if handled {
			return sql, nil
		}
	}
	return e.EncodePredicate(f)
}

// EncodePredicate renders a leaf predicate without consulting the hook
func (e *Encoder) EncodePredicate(f filter.Filter) (string, error) {
	switch n := f.(type) {
	case filter.Compare:
		return e.encodeCompare(n)
	case filter.Like:
		return e.encodeLike(n)
	case filter.IsNull:
		expr, err := e.EncodeExpression(n.Expr)
		if err != nil {
			return "", err
		}
		if n.Negate {
			return expr + " IS NOT NULL", nil
		}
		return expr + " IS NULL", nil
	case filter.Between:
		expr, err := e.EncodeExpression(n.Expr)
		if err != nil {
			return "", err
		}
		lower, err := e.EncodeExpression(n.Lower)
		if err != nil {
			return "", err
		}
		upper, err := e.EncodeExpression(n.Upper)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s BETWEEN %s AND %s", expr, lower, upper), nil
	case filter.In:
		return e.encodeIn(n)
	case filter.BBox:
		expr, err := e.EncodeExpression(n.Expr)
		if err != nil {
			return "", err
		}
		return e.dialect.EncodeSpatialPredicate(string(filter.Intersects), expr, e.dialect.EncodeEnvelope(n.Bound, n.SRID)), nil
	case filter.Spatial:
		expr, err := e.EncodeExpression(n.Expr)
		if err != nil {
			return "", err
		}
		return e.dialect.EncodeSpatialPredicate(string(n.Op), expr, e.encodeGeometry(n.Geometry, n.SRID)), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedFilter, f)
	}
}

func (e *Encoder) encodeLogical(children []filter.Filter, op, empty string) (string, error) {
	if len(children) == 0 {
		return empty, nil
	}
	parts := make([]string, 0, len(children))
	for _, c := range children {
		sql, err := e.Encode(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, sql)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, " "+op+" ") + ")", nil
}

func (e *Encoder) encodeCompare(c filter.Compare) (string, error) {
	left, err := e.EncodeExpression(c.Left)
	if err != nil {
		return "", err
	}
	right, err := e.EncodeExpression(c.Right)
	if err != nil {
		return "", err
	}
	if c.IgnoreCase {
		left, right = "LOWER("+left+")", "LOWER("+right+")"
	}
	return fmt.Sprintf("%s %s %s", left, c.Op, right), nil
}

func (e *Encoder) encodeIn(in filter.In) (string, error) {
	if len(in.Values) == 0 {
		return "1 = 0", nil
	}
	expr, err := e.EncodeExpression(in.Expr)
	if err != nil {
		return "", err
	}
	values := make([]string, 0, len(in.Values))
	for _, v := range in.Values {
		sql, err := e.EncodeExpression(v)
		if err != nil {
			return "", err
		}
		values = append(values, sql)
	}
	return fmt.Sprintf("%s IN (%s)", expr, strings.Join(values, ", ")), nil
}

func (e *Encoder) encodeLike(l filter.Like) (string, error) {
	expr, err := e.EncodeExpression(l.Expr)
	if err != nil {
		return "", err
	}
	pattern, escaped := likePattern(l)
	value := e.literal(pattern)

	op := " LIKE "
	if l.Negate {
		op = " NOT LIKE "
	}
	if l.IgnoreCase {
		expr, value = "LOWER("+expr+")", "LOWER("+value+")"
	}
	sql := expr + op + value
	if escaped {
		sql += " ESCAPE " + e.dialect.QuoteString(`\`)
	}
	return sql, nil
}

// likePattern converts the filter's wildcard characters to SQL's % and _.
// It reports whether the result relies on the backslash escape.
func likePattern(l filter.Like) (string, bool) {
	wildcard, single, escape := l.Wildcard, l.Single, l.Escape
	if wildcard == "" {
		wildcard = "%"
	}
	if single == "" {
		single = "_"
	}

	var sb strings.Builder
	escaped := false
	p := l.Pattern
	for len(p) > 0 {
		switch {
		case escape != "" && strings.HasPrefix(p, escape) && len(p) > len(escape):
			p = p[len(escape):]
			next := p[:1]
			if next == "%" || next == "_" || next == `\` {
				sb.WriteString(`\`)
				escaped = true
			}
			sb.WriteString(next)
			p = p[1:]
		case strings.HasPrefix(p, wildcard):
			sb.WriteString("%")
			p = p[len(wildcard):]
		case strings.HasPrefix(p, single):
			sb.WriteString("_")
			p = p[len(single):]
		default:
			c := p[:1]
			if c == "%" || c == "_" {
				sb.WriteString(`\`)
				escaped = true
			}
			sb.WriteString(c)
			p = p[1:]
		}
	}
	return sb.String(), escaped
}

// EncodeExpression renders an operand
func (e *Encoder) EncodeExpression(x filter.Expression) (string, error) {
	switch n := x.(type) {
	case filter.Property:
		return e.fields(n.Name), nil
	case filter.Literal:
		if g, ok := n.Value.(orb.Geometry); ok {
			return e.encodeGeometry(g, 0), nil
		}
		return e.literal(n.Value), nil
	case filter.Raw:
		return n.SQL, nil
	case filter.MultiValued:
		return "", fmt.Errorf("%w: multi-valued reference %q must be rewritten against %s", ErrUnsupportedExpression, n.ID, n.TargetTable)
	case filter.NestedAttribute:
		return "", fmt.Errorf("%w: nested attribute %q", ErrUnsupportedExpression, n.Path)
	case nil:
		return "", fmt.Errorf("%w: missing operand", ErrUnsupportedExpression)
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedExpression, x)
	}
}

// literal binds v or renders it inline
func (e *Encoder) literal(v any) string {
	if e.params != nil && e.dialect.Prepared() {
		return e.dialect.Placeholder(e.params.Add(v))
	}
	return e.inline(v)
}

func (e *Encoder) inline(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return e.dialect.QuoteString(val)
	case bool:
		return e.dialect.BoolLiteral(val)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return e.dialect.QuoteString(val.UTC().Format(time.RFC3339Nano))
	case []byte:
		return fmt.Sprintf("X'%X'", val)
	default:
		return e.dialect.QuoteString(fmt.Sprint(val))
	}
}

func (e *Encoder) encodeGeometry(g orb.Geometry, srid int) string {
	if e.params != nil && e.dialect.Prepared() {
		data, err := wkb.Marshal(g)
		if err == nil {
			return e.dialect.EncodeGeometryParameter(e.dialect.Placeholder(e.params.Add(data)), srid)
		}
	}
	return e.dialect.EncodeGeometryValue(wkt.MarshalString(g), srid)
}
