package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// rawOr is the grammar root: a disjunction of conjunctions.
type rawOr struct {
	And []*rawAnd `@@ ( "OR" @@ )*`
}

type rawAnd struct {
	Terms []*rawTerm `@@ ( "AND" @@ )*`
}

type rawTerm struct {
	Not     *rawTerm      `  "NOT" @@`
	Group   *rawOr        `| "(" @@ ")"`
	Include bool          `| @"INCLUDE"`
	Exclude bool          `| @"EXCLUDE"`
	BBox    *rawBBox      `| @@`
	Spatial *rawSpatial   `| @@`
	Pred    *rawPredicate `| @@`
}

type rawBBox struct {
	Property string  `"BBOX" "(" @(Ident | QuotedIdent) ","`
	MinX     string  `@Number ","`
	MinY     string  `@Number ","`
	MaxX     string  `@Number ","`
	MaxY     string  `@Number`
	SRID     *string `( "," @Number )? ")"`
}

type rawSpatial struct {
	Op       string  `@("INTERSECTS" | "WITHIN" | "CONTAINS" | "DISJOINT" | "TOUCHES" | "CROSSES" | "OVERLAPS" | "EQUALS")`
	Property string  `"(" @(Ident | QuotedIdent) ","`
	WKT      string  `@String`
	SRID     *string `( "," @Number )? ")"`
}

type rawPredicate struct {
	Left    *rawOperand `@@`
	Compare *rawCompare `( @@`
	Null    *rawNull    `| @@`
	Between *rawBetween `| @@`
	In      *rawIn      `| @@`
	Like    *rawLike    `| @@ )`
}

type rawCompare struct {
	Op    string      `@Operator`
	Right *rawOperand `@@`
}

type rawNull struct {
	Negate bool `"IS" @"NOT"? "NULL"`
}

type rawBetween struct {
	Lower *rawOperand `"BETWEEN" @@`
	Upper *rawOperand `"AND" @@`
}

type rawIn struct {
	Values []*rawOperand `"IN" "(" @@ ( "," @@ )* ")"`
}

type rawLike struct {
	Negate     bool   `@"NOT"?`
	IgnoreCase bool   `( "LIKE" | @"ILIKE" )`
	Pattern    string `@String`
}

type rawOperand struct {
	String   *string `  @String`
	Number   *string `| @Number`
	Bool     *string `| @("TRUE" | "FALSE")`
	Property *string `| @(Ident | QuotedIdent)`
}

var (
	options = []participle.Option{
		participle.Lexer(textLexer),
		participle.Elide("Whitespace"),
		participle.CaseInsensitive("Ident"),
		participle.UseLookahead(4),
	}

	filterParser     = participle.MustBuild[rawOr](options...)
	expressionParser = participle.MustBuild[rawOperand](options...)
)

// Parse parses a text filter such as "name = 'Bob' AND BBOX(geom, 0, 0, 10, 10)".
// An empty string parses to Include.
func Parse(text string) (Filter, error) {
	if strings.TrimSpace(text) == "" {
		return Include{}, nil
	}
	raw, err := filterParser.ParseString("", text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return raw.toFilter()
}

// MustParse parses a text filter, panicking on error
func MustParse(text string) Filter {
	f, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return f
}

// ParseExpression parses a single operand: a property name or a literal
func ParseExpression(text string) (Expression, error) {
	raw, err := expressionParser.ParseString("", text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return raw.toExpression()
}

func (r *rawOr) toFilter() (Filter, error) {
	children := make([]Filter, 0, len(r.And))
	for _, a := range r.And {
		f, err := a.toFilter()
		if err != nil {
			return nil, err
		}
		children = append(children, f)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return Or{Children: children}, nil
}

func (r *rawAnd) toFilter() (Filter, error) {
	children := make([]Filter, 0, len(r.Terms))
	for _, t := range r.Terms {
		f, err := t.toFilter()
		if err != nil {
			return nil, err
		}
		children = append(children, f)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return And{Children: children}, nil
}

func (r *rawTerm) toFilter() (Filter, error) {
	switch {
	case r.Not != nil:
		child, err := r.Not.toFilter()
		if err != nil {
			return nil, err
		}
		return Not{Child: child}, nil
	case r.Group != nil:
		return r.Group.toFilter()
	case r.Include:
		return Include{}, nil
	case r.Exclude:
		return Exclude{}, nil
	case r.BBox != nil:
		return r.BBox.toFilter()
	case r.Spatial != nil:
		return r.Spatial.toFilter()
	case r.Pred != nil:
		return r.Pred.toFilter()
	default:
		return nil, fmt.Errorf("%w: empty term", ErrSyntax)
	}
}

func (r *rawBBox) toFilter() (Filter, error) {
	coords := make([]float64, 4)
	for i, s := range []string{r.MinX, r.MinY, r.MaxX, r.MaxY} {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bbox coordinate %q", ErrSyntax, s)
		}
		coords[i] = v
	}
	srid, err := parseSRID(r.SRID)
	if err != nil {
		return nil, err
	}
	return BBox{
		Expr:  Property{Name: unquoteIdent(r.Property)},
		Bound: boundOf(coords),
		SRID:  srid,
	}, nil
}

func (r *rawSpatial) toFilter() (Filter, error) {
	g, err := wkt.Unmarshal(unquoteString(r.WKT))
	if err != nil {
		return nil, fmt.Errorf("%w: geometry: %v", ErrSyntax, err)
	}
	srid, err := parseSRID(r.SRID)
	if err != nil {
		return nil, err
	}
	return Spatial{
		Op:       spatialOps[strings.ToUpper(r.Op)],
		Expr:     Property{Name: unquoteIdent(r.Property)},
		Geometry: g,
		SRID:     srid,
	}, nil
}

var spatialOps = map[string]SpatialOp{
	"INTERSECTS": Intersects,
	"WITHIN":     Within,
	"CONTAINS":   Contains,
	"DISJOINT":   Disjoint,
	"TOUCHES":    Touches,
	"CROSSES":    Crosses,
	"OVERLAPS":   Overlaps,
	"EQUALS":     Equals,
}

func (r *rawPredicate) toFilter() (Filter, error) {
	left, err := r.Left.toExpression()
	if err != nil {
		return nil, err
	}

	switch {
	case r.Compare != nil:
		right, err := r.Compare.Right.toExpression()
		if err != nil {
			return nil, err
		}
		op := CompareOp(r.Compare.Op)
		if op == "!=" {
			op = OpNotEqual
		}
		return Compare{Op: op, Left: left, Right: right}, nil
	case r.Null != nil:
		return IsNull{Expr: left, Negate: r.Null.Negate}, nil
	case r.Between != nil:
		lower, err := r.Between.Lower.toExpression()
		if err != nil {
			return nil, err
		}
		upper, err := r.Between.Upper.toExpression()
		if err != nil {
			return nil, err
		}
		return Between{Expr: left, Lower: lower, Upper: upper}, nil
	case r.In != nil:
		values := make([]Expression, 0, len(r.In.Values))
		for _, v := range r.In.Values {
			e, err := v.toExpression()
			if err != nil {
				return nil, err
			}
			values = append(values, e)
		}
		return In{Expr: left, Values: values}, nil
	case r.Like != nil:
		return Like{
			Expr:       left,
			Pattern:    unquoteString(r.Like.Pattern),
			Wildcard:   "%",
			Single:     "_",
			Escape:     `\`,
			IgnoreCase: r.Like.IgnoreCase,
			Negate:     r.Like.Negate,
		}, nil
	default:
		return nil, fmt.Errorf("%w: incomplete predicate", ErrSyntax)
	}
}

func (r *rawOperand) toExpression() (Expression, error) {
	switch {
	case r.String != nil:
		return Literal{Value: unquoteString(*r.String)}, nil
	case r.Number != nil:
		return parseNumber(*r.Number)
	case r.Bool != nil:
		return Literal{Value: strings.EqualFold(*r.Bool, "TRUE")}, nil
	case r.Property != nil:
		return Property{Name: unquoteIdent(*r.Property)}, nil
	default:
		return nil, fmt.Errorf("%w: empty operand", ErrSyntax)
	}
}

func parseNumber(s string) (Expression, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Literal{Value: i}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: number %q", ErrSyntax, s)
	}
	return Literal{Value: f}, nil
}

func parseSRID(s *string) (int, error) {
	if s == nil {
		return 0, nil
	}
	srid, err := strconv.Atoi(*s)
	if err != nil {
		return 0, fmt.Errorf("%w: srid %q", ErrSyntax, *s)
	}
	return srid, nil
}

func unquoteString(s string) string {
	s = strings.TrimPrefix(strings.TrimSuffix(s, "'"), "'")
	return strings.ReplaceAll(s, "''", "'")
}

func unquoteIdent(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return s
}

// boundOf builds an envelope from minx, miny, maxx, maxy
func boundOf(c []float64) orb.Bound {
	return orb.Bound{
		Min: orb.Point{c[0], c[1]},
		Max: orb.Point{c[2], c[3]},
	}
}
