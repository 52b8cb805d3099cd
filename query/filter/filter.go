// Package filter defines the predicate tree consumed by the SQL encoders.
//
// Filters and expressions are closed sets of variants; consumers dispatch with
// type switches.
package filter

import (
	"github.com/paulmach/orb"
)

// Filter is a boolean predicate
type Filter interface {
	filterNode()
}

// Expression is a value-producing operand of a filter
type Expression interface {
	exprNode()
}

// Include matches every row
type Include struct{}

// Exclude matches no row
type Exclude struct{}

// And matches when every child matches
type And struct {
	Children []Filter
}

// Or matches when any child matches
type Or struct {
	Children []Filter
}

// Not negates its child
type Not struct {
	Child Filter
}

// CompareOp is a binary comparison operator
type CompareOp string

const (
	// OpEqual is =
	OpEqual CompareOp = "="
	// OpNotEqual is <>
	OpNotEqual CompareOp = "<>"
	// OpLess is <
	OpLess CompareOp = "<"
	// OpLessOrEqual is <=
	OpLessOrEqual CompareOp = "<="
	// OpGreater is >
	OpGreater CompareOp = ">"
	// OpGreaterOrEqual is >=
	OpGreaterOrEqual CompareOp = ">="
)

// Compare is a binary comparison between two expressions
type Compare struct {
	Op    CompareOp
	Left  Expression
	Right Expression
	// IgnoreCase compares string values case-insensitively
	IgnoreCase bool
}

// Like matches a pattern using the wildcard characters below
type Like struct {
	Expr       Expression
	Pattern    string
	Wildcard   string
	Single     string
	Escape     string
	IgnoreCase bool
	Negate     bool
}

// IsNull matches when the expression is null
type IsNull struct {
	Expr   Expression
	Negate bool
}

// Between matches lower <= expr <= upper
type Between struct {
	Expr  Expression
	Lower Expression
	Upper Expression
}

// In matches when the expression equals one of the values
type In struct {
	Expr   Expression
	Values []Expression
}

// BBox matches geometries intersecting an envelope
type BBox struct {
	Expr  Expression
	Bound orb.Bound
	SRID  int
}

// SpatialOp names a binary spatial predicate
type SpatialOp string

const (
	Intersects SpatialOp = "Intersects"
	Within     SpatialOp = "Within"
	Contains   SpatialOp = "Contains"
	Disjoint   SpatialOp = "Disjoint"
	Touches    SpatialOp = "Touches"
	Crosses    SpatialOp = "Crosses"
	Overlaps   SpatialOp = "Overlaps"
	Equals     SpatialOp = "Equals"
)

// Spatial is a binary spatial predicate against a literal geometry
type Spatial struct {
	Op       SpatialOp
	Expr     Expression
	Geometry orb.Geometry
	SRID     int
}

func (Include) filterNode() {}
func (Exclude) filterNode() {}
func (And) filterNode()     {}
func (Or) filterNode()      {}
func (Not) filterNode()     {}
func (Compare) filterNode() {}
func (Like) filterNode()    {}
func (IsNull) filterNode()  {}
func (Between) filterNode() {}
func (In) filterNode()      {}
func (BBox) filterNode()    {}
func (Spatial) filterNode() {}

// Property references a column of the table the filter is encoded against
type Property struct {
	Name string
}

// Literal is a constant value; geometries are carried as orb.Geometry
type Literal struct {
	Value any
}

// MultiValued marks a value that lives in a one-to-many side table. The value
// expression is encoded against the side table, qualified with the side table id.
type MultiValued struct {
	ID          string
	TargetTable string
	Value       Expression
}

// NestedAttribute references an attribute reachable through feature chaining.
// Path is the target attribute path relative to the root feature type.
type NestedAttribute struct {
	Path string
}

// Raw is pre-rendered SQL spliced verbatim
type Raw struct {
	SQL string
}

func (Property) exprNode()        {}
func (Literal) exprNode()         {}
func (MultiValued) exprNode()     {}
func (NestedAttribute) exprNode() {}
func (Raw) exprNode()             {}

// IsInclude reports whether f is nil or Include
func IsInclude(f Filter) bool {
	if f == nil {
		return true
	}
	_, ok := f.(Include)
	return ok
}

// Prop is shorthand for a property reference
func Prop(name string) Property {
	return Property{Name: name}
}

// Lit is shorthand for a literal
func Lit(v any) Literal {
	return Literal{Value: v}
}

// Eq is shorthand for an equality comparison
func Eq(left, right Expression) Compare {
	return Compare{Op: OpEqual, Left: left, Right: right}
}

// AndOf combines filters, dropping Include children
func AndOf(filters ...Filter) Filter {
	var children []Filter
	for _, f := range filters {
		if IsInclude(f) {
			continue
		}
		children = append(children, f)
	}
	switch len(children) {
	case 0:
		return Include{}
	case 1:
		return children[0]
	default:
		return And{Children: children}
	}
}
