package filter

// ExpressionRewriter replaces an expression; returning the input unchanged keeps it
type ExpressionRewriter func(Expression) (Expression, error)

// RewriteExpressions returns a copy of f with every expression passed through fn.
// The input filter is never modified.
func RewriteExpressions(f Filter, fn ExpressionRewriter) (Filter, error) {
	switch n := f.(type) {
	case nil:
		return nil, nil
	case Include, Exclude:
		return n, nil
	case And:
		children, err := rewriteChildren(n.Children, fn)
		if err != nil {
			return nil, err
		}
		return And{Children: children}, nil
	case Or:
		children, err := rewriteChildren(n.Children, fn)
		if err != nil {
			return nil, err
		}
		return Or{Children: children}, nil
	case Not:
		child, err := RewriteExpressions(n.Child, fn)
		if err != nil {
			return nil, err
		}
		return Not{Child: child}, nil
	case Compare:
		left, err := fn(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := fn(n.Right)
		if err != nil {
			return nil, err
		}
		n.Left, n.Right = left, right
		return n, nil
	case Like:
		expr, err := fn(n.Expr)
		if err != nil {
			return nil, err
		}
		n.Expr = expr
		return n, nil
	case IsNull:
		expr, err := fn(n.Expr)
		if err != nil {
			return nil, err
		}
		n.Expr = expr
		return n, nil
	case Between:
		exprs, err := rewriteAll([]Expression{n.Expr, n.Lower, n.Upper}, fn)
		if err != nil {
			return nil, err
		}
		n.Expr, n.Lower, n.Upper = exprs[0], exprs[1], exprs[2]
		return n, nil
	case In:
		expr, err := fn(n.Expr)
		if err != nil {
			return nil, err
		}
		values, err := rewriteAll(n.Values, fn)
		if err != nil {
			return nil, err
		}
		n.Expr, n.Values = expr, values
		return n, nil
	case BBox:
		expr, err := fn(n.Expr)
		if err != nil {
			return nil, err
		}
		n.Expr = expr
		return n, nil
	case Spatial:
		expr, err := fn(n.Expr)
		if err != nil {
			return nil, err
		}
		n.Expr = expr
		return n, nil
	default:
		return f, nil
	}
}

func rewriteChildren(children []Filter, fn ExpressionRewriter) ([]Filter, error) {
	out := make([]Filter, 0, len(children))
	for _, c := range children {
		rc, err := RewriteExpressions(c, fn)
		if err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, nil
}

func rewriteAll(exprs []Expression, fn ExpressionRewriter) ([]Expression, error) {
	out := make([]Expression, len(exprs))
	for i, e := range exprs {
		re, err := fn(e)
		if err != nil {
			return nil, err
		}
		out[i] = re
	}
	return out, nil
}

// Expressions returns the operands of a leaf predicate, nil for logical nodes
func Expressions(f Filter) []Expression {
	switch n := f.(type) {
	case Compare:
		return []Expression{n.Left, n.Right}
	case Like:
		return []Expression{n.Expr}
	case IsNull:
		return []Expression{n.Expr}
	case Between:
		return []Expression{n.Expr, n.Lower, n.Upper}
	case In:
		return append([]Expression{n.Expr}, n.Values...)
	case BBox:
		return []Expression{n.Expr}
	case Spatial:
		return []Expression{n.Expr}
	default:
		return nil
	}
}

// Inspect calls fn for every expression in f, depth first
func Inspect(f Filter, fn func(Expression)) {
	switch n := f.(type) {
	case And:
		for _, c := range n.Children {
			Inspect(c, fn)
		}
	case Or:
		for _, c := range n.Children {
			Inspect(c, fn)
		}
	case Not:
		Inspect(n.Child, fn)
	default:
		for _, e := range Expressions(f) {
			inspectExpression(e, fn)
		}
	}
}

func inspectExpression(e Expression, fn func(Expression)) {
	if e == nil {
		return
	}
	fn(e)
	if mv, ok := e.(MultiValued); ok {
		inspectExpression(mv.Value, fn)
	}
}

// NestedPaths returns the distinct nested attribute paths referenced by f, in order of appearance
func NestedPaths(f Filter) []string {
	var paths []string
	seen := map[string]bool{}
	Inspect(f, func(e Expression) {
		if n, ok := e.(NestedAttribute); ok && !seen[n.Path] {
			seen[n.Path] = true
			paths = append(paths, n.Path)
		}
	})
	return paths
}

// HasMultiValued reports whether f references any multi-valued marker
func HasMultiValued(f Filter) bool {
	found := false
	Inspect(f, func(e Expression) {
		if _, ok := e.(MultiValued); ok {
			found = true
		}
	})
	return found
}
