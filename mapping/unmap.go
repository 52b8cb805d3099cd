package mapping

import (
	"fmt"

	"github.com/satishbabariya/joinsql/query/filter"
)

// Unmap rewrites a filter written against target attribute paths of m into
// source terms: simple attributes become their source expressions,
// multi-valued attributes become filter.MultiValued markers and paths that
// cross a feature chaining link become filter.NestedAttribute. Paths that are
// not mapped are kept as column names.
func Unmap(f filter.Filter, m *FeatureTypeMapping) (filter.Filter, error) {
	return filter.RewriteExpressions(f, func(e filter.Expression) (filter.Expression, error) {
		p, ok := e.(filter.Property)
		if !ok {
			return e, nil
		}

		chain, err := ResolveFeatureChain(m, p.Name)
		if err != nil {
			return nil, err
		}
		if chain != nil {
			return filter.NestedAttribute{Path: p.Name}, nil
		}

		attr, ok := m.Attribute(p.Name)
		if !ok {
			return p, nil
		}
		return sourceOf(m, attr)
	})
}

// Unroll rewrites a filter on attribute paths of m into source expressions.
// Unlike Unmap it does not follow feature chaining, and every path must be mapped.
func Unroll(f filter.Filter, m *FeatureTypeMapping) (filter.Filter, error) {
	return filter.RewriteExpressions(f, func(e filter.Expression) (filter.Expression, error) {
		p, ok := e.(filter.Property)
		if !ok {
			return e, nil
		}
		attr, ok := m.Attribute(p.Name)
		if !ok || attr.Chain != nil {
			return nil, fmt.Errorf("%w: %s in %s", ErrNoSourceExpression, p.Name, m.Name)
		}
		return sourceOf(m, attr)
	})
}

// RenameProperty replaces references to from with to
func RenameProperty(f filter.Filter, from, to string) (filter.Filter, error) {
	return filter.RewriteExpressions(f, func(e filter.Expression) (filter.Expression, error) {
		switch n := e.(type) {
		case filter.Property:
			if n.Name == from {
				return filter.Property{Name: to}, nil
			}
		case filter.NestedAttribute:
			if n.Path == from {
				return filter.Property{Name: to}, nil
			}
		}
		return e, nil
	})
}

func sourceOf(m *FeatureTypeMapping, attr *AttributeMapping) (filter.Expression, error) {
	if mv := attr.MultipleValue; mv != nil {
		return filter.MultiValued{ID: mv.ID, TargetTable: mv.TargetTable, Value: mv.Value}, nil
	}
	if attr.Source == nil {
		return nil, fmt.Errorf("%w: %s in %s", ErrNoSourceExpression, attr.Target, m.Name)
	}
	return attr.Source, nil
}
