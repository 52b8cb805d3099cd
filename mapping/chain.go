package mapping

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/satishbabariya/joinsql/query/filter"
)

// ChainLink is one feature type traversed by a nested attribute path
type ChainLink struct {
	Mapping *FeatureTypeMapping
	Table   string
	// Alias qualifies the link's table inside nested subqueries; the root link is never aliased
	Alias string
	// Source is this link's expression joined to the next link's Target
	Source filter.Expression
	// Target is this link's expression joined to the previous link's Source
	Target filter.Expression
}

// FeatureChain is the resolved path from a root feature type to a nested attribute
type FeatureChain struct {
	Links []ChainLink
	// AttributePath is the path within the last link; empty tests only for existence
	AttributePath string
}

// Size returns the number of feature types in the chain, root included
func (c *FeatureChain) Size() int {
	return len(c.Links)
}

// Last returns the deepest link
func (c *FeatureChain) Last() ChainLink {
	return c.Links[len(c.Links)-1]
}

// ResolveFeatureChain walks path through the feature chaining links of root.
// It returns nil when the path does not cross any link.
func ResolveFeatureChain(root *FeatureTypeMapping, path string) (*FeatureChain, error) {
	chain := &FeatureChain{
		Links: []ChainLink{{Mapping: root, Table: root.SourceTable}},
	}

	current := root
	rest := strings.Trim(path, "/")
	for {
		attr, remainder := chainedAttribute(current, rest)
		if attr == nil {
			break
		}
		nested := attr.Chain.Mapping
		if nested == nil {
			return nil, fmt.Errorf("%w: %s.%s links to unresolved %q", ErrMappingNotFound, current.Name, attr.Target, attr.Chain.LinkElement)
		}

		target, err := linkTarget(nested, attr.Chain.LinkField)
		if err != nil {
			return nil, err
		}

		chain.Links[len(chain.Links)-1].Source = attr.Source
		chain.Links = append(chain.Links, ChainLink{
			Mapping: nested,
			Table:   nested.SourceTable,
			Alias:   "chain_link_" + strconv.Itoa(len(chain.Links)),
			Target:  target,
		})

		// the nested feature element itself may appear in the path
		remainder = strings.TrimPrefix(remainder, nested.Name)
		rest = strings.Trim(remainder, "/")
		current = nested
	}

	if len(chain.Links) == 1 {
		return nil, nil
	}
	chain.AttributePath = rest
	return chain, nil
}

// chainedAttribute finds the chaining attribute that prefixes path
func chainedAttribute(m *FeatureTypeMapping, path string) (*AttributeMapping, string) {
	if path == "" {
		return nil, ""
	}
	for i := range m.Attributes {
		attr := &m.Attributes[i]
		if attr.Chain == nil {
			continue
		}
		if path == attr.Target {
			return attr, ""
		}
		if strings.HasPrefix(path, attr.Target+"/") {
			return attr, path[len(attr.Target)+1:]
		}
	}
	return nil, ""
}

// linkTarget returns the source expression of the nested mapping's link field
func linkTarget(nested *FeatureTypeMapping, linkField string) (filter.Expression, error) {
	attr, ok := nested.Attribute(linkField)
	if !ok || attr.Source == nil {
		return nil, fmt.Errorf("%w: link field %q of %s", ErrNoSourceExpression, linkField, nested.Name)
	}
	return attr.Source, nil
}
