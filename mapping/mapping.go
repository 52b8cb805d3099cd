// Package mapping describes how target feature types map onto database tables.
package mapping

import (
	"fmt"
	"sort"

	"github.com/satishbabariya/joinsql/query/filter"
)

// FeatureTypeMapping maps a target feature type onto one source table
type FeatureTypeMapping struct {
	// Name is the target feature type name, e.g. gsml:MappedFeature
	Name string
	// SourceTable is the table backing the feature type
	SourceTable string
	// IDColumns are the columns identifying a feature; empty means the primary key
	IDColumns  []string
	Attributes []AttributeMapping
}

// AttributeMapping maps one target attribute path to its source
type AttributeMapping struct {
	// Target is the attribute path relative to the feature type
	Target string
	// Source is the expression producing the value from the source table
	Source filter.Expression
	// MultipleValue is set when values come from a one-to-many side table
	MultipleValue *MultipleValue
	// Chain is set when the attribute is a nested feature
	Chain *FeatureChaining
}

// MultipleValue describes a one-to-many side table joined on
// root.SourceColumn = side.TargetColumn.
type MultipleValue struct {
	ID           string
	SourceColumn string
	TargetTable  string
	TargetColumn string
	// Value is evaluated against the side table
	Value filter.Expression
	// Properties are the side-table columns read for each value
	Properties []string
}

// FeatureChaining links an attribute to a nested feature type. The parent's
// Source expression is matched against the nested mapping's LinkField attribute.
type FeatureChaining struct {
	LinkElement string
	LinkField   string
	// Mapping is resolved by Set.Link
	Mapping *FeatureTypeMapping
}

// Attribute returns the mapping for the target path
func (m *FeatureTypeMapping) Attribute(target string) (*AttributeMapping, bool) {
	for i := range m.Attributes {
		if m.Attributes[i].Target == target {
			return &m.Attributes[i], true
		}
	}
	return nil, false
}

// MultipleValues returns every multi-valued attribute of the mapping
func (m *FeatureTypeMapping) MultipleValues() []*MultipleValue {
	var out []*MultipleValue
	for i := range m.Attributes {
		if mv := m.Attributes[i].MultipleValue; mv != nil {
			out = append(out, mv)
		}
	}
	return out
}

// MultipleValue returns the multi-valued attribute with the given id
func (m *FeatureTypeMapping) MultipleValue(id string) (*MultipleValue, bool) {
	for _, mv := range m.MultipleValues() {
		if mv.ID == id {
			return mv, true
		}
	}
	return nil, false
}

// Set is a collection of mappings addressable by feature type name
type Set struct {
	mappings map[string]*FeatureTypeMapping
}

// NewSet creates a set and links its feature chains
func NewSet(mappings ...*FeatureTypeMapping) (*Set, error) {
	s := &Set{mappings: make(map[string]*FeatureTypeMapping)}
	for _, m := range mappings {
		if _, exists := s.mappings[m.Name]; exists {
			return nil, fmt.Errorf("%w: duplicate feature type %q", ErrInvalidMapping, m.Name)
		}
		s.mappings[m.Name] = m
	}
	if err := s.Link(); err != nil {
		return nil, err
	}
	return s, nil
}

// Link resolves every FeatureChaining.LinkElement to its mapping
func (s *Set) Link() error {
	for _, m := range s.mappings {
		for i := range m.Attributes {
			chain := m.Attributes[i].Chain
			if chain == nil {
				continue
			}
			nested, ok := s.mappings[chain.LinkElement]
			if !ok {
				return fmt.Errorf("%w: %s.%s links to %q", ErrMappingNotFound, m.Name, m.Attributes[i].Target, chain.LinkElement)
			}
			chain.Mapping = nested
		}
	}
	return nil
}

// Get returns the mapping for a feature type
func (s *Set) Get(name string) (*FeatureTypeMapping, error) {
	m, ok := s.mappings[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMappingNotFound, name)
	}
	return m, nil
}

// Names returns the feature type names in sorted order
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.mappings))
	for name := range s.mappings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
