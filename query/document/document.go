// Package document reads query plans from YAML documents.
//
// A document names the returned table, the join steps leading to the table
// the filter applies to, and the paging window:
//
//	type: segment
//	mapping: gsml:MappedFeature
//	filter: "gml:name = 'a'"
//	sortBy: ["name DESC"]
//	maxFeatures: 10
//	joins:
//	  - table: feature
//	    foreignKey: id
//	    joiningKey: feature_id
//
// When a mapping is named, the filter is written against its attribute
// paths and is unmapped before planning.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/satishbabariya/joinsql/mapping"
	"github.com/satishbabariya/joinsql/query/filter"
	"github.com/satishbabariya/joinsql/query/joining"
)

// ErrInvalidDocument is returned for malformed query documents
var ErrInvalidDocument = errors.New("invalid query document")

// Query is the decoded form of a query document
type Query struct {
	Type         string   `yaml:"type"`
	Mapping      string   `yaml:"mapping,omitempty"`
	Properties   []string `yaml:"properties,omitempty"`
	Filter       string   `yaml:"filter,omitempty"`
	SortBy       []string `yaml:"sortBy,omitempty"`
	IDs          []string `yaml:"ids,omitempty"`
	StartIndex   int      `yaml:"startIndex,omitempty"`
	MaxFeatures  int      `yaml:"maxFeatures,omitempty"`
	Denormalised bool     `yaml:"denormalised,omitempty"`
	Subset       bool     `yaml:"subset,omitempty"`
	Joins        []Join   `yaml:"joins,omitempty"`
	MultiValue   string   `yaml:"multiValue,omitempty"`
}

// Join is one join step of a query document
type Join struct {
	Table      string   `yaml:"table"`
	ForeignKey string   `yaml:"foreignKey"`
	JoiningKey string   `yaml:"joiningKey"`
	SortBy     []string `yaml:"sortBy,omitempty"`
	IDs        []string `yaml:"ids,omitempty"`
	// Mapping names the mapping of Table; keys of this step may then use its attributes
	Mapping string `yaml:"mapping,omitempty"`
}

// LoadFile reads a query document from fs
func LoadFile(fs afero.Fs, path string) (*Query, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query file: %w", err)
	}
	q, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return q, nil
}

// Load decodes a query document
func Load(data []byte) (*Query, error) {
	var q Query
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&q); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if q.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrInvalidDocument)
	}
	for i, j := range q.Joins {
		if j.Table == "" || j.ForeignKey == "" || j.JoiningKey == "" {
			return nil, fmt.Errorf("%w: join %d needs table, foreignKey and joiningKey", ErrInvalidDocument, i)
		}
	}
	return &q, nil
}

// Plan converts the document into a query plan. mappings may be nil when
// the document names no mapping.
func (q *Query) Plan(mappings *mapping.Set) (joining.QueryPlan, error) {
	plan := joining.QueryPlan{
		TypeName:     q.Type,
		Properties:   q.Properties,
		IDs:          q.IDs,
		StartIndex:   q.StartIndex,
		MaxFeatures:  q.MaxFeatures,
		Denormalised: q.Denormalised,
		Subset:       q.Subset,
		Filter:       filter.Include{},
	}
	if plan.MaxFeatures == 0 {
		plan.MaxFeatures = joining.UnboundedMaxFeatures
	}

	var err error
	if plan.Mapping, err = lookupMapping(mappings, q.Mapping); err != nil {
		return plan, err
	}
	if plan.SortBy, err = parseSort(q.SortBy); err != nil {
		return plan, err
	}

	for i, j := range q.Joins {
		jd := joining.JoinDescriptor{Table: j.Table, IDs: j.IDs}
		if jd.Mapping, err = lookupMapping(mappings, j.Mapping); err != nil {
			return plan, err
		}
		// the joining key belongs to the previous step
		prev := plan.Mapping
		if i > 0 {
			prev = plan.Joins[i-1].Mapping
		}
		if jd.ForeignKey, err = parseKey(j.ForeignKey, jd.Mapping); err != nil {
			return plan, fmt.Errorf("%w: join %d foreign key: %v", ErrInvalidDocument, i, err)
		}
		if jd.JoiningKey, err = parseKey(j.JoiningKey, prev); err != nil {
			return plan, fmt.Errorf("%w: join %d joining key: %v", ErrInvalidDocument, i, err)
		}
		if jd.SortBy, err = parseSort(j.SortBy); err != nil {
			return plan, err
		}
		plan.Joins = append(plan.Joins, jd)
	}

	if strings.TrimSpace(q.Filter) != "" {
		f, err := filter.Parse(q.Filter)
		if err != nil {
			return plan, err
		}
		if plan.Mapping != nil {
			if f, err = mapping.Unmap(f, plan.Mapping); err != nil {
				return plan, err
			}
		}
		plan.Filter = f
	}
	return plan, nil
}

func lookupMapping(mappings *mapping.Set, name string) (*mapping.FeatureTypeMapping, error) {
	if name == "" {
		return nil, nil
	}
	if mappings == nil {
		return nil, fmt.Errorf("%w: %s", mapping.ErrMappingNotFound, name)
	}
	return mappings.Get(name)
}

// parseKey parses a join key, unmapping its attributes through m when set
func parseKey(text string, m *mapping.FeatureTypeMapping) (filter.Expression, error) {
	x, err := filter.ParseExpression(text)
	if err != nil || m == nil {
		return x, err
	}
	f, err := mapping.Unmap(filter.IsNull{Expr: x}, m)
	if err != nil {
		return nil, err
	}
	return f.(filter.IsNull).Expr, nil
}

// MultipleValue returns the side table named by the document's multiValue key
func (q *Query) MultipleValue(plan joining.QueryPlan) (*mapping.MultipleValue, error) {
	if q.MultiValue == "" {
		return nil, nil
	}
	if plan.Mapping == nil {
		return nil, fmt.Errorf("%w: multiValue %q needs a mapping", ErrInvalidDocument, q.MultiValue)
	}
	mv, ok := plan.Mapping.MultipleValue(q.MultiValue)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no multi-valued attribute %q", mapping.ErrMappingNotFound, plan.Mapping.Name, q.MultiValue)
	}
	return mv, nil
}

// parseSort reads keys of the form "property [ASC|DESC]"
func parseSort(keys []string) ([]filter.SortBy, error) {
	var out []filter.SortBy
	for _, key := range keys {
		fields := strings.Fields(key)
		switch {
		case len(fields) == 1:
			out = append(out, filter.Asc(fields[0]))
		case len(fields) == 2 && strings.EqualFold(fields[1], "asc"):
			out = append(out, filter.Asc(fields[0]))
		case len(fields) == 2 && strings.EqualFold(fields[1], "desc"):
			out = append(out, filter.Desc(fields[0]))
		default:
			return nil, fmt.Errorf("%w: sort key %q", ErrInvalidDocument, key)
		}
	}
	return out, nil
}
