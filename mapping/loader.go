package mapping

import (
	"bytes"
	"fmt"

	"github.com/hashicorp/go-version"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/satishbabariya/joinsql/query/filter"
	"github.com/satishbabariya/joinsql/schema"
)

// SupportedVersions is the range of mapping document versions this build reads
const SupportedVersions = ">= 1.0, < 2.0"

// Document is a parsed mapping file: table metadata plus feature type mappings
type Document struct {
	Version  *version.Version
	Catalog  *schema.Catalog
	Mappings *Set
}

type rawDocument struct {
	Version  string       `yaml:"version"`
	Tables   []rawTable   `yaml:"tables"`
	Mappings []rawMapping `yaml:"mappings"`
}

type rawTable struct {
	Name       string      `yaml:"name"`
	Schema     string      `yaml:"schema"`
	PrimaryKey []string    `yaml:"primaryKey"`
	Columns    []rawColumn `yaml:"columns"`
}

type rawColumn struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable bool   `yaml:"nullable"`
	Geometry bool   `yaml:"geometry"`
	SRID     int    `yaml:"srid"`
}

type rawMapping struct {
	Name       string         `yaml:"name"`
	Table      string         `yaml:"table"`
	ID         []string       `yaml:"id"`
	Attributes []rawAttribute `yaml:"attributes"`
}

type rawAttribute struct {
	Target        string            `yaml:"target"`
	Source        string            `yaml:"source"`
	MultipleValue *rawMultipleValue `yaml:"multipleValue"`
	Chain         *rawChain         `yaml:"chain"`
}

type rawMultipleValue struct {
	ID           string   `yaml:"id"`
	SourceColumn string   `yaml:"sourceColumn"`
	TargetTable  string   `yaml:"targetTable"`
	TargetColumn string   `yaml:"targetColumn"`
	Value        string   `yaml:"value"`
	Properties   []string `yaml:"properties"`
}

type rawChain struct {
	LinkElement string `yaml:"linkElement"`
	LinkField   string `yaml:"linkField"`
}

// LoadFile reads a mapping document from fs
func LoadFile(fs afero.Fs, path string) (*Document, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}
	doc, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Load parses a mapping document
func Load(data []byte) (*Document, error) {
	var raw rawDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMapping, err)
	}

	v, err := checkVersion(raw.Version)
	if err != nil {
		return nil, err
	}

	catalog := schema.NewCatalog()
	for _, t := range raw.Tables {
		catalog.Add(t.toTable())
	}

	mappings := make([]*FeatureTypeMapping, 0, len(raw.Mappings))
	for _, rm := range raw.Mappings {
		m, err := rm.toMapping()
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}

	set, err := NewSet(mappings...)
	if err != nil {
		return nil, err
	}

	return &Document{Version: v, Catalog: catalog, Mappings: set}, nil
}

func checkVersion(s string) (*version.Version, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: missing version", ErrUnsupportedVersion)
	}
	v, err := version.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedVersion, err)
	}
	constraints, err := version.NewConstraint(SupportedVersions)
	if err != nil {
		return nil, err
	}
	if !constraints.Check(v) {
		return nil, fmt.Errorf("%w: %s (supported %s)", ErrUnsupportedVersion, v, SupportedVersions)
	}
	return v, nil
}

func (t rawTable) toTable() *schema.Table {
	table := &schema.Table{Name: t.Name, Schema: t.Schema}
	for _, c := range t.Columns {
		table.Columns = append(table.Columns, schema.Column{
			Name:     c.Name,
			Type:     c.Type,
			Nullable: c.Nullable,
			Geometry: c.Geometry,
			SRID:     c.SRID,
		})
	}
	if len(t.PrimaryKey) > 0 {
		table.PrimaryKey = &schema.PrimaryKey{Name: "pk_" + t.Name, Columns: t.PrimaryKey}
	}
	return table
}

func (rm rawMapping) toMapping() (*FeatureTypeMapping, error) {
	if rm.Name == "" || rm.Table == "" {
		return nil, fmt.Errorf("%w: mapping needs a name and a table", ErrInvalidMapping)
	}
	m := &FeatureTypeMapping{Name: rm.Name, SourceTable: rm.Table, IDColumns: rm.ID}

	for _, ra := range rm.Attributes {
		attr := AttributeMapping{Target: ra.Target}
		if ra.Target == "" {
			return nil, fmt.Errorf("%w: %s has an attribute without target", ErrInvalidMapping, rm.Name)
		}
		if ra.Source != "" {
			src, err := filter.ParseExpression(ra.Source)
			if err != nil {
				return nil, fmt.Errorf("%w: %s.%s source: %v", ErrInvalidMapping, rm.Name, ra.Target, err)
			}
			attr.Source = src
		}
		if mv := ra.MultipleValue; mv != nil {
			value, err := filter.ParseExpression(mv.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: %s.%s multiple value: %v", ErrInvalidMapping, rm.Name, ra.Target, err)
			}
			attr.MultipleValue = &MultipleValue{
				ID:           mv.ID,
				SourceColumn: mv.SourceColumn,
				TargetTable:  mv.TargetTable,
				TargetColumn: mv.TargetColumn,
				Value:        value,
				Properties:   mv.Properties,
			}
		}
		if ra.Chain != nil {
			attr.Chain = &FeatureChaining{LinkElement: ra.Chain.LinkElement, LinkField: ra.Chain.LinkField}
		}
		m.Attributes = append(m.Attributes, attr)
	}
	return m, nil
}
