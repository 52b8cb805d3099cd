// Package schema provides table metadata lookups for the joining planner.
package schema

import (
	"context"
	"strings"
)

// Lookup resolves table metadata by name
type Lookup interface {
	// LookupTable returns the table's columns and primary key
	LookupTable(ctx context.Context, name string) (*Table, error)
	// LookupPrimaryKey returns the ordered primary key columns; empty when the table has none
	LookupPrimaryKey(ctx context.Context, name string) ([]string, error)
}

// Table represents a database table
type Table struct {
	Name       string
	Schema     string
	Columns    []Column
	PrimaryKey *PrimaryKey
}

// Column represents a table column
type Column struct {
	Name     string
	Type     string
	Nullable bool
	// Geometry marks spatial columns, read through the dialect's geometry encoding
	Geometry bool
	SRID     int
}

// PrimaryKey represents a primary key constraint
type PrimaryKey struct {
	Name    string
	Columns []string
}

// PrimaryKeyColumns returns the primary key columns, nil when the table has no key
func (t *Table) PrimaryKeyColumns() []string {
	if t.PrimaryKey == nil {
		return nil
	}
	out := make([]string, len(t.PrimaryKey.Columns))
	copy(out, t.PrimaryKey.Columns)
	return out
}

// Column returns the named column
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// IsPrimaryKey reports whether the column is part of the primary key
func (t *Table) IsPrimaryKey(column string) bool {
	if t.PrimaryKey == nil {
		return false
	}
	for _, c := range t.PrimaryKey.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// isGeometryType recognizes spatial column types across providers
func isGeometryType(t string) bool {
	t = strings.ToLower(t)
	for _, s := range []string{"geometry", "geography", "point", "linestring", "polygon", "multipoint", "multilinestring", "multipolygon", "geometrycollection"} {
		if strings.Contains(t, s) {
			return true
		}
	}
	return false
}
