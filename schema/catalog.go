package schema

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Catalog is an in-memory Lookup, populated from mapping documents or tests
type Catalog struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

var _ Lookup = (*Catalog)(nil)

// NewCatalog creates a catalog holding the given tables
func NewCatalog(tables ...*Table) *Catalog {
	c := &Catalog{tables: make(map[string]*Table)}
	for _, t := range tables {
		c.Add(t)
	}
	return c
}

// Add registers or replaces a table
func (c *Catalog) Add(t *Table) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[t.Name] = t
}

// Tables returns the registered table names in sorted order
func (c *Catalog) Tables() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) LookupTable(ctx context.Context, name string) (*Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return t, nil
}

func (c *Catalog) LookupPrimaryKey(ctx context.Context, name string) ([]string, error) {
	t, err := c.LookupTable(ctx, name)
	if err != nil {
		return nil, err
	}
	return t.PrimaryKeyColumns(), nil
}
