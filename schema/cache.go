package schema

import (
	"context"
	"sync"
	"time"
)

// CacheStats represents cache statistics
type CacheStats struct {
	Hits      int64
	Misses    int64
	Size      int
	MaxSize   int
	Evictions int64
}

// CachedLookup memoizes table metadata from another Lookup in an LRU with TTL.
// Primary keys rarely change, so introspection results are reused across statements.
type CachedLookup struct {
	next Lookup

	mu      sync.Mutex
	data    map[string]*cacheNode
	maxSize int
	ttl     time.Duration
	head    *cacheNode
	tail    *cacheNode
	stats   CacheStats
}

var _ Lookup = (*CachedLookup)(nil)

// cacheNode represents a node in the doubly-linked list for LRU
type cacheNode struct {
	key       string
	table     *Table
	expiresAt time.Time
	prev      *cacheNode
	next      *cacheNode
}

// NewCachedLookup wraps next; a zero ttl keeps entries until evicted
func NewCachedLookup(next Lookup, maxSize int, ttl time.Duration) *CachedLookup {
	if maxSize <= 0 {
		maxSize = 128
	}
	return &CachedLookup{
		next:    next,
		data:    make(map[string]*cacheNode),
		maxSize: maxSize,
		ttl:     ttl,
		stats:   CacheStats{MaxSize: maxSize},
	}
}

func (c *CachedLookup) LookupTable(ctx context.Context, name string) (*Table, error) {
	if t, ok := c.get(name); ok {
		return t, nil
	}

	t, err := c.next.LookupTable(ctx, name)
	if err != nil {
		return nil, err
	}
	c.set(name, t)
	return t, nil
}

func (c *CachedLookup) LookupPrimaryKey(ctx context.Context, name string) ([]string, error) {
	t, err := c.LookupTable(ctx, name)
	if err != nil {
		return nil, err
	}
	return t.PrimaryKeyColumns(), nil
}

// Invalidate drops a table so the next lookup reaches the underlying source
func (c *CachedLookup) Invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if node, ok := c.data[name]; ok {
		c.removeNode(node)
	}
}

// Stats returns cache statistics
func (c *CachedLookup) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = len(c.data)
	return s
}

func (c *CachedLookup) get(key string) (*Table, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.data[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	// Check if expired
	if !node.expiresAt.IsZero() && time.Now().After(node.expiresAt) {
		c.removeNode(node)
		c.stats.Misses++
		return nil, false
	}

	c.moveToFront(node)
	c.stats.Hits++
	return node.table, true
}

func (c *CachedLookup) set(key string, t *Table) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = time.Now().Add(c.ttl)
	}

	if node, exists := c.data[key]; exists {
		node.table = t
		node.expiresAt = expiresAt
		c.moveToFront(node)
		return
	}

	if len(c.data) >= c.maxSize && c.tail != nil {
		c.removeNode(c.tail)
		c.stats.Evictions++
	}

	node := &cacheNode{key: key, table: t, expiresAt: expiresAt}
	c.data[key] = node
	c.addToFront(node)
}

func (c *CachedLookup) addToFront(node *cacheNode) {
	node.prev = nil
	node.next = c.head
	if c.head != nil {
		c.head.prev = node
	}
	c.head = node
	if c.tail == nil {
		c.tail = node
	}
}

func (c *CachedLookup) moveToFront(node *cacheNode) {
	if node == c.head {
		return
	}
	c.unlink(node)
	c.addToFront(node)
}

func (c *CachedLookup) removeNode(node *cacheNode) {
	c.unlink(node)
	delete(c.data, node.key)
}

func (c *CachedLookup) unlink(node *cacheNode) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		c.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		c.tail = node.prev
	}
	node.prev, node.next = nil, nil
}
