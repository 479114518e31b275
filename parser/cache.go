package parser

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/wbrown/cyphergraph"
	"github.com/wbrown/cyphergraph/ast"
)

// DefaultCacheSize is the entry count a Cache uses when constructed with
// size <= 0.
const DefaultCacheSize = 256

// cacheEntry is one memoized Parse result, keyed by exact query text.
type cacheEntry struct {
	query     string
	ast       *ast.Query
	residuals map[string]cyphergraph.Value
	semantic  *SemanticState
}

// Cache memoizes Parse by exact query text in a bounded, strict LRU: the
// entry touched least recently is evicted first once the cache is full,
// never by age or a time-to-live.
type Cache struct {
	mu       sync.Mutex
	maxSize  int
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
	hits     int64
	misses   int64
}

// NewCache creates an LRU parse cache holding at most size entries.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cache{
		maxSize: size,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Parse returns the memoized parse of query if present, else parses it,
// stores the result, and returns it. A parse error is never cached: a
// transient fix to host-supplied query text (e.g. a corrected typo) must
// not be shadowed by a stale failure.
func (c *Cache) Parse(query string) (*ast.Query, map[string]cyphergraph.Value, *SemanticState, error) {
	c.mu.Lock()
	if el, ok := c.entries[query]; ok {
		c.order.MoveToFront(el)
		entry := el.Value.(*cacheEntry)
		atomic.AddInt64(&c.hits, 1)
		c.mu.Unlock()
		return entry.ast, entry.residuals, entry.semantic, nil
	}
	atomic.AddInt64(&c.misses, 1)
	c.mu.Unlock()

	q, residuals, semantic, err := Parse(query)
	if err != nil {
		return nil, nil, nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[query]; ok {
		c.order.MoveToFront(el)
		entry := el.Value.(*cacheEntry)
		return entry.ast, entry.residuals, entry.semantic, nil
	}
	if c.order.Len() >= c.maxSize {
		c.evictOldest()
	}
	el := c.order.PushFront(&cacheEntry{query: query, ast: q, residuals: residuals, semantic: semantic})
	c.entries[query] = el
	return q, residuals, semantic, nil
}

func (c *Cache) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	c.order.Remove(el)
	delete(c.entries, el.Value.(*cacheEntry).query)
}

// Clear empties the cache and resets its hit/miss counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order = list.New()
	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
}

// Stats reports cumulative hit/miss counts and current entry count.
func (c *Cache) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses), c.order.Len()
}
