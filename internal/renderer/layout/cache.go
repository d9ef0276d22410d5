package layout

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
)

// Cache caches computed line layouts keyed by line number.
// Entries are validated against a hash of the line text, so a stale entry
// is recomputed rather than returned.
type Cache struct {
	mu      sync.Mutex
	entries map[int]*cacheEntry
	engine  *Engine
	maxSize int
	tick    uint64

	hits   atomic.Uint64
	misses atomic.Uint64
}

type cacheEntry struct {
	layout   *LineLayout
	lineHash uint64
	used     uint64
}

// NewCache creates a new line cache.
// maxSize is the maximum number of lines to cache (0 = unlimited).
func NewCache(engine *Engine, maxSize int) *Cache {
	return &Cache{
		entries: make(map[int]*cacheEntry),
		engine:  engine,
		maxSize: max(0, maxSize),
	}
}

// Engine returns the engine used to compute layouts.
func (c *Cache) Engine() *Engine {
	return c.engine
}

// Get retrieves or computes the layout for a line.
func (c *Cache) Get(line int, text string) *LineLayout {
	hash := hashLine(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.tick++
	if e, ok := c.entries[line]; ok && e.lineHash == hash {
		e.used = c.tick
		c.hits.Add(1)
		return e.layout
	}

	c.misses.Add(1)
	l := c.engine.Layout(text, line)
	c.entries[line] = &cacheEntry{layout: l, lineHash: hash, used: c.tick}
	if c.maxSize > 0 && len(c.entries) > c.maxSize {
		c.evictOldest()
	}
	return l
}

// Invalidate drops every cached layout. Call it after changing the
// engine's tab or wrap settings.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[int]*cacheEntry)
}

// Len returns the number of cached layouts.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns cache hit and miss counts.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// evictOldest removes the least recently used entry (must hold lock).
func (c *Cache) evictOldest() {
	oldest := -1
	var oldestUsed uint64
	for line, e := range c.entries {
		if oldest < 0 || e.used < oldestUsed {
			oldest = line
			oldestUsed = e.used
		}
	}
	if oldest >= 0 {
		delete(c.entries, oldest)
	}
}

func hashLine(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
