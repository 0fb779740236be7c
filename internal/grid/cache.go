package grid

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Cache memoizes generated grids by (year, recovery) with LRU eviction and a
// TTL. Cached slices are shared between callers and must be treated as
// read-only.
type Cache struct {
	gen *Generator

	mu         sync.Mutex
	entries    map[cacheKey]*cacheEntry
	order      []cacheKey // front=oldest, back=newest
	maxEntries int
	ttl        time.Duration
	hits       atomic.Int64
	misses     atomic.Int64

	nowFunc func() time.Time
}

type cacheKey struct {
	year     int
	recovery int
}

type cacheEntry struct {
	cells     []HazardProfile
	createdAt time.Time
}

// CacheStats contains cache performance statistics.
type CacheStats struct {
	Entries    int     `json:"entries"`
	MaxEntries int     `json:"max_entries"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hit_rate"`
}

// NewCache wraps gen with a cache holding up to maxEntries grids for ttl.
// A non-positive ttl disables expiry.
func NewCache(gen *Generator, maxEntries int, ttl time.Duration) *Cache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &Cache{
		gen:        gen,
		entries:    make(map[cacheKey]*cacheEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
		nowFunc:    time.Now,
	}
}

// Grid returns the cached grid for (year, recovery), generating it on a miss.
// Generation happens outside the lock; two concurrent misses for the same key
// both generate and the later Put wins, which is harmless because output is
// deterministic.
func (c *Cache) Grid(year, recovery int) []HazardProfile {
	if cells, ok := c.Get(year, recovery); ok {
		return cells
	}
	cells := c.gen.Generate(year, recovery)
	c.Put(year, recovery, cells)
	return cells
}

// Get looks up a grid without generating it.
func (c *Cache) Get(year, recovery int) ([]HazardProfile, bool) {
	key := cacheKey{year: year, recovery: recovery}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	if c.ttl > 0 && c.nowFunc().Sub(entry.createdAt) > c.ttl {
		delete(c.entries, key)
		c.removeFromOrder(key)
		c.misses.Add(1)
		return nil, false
	}

	c.removeFromOrder(key)
	c.order = append(c.order, key)
	c.hits.Add(1)
	return entry.cells, true
}

// Put stores a grid, evicting the least recently used entry at capacity.
func (c *Cache) Put(year, recovery int, cells []HazardProfile) {
	key := cacheKey{year: year, recovery: recovery}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = &cacheEntry{cells: cells, createdAt: c.nowFunc()}
		c.removeFromOrder(key)
		c.order = append(c.order, key)
		return
	}

	for len(c.entries) >= c.maxEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = &cacheEntry{cells: cells, createdAt: c.nowFunc()}
	c.order = append(c.order, key)
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]*cacheEntry)
	c.order = nil
}

// Stats returns cache performance statistics.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	entries := len(c.entries)
	c.mu.Unlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return CacheStats{
		Entries:    entries,
		MaxEntries: c.maxEntries,
		Hits:       hits,
		Misses:     misses,
		HitRate:    hitRate,
	}
}

func (c *Cache) removeFromOrder(key cacheKey) {
	if i := slices.Index(c.order, key); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
}
