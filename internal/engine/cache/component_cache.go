package cache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.trai.ch/featreg/internal/core/ports"
)

// ComponentEntry is a snapshot of one cached module.
type ComponentEntry struct {
	Module       ports.Module
	InsertedAt   time.Time
	LastAccessAt time.Time
	AccessCount  int
}

// ComponentCache is a bounded LRU of loaded modules keyed by name_version.
// Every hit moves the entry to the most-recently-used position.
type ComponentCache struct {
	mu     sync.Mutex
	lru    *simplelru.LRU[string, *ComponentEntry]
	hits   uint64
	misses uint64
}

// NewComponentCache creates a cache holding at most size modules.
func NewComponentCache(size int) *ComponentCache {
	lru, err := simplelru.NewLRU[string, *ComponentEntry](max(size, 1), nil)
	if err != nil {
		// NewLRU only fails for a non-positive size.
		panic(err)
	}
	return &ComponentCache{lru: lru}
}

// Get returns the module cached under key and records the access.
func (c *ComponentCache) Get(key string) (ports.Module, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	e.LastAccessAt = time.Now()
	e.AccessCount++
	return e.Module, true
}

// Add caches module under key, evicting the least recently used entry when full.
func (c *ComponentCache) Add(key string, module ports.Module) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	c.lru.Add(key, &ComponentEntry{Module: module, InsertedAt: now, LastAccessAt: now})
}

// Peek returns a snapshot of the entry under key without touching recency or stats.
func (c *ComponentCache) Peek(key string) (ComponentEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Peek(key)
	if !ok {
		return ComponentEntry{}, false
	}
	return *e, true
}

// Keys returns the cached keys from least to most recently used.
func (c *ComponentCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Keys()
}

// Len returns the number of cached modules.
func (c *ComponentCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// RemoveOlderThan evicts entries inserted before cutoff and returns how many went.
func (c *ComponentCache) RemoveOlderThan(cutoff time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, key := range c.lru.Keys() {
		e, ok := c.lru.Peek(key)
		if ok && e.InsertedAt.Before(cutoff) {
			c.lru.Remove(key)
			removed++
		}
	}
	return removed
}

// Stats returns the hit and miss counters.
func (c *ComponentCache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// HitRatio returns hits / (hits + misses), or 0 before the first lookup.
func (c *ComponentCache) HitRatio() float64 {
	hits, misses := c.Stats()
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}

// Purge empties the cache and resets its counters.
func (c *ComponentCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
	c.hits, c.misses = 0, 0
}
