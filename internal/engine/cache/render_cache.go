package cache

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.trai.ch/featreg/internal/core/domain"
	"go.trai.ch/zerr"
)

type renderEntry struct {
	component string
	html      string
	props     string
	timestamp time.Time
}

// RenderCache stores rendered output keyed by component and props.
// An entry is served only while the caller's props serialize identically to
// the stored ones and the entry is younger than the TTL.
type RenderCache struct {
	mu  sync.Mutex
	lru *simplelru.LRU[string, renderEntry]
	ttl time.Duration
}

// NewRenderCache creates a cache holding at most size renders for ttl each.
func NewRenderCache(size int, ttl time.Duration) *RenderCache {
	lru, err := simplelru.NewLRU[string, renderEntry](max(size, 1), nil)
	if err != nil {
		panic(err)
	}
	return &RenderCache{lru: lru, ttl: ttl}
}

// Fingerprint serializes props canonically. Map keys are sorted by encoding/json.
func Fingerprint(props domain.Props) (string, error) {
	if props == nil {
		props = domain.Props{}
	}
	data, err := json.Marshal(props)
	if err != nil {
		return "", zerr.Wrap(err, "failed to serialize render props")
	}
	return string(data), nil
}

func renderKey(component, fingerprint string) string {
	return component + "_" + strconv.FormatUint(xxhash.Sum64String(fingerprint), 16)
}

// Put caches html rendered by component for props.
func (c *RenderCache) Put(component, html string, props domain.Props) error {
	fp, err := Fingerprint(props)
	if err != nil {
		return zerr.With(err, "component", component)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(renderKey(component, fp), renderEntry{
		component: component,
		html:      html,
		props:     fp,
		timestamp: time.Now(),
	})
	return nil
}

// Get returns the cached html for component and props. Expired entries are
// evicted and reported as a miss.
func (c *RenderCache) Get(component string, props domain.Props) (string, bool) {
	fp, err := Fingerprint(props)
	if err != nil {
		return "", false
	}
	key := renderKey(component, fp)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok || e.props != fp {
		return "", false
	}
	if time.Since(e.timestamp) >= c.ttl {
		c.lru.Remove(key)
		return "", false
	}
	return e.html, true
}

// Invalidate drops every render of component.
func (c *RenderCache) Invalidate(component string) int {
	return c.removeIf(func(e renderEntry) bool { return e.component == component })
}

// RemoveOlderThan evicts renders cached before cutoff.
func (c *RenderCache) RemoveOlderThan(cutoff time.Time) int {
	return c.removeIf(func(e renderEntry) bool { return e.timestamp.Before(cutoff) })
}

func (c *RenderCache) removeIf(match func(renderEntry) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, key := range c.lru.Keys() {
		if e, ok := c.lru.Peek(key); ok && match(e) {
			c.lru.Remove(key)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached renders.
func (c *RenderCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Purge empties the cache.
func (c *RenderCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}
