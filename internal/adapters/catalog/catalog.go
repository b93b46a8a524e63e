// Package catalog provides a compiled-in module resolver.
package catalog

import (
	"context"
	"path"
	"slices"
	"sync"

	"go.trai.ch/featreg/internal/core/domain"
	"go.trai.ch/featreg/internal/core/ports"
)

var (
	_ ports.ModuleResolver = (*Catalog)(nil)
	_ ports.Discoverer     = (*Catalog)(nil)
)

// Constructor builds the module instance for key.
type Constructor func(key domain.ModuleKey) ports.Module

// Catalog resolves modules compiled into the binary. Entries are keyed by
// their conventional path: "name/version" serves one version and "name"
// serves every version. Keys without an entry go to the fallback resolver.
type Catalog struct {
	mu       sync.RWMutex
	entries  map[string]Constructor
	listed   []domain.ModuleKey
	fallback ports.ModuleResolver
	inner    ports.Discoverer
}

// New creates a Catalog. fallback and inner may be nil.
func New(fallback ports.ModuleResolver, inner ports.Discoverer) *Catalog {
	return &Catalog{
		entries:  make(map[string]Constructor),
		fallback: fallback,
		inner:    inner,
	}
}

// Add serves key from ctor. A key with an empty version serves every version
// of the name. Keys with a version are also reported by Discover.
func (c *Catalog) Add(key domain.ModuleKey, ctor Constructor) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := key.Name
	if key.Version != "" {
		p = path.Join(key.Name, key.Version)
		if !slices.Contains(c.listed, key) {
			c.listed = append(c.listed, key)
		}
	}
	c.entries[p] = ctor
}

// Resolve builds the compiled-in module for key or defers to the fallback.
func (c *Catalog) Resolve(ctx context.Context, key domain.ModuleKey) (ports.Module, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	ctor, ok := c.entries[path.Join(key.Name, key.Version)]
	if !ok {
		ctor, ok = c.entries[key.Name]
	}
	c.mu.RUnlock()

	if ok {
		return ctor(key), nil
	}
	if c.fallback != nil {
		return c.fallback.Resolve(ctx, key)
	}
	return nil, domain.KeyError(domain.ErrModulePathNotFound, key)
}

// Discover lists the inner discoverer's modules followed by the compiled-in
// versions it does not already report.
func (c *Catalog) Discover(ctx context.Context) ([]domain.Descriptor, error) {
	var found []domain.Descriptor
	if c.inner != nil {
		var err error
		if found, err = c.inner.Discover(ctx); err != nil {
			return nil, err
		}
	}

	seen := make(map[domain.ModuleKey]bool, len(found))
	for _, d := range found {
		seen[d.Key()] = true
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, key := range c.listed {
		if seen[key] {
			continue
		}
		found = append(found, domain.Descriptor{Name: key.Name, Version: key.Version})
	}
	return found, nil
}
