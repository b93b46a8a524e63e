// Package registry implements the authoritative feature module registry.
package registry

import (
	"context"
	"maps"
	"sync"
	"time"

	"go.trai.ch/featreg/internal/core/domain"
	"go.trai.ch/featreg/internal/core/ports"
)

// Registry maps (name, version) pairs to loaded modules and their metadata.
// It loads missing modules on demand and never evicts anything on its own.
type Registry struct {
	versions  *VersionIndex
	store     *ModuleStore
	loader    *Loader
	rollbacks *RollbackTracker
	routes    *RouteResolver
	logger    ports.Logger

	// mu orders registrations against Clear; generation counts Clear calls.
	mu         sync.RWMutex
	generation uint64
}

// RouteConfig is the static routing data handed to the route resolver.
type RouteConfig struct {
	// Table maps well-known routes to module names.
	Table map[string]string
	// DefaultModule is served when nothing else claims a route.
	DefaultModule string
}

// New creates a Registry.
func New(
	resolver ports.ModuleResolver,
	journal ports.RollbackJournal,
	telemetry ports.Telemetry,
	logger ports.Logger,
	routes RouteConfig,
) *Registry {
	versions := NewVersionIndex()
	store := NewModuleStore()
	r := &Registry{
		versions:  versions,
		store:     store,
		loader:    NewLoader(resolver, telemetry),
		rollbacks: NewRollbackTracker(versions, store, journal, logger),
		logger:    logger,
	}
	r.routes = NewRouteResolver(r, routes, logger)
	return r
}

// Register stores module under (name, version). Registering an existing key
// replaces the previous entry. fields are kept as metadata; their
// rollbackConditions entry is parsed once here and invalid conditions are
// logged and dropped.
func (r *Registry) Register(name, version string, module ports.Module, fields map[string]any) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.register(name, version, module, fields)
}

// registerIn registers module only if the registry has not been cleared
// since generation gen.
func (r *Registry) registerIn(gen uint64, name, version string, module ports.Module, fields map[string]any) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.generation != gen {
		return false
	}
	r.register(name, version, module, fields)
	return true
}

func (r *Registry) register(name, version string, module ports.Module, fields map[string]any) {
	md := domain.Metadata{
		Name:         name,
		Version:      version,
		RegisteredAt: time.Now(),
		Fields:       maps.Clone(fields),
	}
	if md.Fields == nil {
		md.Fields = make(map[string]any)
	}

	conds, errs := domain.ParseConditions(md.Fields[domain.RollbackConditionsField])
	for _, err := range errs {
		r.logger.Error(domain.WithKey(err, domain.NewModuleKey(name, version)))
	}
	md.RollbackConditions = conds

	key := domain.NewModuleKey(name, version)
	r.store.Put(key, module, md)
	r.versions.Record(name, version)

	r.logger.Info("registered module", "module", key.String())
}

// Load returns the module for (name, version). A version of "latest" (or "")
// resolves to the highest registered version. Stored modules are returned
// without reloading; otherwise the module is resolved dynamically and
// registered with the fields it describes itself with. A module whose load
// outlives a Clear is returned but not registered.
func (r *Registry) Load(ctx context.Context, name, version string) (ports.Module, error) {
	key, err := r.ResolveVersion(name, version)
	if err != nil {
		return nil, err
	}

	if mod, ok := r.store.Get(key); ok {
		return mod, nil
	}

	gen := r.Generation()
	mod, err := r.loader.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	if !r.registerIn(gen, key.Name, key.Version, mod, mod.Info().Fields) {
		r.logger.Warn("registry cleared while loading, module not kept", "module", key.String())
	}
	return mod, nil
}

// Generation counts how often the registry has been cleared.
func (r *Registry) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}

// Lookup returns a stored module without loading it.
func (r *Registry) Lookup(name, version string) (ports.Module, bool) {
	key, err := r.ResolveVersion(name, version)
	if err != nil {
		return nil, false
	}
	return r.store.Get(key)
}

// ResolveVersion turns a version request into a concrete key.
func (r *Registry) ResolveVersion(name, version string) (domain.ModuleKey, error) {
	key := domain.NewModuleKey(name, version)
	if !key.IsLatest() {
		return key, nil
	}
	latest, err := r.versions.Latest(name)
	if err != nil {
		return key, err
	}
	return domain.NewModuleKey(name, latest), nil
}

// Metadata returns the metadata of (name, version), if registered.
func (r *Registry) Metadata(name, version string) (*domain.Metadata, bool) {
	key, err := r.ResolveVersion(name, version)
	if err != nil {
		return nil, false
	}
	return r.store.Metadata(key)
}

// Versions returns the ascending registered versions of name.
func (r *Registry) Versions(name string) []string {
	return r.versions.List(name)
}

// Names returns every registered module name in registration order.
func (r *Registry) Names() []string {
	return r.versions.Names()
}

// ListModules summarizes every registered module name.
func (r *Registry) ListModules() []domain.ModuleSummary {
	names := r.versions.Names()
	out := make([]domain.ModuleSummary, 0, len(names))
	for _, name := range names {
		summary := domain.ModuleSummary{
			Name:     name,
			Versions: r.versions.List(name),
		}
		if latest, err := r.versions.Latest(name); err == nil {
			summary.LatestVersion = latest
			summary.Metadata, _ = r.store.Metadata(domain.NewModuleKey(name, latest))
		}
		out = append(out, summary)
	}
	return out
}

// Len returns the number of registered (name, version) pairs.
func (r *Registry) Len() int {
	return r.store.Len()
}

// Rollback records the intent to move name back to version.
func (r *Registry) Rollback(name, version string) error {
	return r.rollbacks.Rollback(name, version)
}

// ShouldRollback reports whether results trip a rollback condition of (name, version).
func (r *Registry) ShouldRollback(name, version string, results domain.TestResults) bool {
	return r.rollbacks.ShouldRollback(name, version, results)
}

// History returns the rollback records of name in the order they happened.
func (r *Registry) History(name string) []domain.RollbackRecord {
	return r.rollbacks.History(name)
}

// FindModuleForRoute returns the module that owns route.
func (r *Registry) FindModuleForRoute(ctx context.Context, route string) (ports.Module, bool) {
	return r.routes.FindModuleForRoute(ctx, route)
}

// Clear wipes all modules, versions, metadata and rollback history.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.generation++
	r.store.Reset()
	r.versions.Reset()
	r.rollbacks.Reset()
}
