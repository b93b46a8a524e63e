// Package cache implements the performance layer in front of the module registry.
package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.trai.ch/featreg/internal/core/domain"
	"go.trai.ch/featreg/internal/core/ports"
	"go.trai.ch/featreg/internal/engine/registry"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Registry wraps a registry.Registry with load de-duplication, a component
// LRU, a render cache, debounced route lookups and periodic cleanup.
type Registry struct {
	inner      *registry.Registry
	components *ComponentCache
	renders    *RenderCache
	throttler  *Throttler
	routes     *registry.RouteResolver
	probe      ports.MemoryProbe
	logger     ports.Logger
	cfg        domain.CacheConfig
	critical   []string

	loads    singleflight.Group
	inflight atomic.Int64

	// clearMu orders cache fills against Clear.
	clearMu sync.RWMutex

	routeMu      sync.Mutex
	routeWaiters map[string][]chan routeResult
	closed       bool

	mu          sync.Mutex
	lastCleanup time.Time
}

type routeResult struct {
	module ports.Module
	ok     bool
}

// New creates a cached Registry in front of inner.
func New(inner *registry.Registry, cfg *domain.Config, probe ports.MemoryProbe, logger ports.Logger) *Registry {
	r := &Registry{
		inner:        inner,
		components:   NewComponentCache(cfg.Cache.Components),
		renders:      NewRenderCache(cfg.Cache.Renders, cfg.Cache.RenderTTL),
		throttler:    NewThrottler(),
		probe:        probe,
		logger:       logger,
		cfg:          cfg.Cache,
		critical:     append([]string(nil), cfg.CriticalModules...),
		routeWaiters: make(map[string][]chan routeResult),
	}
	r.routes = registry.NewRouteResolver(r, registry.RouteConfig{
		Table:         cfg.Routes,
		DefaultModule: cfg.DefaultModule,
	}, logger)
	return r
}

// Register registers module and caches it under its name_version key.
// Renders of a previous module under the same key are dropped.
func (r *Registry) Register(name, version string, module ports.Module, fields map[string]any) {
	r.clearMu.RLock()
	defer r.clearMu.RUnlock()

	r.inner.Register(name, version, module, fields)

	key := domain.NewModuleKey(name, version).CacheKey()
	r.components.Add(key, module)
	r.renders.Invalidate(key)
}

// Load returns the module for (name, version).
func (r *Registry) Load(ctx context.Context, name, version string) (ports.Module, error) {
	mod, _, err := r.Fetch(ctx, name, version)
	return mod, err
}

// Fetch is Load that also reports where the module came from.
//
// Concurrent fetches of the same key share one underlying load. The shared
// load is detached from the caller's cancellation: a caller whose context
// ends stops waiting, but the load still completes and fills the cache.
// Loads are keyed by registry generation, so a load that outlives a Clear
// neither fills the cache nor is joined by later fetches.
func (r *Registry) Fetch(ctx context.Context, name, version string) (ports.Module, domain.LoadSource, error) {
	key, err := r.inner.ResolveVersion(name, version)
	if err != nil {
		return nil, "", err
	}
	ck := key.CacheKey()

	if mod, ok := r.components.Get(ck); ok {
		return mod, domain.LoadSourceCache, nil
	}

	gen := r.inner.Generation()
	if mod, ok := r.inner.Lookup(key.Name, key.Version); ok {
		r.fill(gen, ck, mod)
		return mod, domain.LoadSourceStore, nil
	}

	detached := context.WithoutCancel(ctx)
	flight := ck + "#" + strconv.FormatUint(gen, 10)
	ch := r.loads.DoChan(flight, func() (any, error) {
		r.inflight.Add(1)
		defer r.inflight.Add(-1)

		mod, err := r.inner.Load(detached, key.Name, key.Version)
		if err != nil {
			return nil, err
		}
		r.fill(gen, ck, mod)
		return mod, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, "", res.Err
		}
		src := domain.LoadSourceResolver
		if res.Shared {
			src = domain.LoadSourceShared
		}
		return res.Val.(ports.Module), src, nil
	case <-ctx.Done():
		return nil, "", ctx.Err()
	}
}

// fill caches mod unless the registry was cleared after generation gen.
func (r *Registry) fill(gen uint64, ck string, mod ports.Module) {
	r.clearMu.RLock()
	defer r.clearMu.RUnlock()
	if r.inner.Generation() == gen {
		r.components.Add(ck, mod)
	}
}

// RenderWithCache writes the output of (name, version) for props to w,
// serving a cached render when one is fresh. A failing render writes an
// error block to w and returns the error.
func (r *Registry) RenderWithCache(ctx context.Context, name, version string, w io.Writer, props domain.Props) error {
	key, err := r.inner.ResolveVersion(name, version)
	if err != nil {
		return err
	}
	ck := key.CacheKey()

	if out, ok := r.renders.Get(ck, props); ok {
		_, err := io.WriteString(w, out)
		return err
	}

	mod, err := r.Load(ctx, key.Name, key.Version)
	if err != nil {
		return err
	}

	renderer, ok := mod.(ports.Renderer)
	if !ok {
		return domain.KeyError(domain.ErrUnsupportedCapability, key)
	}

	var buf bytes.Buffer
	if err := renderer.Render(ctx, &buf, props); err != nil {
		if errors.Is(err, domain.ErrUnsupportedCapability) {
			return domain.WithKey(err, key)
		}
		_, _ = fmt.Fprintf(w, `<div class="error">Failed to render %s: %s</div>`,
			html.EscapeString(name), html.EscapeString(err.Error()))
		return domain.WithKey(zerr.Wrap(err, "render failed"), key)
	}

	if err := r.renders.Put(ck, buf.String(), props); err != nil {
		r.logger.Warn("render not cached", "module", key.String(), "error", err)
	}

	_, err = w.Write(buf.Bytes())
	return err
}

// FindModuleForRoute resolves route after a short quiet period. Every caller
// that asks for the same route within the period receives the same result.
func (r *Registry) FindModuleForRoute(ctx context.Context, route string) (ports.Module, bool) {
	ch := make(chan routeResult, 1)

	r.routeMu.Lock()
	if r.closed {
		r.routeMu.Unlock()
		return nil, false
	}
	r.routeWaiters[route] = append(r.routeWaiters[route], ch)
	r.routeMu.Unlock()

	detached := context.WithoutCancel(ctx)
	r.throttler.Debounce("route:"+route, func() { r.flushRoute(detached, route) }, r.cfg.RouteThrottle)

	select {
	case res := <-ch:
		return res.module, res.ok
	case <-ctx.Done():
		return nil, false
	}
}

func (r *Registry) flushRoute(ctx context.Context, route string) {
	r.routeMu.Lock()
	waiters := r.routeWaiters[route]
	delete(r.routeWaiters, route)
	r.routeMu.Unlock()

	if len(waiters) == 0 {
		return
	}

	mod, ok := r.routes.FindModuleForRoute(ctx, route)
	for _, ch := range waiters {
		ch <- routeResult{module: mod, ok: ok}
	}
}

// Throttle schedules fn under key with the configured throttle interval.
func (r *Registry) Throttle(key string, fn func()) {
	r.throttler.Throttle(key, fn, r.cfg.ThrottleInterval)
}

// Debounce schedules fn under key with the configured debounce delay.
func (r *Registry) Debounce(key string, fn func()) {
	r.throttler.Debounce(key, fn, r.cfg.DebounceDelay)
}

// CancelScheduled drops a callback scheduled with Throttle or Debounce.
func (r *Registry) CancelScheduled(key string) bool {
	return r.throttler.Cancel(key)
}

// PreloadReport is the outcome of preloading the critical modules.
type PreloadReport struct {
	Loaded []string
	Failed map[string]error
}

// Err joins every preload failure, or returns nil if all modules loaded.
func (p PreloadReport) Err() error {
	errs := make([]error, 0, len(p.Failed))
	for _, err := range p.Failed {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Preload loads every critical module concurrently. Failures are logged and
// reported but never stop the other loads.
func (r *Registry) Preload(ctx context.Context) PreloadReport {
	errs := make([]error, len(r.critical))

	var g errgroup.Group
	for i, name := range r.critical {
		g.Go(func() error {
			if _, err := r.Load(ctx, name, domain.LatestVersion); err != nil {
				r.logger.Warn("failed to preload module", "module", name, "error", err)
				errs[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	report := PreloadReport{Failed: make(map[string]error)}
	for i, name := range r.critical {
		if errs[i] != nil {
			report.Failed[name] = errs[i]
			continue
		}
		report.Loaded = append(report.Loaded, name)
	}
	return report
}

// CleanupReport counts what a cleanup pass evicted.
type CleanupReport struct {
	Components int
	Renders    int
	Throttles  int
}

// Cleanup evicts components older than the max age, renders past their TTL
// and throttle keys that settled longer ago than the throttle max age.
func (r *Registry) Cleanup() CleanupReport {
	now := time.Now()
	report := CleanupReport{
		Components: r.components.RemoveOlderThan(now.Add(-r.cfg.MaxAge)),
		Renders:    r.renders.RemoveOlderThan(now.Add(-r.cfg.RenderTTL)),
		Throttles:  r.throttler.Sweep(r.cfg.ThrottleMaxAge),
	}

	r.mu.Lock()
	r.lastCleanup = now
	r.mu.Unlock()

	r.logger.Info("cache cleanup",
		"components", report.Components, "renders", report.Renders, "throttles", report.Throttles)
	return report
}

// Monitor runs Cleanup every cleanup interval until ctx ends. When the heap
// is above the memory threshold it also drops every cached render.
func (r *Registry) Monitor(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Cleanup()
			r.relievePressure()
		}
	}
}

func (r *Registry) relievePressure() {
	heap := r.probe.HeapInUse()
	if heap <= r.cfg.MemoryThreshold {
		return
	}
	r.logger.Warn("memory pressure detected, dropping cached renders",
		"heap", heap, "threshold", r.cfg.MemoryThreshold)
	r.renders.Purge()
}

// Metrics is a snapshot of the cache layer.
type Metrics struct {
	Components      int
	Renders         int
	Throttles       int
	InFlight        int
	Registered      int
	Hits            uint64
	Misses          uint64
	HitRatio        float64
	LastCleanup     time.Time
	CriticalModules []string
}

// Metrics returns a snapshot of cache sizes and counters.
func (r *Registry) Metrics() Metrics {
	hits, misses := r.components.Stats()

	r.mu.Lock()
	last := r.lastCleanup
	r.mu.Unlock()

	return Metrics{
		Components:      r.components.Len(),
		Renders:         r.renders.Len(),
		Throttles:       r.throttler.Len(),
		InFlight:        int(r.inflight.Load()),
		Registered:      r.inner.Len(),
		Hits:            hits,
		Misses:          misses,
		HitRatio:        r.components.HitRatio(),
		LastCleanup:     last,
		CriticalModules: append([]string(nil), r.critical...),
	}
}

// Components exposes the component cache.
func (r *Registry) Components() *ComponentCache {
	return r.components
}

// Renders exposes the render cache.
func (r *Registry) Renders() *RenderCache {
	return r.renders
}

// Metadata returns the metadata of (name, version), if registered.
func (r *Registry) Metadata(name, version string) (*domain.Metadata, bool) {
	return r.inner.Metadata(name, version)
}

// Versions returns the ascending registered versions of name.
func (r *Registry) Versions(name string) []string {
	return r.inner.Versions(name)
}

// Names returns registered module names in registration order.
func (r *Registry) Names() []string {
	return r.inner.Names()
}

// ListModules summarizes every registered module.
func (r *Registry) ListModules() []domain.ModuleSummary {
	return r.inner.ListModules()
}

// Rollback records the intent to move name back to version.
func (r *Registry) Rollback(name, version string) error {
	return r.inner.Rollback(name, version)
}

// ShouldRollback evaluates the rollback conditions of (name, version).
func (r *Registry) ShouldRollback(name, version string, results domain.TestResults) bool {
	return r.inner.ShouldRollback(name, version, results)
}

// History returns the rollback history of name.
func (r *Registry) History(name string) []domain.RollbackRecord {
	return r.inner.History(name)
}

// Clear wipes the registry and every cache. Loads still in flight finish for
// their callers but are not kept. Scheduled throttle and debounce callbacks
// belong to whoever scheduled them and are left alone.
func (r *Registry) Clear() {
	r.clearMu.Lock()
	defer r.clearMu.Unlock()

	r.inner.Clear()
	r.components.Purge()
	r.renders.Purge()
}

// Close cancels scheduled callbacks and releases route lookups still waiting.
func (r *Registry) Close() {
	r.throttler.Stop()

	r.routeMu.Lock()
	r.closed = true
	waiters := r.routeWaiters
	r.routeWaiters = make(map[string][]chan routeResult)
	r.routeMu.Unlock()

	for _, chans := range waiters {
		for _, ch := range chans {
			ch <- routeResult{}
		}
	}
}
