package app

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/featreg/internal/core/domain"
	"go.trai.ch/featreg/internal/core/ports"
	"go.trai.ch/featreg/internal/engine/cache"
	"go.trai.ch/zerr"
)

// Session is one configured registry with its cache layer.
type Session struct {
	cfg        *domain.Config
	registry   *cache.Registry
	resolver   ports.ModuleResolver
	discoverer ports.Discoverer
	watcher    ports.Watcher
	telemetry  ports.Telemetry
	logger     ports.Logger
}

// BootstrapReport lists what discovery registered and what it skipped.
type BootstrapReport struct {
	Registered []domain.ModuleKey
	Skipped    map[domain.ModuleKey]error
}

// Bootstrap discovers module versions and registers each of them. A module
// that fails to load is logged and skipped.
func (s *Session) Bootstrap(ctx context.Context) (BootstrapReport, error) {
	report := BootstrapReport{Skipped: make(map[domain.ModuleKey]error)}

	found, err := s.discoverer.Discover(ctx)
	if err != nil {
		return report, zerr.Wrap(err, "module discovery failed")
	}

	for _, d := range found {
		key := d.Key()
		if _, err := s.registry.Load(ctx, key.Name, key.Version); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			s.logger.Error(zerr.Wrap(err, "skipping module"))
			report.Skipped[key] = err
			continue
		}
		report.Registered = append(report.Registered, key)
	}

	s.logger.Info("bootstrap complete",
		"registered", len(report.Registered), "skipped", len(report.Skipped))
	return report, nil
}

// Config returns the configuration the session runs with.
func (s *Session) Config() *domain.Config {
	return s.cfg
}

// Registry exposes the cached registry.
func (s *Session) Registry() *cache.Registry {
	return s.registry
}

// List summarizes every registered module.
func (s *Session) List() []domain.ModuleSummary {
	return s.registry.ListModules()
}

// Load returns the module for (name, version) and where it was served from.
func (s *Session) Load(ctx context.Context, name, version string) (ports.Module, domain.LoadSource, error) {
	ctx, vertex := s.telemetry.Record(ctx, "fetch "+domain.NewModuleKey(name, version).String())

	mod, src, err := s.registry.Fetch(ctx, name, version)
	if err == nil && (src == domain.LoadSourceCache || src == domain.LoadSourceStore) {
		vertex.Cached()
	}
	vertex.Complete(err)
	return mod, src, err
}

// Route returns the module serving route.
func (s *Session) Route(ctx context.Context, route string) (ports.Module, error) {
	mod, ok := s.registry.FindModuleForRoute(ctx, route)
	if !ok {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrNoRouteMatch, ""), "route", route)
	}
	return mod, nil
}

// Render writes the markup of (name, version) for props to w.
func (s *Session) Render(ctx context.Context, name, version string, w io.Writer, props domain.Props) error {
	return s.registry.RenderWithCache(ctx, name, version, w, props)
}

// RenderRoute renders the module serving route. The route is passed to the
// module as the "route" prop unless props already carry one.
func (s *Session) RenderRoute(ctx context.Context, route string, w io.Writer, props domain.Props) error {
	mod, err := s.Route(ctx, route)
	if err != nil {
		return err
	}

	merged := domain.Props{"route": route}
	for k, v := range props {
		merged[k] = v
	}

	info := mod.Info()
	return s.registry.RenderWithCache(ctx, info.Name, info.Version, w, merged)
}

// Dispatch runs a request through (name, version): Init, Handle, then
// Cleanup, each when the module provides it.
func (s *Session) Dispatch(
	ctx context.Context,
	name, version string,
	req domain.Request,
) (resp domain.Response, err error) {
	mod, _, err := s.Load(ctx, name, version)
	if err != nil {
		return nil, err
	}
	key := domain.NewModuleKey(mod.Info().Name, mod.Info().Version)

	handler, ok := mod.(ports.RequestHandler)
	if !ok {
		return nil, domain.KeyError(domain.ErrUnsupportedCapability, key)
	}

	if initializer, ok := mod.(ports.Initializer); ok {
		if err := initializer.Init(ctx); err != nil {
			return nil, domain.WithKey(zerr.Wrap(err, "module init failed"), key)
		}
	}
	if cleaner, ok := mod.(ports.Cleaner); ok {
		defer func() {
			if cerr := cleaner.Cleanup(ctx); cerr != nil {
				s.logger.Error(domain.WithKey(zerr.Wrap(cerr, "module cleanup failed"), key))
			}
		}()
	}

	resp, err = handler.Handle(ctx, req)
	if err != nil {
		return nil, domain.WithKey(zerr.Wrap(err, "module request failed"), key)
	}
	return resp, nil
}

// Rollback records the intent to move name back to version.
func (s *Session) Rollback(name, version string) error {
	return s.registry.Rollback(name, version)
}

// History returns the rollback history of name.
func (s *Session) History(name string) []domain.RollbackRecord {
	return s.registry.History(name)
}

// CheckResult is the verdict of evaluating test results against a module's
// rollback conditions.
type CheckResult struct {
	Key        domain.ModuleKey
	Rollback   bool
	Conditions []domain.Condition
}

// Check evaluates results against the rollback conditions of (name, version).
func (s *Session) Check(name, version string, results domain.TestResults) (CheckResult, error) {
	md, ok := s.registry.Metadata(name, version)
	if !ok {
		return CheckResult{}, domain.KeyError(domain.ErrVersionNotFound, domain.NewModuleKey(name, version))
	}

	return CheckResult{
		Key:        domain.NewModuleKey(md.Name, md.Version),
		Rollback:   s.registry.ShouldRollback(md.Name, md.Version, results),
		Conditions: md.RollbackConditions,
	}, nil
}

// Preload loads the configured critical modules.
func (s *Session) Preload(ctx context.Context) cache.PreloadReport {
	return s.registry.Preload(ctx)
}

// Metrics returns a snapshot of the cache layer.
func (s *Session) Metrics() cache.Metrics {
	return s.registry.Metrics()
}

// Watch re-registers module versions whose files change until ctx ends.
// Bursts of changes to one version are debounced into a single reload, and
// every reload is reported to onReload. Cache maintenance runs alongside.
func (s *Session) Watch(ctx context.Context, onReload func(domain.ModuleKey, error)) error {
	if err := s.watcher.Start(ctx, s.cfg.FeaturesDir); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to watch features directory"), "path", s.cfg.FeaturesDir)
	}
	defer func() {
		if err := s.watcher.Stop(); err != nil {
			s.logger.Error(zerr.Wrap(err, "failed to stop watcher"))
		}
	}()

	go s.registry.Monitor(ctx)

	reloads := &reloadSet{registry: s.registry, keys: make(map[string]struct{})}
	defer reloads.stop()

	s.logger.Info("watching for module changes", "path", s.cfg.FeaturesDir)
	for event := range s.watcher.Events() {
		for _, key := range s.affected(event.Path) {
			reloads.schedule(key, func() {
				onReload(key, s.reload(ctx, key))
			})
		}
	}
	return ctx.Err()
}

// reloadSet tracks the debounced reloads of one Watch call so none of them
// runs after Watch returns.
type reloadSet struct {
	registry *cache.Registry
	keys     map[string]struct{}

	mu      sync.Mutex
	stopped bool
	running sync.WaitGroup
}

func (r *reloadSet) schedule(key domain.ModuleKey, fn func()) {
	name := "reload:" + key.String()
	r.keys[name] = struct{}{}
	r.registry.Debounce(name, func() {
		r.mu.Lock()
		if r.stopped {
			r.mu.Unlock()
			return
		}
		r.running.Add(1)
		r.mu.Unlock()

		defer r.running.Done()
		fn()
	})
}

// stop cancels pending reloads and waits for the ones already running.
func (r *reloadSet) stop() {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()

	for name := range r.keys {
		r.registry.CancelScheduled(name)
	}
	r.running.Wait()
}

// affected maps a changed path onto the module versions it belongs to.
func (s *Session) affected(path string) []domain.ModuleKey {
	rel, err := filepath.Rel(s.cfg.FeaturesDir, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return nil
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return nil
	}
	name := parts[0]
	if len(parts) > 2 || !strings.HasSuffix(parts[1], ".go") {
		if !strings.HasPrefix(parts[1], "v") {
			return nil
		}
		return []domain.ModuleKey{domain.NewModuleKey(name, parts[1])}
	}

	// A shared source file changes every registered version of the module.
	var keys []domain.ModuleKey
	for _, version := range s.registry.Versions(name) {
		keys = append(keys, domain.NewModuleKey(name, version))
	}
	return keys
}

func (s *Session) reload(ctx context.Context, key domain.ModuleKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mod, err := s.resolver.Resolve(ctx, key)
	if err != nil {
		err = domain.NewLoadError(key, err)
		s.logger.Error(err)
		return err
	}

	s.registry.Register(key.Name, key.Version, mod, mod.Info().Fields)
	s.logger.Info("module reloaded", "module", key.String())
	return nil
}

// Close stops the cache layer's scheduled work.
func (s *Session) Close() {
	s.registry.Close()
}
