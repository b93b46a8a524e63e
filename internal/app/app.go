// Package app implements the application layer for featreg.
package app

import (
	"context"

	"go.trai.ch/featreg/internal/core/ports"
	"go.trai.ch/featreg/internal/engine/cache"
	"go.trai.ch/featreg/internal/engine/registry"
	"go.trai.ch/zerr"
)

// App wires configuration, resolvers and the registry layers together.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	telemetry    ports.Telemetry
	resolvers    ports.ResolverFactory
	journals     ports.JournalOpener
	registries   *registry.Factory
	caches       *cache.Factory
	watcher      ports.Watcher
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	telemetry ports.Telemetry,
	resolvers ports.ResolverFactory,
	journals ports.JournalOpener,
	registries *registry.Factory,
	caches *cache.Factory,
	watcher ports.Watcher,
) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		telemetry:    telemetry,
		resolvers:    resolvers,
		journals:     journals,
		registries:   registries,
		caches:       caches,
		watcher:      watcher,
	}
}

// Open loads the configuration found from cwd and builds a Session over it.
// Nothing is discovered or registered until Bootstrap runs.
func (a *App) Open(cwd string) (*Session, error) {
	cfg, err := a.configLoader.Load(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	resolver, discoverer, err := a.resolvers.New(cfg.FeaturesDir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create module resolver"), "path", cfg.FeaturesDir)
	}

	journal, err := a.journals.Open(cfg.JournalPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open rollback journal")
	}

	inner := a.registries.New(resolver, journal, registry.RouteConfig{
		Table:         cfg.Routes,
		DefaultModule: cfg.DefaultModule,
	})

	return &Session{
		cfg:        cfg,
		registry:   a.caches.New(inner, cfg),
		resolver:   resolver,
		discoverer: discoverer,
		watcher:    a.watcher,
		telemetry:  a.telemetry,
		logger:     a.logger,
	}, nil
}

// Start opens a Session and registers every module discovered on disk.
func (a *App) Start(ctx context.Context, cwd string) (*Session, BootstrapReport, error) {
	s, err := a.Open(cwd)
	if err != nil {
		return nil, BootstrapReport{}, err
	}

	report, err := s.Bootstrap(ctx)
	if err != nil {
		s.Close()
		return nil, report, err
	}
	return s, report, nil
}

// Close releases application-wide resources.
func (a *App) Close() error {
	return a.telemetry.Close()
}
