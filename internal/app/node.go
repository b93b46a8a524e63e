package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/featreg/internal/adapters/catalog"           //nolint:depguard // Wired in app layer
	"go.trai.ch/featreg/internal/adapters/config"            //nolint:depguard // Wired in app layer
	"go.trai.ch/featreg/internal/adapters/journal"           //nolint:depguard // Wired in app layer
	"go.trai.ch/featreg/internal/adapters/logger"            //nolint:depguard // Wired in app layer
	"go.trai.ch/featreg/internal/adapters/telemetry/tracing" //nolint:depguard // Wired in app layer
	"go.trai.ch/featreg/internal/adapters/watcher"           //nolint:depguard // Wired in app layer
	"go.trai.ch/featreg/internal/core/ports"
	"go.trai.ch/featreg/internal/engine/cache"
	"go.trai.ch/featreg/internal/engine/registry"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components bundles what the CLI entry point needs.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			tracing.NodeID,
			catalog.NodeID,
			journal.NodeID,
			registry.NodeID,
			cache.NodeID,
			watcher.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{AppNodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	telemetry, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	resolvers, err := graft.Dep[ports.ResolverFactory](ctx)
	if err != nil {
		return nil, err
	}

	journals, err := graft.Dep[ports.JournalOpener](ctx)
	if err != nil {
		return nil, err
	}

	registries, err := graft.Dep[*registry.Factory](ctx)
	if err != nil {
		return nil, err
	}

	caches, err := graft.Dep[*cache.Factory](ctx)
	if err != nil {
		return nil, err
	}

	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, log, telemetry, resolvers, journals, registries, caches, w), nil
}
