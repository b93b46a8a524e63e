// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/featreg/internal/adapters/catalog"
	_ "go.trai.ch/featreg/internal/adapters/config"
	_ "go.trai.ch/featreg/internal/adapters/journal"
	_ "go.trai.ch/featreg/internal/adapters/logger"
	_ "go.trai.ch/featreg/internal/adapters/memory"
	_ "go.trai.ch/featreg/internal/adapters/plugin"
	_ "go.trai.ch/featreg/internal/adapters/telemetry/tracing"
	_ "go.trai.ch/featreg/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/featreg/internal/app"
	_ "go.trai.ch/featreg/internal/engine/cache"
	_ "go.trai.ch/featreg/internal/engine/registry"
)
