package cache

import (
	"go.trai.ch/featreg/internal/core/domain"
	"go.trai.ch/featreg/internal/core/ports"
	"go.trai.ch/featreg/internal/engine/registry"
)

// Factory builds cached registries once the runtime configuration is known.
type Factory struct {
	probe  ports.MemoryProbe
	logger ports.Logger
}

// NewFactory creates a Factory.
func NewFactory(probe ports.MemoryProbe, logger ports.Logger) *Factory {
	return &Factory{probe: probe, logger: logger}
}

// New wraps inner with the cache layer configured by cfg.
func (f *Factory) New(inner *registry.Registry, cfg *domain.Config) *Registry {
	return New(inner, cfg, f.probe, f.logger)
}
