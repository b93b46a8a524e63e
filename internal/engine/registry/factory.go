package registry

import "go.trai.ch/featreg/internal/core/ports"

// Factory builds a Registry once the runtime configuration is known.
type Factory struct {
	telemetry ports.Telemetry
	logger    ports.Logger
}

// NewFactory creates a Factory.
func NewFactory(telemetry ports.Telemetry, logger ports.Logger) *Factory {
	return &Factory{telemetry: telemetry, logger: logger}
}

// New creates a Registry using the factory's telemetry and logger.
func (f *Factory) New(resolver ports.ModuleResolver, journal ports.RollbackJournal, routes RouteConfig) *Registry {
	return New(resolver, journal, f.telemetry, f.logger, routes)
}
