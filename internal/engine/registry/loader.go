package registry

import (
	"context"

	"go.trai.ch/featreg/internal/core/domain"
	"go.trai.ch/featreg/internal/core/ports"
)

// Loader materializes modules through a ModuleResolver. It never caches.
type Loader struct {
	resolver  ports.ModuleResolver
	telemetry ports.Telemetry
}

// NewLoader creates a Loader.
func NewLoader(resolver ports.ModuleResolver, telemetry ports.Telemetry) *Loader {
	return &Loader{resolver: resolver, telemetry: telemetry}
}

// Load resolves key into a module. Every failure, including a resolver that
// returns no module, is reported as domain.ErrLoadFailed carrying the cause.
func (l *Loader) Load(ctx context.Context, key domain.ModuleKey) (ports.Module, error) {
	ctx, vertex := l.telemetry.Record(ctx, "load "+key.String())

	mod, err := l.resolve(ctx, key)
	vertex.Complete(err)
	return mod, err
}

func (l *Loader) resolve(ctx context.Context, key domain.ModuleKey) (ports.Module, error) {
	if err := key.Validate(); err != nil {
		return nil, domain.NewLoadError(key, err)
	}

	mod, err := l.resolver.Resolve(ctx, key)
	if err != nil {
		return nil, domain.NewLoadError(key, err)
	}
	if mod == nil {
		return nil, domain.NewLoadError(key, nil)
	}
	return mod, nil
}
