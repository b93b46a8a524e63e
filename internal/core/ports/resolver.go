package ports

import (
	"context"

	"go.trai.ch/featreg/internal/core/domain"
)

// ModuleResolver turns a (name, version) pair into a module object.
//
//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type ModuleResolver interface {
	// Resolve loads the module stored at the conventional path for key.
	// It returns domain.ErrModulePathNotFound when nothing lives there.
	Resolve(ctx context.Context, key domain.ModuleKey) (Module, error)
}

// Discoverer enumerates module versions available on disk.
type Discoverer interface {
	Discover(ctx context.Context) ([]domain.Descriptor, error)
}

// ResolverFactory builds the resolver and discoverer serving a features directory.
type ResolverFactory interface {
	New(featuresDir string) (ModuleResolver, Discoverer, error)
}
