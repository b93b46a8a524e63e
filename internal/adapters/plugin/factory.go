package plugin

import (
	"go.trai.ch/featreg/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ResolverFactory = (*Factory)(nil)

// Factory creates interpreting resolvers for a features directory.
type Factory struct {
	logger ports.Logger
}

// NewFactory creates a new Factory.
func NewFactory(logger ports.Logger) *Factory {
	return &Factory{logger: logger}
}

// New returns the resolver and the scanner for featuresDir.
func (f *Factory) New(featuresDir string) (ports.ModuleResolver, ports.Discoverer, error) {
	if featuresDir == "" {
		return nil, nil, zerr.New("features directory not configured")
	}
	return NewResolver(featuresDir), NewScanner(featuresDir, f.logger), nil
}
