package catalog

import (
	"go.trai.ch/featreg/internal/core/domain"
	"go.trai.ch/featreg/internal/core/ports"
)

var _ ports.ResolverFactory = (*Factory)(nil)

// BuiltinVersion is the version under which built-in modules are discovered.
const BuiltinVersion = "v1"

// Factory wraps the resolvers of an inner factory in a Catalog holding the
// built-in modules.
type Factory struct {
	inner ports.ResolverFactory
}

// NewFactory creates a new Factory. inner may be nil.
func NewFactory(inner ports.ResolverFactory) *Factory {
	return &Factory{inner: inner}
}

// New returns a Catalog serving the built-ins in front of the inner resolver.
func (f *Factory) New(featuresDir string) (ports.ModuleResolver, ports.Discoverer, error) {
	var (
		resolver   ports.ModuleResolver
		discoverer ports.Discoverer
	)
	if f.inner != nil {
		var err error
		if resolver, discoverer, err = f.inner.New(featuresDir); err != nil {
			return nil, nil, err
		}
	}

	c := New(resolver, discoverer)
	c.Add(domain.NewModuleKey(PageTemplateName, BuiltinVersion), NewPageTemplate)
	return c, c, nil
}
