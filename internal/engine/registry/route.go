package registry

import (
	"context"
	"errors"
	"slices"

	"go.trai.ch/featreg/internal/core/domain"
	"go.trai.ch/featreg/internal/core/ports"
	"go.trai.ch/zerr"
)

// ModuleSource is what the route resolver loads candidates from.
// Both the plain Registry and the cached registry satisfy it.
type ModuleSource interface {
	Names() []string
	Load(ctx context.Context, name, version string) (ports.Module, error)
}

// RouteResolver finds the module responsible for a navigation route.
type RouteResolver struct {
	source ModuleSource
	config RouteConfig
	logger ports.Logger
}

// NewRouteResolver creates a RouteResolver.
func NewRouteResolver(source ModuleSource, config RouteConfig, logger ports.Logger) *RouteResolver {
	return &RouteResolver{source: source, config: config, logger: logger}
}

// FindModuleForRoute walks registered modules in registration order and
// returns the first that claims route, falling back to the default module.
// Modules that fail to load are logged and skipped. It never fails: the
// second result is false when nothing can serve the route.
func (r *RouteResolver) FindModuleForRoute(ctx context.Context, route string) (ports.Module, bool) {
	for _, name := range r.source.Names() {
		mod, err := r.source.Load(ctx, name, domain.LatestVersion)
		if err != nil {
			r.logger.Warn("skipping module during route resolution",
				"module", name, "route", route, "error", err)
			continue
		}
		if r.claims(ctx, name, mod, route) {
			return mod, true
		}
	}

	if r.config.DefaultModule == "" {
		return nil, false
	}

	mod, err := r.source.Load(ctx, r.config.DefaultModule, domain.LatestVersion)
	if err != nil {
		r.logger.Error(zerr.With(domain.Chain(domain.ErrNoRouteMatch, err), "route", route))
		return nil, false
	}
	return mod, true
}

func (r *RouteResolver) claims(ctx context.Context, name string, mod ports.Module, route string) bool {
	if matcher, ok := mod.(ports.RouteMatcher); ok {
		ok, err := matcher.CanHandleRoute(ctx, route)
		switch {
		case err == nil && ok:
			return true
		case err != nil && !errors.Is(err, domain.ErrUnsupportedCapability):
			r.logger.Warn("route matcher failed", "module", name, "route", route, "error", err)
		}
	}

	if provider, ok := mod.(ports.RouteProvider); ok && slices.Contains(provider.Routes(), route) {
		return true
	}

	owner, ok := r.config.Table[route]
	return ok && owner == name
}
