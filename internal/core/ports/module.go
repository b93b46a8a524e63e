package ports

import (
	"context"
	"io"

	"go.trai.ch/featreg/internal/core/domain"
)

// Module is the contract every feature module satisfies. Everything beyond
// Info is an optional capability discovered with a type assertion.
type Module interface {
	// Info describes the module. Fields are merged into registry metadata
	// when the module is registered after a dynamic load.
	Info() domain.ModuleInfo
}

// Initializer is implemented by modules that need setup before use.
// The registry never calls it; consumers do.
type Initializer interface {
	Init(ctx context.Context) error
}

// RequestHandler is the module's request-processing entry point.
type RequestHandler interface {
	Handle(ctx context.Context, req domain.Request) (domain.Response, error)
}

// Renderer mounts the module's UI into w.
type Renderer interface {
	Render(ctx context.Context, w io.Writer, props domain.Props) error
}

// RouteMatcher lets a module decide dynamically whether it owns a route.
type RouteMatcher interface {
	CanHandleRoute(ctx context.Context, route string) (bool, error)
}

// RouteProvider exposes the literal routes a module owns.
type RouteProvider interface {
	Routes() []string
}

// Cleaner releases module resources. Consumers call it, never the registry.
type Cleaner interface {
	Cleanup(ctx context.Context) error
}
