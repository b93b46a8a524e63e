package plugin

import (
	"context"
	"io"
	"reflect"
	"sync"

	"go.trai.ch/featreg/internal/core/domain"
	"go.trai.ch/featreg/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.Initializer    = (*Module)(nil)
	_ ports.RequestHandler = (*Module)(nil)
	_ ports.Renderer       = (*Module)(nil)
	_ ports.RouteMatcher   = (*Module)(nil)
	_ ports.RouteProvider  = (*Module)(nil)
	_ ports.Cleaner        = (*Module)(nil)
)

// Module is a feature module interpreted from source.
//
// Interpreted code only sees the standard library, so exported functions use
// plain types:
//
//	func Info() map[string]any
//	func Routes() []string
//	func CanHandleRoute(route string) bool
//	func Render(props map[string]any) (string, error)
//	func Handle(req map[string]any) (map[string]any, error)
//	func Init() error
//	func Cleanup() error
//
// Every function is optional. A missing Render, Handle or CanHandleRoute
// reports domain.ErrUnsupportedCapability; missing Init and Cleanup are no-ops.
// Calls into one module are serialized.
type Module struct {
	info domain.ModuleInfo
	path string

	mu       sync.Mutex
	routes   func() []string
	canRoute func(string) bool
	render   func(map[string]any) (string, error)
	handle   func(map[string]any) (map[string]any, error)
	init     func() error
	cleanup  func() error
}

// Info describes the module.
func (m *Module) Info() domain.ModuleInfo {
	return m.info
}

// Path returns the source file the module was interpreted from.
func (m *Module) Path() string {
	return m.path
}

// Routes returns the literal routes the module declares.
func (m *Module) Routes() []string {
	if m.routes == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.routes()
}

// CanHandleRoute asks the module whether it owns route.
func (m *Module) CanHandleRoute(ctx context.Context, route string) (bool, error) {
	if m.canRoute == nil {
		return false, m.unsupported("CanHandleRoute")
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canRoute(route), nil
}

// Render writes the module's markup for props to w.
func (m *Module) Render(ctx context.Context, w io.Writer, props domain.Props) error {
	if m.render == nil {
		return m.unsupported("Render")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	out, err := m.render(map[string]any(props))
	m.mu.Unlock()
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, out)
	return err
}

// Handle passes req to the module.
func (m *Module) Handle(ctx context.Context, req domain.Request) (domain.Response, error) {
	if m.handle == nil {
		return nil, m.unsupported("Handle")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	resp, err := m.handle(map[string]any(req))
	return domain.Response(resp), err
}

// Init runs the module's setup, if any.
func (m *Module) Init(ctx context.Context) error {
	return m.call(ctx, m.init)
}

// Cleanup runs the module's teardown, if any.
func (m *Module) Cleanup(ctx context.Context) error {
	return m.call(ctx, m.cleanup)
}

func (m *Module) call(ctx context.Context, fn func() error) error {
	if fn == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn()
}

func (m *Module) unsupported(capability string) error {
	key := domain.NewModuleKey(m.info.Name, m.info.Version)
	return zerr.With(domain.KeyError(domain.ErrUnsupportedCapability, key), "capability", capability)
}

// bind assigns the exported function named name to target when the
// interpreter defines it. A definition with the wrong signature is an error.
func bind[F any](lookup func(string) (reflect.Value, bool), name string, target *F) error {
	v, ok := lookup(name)
	if !ok {
		return nil
	}
	if v.Kind() != reflect.Func {
		return zerr.With(zerr.New("exported symbol is not a function"), "symbol", name)
	}
	fn, ok := v.Interface().(F)
	if !ok {
		return zerr.With(zerr.With(zerr.New("exported function has the wrong signature"), "symbol", name),
			"want", reflect.TypeFor[F]().String())
	}
	*target = fn
	return nil
}
