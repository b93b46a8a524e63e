package registry_test

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"go.trai.ch/featreg/internal/adapters/journal"
	"go.trai.ch/featreg/internal/adapters/logger"
	"go.trai.ch/featreg/internal/adapters/telemetry"
	"go.trai.ch/featreg/internal/core/domain"
	"go.trai.ch/featreg/internal/core/ports"
	"go.trai.ch/featreg/internal/engine/registry"
)

// plainModule exposes nothing beyond Info.
type plainModule struct {
	info domain.ModuleInfo
}

func newPlain(name, version string) *plainModule {
	return &plainModule{info: domain.ModuleInfo{Name: name, Version: version}}
}

func (m *plainModule) Info() domain.ModuleInfo { return m.info }

// routedModule lists the routes it owns.
type routedModule struct {
	plainModule
	routes []string
}

func (m *routedModule) Routes() []string { return m.routes }

// matcherModule decides dynamically.
type matcherModule struct {
	plainModule
	match func(route string) (bool, error)
}

func (m *matcherModule) CanHandleRoute(_ context.Context, route string) (bool, error) {
	return m.match(route)
}

// matcherWithRoutes has both capabilities.
type matcherWithRoutes struct {
	matcherModule
	routes []string
}

func (m *matcherWithRoutes) Routes() []string { return m.routes }

type fixture struct {
	reg     *registry.Registry
	journal *journal.Memory
	logs    *bytes.Buffer
}

func newFixture(t *testing.T, resolver ports.ModuleResolver, routes registry.RouteConfig) *fixture {
	t.Helper()
	var buf bytes.Buffer
	j := journal.NewMemory()
	reg := registry.New(resolver, j, telemetry.NewNoOp(), logger.NewWithWriter(&buf), routes)
	return &fixture{reg: reg, journal: j, logs: &buf}
}

// recordingTelemetry remembers vertex names and their outcomes.
type recordingTelemetry struct {
	mu      sync.Mutex
	names   []string
	results []error
}

func (r *recordingTelemetry) Record(ctx context.Context, name string) (context.Context, ports.Vertex) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
	r.results = append(r.results, nil)
	v := &recordingVertex{parent: r, idx: len(r.names) - 1}
	return ports.ContextWithVertex(ctx, v), v
}

func (r *recordingTelemetry) Close() error { return nil }

type recordingVertex struct {
	parent *recordingTelemetry
	idx    int
}

func (v *recordingVertex) Stdout() io.Writer               { return io.Discard }
func (v *recordingVertex) Log(_ domain.LogLevel, _ string) {}
func (v *recordingVertex) Cached()                         {}

func (v *recordingVertex) Complete(err error) {
	v.parent.mu.Lock()
	defer v.parent.mu.Unlock()
	v.parent.results[v.idx] = err
}
