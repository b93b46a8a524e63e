package cache_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"testing"

	"go.trai.ch/featreg/internal/adapters/journal"
	"go.trai.ch/featreg/internal/adapters/logger"
	"go.trai.ch/featreg/internal/adapters/telemetry"
	"go.trai.ch/featreg/internal/core/domain"
	"go.trai.ch/featreg/internal/core/ports"
	"go.trai.ch/featreg/internal/engine/cache"
	"go.trai.ch/featreg/internal/engine/registry"
)

type plainModule struct {
	info domain.ModuleInfo
}

func newPlain(name, version string) *plainModule {
	return &plainModule{info: domain.ModuleInfo{Name: name, Version: version}}
}

func (m *plainModule) Info() domain.ModuleInfo { return m.info }

// renderModule renders its props' title and counts renders.
type renderModule struct {
	plainModule
	renders atomic.Int32
	fail    error
}

func (m *renderModule) Render(_ context.Context, w io.Writer, props domain.Props) error {
	m.renders.Add(1)
	if m.fail != nil {
		return m.fail
	}
	_, err := fmt.Fprintf(w, "<h1>%v</h1>", props["title"])
	return err
}

// countingMatcher claims one route and counts how often it was asked.
type countingMatcher struct {
	plainModule
	route string
	asked atomic.Int32
}

func (m *countingMatcher) CanHandleRoute(_ context.Context, route string) (bool, error) {
	m.asked.Add(1)
	return route == m.route, nil
}

func testConfig() *domain.Config {
	cfg := domain.DefaultConfig()
	cfg.CriticalModules = nil
	cfg.Routes = map[string]string{}
	return cfg
}

func newCached(
	t *testing.T,
	resolver ports.ModuleResolver,
	probe ports.MemoryProbe,
	mutate func(*domain.Config),
) (*cache.Registry, *bytes.Buffer) {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf)
	inner := registry.New(resolver, journal.NewMemory(), telemetry.NewNoOp(), log, registry.RouteConfig{
		Table:         cfg.Routes,
		DefaultModule: cfg.DefaultModule,
	})
	c := cache.New(inner, cfg, probe, log)
	t.Cleanup(c.Close)
	return c, &buf
}
