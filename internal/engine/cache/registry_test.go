package cache_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/featreg/internal/core/domain"
	"go.trai.ch/featreg/internal/core/ports"
	"go.trai.ch/featreg/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestRegistry_ConcurrentLoadsShareOneResolution(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		resolver := mocks.NewMockModuleResolver(ctrl)
		c, _ := newCached(t, resolver, mocks.NewMockMemoryProbe(ctrl), nil)

		mod := newPlain("pressurePanel", "v1")
		release := make(chan struct{})
		resolver.EXPECT().
			Resolve(gomock.Any(), domain.NewModuleKey("pressurePanel", "v1")).
			DoAndReturn(func(context.Context, domain.ModuleKey) (ports.Module, error) {
				<-release
				return mod, nil
			}).
			Times(1)

		results := make([]ports.Module, 2)
		var wg sync.WaitGroup
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got, err := c.Load(context.Background(), "pressurePanel", "v1")
				assert.NoError(t, err)
				results[i] = got
			}()
			synctest.Wait()
		}

		assert.Equal(t, 1, c.Metrics().InFlight)
		close(release)
		wg.Wait()

		assert.Same(t, mod, results[0])
		assert.Same(t, results[0], results[1])
		assert.Equal(t, 0, c.Metrics().InFlight)
	})
}

func TestRegistry_FailureReachesEveryWaiterThenRetries(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		resolver := mocks.NewMockModuleResolver(ctrl)
		c, _ := newCached(t, resolver, mocks.NewMockMemoryProbe(ctrl), nil)

		release := make(chan struct{})
		key := domain.NewModuleKey("appHeader", "v2")
		gomock.InOrder(
			resolver.EXPECT().Resolve(gomock.Any(), key).
				DoAndReturn(func(context.Context, domain.ModuleKey) (ports.Module, error) {
					<-release
					return nil, errors.New("import exploded")
				}),
			resolver.EXPECT().Resolve(gomock.Any(), key).Return(newPlain("appHeader", "v2"), nil),
		)

		errs := make([]error, 3)
		var wg sync.WaitGroup
		for i := range errs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = c.Load(context.Background(), "appHeader", "v2")
			}()
		}
		synctest.Wait()
		close(release)
		wg.Wait()

		for _, err := range errs {
			require.ErrorIs(t, err, domain.ErrLoadFailed)
			assert.Contains(t, err.Error(), "import exploded")
		}

		_, err := c.Load(context.Background(), "appHeader", "v2")
		require.NoError(t, err)
	})
}

func TestRegistry_AbandonedLoadStillFillsCache(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		resolver := mocks.NewMockModuleResolver(ctrl)
		c, _ := newCached(t, resolver, mocks.NewMockMemoryProbe(ctrl), nil)

		mod := newPlain("appFooter", "v1")
		release := make(chan struct{})
		resolver.EXPECT().Resolve(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ domain.ModuleKey) (ports.Module, error) {
				<-release
				assert.NoError(t, ctx.Err())
				return mod, nil
			}).
			Times(1)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() {
			_, err := c.Load(ctx, "appFooter", "v1")
			errCh <- err
		}()
		synctest.Wait()

		cancel()
		require.ErrorIs(t, <-errCh, context.Canceled)

		close(release)
		synctest.Wait()

		got, src, err := c.Fetch(context.Background(), "appFooter", "v1")
		require.NoError(t, err)
		assert.Same(t, mod, got)
		assert.Equal(t, domain.LoadSourceCache, src)
	})
}

func TestRegistry_FetchSources(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockModuleResolver(ctrl)
	c, _ := newCached(t, resolver, mocks.NewMockMemoryProbe(ctrl), func(cfg *domain.Config) {
		cfg.Cache.Components = 1
	})

	a := newPlain("a", "v1")
	b := newPlain("b", "v1")
	c.Register("a", "v1", a, nil)

	got, src, err := c.Fetch(context.Background(), "a", domain.LatestVersion)
	require.NoError(t, err)
	assert.Same(t, a, got)
	assert.Equal(t, domain.LoadSourceCache, src)

	c.Register("b", "v1", b, nil)

	got, src, err = c.Fetch(context.Background(), "a", "v1")
	require.NoError(t, err)
	assert.Same(t, a, got)
	assert.Equal(t, domain.LoadSourceStore, src, "evicted from the cache but still registered")

	resolver.EXPECT().Resolve(gomock.Any(), domain.NewModuleKey("c", "v1")).Return(newPlain("c", "v1"), nil)
	_, src, err = c.Fetch(context.Background(), "c", "v1")
	require.NoError(t, err)
	assert.Equal(t, domain.LoadSourceResolver, src)
	assert.Equal(t, []string{"v1"}, c.Versions("c"))
}

func TestRegistry_LoadUnknownLatest(t *testing.T) {
	ctrl := gomock.NewController(t)
	c, _ := newCached(t, mocks.NewMockModuleResolver(ctrl), mocks.NewMockMemoryProbe(ctrl), nil)

	_, err := c.Load(context.Background(), "ghost", domain.LatestVersion)
	require.ErrorIs(t, err, domain.ErrModuleNotFound)
}

func TestRegistry_RenderWithCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	c, _ := newCached(t, mocks.NewMockModuleResolver(ctrl), mocks.NewMockMemoryProbe(ctrl), nil)

	mod := &renderModule{plainModule: *newPlain("pageTemplate", "v1")}
	c.Register("pageTemplate", "v1", mod, nil)

	var first, second, third bytes.Buffer
	require.NoError(t, c.RenderWithCache(context.Background(), "pageTemplate", "", &first, domain.Props{"title": "Home"}))
	require.NoError(t, c.RenderWithCache(context.Background(), "pageTemplate", "", &second, domain.Props{"title": "Home"}))
	require.NoError(t, c.RenderWithCache(context.Background(), "pageTemplate", "", &third, domain.Props{"title": "Users"}))

	assert.Equal(t, "<h1>Home</h1>", first.String())
	assert.Equal(t, "<h1>Home</h1>", second.String())
	assert.Equal(t, "<h1>Users</h1>", third.String())
	assert.Equal(t, int32(2), mod.renders.Load())
	assert.Equal(t, 2, c.Renders().Len())
}

func TestRegistry_RenderFailureWritesErrorBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	c, _ := newCached(t, mocks.NewMockModuleResolver(ctrl), mocks.NewMockMemoryProbe(ctrl), nil)

	mod := &renderModule{plainModule: *newPlain("loginForm", "v1"), fail: errors.New("missing <form> slot")}
	c.Register("loginForm", "v1", mod, nil)

	var out bytes.Buffer
	err := c.RenderWithCache(context.Background(), "loginForm", "v1", &out, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing <form> slot")
	assert.Equal(t, `<div class="error">Failed to render loginForm: missing &lt;form&gt; slot</div>`, out.String())
	assert.Equal(t, 0, c.Renders().Len())
}

func TestRegistry_RenderWithoutRenderer(t *testing.T) {
	ctrl := gomock.NewController(t)
	c, _ := newCached(t, mocks.NewMockModuleResolver(ctrl), mocks.NewMockMemoryProbe(ctrl), nil)
	c.Register("service", "v1", newPlain("service", "v1"), nil)

	var out bytes.Buffer
	err := c.RenderWithCache(context.Background(), "service", "v1", &out, nil)
	require.ErrorIs(t, err, domain.ErrUnsupportedCapability)
	assert.Empty(t, out.String())
}

func TestRegistry_RenderReportsUnsupportedFromModule(t *testing.T) {
	ctrl := gomock.NewController(t)
	c, _ := newCached(t, mocks.NewMockModuleResolver(ctrl), mocks.NewMockMemoryProbe(ctrl), nil)

	mod := &renderModule{plainModule: *newPlain("service", "v2"), fail: domain.ErrUnsupportedCapability}
	c.Register("service", "v2", mod, nil)

	var out bytes.Buffer
	err := c.RenderWithCache(context.Background(), "service", "v2", &out, nil)
	require.ErrorIs(t, err, domain.ErrUnsupportedCapability)
	assert.Empty(t, out.String())
	assert.Equal(t, 0, c.Renders().Len())
}

func TestRegistry_ReRegisterDropsRenders(t *testing.T) {
	ctrl := gomock.NewController(t)
	c, _ := newCached(t, mocks.NewMockModuleResolver(ctrl), mocks.NewMockMemoryProbe(ctrl), nil)

	c.Register("pageTemplate", "v1", &renderModule{plainModule: *newPlain("pageTemplate", "v1")}, nil)
	require.NoError(t, c.RenderWithCache(context.Background(), "pageTemplate", "v1", &bytes.Buffer{}, nil))
	require.Equal(t, 1, c.Renders().Len())

	c.Register("pageTemplate", "v1", &renderModule{plainModule: *newPlain("pageTemplate", "v1")}, nil)
	assert.Equal(t, 0, c.Renders().Len())
}

func TestRegistry_RouteLookupsAreDebounced(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c, _ := newCached(t, mocks.NewMockModuleResolver(ctrl), mocks.NewMockMemoryProbe(ctrl), nil)

		mod := &countingMatcher{plainModule: *newPlain("wizard", "v1"), route: "/wizard"}
		c.Register("wizard", "v1", mod, nil)

		results := make(chan ports.Module, 3)
		for range 3 {
			go func() {
				got, ok := c.FindModuleForRoute(context.Background(), "/wizard")
				assert.True(t, ok)
				results <- got
			}()
			time.Sleep(10 * time.Millisecond)
		}

		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		for range 3 {
			assert.Same(t, mod, <-results)
		}
		assert.Equal(t, int32(1), mod.asked.Load())
	})
}

func TestRegistry_RouteFallsBackToDefault(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c, _ := newCached(t, mocks.NewMockModuleResolver(ctrl), mocks.NewMockMemoryProbe(ctrl), nil)

		page := newPlain("pageTemplate", "v1")
		c.Register("pageTemplate", "v1", page, nil)

		got, ok := c.FindModuleForRoute(context.Background(), "/unknown")
		require.True(t, ok)
		assert.Same(t, page, got)
	})
}

func TestRegistry_RouteLookupHonorsCallerContext(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c, _ := newCached(t, mocks.NewMockModuleResolver(ctrl), mocks.NewMockMemoryProbe(ctrl), nil)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		got, ok := c.FindModuleForRoute(ctx, "/unknown")
		assert.False(t, ok)
		assert.Nil(t, got)

		time.Sleep(time.Second)
		synctest.Wait()
	})
}

func TestRegistry_CloseReleasesRouteLookups(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c, _ := newCached(t, mocks.NewMockModuleResolver(ctrl), mocks.NewMockMemoryProbe(ctrl), func(cfg *domain.Config) {
			cfg.Cache.RouteThrottle = time.Hour
		})

		done := make(chan bool, 1)
		go func() {
			_, ok := c.FindModuleForRoute(context.Background(), "/menu")
			done <- ok
		}()
		synctest.Wait()

		c.Close()
		assert.False(t, <-done)

		_, ok := c.FindModuleForRoute(context.Background(), "/menu")
		assert.False(t, ok)
	})
}

func TestRegistry_PreloadIsAllSettled(t *testing.T) {
	ctrl := gomock.NewController(t)
	c, logs := newCached(t, mocks.NewMockModuleResolver(ctrl), mocks.NewMockMemoryProbe(ctrl), func(cfg *domain.Config) {
		cfg.CriticalModules = []string{"appHeader", "pressurePanel", "appFooter"}
	})
	c.Register("appHeader", "v1", newPlain("appHeader", "v1"), nil)
	c.Register("appFooter", "v1", newPlain("appFooter", "v1"), nil)
	c.Components().Purge()

	report := c.Preload(context.Background())

	assert.Equal(t, []string{"appHeader", "appFooter"}, report.Loaded)
	require.Len(t, report.Failed, 1)
	require.ErrorIs(t, report.Failed["pressurePanel"], domain.ErrModuleNotFound)
	require.ErrorIs(t, report.Err(), domain.ErrModuleNotFound)
	assert.Equal(t, 2, c.Components().Len())
	assert.Contains(t, logs.String(), "failed to preload module")
}

func TestRegistry_PreloadNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	c, _ := newCached(t, mocks.NewMockModuleResolver(ctrl), mocks.NewMockMemoryProbe(ctrl), nil)

	report := c.Preload(context.Background())
	assert.Empty(t, report.Loaded)
	assert.NoError(t, report.Err())
}

func TestRegistry_Cleanup(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c, _ := newCached(t, mocks.NewMockModuleResolver(ctrl), mocks.NewMockMemoryProbe(ctrl), nil)

		c.Register("old", "v1", &renderModule{plainModule: *newPlain("old", "v1")}, nil)
		require.NoError(t, c.RenderWithCache(context.Background(), "old", "v1", &bytes.Buffer{}, nil))
		c.Debounce("reload:old", func() {})

		time.Sleep(11 * time.Minute)
		synctest.Wait()
		c.Register("fresh", "v1", newPlain("fresh", "v1"), nil)

		report := c.Cleanup()

		assert.Equal(t, 1, report.Components)
		assert.Equal(t, 1, report.Renders)
		assert.Equal(t, 1, report.Throttles)

		m := c.Metrics()
		assert.Equal(t, 1, m.Components)
		assert.Equal(t, 0, m.Renders)
		assert.Equal(t, 0, m.Throttles)
		assert.Equal(t, 2, m.Registered, "cleanup never touches the registry")
		assert.True(t, m.LastCleanup.Equal(time.Now()))
	})
}

func TestRegistry_MonitorPurgesRendersUnderPressure(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		probe := mocks.NewMockMemoryProbe(ctrl)
		c, logs := newCached(t, mocks.NewMockModuleResolver(ctrl), probe, nil)

		gomock.InOrder(
			probe.EXPECT().HeapInUse().Return(uint64(10<<20)),
			probe.EXPECT().HeapInUse().Return(uint64(80<<20)),
		)

		c.Register("pageTemplate", "v1", &renderModule{plainModule: *newPlain("pageTemplate", "v1")}, nil)

		ctx, cancel := context.WithCancel(context.Background())
		go c.Monitor(ctx)

		time.Sleep(time.Minute)
		require.NoError(t, c.RenderWithCache(ctx, "pageTemplate", "v1", &bytes.Buffer{}, domain.Props{"title": "a"}))

		time.Sleep(4*time.Minute + time.Second)
		synctest.Wait()
		assert.Equal(t, 1, c.Renders().Len(), "heap below threshold keeps renders")

		require.NoError(t, c.RenderWithCache(ctx, "pageTemplate", "v1", &bytes.Buffer{}, domain.Props{"title": "b"}))
		time.Sleep(5 * time.Minute)
		synctest.Wait()
		assert.Equal(t, 0, c.Renders().Len())
		assert.True(t, strings.Contains(logs.String(), "memory pressure detected"))

		cancel()
		synctest.Wait()
	})
}

func TestRegistry_MetricsHitRatio(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockModuleResolver(ctrl)
	c, _ := newCached(t, resolver, mocks.NewMockMemoryProbe(ctrl), func(cfg *domain.Config) {
		cfg.CriticalModules = []string{"appHeader"}
	})

	resolver.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(newPlain("mainMenu", "v1"), nil)

	_, err := c.Load(context.Background(), "mainMenu", "v1")
	require.NoError(t, err)
	for range 3 {
		_, err = c.Load(context.Background(), "mainMenu", "v1")
		require.NoError(t, err)
	}

	m := c.Metrics()
	assert.Equal(t, uint64(3), m.Hits)
	assert.Equal(t, uint64(1), m.Misses)
	assert.InDelta(t, 0.75, m.HitRatio, 1e-9)
	assert.Equal(t, []string{"appHeader"}, m.CriticalModules)
}

func TestRegistry_ClearResetsEverything(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockModuleResolver(ctrl)
	c, _ := newCached(t, resolver, mocks.NewMockMemoryProbe(ctrl), nil)

	c.Register("pageTemplate", "v1", &renderModule{plainModule: *newPlain("pageTemplate", "v1")}, nil)
	require.NoError(t, c.RenderWithCache(context.Background(), "pageTemplate", "v1", &bytes.Buffer{}, nil))

	c.Clear()

	assert.Empty(t, c.ListModules())
	assert.Equal(t, 0, c.Components().Len())
	assert.Equal(t, 0, c.Renders().Len())

	resolver.EXPECT().Resolve(gomock.Any(), domain.NewModuleKey("pageTemplate", "v1")).Return(newPlain("pageTemplate", "v1"), nil)
	_, src, err := c.Fetch(context.Background(), "pageTemplate", "v1")
	require.NoError(t, err)
	assert.Equal(t, domain.LoadSourceResolver, src)
}

func TestRegistry_LoadOutlivingClearIsNotKept(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		resolver := mocks.NewMockModuleResolver(ctrl)
		c, _ := newCached(t, resolver, mocks.NewMockMemoryProbe(ctrl), nil)

		stale := newPlain("alerts", "v1")
		release := make(chan struct{})
		resolver.EXPECT().Resolve(gomock.Any(), domain.NewModuleKey("alerts", "v1")).
			DoAndReturn(func(context.Context, domain.ModuleKey) (ports.Module, error) {
				<-release
				return stale, nil
			})

		got := make(chan ports.Module, 1)
		go func() {
			mod, err := c.Load(context.Background(), "alerts", "v1")
			assert.NoError(t, err)
			got <- mod
		}()
		synctest.Wait()

		c.Clear()
		fresh := newPlain("alerts", "v1")
		resolver.EXPECT().Resolve(gomock.Any(), domain.NewModuleKey("alerts", "v1")).Return(fresh, nil)

		// A fetch after Clear starts its own load instead of joining the stale one.
		mod, src, err := c.Fetch(context.Background(), "alerts", "v1")
		require.NoError(t, err)
		assert.Same(t, fresh, mod)
		assert.Equal(t, domain.LoadSourceResolver, src)

		close(release)
		assert.Same(t, stale, <-got)
		synctest.Wait()

		mod, src, err = c.Fetch(context.Background(), "alerts", "v1")
		require.NoError(t, err)
		assert.Same(t, fresh, mod)
		assert.Equal(t, domain.LoadSourceCache, src)
		assert.Equal(t, 1, c.Components().Len())
	})
}

func TestRegistry_DelegatesRollbacks(t *testing.T) {
	ctrl := gomock.NewController(t)
	c, _ := newCached(t, mocks.NewMockModuleResolver(ctrl), mocks.NewMockMemoryProbe(ctrl), nil)

	c.Register("mainMenu", "v1", newPlain("mainMenu", "v1"), map[string]any{
		domain.RollbackConditionsField: map[string]any{"errorRate": ">5%"},
	})
	c.Register("mainMenu", "v2", newPlain("mainMenu", "v2"), nil)

	require.ErrorIs(t, c.Rollback("mainMenu", "v99"), domain.ErrVersionNotFound)
	require.NoError(t, c.Rollback("mainMenu", "v1"))
	require.Len(t, c.History("mainMenu"), 1)

	assert.True(t, c.ShouldRollback("mainMenu", "v1", domain.TestResults{"errorRate": 7}))
	assert.False(t, c.ShouldRollback("mainMenu", "v1", domain.TestResults{"errorRate": 3}))

	md, ok := c.Metadata("mainMenu", domain.LatestVersion)
	require.True(t, ok)
	assert.Equal(t, "v2", md.Version)
	assert.Equal(t, []string{"mainMenu"}, c.Names())
}
