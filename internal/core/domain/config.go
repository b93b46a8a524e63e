package domain

import "time"

// Config is the runtime configuration of the feature registry.
type Config struct {
	// FeaturesDir is the root of the conventional module tree (<dir>/<name>/<version>).
	FeaturesDir string
	// JournalPath is where rollback history is persisted. Empty keeps it in memory.
	JournalPath string
	// DefaultModule is served when no module claims a route.
	DefaultModule string
	// CriticalModules are preloaded eagerly at startup.
	CriticalModules []string
	// Routes is the static route -> module name fallback table.
	Routes map[string]string
	Cache  CacheConfig
}

// CacheConfig tunes the performance layer.
type CacheConfig struct {
	Components       int
	Renders          int
	RenderTTL        time.Duration
	MaxAge           time.Duration
	ThrottleMaxAge   time.Duration
	CleanupInterval  time.Duration
	RouteThrottle    time.Duration
	ThrottleInterval time.Duration
	DebounceDelay    time.Duration
	MemoryThreshold  uint64
}

// DefaultRoutes is the stock route table.
func DefaultRoutes() map[string]string {
	return map[string]string{
		"/":          "pageTemplate",
		"/home":      "pageTemplate",
		"/dashboard": "pageTemplate",
		"/menu":      "mainMenu",
		"/login":     "loginForm",
		"/users":     "pageTemplate",
		"/settings":  "pageTemplate",
		"/status":    "pageTemplate",
	}
}

// DefaultCacheConfig returns the stock cache tuning.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Components:       50,
		Renders:          100,
		RenderTTL:        5 * time.Minute,
		MaxAge:           10 * time.Minute,
		ThrottleMaxAge:   time.Minute,
		CleanupInterval:  5 * time.Minute,
		RouteThrottle:    50 * time.Millisecond,
		ThrottleInterval: 100 * time.Millisecond,
		DebounceDelay:    250 * time.Millisecond,
		MemoryThreshold:  50 << 20,
	}
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		FeaturesDir:     "features",
		JournalPath:     ".featreg/rollbacks.json",
		DefaultModule:   "pageTemplate",
		CriticalModules: []string{"pressurePanel", "appHeader", "appFooter"},
		Routes:          DefaultRoutes(),
		Cache:           DefaultCacheConfig(),
	}
}
