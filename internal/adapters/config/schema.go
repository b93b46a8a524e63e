package config

import "time"

// FileName is the name of the registry configuration file.
const FileName = "featreg.yaml"

// Featfile represents the structure of the featreg.yaml configuration file.
type Featfile struct {
	Version         string            `yaml:"version"`
	FeaturesDir     string            `yaml:"featuresDir"`
	Journal         *string           `yaml:"journal"`
	DefaultModule   string            `yaml:"defaultModule"`
	CriticalModules []string          `yaml:"criticalModules"`
	Routes          map[string]string `yaml:"routes"`
	Cache           CacheDTO          `yaml:"cache"`
}

// CacheDTO represents the cache block of the configuration file.
type CacheDTO struct {
	Components       int           `yaml:"components"`
	Renders          int           `yaml:"renders"`
	RenderTTL        time.Duration `yaml:"renderTTL"`
	MaxAge           time.Duration `yaml:"maxAge"`
	ThrottleMaxAge   time.Duration `yaml:"throttleMaxAge"`
	CleanupInterval  time.Duration `yaml:"cleanupInterval"`
	RouteThrottle    time.Duration `yaml:"routeThrottle"`
	ThrottleInterval time.Duration `yaml:"throttleInterval"`
	DebounceDelay    time.Duration `yaml:"debounceDelay"`
	MemoryThreshold  uint64        `yaml:"memoryThreshold"`
}
