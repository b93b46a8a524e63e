// Package config provides the configuration loader for featreg.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/featreg/internal/core/domain"
	"go.trai.ch/featreg/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load searches cwd and its parents for featreg.yaml and reads it.
// Without a config file the defaults apply, rooted at cwd.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	path, ok := findConfiguration(cwd)
	if !ok {
		l.Logger.Info("no config file found, using defaults", "cwd", cwd)
		return resolvePaths(domain.DefaultConfig(), cwd), nil
	}
	return Load(path)
}

// Load reads the configuration file at path. Relative paths inside it are
// resolved against the directory holding the file. Settings the file leaves
// out keep their defaults; routes are merged over the default route table.
func Load(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(domain.Chain(domain.ErrConfigReadFailed, err), "path", path)
	}

	def := domain.DefaultConfig()
	journal := def.JournalPath
	file := Featfile{
		FeaturesDir:     def.FeaturesDir,
		Journal:         &journal,
		DefaultModule:   def.DefaultModule,
		CriticalModules: def.CriticalModules,
		Routes:          def.Routes,
		Cache:           CacheDTO(def.Cache),
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(domain.Chain(domain.ErrConfigParseFailed, err), "path", path)
	}

	cfg := &domain.Config{
		FeaturesDir:     file.FeaturesDir,
		DefaultModule:   file.DefaultModule,
		CriticalModules: file.CriticalModules,
		Routes:          file.Routes,
		Cache:           domain.CacheConfig(file.Cache),
	}
	if file.Journal != nil {
		cfg.JournalPath = *file.Journal
	}
	if cfg.Routes == nil {
		cfg.Routes = make(map[string]string)
	}
	if err := validate(cfg); err != nil {
		return nil, zerr.With(err, "path", path)
	}

	return resolvePaths(cfg, filepath.Dir(path)), nil
}

func findConfiguration(cwd string) (string, bool) {
	dir := cwd
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", false
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func validate(cfg *domain.Config) error {
	if cfg.FeaturesDir == "" {
		return zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, ""), "field", "featuresDir")
	}
	c := cfg.Cache
	if c.Components < 1 || c.Renders < 1 {
		return zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, ""), "field", "cache")
	}
	for field, d := range map[string]int64{
		"renderTTL":       int64(c.RenderTTL),
		"maxAge":          int64(c.MaxAge),
		"cleanupInterval": int64(c.CleanupInterval),
	} {
		if d <= 0 {
			return zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, ""), "field", "cache."+field)
		}
	}
	return nil
}

func resolvePaths(cfg *domain.Config, root string) *domain.Config {
	if !filepath.IsAbs(cfg.FeaturesDir) {
		cfg.FeaturesDir = filepath.Join(root, cfg.FeaturesDir)
	}
	if cfg.JournalPath != "" && !filepath.IsAbs(cfg.JournalPath) {
		cfg.JournalPath = filepath.Join(root, cfg.JournalPath)
	}
	return cfg
}
