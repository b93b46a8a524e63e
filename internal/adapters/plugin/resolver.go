// Package plugin loads feature modules from Go source interpreted at runtime.
package plugin

import (
	"context"
	"errors"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"reflect"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"go.trai.ch/featreg/internal/core/domain"
	"go.trai.ch/featreg/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ModuleResolver = (*Resolver)(nil)

// Resolver interprets modules stored under a features directory laid out as
// <dir>/<name>/<version>/index.go. A module without a version directory may
// live at <dir>/<name>/index.go and then serves every version.
type Resolver struct {
	dir string
}

// NewResolver creates a Resolver rooted at dir.
func NewResolver(dir string) *Resolver {
	return &Resolver{dir: dir}
}

// Dir returns the features directory.
func (r *Resolver) Dir() string {
	return r.dir
}

// SourcePath returns the source file serving key.
func (r *Resolver) SourcePath(key domain.ModuleKey) (string, error) {
	if err := key.Validate(); err != nil {
		return "", err
	}

	candidates := []string{
		filepath.Join(r.dir, key.Name, key.Version, SourceFile),
		filepath.Join(r.dir, key.Name, SourceFile),
	}
	for _, path := range candidates {
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", zerr.With(zerr.Wrap(err, "failed to stat module source"), "path", path)
		}
	}
	return "", zerr.With(domain.KeyError(domain.ErrModulePathNotFound, key), "path", candidates[0])
}

// Resolve interprets the source serving key and returns the module it defines.
func (r *Resolver) Resolve(ctx context.Context, key domain.ModuleKey) (ports.Module, error) {
	path, err := r.SourcePath(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	manifest, err := ReadManifest(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	if filepath.Dir(path) == filepath.Join(r.dir, key.Name, key.Version) {
		if err := manifest.check(key, filepath.Dir(path)); err != nil {
			return nil, err
		}
	}

	return Interpret(key, path, manifest)
}

// Interpret evaluates the source at path as the module key.
// Manifest fields take precedence over fields the source reports from Info.
func Interpret(key domain.ModuleKey, path string, manifest Manifest) (*Module, error) {
	i := interp.New(interp.Options{})
	i.Use(stdlib.Symbols)

	if _, err := i.EvalPath(path); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to interpret module"), "path", path)
	}

	lookup := func(name string) (reflect.Value, bool) {
		v, err := i.Eval(name)
		if err != nil || !v.IsValid() {
			return reflect.Value{}, false
		}
		return v, true
	}

	m := &Module{path: path}
	var info func() map[string]any
	binds := []error{
		bind(lookup, "Info", &info),
		bind(lookup, "Routes", &m.routes),
		bind(lookup, "CanHandleRoute", &m.canRoute),
		bind(lookup, "Render", &m.render),
		bind(lookup, "Handle", &m.handle),
		bind(lookup, "Init", &m.init),
		bind(lookup, "Cleanup", &m.cleanup),
	}
	if err := errors.Join(binds...); err != nil {
		return nil, zerr.With(err, "path", path)
	}

	m.info = domain.ModuleInfo{
		Name:        key.Name,
		Version:     key.Version,
		Description: manifest.Description,
		Fields:      map[string]any{},
	}
	if info != nil {
		reported := info()
		if d, ok := reported["description"].(string); ok && m.info.Description == "" {
			m.info.Description = d
		}
		delete(reported, "description")
		delete(reported, "name")
		delete(reported, "version")
		maps.Copy(m.info.Fields, reported)
	}
	maps.Copy(m.info.Fields, manifest.Fields)

	return m, nil
}
