package plugin

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/featreg/internal/core/domain"
	"go.trai.ch/featreg/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Discoverer = (*Scanner)(nil)

// Scanner discovers module versions under a features directory.
type Scanner struct {
	dir    string
	logger ports.Logger
}

// NewScanner creates a Scanner rooted at dir.
func NewScanner(dir string, logger ports.Logger) *Scanner {
	return &Scanner{dir: dir, logger: logger}
}

// Discover returns every <name>/<version> directory holding an index.go or a
// module.yaml. Version directories start with "v". Descriptors come back
// ordered by name, then by version. A missing features directory holds no
// modules.
func (s *Scanner) Discover(ctx context.Context) ([]domain.Descriptor, error) {
	names, err := readDirs(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("features directory does not exist", "path", s.dir)
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read features directory"), "path", s.dir)
	}

	var out []domain.Descriptor
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		versions, err := readDirs(filepath.Join(s.dir, name))
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to read module directory"), "module", name)
		}
		versions = filterVersions(versions)
		if len(versions) == 0 {
			s.logger.Warn("no version directories found", "module", name)
			continue
		}
		domain.SortVersions(versions)

		for _, version := range versions {
			d, ok, err := s.describe(name, version)
			if err != nil {
				return nil, err
			}
			if !ok {
				s.logger.Warn("skipping invalid module directory", "module", name+"@"+version)
				continue
			}
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Scanner) describe(name, version string) (domain.Descriptor, bool, error) {
	key := domain.NewModuleKey(name, version)
	if key.Validate() != nil {
		return domain.Descriptor{}, false, nil
	}

	dir := filepath.Join(s.dir, name, version)
	if !exists(filepath.Join(dir, SourceFile)) && !exists(filepath.Join(dir, MetadataFile)) {
		return domain.Descriptor{}, false, nil
	}

	manifest, err := ReadManifest(dir)
	if err != nil {
		return domain.Descriptor{}, false, err
	}
	if err := manifest.check(key, dir); err != nil {
		return domain.Descriptor{}, false, err
	}

	return domain.Descriptor{Name: name, Version: version, Dir: dir, Fields: manifest.Fields}, true, nil
}

func readDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func filterVersions(dirs []string) []string {
	out := dirs[:0]
	for _, d := range dirs {
		if strings.HasPrefix(d, "v") {
			out = append(out, d)
		}
	}
	return out
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
