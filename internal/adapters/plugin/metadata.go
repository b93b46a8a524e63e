package plugin

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/featreg/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	// SourceFile is the entry point of an interpreted module.
	SourceFile = "index.go"
	// MetadataFile holds the descriptive metadata of a module version.
	MetadataFile = "module.yaml"
)

// Manifest is the parsed content of a module.yaml file.
type Manifest struct {
	Name        string
	Version     string
	Description string
	// Fields holds every other key, rollbackConditions included.
	Fields map[string]any
}

// ReadManifest parses the module.yaml in dir. A missing file yields an
// empty manifest.
func ReadManifest(dir string) (Manifest, error) {
	path := filepath.Join(dir, MetadataFile)
	data, err := os.ReadFile(path) //nolint:gosec // path is derived from the features dir
	if errors.Is(err, fs.ErrNotExist) {
		return Manifest{Fields: map[string]any{}}, nil
	}
	if err != nil {
		return Manifest{}, zerr.With(zerr.Wrap(err, "failed to read module metadata"), "path", path)
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Manifest{}, zerr.With(zerr.Wrap(err, "failed to parse module metadata"), "path", path)
	}

	m := Manifest{Fields: map[string]any{}}
	for k, v := range raw {
		switch k {
		case "name":
			m.Name, _ = v.(string)
		case "version":
			m.Version, _ = v.(string)
		case "description":
			m.Description, _ = v.(string)
		default:
			m.Fields[k] = v
		}
	}
	return m, nil
}

// check rejects a manifest that names a different module than its location.
func (m Manifest) check(key domain.ModuleKey, dir string) error {
	if (m.Name != "" && m.Name != key.Name) || (m.Version != "" && m.Version != key.Version) {
		return zerr.With(zerr.With(domain.KeyError(domain.ErrInvalidModuleName, key),
			"manifest", domain.NewModuleKey(m.Name, m.Version).String()), "path", dir)
	}
	return nil
}
