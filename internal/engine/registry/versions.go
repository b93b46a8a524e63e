package registry

import (
	"slices"
	"sync"

	"go.trai.ch/featreg/internal/core/domain"
)

// VersionIndex keeps, per module name, the sorted set of known versions.
type VersionIndex struct {
	mu       sync.RWMutex
	versions map[string][]string
	order    []string
}

// NewVersionIndex creates an empty VersionIndex.
func NewVersionIndex() *VersionIndex {
	return &VersionIndex{versions: make(map[string][]string)}
}

// Record adds version to name's list. It is a no-op if the version is already known.
func (v *VersionIndex) Record(name, version string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	list, ok := v.versions[name]
	if !ok {
		v.order = append(v.order, name)
	}
	if slices.Contains(list, version) {
		return
	}
	list = append(list, version)
	domain.SortVersions(list)
	v.versions[name] = list
}

// Latest returns the highest version known for name.
func (v *VersionIndex) Latest(name string) (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	list := v.versions[name]
	if len(list) == 0 {
		return "", domain.KeyError(domain.ErrModuleNotFound, domain.NewModuleKey(name, domain.LatestVersion))
	}
	return list[len(list)-1], nil
}

// Has reports whether version is known for name.
func (v *VersionIndex) Has(name, version string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Contains(v.versions[name], version)
}

// List returns the ascending versions of name. Unknown names yield an empty slice.
func (v *VersionIndex) List(name string) []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]string{}, v.versions[name]...)
}

// Names returns every known name in first-registration order.
func (v *VersionIndex) Names() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]string{}, v.order...)
}

// Reset forgets every name and version.
func (v *VersionIndex) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.versions = make(map[string][]string)
	v.order = nil
}
