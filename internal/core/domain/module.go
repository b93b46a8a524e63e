package domain

import (
	"maps"
	"strings"
	"time"
)

// LatestVersion is the version request that resolves to the highest known version.
// It is never stored as a key.
const LatestVersion = "latest"

// RollbackConditionsField is the metadata field holding rollback thresholds.
const RollbackConditionsField = "rollbackConditions"

// ModuleKey uniquely identifies one registered module instance.
type ModuleKey struct {
	Name    string
	Version string
}

// NewModuleKey creates a ModuleKey.
func NewModuleKey(name, version string) ModuleKey {
	return ModuleKey{Name: name, Version: version}
}

// String renders the key as name@version.
func (k ModuleKey) String() string {
	return k.Name + "@" + k.Version
}

// CacheKey renders the key the way the component cache indexes it.
func (k ModuleKey) CacheKey() string {
	return k.Name + "_" + k.Version
}

// IsLatest reports whether the key is a request for the latest version.
func (k ModuleKey) IsLatest() bool {
	return k.Version == "" || k.Version == LatestVersion
}

// Validate rejects keys that cannot be mapped onto a conventional module path.
func (k ModuleKey) Validate() error {
	for _, s := range []string{k.Name, k.Version} {
		if strings.TrimSpace(s) == "" || strings.ContainsAny(s, `/\`) || s == "." || s == ".." {
			return KeyError(ErrInvalidModuleName, k)
		}
	}
	return nil
}

// ModuleInfo is the self-description every module exposes.
type ModuleInfo struct {
	Name        string
	Version     string
	Description string
	// Fields carries arbitrary metadata such as rollbackConditions.
	Fields map[string]any
}

// Metadata is the bookkeeping stored alongside a registered module.
type Metadata struct {
	Name               string
	Version            string
	RegisteredAt       time.Time
	RollbackConditions []Condition
	Fields             map[string]any
}

// Clone returns a copy that does not share maps or slices with m.
func (m Metadata) Clone() Metadata {
	m.Fields = maps.Clone(m.Fields)
	m.RollbackConditions = append([]Condition(nil), m.RollbackConditions...)
	return m
}

// ModuleSummary describes one module name for listings.
type ModuleSummary struct {
	Name          string
	Versions      []string
	LatestVersion string
	Metadata      *Metadata
}

// RollbackRecord captures one advisory version transition.
type RollbackRecord struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
}

// TestResults holds caller-supplied metric results keyed by metric name.
type TestResults map[string]float64

// Descriptor is a module version discovered on disk.
type Descriptor struct {
	Name    string
	Version string
	Dir     string
	Fields  map[string]any
}

// Key returns the ModuleKey of the descriptor.
func (d Descriptor) Key() ModuleKey {
	return NewModuleKey(d.Name, d.Version)
}

// Props are the render inputs handed to a module.
type Props map[string]any

// Request is the opaque payload handed to a module's Handle capability.
type Request map[string]any

// Response is the opaque payload returned by a module's Handle capability.
type Response map[string]any
