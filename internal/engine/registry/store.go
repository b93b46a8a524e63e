package registry

import (
	"sync"

	"go.trai.ch/featreg/internal/core/domain"
	"go.trai.ch/featreg/internal/core/ports"
)

type entry struct {
	module   ports.Module
	metadata domain.Metadata
}

// ModuleStore holds the authoritative module object and metadata per key.
// A second Put for the same key replaces the first.
type ModuleStore struct {
	mu      sync.RWMutex
	entries map[domain.ModuleKey]entry
}

// NewModuleStore creates an empty ModuleStore.
func NewModuleStore() *ModuleStore {
	return &ModuleStore{entries: make(map[domain.ModuleKey]entry)}
}

// Put stores module and metadata under key.
func (s *ModuleStore) Put(key domain.ModuleKey, module ports.Module, metadata domain.Metadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{module: module, metadata: metadata}
}

// Get returns the module stored under key.
func (s *ModuleStore) Get(key domain.ModuleKey) (ports.Module, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e.module, ok
}

// Metadata returns a copy of the metadata stored under key.
func (s *ModuleStore) Metadata(key domain.ModuleKey) (*domain.Metadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	md := e.metadata.Clone()
	return &md, true
}

// Len returns the number of stored entries.
func (s *ModuleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Reset removes every entry.
func (s *ModuleStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[domain.ModuleKey]entry)
}
