package journal

import (
	"sync"

	"go.trai.ch/featreg/internal/core/domain"
)

// Memory implements ports.RollbackJournal in process memory.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]domain.RollbackRecord
}

// NewMemory creates an empty in-memory journal.
func NewMemory() *Memory {
	return &Memory{records: make(map[string][]domain.RollbackRecord)}
}

// Append adds record to the end of name's history.
func (m *Memory) Append(name string, record domain.RollbackRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[name] = append(m.records[name], record)
	return nil
}

// History returns a copy of name's records in append order.
func (m *Memory) History(name string) ([]domain.RollbackRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.RollbackRecord{}, m.records[name]...), nil
}

// Clear drops every record.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[string][]domain.RollbackRecord)
	return nil
}
