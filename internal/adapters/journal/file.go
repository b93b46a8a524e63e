// Package journal persists rollback history.
package journal

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/featreg/internal/core/domain"
	"go.trai.ch/zerr"
)

// File implements ports.RollbackJournal using a flat JSON file keyed by module name.
type File struct {
	path    string
	mu      sync.RWMutex
	records map[string][]domain.RollbackRecord
}

// NewFile creates a journal backed by the file at the given path.
// A missing file starts an empty journal.
func NewFile(path string) (*File, error) {
	j := &File{
		path:    filepath.Clean(path),
		records: make(map[string][]domain.RollbackRecord),
	}
	if err := j.load(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *File) load() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(j.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(domain.Chain(domain.ErrJournalReadFailed, err), "path", j.path)
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &j.records); err != nil {
		return zerr.With(domain.Chain(domain.ErrJournalReadFailed, err), "path", j.path)
	}

	return nil
}

// save writes the journal to disk. Callers hold j.mu.
func (j *File) save() error {
	data, err := json.MarshalIndent(j.records, "", "  ")
	if err != nil {
		return domain.Chain(domain.ErrJournalWriteFailed, err)
	}

	if err := os.MkdirAll(filepath.Dir(j.path), 0o750); err != nil {
		return zerr.With(domain.Chain(domain.ErrJournalWriteFailed, err), "path", j.path)
	}

	tmp := j.path + ".tmp"
	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return zerr.With(domain.Chain(domain.ErrJournalWriteFailed, err), "path", j.path)
	}
	if err := os.Rename(tmp, j.path); err != nil {
		return zerr.With(domain.Chain(domain.ErrJournalWriteFailed, err), "path", j.path)
	}

	return nil
}

// Append adds record to the end of name's history and persists the journal.
func (j *File) Append(name string, record domain.RollbackRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.records[name] = append(j.records[name], record)
	if err := j.save(); err != nil {
		j.records[name] = j.records[name][:len(j.records[name])-1]
		return err
	}
	return nil
}

// History returns a copy of name's records in append order.
func (j *File) History(name string) ([]domain.RollbackRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return append([]domain.RollbackRecord{}, j.records[name]...), nil
}

// Clear drops every record and removes the file.
func (j *File) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.records = make(map[string][]domain.RollbackRecord)
	if err := os.Remove(j.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(domain.Chain(domain.ErrJournalWriteFailed, err), "path", j.path)
	}
	return nil
}
