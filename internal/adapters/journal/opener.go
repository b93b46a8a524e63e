package journal

import "go.trai.ch/featreg/internal/core/ports"

// Opener implements ports.JournalOpener.
type Opener struct{}

// NewOpener creates a new Opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open returns a file journal at path, or a memory journal when path is empty.
func (o *Opener) Open(path string) (ports.RollbackJournal, error) {
	if path == "" {
		return NewMemory(), nil
	}
	return NewFile(path)
}
