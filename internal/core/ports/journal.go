package ports

import "go.trai.ch/featreg/internal/core/domain"

// RollbackJournal stores rollback records per module name in append order.
//
//go:generate mockgen -source=journal.go -destination=mocks/mock_journal.go -package=mocks
type RollbackJournal interface {
	Append(name string, record domain.RollbackRecord) error
	// History returns the records for name, or an empty slice if there are none.
	History(name string) ([]domain.RollbackRecord, error)
	Clear() error
}

// JournalOpener opens the rollback journal stored at path.
// An empty path yields a journal that lives in memory only.
type JournalOpener interface {
	Open(path string) (RollbackJournal, error)
}
