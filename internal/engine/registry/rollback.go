package registry

import (
	"time"

	"go.trai.ch/featreg/internal/core/domain"
	"go.trai.ch/featreg/internal/core/ports"
)

// RollbackTracker records version transitions and evaluates rollback conditions.
// Rollbacks are advisory: they never change which version is latest.
type RollbackTracker struct {
	versions *VersionIndex
	store    *ModuleStore
	journal  ports.RollbackJournal
	logger   ports.Logger
}

// NewRollbackTracker creates a RollbackTracker.
func NewRollbackTracker(
	versions *VersionIndex,
	store *ModuleStore,
	journal ports.RollbackJournal,
	logger ports.Logger,
) *RollbackTracker {
	return &RollbackTracker{
		versions: versions,
		store:    store,
		journal:  journal,
		logger:   logger,
	}
}

// Rollback appends a record moving name from its current latest version to
// version. It fails with domain.ErrVersionNotFound if version is not registered.
func (t *RollbackTracker) Rollback(name, version string) error {
	if !t.versions.Has(name, version) {
		return domain.KeyError(domain.ErrVersionNotFound, domain.NewModuleKey(name, version))
	}

	from, err := t.versions.Latest(name)
	if err != nil {
		return err
	}

	rec := domain.RollbackRecord{From: from, To: version, Timestamp: time.Now()}
	if err := t.journal.Append(name, rec); err != nil {
		return domain.WithKey(err, domain.NewModuleKey(name, version))
	}

	t.logger.Warn("rollback recorded", "module", name, "from", from, "to", version)
	return nil
}

// ShouldRollback evaluates the rollback conditions of (name, version) against
// results and reports true on the first exceeded threshold. Metrics missing
// from results are ignored.
func (t *RollbackTracker) ShouldRollback(name, version string, results domain.TestResults) bool {
	key := domain.NewModuleKey(name, version)
	if key.IsLatest() {
		latest, err := t.versions.Latest(name)
		if err != nil {
			return false
		}
		key.Version = latest
	}

	md, ok := t.store.Metadata(key)
	if !ok {
		return false
	}

	for _, cond := range md.RollbackConditions {
		value, ok := cond.Lookup(results)
		if !ok {
			continue
		}
		if cond.Exceeded(value) {
			t.logger.Warn("rollback condition exceeded",
				"module", key.String(), "condition", cond.String(), "value", value)
			return true
		}
	}
	return false
}

// History returns name's records in append order. Journal errors are logged
// and yield an empty history.
func (t *RollbackTracker) History(name string) []domain.RollbackRecord {
	records, err := t.journal.History(name)
	if err != nil {
		t.logger.Error(err)
		return []domain.RollbackRecord{}
	}
	if records == nil {
		return []domain.RollbackRecord{}
	}
	return records
}

// Reset clears the journal.
func (t *RollbackTracker) Reset() {
	if err := t.journal.Clear(); err != nil {
		t.logger.Error(err)
	}
}
