package ports

import (
	"context"
	"iter"
)

// Operation is the kind of change reported by a Watcher.
type Operation int

const (
	// OpCreate reports a newly created path.
	OpCreate Operation = iota
	// OpWrite reports modified content.
	OpWrite
	// OpRemove reports a deleted path.
	OpRemove
	// OpRename reports a renamed path.
	OpRename
)

// WatchEvent is a single change below the watched root.
type WatchEvent struct {
	Path      string
	Operation Operation
}

// Watcher observes a directory tree for changes.
//
//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	Start(ctx context.Context, root string) error
	Stop() error
	Events() iter.Seq[WatchEvent]
}
