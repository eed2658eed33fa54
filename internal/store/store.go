// ABOUTME: Store interface for session snapshot persistence
// ABOUTME: Snapshots are opaque bytes keyed by scope; each save is a full atomic replace

package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no snapshot exists for a scope
var ErrNotFound = errors.New("snapshot not found")

// Store persists session snapshots keyed by scope. A scope corresponds
// to one browsing context (one tab); all controller instances sharing a
// scope see the same record. Snapshots are opaque at this layer;
// parsing and malformed-data tolerance belong to the session package.
type Store interface {
	// LoadSnapshot returns the stored snapshot bytes for the scope.
	// Returns ErrNotFound if no snapshot exists.
	LoadSnapshot(ctx context.Context, scope string) ([]byte, error)

	// SaveSnapshot stores raw for the scope, replacing any prior
	// snapshot in a single atomic write. Partial updates do not exist.
	SaveSnapshot(ctx context.Context, scope string, raw []byte) error

	// DeleteSnapshot removes the snapshot for the scope. Deleting a
	// scope that has no snapshot is not an error.
	DeleteSnapshot(ctx context.Context, scope string) error

	// Close releases any resources held by the store.
	Close() error
}
