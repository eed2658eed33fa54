// ABOUTME: In-memory implementation of the snapshot Store interface
// ABOUTME: Used by tests and dev serving; snapshots live only for the process lifetime

package store

import (
	"context"
	"sync"
)

// MemoryStore implements Store with a process-local map. Snapshot
// lifetime matches the process, which is the closest in-process analog
// to per-tab storage.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[string][]byte),
	}
}

// LoadSnapshot implements Store.
func (s *MemoryStore) LoadSnapshot(ctx context.Context, scope string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.snapshots[scope]
	if !ok {
		return nil, ErrNotFound
	}
	// Copy so callers cannot mutate the stored record
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

// SaveSnapshot implements Store.
func (s *MemoryStore) SaveSnapshot(ctx context.Context, scope string, raw []byte) error {
	stored := make([]byte, len(raw))
	copy(stored, raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[scope] = stored
	return nil
}

// DeleteSnapshot implements Store.
func (s *MemoryStore) DeleteSnapshot(ctx context.Context, scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, scope)
	return nil
}

// Close implements Store. It is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// Len returns the number of stored snapshots. Used by tests.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}
