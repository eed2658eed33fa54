// ABOUTME: SQLite implementation of the snapshot Store interface using modernc.org/sqlite
// ABOUTME: Provides scope-keyed snapshot persistence with automatic schema creation and TTL sweep

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
	ttl    time.Duration
	done   chan struct{}
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
//
// ttl bounds how long a scope's snapshot survives without being
// rewritten, mirroring the bounded lifetime of per-tab storage. A
// background goroutine sweeps expired rows; ttl of zero disables the
// sweep and snapshots live until deleted.
func NewSQLiteStore(path string, ttl time.Duration) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
		ttl:    ttl,
		done:   make(chan struct{}),
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if ttl > 0 {
		go s.sweepLoop()
	}

	return s, nil
}

// createSchema creates the snapshot table if it doesn't exist.
func (s *SQLiteStore) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS session_snapshots (
		scope      TEXT PRIMARY KEY,
		snapshot   BLOB NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_session_snapshots_updated_at
		ON session_snapshots(updated_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// LoadSnapshot implements Store.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context, scope string) ([]byte, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT snapshot FROM session_snapshots WHERE scope = ?", scope,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	return raw, nil
}

// SaveSnapshot implements Store. The write replaces any prior snapshot
// for the scope in a single statement.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, scope string, raw []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_snapshots (scope, snapshot, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(scope) DO UPDATE SET
			snapshot = excluded.snapshot,
			updated_at = excluded.updated_at`,
		scope, raw, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// DeleteSnapshot implements Store.
func (s *SQLiteStore) DeleteSnapshot(ctx context.Context, scope string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM session_snapshots WHERE scope = ?", scope,
	); err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	return nil
}

// SweepExpired removes snapshots not rewritten within the TTL.
// Returns the number of rows removed.
func (s *SQLiteStore) SweepExpired(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-s.ttl)
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM session_snapshots WHERE updated_at < ?", cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("sweeping snapshots: %w", err)
	}
	return res.RowsAffected()
}

// sweepLoop runs in a background goroutine, periodically removing
// expired snapshots.
func (s *SQLiteStore) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			removed, err := s.SweepExpired(context.Background())
			if err != nil {
				s.logger.Warn("snapshot sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				s.logger.Debug("swept expired snapshots", "count", removed)
			}
		}
	}
}

// Close stops the sweep goroutine and closes the database.
func (s *SQLiteStore) Close() error {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	return s.db.Close()
}
