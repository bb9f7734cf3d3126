package session

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"eventdesk/internal/adapters/storage"
)

// TouchInterval is how stale updated_at may get before a read refreshes it.
const TouchInterval = time.Hour

// SQLiteStore implements Store using the session_value table.
// updated_at records the last use of a session: every write sets it, and a
// read refreshes all of the session's rows once they are TouchInterval old.
type SQLiteStore struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewSQLiteStore creates a new SQLiteStore.
// PRE: db has been migrated by storage.InitDB
// POST: store is ready for use
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Get returns the value stored under key and marks the session as used.
// PRE: sessionID and key are non-empty
// POST: returns the value or ErrNotFound; on a hit no row of the session is
// older than TouchInterval
func (s *SQLiteStore) Get(ctx context.Context, sessionID, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM session_value WHERE session_id = ? AND key = ?`, sessionID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	now := s.now().UTC()
	if _, err := s.db.ExecContext(ctx,
		`UPDATE session_value SET updated_at = ? WHERE session_id = ? AND updated_at < ?`,
		now.Format(time.RFC3339), sessionID, now.Add(-TouchInterval).Format(time.RFC3339),
	); err != nil {
		slog.Warn("session_event", "event", "touch_failed", "error", err)
	}
	return value, nil
}

// Put inserts or overwrites the value under key.
// PRE: sessionID and key are non-empty
// POST: Get returns value
func (s *SQLiteStore) Put(ctx context.Context, sessionID, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_value (session_id, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id, key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		sessionID, key, value, s.now().UTC().Format(time.RFC3339),
	)
	return err
}

// Delete removes the value under key. Deleting a missing key is not an error.
// PRE: sessionID and key are non-empty
// POST: Get returns ErrNotFound
func (s *SQLiteStore) Delete(ctx context.Context, sessionID, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session_value WHERE session_id = ? AND key = ?`, sessionID, key)
	return err
}

// PurgeBefore deletes values of sessions unused since cutoff and returns how many went.
// PRE: none
// POST: no row older than cutoff remains
func (s *SQLiteStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM session_value WHERE updated_at < ?`, cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
