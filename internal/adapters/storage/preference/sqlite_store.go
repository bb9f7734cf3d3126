package preference

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"eventdesk/internal/adapters/storage"
)

// SQLiteStore implements Store using the ui_preference table.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
// PRE: db has been migrated by storage.InitDB
// POST: store is ready for use
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get returns the raw preference value.
// PRE: deviceID and key are non-empty
// POST: returns the value or ErrNotFound
func (s *SQLiteStore) Get(ctx context.Context, deviceID, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM ui_preference WHERE device_id = ? AND key = ?`, deviceID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

// Put inserts or overwrites a preference.
// PRE: deviceID and key are non-empty
// POST: Get returns value
func (s *SQLiteStore) Put(ctx context.Context, deviceID, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ui_preference (device_id, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(device_id, key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		deviceID, key, value, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}
