package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// migration is one forward-only schema step.
type migration struct {
	version int
	name    string
	stmts   []string
}

// migrations are applied in order; append only, never edit a released step.
var migrations = []migration{
	{
		version: 1,
		name:    "session values and ui preferences",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS session_value (
				session_id TEXT NOT NULL,
				key TEXT NOT NULL,
				value TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				PRIMARY KEY (session_id, key)
			)`,
			`CREATE TABLE IF NOT EXISTS ui_preference (
				device_id TEXT NOT NULL,
				key TEXT NOT NULL,
				value TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				PRIMARY KEY (device_id, key)
			)`,
		},
	},
	{
		version: 2,
		name:    "session value age index",
		stmts: []string{
			`CREATE INDEX IF NOT EXISTS idx_session_value_updated ON session_value (updated_at)`,
		},
	},
}

// LatestSchemaVersion returns the version MigrateDB brings a database to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// InitDB enables WAL and foreign keys, then migrates the schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB, path string) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return MigrateDB(db, path)
}

// MigrateDB applies every migration newer than the stored schema version.
// PRE: db is a valid database connection
// POST: SchemaVersion(db) == LatestSchemaVersion()
func MigrateDB(db *sql.DB, path string) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL,
		applied_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}
	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		for _, stmt := range m.stmts {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
			}
		}
		if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: record version: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: commit: %w", m.version, err)
		}
		slog.Info("storage_event", "event", "migrated", "db", path, "version", m.version, "name", m.name)
	}
	return nil
}

// SchemaVersion returns the highest applied migration, or 0 for a fresh database.
// PRE: schema_version table exists
func SchemaVersion(db *sql.DB) (int, error) {
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(v.Int64), nil
}
