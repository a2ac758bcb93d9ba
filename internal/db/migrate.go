package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/chriserin/stepcov/internal/logging"
)

// ErrSchemaTooNew is returned when the history file has migrations this build
// does not know about.
var ErrSchemaTooNew = errors.New("history database was written by a newer stepcov")

// Migration is one schema change. Its version is its 1-based position in All.
type Migration struct {
	Name string
	SQL  string
}

// All contains the ordered list of migrations to apply.
var All = []Migration{
	{
		Name: "create runs",
		SQL: `CREATE TABLE runs (
			id                TEXT PRIMARY KEY,
			root              TEXT NOT NULL,
			report_timestamp  TEXT NOT NULL,
			total_features    INTEGER NOT NULL,
			total_scenarios   INTEGER NOT NULL,
			total_steps       INTEGER NOT NULL,
			total_definitions INTEGER NOT NULL,
			unique_steps      INTEGER NOT NULL,
			matched_steps     INTEGER NOT NULL,
			coverage          INTEGER NOT NULL,
			created_at        DATETIME NOT NULL DEFAULT (datetime('now'))
		)`,
	},
	{
		Name: "create run_features",
		SQL: `CREATE TABLE run_features (
			id             INTEGER PRIMARY KEY,
			run_id         TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			file_path      TEXT NOT NULL,
			name           TEXT NOT NULL,
			scenario_count INTEGER NOT NULL
		)`,
	},
	{
		Name: "create run_missing_steps",
		SQL: `CREATE TABLE run_missing_steps (
			id     INTEGER PRIMARY KEY,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			step   TEXT NOT NULL
		)`,
	},
	{
		Name: "index run_missing_steps by run",
		SQL:  `CREATE INDEX run_missing_steps_run_id ON run_missing_steps(run_id)`,
	},
}

// Version returns the highest applied migration, or 0 for a fresh database.
func Version(db *sql.DB) (int, error) {
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&v); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return int(v.Int64), nil
}

// Migrate records each applied migration in schema_migrations and applies the
// pending ones in order, one transaction each.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	current, err := Version(db)
	if err != nil {
		return err
	}
	if current > len(All) {
		return fmt.Errorf("schema version %d, this build knows %d: %w", current, len(All), ErrSchemaTooNew)
	}

	for i, m := range All[current:] {
		version := current + i + 1
		if err := apply(db, version, m); err != nil {
			return err
		}
		logging.Debug("history", "applied migration %d (%s)", version, m.Name)
	}
	return nil
}

func apply(db *sql.DB, version int, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migration %d (%s): %w", version, m.Name, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.SQL); err != nil {
		return fmt.Errorf("migration %d (%s): %w", version, m.Name, err)
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, version, m.Name); err != nil {
		return fmt.Errorf("recording migration %d: %w", version, err)
	}
	return tx.Commit()
}
