package db

import (
	"database/sql"
	"fmt"
)

// migrations are applied in order; the index+1 is the schema version.
// Never edit an entry once released, append a new one instead.
var migrations = []string{
	`CREATE TABLE valuations (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		address     TEXT    NOT NULL,
		sqft        REAL    NOT NULL,
		lot_size    REAL    NOT NULL,
		provider    TEXT    NOT NULL,
		comp_count  INTEGER NOT NULL DEFAULT 0,
		ranked      INTEGER NOT NULL DEFAULT 0,
		arv         INTEGER,
		result_json TEXT    NOT NULL,
		created_at  DATETIME NOT NULL
	)`,
	`CREATE INDEX idx_valuations_address ON valuations(address)`,
	`CREATE INDEX idx_valuations_created_at ON valuations(created_at)`,
}

// SchemaVersion returns the number of migrations applied to db.
func SchemaVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

// migrate applies every migration newer than the recorded schema version,
// each in its own transaction.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	for i := current; i < len(migrations); i++ {
		if err := applyMigration(db, i+1, migrations[i]); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}

	return nil
}

func applyMigration(db *sql.DB, version int, stmt string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if _, err := tx.Exec(stmt); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (also failed to roll back: %v)", err, rbErr)
		}
		return err
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (also failed to roll back: %v)", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}
