package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS runs (
					id TEXT PRIMARY KEY,
					plan_name TEXT NOT NULL,
					mode TEXT NOT NULL,
					seed INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL,
					success_rate TEXT,
					median_ending_net_worth TEXT
				)`,
				`CREATE INDEX idx_runs_created_at ON runs(created_at)`,

				`CREATE TABLE IF NOT EXISTS annual_results (
					run_id TEXT NOT NULL,
					year INTEGER NOT NULL,
					income TEXT NOT NULL,
					expenses TEXT NOT NULL,
					tax_total TEXT NOT NULL,
					withdrawals TEXT NOT NULL,
					net_worth_end TEXT NOT NULL,
					insolvent INTEGER NOT NULL DEFAULT 0,
					PRIMARY KEY (run_id, year),
					FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
				)`,

				`CREATE TABLE IF NOT EXISTS scenario_outcomes (
					run_id TEXT NOT NULL,
					idx INTEGER NOT NULL,
					label TEXT NOT NULL,
					ending_net_worth TEXT NOT NULL,
					insolvent_years INTEGER NOT NULL DEFAULT 0,
					PRIMARY KEY (run_id, idx),
					FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
				)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Keep the full report document",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, `ALTER TABLE runs ADD COLUMN report_json TEXT`)
		},
	},
}

// Migrate applies pending migrations and verifies the schema version
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	var currentVersion int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		s.logger.Debug("applied migration", "version", migration.Version, "description", migration.Description)
	}

	version, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if version != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, version)
	}
	return nil
}

// SchemaVersion reports PRAGMA user_version
func (s *SQLiteStore) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to verify schema version: %w", err)
	}
	return version, nil
}
