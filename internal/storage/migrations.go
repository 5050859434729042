package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a
// fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS expenses (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					supplier_name TEXT NOT NULL DEFAULT '',
					supplier_norm TEXT NOT NULL DEFAULT '',
					description TEXT,
					expense_date DATE,
					gross_amount_cents INTEGER NOT NULL DEFAULT 0,
					currency TEXT NOT NULL DEFAULT 'EUR',
					category TEXT,
					vat_mode TEXT NOT NULL DEFAULT 'none',
					vat_rate REAL,
					business_use_pct INTEGER NOT NULL DEFAULT 100,
					status TEXT NOT NULL DEFAULT 'needs_review',
					payment_status TEXT NOT NULL DEFAULT 'unpaid',
					payment_date DATE,
					payment_method TEXT NOT NULL DEFAULT '',
					updated_by_user_id TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_expenses_user ON expenses(user_id)`,
				`CREATE INDEX idx_expenses_status ON expenses(status)`,

				`CREATE TABLE IF NOT EXISTS expense_files (
					id TEXT PRIMARY KEY,
					expense_id TEXT NOT NULL,
					original_filename TEXT NOT NULL,
					attached_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (expense_id) REFERENCES expenses(id)
				)`,
				`CREATE INDEX idx_expense_files_expense ON expense_files(expense_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute %q: %w", query[:40], err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Supplier history lookup index",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(
				`CREATE INDEX idx_expenses_supplier_norm ON expenses(user_id, supplier_norm, expense_date)`)
			if err != nil {
				return fmt.Errorf("failed to create supplier index: %w", err)
			}
			return nil
		},
	},
}

// Migrate brings the database schema up to the expected version.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	return nil
}

// SchemaVersion returns the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
