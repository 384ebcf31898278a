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
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Categories and ledger entries",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS categories (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					type TEXT NOT NULL,
					scope TEXT NOT NULL,
					user_defined INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(name, scope)
				)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					hash TEXT UNIQUE NOT NULL,
					date DATETIME NOT NULL,
					description TEXT NOT NULL,
					amount TEXT NOT NULL,
					type TEXT NOT NULL,
					category_id TEXT NOT NULL REFERENCES categories(id),
					scope TEXT NOT NULL,
					payment TEXT NOT NULL,
					card_id TEXT,
					installment_count INTEGER NOT NULL DEFAULT 0,
					installment_index INTEGER NOT NULL DEFAULT 0,
					group_id TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_date ON transactions(date)`,
				`CREATE INDEX idx_transactions_scope ON transactions(scope)`,
				`CREATE INDEX idx_transactions_category ON transactions(category_id)`,
				`CREATE INDEX idx_transactions_group ON transactions(group_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Credit cards",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS credit_cards (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					last_digits TEXT,
					brand TEXT,
					credit_limit TEXT NOT NULL,
					used_limit TEXT NOT NULL DEFAULT '0',
					due_day INTEGER NOT NULL,
					closing_day INTEGER NOT NULL,
					scope TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_card ON transactions(card_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Bills and receivables",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS bills (
					id TEXT PRIMARY KEY,
					description TEXT NOT NULL,
					amount TEXT NOT NULL,
					due_date DATETIME NOT NULL,
					category_id TEXT NOT NULL REFERENCES categories(id),
					status TEXT NOT NULL DEFAULT 'pending',
					recurrence TEXT NOT NULL DEFAULT 'once',
					scope TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_bills_due ON bills(due_date)`,

				`CREATE TABLE IF NOT EXISTS receivables (
					id TEXT PRIMARY KEY,
					description TEXT NOT NULL,
					amount TEXT NOT NULL,
					expected_date DATETIME NOT NULL,
					category_id TEXT NOT NULL REFERENCES categories(id),
					status TEXT NOT NULL DEFAULT 'pending',
					recurrence TEXT NOT NULL DEFAULT 'once',
					scope TEXT NOT NULL,
					payer TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_receivables_expected ON receivables(expected_date)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     4,
		Description: "Budgets and goals",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS budgets (
					id TEXT PRIMARY KEY,
					category_id TEXT NOT NULL REFERENCES categories(id),
					month TEXT NOT NULL,
					amount TEXT NOT NULL,
					scope TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(category_id, month, scope)
				)`,

				`CREATE TABLE IF NOT EXISTS goals (
					id TEXT PRIMARY KEY,
					title TEXT NOT NULL,
					target_amount TEXT NOT NULL,
					current_amount TEXT NOT NULL DEFAULT '0',
					deadline DATETIME,
					completed INTEGER NOT NULL DEFAULT 0,
					completed_at DATETIME,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate brings the database schema up to ExpectedSchemaVersion.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
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

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
