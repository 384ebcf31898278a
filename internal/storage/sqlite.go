// Package storage implements the persistence layer behind the ledger:
// a SQLite-backed store for normal use and an in-memory store for
// trial/demo sessions, both satisfying service.Storage.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"

	"github.com/tallyflow/tally/internal/common"
)

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// wrapSQLiteErr maps driver failures onto the application error taxonomy:
// busy/locked databases are transient and retryable, unique-constraint
// hits surface as duplicates, everything else is wrapped as-is.
func wrapSQLiteErr(op string, err error) error {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		switch {
		case serr.Code == sqlite3.ErrBusy || serr.Code == sqlite3.ErrLocked:
			return common.NewTransientIOError(op, err)
		case serr.ExtendedCode == sqlite3.ErrConstraintUnique:
			return fmt.Errorf("%s: %w", op, common.ErrDuplicateEntry)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
