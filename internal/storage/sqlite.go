// Package storage persists run history in SQLite.
package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// SQLiteStore stores simulation runs in a single SQLite file
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// Open creates the database directory if needed and connects. Call Migrate before use.
func Open(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	dsn := MemoryPath
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps an in-memory database alive and serializes writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{db: db, path: path, logger: slog.Default(), now: time.Now}, nil
}

// SetLogger replaces the migration logger; nil keeps slog.Default()
func (s *SQLiteStore) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Path is the database location
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
