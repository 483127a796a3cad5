package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// ErrNotFound is returned when a record vanished between lookup and
// mutation. Callers in the tick path treat it as a benign no-op.
var ErrNotFound = errors.New("record not found")

// DB wraps the sqlite connection used by the reminder service.
type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

// NewDB opens (and if needed creates) the reminder database.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL mode and a busy timeout so the poll tick and the dialog
	// handlers can write concurrently.
	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	instance := &DB{DB: db, logger: logger}
	if err := instance.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("Database initialized")
	return instance, nil
}

func (db *DB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS reminders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id INTEGER NOT NULL,
			label TEXT NOT NULL,
			frequency TEXT NOT NULL,
			dates TEXT NOT NULL,
			times TEXT NOT NULL,
			active INTEGER NOT NULL DEFAULT 1,
			expiration_time TEXT,
			chain_id TEXT,
			last_notice_id INTEGER,
			created_at TEXT,
			completed_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			user_id INTEGER PRIMARY KEY,
			timezone TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS reminder_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			reminder_id INTEGER,
			owner_id INTEGER NOT NULL,
			label TEXT NOT NULL,
			frequency TEXT NOT NULL,
			dates TEXT NOT NULL,
			times TEXT NOT NULL,
			completed_at TEXT NOT NULL,
			action TEXT NOT NULL,
			chain_id TEXT
		)`,

		`CREATE INDEX IF NOT EXISTS idx_reminders_owner ON reminders(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reminders_active ON reminders(active)`,
		`CREATE INDEX IF NOT EXISTS idx_reminders_expiration ON reminders(expiration_time)`,
		`CREATE INDEX IF NOT EXISTS idx_history_owner ON reminder_history(owner_id)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}
