// Package sqlite provides SQLite-based storage implementation.
package sqlite

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// timeFormat keeps created_at lexically sortable.
const timeFormat = "2006-01-02T15:04:05.000Z"

// Storage implements the storage.Storage interface using SQLite
type Storage struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// New creates a new SQLite storage instance
func New(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings for better concurrency
	db.SetMaxOpenConns(1) // SQLite works best with single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	storage := &Storage{db: db}

	if err := storage.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return storage, nil
}

// createSchema creates the database schema
func (s *Storage) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		id       TEXT PRIMARY KEY,
		slug     TEXT NOT NULL UNIQUE,
		title    TEXT NOT NULL,
		blocks   TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS portfolio_items (
		id        TEXT PRIMARY KEY,
		position  INTEGER NOT NULL,
		title     TEXT NOT NULL,
		year      TEXT NOT NULL,
		artist    TEXT NOT NULL,
		category  TEXT NOT NULL,
		image     TEXT NOT NULL,
		alt       TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS crew_members (
		id           TEXT PRIMARY KEY,
		position     INTEGER NOT NULL,
		name         TEXT NOT NULL,
		role         TEXT NOT NULL,
		experience   TEXT NOT NULL,
		quote        TEXT NOT NULL,
		specialties  TEXT NOT NULL,
		instagram    TEXT,
		image        TEXT NOT NULL,
		alt          TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS contact_info (
		id            INTEGER PRIMARY KEY CHECK (id = 1),
		address       TEXT NOT NULL,
		phone         TEXT NOT NULL,
		email         TEXT NOT NULL,
		opening_hours TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS generation_logs (
		id           TEXT PRIMARY KEY,
		request_id   TEXT NOT NULL,
		provider     TEXT,
		outcome      TEXT NOT NULL,
		status_code  INTEGER NOT NULL,
		is_fallback  INTEGER DEFAULT 0,
		attempts     INTEGER DEFAULT 0,
		duration_ms  INTEGER,
		created_at   TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_portfolio_position ON portfolio_items(position);
	CREATE INDEX IF NOT EXISTS idx_crew_position ON crew_members(position);
	CREATE INDEX IF NOT EXISTS idx_generation_created ON generation_logs(created_at);
	CREATE INDEX IF NOT EXISTS idx_generation_provider ON generation_logs(provider, outcome);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

// generateID creates a new unique ID with a prefix
func generateID(prefix string) string {
	return prefix + "_" + uuid.New().String()[:8]
}

// boolToInt converts a boolean to an integer (1 for true, 0 for false)
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nullString returns nil for empty strings, otherwise the string itself
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
