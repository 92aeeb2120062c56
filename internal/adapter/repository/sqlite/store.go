/*
Package sqlite stores parties and documents in a single SQLite file.

Document fields are kept as JSON text, the party foreign key of each
document is copied into an indexed column on write. Every write bumps the
single row in store_revision, which backs DocumentRepository.Version.

Use ":memory:" as the path for a throwaway database.
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// Store owns the SQLite connection.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (and migrates) the database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A second connection to ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Parties returns the party repository backed by this store.
func (s *Store) Parties() *PartyRepository {
	return &PartyRepository{store: s}
}

// Documents returns the document repository backed by this store.
func (s *Store) Documents() *DocumentRepository {
	return &DocumentRepository{store: s}
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS parties (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		party_type TEXT NOT NULL CHECK (party_type IN ('customer', 'vendor')),
		opening_balance TEXT NOT NULL DEFAULT '0',
		opening_balance_date TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_parties_type_name
		ON parties(party_type, name, id);

	CREATE TABLE IF NOT EXISTS documents (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		id TEXT NOT NULL,
		party_id TEXT NOT NULL DEFAULT '',
		fields_json TEXT NOT NULL DEFAULT '{}',
		cleared INTEGER NOT NULL DEFAULT 0,
		cleared_at TEXT,
		updated_at TEXT NOT NULL,
		UNIQUE (kind, id)
	);

	CREATE INDEX IF NOT EXISTS idx_documents_kind_party
		ON documents(kind, party_id, seq);

	CREATE TABLE IF NOT EXISTS store_revision (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		value INTEGER NOT NULL
	);

	INSERT OR IGNORE INTO store_revision (id, value) VALUES (1, 0);
	`

	_, err := s.db.Exec(schema)
	return err
}

// write runs fn in a transaction and bumps the store revision with it.
func (s *Store) write(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE store_revision SET value = value + 1 WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to bump revision: %w", err)
	}

	return tx.Commit()
}

func (s *Store) revision(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var v int64
	err := s.db.QueryRowContext(ctx, `SELECT value FROM store_revision WHERE id = 1`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return v, err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
