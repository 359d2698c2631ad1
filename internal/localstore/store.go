// Package localstore is the single-user, on-disk store used by the CLI. It
// keeps each collection as a JSON document under a per-user key in SQLite
// and doubles as the page cache for fetched postings.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/career-portal/internal/types"
	_ "modernc.org/sqlite"
)

// Collection keys.
const (
	KeyJobs        = "career-portal-jobs"
	KeyResumes     = "career-portal-resumes"
	KeyBaseResumes = "career-portal-base-resumes"
)

// MemoryPath opens a private in-memory store.
const MemoryPath = ":memory:"

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store is a key/value document store backed by SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Key returns the storage key for base scoped to userID. An empty userID
// selects the shared key.
func Key(base, userID string) string {
	if userID == "" {
		return base
	}
	return base + "-" + userID
}

// DefaultPath returns ~/.career_portal/store.db.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".career_portal", "store.db")
}

// Open opens or creates the store at path.
func Open(path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("localstore: mkdir %s: %w", filepath.Dir(path), err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("localstore: open db: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("localstore: init schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`PRAGMA busy_timeout = 5000`,
		`CREATE TABLE IF NOT EXISTS documents (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pages (
			url         TEXT PRIMARY KEY,
			html        TEXT NOT NULL,
			text        TEXT NOT NULL,
			status_code INTEGER NOT NULL,
			fetched_at  TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) put(ctx context.Context, q queryer, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO documents (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), s.now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// get decodes the document at key into v. A missing key leaves v untouched.
func get(ctx context.Context, q queryer, key string, v any) error {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT value FROM documents WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// SaveJobs replaces userID's jobs.
func (s *Store) SaveJobs(ctx context.Context, userID string, jobs []types.Job) error {
	return s.put(ctx, s.db, Key(KeyJobs, userID), nonNil(jobs))
}

// LoadJobs returns userID's jobs, or an empty list.
func (s *Store) LoadJobs(ctx context.Context, userID string) ([]types.Job, error) {
	jobs := []types.Job{}
	if err := get(ctx, s.db, Key(KeyJobs, userID), &jobs); err != nil {
		return nil, err
	}
	return nonNil(jobs), nil
}

// SaveResumes replaces userID's optimized resumes.
func (s *Store) SaveResumes(ctx context.Context, userID string, resumes []types.OptimizedResume) error {
	return s.put(ctx, s.db, Key(KeyResumes, userID), nonNil(resumes))
}

// LoadResumes returns userID's optimized resumes, or an empty list.
func (s *Store) LoadResumes(ctx context.Context, userID string) ([]types.OptimizedResume, error) {
	resumes := []types.OptimizedResume{}
	if err := get(ctx, s.db, Key(KeyResumes, userID), &resumes); err != nil {
		return nil, err
	}
	return nonNil(resumes), nil
}

// SaveBaseResumes replaces userID's base resumes.
func (s *Store) SaveBaseResumes(ctx context.Context, userID string, resumes []types.BaseResume) error {
	return s.put(ctx, s.db, Key(KeyBaseResumes, userID), nonNil(resumes))
}

// LoadBaseResumes returns userID's base resumes, or an empty list.
func (s *Store) LoadBaseResumes(ctx context.Context, userID string) ([]types.BaseResume, error) {
	resumes := []types.BaseResume{}
	if err := get(ctx, s.db, Key(KeyBaseResumes, userID), &resumes); err != nil {
		return nil, err
	}
	return nonNil(resumes), nil
}

// update applies fn to the list at key inside a transaction.
func update[T any](ctx context.Context, s *Store, key string, fn func([]T) []T) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var items []T
	if err := get(ctx, tx, key, &items); err != nil {
		return err
	}
	if err := s.put(ctx, tx, key, nonNil(fn(items))); err != nil {
		return err
	}
	return tx.Commit()
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
