// internal/prefs/store.go
package prefs

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/adrg/xdg"
	_ "github.com/mattn/go-sqlite3"
)

// Store keeps preferences and activity for every profile in one SQLite file
type Store struct {
	db *sql.DB
}

// NewStore opens the store at the XDG data path
func NewStore() (*Store, error) {
	dbPath, err := xdg.DataFile("ezcoll/prefs.db")
	if err != nil {
		return nil, err
	}
	return Open(dbPath)
}

// Open opens or creates a store at path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" databases coherent
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS prefs (
			profile TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (profile, key)
		);
		CREATE TABLE IF NOT EXISTS activity (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			profile TEXT NOT NULL,
			action TEXT NOT NULL,
			collection TEXT NOT NULL,
			target TEXT,
			status TEXT NOT NULL,
			error_message TEXT,
			executed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_activity_profile ON activity(profile);
		CREATE INDEX IF NOT EXISTS idx_activity_executed_at ON activity(executed_at);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("prefs: create schema: %w", err)
	}

	s := &Store{db: db}
	if err := s.cleanup(); err != nil {
		slog.Warn("prefs: activity cleanup failed", "err", err)
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Profile returns the Backend scoped to one profile name
func (s *Store) Profile(name string) Backend {
	return &scoped{db: s.db, profile: name}
}

// cleanup removes activity older than 90 days
func (s *Store) cleanup() error {
	_, err := s.db.Exec(`
		DELETE FROM activity
		WHERE executed_at < datetime('now', '-90 days')
	`)
	return err
}

type scoped struct {
	db      *sql.DB
	profile string
}

func (p *scoped) Get(key string) (string, error) {
	var value string
	err := p.db.QueryRow(`SELECT value FROM prefs WHERE profile = ? AND key = ?`, p.profile, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

func (p *scoped) Set(key, value string) error {
	_, err := p.db.Exec(`
		INSERT INTO prefs (profile, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(profile, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, p.profile, key, value)
	return err
}

func (p *scoped) Record(e *Entry) error {
	if e.ExecutedAt.IsZero() {
		e.ExecutedAt = now()
	}
	e.Profile = p.profile

	res, err := p.db.Exec(`
		INSERT INTO activity (profile, action, collection, target, status, error_message, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.Profile, e.Action, e.Collection, e.Target, e.Status, e.ErrorMessage, e.ExecutedAt.UTC())
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

func (p *scoped) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := p.db.Query(`
		SELECT id, profile, action, collection, target, status, error_message, executed_at
		FROM activity
		WHERE profile = ?
		ORDER BY executed_at DESC, id DESC
		LIMIT ?
	`, p.profile, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var target, errMsg sql.NullString
		if err := rows.Scan(&e.ID, &e.Profile, &e.Action, &e.Collection, &target,
			&e.Status, &errMsg, &e.ExecutedAt); err != nil {
			return nil, err
		}
		e.Target = target.String
		e.ErrorMessage = errMsg.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
