package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// LocalStorage is a small persistent key/value store for client-side state
// (the access token and the optional admin API key).
type LocalStorage struct {
	db *sql.DB
}

func OpenLocalStorage(path string) (*LocalStorage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open local storage: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	s := &LocalStorage{db: db}
	if err := s.EnsureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *LocalStorage) Close() error { return s.db.Close() }

func (s *LocalStorage) EnsureSchema() error {
	const createTable = `
CREATE TABLE IF NOT EXISTS local_storage (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at INTEGER NOT NULL
);
`
	if _, err := s.db.Exec(createTable); err != nil {
		return fmt.Errorf("create local_storage: %w", err)
	}
	return nil
}

// Get returns the value for key and whether it exists.
func (s *LocalStorage) Get(key string) (string, bool, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM local_storage WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *LocalStorage) Set(key, value string) error {
	_, err := s.db.Exec(`
INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`, key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *LocalStorage) Remove(key string) error {
	if _, err := s.db.Exec(`DELETE FROM local_storage WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Keys lists stored keys, sorted.
func (s *LocalStorage) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM local_storage ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}
