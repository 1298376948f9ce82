package repositories

import (
	"database/sql"
	"fmt"
	"time"
)

// Keys used by the session manager for durable session entries.
const (
	KeyToken    = "token"
	KeyUserData = "user_data"
)

// SessionStore persists string-keyed session entries (bearer token, serialized
// identity) across process restarts.
//
// A missing key is reported via the boolean return, never as an error: the
// durable store is a cache of server truth and "absent" simply means no
// session. The store is owned exclusively by the session manager.
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore creates a new SessionStore with the given database connection
func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Get retrieves the value for key. The second return is false when the key is absent.
func (s *SessionStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM session_entries WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query session entry: %w", err)
	}
	return value, true, nil
}

// Set writes the value for key, overwriting any previous value.
func (s *SessionStore) Set(key, value string) error {
	query := `
		INSERT INTO session_entries (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.db.Exec(query, key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to write session entry: %w", err)
	}
	return nil
}

// Delete removes the entry for key. Deleting an absent key is not an error.
func (s *SessionStore) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM session_entries WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete session entry: %w", err)
	}
	return nil
}
