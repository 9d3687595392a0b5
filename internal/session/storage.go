package session

import (
	"database/sql"
	"fmt"
	"sync"
)

const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Storage persists the token and the serialized identity under fixed keys.
type Storage interface {
	Load() (token string, user string, err error)
	Save(token, user string) error
	Clear() error
}

type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: map[string]string{}}
}

func (m *MemoryStorage) Load() (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[KeyToken], m.values[KeyUser], nil
}

func (m *MemoryStorage) Save(token, user string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[KeyToken] = token
	m.values[KeyUser] = user
	return nil
}

func (m *MemoryStorage) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, KeyToken)
	delete(m.values, KeyUser)
	return nil
}

// SQLiteStorage keeps the session in the client_state table of the local
// database.
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(db *sql.DB) *SQLiteStorage {
	return &SQLiteStorage{db: db}
}

func (s *SQLiteStorage) Load() (string, string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM client_state WHERE key IN (?, ?)`, KeyToken, KeyUser)
	if err != nil {
		return "", "", fmt.Errorf("load session: %w", err)
	}
	defer rows.Close()
	var token, user string
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return "", "", fmt.Errorf("scan session: %w", err)
		}
		switch key {
		case KeyToken:
			token = value
		case KeyUser:
			user = value
		}
	}
	if err := rows.Err(); err != nil {
		return "", "", fmt.Errorf("iterate session: %w", err)
	}
	return token, user, nil
}

func (s *SQLiteStorage) Save(token, user string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin session tx: %w", err)
	}
	defer tx.Rollback()
	for _, kv := range [][2]string{{KeyToken, token}, {KeyUser, user}} {
		if _, err := tx.Exec(`
INSERT INTO client_state(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, kv[0], kv[1]); err != nil {
			return fmt.Errorf("save session %q: %w", kv[0], err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session tx: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM client_state WHERE key IN (?, ?)`, KeyToken, KeyUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
