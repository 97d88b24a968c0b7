// Package tokenstore persists the single bearer token used by the console.
//
// The value survives restarts, is loaded once at startup and overwritten on
// every successful login capture or manual entry. Registered mirrors are told
// about each new value so visible token fields stay in sync.
package tokenstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// Key is the fixed name the token is persisted under
const Key = "authToken"

// Store reads and writes the persisted token.
// An absent token is reported as "" with a nil error.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	OnSave(mirror func(token string))
}

type mirrors struct {
	mu  sync.Mutex
	fns []func(string)
}

func (m *mirrors) add(fn func(string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fns = append(m.fns, fn)
}

func (m *mirrors) notify(token string) {
	m.mu.Lock()
	fns := append([]func(string){}, m.fns...)
	m.mu.Unlock()
	for _, fn := range fns {
		fn(token)
	}
}

// SQLite stores the token in the kv table of the console database
type SQLite struct {
	db      *sql.DB
	mirrors mirrors
}

// NewSQLite wraps an open console database (see migrations.Open)
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) Load(ctx context.Context) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", Key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return value, nil
}

func (s *SQLite) Save(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, Key, token)
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	s.mirrors.notify(token)
	return nil
}

func (s *SQLite) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", Key); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	s.mirrors.notify("")
	return nil
}

func (s *SQLite) OnSave(mirror func(token string)) {
	s.mirrors.add(mirror)
}

// Memory keeps the token in process memory only
type Memory struct {
	mu      sync.RWMutex
	token   string
	mirrors mirrors
}

// NewMemory returns an empty in-memory store
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *Memory) Save(_ context.Context, token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	m.mirrors.notify(token)
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	return m.Save(ctx, "")
}

func (m *Memory) OnSave(mirror func(token string)) {
	m.mirrors.add(mirror)
}
