// Package token persists the bearer credential across process restarts.
// The session manager is the only intended writer.
package token

import (
	"context"
	"sync"
)

// Store is durable client-side storage for a single opaque token. Load
// returns the empty string when no token is persisted.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// MemStore keeps the token in-process; used in tests.
type MemStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemStore initializes an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (m *MemStore) Load(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemStore) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
