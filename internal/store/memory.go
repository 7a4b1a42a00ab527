package store

import (
	"context"
	"sync"
)

// MemoryStore keeps the token in process memory.
// It survives provider re-creation within a process but not a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	set   bool
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Read returns the stored token
func (m *MemoryStore) Read(ctx context.Context) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.token, m.set, nil
}

// Write stores the token
func (m *MemoryStore) Write(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
	m.set = true
	return nil
}

// Clear removes the token
func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = ""
	m.set = false
	return nil
}
