package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory role store seeded from configuration.
// Used in tests and local development where no platform database exists.
type MemoryStore struct {
	mu    sync.RWMutex
	roles map[string]string
}

// NewMemoryStore creates a memory role store with the given seed roles.
// A nil seed yields an empty store where every lookup misses.
func NewMemoryStore(seed map[string]string) *MemoryStore {
	roles := make(map[string]string, len(seed))
	for id, role := range seed {
		roles[id] = role
	}
	return &MemoryStore{roles: roles}
}

// GetRole returns the stored role for the given user id.
func (m *MemoryStore) GetRole(_ context.Context, userID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	role, ok := m.roles[userID]
	if !ok {
		return "", ErrUserNotFound
	}
	return role, nil
}

// SetRole stores or updates a user's role. Test helper.
func (m *MemoryStore) SetRole(userID, role string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[userID] = role
}

// Close is a no-op for the memory store.
func (m *MemoryStore) Close() error {
	return nil
}
