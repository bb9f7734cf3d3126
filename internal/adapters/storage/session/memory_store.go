package session

import (
	"context"
	"sync"
)

// MemoryStore implements Store in process memory. Values are lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]map[string]string)}
}

// Get returns the value stored under key, or ErrNotFound.
func (m *MemoryStore) Get(_ context.Context, sessionID, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[sessionID][key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Put inserts or overwrites the value under key.
func (m *MemoryStore) Put(_ context.Context, sessionID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.values[sessionID]
	if !ok {
		s = make(map[string]string)
		m.values[sessionID] = s
	}
	s[key] = value
	return nil
}

// Delete removes the value under key.
func (m *MemoryStore) Delete(_ context.Context, sessionID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values[sessionID], key)
	if len(m.values[sessionID]) == 0 {
		delete(m.values, sessionID)
	}
	return nil
}
