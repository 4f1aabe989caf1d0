// pkg/session/memory.go
package session

import (
	"context"
	"sync"
)

type memStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore returns an in-process Store. Suitable for single
// instance deployments and tests.
func NewMemoryStore() Store {
	return &memStore{data: map[string]string{}}
}

func (m *memStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
