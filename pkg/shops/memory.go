// pkg/shops/memory.go
package shops

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

type memStore struct {
	log  *zap.SugaredLogger
	mu   sync.RWMutex
	byID map[string]Shop
}

func NewMemoryStore(log *zap.SugaredLogger) Store {
	return &memStore{log: log, byID: map[string]Shop{}}
}

func (m *memStore) FindByID(ctx context.Context, id string) (Shop, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.byID[id]; ok {
		return s, nil
	}
	return Shop{}, ErrNotFound
}

func (m *memStore) FindByDomain(ctx context.Context, host string) (Shop, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.sortedIDs() {
		if m.byID[id].HasDomain(host) {
			return m.byID[id], nil
		}
	}
	return Shop{}, ErrNotFound
}

func (m *memStore) FindPrimary(ctx context.Context) (Shop, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.sortedIDs() {
		if m.byID[id].Primary {
			return m.byID[id], nil
		}
	}
	return Shop{}, ErrNotFound
}

func (m *memStore) List(ctx context.Context) ([]Shop, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Shop, 0, len(m.byID))
	for _, id := range m.sortedIDs() {
		out = append(out, m.byID[id])
	}
	return out, nil
}

func (m *memStore) Upsert(ctx context.Context, s Shop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[s.ID] = s
	return nil
}

// sortedIDs keeps iteration order stable; callers hold the lock.
func (m *memStore) sortedIDs() []string {
	ids := make([]string, 0, len(m.byID))
	for id := range m.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
