// pkg/groups/memory.go
package groups

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

type memStore struct {
	log  *zap.SugaredLogger
	mu   sync.RWMutex
	byID map[string]Group
}

func NewMemoryStore(log *zap.SugaredLogger) Store {
	return &memStore{log: log, byID: map[string]Group{}}
}

func (m *memStore) FindByIDs(ctx context.Context, ids []string) ([]Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Group
	for _, id := range ids {
		if g, ok := m.byID[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memStore) ListByShop(ctx context.Context, shopID string) ([]Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.byID))
	for id := range m.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []Group
	for _, id := range ids {
		if m.byID[id].ShopID == shopID {
			out = append(out, m.byID[id])
		}
	}
	return out, nil
}

func (m *memStore) Upsert(ctx context.Context, g Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[g.ID] = g
	return nil
}
