// pkg/accounts/memory.go
package accounts

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type memStore struct {
	log        *zap.SugaredLogger
	mu         sync.RWMutex
	byID       map[string]Account
	byIdentity map[string]string // identity id -> account id
}

func NewMemoryStore(log *zap.SugaredLogger) Store {
	return &memStore{log: log, byID: map[string]Account{}, byIdentity: map[string]string{}}
}

func (m *memStore) FindByID(ctx context.Context, id string) (Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.byID[id]; ok {
		return clone(a), nil
	}
	return Account{}, ErrNotFound
}

func (m *memStore) FindByIdentity(ctx context.Context, identityID string) (Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.byIdentity[identityID]; ok {
		return clone(m.byID[id]), nil
	}
	return Account{}, ErrNotFound
}

func (m *memStore) SetActiveShop(ctx context.Context, accountID, shopID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[accountID]
	if !ok {
		return ErrNotFound
	}
	a.ActiveShopID = shopID
	m.byID[accountID] = a
	return nil
}

func (m *memStore) AddToGroup(ctx context.Context, accountID, groupID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[accountID]
	if !ok {
		return ErrNotFound
	}
	if !a.InGroup(groupID) {
		a.GroupIDs = append(append([]string{}, a.GroupIDs...), groupID)
		m.byID[accountID] = a
	}
	return nil
}

func (m *memStore) RemoveFromGroup(ctx context.Context, accountID, groupID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[accountID]
	if !ok {
		return ErrNotFound
	}
	kept := a.GroupIDs[:0:0]
	for _, id := range a.GroupIDs {
		if id != groupID {
			kept = append(kept, id)
		}
	}
	a.GroupIDs = kept
	m.byID[accountID] = a
	return nil
}

func (m *memStore) Upsert(ctx context.Context, a Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[a.ID] = clone(a)
	if a.IdentityID != "" {
		m.byIdentity[a.IdentityID] = a.ID
	}
	return nil
}

// clone guards the store's slices against caller mutation.
func clone(a Account) Account {
	a.GroupIDs = append([]string{}, a.GroupIDs...)
	return a
}
