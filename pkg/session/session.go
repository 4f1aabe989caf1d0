// pkg/session/session.go
package session

import (
	"context"
	"sync"
	"time"
)

const defaultSettleTimeout = 5 * time.Second

// Manager issues Session values sharing one backing Store. Each
// session's cache slot is namespaced by session id, so two sessions
// never observe each other's cached values.
type Manager struct {
	store         Store
	settleTimeout time.Duration

	mu      sync.Mutex
	pending map[string]chan struct{} // session id -> closed when auth settles
}

func NewManager(store Store, settleTimeout time.Duration) *Manager {
	if settleTimeout <= 0 {
		settleTimeout = defaultSettleTimeout
	}
	return &Manager{store: store, settleTimeout: settleTimeout, pending: map[string]chan struct{}{}}
}

// Session materializes the session with the given id. AccountID, Host
// and GlobalRoles are supplied by the authentication layer per request.
func (m *Manager) Session(id string) *Session {
	return &Session{id: id, mgr: m}
}

// Session is a per-connection handle: an ephemeral cache slot plus the
// identity established by the surrounding auth layer.
type Session struct {
	id  string
	mgr *Manager

	AccountID   string
	Host        string
	GlobalRoles []string // platform-global role names from the identity system
}

func (s *Session) ID() string { return s.id }

func (s *Session) key(k string) string { return "sess:" + s.id + ":" + k }

// Get reads a value from the session's cache slot. The second return
// distinguishes a stored empty value from an absent key.
func (s *Session) Get(ctx context.Context, key string) (string, bool, error) {
	return s.mgr.store.Get(ctx, s.key(key))
}

// Set writes a value into the session's cache slot.
func (s *Session) Set(ctx context.Context, key, value string) error {
	return s.mgr.store.Set(ctx, s.key(key), value)
}

// Clear removes a value from the session's cache slot.
func (s *Session) Clear(ctx context.Context, key string) error {
	return s.mgr.store.Delete(ctx, s.key(key))
}

// BeginAuthTransition marks the session as being in the middle of a
// login/logout. Permission checks observed during the window wait for
// EndAuthTransition rather than evaluating against a stale identity.
func (s *Session) BeginAuthTransition() {
	s.mgr.mu.Lock()
	defer s.mgr.mu.Unlock()
	if _, ok := s.mgr.pending[s.id]; !ok {
		s.mgr.pending[s.id] = make(chan struct{})
	}
}

// EndAuthTransition releases any callers waiting in AwaitAuth.
func (s *Session) EndAuthTransition() {
	s.mgr.mu.Lock()
	defer s.mgr.mu.Unlock()
	if ch, ok := s.mgr.pending[s.id]; ok {
		close(ch)
		delete(s.mgr.pending, s.id)
	}
}

// AwaitAuth blocks until any in-flight auth transition settles. It
// returns false when the settle timeout (or ctx) expires first; callers
// must then treat the session as unauthenticated.
func (s *Session) AwaitAuth(ctx context.Context) bool {
	s.mgr.mu.Lock()
	ch, ok := s.mgr.pending[s.id]
	s.mgr.mu.Unlock()
	if !ok {
		return true
	}
	t := time.NewTimer(s.mgr.settleTimeout)
	defer t.Stop()
	select {
	case <-ch:
		return true
	case <-t.C:
		return false
	case <-ctx.Done():
		return false
	}
}
