package authz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shopadmin/pkg/accounts"
	"shopadmin/pkg/groups"
	"shopadmin/pkg/session"
	"shopadmin/pkg/shops"
)

type checkerFixture struct {
	checker  *Checker
	shops    shops.Store
	accounts accounts.Store
	groups   groups.Store
	mgr      *session.Manager
}

func newCheckerFixture(t *testing.T) *checkerFixture {
	t.Helper()
	log := zap.NewNop().Sugar()
	shopStore := shops.NewMemoryStore(log)
	accountStore := accounts.NewMemoryStore(log)
	groupStore := groups.NewMemoryStore(log)
	resolver := NewResolver(shopStore, accountStore, log)
	return &checkerFixture{
		checker:  NewChecker(resolver, accountStore, groupStore, log),
		shops:    shopStore,
		accounts: accountStore,
		groups:   groupStore,
		mgr:      session.NewManager(session.NewMemoryStore(), 100*time.Millisecond),
	}
}

// seedScenario is the shared membership layout: u1 belongs to g1
// (shop s1, admin) and g2 (shop s2, order/view).
func (f *checkerFixture) seedScenario(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, f.groups.Upsert(ctx, groups.Group{ID: "g1", ShopID: "s1", Slug: "admins", Permissions: []string{"admin"}}))
	require.NoError(t, f.groups.Upsert(ctx, groups.Group{ID: "g2", ShopID: "s2", Slug: "viewers", Permissions: []string{"order/view"}}))
	require.NoError(t, f.accounts.Upsert(ctx, accounts.Account{ID: "u1", GroupIDs: []string{"g1", "g2"}}))
}

func (f *checkerFixture) account(t *testing.T, id string) *accounts.Account {
	a, err := f.accounts.FindByID(context.Background(), id)
	require.NoError(t, err)
	return &a
}

func TestAccountHasPermission_Scenario(t *testing.T) {
	f := newCheckerFixture(t)
	f.seedScenario(t)
	ctx := context.Background()
	u1 := f.account(t, "u1")

	tests := []struct {
		name   string
		caps   Capabilities
		shopID string
		want   bool
	}{
		{"admin in own shop", Cap("admin"), "s1", true},
		{"admin does not leak to sibling shop", Cap("admin"), "s2", false},
		{"union match across request list", Caps("order/view", "billing"), "s2", true},
		{"ungranted capability", Cap("billing"), "s1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.checker.AccountHasPermission(ctx, u1, nil, tt.caps, tt.shopID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAccountHasPermission_OwnerSuperset(t *testing.T) {
	f := newCheckerFixture(t)
	ctx := context.Background()
	require.NoError(t, f.groups.Upsert(ctx, groups.Group{ID: "g1", ShopID: "s1", Slug: "owners", Permissions: []string{Owner}}))
	require.NoError(t, f.accounts.Upsert(ctx, accounts.Account{ID: "u1", GroupIDs: []string{"g1"}}))
	u1 := f.account(t, "u1")

	// Owners satisfy any capability request in their shop, including
	// capabilities no group ever named.
	for _, caps := range []Capabilities{Cap("admin"), Cap("order/view"), Caps("billing", "reports"), nil} {
		got, err := f.checker.AccountHasPermission(ctx, u1, nil, caps, "s1")
		require.NoError(t, err)
		assert.True(t, got, "caps %v", caps)
	}

	// But not in a shop they do not own.
	got, err := f.checker.AccountHasPermission(ctx, u1, nil, Cap("admin"), "s2")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestAccountHasPermission_EmptyMembership(t *testing.T) {
	f := newCheckerFixture(t)
	ctx := context.Background()
	require.NoError(t, f.accounts.Upsert(ctx, accounts.Account{ID: "u1"}))
	u1 := f.account(t, "u1")

	for _, caps := range []Capabilities{Cap("admin"), Caps("a", "b"), nil} {
		got, err := f.checker.AccountHasPermission(ctx, u1, nil, caps, "s1")
		require.NoError(t, err)
		assert.False(t, got)
	}
}

func TestAccountHasPermission_NilAccount(t *testing.T) {
	f := newCheckerFixture(t)

	got, err := f.checker.AccountHasPermission(context.Background(), nil, nil, Cap("admin"), "s1")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestAccountHasPermission_GlobalRoles(t *testing.T) {
	f := newCheckerFixture(t)
	ctx := context.Background()

	// Platform-global roles live under the reserved scope key and
	// apply when the account holds no shop-scoped grants at all.
	got, err := f.checker.AccountHasPermission(ctx, nil, []string{"support"}, Cap("support"), "s1")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = f.checker.AccountHasPermission(ctx, nil, []string{"support"}, Cap("support"), "")
	require.NoError(t, err)
	assert.True(t, got)

	// Once any shop-scoped grant exists, an unrelated shop does not
	// fall back to the global entry.
	f.seedScenario(t)
	u1 := f.account(t, "u1")
	got, err = f.checker.AccountHasPermission(ctx, u1, []string{"support"}, Cap("support"), "s3")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestAccountHasPermission_GlobalScopeGroup(t *testing.T) {
	f := newCheckerFixture(t)
	ctx := context.Background()
	require.NoError(t, f.groups.Upsert(ctx, groups.Group{ID: "g0", ShopID: groups.GlobalShopID, Slug: "platform", Permissions: []string{"accounts/manage"}}))
	require.NoError(t, f.accounts.Upsert(ctx, accounts.Account{ID: "u1", GroupIDs: []string{"g0"}}))
	u1 := f.account(t, "u1")

	// Empty shop id evaluates against the global scope.
	got, err := f.checker.AccountHasPermission(ctx, u1, nil, Cap("accounts/manage"), "")
	require.NoError(t, err)
	assert.True(t, got)
}

func TestAccountHasPermission_DisabledAccount(t *testing.T) {
	f := newCheckerFixture(t)
	ctx := context.Background()
	require.NoError(t, f.groups.Upsert(ctx, groups.Group{ID: "g1", ShopID: "s1", Slug: "admins", Permissions: []string{"admin"}}))
	require.NoError(t, f.accounts.Upsert(ctx, accounts.Account{ID: "u1", GroupIDs: []string{"g1"}, Disabled: true}))
	u1 := f.account(t, "u1")

	got, err := f.checker.AccountHasPermission(ctx, u1, nil, Cap("admin"), "s1")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestAccountHasPermission_InvalidCapabilities(t *testing.T) {
	f := newCheckerFixture(t)

	_, err := f.checker.AccountHasPermission(context.Background(), nil, nil, Caps("admin", "  "), "s1")
	assert.ErrorIs(t, err, ErrInvalidCapabilities)
}

func TestAccountHasPermission_Idempotent(t *testing.T) {
	f := newCheckerFixture(t)
	f.seedScenario(t)
	ctx := context.Background()
	u1 := f.account(t, "u1")

	first, err := f.checker.AccountHasPermission(ctx, u1, nil, Cap("admin"), "s1")
	require.NoError(t, err)
	second, err := f.checker.AccountHasPermission(ctx, u1, nil, Cap("admin"), "s1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestHasPermission_DefaultsToResolvedShop(t *testing.T) {
	f := newCheckerFixture(t)
	f.seedScenario(t)
	ctx := context.Background()
	require.NoError(t, f.shops.Upsert(ctx, shops.Shop{ID: "s1", Slug: "one", Primary: true}))

	sess := f.mgr.Session("sess-1")
	sess.AccountID = "u1"

	// No explicit shop id: the session resolves to the primary shop s1,
	// where u1 is an admin.
	got, err := f.checker.HasPermission(ctx, sess, Cap("admin"), "")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = f.checker.HasPermission(ctx, sess, Cap("order/view"), "s2")
	require.NoError(t, err)
	assert.True(t, got)
}

func TestHasPermission_NoShopResolvesToGlobalScope(t *testing.T) {
	f := newCheckerFixture(t)
	ctx := context.Background()
	require.NoError(t, f.groups.Upsert(ctx, groups.Group{ID: "g0", ShopID: groups.GlobalShopID, Slug: "platform", Permissions: []string{"accounts/manage"}}))
	require.NoError(t, f.accounts.Upsert(ctx, accounts.Account{ID: "u1", GroupIDs: []string{"g0"}}))

	// No primary shop, no domain, no preference: evaluation falls back
	// to the global scope only.
	sess := f.mgr.Session("sess-1")
	sess.AccountID = "u1"

	got, err := f.checker.HasPermission(ctx, sess, Cap("accounts/manage"), "")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = f.checker.HasPermission(ctx, sess, Cap("admin"), "")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestHasPermission_AuthTransitionSettles(t *testing.T) {
	f := newCheckerFixture(t)
	f.seedScenario(t)
	ctx := context.Background()

	sess := f.mgr.Session("sess-1")
	sess.AccountID = "u1"
	sess.BeginAuthTransition()

	done := make(chan struct{})
	go func() {
		defer close(done)
		got, err := f.checker.HasPermission(ctx, sess, Cap("admin"), "s1")
		assert.NoError(t, err)
		assert.True(t, got)
	}()

	// The check blocks until the transition settles instead of
	// flashing an unauthorized result.
	sess.EndAuthTransition()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("permission check did not finish after auth settled")
	}
}

func TestHasPermission_AuthTransitionTimeout(t *testing.T) {
	f := newCheckerFixture(t)
	f.seedScenario(t)
	ctx := context.Background()

	sess := f.mgr.Session("sess-1")
	sess.AccountID = "u1"
	sess.BeginAuthTransition()
	defer sess.EndAuthTransition()

	// Past the settle timeout the session counts as unauthenticated.
	got, err := f.checker.HasPermission(ctx, sess, Cap("admin"), "s1")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestParseCapabilities(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    Capabilities
		wantErr bool
	}{
		{"nil", nil, nil, false},
		{"string", "admin", Cap("admin"), false},
		{"string slice", []string{"a", "b"}, Caps("a", "b"), false},
		{"json array", []any{"a", "b"}, Caps("a", "b"), false},
		{"number", 42, nil, true},
		{"object", map[string]any{"x": 1}, nil, true},
		{"mixed array", []any{"a", 1}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCapabilities(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCapabilities)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
