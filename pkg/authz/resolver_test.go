package authz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shopadmin/pkg/accounts"
	"shopadmin/pkg/session"
	"shopadmin/pkg/shops"
)

func newResolverFixture(t *testing.T) (*Resolver, shops.Store, accounts.Store, *session.Manager) {
	t.Helper()
	log := zap.NewNop().Sugar()
	shopStore := shops.NewMemoryStore(log)
	accountStore := accounts.NewMemoryStore(log)
	mgr := session.NewManager(session.NewMemoryStore(), 100*time.Millisecond)
	return NewResolver(shopStore, accountStore, log), shopStore, accountStore, mgr
}

func TestResolveShopID_PreferenceBeatsDomain(t *testing.T) {
	r, shopStore, accountStore, mgr := newResolverFixture(t)
	ctx := context.Background()

	require.NoError(t, shopStore.Upsert(ctx, shops.Shop{ID: "p1", Slug: "pref"}))
	require.NoError(t, shopStore.Upsert(ctx, shops.Shop{ID: "d1", Slug: "domain", Domains: []string{"shop.example.com"}}))
	require.NoError(t, accountStore.Upsert(ctx, accounts.Account{ID: "u1", ActiveShopID: "p1"}))

	sess := mgr.Session("s1")
	sess.AccountID = "u1"
	sess.Host = "shop.example.com"

	assert.Equal(t, "p1", r.ResolveShopID(ctx, sess))
}

func TestResolveShopID_DomainMatch(t *testing.T) {
	r, shopStore, _, mgr := newResolverFixture(t)
	ctx := context.Background()

	require.NoError(t, shopStore.Upsert(ctx, shops.Shop{ID: "d1", Slug: "domain", Domains: []string{"shop.example.com"}}))
	require.NoError(t, shopStore.Upsert(ctx, shops.Shop{ID: "main", Slug: "main", Primary: true}))

	sess := mgr.Session("s1")
	sess.Host = "shop.example.com:8443" // port must be ignored

	assert.Equal(t, "d1", r.ResolveShopID(ctx, sess))
}

func TestResolveShopID_PrimaryWinsOverlappingDomain(t *testing.T) {
	r, shopStore, _, mgr := newResolverFixture(t)
	ctx := context.Background()

	// Both shops register the same host; the primary shop wins the tie.
	require.NoError(t, shopStore.Upsert(ctx, shops.Shop{ID: "a1", Slug: "aaa", Domains: []string{"shop.example.com"}}))
	require.NoError(t, shopStore.Upsert(ctx, shops.Shop{ID: "z1", Slug: "zzz", Primary: true, Domains: []string{"shop.example.com"}}))

	sess := mgr.Session("s1")
	sess.Host = "shop.example.com"

	assert.Equal(t, "z1", r.ResolveShopID(ctx, sess))
}

func TestResolveShopID_PrimaryFallback(t *testing.T) {
	r, shopStore, _, mgr := newResolverFixture(t)
	ctx := context.Background()

	require.NoError(t, shopStore.Upsert(ctx, shops.Shop{ID: "main", Slug: "main", Primary: true}))

	sess := mgr.Session("s1")
	sess.Host = "unknown.example.com"

	assert.Equal(t, "main", r.ResolveShopID(ctx, sess))
}

func TestResolveShopID_NothingResolves(t *testing.T) {
	r, shopStore, _, mgr := newResolverFixture(t)
	ctx := context.Background()

	sess := mgr.Session("s1")
	sess.Host = "unknown.example.com"

	assert.Equal(t, "", r.ResolveShopID(ctx, sess))

	// The failed resolution is not cached: once a primary shop exists
	// the same session resolves without an explicit reset.
	require.NoError(t, shopStore.Upsert(ctx, shops.Shop{ID: "main", Slug: "main", Primary: true}))
	assert.Equal(t, "main", r.ResolveShopID(ctx, sess))
}

func TestResolveShopID_CacheCorrectness(t *testing.T) {
	r, shopStore, accountStore, mgr := newResolverFixture(t)
	ctx := context.Background()

	require.NoError(t, shopStore.Upsert(ctx, shops.Shop{ID: "x1", Slug: "x"}))
	require.NoError(t, shopStore.Upsert(ctx, shops.Shop{ID: "y1", Slug: "y"}))
	require.NoError(t, accountStore.Upsert(ctx, accounts.Account{ID: "u1", ActiveShopID: "x1"}))

	sess := mgr.Session("s1")
	sess.AccountID = "u1"

	require.Equal(t, "x1", r.ResolveShopID(ctx, sess))

	// Underlying preference changes; the cached value still wins.
	require.NoError(t, accountStore.SetActiveShop(ctx, "u1", "y1"))
	assert.Equal(t, "x1", r.ResolveShopID(ctx, sess))

	// After a reset the next call recomputes from source data.
	r.ResetShopID(ctx, sess)
	assert.Equal(t, "y1", r.ResolveShopID(ctx, sess))
}

func TestResolveShopID_CachedEmptyHonored(t *testing.T) {
	r, shopStore, _, mgr := newResolverFixture(t)
	ctx := context.Background()

	require.NoError(t, shopStore.Upsert(ctx, shops.Shop{ID: "main", Slug: "main", Primary: true}))

	sess := mgr.Session("s1")
	// A prior failed lookup left "" in the slot; it is returned as-is
	// until the caller clears the cache.
	require.NoError(t, sess.Set(ctx, shopIDCacheKey, ""))
	assert.Equal(t, "", r.ResolveShopID(ctx, sess))

	r.ResetShopID(ctx, sess)
	assert.Equal(t, "main", r.ResolveShopID(ctx, sess))
}

func TestResolveShopID_SessionIsolation(t *testing.T) {
	r, shopStore, accountStore, mgr := newResolverFixture(t)
	ctx := context.Background()

	require.NoError(t, shopStore.Upsert(ctx, shops.Shop{ID: "x1", Slug: "x"}))
	require.NoError(t, shopStore.Upsert(ctx, shops.Shop{ID: "y1", Slug: "y"}))
	require.NoError(t, accountStore.Upsert(ctx, accounts.Account{ID: "u1", ActiveShopID: "x1"}))
	require.NoError(t, accountStore.Upsert(ctx, accounts.Account{ID: "u2", ActiveShopID: "y1"}))

	s1 := mgr.Session("s1")
	s1.AccountID = "u1"
	s2 := mgr.Session("s2")
	s2.AccountID = "u2"

	assert.Equal(t, "x1", r.ResolveShopID(ctx, s1))
	assert.Equal(t, "y1", r.ResolveShopID(ctx, s2))
}
