package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract exercises the Get/Set/Delete contract every Store
// backing must satisfy, in particular that a stored empty value is
// distinguishable from an absent key.
func storeContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", "v"))
	v, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, store.Set(ctx, "empty", ""))
	v, ok, err = store.Get(ctx, "empty")
	require.NoError(t, err)
	assert.True(t, ok, "stored empty value must read back as present")
	assert.Equal(t, "", v)

	require.NoError(t, store.Delete(ctx, "k"))
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent key is not an error.
	require.NoError(t, store.Delete(ctx, "missing"))
}

func TestMemoryStoreContract(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestRedisStoreContract(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cli := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cli.Close()

	storeContract(t, NewRedisStore(cli, time.Hour))
}

func TestRedisStoreTTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cli := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cli.Close()

	store := NewRedisStore(cli, time.Minute)
	require.NoError(t, store.Set(context.Background(), "k", "v"))

	mr.FastForward(2 * time.Minute)
	_, ok, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok, "slot must expire with the session TTL")
}

func TestSessionNamespacing(t *testing.T) {
	mgr := NewManager(NewMemoryStore(), time.Second)
	ctx := context.Background()

	s1 := mgr.Session("one")
	s2 := mgr.Session("two")

	require.NoError(t, s1.Set(ctx, "activeShopId", "shop-a"))
	_, ok, err := s2.Get(ctx, "activeShopId")
	require.NoError(t, err)
	assert.False(t, ok, "sessions must not observe each other's slots")

	v, ok, err := s1.Get(ctx, "activeShopId")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "shop-a", v)

	require.NoError(t, s1.Clear(ctx, "activeShopId"))
	_, ok, err = s1.Get(ctx, "activeShopId")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAwaitAuth(t *testing.T) {
	mgr := NewManager(NewMemoryStore(), 50*time.Millisecond)
	ctx := context.Background()

	sess := mgr.Session("one")
	assert.True(t, sess.AwaitAuth(ctx), "no transition in flight")

	sess.BeginAuthTransition()
	start := time.Now()
	assert.False(t, sess.AwaitAuth(ctx), "timeout while transition pending")
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	// Two handles to the same session observe the same transition.
	other := mgr.Session("one")
	other.EndAuthTransition()
	assert.True(t, sess.AwaitAuth(ctx))

	// Ending twice is harmless.
	sess.EndAuthTransition()
}

func TestAwaitAuth_ContextCancel(t *testing.T) {
	mgr := NewManager(NewMemoryStore(), time.Minute)
	sess := mgr.Session("one")
	sess.BeginAuthTransition()
	defer sess.EndAuthTransition()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.False(t, sess.AwaitAuth(ctx))
}
