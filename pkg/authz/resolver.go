// pkg/authz/resolver.go
package authz

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"shopadmin/pkg/accounts"
	"shopadmin/pkg/session"
	"shopadmin/pkg/shops"
)

// shopIDCacheKey names the session cache slot holding the resolved shop id.
const shopIDCacheKey = "activeShopId"

// Resolver determines the single active shop for a session, trying
// cached value, account preference, request-host domain and the
// primary shop, in that order.
type Resolver struct {
	shops    shops.Store
	accounts accounts.Store
	log      *zap.SugaredLogger
}

func NewResolver(shopStore shops.Store, accountStore accounts.Store, log *zap.SugaredLogger) *Resolver {
	return &Resolver{shops: shopStore, accounts: accountStore, log: log}
}

// ResolveShopID returns the active shop id for the session, or "" when
// nothing resolves (no primary shop exists). Lookup failures never
// surface; each fallback step simply proceeds to the next.
//
// A cached value is returned as-is, even a cached "" — callers needing
// a fresh attempt must ResetShopID first. Successful resolution via
// the preference/domain/primary steps populates the cache so repeated
// calls within a session are a single cache read.
func (r *Resolver) ResolveShopID(ctx context.Context, sess *session.Session) string {
	if v, ok, err := sess.Get(ctx, shopIDCacheKey); err == nil && ok {
		return v
	} else if err != nil {
		r.log.Debugw("shop cache read failed", "session", sess.ID(), "err", err)
	}

	id := r.resolveUncached(ctx, sess)
	if id != "" {
		if err := sess.Set(ctx, shopIDCacheKey, id); err != nil {
			r.log.Debugw("shop cache write failed", "session", sess.ID(), "err", err)
		}
	}
	return id
}

func (r *Resolver) resolveUncached(ctx context.Context, sess *session.Session) string {
	// Stored per-account preference wins over anything request-derived.
	if sess.AccountID != "" {
		if a, err := r.accounts.FindByID(ctx, sess.AccountID); err == nil && a.ActiveShopID != "" {
			return a.ActiveShopID
		}
	}

	host := stripPort(sess.Host)
	if host != "" {
		// When several shops register overlapping domains, the primary
		// shop wins the tie for its own domains.
		if p, err := r.shops.FindPrimary(ctx); err == nil && p.HasDomain(host) {
			return p.ID
		}
		if s, err := r.shops.FindByDomain(ctx, host); err == nil {
			return s.ID
		}
	}

	if p, err := r.shops.FindPrimary(ctx); err == nil {
		return p.ID
	}
	return ""
}

// ResetShopID clears the cached shop id unconditionally, forcing the
// next ResolveShopID to recompute from source data. Call after a shop
// switch.
func (r *Resolver) ResetShopID(ctx context.Context, sess *session.Session) {
	if err := sess.Clear(ctx, shopIDCacheKey); err != nil {
		r.log.Debugw("shop cache clear failed", "session", sess.ID(), "err", err)
	}
}

func stripPort(host string) string {
	if i := strings.Index(host, ":"); i > 0 {
		return host[:i]
	}
	return host
}
