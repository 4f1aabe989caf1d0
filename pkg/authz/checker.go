// pkg/authz/checker.go
package authz

import (
	"context"

	"go.uber.org/zap"

	"shopadmin/pkg/accounts"
	"shopadmin/pkg/groups"
	"shopadmin/pkg/session"
)

// Checker evaluates capability requests against the groups an account
// belongs to, scoped to a single shop. Capability decisions only ever
// consider groups whose shop id equals the resolution scope (or the
// reserved global scope) — grants never leak across shops.
type Checker struct {
	resolver *Resolver
	accounts accounts.Store
	groups   groups.Store
	log      *zap.SugaredLogger
}

func NewChecker(resolver *Resolver, accountStore accounts.Store, groupStore groups.Store, log *zap.SugaredLogger) *Checker {
	return &Checker{resolver: resolver, accounts: accountStore, groups: groupStore, log: log}
}

// HasPermission reports whether the session's account holds any of the
// requested capabilities in the given shop. An empty shopID defaults to
// the session's resolved shop; when that also comes up empty the check
// runs against the global scope.
//
// If a login/logout transition is in flight the call waits for it to
// settle; past the settle timeout the session is treated as
// unauthenticated instead of evaluating a stale identity.
//
// Missing accounts, unknown shops and empty grants all reduce to false.
// The only error returned is ErrInvalidCapabilities.
func (c *Checker) HasPermission(ctx context.Context, sess *session.Session, caps Capabilities, shopID string) (bool, error) {
	var acct *accounts.Account
	var globalRoles []string
	if sess.AwaitAuth(ctx) {
		globalRoles = sess.GlobalRoles
		if sess.AccountID != "" {
			if a, err := c.accounts.FindByID(ctx, sess.AccountID); err == nil {
				acct = &a
			} else if err != accounts.ErrNotFound {
				c.log.Debugw("account lookup failed", "account", sess.AccountID, "err", err)
			}
		}
	} else {
		c.log.Debugw("auth transition did not settle, treating as unauthenticated", "session", sess.ID())
	}

	if shopID == "" {
		shopID = c.resolver.ResolveShopID(ctx, sess)
	}
	return c.AccountHasPermission(ctx, acct, globalRoles, caps, shopID)
}

// AccountHasPermission is the account-level check shared by the session
// path above and internal call sites that already hold an account.
// A nil account carries no grants; globalRoles are unioned in under the
// reserved global scope key. An empty shopID means the global scope.
func (c *Checker) AccountHasPermission(ctx context.Context, acct *accounts.Account, globalRoles []string, caps Capabilities, shopID string) (bool, error) {
	requested, err := caps.normalize()
	if err != nil {
		return false, err
	}

	scope := shopID
	if scope == "" {
		scope = groups.GlobalShopID
	}

	byShop := c.effectiveCapabilities(ctx, acct, globalRoles)

	effective, ok := byShop[scope]
	if !ok && (scope == groups.GlobalShopID || !hasShopScoped(byShop)) {
		effective = byShop[groups.GlobalShopID]
	}
	for _, perm := range requested {
		if _, ok := effective[perm]; ok {
			return true, nil
		}
	}
	return false, nil
}

// effectiveCapabilities partitions the account's group grants by each
// group's own shop id and unions duplicates away. Group lookup failure
// is treated as "no grants", per the resolver failure policy.
func (c *Checker) effectiveCapabilities(ctx context.Context, acct *accounts.Account, globalRoles []string) map[string]map[string]struct{} {
	byShop := map[string]map[string]struct{}{}
	add := func(shopID, perm string) {
		set, ok := byShop[shopID]
		if !ok {
			set = map[string]struct{}{}
			byShop[shopID] = set
		}
		set[perm] = struct{}{}
	}

	if acct != nil && !acct.Disabled && len(acct.GroupIDs) > 0 {
		gs, err := c.groups.FindByIDs(ctx, acct.GroupIDs)
		if err != nil {
			c.log.Debugw("group lookup failed", "account", acct.ID, "err", err)
			gs = nil
		}
		for _, g := range gs {
			for _, perm := range g.Permissions {
				add(g.ShopID, perm)
			}
		}
	}
	for _, role := range globalRoles {
		add(groups.GlobalShopID, role)
	}
	return byShop
}

func hasShopScoped(byShop map[string]map[string]struct{}) bool {
	for shopID := range byShop {
		if shopID != groups.GlobalShopID {
			return true
		}
	}
	return false
}
