package adminapi

import (
	"go.uber.org/zap"

	"shopadmin/pkg/accounts"
	"shopadmin/pkg/authz"
	"shopadmin/pkg/config"
	"shopadmin/pkg/groups"
	"shopadmin/pkg/openapi"
	"shopadmin/pkg/session"
	"shopadmin/pkg/shops"
)

// App is the admin-api application container.
// Handlers and middleware have methods on this type.
//
// Keep it lean: shared deps and config only.
// Request-scoped work should use context.
type App struct {
	log      *zap.SugaredLogger
	cfg      config.Config
	shops    shops.Store
	groups   groups.Store
	accounts accounts.Store
	sessions *session.Manager
	resolver *authz.Resolver
	checker  *authz.Checker
	spec     *openapi.Registry
}

// New wires the admin API around the shared authorization core.
func New(log *zap.SugaredLogger, cfg config.Config, shopStore shops.Store, groupStore groups.Store, accountStore accounts.Store, sessions *session.Manager) *App {
	resolver := authz.NewResolver(shopStore, accountStore, log)
	return &App{
		log:      log,
		cfg:      cfg,
		shops:    shopStore,
		groups:   groupStore,
		accounts: accountStore,
		sessions: sessions,
		resolver: resolver,
		checker:  authz.NewChecker(resolver, accountStore, groupStore, log),
		spec:     openapi.NewRegistry(),
	}
}

// Checker exposes the permission core for internal service call sites
// that link the library without going through HTTP.
func (a *App) Checker() *authz.Checker { return a.checker }
