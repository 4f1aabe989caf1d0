package adminapi

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "shopadmin/pkg/middleware"
	"shopadmin/pkg/openapi"
)

// Handler builds the HTTP handler with routes and middleware.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(mw.RequestID())
	r.Use(mw.Recover(a.log))
	r.Use(mw.DebugWriteHeader())
	r.Use(mw.Tracing(a.cfg))
	r.Use(mw.Auth(a.cfg, a.accounts, a.sessions, a.log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	allowed := []string{"http://localhost:3001"}
	if v := strings.TrimSpace(os.Getenv("ADMIN_CORS_ORIGINS")); v != "" {
		parts := strings.Split(v, ",")
		tmp := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				tmp = append(tmp, s)
			}
		}
		if len(tmp) > 0 {
			allowed = tmp
		}
	}

	r.Route("/admin", func(ar chi.Router) {
		ar.Use(cors(allowed))

		ar.Group(func(g chi.Router) {
			g.Use(mw.RequirePermission(a.checker, "shop/manage"))
			g.Get("/shops", a.listShops)
			g.Post("/shops", a.createShop)
			g.Get("/shops/{id}", a.getShop)
		})

		ar.Group(func(g chi.Router) {
			g.Use(mw.RequirePermission(a.checker, "group/manage"))
			g.Get("/groups", a.listGroups)
			g.Post("/groups", a.createGroup)
			g.Put("/groups/{id}", a.updateGroup)
			g.Post("/groups/{id}/members/{accountID}", a.addMember)
			g.Delete("/groups/{id}/members/{accountID}", a.removeMember)
		})

		ar.Get("/accounts/{id}", a.getAccount)
		ar.Put("/accounts/{id}/active-shop", a.setActiveShop)

		// Session-scoped endpoints: any authenticated (or anonymous dev)
		// session may ask what it resolves to and what it may do.
		ar.Get("/session/shop", a.getSessionShop)
		ar.Post("/session/switch-shop", a.switchShop)
		ar.Post("/permissions/check", a.checkPermission)

		ar.Get("/openapi.json", a.spec.ServeHandler("shopadmin-admin-api", "v1"))
	})

	a.registerSpec()
	return r
}

func (a *App) registerSpec() {
	if len(a.spec.Ops) > 0 {
		return
	}
	for _, op := range []openapi.Operation{
		{Method: "GET", Path: "/admin/shops", Summary: "List shops", Tags: []string{"shops"}, Capabilities: []string{"shop/manage"}},
		{Method: "POST", Path: "/admin/shops", Summary: "Create or replace a shop", Tags: []string{"shops"}, Capabilities: []string{"shop/manage"}},
		{Method: "GET", Path: "/admin/shops/{id}", Summary: "Fetch a shop", Tags: []string{"shops"}, Capabilities: []string{"shop/manage"}},
		{Method: "GET", Path: "/admin/groups", Summary: "List groups for a shop", Tags: []string{"groups"}, Capabilities: []string{"group/manage"}},
		{Method: "POST", Path: "/admin/groups", Summary: "Create a permission group", Tags: []string{"groups"}, Capabilities: []string{"group/manage"}},
		{Method: "PUT", Path: "/admin/groups/{id}", Summary: "Update a permission group", Tags: []string{"groups"}, Capabilities: []string{"group/manage"}},
		{Method: "POST", Path: "/admin/groups/{id}/members/{accountID}", Summary: "Add an account to a group", Tags: []string{"groups"}, Capabilities: []string{"group/manage"}},
		{Method: "DELETE", Path: "/admin/groups/{id}/members/{accountID}", Summary: "Remove an account from a group", Tags: []string{"groups"}, Capabilities: []string{"group/manage"}},
		{Method: "GET", Path: "/admin/accounts/{id}", Summary: "Fetch an account", Tags: []string{"accounts"}},
		{Method: "PUT", Path: "/admin/accounts/{id}/active-shop", Summary: "Set an account's shop preference", Tags: []string{"accounts"}},
		{Method: "GET", Path: "/admin/session/shop", Summary: "Resolve the session's active shop", Tags: []string{"session"}},
		{Method: "POST", Path: "/admin/session/switch-shop", Summary: "Switch the session's active shop", Tags: []string{"session"}},
		{Method: "POST", Path: "/admin/permissions/check", Summary: "Evaluate a capability check", Tags: []string{"session"}},
	} {
		a.spec.Register(op)
	}
}

// cors returns a middleware that sets CORS headers and handles preflight requests.
// allowed may contain exact origins (e.g., http://localhost:3001) or "*" to allow all.
func cors(allowed []string) func(http.Handler) http.Handler {
	match := func(origin string) (string, bool) {
		if origin == "" {
			return "", false
		}
		for _, a := range allowed {
			a = strings.TrimSpace(a)
			if a == "*" || a == origin {
				return a, true
			}
		}
		return "", false
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if ao, ok := match(origin); ok {
				w.Header().Set("Access-Control-Allow-Origin", ao)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Session-ID, X-Account-ID")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Max-Age", "86400")
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
