// pkg/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"shopadmin/pkg/accounts"
	"shopadmin/pkg/config"
	"shopadmin/pkg/session"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"go.uber.org/zap"
)

// jwksCache caches JWKS sets per URL.
type jwksCache struct {
	mu   sync.RWMutex
	sets map[string]cachedJWKS
}

type cachedJWKS struct {
	set     jwk.Set
	expires time.Time
}

func (c *jwksCache) get(ctx context.Context, url string, ttl time.Duration) (jwk.Set, error) {
	c.mu.RLock()
	if e, ok := c.sets[url]; ok && time.Now().Before(e.expires) {
		c.mu.RUnlock()
		return e.set, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sets == nil {
		c.sets = map[string]cachedJWKS{}
	}
	if e, ok := c.sets[url]; ok && time.Now().Before(e.expires) {
		return e.set, nil
	}
	set, err := jwk.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	c.sets[url] = cachedJWKS{set: set, expires: time.Now().Add(ttl)}
	return set, nil
}

// Auth validates admin bearer tokens and attaches a Session to the
// request context: session id from the "sid" claim (else a fresh one),
// account resolved through its linked login identity, platform-global
// roles taken from the roles claim.
//
// Requests without a token still get an anonymous session so shop
// resolution by host keeps working; in dev mode they pass through
// unauthenticated to ease local bring-up.
func Auth(cfg config.Config, accountStore accounts.Store, sessions *session.Manager, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	cache := &jwksCache{}
	jwksTTL := 6 * time.Hour
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Bypass auth for health and metrics endpoints
			if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			authz := strings.TrimSpace(r.Header.Get("Authorization"))
			if authz == "" {
				if cfg.Env != "dev" {
					http.Error(w, "missing bearer", http.StatusUnauthorized)
					return
				}
				sess := sessions.Session(anonSessionID(r))
				sess.Host = r.Host
				// Dev header overrides stand in for a real token.
				if aid := strings.TrimSpace(r.Header.Get("X-Account-ID")); aid != "" {
					sess.AccountID = aid
				}
				next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
				return
			}

			if cfg.Issuer == "" || cfg.JWKSURL == "" {
				http.Error(w, "auth not configured", http.StatusInternalServerError)
				return
			}
			set, err := cache.get(r.Context(), cfg.JWKSURL, jwksTTL)
			if err != nil {
				http.Error(w, "jwks fetch failed", http.StatusInternalServerError)
				return
			}

			if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			raw := strings.TrimSpace(authz[len("Bearer "):])
			jt, err := jwt.Parse([]byte(raw),
				jwt.WithKeySet(set),
				jwt.WithIssuer(strings.TrimRight(cfg.Issuer, "/")),
				jwt.WithAudience(cfg.Audience),
				jwt.WithValidate(true),
				jwt.WithVerify(true),
			)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			sid := claimString(jt, "sid")
			if sid == "" {
				sid = anonSessionID(r)
			}
			sess := sessions.Session(sid)
			sess.Host = r.Host
			sess.GlobalRoles = claimStrings(jt, cfg.RolesClaim)

			if identity := claimString(jt, cfg.AccountClaim); identity != "" {
				if a, err := accountStore.FindByIdentity(r.Context(), identity); err == nil {
					if a.Disabled {
						http.Error(w, "account disabled", http.StatusForbidden)
						return
					}
					sess.AccountID = a.ID
				} else if err != accounts.ErrNotFound {
					log.Warnw("account lookup failed", "identity", identity, "err", err)
				}
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// anonSessionID derives a stable session id for tokenless requests from
// the X-Session-ID header, else mints a throwaway one.
func anonSessionID(r *http.Request) string {
	if sid := strings.TrimSpace(r.Header.Get("X-Session-ID")); sid != "" {
		return sid
	}
	return uuid.NewString()
}

func claimString(jt jwt.Token, name string) string {
	if v, ok := jt.Get(name); ok {
		if s, _ := v.(string); s != "" {
			return s
		}
	}
	return ""
}

func claimStrings(jt jwt.Token, name string) []string {
	v, ok := jt.Get(name)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case string:
		return strings.Fields(t)
	case []string:
		return t
	case []any:
		var out []string
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
