// pkg/middleware/permission.go
package middleware

import (
	"errors"
	"net/http"

	"shopadmin/pkg/authz"
)

// RequirePermission guards a route with a capability check against the
// session's active shop. Denied requests get 403; a malformed
// capability request (programming error) gets 400.
func RequirePermission(checker *authz.Checker, caps ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFrom(r.Context())
			if sess == nil {
				http.Error(w, "no session", http.StatusUnauthorized)
				return
			}
			allowed, err := checker.HasPermission(r.Context(), sess, authz.Caps(caps...), "")
			if err != nil {
				if errors.Is(err, authz.ErrInvalidCapabilities) {
					http.Error(w, err.Error(), http.StatusBadRequest)
					return
				}
				http.Error(w, "permission check failed", http.StatusInternalServerError)
				return
			}
			if !allowed {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
