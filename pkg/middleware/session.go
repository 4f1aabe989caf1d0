// pkg/middleware/session.go
package middleware

import (
	"context"

	"shopadmin/pkg/session"
)

type ctxSessionKey struct{}

// WithSession stores the request session in context.
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, ctxSessionKey{}, sess)
}

// SessionFrom extracts the request session from context. Returns nil
// when the auth middleware did not run.
func SessionFrom(ctx context.Context) *session.Session {
	if v := ctx.Value(ctxSessionKey{}); v != nil {
		return v.(*session.Session)
	}
	return nil
}
