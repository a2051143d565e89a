package httpapi

import (
	"context"

	"github.com/was-labs/webauth/internal/auth"
)

type identityContextKey struct{}

// WithIdentity attaches the caller's resolved identity to ctx.
func WithIdentity(ctx context.Context, ident *auth.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, ident)
}

// IdentityFromContext returns the identity attached by the authentication
// middleware, or nil when the request is anonymous.
func IdentityFromContext(ctx context.Context) *auth.Identity {
	ident, _ := ctx.Value(identityContextKey{}).(*auth.Identity)
	return ident
}
