package auth

import (
	"context"
	"time"
)

// Identity is the authenticated user, as asserted by the external identity provider.
type Identity struct {
	UserID    string
	TokenID   string
	ExpiresAt time.Time
}

type identityCtxKey struct{}

func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, identity)
}

// IdentityFromContext returns the identity stored by the identity middleware, or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	identity, _ := ctx.Value(identityCtxKey{}).(*Identity)
	return identity
}

// UserIDFromContext returns the identity user id, or an empty string when anonymous.
func UserIDFromContext(ctx context.Context) string {
	if identity := IdentityFromContext(ctx); identity != nil {
		return identity.UserID
	}
	return ""
}
