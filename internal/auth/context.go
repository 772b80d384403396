package auth

import "context"

type authKey struct{}

// NewContext returns ctx carrying the caller identity established by
// Middleware.
func NewContext(ctx context.Context, ac *AuthContext) context.Context {
	return context.WithValue(ctx, authKey{}, ac)
}

// FromContext returns the caller identity, or nil for unauthenticated
// requests and for calls that did not come through the HTTP surface.
func FromContext(ctx context.Context) *AuthContext {
	ac, _ := ctx.Value(authKey{}).(*AuthContext)
	return ac
}

// TokenID returns the masked token of the caller, or "" when there is none.
func TokenID(ctx context.Context) string {
	if ac := FromContext(ctx); ac != nil {
		return ac.TokenID
	}
	return ""
}
