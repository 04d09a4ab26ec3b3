package utils

import "context"

type authUserKey struct{}

// WithAuthenticatedUser stores the user on the context for downstream
// handlers and tools.
func WithAuthenticatedUser(ctx context.Context, user *AuthenticatedUser) context.Context {
	return context.WithValue(ctx, authUserKey{}, user)
}

// GetAuthenticatedUser retrieves the authenticated user from the
// context. ok is false when the request is anonymous.
func GetAuthenticatedUser(ctx context.Context) (*AuthenticatedUser, bool) {
	user, ok := ctx.Value(authUserKey{}).(*AuthenticatedUser)
	return user, ok
}
