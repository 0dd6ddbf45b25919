package shared

import "context"

type principalContextKey struct{}

// ContextWithPrincipal stores the authenticated principal id in context.
func ContextWithPrincipal(ctx context.Context, principalID string) context.Context {
	return context.WithValue(ctx, principalContextKey{}, principalID)
}

// PrincipalFromContext extracts the principal id from context.
func PrincipalFromContext(ctx context.Context) string {
	id, _ := ctx.Value(principalContextKey{}).(string)
	return id
}
