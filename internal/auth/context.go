package auth

import "context"

// Identity is the verified subject of a bearer token.
type Identity struct {
	UserID string
	Email  string
}

type ctxKey string

const identityContextKey ctxKey = "focusly.auth.identity"

func withIdentityContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	v := ctx.Value(identityContextKey)
	id, ok := v.(Identity)
	return id, ok
}
