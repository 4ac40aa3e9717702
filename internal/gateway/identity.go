package gateway

import (
	"context"
	"net/http"
)

// The gateway never validates credentials itself. An upstream authenticator
// attaches the caller's identity to the request; forwarding propagates it to
// backends as X-User-Id.

type identityKey struct{}

func WithIdentity(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, identityKey{}, userID)
}

func IdentityFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(identityKey{}).(string); ok {
		return id
	}
	return ""
}

// IdentityMiddleware promotes the trusted header set by the edge
// authenticator into the request context.
func IdentityMiddleware(header string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get(header); id != "" {
			r = r.WithContext(WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
