package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gharbazaar/backend/internal/infrastructure/identity"
	"github.com/gharbazaar/backend/internal/infrastructure/observability"
)

type contextKey string

const (
	principalKey contextKey = "principal"
	roleKey      contextKey = "role"
)

// AuthMiddleware extracts the caller identity from a Bearer token. Requests
// without a token pass through anonymously; each operation decides for itself
// whether anonymity is acceptable. A token that is present but invalid is
// rejected outright.
func AuthMiddleware(manager *identity.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				http.Error(w, `{"error":"malformed authorization header"}`, http.StatusUnauthorized)
				return
			}

			principal, role, err := manager.Parse(token)
			if err != nil {
				observability.LoggerFromContext(r.Context()).Debug().Err(err).Msg("rejected bearer token")
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			ctx = context.WithValue(ctx, roleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Principal returns the authenticated caller, or "" for anonymous requests
func Principal(ctx context.Context) string {
	if p, ok := ctx.Value(principalKey).(string); ok {
		return p
	}
	return ""
}

// Role returns the caller's role claim, or "" for anonymous requests
func Role(ctx context.Context) string {
	if r, ok := ctx.Value(roleKey).(string); ok {
		return r
	}
	return ""
}
