package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cinemaadmin/backend/libs/auth/service"
)

type contextKey string

const identityKey contextKey = "identity"

// RoleMiddleware validates the access token and requires a role of at least requiredRole.
// The token is read from "Authorization: Bearer" first, then from the access_token cookie.
func RoleMiddleware(verifier *service.TokenVerifier, requiredRole service.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			if identity.Role < requiredRole {
				writeError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// WithIdentity stores the current user in the context
func WithIdentity(ctx context.Context, identity service.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// CurrentUser returns the identity stored by RoleMiddleware
func CurrentUser(ctx context.Context) (service.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(service.Identity)
	return identity, ok
}

func extractToken(r *http.Request) string {
	if parts := strings.Fields(r.Header.Get("Authorization")); len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
