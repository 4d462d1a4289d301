package middleware

import (
	"context"
	"net/http"
	"strings"

	authkit "github.com/skillswaphq/authkit"
)

type identityContextKey struct{}

type rawTokenContextKey struct{}

// IdentityFromContext returns the identity attached by [Guard].
func IdentityFromContext(ctx context.Context) (*authkit.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(*authkit.Identity)
	return identity, ok
}

// RawTokenFromContext returns the bearer token string attached by [Guard].
// Handlers pass it back to Manager operations that revoke the current token.
func RawTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(rawTokenContextKey{}).(string)
	return token, ok
}

// Guard authenticates the Authorization header against the manager and
// attaches the resolved identity and raw token to the request context. It
// attaches context only; it never mutates the revocation registry or the
// refresh token store.
func Guard(manager *authkit.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				writeError(w, http.StatusUnauthorized, "AUTHENTICATION_REQUIRED", "Authentication required")
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, "TOKEN_MISSING", "Access token required")
				return
			}

			token, ok := bearerToken(header)
			if !ok {
				writeError(w, http.StatusUnauthorized, "TOKEN_INVALID", "Invalid token format")
				return
			}

			identity, err := manager.Authenticate(r.Context(), token)
			if err != nil {
				writeAuthError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
			ctx = context.WithValue(ctx, rawTokenContextKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
