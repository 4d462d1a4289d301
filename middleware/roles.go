package middleware

import (
	"net/http"

	authkit "github.com/skillswaphq/authkit"
)

// RequireRole gates a handler on role membership. It must be layered after
// [Guard]: a request with no attached identity is rejected as
// unauthenticated, an identity outside the allowed set as unauthorized.
func RequireRole(allowed ...authkit.Role) func(http.Handler) http.Handler {
	allowedSet := make(map[authkit.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "AUTHENTICATION_REQUIRED", "Authentication required")
				return
			}

			if _, ok := allowedSet[identity.Role]; !ok {
				writeError(w, http.StatusForbidden, "INSUFFICIENT_PERMISSIONS", "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
