package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	authkit "github.com/skillswaphq/authkit"
)

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{
		Success: false,
		Message: message,
		Code:    code,
	})
}

// Authentication failures are 401; revocation is 403 because the credential
// was valid and has been explicitly withdrawn.
func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authkit.ErrTokenMissing):
		writeError(w, http.StatusUnauthorized, "TOKEN_MISSING", "Access token required")
	case errors.Is(err, authkit.ErrTokenExpired):
		writeError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token expired")
	case errors.Is(err, authkit.ErrTokenRevoked):
		writeError(w, http.StatusForbidden, "TOKEN_REVOKED", "Token revoked")
	case errors.Is(err, authkit.ErrTokenMalformed),
		errors.Is(err, authkit.ErrWrongTokenKind),
		errors.Is(err, authkit.ErrTokenInvalid):
		writeError(w, http.StatusUnauthorized, "TOKEN_INVALID", "Invalid token")
	default:
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
	}
}
