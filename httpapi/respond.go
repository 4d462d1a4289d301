package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/skillswaphq/authkit"
)

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Success: false, Message: message, Code: code})
}

// writeManagerError maps session-manager sentinels onto HTTP responses.
// Credential failures share one message so callers cannot probe which
// accounts exist.
func writeManagerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authkit.ErrUserExists):
		writeError(w, http.StatusConflict, "USER_EXISTS", "An account with this email already exists")
	case errors.Is(err, authkit.ErrInvalidCredentials), errors.Is(err, authkit.ErrUserNotFound):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, authkit.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, "INVALID_ROLE", "Unknown role")
	case errors.Is(err, authkit.ErrPasswordPolicy):
		writeError(w, http.StatusBadRequest, "PASSWORD_POLICY", "Password does not meet the minimum length")
	case errors.Is(err, authkit.ErrPasswordReuse):
		writeError(w, http.StatusBadRequest, "PASSWORD_REUSE", "New password must differ from the current one")
	case errors.Is(err, authkit.ErrRefreshTokenRequired):
		writeError(w, http.StatusBadRequest, "REFRESH_TOKEN_REQUIRED", "Refresh token required")
	case errors.Is(err, authkit.ErrRefreshTokenExpired):
		writeError(w, http.StatusUnauthorized, "REFRESH_TOKEN_EXPIRED", "Refresh token expired")
	case errors.Is(err, authkit.ErrRefreshTokenInvalid):
		writeError(w, http.StatusUnauthorized, "REFRESH_TOKEN_INVALID", "Invalid refresh token")
	case errors.Is(err, authkit.ErrTokenExpired):
		writeError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token expired")
	case errors.Is(err, authkit.ErrTokenRevoked):
		writeError(w, http.StatusForbidden, "TOKEN_REVOKED", "Token has been revoked")
	case errors.Is(err, authkit.ErrTokenMissing):
		writeError(w, http.StatusUnauthorized, "TOKEN_MISSING", "Access token required")
	case errors.Is(err, authkit.ErrTokenMalformed),
		errors.Is(err, authkit.ErrWrongTokenKind),
		errors.Is(err, authkit.ErrTokenInvalid):
		writeError(w, http.StatusUnauthorized, "TOKEN_INVALID", "Invalid token")
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
