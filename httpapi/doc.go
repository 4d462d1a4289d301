// Package httpapi mounts the session-lifecycle operations on a gorilla/mux
// router.
//
// # Routes
//
//	POST /api/auth/register    — create account, issue token pair
//	POST /api/auth/login       — verify credentials, issue token pair
//	POST /api/auth/refresh     — exchange refresh token for a new access token
//	POST /api/auth/logout      — revoke current access token (+ optional refresh token)
//	POST /api/auth/logout-all  — revoke current access token, deactivate all sessions
//	POST /api/auth/password    — change password, invalidate all sessions
//	GET  /api/auth/me          — current account record
//	GET  /api/auth/stats       — admin-only counter snapshot
//	GET  /healthz              — liveness
//
// Error responses follow the {success, message, code} envelope; token
// payloads are nested as {success, tokens:{accessToken, refreshToken,
// tokenType, expiresIn}}.
//
// # What this package must NOT do
//
//   - Leak internal error causes — unknown failures map to a generic 500.
//   - Return password hashes in any response body.
//   - Bypass middleware.Guard for protected routes.
package httpapi
