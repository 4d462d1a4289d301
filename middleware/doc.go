// Package middleware exposes the HTTP authorization adapters built on top of
// Manager.Authenticate.
//
// # Guards
//
//   - [Guard] — bearer-token authentication: verify, revocation check, and
//     identity injection into the request context.
//   - [RequireRole] — role-membership gate layered after Guard.
//
// Each guard reads the Authorization header, calls Manager.Authenticate, and
// injects the validated identity (and the raw token, for handlers that revoke
// it) into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Manager calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Manager.Authenticate.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Manager).
//   - Mutate the revocation registry or the refresh token store.
//   - Make authorization decisions beyond pass/reject from Manager and role
//     membership.
package middleware
