// Package authkit provides the token-based authentication and session-lifecycle
// subsystem for the SkillSwap platform: JWT access tokens, stored refresh
// tokens, a pre-expiry revocation registry, and role-gated request guards.
//
// The package is designed for concurrent server workloads: Manager methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authkit is the public surface. It exposes [Manager], [Builder], [Config],
// the [UserDirectory] boundary, and value types (Identity, TokenPair,
// MetricsSnapshot). Token signing lives in token, hashing in password, record
// persistence in refresh and blacklist; audit dispatch lives under internal/.
//
// # What this package must NOT do
//
//   - Persist users itself — all user state crosses the [UserDirectory] boundary.
//   - Expose Redis clients or record encodings in its public API.
//   - Import any sub-package that re-imports authkit (no import cycles).
//
// # Performance contract
//
// Authenticate is the hot path. It performs one signature verification and one
// revocation check; with the in-memory registry it completes without I/O.
// Login and Register pay the deliberate Argon2id cost and one directory
// round-trip. Clock skew between issuance and verification is not compensated.
package authkit
