// Package blacklist implements the revocation registry for access tokens.
//
// # Semantics
//
// Revocation is by exact token string. Once revoked, a token stays revoked for
// at least its own claimed lifetime; entries become discardable only after the
// token's natural expiry. Revoke is idempotent.
//
// # Growth bound
//
// Entry lifetimes come from the token's own claimed expiry, supplied by the
// caller as an [ExpiryFunc] (unverified decode — safe here because a forged
// expiry only affects eviction timing, never acceptance). Tokens whose claims
// cannot be parsed fall back to a configurable ceiling TTL so malformed input
// cannot grow the registry without bound.
//
// # Implementations
//
//   - [Memory] — mutex-protected set with an explicit [Memory.Sweep] pass.
//   - [Redis] — per-entry TTL keys; Redis expiry replaces the sweep.
//
// # What this package must NOT do
//
//   - Verify token signatures.
//   - Remove an entry before the token's natural expiry.
//   - Import authkit or token.
package blacklist
