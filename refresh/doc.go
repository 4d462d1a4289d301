// Package refresh implements the authoritative store of issued refresh tokens.
//
// # Record model
//
// Every issued refresh token has one [Record] keyed by its unguessable token id:
// owning user, the signed token string, creation and expiry time, and an active
// flag. Records are deactivated (not deleted) on logout and password change, and
// physically removed only by the periodic expiry sweep.
//
// # Implementations
//
//   - [MemoryStore] — mutex-protected in-process map, used by tests and
//     single-node deployments.
//   - [RedisStore] — Redis-backed records with per-record TTLs and a per-user
//     index set, for deployments that must survive process restarts.
//
// # Architecture boundaries
//
// This package owns record persistence only. Token minting, signature
// verification, and rotation policy are handled by the session manager.
//
// # What this package must NOT do
//
//   - Parse or verify JWTs.
//   - Decide whether a presented token is acceptable — it only reports record state.
//   - Import authkit or token.
package refresh
