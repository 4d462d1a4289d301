// Package directory provides the in-memory [authkit.UserDirectory]
// implementation used by tests and single-node deployments.
//
// # Architecture boundaries
//
// The session manager never touches user storage directly; everything crosses
// the UserDirectory interface. Durable deployments substitute their own
// database-backed implementation with the same contract: ErrUserNotFound for
// missing users, ErrUserExists for duplicate emails, case-insensitive email
// matching.
//
// # What this package must NOT do
//
//   - Hash passwords or inspect password hashes.
//   - Hand out pointers into its own maps — callers always receive copies.
package directory
