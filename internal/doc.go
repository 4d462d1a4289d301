// Package internal groups helpers that are intentionally private to authkit.
//
// # Sub-packages
//
//   - audit — async event dispatch (Dispatcher + Sink plumbing)
//   - config — environment-driven configuration for the authd binary
//
// # What this package must NOT do
//
//   - Export types that appear in the public authkit API.
//   - Be imported by any package outside the authkit module.
package internal
