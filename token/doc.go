// Package token mints and verifies the HS256 access and refresh tokens used
// by the session manager.
//
// Access and refresh tokens are signed with separate secrets; a token of one
// kind can never verify as the other. Every token carries a kind claim that
// is checked after signature verification, and refresh tokens additionally
// carry a unique jti used as the refresh-record key.
//
// # Architecture boundaries
//
// This package owns claim layout, signing, and verification only. Revocation
// and refresh-record state live in the blacklist and refresh packages.
//
// # What this package must NOT do
//
//   - Accept any signing algorithm other than HS256.
//   - Import any other authkit package.
//   - Treat [Codec.DecodeUnsafe] output as authenticated.
package token
