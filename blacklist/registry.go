package blacklist

import (
	"context"
	"errors"
	"time"
)

// ErrRedisUnavailable is an exported constant or variable used by the authentication engine.
var ErrRedisUnavailable = errors.New("blacklist redis unavailable")

// ExpiryFunc reports the claimed expiry of a token string without verifying
// it. The second return is false when the claims are unparseable.
type ExpiryFunc func(token string) (time.Time, bool)

// Registry is the revocation set shared by the session manager and the
// authorization guard. All implementations must be safe for concurrent use,
// and a Revoke that has returned must be visible to every subsequent
// IsRevoked call.
type Registry interface {
	// Revoke adds the token string to the set. Idempotent.
	Revoke(ctx context.Context, token string) error

	// IsRevoked reports whether the token string is in the set.
	IsRevoked(ctx context.Context, token string) (bool, error)

	// Sweep discards entries whose retention deadline is strictly before
	// now and returns the number of entries removed. Backends with native
	// key expiry may implement this as a no-op.
	Sweep(ctx context.Context, now time.Time) (int, error)
}
