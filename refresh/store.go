package refresh

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is an exported constant or variable used by the authentication engine.
	ErrNotFound = errors.New("refresh record not found")
	// ErrRedisUnavailable is an exported constant or variable used by the authentication engine.
	ErrRedisUnavailable = errors.New("refresh redis unavailable")
)

// Record defines a public type used by authkit APIs.
//
// Record instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Record struct {
	TokenID   string
	UserID    string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
	Active    bool
}

// Store is the persistence boundary for refresh token records. All
// implementations must be safe for concurrent use.
type Store interface {
	// Save persists a record keyed by its token id, overwriting any
	// previous record with the same id.
	Save(ctx context.Context, record *Record) error

	// Get returns the record for the token id, or ErrNotFound.
	Get(ctx context.Context, tokenID string) (*Record, error)

	// Deactivate clears the active flag. It is idempotent and a no-op for
	// absent records.
	Deactivate(ctx context.Context, tokenID string) error

	// DeactivateAllForUser clears the active flag on every record owned by
	// the user.
	DeactivateAllForUser(ctx context.Context, userID string) error

	// SweepExpired hard-deletes every record whose expiry is strictly
	// before now, regardless of the active flag, and returns the number of
	// records removed.
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}
