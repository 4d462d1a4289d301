package blacklist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis defines a public type used by authkit APIs.
//
// Redis instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Redis struct {
	redis       redis.UniversalClient
	prefix      string
	expiryOf    ExpiryFunc
	fallbackTTL time.Duration
}

// NewRedis describes the newredis operation and its observable behavior.
//
// NewRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRedis(redisClient redis.UniversalClient, prefix string, expiryOf ExpiryFunc, fallbackTTL time.Duration) *Redis {
	if prefix == "" {
		prefix = "akb"
	}
	if fallbackTTL <= 0 {
		fallbackTTL = 24 * time.Hour
	}
	return &Redis{
		redis:       redisClient,
		prefix:      prefix,
		expiryOf:    expiryOf,
		fallbackTTL: fallbackTTL,
	}
}

// Token strings are JWT-sized; keys store a digest instead.
func (r *Redis) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return r.prefix + ":bl:" + hex.EncodeToString(sum[:])
}

// Revoke describes the revoke operation and its observable behavior.
//
// Revoke may return an error when input validation, dependency calls, or security checks fail.
// Revoke does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Redis) Revoke(ctx context.Context, token string) error {
	ttl := r.fallbackTTL
	if r.expiryOf != nil {
		if expiresAt, ok := r.expiryOf(token); ok {
			ttl = time.Until(expiresAt)
		}
	}
	if ttl <= 0 {
		// Already past natural expiry; keep a short entry so a
		// revoke-then-check race still resolves to revoked.
		ttl = time.Minute
	}

	if err := r.redis.Set(ctx, r.key(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// IsRevoked describes the isrevoked operation and its observable behavior.
//
// IsRevoked may return an error when input validation, dependency calls, or security checks fail.
// IsRevoked does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Redis) IsRevoked(ctx context.Context, token string) (bool, error) {
	exists, err := r.redis.Exists(ctx, r.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return exists > 0, nil
}

// Sweep is a no-op: Redis key expiry discards entries at their retention
// deadline without an explicit pass.
func (r *Redis) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}
