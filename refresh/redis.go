package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore defines a public type used by authkit APIs.
//
// RedisStore instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore describes the newredisstore operation and its observable behavior.
//
// NewRedisStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRedisStore(redisClient redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "akr"
	}
	return &RedisStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *RedisStore) recordKey(tokenID string) string {
	return s.prefix + ":rec:" + tokenID
}

func (s *RedisStore) userKey(userID string) string {
	return s.prefix + ":user:" + userID
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Save(ctx context.Context, record *Record) error {
	encoded, err := encodeRecord(record)
	if err != nil {
		return err
	}

	ttl := time.Until(record.ExpiresAt)
	if ttl <= 0 {
		return errors.New("refresh record already expired")
	}

	if err := s.redis.Set(ctx, s.recordKey(record.TokenID), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	pipe := s.redis.Pipeline()
	pipe.SAdd(ctx, s.userKey(record.UserID), record.TokenID)
	pipe.Expire(ctx, s.userKey(record.UserID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Get(ctx context.Context, tokenID string) (*Record, error) {
	data, err := s.redis.Get(ctx, s.recordKey(tokenID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return decodeRecord(data)
}

// Deactivate describes the deactivate operation and its observable behavior.
//
// Deactivate may return an error when input validation, dependency calls, or security checks fail.
// Deactivate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Deactivate(ctx context.Context, tokenID string) error {
	record, err := s.Get(ctx, tokenID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if !record.Active {
		return nil
	}

	record.Active = false
	encoded, err := encodeRecord(record)
	if err != nil {
		return err
	}

	// Rewrite in place without disturbing the remaining TTL.
	if err := s.redis.Set(ctx, s.recordKey(tokenID), encoded, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// DeactivateAllForUser describes the deactivateallforuser operation and its observable behavior.
//
// DeactivateAllForUser may return an error when input validation, dependency calls, or security checks fail.
// DeactivateAllForUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) DeactivateAllForUser(ctx context.Context, userID string) error {
	tokenIDs, err := s.redis.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	for _, tokenID := range tokenIDs {
		if err := s.Deactivate(ctx, tokenID); err != nil {
			return err
		}
	}

	return nil
}

// SweepExpired prunes user index entries whose records have already been
// evicted by Redis key expiry. Record bodies themselves are TTL-bound and
// never require an explicit delete.
func (s *RedisStore) SweepExpired(ctx context.Context, _ time.Time) (int, error) {
	removed := 0

	var cursor uint64
	for {
		keys, next, err := s.redis.Scan(ctx, cursor, s.prefix+":user:*", 100).Result()
		if err != nil {
			return removed, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}

		for _, userKey := range keys {
			tokenIDs, err := s.redis.SMembers(ctx, userKey).Result()
			if err != nil {
				return removed, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
			}

			for _, tokenID := range tokenIDs {
				exists, err := s.redis.Exists(ctx, s.recordKey(tokenID)).Result()
				if err != nil {
					return removed, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
				}
				if exists == 0 {
					if err := s.redis.SRem(ctx, userKey, tokenID).Err(); err != nil {
						return removed, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
					}
					removed++
				}
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return removed, nil
}
