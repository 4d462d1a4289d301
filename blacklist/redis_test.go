package blacklist

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T, expiryOf ExpiryFunc) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run error: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedis(client, "testb", expiryOf, time.Hour), mr
}

func TestRedisRevokeAndCheck(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRedis(t, nil)

	revoked, err := r.IsRevoked(ctx, "tok-1")
	if err != nil {
		t.Fatalf("IsRevoked error: %v", err)
	}
	if revoked {
		t.Fatal("expected unknown token to be unrevoked")
	}

	if err := r.Revoke(ctx, "tok-1"); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}

	revoked, err = r.IsRevoked(ctx, "tok-1")
	if err != nil {
		t.Fatalf("IsRevoked error: %v", err)
	}
	if !revoked {
		t.Fatal("expected revoked token to be reported")
	}
}

func TestRedisEntryExpiresWithTokenExpiry(t *testing.T) {
	ctx := context.Background()

	exp := time.Now().Add(time.Minute)
	r, mr := newTestRedis(t, func(string) (time.Time, bool) {
		return exp, true
	})

	if err := r.Revoke(ctx, "tok-1"); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	revoked, err := r.IsRevoked(ctx, "tok-1")
	if err != nil {
		t.Fatalf("IsRevoked error: %v", err)
	}
	if revoked {
		t.Fatal("expected entry to be discarded after the token's natural expiry")
	}
}

func TestRedisRevokeAlreadyExpiredTokenKeepsShortEntry(t *testing.T) {
	ctx := context.Background()

	r, _ := newTestRedis(t, func(string) (time.Time, bool) {
		return time.Now().Add(-time.Minute), true
	})

	if err := r.Revoke(ctx, "stale"); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}

	revoked, err := r.IsRevoked(ctx, "stale")
	if err != nil {
		t.Fatalf("IsRevoked error: %v", err)
	}
	if !revoked {
		t.Fatal("expected short-lived entry for already expired token")
	}
}

func TestRedisFallbackTTLForUnparseableToken(t *testing.T) {
	ctx := context.Background()

	r, mr := newTestRedis(t, func(string) (time.Time, bool) {
		return time.Time{}, false
	})

	if err := r.Revoke(ctx, "opaque"); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}

	mr.FastForward(30 * time.Minute)
	revoked, err := r.IsRevoked(ctx, "opaque")
	if err != nil {
		t.Fatalf("IsRevoked error: %v", err)
	}
	if !revoked {
		t.Fatal("expected entry to live for the fallback window")
	}

	mr.FastForward(time.Hour)
	revoked, err = r.IsRevoked(ctx, "opaque")
	if err != nil {
		t.Fatalf("IsRevoked error: %v", err)
	}
	if revoked {
		t.Fatal("expected entry to be discarded after the fallback window")
	}
}

func TestRedisSweepIsNoOp(t *testing.T) {
	r, _ := newTestRedis(t, nil)

	removed, err := r.Sweep(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Sweep error: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected no-op sweep, got %d", removed)
	}
}
