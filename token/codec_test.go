package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		AccessSecret:  []byte("access-secret-for-tests-0123456789"),
		RefreshSecret: []byte("refresh-secret-for-tests-0123456789"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "skillswap-auth",
		Audience:      "skillswap-api",
	}
}

func mustCodec(t *testing.T, cfg Config) *Codec {
	t.Helper()
	c, err := NewCodec(cfg)
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}
	return c
}

func TestMintAndVerifyAccess(t *testing.T) {
	c := mustCodec(t, testConfig())

	tok, err := c.MintAccess("user-1", "alice@example.com", "teacher")
	if err != nil {
		t.Fatalf("MintAccess error: %v", err)
	}

	claims, err := c.Verify(tok, KindAccess)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "alice@example.com" || claims.Role != "teacher" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Kind != KindAccess {
		t.Fatalf("expected access kind, got %q", claims.Kind)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("expected subject user-1, got %q", claims.Subject)
	}
}

func TestMintAndVerifyRefresh(t *testing.T) {
	c := mustCodec(t, testConfig())

	tok, tokenID, expiresAt, err := c.MintRefresh("user-2", "bob@example.com")
	if err != nil {
		t.Fatalf("MintRefresh error: %v", err)
	}
	if tokenID == "" {
		t.Fatal("expected non-empty token id")
	}
	if time.Until(expiresAt) < 6*24*time.Hour {
		t.Fatalf("expected ~7d expiry, got %v", time.Until(expiresAt))
	}

	claims, err := c.Verify(tok, KindRefresh)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.ID != tokenID {
		t.Fatalf("expected jti %q, got %q", tokenID, claims.ID)
	}
	if claims.Role != "" {
		t.Fatalf("refresh token must not carry a role, got %q", claims.Role)
	}
}

func TestVerifyRejectsWrongKind(t *testing.T) {
	c := mustCodec(t, testConfig())

	access, err := c.MintAccess("user-1", "a@example.com", "student")
	if err != nil {
		t.Fatalf("MintAccess error: %v", err)
	}
	refresh, _, _, err := c.MintRefresh("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("MintRefresh error: %v", err)
	}

	// Cross-kind verification fails at signature check already because the
	// secrets differ per kind.
	if _, err := c.Verify(access, KindRefresh); err == nil {
		t.Fatal("expected access token to fail refresh verification")
	}
	if _, err := c.Verify(refresh, KindAccess); err == nil {
		t.Fatal("expected refresh token to fail access verification")
	}
}

func TestVerifyKindClaimMismatch(t *testing.T) {
	cfg := testConfig()
	c := mustCodec(t, cfg)

	// Same-secret codec signs refresh-kind claims with the access secret, so
	// only the kind claim check can reject it.
	forged := mustCodec(t, Config{
		AccessSecret:  cfg.RefreshSecret,
		RefreshSecret: cfg.AccessSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
		Issuer:        cfg.Issuer,
		Audience:      cfg.Audience,
	})

	tok, _, _, err := forged.MintRefresh("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("MintRefresh error: %v", err)
	}

	if _, err := c.Verify(tok, KindAccess); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("expected ErrWrongKind, got %v", err)
	}
}

func TestVerifyMalformedToken(t *testing.T) {
	c := mustCodec(t, testConfig())

	for _, tok := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		if _, err := c.Verify(tok, KindAccess); !errors.Is(err, ErrMalformed) {
			t.Fatalf("token %q: expected ErrMalformed, got %v", tok, err)
		}
	}
}

func TestVerifyTamperedSignature(t *testing.T) {
	c := mustCodec(t, testConfig())

	tok, err := c.MintAccess("user-1", "a@example.com", "student")
	if err != nil {
		t.Fatalf("MintAccess error: %v", err)
	}

	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", tok)
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	if _, err := c.Verify(tampered, KindAccess); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTTL = time.Millisecond
	c := mustCodec(t, cfg)

	tok, err := c.MintAccess("user-1", "a@example.com", "student")
	if err != nil {
		t.Fatalf("MintAccess error: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	if _, err := c.Verify(tok, KindAccess); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestVerifyExpiryBoundary(t *testing.T) {
	cfg := testConfig()
	c := mustCodec(t, cfg)

	// Pin issuance to a whole second so the exp claim carries no truncation
	// skew, then walk verification time across the boundary.
	issued := time.Unix(1700000000, 0)
	c.now = func() time.Time { return issued }

	tok, err := c.MintAccess("user-1", "a@example.com", "student")
	if err != nil {
		t.Fatalf("MintAccess error: %v", err)
	}
	expiry := issued.Add(cfg.AccessTTL)

	c.now = func() time.Time { return expiry.Add(-time.Second) }
	if _, err := c.Verify(tok, KindAccess); err != nil {
		t.Fatalf("expected token valid one second before expiry, got %v", err)
	}

	c.now = func() time.Time { return expiry }
	if _, err := c.Verify(tok, KindAccess); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected token expired at the exact boundary, got %v", err)
	}

	c.now = func() time.Time { return expiry.Add(time.Second) }
	if _, err := c.Verify(tok, KindAccess); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected token expired one second after expiry, got %v", err)
	}
}

func TestVerifyExpiredWithinLeeway(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTTL = time.Millisecond
	cfg.Leeway = time.Minute
	c := mustCodec(t, cfg)

	tok, err := c.MintAccess("user-1", "a@example.com", "student")
	if err != nil {
		t.Fatalf("MintAccess error: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	if _, err := c.Verify(tok, KindAccess); err != nil {
		t.Fatalf("expected leeway to accept recently expired token, got %v", err)
	}
}

func TestVerifyWrongIssuer(t *testing.T) {
	cfg := testConfig()
	other := cfg
	other.Issuer = "someone-else"
	minter := mustCodec(t, other)
	verifier := mustCodec(t, cfg)

	tok, err := minter.MintAccess("user-1", "a@example.com", "student")
	if err != nil {
		t.Fatalf("MintAccess error: %v", err)
	}

	if _, err := verifier.Verify(tok, KindAccess); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for issuer mismatch, got %v", err)
	}
}

func TestDecodeUnsafe(t *testing.T) {
	c := mustCodec(t, testConfig())

	tok, err := c.MintAccess("user-9", "x@example.com", "admin")
	if err != nil {
		t.Fatalf("MintAccess error: %v", err)
	}

	claims := c.DecodeUnsafe(tok)
	if claims == nil {
		t.Fatal("expected claims from DecodeUnsafe")
	}
	if claims.UserID != "user-9" {
		t.Fatalf("unexpected user id: %q", claims.UserID)
	}

	if c.DecodeUnsafe("not-a-token") != nil {
		t.Fatal("expected nil claims for garbage input")
	}
}

func TestExpiryOf(t *testing.T) {
	c := mustCodec(t, testConfig())

	tok, err := c.MintAccess("user-1", "a@example.com", "student")
	if err != nil {
		t.Fatalf("MintAccess error: %v", err)
	}

	exp, ok := c.ExpiryOf(tok)
	if !ok {
		t.Fatal("expected expiry to be reported")
	}
	if remaining := time.Until(exp); remaining <= 0 || remaining > 15*time.Minute {
		t.Fatalf("unexpected expiry distance: %v", remaining)
	}

	if _, ok := c.ExpiryOf("garbage"); ok {
		t.Fatal("expected no expiry for garbage input")
	}
}

func TestNewCodecValidation(t *testing.T) {
	base := testConfig()

	same := base
	same.RefreshSecret = same.AccessSecret
	if _, err := NewCodec(same); err == nil {
		t.Fatal("expected identical secrets to be rejected")
	}

	empty := base
	empty.AccessSecret = nil
	if _, err := NewCodec(empty); err == nil {
		t.Fatal("expected missing access secret to be rejected")
	}

	badTTL := base
	badTTL.AccessTTL = 0
	if _, err := NewCodec(badTTL); err == nil {
		t.Fatal("expected zero TTL to be rejected")
	}

	badLeeway := base
	badLeeway.Leeway = 3 * time.Minute
	if _, err := NewCodec(badLeeway); err == nil {
		t.Fatal("expected oversized leeway to be rejected")
	}

	noIssuer := base
	noIssuer.Issuer = ""
	if _, err := NewCodec(noIssuer); err == nil {
		t.Fatal("expected missing issuer to be rejected")
	}
}
