package authkit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skillswaphq/authkit"
	"github.com/skillswaphq/authkit/directory"
	"github.com/skillswaphq/authkit/refresh"
	"github.com/skillswaphq/authkit/token"
)

func testManagerConfig() authkit.Config {
	cfg := authkit.DefaultConfig()
	cfg.JWT.AccessSecret = []byte("test-access-secret-0123456789abcdef")
	cfg.JWT.RefreshSecret = []byte("test-refresh-secret-0123456789abcdef")
	// Fast argon parameters keep the suite quick while staying above the
	// enforced minimums.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Refresh.SweepInterval = 0
	return cfg
}

func newTestManager(t *testing.T, mutate ...func(*authkit.Config)) *authkit.Manager {
	t.Helper()

	cfg := testManagerConfig()
	for _, fn := range mutate {
		fn(&cfg)
	}

	manager, err := authkit.New().
		WithConfig(cfg).
		WithDirectory(directory.NewMemory()).
		Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	t.Cleanup(manager.Close)

	return manager
}

func register(t *testing.T, m *authkit.Manager, email, pass string) (*authkit.User, *authkit.TokenPair) {
	t.Helper()
	user, pair, err := m.Register(context.Background(), email, pass, authkit.RoleStudent)
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	return user, pair
}

func TestRegisterIssuesTokenPair(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	user, pair := register(t, m, "Alice@Example.com", "correct-horse-battery")

	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.Role != authkit.RoleStudent {
		t.Fatalf("expected default student role, got %q", user.Role)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}
	if pair.TokenType != "Bearer" {
		t.Fatalf("expected Bearer token type, got %q", pair.TokenType)
	}
	if pair.ExpiresIn != int64((15 * time.Minute).Seconds()) {
		t.Fatalf("unexpected ExpiresIn: %d", pair.ExpiresIn)
	}

	identity, err := m.Authenticate(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if identity.UserID != user.ID || identity.Role != authkit.RoleStudent {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	register(t, m, "alice@example.com", "correct-horse-battery")

	_, _, err := m.Register(ctx, "ALICE@example.com", "another-password-1", authkit.RoleStudent)
	if !errors.Is(err, authkit.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	m := newTestManager(t)

	_, _, err := m.Register(context.Background(), "bob@example.com", "short", authkit.RoleStudent)
	if !errors.Is(err, authkit.ErrPasswordPolicy) {
		t.Fatalf("expected ErrPasswordPolicy, got %v", err)
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	m := newTestManager(t)

	_, _, err := m.Register(context.Background(), "bob@example.com", "correct-horse-battery", authkit.Role("superuser"))
	if !errors.Is(err, authkit.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestLoginSuccess(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	register(t, m, "alice@example.com", "correct-horse-battery")

	user, pair, err := m.Login(ctx, "alice@example.com", "correct-horse-battery")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}
	if user.LastLoginAt.IsZero() {
		t.Fatal("expected LastLoginAt to be stamped")
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	register(t, m, "alice@example.com", "correct-horse-battery")

	_, _, unknownErr := m.Login(ctx, "nobody@example.com", "whatever-password")
	_, _, wrongErr := m.Login(ctx, "alice@example.com", "wrong-password-here")

	if !errors.Is(unknownErr, authkit.ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", unknownErr)
	}
	if !errors.Is(wrongErr, authkit.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("errors must be identical: %q vs %q", unknownErr, wrongErr)
	}
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	_, pair := register(t, m, "alice@example.com", "correct-horse-battery")

	next, err := m.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if next.AccessToken == "" {
		t.Fatal("expected new access token")
	}
	if next.RefreshToken != "" {
		t.Fatal("rotation disabled: refresh token must not be reissued")
	}

	if _, err := m.Authenticate(ctx, next.AccessToken); err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}

	// Without rotation the same refresh token stays valid.
	if _, err := m.Refresh(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("second Refresh error: %v", err)
	}
}

func TestRefreshRotation(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, func(cfg *authkit.Config) {
		cfg.Refresh.RotateOnRefresh = true
	})

	_, pair := register(t, m, "alice@example.com", "correct-horse-battery")

	next, err := m.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if next.RefreshToken == "" || next.RefreshToken == pair.RefreshToken {
		t.Fatal("expected a fresh rotated refresh token")
	}

	// The old token's record is deactivated by rotation.
	if _, err := m.Refresh(ctx, pair.RefreshToken); !errors.Is(err, authkit.ErrRefreshTokenInvalid) {
		t.Fatalf("expected rotated-out token to be rejected, got %v", err)
	}

	if _, err := m.Refresh(ctx, next.RefreshToken); err != nil {
		t.Fatalf("rotated token Refresh error: %v", err)
	}
}

func TestRefreshRecordExpiryBoundary(t *testing.T) {
	ctx := context.Background()
	store := refresh.NewMemoryStore()

	manager, err := authkit.New().
		WithConfig(testManagerConfig()).
		WithDirectory(directory.NewMemory()).
		WithRefreshStore(store).
		Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	t.Cleanup(manager.Close)

	_, pair := register(t, manager, "alice@example.com", "correct-horse-battery")

	cfg := testManagerConfig()
	codec, err := token.NewCodec(token.Config{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
	})
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}
	claims := codec.DecodeUnsafe(pair.RefreshToken)
	if claims == nil {
		t.Fatal("expected decodable refresh token")
	}

	record, err := store.Get(ctx, claims.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}

	// One second of validity left: accepted.
	record.ExpiresAt = time.Now().Add(time.Second)
	if err := store.Save(ctx, record); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if _, err := manager.Refresh(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("expected refresh to succeed one second before expiry, got %v", err)
	}

	// Exactly at the boundary: expired.
	record.ExpiresAt = time.Now()
	if err := store.Save(ctx, record); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if _, err := manager.Refresh(ctx, pair.RefreshToken); !errors.Is(err, authkit.ErrRefreshTokenExpired) {
		t.Fatalf("expected ErrRefreshTokenExpired at the exact boundary, got %v", err)
	}

	// One second past: expired.
	record.ExpiresAt = time.Now().Add(-time.Second)
	if err := store.Save(ctx, record); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if _, err := manager.Refresh(ctx, pair.RefreshToken); !errors.Is(err, authkit.ErrRefreshTokenExpired) {
		t.Fatalf("expected ErrRefreshTokenExpired one second past expiry, got %v", err)
	}
}

type deactivateFailStore struct {
	refresh.Store
	fail bool
}

func (s *deactivateFailStore) Deactivate(ctx context.Context, tokenID string) error {
	if s.fail {
		return errors.New("store unavailable")
	}
	return s.Store.Deactivate(ctx, tokenID)
}

func TestRefreshRotationKeepsOldRecordOnFailure(t *testing.T) {
	ctx := context.Background()
	store := &deactivateFailStore{Store: refresh.NewMemoryStore()}

	cfg := testManagerConfig()
	cfg.Refresh.RotateOnRefresh = true
	manager, err := authkit.New().
		WithConfig(cfg).
		WithDirectory(directory.NewMemory()).
		WithRefreshStore(store).
		Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	t.Cleanup(manager.Close)

	_, pair := register(t, manager, "alice@example.com", "correct-horse-battery")

	store.fail = true
	if _, err := manager.Refresh(ctx, pair.RefreshToken); err == nil {
		t.Fatal("expected refresh to fail when deactivation fails")
	}

	// The presented record survived the failed rotation: once the store
	// recovers, the same token still rotates.
	store.fail = false
	next, err := manager.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh after recovery error: %v", err)
	}
	if next.RefreshToken == "" {
		t.Fatal("expected a rotated refresh token after recovery")
	}
}

func TestRefreshRejectsGarbage(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	if _, err := m.Refresh(ctx, ""); !errors.Is(err, authkit.ErrRefreshTokenRequired) {
		t.Fatalf("expected ErrRefreshTokenRequired, got %v", err)
	}
	if _, err := m.Refresh(ctx, "not-a-token"); !errors.Is(err, authkit.ErrRefreshTokenInvalid) {
		t.Fatalf("expected ErrRefreshTokenInvalid, got %v", err)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	_, pair := register(t, m, "alice@example.com", "correct-horse-battery")

	if _, err := m.Refresh(ctx, pair.AccessToken); !errors.Is(err, authkit.ErrRefreshTokenInvalid) {
		t.Fatalf("expected access token to be rejected, got %v", err)
	}
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	_, pair := register(t, m, "alice@example.com", "correct-horse-battery")

	if err := m.Logout(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		t.Fatalf("Logout error: %v", err)
	}

	if _, err := m.Authenticate(ctx, pair.AccessToken); !errors.Is(err, authkit.ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}
	if _, err := m.Refresh(ctx, pair.RefreshToken); !errors.Is(err, authkit.ErrRefreshTokenInvalid) {
		t.Fatalf("expected deactivated refresh token to be rejected, got %v", err)
	}
}

func TestLogoutToleratesBadRefreshToken(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	_, pair := register(t, m, "alice@example.com", "correct-horse-battery")

	// A garbage refresh token must not abort the access-token revocation.
	if err := m.Logout(ctx, pair.AccessToken, "garbage"); err != nil {
		t.Fatalf("Logout error: %v", err)
	}

	if _, err := m.Authenticate(ctx, pair.AccessToken); !errors.Is(err, authkit.ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}
}

func TestLogoutAll(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	_, first := register(t, m, "alice@example.com", "correct-horse-battery")
	_, second, err := m.Login(ctx, "alice@example.com", "correct-horse-battery")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	if err := m.LogoutAll(ctx, second.AccessToken); err != nil {
		t.Fatalf("LogoutAll error: %v", err)
	}

	// Every refresh record for the user is deactivated.
	if _, err := m.Refresh(ctx, first.RefreshToken); !errors.Is(err, authkit.ErrRefreshTokenInvalid) {
		t.Fatalf("expected first session's refresh to be rejected, got %v", err)
	}
	if _, err := m.Refresh(ctx, second.RefreshToken); !errors.Is(err, authkit.ErrRefreshTokenInvalid) {
		t.Fatalf("expected second session's refresh to be rejected, got %v", err)
	}

	// Only the presented access token is in the revocation registry.
	if _, err := m.Authenticate(ctx, second.AccessToken); !errors.Is(err, authkit.ErrTokenRevoked) {
		t.Fatalf("expected presented token to be revoked, got %v", err)
	}
	if _, err := m.Authenticate(ctx, first.AccessToken); err != nil {
		t.Fatalf("first access token should still verify until it expires, got %v", err)
	}
}

func TestLogoutAllRejectsInvalidToken(t *testing.T) {
	m := newTestManager(t)

	if err := m.LogoutAll(context.Background(), "garbage"); !errors.Is(err, authkit.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	_, pair := register(t, m, "alice@example.com", "correct-horse-battery")

	if err := m.ChangePassword(ctx, pair.AccessToken, "correct-horse-battery", "new-password-abcdef"); err != nil {
		t.Fatalf("ChangePassword error: %v", err)
	}

	// Old sessions are dead: access revoked, refresh deactivated.
	if _, err := m.Authenticate(ctx, pair.AccessToken); !errors.Is(err, authkit.ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}
	if _, err := m.Refresh(ctx, pair.RefreshToken); !errors.Is(err, authkit.ErrRefreshTokenInvalid) {
		t.Fatalf("expected deactivated refresh token to be rejected, got %v", err)
	}

	// Old password no longer works, new one does.
	if _, _, err := m.Login(ctx, "alice@example.com", "correct-horse-battery"); !errors.Is(err, authkit.ErrInvalidCredentials) {
		t.Fatalf("expected old password to fail, got %v", err)
	}
	if _, _, err := m.Login(ctx, "alice@example.com", "new-password-abcdef"); err != nil {
		t.Fatalf("Login with new password error: %v", err)
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	_, pair := register(t, m, "alice@example.com", "correct-horse-battery")

	err := m.ChangePassword(ctx, pair.AccessToken, "not-the-password", "new-password-abcdef")
	if !errors.Is(err, authkit.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	// Session stays intact on a failed attempt.
	if _, err := m.Authenticate(ctx, pair.AccessToken); err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
}

func TestChangePasswordRejectsReuse(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	_, pair := register(t, m, "alice@example.com", "correct-horse-battery")

	err := m.ChangePassword(ctx, pair.AccessToken, "correct-horse-battery", "correct-horse-battery")
	if !errors.Is(err, authkit.ErrPasswordReuse) {
		t.Fatalf("expected ErrPasswordReuse, got %v", err)
	}
}

func TestChangePasswordPolicy(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	_, pair := register(t, m, "alice@example.com", "correct-horse-battery")

	err := m.ChangePassword(ctx, pair.AccessToken, "correct-horse-battery", "short")
	if !errors.Is(err, authkit.ErrPasswordPolicy) {
		t.Fatalf("expected ErrPasswordPolicy, got %v", err)
	}
}

func TestAuthenticateErrors(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	if _, err := m.Authenticate(ctx, ""); !errors.Is(err, authkit.ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing, got %v", err)
	}
	if _, err := m.Authenticate(ctx, "garbage"); !errors.Is(err, authkit.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}

	_, pair := register(t, m, "alice@example.com", "correct-horse-battery")
	if _, err := m.Authenticate(ctx, pair.RefreshToken); !errors.Is(err, authkit.ErrTokenInvalid) {
		t.Fatalf("expected refresh token to be rejected as access token, got %v", err)
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, func(cfg *authkit.Config) {
		cfg.JWT.AccessTTL = time.Millisecond
	})

	_, pair := register(t, m, "alice@example.com", "correct-horse-battery")

	time.Sleep(20 * time.Millisecond)

	if _, err := m.Authenticate(ctx, pair.AccessToken); !errors.Is(err, authkit.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestSweepRemovesExpiredRecords(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, func(cfg *authkit.Config) {
		cfg.JWT.RefreshTTL = 50 * time.Millisecond
	})

	register(t, m, "alice@example.com", "correct-horse-battery")
	register(t, m, "bob@example.com", "correct-horse-battery")

	time.Sleep(100 * time.Millisecond)

	records, _, err := m.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep error: %v", err)
	}
	if records != 2 {
		t.Fatalf("expected 2 swept records, got %d", records)
	}

	snap := m.MetricsSnapshot()
	if snap.Counters[authkit.MetricRefreshRecordsSwept] != 2 {
		t.Fatalf("expected sweep counter 2, got %d", snap.Counters[authkit.MetricRefreshRecordsSwept])
	}
}

func TestMetricsCountOperations(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	register(t, m, "alice@example.com", "correct-horse-battery")
	_, _, _ = m.Login(ctx, "alice@example.com", "wrong-password-here")
	_, _, _ = m.Login(ctx, "alice@example.com", "correct-horse-battery")

	snap := m.MetricsSnapshot()
	if snap.Counters[authkit.MetricRegisterSuccess] != 1 {
		t.Fatalf("expected 1 register success, got %d", snap.Counters[authkit.MetricRegisterSuccess])
	}
	if snap.Counters[authkit.MetricLoginFailure] != 1 {
		t.Fatalf("expected 1 login failure, got %d", snap.Counters[authkit.MetricLoginFailure])
	}
	if snap.Counters[authkit.MetricLoginSuccess] != 1 {
		t.Fatalf("expected 1 login success, got %d", snap.Counters[authkit.MetricLoginSuccess])
	}
}

func TestBuilderValidation(t *testing.T) {
	cfg := testManagerConfig()

	if _, err := authkit.New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("expected missing directory to be rejected")
	}

	noSecret := cfg
	noSecret.JWT.AccessSecret = nil
	if _, err := authkit.New().WithConfig(noSecret).WithDirectory(directory.NewMemory()).Build(); err == nil {
		t.Fatal("expected missing secret to be rejected")
	}
}

func TestBuilderRejectsIdenticalSecrets(t *testing.T) {
	cfg := testManagerConfig()
	cfg.JWT.RefreshSecret = append([]byte(nil), cfg.JWT.AccessSecret...)

	if _, err := authkit.New().WithConfig(cfg).WithDirectory(directory.NewMemory()).Build(); err == nil {
		t.Fatal("expected identical secrets to be rejected")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := authkit.New().WithConfig(testManagerConfig()).WithDirectory(directory.NewMemory())

	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	t.Cleanup(m.Close)

	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	cfg := testManagerConfig()
	manager, err := authkit.New().WithConfig(cfg).WithDirectory(directory.NewMemory()).Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	manager.Close()
	manager.Close()
}
