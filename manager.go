package authkit

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skillswaphq/authkit/blacklist"
	"github.com/skillswaphq/authkit/internal/audit"
	"github.com/skillswaphq/authkit/password"
	"github.com/skillswaphq/authkit/refresh"
	"github.com/skillswaphq/authkit/token"
)

// Manager orchestrates the session lifecycle: registration, login, refresh,
// logout, logout-everywhere, and password change. It composes the token
// codec, the credential hasher, the refresh token store, the revocation
// registry, and the external [UserDirectory].
//
// Manager methods are safe for concurrent use after [Builder.Build].
type Manager struct {
	config    Config
	codec     *token.Codec
	hasher    *password.Argon2
	store     refresh.Store
	registry  blacklist.Registry
	directory UserDirectory
	audit     *audit.Dispatcher
	metrics   *Metrics

	// dummyHash absorbs the verification cost for unknown emails so a
	// login probe cannot distinguish "no such user" from "wrong password"
	// by response time.
	dummyHash string

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Register describes the register operation and its observable behavior.
//
// Register may return an error when input validation, dependency calls, or security checks fail.
// Register does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Register(ctx context.Context, email, plaintext string, role Role) (*User, *TokenPair, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, nil, ErrInvalidCredentials
	}

	if role == "" {
		role = RoleStudent
	}
	if !role.Valid() {
		return nil, nil, ErrInvalidRole
	}

	if len(plaintext) < m.config.Password.MinLength {
		return nil, nil, ErrPasswordPolicy
	}

	_, err := m.directory.FindByEmail(ctx, email)
	switch {
	case err == nil:
		m.metrics.Inc(MetricRegisterDuplicate)
		m.emitAudit(ctx, AuditRegister, "", "", false, ErrUserExists, map[string]string{"email": email})
		return nil, nil, ErrUserExists
	case !errors.Is(err, ErrUserNotFound):
		return nil, nil, err
	}

	hash, err := m.hasher.Hash(plaintext)
	if err != nil {
		return nil, nil, ErrPasswordPolicy
	}

	now := time.Now()
	user, err := m.directory.Create(ctx, &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, nil, err
	}

	pair, tokenID, err := m.issuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	m.metrics.Inc(MetricRegisterSuccess)
	m.emitAudit(ctx, AuditRegister, user.ID, tokenID, true, nil, nil)

	return user, pair, nil
}

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Login(ctx context.Context, email, plaintext string) (*User, *TokenPair, error) {
	email = normalizeEmail(email)

	user, err := m.directory.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Burn the same hashing cost as the wrong-password path.
			m.hasher.Verify(plaintext, m.dummyHash)
			m.metrics.Inc(MetricLoginFailure)
			m.emitAudit(ctx, AuditLogin, "", "", false, ErrInvalidCredentials, map[string]string{"email": email})
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !m.hasher.Verify(plaintext, user.PasswordHash) {
		m.metrics.Inc(MetricLoginFailure)
		m.emitAudit(ctx, AuditLogin, user.ID, "", false, ErrInvalidCredentials, nil)
		return nil, nil, ErrInvalidCredentials
	}

	if m.config.Password.UpgradeOnLogin {
		if needs, err := m.hasher.NeedsUpgrade(user.PasswordHash); err == nil && needs {
			if rehashed, err := m.hasher.Hash(plaintext); err == nil {
				user.PasswordHash = rehashed
			}
		}
	}

	user.LastLoginAt = time.Now()
	user.UpdatedAt = user.LastLoginAt
	if updated, err := m.directory.Update(ctx, user); err == nil {
		user = updated
	}

	pair, tokenID, err := m.issuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	m.metrics.Inc(MetricLoginSuccess)
	m.emitAudit(ctx, AuditLogin, user.ID, tokenID, true, nil, nil)

	return user, pair, nil
}

// Refresh validates a presented refresh token against the store and issues a
// new access token. The refresh record itself stays active unless
// RotateOnRefresh is configured, in which case the old record is deactivated
// and the returned pair carries a replacement refresh token.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrRefreshTokenRequired
	}

	claims, err := m.codec.Verify(refreshToken, token.KindRefresh)
	if err != nil {
		m.metrics.Inc(MetricRefreshFailure)
		if errors.Is(err, token.ErrExpired) {
			return nil, ErrRefreshTokenExpired
		}
		return nil, ErrRefreshTokenInvalid
	}

	record, err := m.store.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, refresh.ErrNotFound) {
			m.metrics.Inc(MetricRefreshFailure)
			return nil, ErrRefreshTokenInvalid
		}
		return nil, err
	}

	if !record.Active || record.Token != refreshToken {
		m.metrics.Inc(MetricRefreshFailure)
		m.emitAudit(ctx, AuditRefresh, record.UserID, record.TokenID, false, ErrRefreshTokenInvalid, nil)
		return nil, ErrRefreshTokenInvalid
	}
	if !time.Now().Before(record.ExpiresAt) {
		m.metrics.Inc(MetricRefreshFailure)
		return nil, ErrRefreshTokenExpired
	}

	user, err := m.directory.FindByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			m.metrics.Inc(MetricRefreshFailure)
			return nil, ErrRefreshTokenInvalid
		}
		return nil, err
	}

	access, err := m.codec.MintAccess(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	pair := &TokenPair{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(m.codec.AccessTTL().Seconds()),
	}

	activeTokenID := record.TokenID
	if m.config.Refresh.RotateOnRefresh {
		rotated, rotatedID, err := m.rotateRecord(ctx, user, record)
		if err != nil {
			return nil, err
		}
		pair.RefreshToken = rotated
		activeTokenID = rotatedID
	}

	m.metrics.Inc(MetricRefreshSuccess)
	m.emitAudit(ctx, AuditRefresh, user.ID, activeTokenID, true, nil, nil)

	return pair, nil
}

// Logout revokes the presented access token and deactivates the associated
// refresh record. A refresh token that fails verification does not abort the
// access-token revocation: the refresh side is already unusable, so its
// failure is recorded and swallowed.
func (m *Manager) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if err := m.registry.Revoke(ctx, accessToken); err != nil {
		return err
	}
	m.metrics.Inc(MetricTokenRevoked)

	userID := ""
	if claims := m.codec.DecodeUnsafe(accessToken); claims != nil {
		userID = claims.UserID
	}

	var refreshErr error
	tokenID := ""
	if refreshToken != "" {
		claims, err := m.codec.Verify(refreshToken, token.KindRefresh)
		if err != nil {
			refreshErr = ErrRefreshTokenInvalid
		} else {
			tokenID = claims.ID
			refreshErr = m.store.Deactivate(ctx, claims.ID)
		}
	}

	m.metrics.Inc(MetricLogout)
	m.emitAudit(ctx, AuditLogout, userID, tokenID, true, refreshErr, nil)

	return nil
}

// LogoutAll revokes the presented access token and deactivates every refresh
// record owned by its subject.
func (m *Manager) LogoutAll(ctx context.Context, accessToken string) error {
	claims, err := m.codec.Verify(accessToken, token.KindAccess)
	if err != nil {
		return m.mapTokenError(err)
	}

	if err := m.registry.Revoke(ctx, accessToken); err != nil {
		return err
	}
	m.metrics.Inc(MetricTokenRevoked)

	if err := m.store.DeactivateAllForUser(ctx, claims.UserID); err != nil {
		return err
	}

	m.metrics.Inc(MetricLogoutAll)
	m.emitAudit(ctx, AuditLogoutAll, claims.UserID, "", true, nil, nil)

	return nil
}

// ChangePassword verifies the current password, stores the new hash, and
// invalidates every outstanding session: the presented access token is
// revoked and all refresh records are deactivated.
func (m *Manager) ChangePassword(ctx context.Context, accessToken, current, next string) error {
	claims, err := m.codec.Verify(accessToken, token.KindAccess)
	if err != nil {
		return m.mapTokenError(err)
	}

	if len(next) < m.config.Password.MinLength {
		return ErrPasswordPolicy
	}

	user, err := m.directory.FindByID(ctx, claims.UserID)
	if err != nil {
		return err
	}

	if !m.hasher.Verify(current, user.PasswordHash) {
		m.metrics.Inc(MetricPasswordChangeInvalidOld)
		m.emitAudit(ctx, AuditPasswordChange, user.ID, "", false, ErrInvalidCredentials, nil)
		return ErrInvalidCredentials
	}

	if m.hasher.Verify(next, user.PasswordHash) {
		m.metrics.Inc(MetricPasswordChangeReuseRejected)
		return ErrPasswordReuse
	}

	hash, err := m.hasher.Hash(next)
	if err != nil {
		return ErrPasswordPolicy
	}

	user.PasswordHash = hash
	user.UpdatedAt = time.Now()
	if _, err := m.directory.Update(ctx, user); err != nil {
		return err
	}

	if err := m.registry.Revoke(ctx, accessToken); err != nil {
		return err
	}
	m.metrics.Inc(MetricTokenRevoked)

	if err := m.store.DeactivateAllForUser(ctx, user.ID); err != nil {
		return err
	}

	m.metrics.Inc(MetricPasswordChangeSuccess)
	m.emitAudit(ctx, AuditPasswordChange, user.ID, "", true, nil, nil)

	return nil
}

// Authenticate verifies a presented access token: signature, issuer and
// audience, kind, expiry, and absence from the revocation registry. On
// success it returns the embedded identity. It never mutates the registry or
// the store.
func (m *Manager) Authenticate(ctx context.Context, accessToken string) (*Identity, error) {
	start := time.Now()

	if accessToken == "" {
		return nil, ErrTokenMissing
	}

	claims, err := m.codec.Verify(accessToken, token.KindAccess)
	if err != nil {
		m.metrics.Inc(MetricTokenRejected)
		return nil, m.mapTokenError(err)
	}

	revoked, err := m.registry.IsRevoked(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if revoked {
		m.metrics.Inc(MetricTokenRejected)
		return nil, ErrTokenRevoked
	}

	m.metrics.Observe(MetricAuthenticateLatency, time.Since(start))

	return &Identity{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   Role(claims.Role),
	}, nil
}

// UserByID resolves a user through the directory. Used by callers that hold
// an authenticated identity and need the full account record.
func (m *Manager) UserByID(ctx context.Context, id string) (*User, error) {
	return m.directory.FindByID(ctx, id)
}

// Sweep runs one cleanup pass: expired refresh records are hard-deleted and
// revocation entries past their retention deadline are discarded. It is
// called on the configured interval and may be invoked directly by tests or
// operators.
func (m *Manager) Sweep(ctx context.Context) (records int, entries int, err error) {
	now := time.Now()

	records, err = m.store.SweepExpired(ctx, now)
	if err != nil {
		return records, 0, err
	}
	m.metrics.Add(MetricRefreshRecordsSwept, uint64(records))

	entries, err = m.registry.Sweep(ctx, now)
	if err != nil {
		return records, entries, err
	}
	m.metrics.Add(MetricBlacklistEntriesSwept, uint64(entries))

	if records > 0 || entries > 0 {
		m.emitAudit(ctx, AuditSweep, "", "", true, nil, map[string]string{
			"records": strconv.Itoa(records),
			"entries": strconv.Itoa(entries),
		})
	}

	return records, entries, nil
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	return m.metrics.Snapshot()
}

// AuditDropped reports audit events dropped under dispatcher backpressure.
func (m *Manager) AuditDropped() uint64 {
	return m.audit.Dropped()
}

// AccessTTL describes the accessttl operation and its observable behavior.
//
// AccessTTL does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) AccessTTL() time.Duration {
	return m.codec.AccessTTL()
}

// Close stops the background sweeper and drains the audit dispatcher. A
// closed Manager must not be reused.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		m.wg.Wait()
		m.audit.Close()
	})
}

func (m *Manager) issuePair(ctx context.Context, user *User) (*TokenPair, string, error) {
	access, err := m.codec.MintAccess(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, "", err
	}

	refreshToken, tokenID, expiresAt, err := m.codec.MintRefresh(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}

	if err := m.store.Save(ctx, &refresh.Record{
		TokenID:   tokenID,
		UserID:    user.ID,
		Token:     refreshToken,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
		Active:    true,
	}); err != nil {
		return nil, "", err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(m.codec.AccessTTL().Seconds()),
	}, tokenID, nil
}

// rotateRecord saves the replacement before deactivating the presented
// record, so a failure mid-rotation never leaves the user without an active
// refresh token: if deactivation fails the replacement is withdrawn and the
// old record stays usable.
func (m *Manager) rotateRecord(ctx context.Context, user *User, old *refresh.Record) (string, string, error) {
	rotated, tokenID, expiresAt, err := m.codec.MintRefresh(user.ID, user.Email)
	if err != nil {
		return "", "", err
	}

	if err := m.store.Save(ctx, &refresh.Record{
		TokenID:   tokenID,
		UserID:    user.ID,
		Token:     rotated,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
		Active:    true,
	}); err != nil {
		return "", "", err
	}

	if err := m.store.Deactivate(ctx, old.TokenID); err != nil {
		_ = m.store.Deactivate(ctx, tokenID)
		return "", "", err
	}

	return rotated, tokenID, nil
}

func (m *Manager) mapTokenError(err error) error {
	switch {
	case errors.Is(err, token.ErrMalformed):
		return ErrTokenMalformed
	case errors.Is(err, token.ErrExpired):
		return ErrTokenExpired
	case errors.Is(err, token.ErrWrongKind):
		return ErrWrongTokenKind
	default:
		return ErrTokenInvalid
	}
}

func (m *Manager) runSweeper(interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _, _ = m.Sweep(context.Background())
		case <-m.done:
			return
		}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
