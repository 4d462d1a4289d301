package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind defines a public type used by authkit APIs.
//
// Kind instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Kind string

const (
	// KindAccess is an exported constant or variable used by the authentication engine.
	KindAccess Kind = "access"
	// KindRefresh is an exported constant or variable used by the authentication engine.
	KindRefresh Kind = "refresh"
)

var (
	// ErrMalformed is an exported constant or variable used by the authentication engine.
	ErrMalformed = errors.New("token malformed")
	// ErrExpired is an exported constant or variable used by the authentication engine.
	ErrExpired = errors.New("token expired")
	// ErrWrongKind is an exported constant or variable used by the authentication engine.
	ErrWrongKind = errors.New("wrong token kind")
	// ErrInvalid is an exported constant or variable used by the authentication engine.
	ErrInvalid = errors.New("invalid token")
)

// Config defines a public type used by authkit APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

// Claims defines a public type used by authkit APIs.
//
// Claims instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
	Kind   Kind   `json:"kind"`
	jwt.RegisteredClaims
}

// Codec defines a public type used by authkit APIs.
//
// Codec instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Codec struct {
	config Config

	// now is the shared clock for issuance and verification; expiry
	// comparisons never mix clock sources. Overridable in tests.
	now func() time.Time
}

// NewCodec describes the newcodec operation and its observable behavior.
//
// NewCodec may return an error when input validation, dependency calls, or security checks fail.
// NewCodec does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.AccessSecret) == 0 {
		return nil, errors.New("access secret required")
	}
	if len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("refresh secret required")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errors.New("issuer and audience required")
	}

	return &Codec{config: cfg, now: time.Now}, nil
}

// MintAccess describes the mintaccess operation and its observable behavior.
//
// MintAccess may return an error when input validation, dependency calls, or security checks fail.
// MintAccess does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Codec) MintAccess(userID, email, role string) (string, error) {
	now := c.now()

	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Kind:   KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    c.config.Issuer,
			Audience:  jwt.ClaimStrings{c.config.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.config.AccessTTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return t.SignedString(c.config.AccessSecret)
}

// MintRefresh describes the mintrefresh operation and its observable behavior.
//
// MintRefresh may return an error when input validation, dependency calls, or security checks fail.
// MintRefresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Codec) MintRefresh(userID, email string) (token string, tokenID string, expiresAt time.Time, err error) {
	now := c.now()
	tokenID = uuid.NewString()
	expiresAt = now.Add(c.config.RefreshTTL)

	claims := Claims{
		UserID: userID,
		Email:  email,
		Kind:   KindRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   userID,
			Issuer:    c.config.Issuer,
			Audience:  jwt.ClaimStrings{c.config.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	token, err = t.SignedString(c.config.RefreshSecret)
	if err != nil {
		return "", "", time.Time{}, err
	}

	return token, tokenID, expiresAt, nil
}

// Verify describes the verify operation and its observable behavior.
//
// Verify may return an error when input validation, dependency calls, or security checks fail.
// Verify does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Codec) Verify(tokenStr string, kind Kind) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.config.Issuer),
		jwt.WithAudience(c.config.Audience),
		jwt.WithTimeFunc(c.now),
	}
	if c.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(c.config.Leeway))
	}

	parser := jwt.NewParser(options...)
	t, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return c.secretFor(kind), nil
	})
	if err != nil {
		return nil, mapParseError(err)
	}

	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, ErrInvalid
	}
	if claims.Kind != kind {
		return nil, ErrWrongKind
	}

	return claims, nil
}

// DecodeUnsafe decodes a token's claims without verifying the signature.
// The result must never drive an authorization decision.
func (c *Codec) DecodeUnsafe(tokenStr string) *Claims {
	parser := jwt.NewParser()
	t, _, err := parser.ParseUnverified(tokenStr, &Claims{})
	if err != nil {
		return nil
	}

	claims, ok := t.Claims.(*Claims)
	if !ok {
		return nil
	}

	return claims
}

// ExpiryOf reports the claimed expiry of a token without verifying its
// signature. The second return is false when the claims are unparseable.
func (c *Codec) ExpiryOf(tokenStr string) (time.Time, bool) {
	claims := c.DecodeUnsafe(tokenStr)
	if claims == nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}

	return claims.ExpiresAt.Time, true
}

// AccessTTL describes the accessttl operation and its observable behavior.
//
// AccessTTL does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Codec) AccessTTL() time.Duration {
	return c.config.AccessTTL
}

// RefreshTTL describes the refreshttl operation and its observable behavior.
//
// RefreshTTL does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Codec) RefreshTTL() time.Duration {
	return c.config.RefreshTTL
}

func (c *Codec) secretFor(kind Kind) []byte {
	if kind == KindRefresh {
		return c.config.RefreshSecret
	}
	return c.config.AccessSecret
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return ErrInvalid
	}
}
