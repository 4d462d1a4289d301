package authkit

import "errors"

var (
	// ErrTokenMissing is an exported constant or variable used by the authentication engine.
	ErrTokenMissing = errors.New("access token required")
	// ErrTokenMalformed is an exported constant or variable used by the authentication engine.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenExpired is an exported constant or variable used by the authentication engine.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenRevoked is an exported constant or variable used by the authentication engine.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrWrongTokenKind is an exported constant or variable used by the authentication engine.
	ErrWrongTokenKind = errors.New("wrong token kind")
	// ErrTokenInvalid is an exported constant or variable used by the authentication engine.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrUserNotFound is an exported constant or variable used by the authentication engine.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is an exported constant or variable used by the authentication engine.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials is an exported constant or variable used by the authentication engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRole is an exported constant or variable used by the authentication engine.
	ErrInvalidRole = errors.New("invalid role")
	// ErrPasswordPolicy is an exported constant or variable used by the authentication engine.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrPasswordReuse is an exported constant or variable used by the authentication engine.
	ErrPasswordReuse = errors.New("new password must be different from current password")
	// ErrRefreshTokenRequired is an exported constant or variable used by the authentication engine.
	ErrRefreshTokenRequired = errors.New("refresh token required")
	// ErrRefreshTokenInvalid is an exported constant or variable used by the authentication engine.
	ErrRefreshTokenInvalid = errors.New("invalid refresh token")
	// ErrRefreshTokenExpired is an exported constant or variable used by the authentication engine.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	// ErrAuthenticationRequired is an exported constant or variable used by the authentication engine.
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrInsufficientPermissions is an exported constant or variable used by the authentication engine.
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	// ErrManagerClosed is an exported constant or variable used by the authentication engine.
	ErrManagerClosed = errors.New("manager closed")
)
