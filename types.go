package authkit

import (
	"context"
	"time"
)

// Role is the closed role enumeration checked by [RequireRole] gates. Roles
// outside this set are rejected at registration time.
type Role string

const (
	// RoleStudent is an exported constant or variable used by the authentication engine.
	RoleStudent Role = "student"
	// RoleTeacher is an exported constant or variable used by the authentication engine.
	RoleTeacher Role = "teacher"
	// RoleAdmin is an exported constant or variable used by the authentication engine.
	RoleAdmin Role = "admin"
)

// ParseRole describes the parserole operation and its observable behavior.
//
// ParseRole may return an error when input validation, dependency calls, or security checks fail.
// ParseRole does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.Valid() {
		return "", ErrInvalidRole
	}
	return role, nil
}

// Valid describes the valid operation and its observable behavior.
//
// Valid does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	default:
		return false
	}
}

// User is the account record exchanged across the [UserDirectory] boundary.
// PasswordHash is write-only from the caller's perspective: it never appears
// in HTTP responses and the plaintext is discarded after hashing.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  time.Time
}

// Identity is the authenticated principal attached to request context by the
// authorization guard.
type Identity struct {
	UserID string
	Email  string
	Role   Role
}

// TokenPair defines a public type used by authkit APIs.
//
// TokenPair instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64
}

// UserDirectory is the external user storage boundary. The subsystem never
// accesses persistent storage directly; every user lookup and mutation goes
// through this interface. Implementations must return [ErrUserNotFound] for
// missing users and [ErrUserExists] for duplicate emails (case-insensitive).
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	Update(ctx context.Context, user *User) (*User, error)
}
