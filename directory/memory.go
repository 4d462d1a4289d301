package directory

import (
	"context"
	"strings"
	"sync"

	authkit "github.com/skillswaphq/authkit"
)

// Memory defines a public type used by authkit APIs.
//
// Memory instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Memory struct {
	mu      sync.RWMutex
	byID    map[string]*authkit.User
	byEmail map[string]string
}

// NewMemory describes the newmemory operation and its observable behavior.
//
// NewMemory does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMemory() *Memory {
	return &Memory{
		byID:    make(map[string]*authkit.User),
		byEmail: make(map[string]string),
	}
}

// FindByEmail describes the findbyemail operation and its observable behavior.
//
// FindByEmail may return an error when input validation, dependency calls, or security checks fail.
// FindByEmail does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Memory) FindByEmail(_ context.Context, email string) (*authkit.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[normalize(email)]
	if !ok {
		return nil, authkit.ErrUserNotFound
	}

	copied := *m.byID[id]
	return &copied, nil
}

// FindByID describes the findbyid operation and its observable behavior.
//
// FindByID may return an error when input validation, dependency calls, or security checks fail.
// FindByID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Memory) FindByID(_ context.Context, id string) (*authkit.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.byID[id]
	if !ok {
		return nil, authkit.ErrUserNotFound
	}

	copied := *user
	return &copied, nil
}

// Create describes the create operation and its observable behavior.
//
// Create may return an error when input validation, dependency calls, or security checks fail.
// Create does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Memory) Create(_ context.Context, user *authkit.User) (*authkit.User, error) {
	email := normalize(user.Email)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[email]; ok {
		return nil, authkit.ErrUserExists
	}

	stored := *user
	stored.Email = email
	m.byID[stored.ID] = &stored
	m.byEmail[email] = stored.ID

	copied := stored
	return &copied, nil
}

// Update describes the update operation and its observable behavior.
//
// Update may return an error when input validation, dependency calls, or security checks fail.
// Update does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Memory) Update(_ context.Context, user *authkit.User) (*authkit.User, error) {
	email := normalize(user.Email)

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[user.ID]
	if !ok {
		return nil, authkit.ErrUserNotFound
	}

	if otherID, ok := m.byEmail[email]; ok && otherID != user.ID {
		return nil, authkit.ErrUserExists
	}

	if existing.Email != email {
		delete(m.byEmail, existing.Email)
		m.byEmail[email] = user.ID
	}

	stored := *user
	stored.Email = email
	m.byID[user.ID] = &stored

	copied := stored
	return &copied, nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
