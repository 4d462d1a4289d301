package blacklist

import (
	"context"
	"sync"
	"time"
)

// Memory defines a public type used by authkit APIs.
//
// Memory instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Memory struct {
	mu          sync.RWMutex
	entries     map[string]time.Time
	expiryOf    ExpiryFunc
	fallbackTTL time.Duration
}

// NewMemory describes the newmemory operation and its observable behavior.
//
// NewMemory does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMemory(expiryOf ExpiryFunc, fallbackTTL time.Duration) *Memory {
	if fallbackTTL <= 0 {
		fallbackTTL = 24 * time.Hour
	}
	return &Memory{
		entries:     make(map[string]time.Time),
		expiryOf:    expiryOf,
		fallbackTTL: fallbackTTL,
	}
}

// Revoke describes the revoke operation and its observable behavior.
//
// Revoke may return an error when input validation, dependency calls, or security checks fail.
// Revoke does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Memory) Revoke(_ context.Context, token string) error {
	deadline := m.deadlineFor(token)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[token]; ok {
		return nil
	}
	m.entries[token] = deadline

	return nil
}

// IsRevoked describes the isrevoked operation and its observable behavior.
//
// IsRevoked may return an error when input validation, dependency calls, or security checks fail.
// IsRevoked does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Memory) IsRevoked(_ context.Context, token string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.entries[token]
	return ok, nil
}

// Sweep describes the sweep operation and its observable behavior.
//
// Sweep may return an error when input validation, dependency calls, or security checks fail.
// Sweep does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Memory) Sweep(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for token, deadline := range m.entries {
		if deadline.Before(now) {
			delete(m.entries, token)
			removed++
		}
	}

	return removed, nil
}

func (m *Memory) deadlineFor(token string) time.Time {
	if m.expiryOf != nil {
		if expiresAt, ok := m.expiryOf(token); ok {
			return expiresAt
		}
	}
	return time.Now().Add(m.fallbackTTL)
}
