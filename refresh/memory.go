package refresh

import (
	"context"
	"sync"
	"time"
)

// MemoryStore defines a public type used by authkit APIs.
//
// MemoryStore instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	byUser  map[string]map[string]struct{}
}

// NewMemoryStore describes the newmemorystore operation and its observable behavior.
//
// NewMemoryStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
		byUser:  make(map[string]map[string]struct{}),
	}
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) Save(_ context.Context, record *Record) error {
	copied := *record

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[copied.TokenID] = &copied

	ids, ok := s.byUser[copied.UserID]
	if !ok {
		ids = make(map[string]struct{})
		s.byUser[copied.UserID] = ids
	}
	ids[copied.TokenID] = struct{}{}

	return nil
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) Get(_ context.Context, tokenID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[tokenID]
	if !ok {
		return nil, ErrNotFound
	}

	copied := *record
	return &copied, nil
}

// Deactivate describes the deactivate operation and its observable behavior.
//
// Deactivate may return an error when input validation, dependency calls, or security checks fail.
// Deactivate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) Deactivate(_ context.Context, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record, ok := s.records[tokenID]; ok {
		record.Active = false
	}

	return nil
}

// DeactivateAllForUser describes the deactivateallforuser operation and its observable behavior.
//
// DeactivateAllForUser may return an error when input validation, dependency calls, or security checks fail.
// DeactivateAllForUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) DeactivateAllForUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for tokenID := range s.byUser[userID] {
		if record, ok := s.records[tokenID]; ok {
			record.Active = false
		}
	}

	return nil
}

// SweepExpired describes the sweepexpired operation and its observable behavior.
//
// SweepExpired may return an error when input validation, dependency calls, or security checks fail.
// SweepExpired does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) SweepExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for tokenID, record := range s.records {
		if record.ExpiresAt.Before(now) {
			delete(s.records, tokenID)
			if ids, ok := s.byUser[record.UserID]; ok {
				delete(ids, tokenID)
				if len(ids) == 0 {
					delete(s.byUser, record.UserID)
				}
			}
			removed++
		}
	}

	return removed, nil
}
