package refresh

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testRecord(tokenID, userID string, ttl time.Duration) *Record {
	now := time.Now()
	return &Record{
		TokenID:   tokenID,
		UserID:    userID,
		Token:     "signed-token-" + tokenID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		Active:    true,
	}
}

func TestMemorySaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	rec := testRecord("tok-1", "user-1", time.Hour)
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := store.Get(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.UserID != "user-1" || got.Token != rec.Token || !got.Active {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Returned records are copies; callers must not reach store state.
	got.Active = false
	again, err := store.Get(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !again.Active {
		t.Fatal("mutating a returned record must not affect the store")
	}
}

func TestMemoryGetMissing(t *testing.T) {
	store := NewMemoryStore()

	if _, err := store.Get(context.Background(), "absent"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryDeactivate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Save(ctx, testRecord("tok-1", "user-1", time.Hour)); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	if err := store.Deactivate(ctx, "tok-1"); err != nil {
		t.Fatalf("Deactivate error: %v", err)
	}

	got, err := store.Get(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Active {
		t.Fatal("expected record to be inactive")
	}

	// Deactivating an absent record is a no-op.
	if err := store.Deactivate(ctx, "absent"); err != nil {
		t.Fatalf("expected nil for absent record, got %v", err)
	}
}

func TestMemoryDeactivateAllForUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, id := range []string{"a", "b", "c"} {
		if err := store.Save(ctx, testRecord("tok-"+id, "user-1", time.Hour)); err != nil {
			t.Fatalf("Save error: %v", err)
		}
	}
	if err := store.Save(ctx, testRecord("tok-other", "user-2", time.Hour)); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	if err := store.DeactivateAllForUser(ctx, "user-1"); err != nil {
		t.Fatalf("DeactivateAllForUser error: %v", err)
	}

	for _, id := range []string{"a", "b", "c"} {
		got, err := store.Get(ctx, "tok-"+id)
		if err != nil {
			t.Fatalf("Get error: %v", err)
		}
		if got.Active {
			t.Fatalf("expected tok-%s to be inactive", id)
		}
	}

	other, err := store.Get(ctx, "tok-other")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !other.Active {
		t.Fatal("other user's record must stay active")
	}
}

func TestMemorySweepExpired(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Save(ctx, testRecord("live", "user-1", time.Hour)); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := store.Save(ctx, testRecord("dead", "user-1", time.Millisecond)); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	removed, err := store.SweepExpired(ctx, time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("SweepExpired error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed record, got %d", removed)
	}

	if _, err := store.Get(ctx, "dead"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected swept record to be gone, got %v", err)
	}
	if _, err := store.Get(ctx, "live"); err != nil {
		t.Fatalf("expected live record to remain, got %v", err)
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = store.Save(ctx, testRecord("tok-a", "user-1", time.Hour))
		}
	}()
	for i := 0; i < 100; i++ {
		_, _ = store.Get(ctx, "tok-a")
		_ = store.Deactivate(ctx, "tok-a")
	}
	<-done
}
