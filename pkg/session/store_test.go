package session

import (
	"context"
	"testing"
	"time"

	"github.com/jllopis/gremio/pkg/core"
)

func TestPutGetDelete(t *testing.T) {
	store := NewInMemoryStore(0)
	ctx := context.Background()

	sess := core.NewSession("s1")
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok := store.Get(ctx, "s1")
	if !ok || got.ID != "s1" {
		t.Fatalf("expected session back, got %v %v", got, ok)
	}
	if _, ok := store.Get(ctx, "unknown"); ok {
		t.Fatalf("expected miss for unknown id")
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := store.Get(ctx, "s1"); ok {
		t.Fatalf("expected session to be gone")
	}
}

func TestExpiredSessionIsInvisible(t *testing.T) {
	store := NewInMemoryStore(time.Minute)
	ctx := context.Background()

	sess := core.NewSession("old")
	sess.UpdatedAt = time.Now().UTC().Add(-2 * time.Minute)
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("put: %v", err)
	}

	if _, ok := store.Get(ctx, "old"); ok {
		t.Fatalf("expired session must not be returned")
	}
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	store := NewInMemoryStore(time.Minute)
	ctx := context.Background()

	fresh := core.NewSession("fresh")
	stale := core.NewSession("stale")
	stale.UpdatedAt = time.Now().UTC().Add(-2 * time.Minute)
	_ = store.Put(ctx, fresh)
	_ = store.Put(ctx, stale)

	removed := store.sweep(time.Now().UTC())
	if removed != 1 {
		t.Fatalf("expected one session swept, got %d", removed)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one session left, got %d", store.Len())
	}
	if _, ok := store.Get(ctx, "fresh"); !ok {
		t.Fatalf("fresh session must survive the sweep")
	}
}

func TestSweeperDisabledWithoutTTL(t *testing.T) {
	store := NewInMemoryStore(0)
	stop := store.StartSweeper(time.Millisecond)
	stop() // must be a no-op, not a hang
}
