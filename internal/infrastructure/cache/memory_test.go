package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemoryStoreLockExclusivity(t *testing.T) {
	store := NewMemoryStore()
	tenantID := uuid.New()
	ctx := context.Background()

	ok, err := store.Acquire(ctx, tenantID, "sync_calls", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first acquire should succeed, ok=%v err=%v", ok, err)
	}

	ok, _ = store.Acquire(ctx, tenantID, "sync_calls", time.Minute)
	if ok {
		t.Error("second acquire of a held lock should fail")
	}

	// A different job or tenant is independent.
	if ok, _ := store.Acquire(ctx, tenantID, "sync_leads", time.Minute); !ok {
		t.Error("different job should acquire independently")
	}
	if ok, _ := store.Acquire(ctx, uuid.New(), "sync_calls", time.Minute); !ok {
		t.Error("different tenant should acquire independently")
	}

	if err := store.Release(ctx, tenantID, "sync_calls"); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if ok, _ := store.Acquire(ctx, tenantID, "sync_calls", time.Minute); !ok {
		t.Error("acquire after release should succeed")
	}
}

func TestMemoryStoreExpiredLockIsReacquirable(t *testing.T) {
	store := NewMemoryStore()
	tenantID := uuid.New()
	ctx := context.Background()

	if ok, _ := store.Acquire(ctx, tenantID, "sync_calls", time.Nanosecond); !ok {
		t.Fatal("first acquire should succeed")
	}
	time.Sleep(time.Millisecond)

	if ok, _ := store.Acquire(ctx, tenantID, "sync_calls", time.Minute); !ok {
		t.Error("expired lock should be reacquirable")
	}
}

func TestMemoryStoreRecordsRuns(t *testing.T) {
	store := NewMemoryStore()
	tenantID := uuid.New()
	ctx := context.Background()

	type summary struct {
		Synced int `json:"synced"`
	}
	if err := store.RecordRun(ctx, tenantID, "sync_calls", summary{Synced: 3}); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	runs, err := store.LastRuns(ctx, tenantID)
	if err != nil {
		t.Fatalf("LastRuns failed: %v", err)
	}
	if string(runs["sync_calls"]) != `{"synced":3}` {
		t.Errorf("unexpected stored summary: %s", runs["sync_calls"])
	}
}
