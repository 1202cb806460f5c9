package history

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/logcost/logcost-go/pkg/tracker"
)

func capture(id string, at time.Time, cost float64) Entry {
	return Entry{
		ID:         id,
		CapturedAt: at,
		Snapshot: tracker.Snapshot{
			Provider:    "gcp",
			GeneratedAt: at,
			TotalBytes:  1000,
			TotalCost:   cost,
			Entries: []tracker.Entry{
				{File: "app/server.go", Line: 42, Level: tracker.LevelInfo, Template: "request handled", Count: 10, Bytes: 1000, Cost: cost},
			},
		},
	}
}

// ============================================================================
// Entry Tests
// ============================================================================

func TestNewEntry(t *testing.T) {
	snap := tracker.Snapshot{GeneratedAt: time.Now(), TotalBytes: 5}

	a := NewEntry(snap)
	b := NewEntry(snap)

	if a.ID == "" {
		t.Error("Expected non-empty entry ID")
	}
	if a.ID == b.ID {
		t.Errorf("Expected unique IDs, got %s twice", a.ID)
	}
	if a.CapturedAt.IsZero() {
		t.Error("Expected capture time to be set")
	}
	if a.Snapshot.TotalBytes != 5 {
		t.Errorf("Expected snapshot carried into entry, got %d bytes", a.Snapshot.TotalBytes)
	}
}

// ============================================================================
// Memory Store Tests
// ============================================================================

func TestMemoryStore_AppendAndList(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		e := capture(fmt.Sprintf("id-%d", i), base.Add(time.Duration(i)*time.Hour), float64(i))
		if err := store.Append(ctx, e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].ID != "id-0" || entries[2].ID != "id-2" {
		t.Errorf("Expected oldest-first order, got %s..%s", entries[0].ID, entries[2].ID)
	}
	if entries[1].Snapshot.TotalCost != 1 {
		t.Errorf("Expected snapshot preserved, got cost %g", entries[1].Snapshot.TotalCost)
	}
}

func TestMemoryStore_ListOldestFirst(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	// Append out of chronological order.
	store.Append(ctx, capture("late", base.Add(2*time.Hour), 2))
	store.Append(ctx, capture("early", base, 0))
	store.Append(ctx, capture("middle", base.Add(time.Hour), 1))

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"early", "middle", "late"}
	for i, id := range want {
		if entries[i].ID != id {
			t.Errorf("Expected %s at position %d, got %s", id, i, entries[i].ID)
		}
	}
}

func TestMemoryStore_Prune(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	store.Append(ctx, capture("old", base.Add(-time.Hour), 0))
	store.Append(ctx, capture("boundary", base, 1))
	store.Append(ctx, capture("new", base.Add(time.Hour), 2))

	deleted, err := store.Prune(ctx, base)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 entry pruned, got %d", deleted)
	}

	entries, _ := store.List(ctx)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries after prune, got %d", len(entries))
	}
	// An entry captured exactly at the cutoff is retained.
	if entries[0].ID != "boundary" {
		t.Errorf("Expected boundary entry retained, got %s", entries[0].ID)
	}
}

func TestMemoryStore_RejectsInvalidEntries(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	ctx := context.Background()

	noID := capture("", time.Now(), 0)
	if err := store.Append(ctx, noID); err == nil {
		t.Error("Expected error for empty ID")
	}

	noTime := capture("id-1", time.Time{}, 0)
	if err := store.Append(ctx, noTime); err == nil {
		t.Error("Expected error for zero capture time")
	}

	if store.Size() != 0 {
		t.Errorf("Expected rejected entries not stored, got %d", store.Size())
	}
}

func TestMemoryStore_ConcurrentAppends(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				id := fmt.Sprintf("g%d-e%d", n, j)
				if err := store.Append(ctx, capture(id, time.Now(), 0)); err != nil {
					t.Errorf("Append failed: %v", err)
				}
			}
		}(i)
	}
	wg.Wait()

	if store.Size() != 200 {
		t.Errorf("Expected 200 entries, got %d", store.Size())
	}
}

// ============================================================================
// SQLite Store Tests
// ============================================================================

func newSQLiteStore(t *testing.T, path string) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(SQLiteConfig{Path: path})
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	return store
}

func TestSQLiteStore_AppendAndList(t *testing.T) {
	store := newSQLiteStore(t, filepath.Join(t.TempDir(), "history.db"))
	defer store.Close()

	ctx := context.Background()
	at := time.Date(2025, 6, 1, 10, 30, 0, 123456789, time.UTC)

	if err := store.Append(ctx, capture("id-1", at, 0.25)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}

	got := entries[0]
	if got.ID != "id-1" {
		t.Errorf("Expected id-1, got %s", got.ID)
	}
	if !got.CapturedAt.Equal(at) {
		t.Errorf("Expected capture time %v, got %v", at, got.CapturedAt)
	}
	if got.Snapshot.Provider != "gcp" {
		t.Errorf("Expected provider gcp, got %s", got.Snapshot.Provider)
	}
	if len(got.Snapshot.Entries) != 1 || got.Snapshot.Entries[0].Site().String() != "app/server.go:42 [INFO]" {
		t.Errorf("Expected snapshot entries preserved, got %+v", got.Snapshot.Entries)
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	store := newSQLiteStore(t, path)
	if err := store.Append(ctx, capture("id-1", at, 1.5)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := newSQLiteStore(t, path)
	defer reopened.Close()

	entries, err := reopened.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry after reopen, got %d", len(entries))
	}
	if entries[0].Snapshot.TotalCost != 1.5 {
		t.Errorf("Expected cost 1.5 after reopen, got %g", entries[0].Snapshot.TotalCost)
	}
}

func TestSQLiteStore_Prune(t *testing.T) {
	store := newSQLiteStore(t, filepath.Join(t.TempDir(), "history.db"))
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		e := capture(fmt.Sprintf("id-%d", i), base.Add(time.Duration(i)*time.Hour), float64(i))
		if err := store.Append(ctx, e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	deleted, err := store.Prune(ctx, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 entries pruned, got %d", deleted)
	}

	entries, _ := store.List(ctx)
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries after prune, got %d", len(entries))
	}
	if entries[0].ID != "id-2" {
		t.Errorf("Expected id-2 as oldest survivor, got %s", entries[0].ID)
	}
}

func TestSQLiteStore_DuplicateIDRejected(t *testing.T) {
	store := newSQLiteStore(t, filepath.Join(t.TempDir(), "history.db"))
	defer store.Close()

	ctx := context.Background()
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	if err := store.Append(ctx, capture("id-1", at, 0)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Append(ctx, capture("id-1", at.Add(time.Hour), 1)); err == nil {
		t.Error("Expected error for duplicate capture ID")
	}
}

func TestSQLiteStore_EmptyList(t *testing.T) {
	store := newSQLiteStore(t, filepath.Join(t.TempDir(), "history.db"))
	defer store.Close()

	entries, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty history, got %d entries", len(entries))
	}
}

func TestSQLiteStore_RequiresPath(t *testing.T) {
	if _, err := NewSQLiteStore(SQLiteConfig{}); err == nil {
		t.Error("Expected error for empty db path")
	}
}

func TestSQLiteStore_CloseIdempotent(t *testing.T) {
	store := newSQLiteStore(t, filepath.Join(t.TempDir(), "history.db"))

	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Expected second Close to be a no-op, got %v", err)
	}
}
