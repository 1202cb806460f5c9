package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/logcost/logcost-go/pkg/tracker"
)

// Entry is one retained snapshot capture.
type Entry struct {
	// ID uniquely identifies the capture.
	ID string `json:"id"`

	// CapturedAt is when the watcher observed the snapshot.
	CapturedAt time.Time `json:"captured_at"`

	// Snapshot is the full snapshot document as read from disk.
	Snapshot tracker.Snapshot `json:"snapshot"`
}

// NewEntry wraps a snapshot in an Entry with a fresh ID and the current
// capture time.
func NewEntry(snap tracker.Snapshot) Entry {
	return Entry{
		ID:         uuid.NewString(),
		CapturedAt: time.Now().UTC(),
		Snapshot:   snap,
	}
}

// Store defines the interface for snapshot history persistence.
// Implementations must be thread-safe and support concurrent access.
type Store interface {
	// Append adds a capture to the history.
	// Entries with an empty ID or zero capture time are rejected.
	Append(ctx context.Context, entry Entry) error

	// List returns all retained captures ordered oldest first.
	// Returns an empty slice when the history is empty.
	List(ctx context.Context) ([]Entry, error)

	// Prune removes captures taken before the cutoff.
	// Returns the number of entries deleted.
	Prune(ctx context.Context, cutoff time.Time) (int, error)

	// Close releases any resources held by the store.
	// The store should not be used after calling Close.
	Close() error
}
