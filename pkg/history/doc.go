// Package history persists captured snapshots so trends can be computed
// across sidecar restarts.
//
// # Backends
//
// The package defines the Store interface and provides two implementations:
//
//   - SQLite: durable single-file storage for sidecar deployments
//   - Memory: in-process storage for tests and short-lived runs
//
// # SQLite Backend
//
// The SQLite backend uses the pure-Go modernc.org/sqlite driver, so binaries
// stay cgo-free. It enables WAL mode for concurrent reads during writes and
// sets a busy timeout so brief lock contention does not surface as errors.
//
// # Basic Usage
//
//	store, err := history.NewSQLiteStore(history.SQLiteConfig{Path: "data/history.db"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	if err := store.Append(ctx, history.NewEntry(snap)); err != nil {
//	    log.Fatal(err)
//	}
//
//	entries, err := store.List(ctx)   // oldest first
//	deleted, err := store.Prune(ctx, time.Now().Add(-7*24*time.Hour))
//
// # Thread Safety
//
// All Store implementations are safe for concurrent use. Append, List and
// Prune may be called from different goroutines.
package history
