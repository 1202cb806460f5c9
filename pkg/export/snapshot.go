// Package export writes snapshots and reports to durable formats: the
// JSON snapshot document the sidecar watches, CSV and Prometheus textfile
// renderings, and a standalone HTML report. The Flusher drives the JSON
// export on an interval.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/logcost/logcost-go/pkg/tracker"
)

// WriteSnapshot writes the snapshot document atomically: the JSON is
// staged in a temp file in the target directory, fsynced, and renamed
// over the destination. A reader polling the path sees either the old
// document or the new one, never a partial write.
func WriteSnapshot(path string, snap tracker.Snapshot) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("stage snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot loads and validates a snapshot document. Truncated or
// structurally wrong files fail here so pollers can skip the cycle.
func ReadSnapshot(path string) (tracker.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tracker.Snapshot{}, err
	}
	return DecodeSnapshot(data)
}

// DecodeSnapshot parses and validates raw snapshot bytes. Callers that
// already hold the file contents (to hash them, for example) use this
// instead of ReadSnapshot.
func DecodeSnapshot(data []byte) (tracker.Snapshot, error) {
	var snap tracker.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return tracker.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.GeneratedAt.IsZero() {
		return tracker.Snapshot{}, fmt.Errorf("snapshot missing generated_at: not a snapshot document")
	}
	return snap, nil
}
