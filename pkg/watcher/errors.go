package watcher

import "fmt"

// SnapshotParseError reports a snapshot file that could not be decoded,
// typically because the poll raced a writer or the producer crashed
// mid-write. The cycle that hits it is skipped and retried next tick.
type SnapshotParseError struct {
	// Path is the snapshot file that failed to decode.
	Path string

	// Cause is the underlying decode or validation error.
	Cause error
}

func (e *SnapshotParseError) Error() string {
	return fmt.Sprintf("snapshot %s could not be parsed: %v", e.Path, e.Cause)
}

func (e *SnapshotParseError) Unwrap() error {
	return e.Cause
}
