// Package watcher implements the sidecar control loop that turns flushed
// snapshots into history, trend context, and notifications.
//
// The loop is a state machine over idle, watching (a poll cycle is
// running) and notifying (a report is being built or sent), driven by two
// independent timers so that polling cadence never dictates notification
// cadence.
//
// # Poll Cycle
//
// Each poll reads the snapshot file once, hashes the raw bytes and
// decodes them. An absent or unparsable file skips the cycle; the next
// tick retries. When the content hash differs from the last good read,
// the snapshot is appended to the history store and entries older than
// the retention age are pruned.
//
// # Notification Cycle
//
// On its own interval (or an optional cron schedule), the current
// snapshot is analyzed and delivered to the configured notifier together
// with a trend computed against the oldest history entry at least one
// trend window old. Delivery failures are recorded and skipped; the next
// interval is the only retry.
//
// # Degradation
//
// Filesystem notifications, the cron schedule and the HTTP status
// endpoint are all optional. If the OS watcher cannot start, the loop
// silently falls back to pure polling, which remains the correctness
// baseline throughout.
package watcher
