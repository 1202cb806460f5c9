// Package tap intercepts log output and feeds the cost tracker.
//
// # Overview
//
// The tap is the single point of indirection between an application's
// logging calls and the aggregation engine. Two entry points cover the two
// output paths a Go service has:
//
//   - Handler wraps any slog.Handler. Every record that passes through is
//     attributed to its originating call site and metered before being
//     delegated, exactly once, to the wrapped handler.
//   - Writer wraps any io.Writer so output from the standard log package
//     (or anything else that writes lines) is metered under the PRINT
//     pseudo-level.
//
// Call sites are resolved by walking the active call stack outward from the
// tap, skipping logging machinery and any registered ignore prefixes, so
// cost lands on the true caller rather than on a logging helper.
//
// # Usage
//
//	trk := tracker.New()
//
//	handler := tap.NewHandler(slog.NewJSONHandler(os.Stdout, nil), trk)
//	handler.Ignore("myapp/internal/logutil.")
//	slog.SetDefault(slog.New(handler))
//
// Or, to wrap the process default in one call at startup:
//
//	tap.Enable(trk)
//
// slog.SetDefault routes the standard log package through the default
// handler, so once the tap wraps it, plain log.Print calls are metered as
// PRINT with no extra wiring. NewWriter remains for metering other
// log.Logger instances or raw writers.
//
// # Failure Containment
//
// Nothing in the metering path may disturb the host program. Attribution
// failures and internal panics are swallowed, counted on the tracker's miss
// counter, and the delegated call still happens exactly once with its
// return value unchanged.
package tap
