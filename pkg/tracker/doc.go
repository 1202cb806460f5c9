// Package tracker provides the concurrent call-site aggregation engine.
//
// # Overview
//
// The tracker package owns the data model for log cost attribution and the
// Tracker, an in-memory aggregator that accumulates byte volume and call
// counts per call site. A call site is the (file, line, level) triple of a
// logging statement; every tracked emission increments exactly one site.
//
// The package has no dependencies on the rest of the system. Interception
// (pkg/tracker/tap) feeds it, analysis (pkg/analyzer) and export (pkg/export)
// consume the Snapshot it produces.
//
// # Usage
//
//	trk := tracker.New()
//
//	// Hot path: one call per tracked emission
//	trk.Increment(tracker.CallSite{File: "app/server.go", Line: 42, Level: tracker.LevelInfo},
//	    128, "request handled")
//
//	// Cold path: periodic export
//	snap := trk.Snapshot(true)
//
// # Thread Safety
//
// Increment is safe for arbitrary concurrent callers and keeps its critical
// section to a handful of atomic counter updates. Snapshot, Merge, and the
// miss counter are likewise safe; per-site counters are never torn.
package tracker
