package tracker

import (
	"fmt"
	"time"
)

// Severity levels attributed to call sites. These mirror the level names a
// snapshot carries on the wire; LevelPrint marks output that bypassed the
// structured logger (plain print/log writer path).
const (
	LevelDebug    = "DEBUG"
	LevelInfo     = "INFO"
	LevelWarning  = "WARNING"
	LevelError    = "ERROR"
	LevelCritical = "CRITICAL"
	LevelPrint    = "PRINT"
)

// CallSite is the identity cost is attributed to: the source location and
// severity of a logging statement. It is comparable and stable across
// snapshots, which is what makes diff and merge well-defined.
type CallSite struct {
	File  string `json:"file"`  // Source file path as resolved at runtime
	Line  int    `json:"line"`  // Line number of the statement
	Level string `json:"level"` // Severity level (see Level* constants)
}

// String renders the site as "file:line [LEVEL]".
func (s CallSite) String() string {
	return fmt.Sprintf("%s:%d [%s]", s.File, s.Line, s.Level)
}

// Entry is one aggregated call site inside a Snapshot.
//
// Cost is zero until pricing is applied (see analyzer.ApplyPricing); the
// Tracker itself knows nothing about providers or prices.
type Entry struct {
	File     string  `json:"file"`
	Line     int     `json:"line"`
	Level    string  `json:"level"`
	Template string  `json:"template"` // Sample message template, display only
	Count    int64   `json:"count"`    // Number of emissions
	Bytes    int64   `json:"bytes"`    // Total rendered bytes
	Cost     float64 `json:"cost"`     // Estimated cost, filled by pricing

	FirstSeen time.Time `json:"first_seen,omitempty"` // First observation
	LastSeen  time.Time `json:"last_seen,omitempty"`  // Most recent observation
}

// Site returns the entry's call-site identity.
func (e Entry) Site() CallSite {
	return CallSite{File: e.File, Line: e.Line, Level: e.Level}
}

// Snapshot is an immutable point-in-time export of the aggregate state.
// Entries are ordered by (file, line, level) ascending so serialization is
// deterministic. Consumers treat a Snapshot as read-only.
type Snapshot struct {
	Provider    string    `json:"provider,omitempty"` // Pricing provider, filled by pricing
	GeneratedAt time.Time `json:"generated_at"`
	TotalBytes  int64     `json:"total_bytes"`
	TotalCost   float64   `json:"total_cost"`
	Entries     []Entry   `json:"entries"`
}

// TotalCalls sums the call counts of all entries.
func (s Snapshot) TotalCalls() int64 {
	var n int64
	for _, e := range s.Entries {
		n += e.Count
	}
	return n
}

// Index returns the snapshot's entries keyed by call site.
func (s Snapshot) Index() map[CallSite]Entry {
	idx := make(map[CallSite]Entry, len(s.Entries))
	for _, e := range s.Entries {
		idx[e.Site()] = e
	}
	return idx
}
