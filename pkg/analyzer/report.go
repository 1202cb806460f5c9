package analyzer

import (
	"fmt"
	"sort"
	"time"

	"github.com/logcost/logcost-go/pkg/tracker"
)

// DefaultTopN is the number of top cost drivers a report highlights when
// the caller does not say otherwise.
const DefaultTopN = 10

// Thresholds tune anti-pattern detection. All comparisons are strictly
// greater-than: a site exactly at a threshold is not flagged.
type Thresholds struct {
	// HighFrequency flags sites with more calls than this. Default: 1000.
	HighFrequency int64

	// LargePayload flags sites whose average bytes per call exceed this.
	// Default: 5000.
	LargePayload float64
}

// DefaultThresholds returns the stock detection thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{HighFrequency: 1000, LargePayload: 5000}
}

// Anti-pattern kinds reported in findings.
const (
	KindHighFrequency     = "high-frequency"
	KindDebugInProduction = "debug-in-production"
	KindLargePayload      = "large-payload"
)

// Finding is one detected anti-pattern at one call site.
type Finding struct {
	Kind    string           `json:"kind"`
	Site    tracker.CallSite `json:"site"`
	Message string           `json:"message"`
}

// Entry is a priced call site inside a report.
type Entry struct {
	tracker.Entry
	BytesPerCall float64 `json:"bytes_per_call"`
}

// Report is the full analysis of one snapshot.
type Report struct {
	Provider        string    `json:"provider"`
	Currency        string    `json:"currency"`
	GeneratedAt     time.Time `json:"generated_at"`
	TotalBytes      int64     `json:"total_bytes"`
	TotalCost       float64   `json:"total_cost"`
	TotalCalls      int64     `json:"total_calls"`
	Entries         []Entry   `json:"entries"`      // All sites, ranked
	TopEntries      []Entry   `json:"top_entries"`  // First topN of Entries
	AntiPatterns    []Finding `json:"anti_patterns"`
	Recommendations []string  `json:"recommendations"`
}

// Analyzer computes reports for one pricing and threshold configuration.
// It holds no mutable state; a single Analyzer may be shared freely.
type Analyzer struct {
	pricing    Pricing
	thresholds Thresholds
}

// New creates an Analyzer. Zero threshold fields fall back to defaults.
func New(pricing Pricing, thresholds Thresholds) *Analyzer {
	def := DefaultThresholds()
	if thresholds.HighFrequency <= 0 {
		thresholds.HighFrequency = def.HighFrequency
	}
	if thresholds.LargePayload <= 0 {
		thresholds.LargePayload = def.LargePayload
	}
	return &Analyzer{pricing: pricing, thresholds: thresholds}
}

// Pricing returns the analyzer's pricing configuration.
func (a *Analyzer) Pricing() Pricing {
	return a.pricing
}

// BuildReport prices and ranks a snapshot and detects anti-patterns.
// topN bounds the highlighted entries; values below 1 use DefaultTopN.
// The snapshot is read-only to this call; costs carried in the snapshot
// are ignored and recomputed from byte counts so reports from the same
// input are identical.
func (a *Analyzer) BuildReport(snap tracker.Snapshot, topN int) Report {
	if topN < 1 {
		topN = DefaultTopN
	}

	entries := make([]Entry, 0, len(snap.Entries))
	var totalBytes, totalCalls int64
	var totalCost float64
	for _, e := range snap.Entries {
		priced := Entry{Entry: e}
		priced.Cost = a.pricing.Cost(e.Bytes)
		if e.Count > 0 {
			priced.BytesPerCall = float64(e.Bytes) / float64(e.Count)
		}
		entries = append(entries, priced)
		totalBytes += e.Bytes
		totalCalls += e.Count
		totalCost += priced.Cost
	}

	rank(entries)
	if topN > len(entries) {
		topN = len(entries)
	}

	findings := a.detect(entries)
	return Report{
		Provider:        a.pricing.Provider,
		Currency:        a.pricing.Currency,
		GeneratedAt:     snap.GeneratedAt,
		TotalBytes:      totalBytes,
		TotalCost:       totalCost,
		TotalCalls:      totalCalls,
		Entries:         entries,
		TopEntries:      entries[:topN],
		AntiPatterns:    findings,
		Recommendations: a.recommend(entries, findings),
	}
}

// rank orders entries by cost descending, then call count descending,
// then (file, line, level) ascending so equal-cost entries always land in
// the same order.
func rank(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Cost != b.Cost {
			return a.Cost > b.Cost
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Level < b.Level
	})
}

// detect runs the anti-pattern checks over ranked entries. Findings keep
// the entry order, so higher-cost sites surface first.
func (a *Analyzer) detect(entries []Entry) []Finding {
	var findings []Finding
	for _, e := range entries {
		if e.Count > a.thresholds.HighFrequency {
			findings = append(findings, Finding{
				Kind: KindHighFrequency,
				Site: e.Site(),
				Message: fmt.Sprintf("High log volume (%d calls) at %s:%d",
					e.Count, e.File, e.Line),
			})
		}
		if e.Level == tracker.LevelDebug && e.Cost > 0 {
			findings = append(findings, Finding{
				Kind: KindDebugInProduction,
				Site: e.Site(),
				Message: fmt.Sprintf("DEBUG log in production at %s:%d costing %.2f %s",
					e.File, e.Line, e.Cost, a.pricing.Currency),
			})
		}
		if e.BytesPerCall > a.thresholds.LargePayload {
			findings = append(findings, Finding{
				Kind: KindLargePayload,
				Site: e.Site(),
				Message: fmt.Sprintf("Large log payload (~%d bytes/call) at %s:%d",
					int64(e.BytesPerCall), e.File, e.Line),
			})
		}
	}
	return findings
}

// recommend produces the operator-facing next steps for a report.
func (a *Analyzer) recommend(entries []Entry, findings []Finding) []string {
	var recs []string
	if len(entries) > 0 {
		heaviest := entries[0]
		recs = append(recs, fmt.Sprintf(
			"Refactor or sample %s:%d (%s...) to cut the largest cost contributor.",
			heaviest.File, heaviest.Line, truncate(heaviest.Template, 60)))
	}
	if len(findings) > 0 {
		recs = append(recs, "Address detected anti-patterns to reduce cost spikes.")
	}
	if len(recs) == 0 {
		recs = append(recs, "Logging costs look healthy. Continue monitoring.")
	}
	return recs
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
