// Package notify delivers periodic cost reports to external channels.
//
// The watcher builds a Payload per notification interval and hands it to a
// Notifier. Delivery is fire-and-forget: a failed send is reported to the
// caller and dropped, and the next interval is the only retry.
package notify

import (
	"context"

	"github.com/google/uuid"

	"github.com/logcost/logcost-go/pkg/analyzer"
)

// Payload is one notification's worth of report data.
type Payload struct {
	// Provider is the pricing provider the totals were computed with.
	Provider string `json:"provider"`

	// TotalBytes is the logged byte volume in the current snapshot.
	TotalBytes int64 `json:"total_bytes"`

	// TotalCost is the estimated cost of the current snapshot.
	TotalCost float64 `json:"total_cost"`

	// CallCount is the total number of tracked log calls.
	CallCount int64 `json:"call_count"`

	// SiteCount is the number of unique call sites tracked.
	SiteCount int `json:"site_count"`

	// TrendPct is the percent cost change against the trend baseline.
	// Nil when no baseline qualifies; it is omitted, never fabricated.
	TrendPct *float64 `json:"trend_pct,omitempty"`

	// TopEntries are the highest-cost call sites, ranked.
	TopEntries []analyzer.Entry `json:"top_entries"`

	// AntiPatterns are the findings detected in the current snapshot.
	AntiPatterns []analyzer.Finding `json:"anti_patterns"`

	// Test marks a startup test notification.
	Test bool `json:"test,omitempty"`

	// ReportID uniquely identifies this notification.
	ReportID string `json:"report_id"`
}

// Notifier delivers a payload to one channel.
// Implementations must not retry internally; the watcher's notification
// interval is the retry cadence.
type Notifier interface {
	Send(ctx context.Context, p Payload) error
}

// PayloadFromReport assembles a payload from an analyzer report.
// The trend pointer is carried through as-is so a missing baseline stays
// absent from the serialized payload.
func PayloadFromReport(report analyzer.Report, trendPct *float64, test bool) Payload {
	return Payload{
		Provider:     report.Provider,
		TotalBytes:   report.TotalBytes,
		TotalCost:    report.TotalCost,
		CallCount:    report.TotalCalls,
		SiteCount:    len(report.Entries),
		TrendPct:     trendPct,
		TopEntries:   report.TopEntries,
		AntiPatterns: report.AntiPatterns,
		Test:         test,
		ReportID:     uuid.NewString(),
	}
}
