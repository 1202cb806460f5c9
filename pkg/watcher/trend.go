package watcher

import (
	"time"

	"github.com/logcost/logcost-go/pkg/history"
)

// Trend computes the percent change of the current total cost against a
// historical baseline. The baseline is the oldest history entry captured
// at least window before now; entries must be ordered oldest first, as
// history.Store.List returns them.
//
// Nil means no trend: either no entry is old enough, or the baseline
// cost is zero and a percent change is undefined. A missing trend is
// omitted downstream, never fabricated.
func Trend(currentCost float64, entries []history.Entry, now time.Time, window time.Duration) *float64 {
	cutoff := now.Add(-window)
	for _, entry := range entries {
		if entry.CapturedAt.After(cutoff) {
			// Entries are oldest first; everything after is younger.
			break
		}
		baseline := entry.Snapshot.TotalCost
		if baseline == 0 {
			return nil
		}
		pct := (currentCost - baseline) / baseline * 100
		return &pct
	}
	return nil
}
