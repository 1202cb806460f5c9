package analyzer

import (
	"sort"

	"github.com/logcost/logcost-go/pkg/tracker"
)

// Diff returns the per-site delta from before to after as a snapshot whose
// counters are after minus before. Sites present on only one side become
// deltas from or to zero; nothing is dropped. Merging the delta back onto
// before reproduces after's counters for every shared site.
func Diff(before, after tracker.Snapshot) tracker.Snapshot {
	beforeIdx := before.Index()
	afterIdx := after.Index()

	out := tracker.Snapshot{
		Provider:    after.Provider,
		GeneratedAt: after.GeneratedAt,
	}
	if out.Provider == "" {
		out.Provider = before.Provider
	}

	seen := make(map[tracker.CallSite]bool, len(beforeIdx)+len(afterIdx))
	add := func(site tracker.CallSite) {
		if seen[site] {
			return
		}
		seen[site] = true

		b := beforeIdx[site]
		a := afterIdx[site]

		e := tracker.Entry{
			File:  site.File,
			Line:  site.Line,
			Level: site.Level,
			Count: a.Count - b.Count,
			Bytes: a.Bytes - b.Bytes,
			Cost:  a.Cost - b.Cost,
		}
		// Display fields come from the side that has the site, preferring
		// the current one.
		if _, ok := afterIdx[site]; ok {
			e.Template, e.FirstSeen, e.LastSeen = a.Template, a.FirstSeen, a.LastSeen
		} else {
			e.Template = b.Template
		}

		out.Entries = append(out.Entries, e)
		out.TotalBytes += e.Bytes
		out.TotalCost += e.Cost
	}

	for _, e := range before.Entries {
		add(e.Site())
	}
	for _, e := range after.Entries {
		add(e.Site())
	}

	sortDeltas(out.Entries)
	return out
}

// ChangeStatus classifies a site in a comparison.
const (
	StatusAdded   = "added"
	StatusRemoved = "removed"
	StatusChanged = "changed"
)

// SiteChange is one differing call site between two snapshots, with both
// sides' values for presentation.
type SiteChange struct {
	Site     tracker.CallSite `json:"site"`
	Status   string           `json:"status"`
	Template string           `json:"template"`

	CountBefore int64 `json:"count_before"`
	CountAfter  int64 `json:"count_after"`
	BytesBefore int64 `json:"bytes_before"`
	BytesAfter  int64 `json:"bytes_after"`

	CostBefore float64 `json:"cost_before"`
	CostAfter  float64 `json:"cost_after"`
}

// Compare lists the sites that differ between two snapshots, classified as
// added, removed, or changed. Sites with identical counters on both sides
// are omitted. Order is deterministic: (file, line, level) ascending.
func Compare(before, after tracker.Snapshot) []SiteChange {
	beforeIdx := before.Index()
	afterIdx := after.Index()

	var changes []SiteChange
	for site, b := range beforeIdx {
		a, ok := afterIdx[site]
		switch {
		case !ok:
			changes = append(changes, SiteChange{
				Site: site, Status: StatusRemoved, Template: b.Template,
				CountBefore: b.Count, BytesBefore: b.Bytes, CostBefore: b.Cost,
			})
		case a.Count != b.Count || a.Bytes != b.Bytes:
			changes = append(changes, SiteChange{
				Site: site, Status: StatusChanged, Template: a.Template,
				CountBefore: b.Count, CountAfter: a.Count,
				BytesBefore: b.Bytes, BytesAfter: a.Bytes,
				CostBefore: b.Cost, CostAfter: a.Cost,
			})
		}
	}
	for site, a := range afterIdx {
		if _, ok := beforeIdx[site]; !ok {
			changes = append(changes, SiteChange{
				Site: site, Status: StatusAdded, Template: a.Template,
				CountAfter: a.Count, BytesAfter: a.Bytes, CostAfter: a.Cost,
			})
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		a, b := changes[i].Site, changes[j].Site
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Level < b.Level
	})
	return changes
}

// sortDeltas orders delta entries like snapshot entries, by site.
func sortDeltas(entries []tracker.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Level < b.Level
	})
}
