package tracker

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Tracker accumulates per-call-site statistics with a lock-free fast path.
//
// Sites live in a sync.Map keyed by CallSite; each value holds atomic
// counters, so concurrent Increment calls on the same site never lose an
// update and never tear a field.
//
// # Reset Policy
//
// Snapshot(true) swaps the live container for a fresh one and drains the
// retired container. An increment racing the swap lands in the retiring
// container and is included when it completes before that entry is read
// during capture; a straggler completing later is dropped. The window is
// bounded by a single Increment call.
type Tracker struct {
	sites  atomic.Pointer[sync.Map] // CallSite -> *siteStats
	misses atomic.Int64             // Attribution failures, fed by the tap
}

// siteStats holds the live counters for one call site. The template and
// first-seen timestamp are fixed when the entry is created; count, bytes,
// and last-seen mutate only through atomic operations.
type siteStats struct {
	count    atomic.Int64
	bytes    atomic.Int64
	lastSeen atomic.Int64 // Unix nanoseconds

	template  string
	firstSeen time.Time
}

// New creates an empty Tracker.
func New() *Tracker {
	t := &Tracker{}
	t.sites.Store(&sync.Map{})
	return t
}

// Increment records one emission of size bytes at the given site.
//
// The first observation of a site fixes its sample template and first-seen
// timestamp; later calls only touch the atomic counters. Safe for arbitrary
// concurrent callers.
func (t *Tracker) Increment(site CallSite, size int64, template string) {
	m := t.sites.Load()

	v, ok := m.Load(site)
	if !ok {
		now := time.Now()
		fresh := &siteStats{template: template, firstSeen: now}
		fresh.lastSeen.Store(now.UnixNano())
		v, _ = m.LoadOrStore(site, fresh)
	}

	stats := v.(*siteStats)
	stats.count.Add(1)
	stats.bytes.Add(size)
	stats.lastSeen.Store(time.Now().UnixNano())
}

// RecordMiss counts one attribution failure. The host never sees these;
// they are only observable through Misses and the sidecar's own telemetry.
func (t *Tracker) RecordMiss() {
	t.misses.Add(1)
}

// Misses returns the number of emissions whose call site could not be
// resolved.
func (t *Tracker) Misses() int64 {
	return t.misses.Load()
}

// Sites returns the number of distinct call sites currently tracked.
func (t *Tracker) Sites() int {
	n := 0
	t.sites.Load().Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// TotalBytes returns the byte volume accumulated across all live sites.
func (t *Tracker) TotalBytes() int64 {
	var total int64
	t.sites.Load().Range(func(_, v any) bool {
		total += v.(*siteStats).bytes.Load()
		return true
	})
	return total
}

// Snapshot captures the current aggregate state.
//
// With reset, the live container is atomically swapped for a fresh one
// before capture, so updates arriving after the swap land in the new
// container and are never lost (see the reset policy above). Entries are
// sorted by (file, line, level) for deterministic serialization. Cost and
// provider fields are left zero; pricing is a separate, pure step.
func (t *Tracker) Snapshot(reset bool) Snapshot {
	var m *sync.Map
	if reset {
		m = t.sites.Swap(&sync.Map{})
	} else {
		m = t.sites.Load()
	}

	snap := Snapshot{GeneratedAt: time.Now()}
	m.Range(func(k, v any) bool {
		site := k.(CallSite)
		stats := v.(*siteStats)

		e := Entry{
			File:      site.File,
			Line:      site.Line,
			Level:     site.Level,
			Template:  stats.template,
			Count:     stats.count.Load(),
			Bytes:     stats.bytes.Load(),
			FirstSeen: stats.firstSeen,
			LastSeen:  time.Unix(0, stats.lastSeen.Load()),
		}
		snap.Entries = append(snap.Entries, e)
		snap.TotalBytes += e.Bytes
		return true
	})

	sortEntries(snap.Entries)
	return snap
}

// Reset discards all accumulated state, including the miss counter.
func (t *Tracker) Reset() {
	t.sites.Store(&sync.Map{})
	t.misses.Store(0)
}

// sortEntries orders entries by (file, line, level) ascending.
func sortEntries(entries []Entry) {
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
