package tracker

// Merge combines two snapshots into one.
//
// Per shared call site, counts and bytes are summed, the earlier first-seen
// and the later last-seen win, and the template follows the earlier
// first-seen (lexicographic tie-break). Sites present in only one input are
// carried over unchanged. The operation is commutative and associative;
// cost fields are summed as-is, which is exact when both inputs were priced
// identically, and pricing can always be reapplied afterwards.
func Merge(a, b Snapshot) Snapshot {
	merged := a.Index()
	for site, eb := range b.Index() {
		ea, ok := merged[site]
		if !ok {
			merged[site] = eb
			continue
		}
		merged[site] = mergeEntries(ea, eb)
	}

	out := Snapshot{Provider: a.Provider}
	if out.Provider == "" {
		out.Provider = b.Provider
	}
	out.GeneratedAt = a.GeneratedAt
	if b.GeneratedAt.After(out.GeneratedAt) {
		out.GeneratedAt = b.GeneratedAt
	}

	for _, e := range merged {
		out.Entries = append(out.Entries, e)
		out.TotalBytes += e.Bytes
		out.TotalCost += e.Cost
	}
	sortEntries(out.Entries)
	return out
}

func mergeEntries(a, b Entry) Entry {
	out := a
	out.Count = a.Count + b.Count
	out.Bytes = a.Bytes + b.Bytes
	out.Cost = a.Cost + b.Cost

	// Earlier first-seen wins; a zero timestamp means unknown and loses to
	// any real one. Ties fall back to the lexicographically smaller template
	// so the result is independent of argument order.
	switch {
	case a.FirstSeen.IsZero() && b.FirstSeen.IsZero():
		out.Template = minString(a.Template, b.Template)
	case a.FirstSeen.IsZero():
		out.FirstSeen = b.FirstSeen
		out.Template = b.Template
	case b.FirstSeen.IsZero() || a.FirstSeen.Before(b.FirstSeen):
		out.FirstSeen = a.FirstSeen
		out.Template = a.Template
	case b.FirstSeen.Before(a.FirstSeen):
		out.FirstSeen = b.FirstSeen
		out.Template = b.Template
	default:
		out.FirstSeen = a.FirstSeen
		out.Template = minString(a.Template, b.Template)
	}

	out.LastSeen = a.LastSeen
	if b.LastSeen.After(out.LastSeen) {
		out.LastSeen = b.LastSeen
	}
	return out
}

func minString(a, b string) string {
	if b < a {
		return b
	}
	return a
}
