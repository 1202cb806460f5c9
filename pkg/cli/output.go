package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/logcost/logcost-go/pkg/analyzer"
)

// templateWidth is how much of a message template the text output shows.
const templateWidth = 60

// WriteAnalysis renders a report in the logcost analyze layout: totals,
// top cost drivers, then any detected anti-patterns and recommendations.
func WriteAnalysis(w io.Writer, report analyzer.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Provider: %s  Currency: %s\n",
		strings.ToUpper(report.Provider), report.Currency)
	fmt.Fprintf(&b, "Total bytes: %s  Estimated cost: %.2f %s\n",
		humanize.Comma(report.TotalBytes), report.TotalCost, report.Currency)
	b.WriteString("\n")

	fmt.Fprintf(&b, "Top %d cost drivers:\n", len(report.TopEntries))
	for _, entry := range report.TopEntries {
		fmt.Fprintf(&b, "- %s:%d [%s] %s... %.4f %s\n",
			entry.File, entry.Line, entry.Level,
			truncate(entry.Template, templateWidth), entry.Cost, report.Currency)
	}

	if len(report.AntiPatterns) > 0 {
		b.WriteString("\nDetected anti-patterns:\n")
		for _, finding := range report.AntiPatterns {
			fmt.Fprintf(&b, "  * %s\n", finding.Message)
		}
	}
	if len(report.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, tip := range report.Recommendations {
			fmt.Fprintf(&b, "  * %s\n", tip)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteROI renders an ROI estimate, one figure per line.
func WriteROI(w io.Writer, result analyzer.ROIResult) error {
	_, err := fmt.Fprintf(w,
		"Potential savings: %.2f\nEffort cost: %.2f\nNet savings: %.2f\nROI: %.2f\n",
		result.PotentialSavings, result.EffortCost, result.NetSavings, result.ROI)
	return err
}

// WriteDiff renders a snapshot comparison grouped into added, removed and
// changed statements, one blank line between groups. An empty comparison
// prints a single line saying so.
func WriteDiff(w io.Writer, changes []analyzer.SiteChange) error {
	var added, removed, changed []analyzer.SiteChange
	for _, c := range changes {
		switch c.Status {
		case analyzer.StatusAdded:
			added = append(added, c)
		case analyzer.StatusRemoved:
			removed = append(removed, c)
		case analyzer.StatusChanged:
			changed = append(changed, c)
		}
	}

	if len(added) == 0 && len(removed) == 0 && len(changed) == 0 {
		_, err := io.WriteString(w, "No differences detected.\n")
		return err
	}

	var sections []string
	if len(added) > 0 {
		var b strings.Builder
		b.WriteString("Added statements:\n")
		for _, c := range added {
			fmt.Fprintf(&b, "  + %s bytes=%d count=%d\n", c.Site, c.BytesAfter, c.CountAfter)
		}
		sections = append(sections, b.String())
	}
	if len(removed) > 0 {
		var b strings.Builder
		b.WriteString("Removed statements:\n")
		for _, c := range removed {
			fmt.Fprintf(&b, "  - %s\n", c.Site)
		}
		sections = append(sections, b.String())
	}
	if len(changed) > 0 {
		var b strings.Builder
		b.WriteString("Changed statements:\n")
		for _, c := range changed {
			fmt.Fprintf(&b, "  * %s: bytes %d -> %d, count %d -> %d\n",
				c.Site, c.BytesBefore, c.BytesAfter, c.CountBefore, c.CountAfter)
		}
		sections = append(sections, b.String())
	}

	_, err := io.WriteString(w, strings.Join(sections, "\n"))
	return err
}

// truncate clips s to limit bytes for display.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
