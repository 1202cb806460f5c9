// LogCost attributes logging costs to the statements that cause them.
//
// It aggregates log volume per call site, prices it against cloud ingestion
// rates, and flags the anti-patterns that inflate the bill:
//   - In-process tracking for Go services (slog handler or io.Writer tap)
//   - Snapshot analysis: top cost drivers, anti-patterns, ROI estimates
//   - A sidecar that watches exported snapshots, keeps history and posts
//     Slack cost reports with day-over-day trend
//
// Usage:
//
//	# Watch a snapshot file and post hourly Slack reports
//	logcost sidecar --watch /var/log/logcost/stats.json --webhook $WEBHOOK
//
//	# Show the top cost drivers in a snapshot
//	logcost analyze /var/log/logcost/stats.json --top 10
//
//	# Write an HTML report
//	logcost report stats.json report.html --format html
//
//	# Is a cleanup worth the hours?
//	logcost estimate stats.json --reduction 0.3 --hours 8 --rate 95
//
//	# What changed between two snapshots?
//	logcost diff before.json after.json
//
// For complete documentation, see: https://github.com/logcost/logcost-go
package main

func main() {
	Execute()
}
