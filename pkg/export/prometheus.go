package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/logcost/logcost-go/pkg/tracker"
)

var (
	statementBytesDesc = prometheus.NewDesc(
		"logcost_statement_bytes_total",
		"Total bytes emitted by log statement.",
		[]string{"file", "line", "level"}, nil,
	)
	statementCallsDesc = prometheus.NewDesc(
		"logcost_statement_calls_total",
		"Total count of log invocations per statement.",
		[]string{"file", "line", "level"}, nil,
	)
	snapshotBytesDesc = prometheus.NewDesc(
		"logcost_snapshot_bytes",
		"Total bytes across all statements in the snapshot.",
		nil, nil,
	)
	snapshotCostDesc = prometheus.NewDesc(
		"logcost_snapshot_cost",
		"Estimated total cost of the snapshot in the provider currency.",
		nil, nil,
	)
)

// snapshotCollector exposes one snapshot as constant metrics so the
// standard exposition encoder does the formatting.
type snapshotCollector struct {
	snap tracker.Snapshot
}

func (c snapshotCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- statementBytesDesc
	ch <- statementCallsDesc
	ch <- snapshotBytesDesc
	ch <- snapshotCostDesc
}

func (c snapshotCollector) Collect(ch chan<- prometheus.Metric) {
	for _, e := range c.snap.Entries {
		line := strconv.Itoa(e.Line)
		ch <- prometheus.MustNewConstMetric(statementBytesDesc, prometheus.CounterValue,
			float64(e.Bytes), e.File, line, e.Level)
		ch <- prometheus.MustNewConstMetric(statementCallsDesc, prometheus.CounterValue,
			float64(e.Count), e.File, line, e.Level)
	}
	ch <- prometheus.MustNewConstMetric(snapshotBytesDesc, prometheus.GaugeValue, float64(c.snap.TotalBytes))
	ch <- prometheus.MustNewConstMetric(snapshotCostDesc, prometheus.GaugeValue, c.snap.TotalCost)
}

// WriteTextfile renders the snapshot in Prometheus exposition format for
// node_exporter's textfile collector. The write goes through a temp file
// and rename, so scrape-time reads never see partial content.
func WriteTextfile(path string, snap tracker.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create textfile dir: %w", err)
	}
	reg := prometheus.NewRegistry()
	if err := reg.Register(snapshotCollector{snap: snap}); err != nil {
		return fmt.Errorf("register snapshot collector: %w", err)
	}
	return prometheus.WriteToTextfile(path, reg)
}
