package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/logcost/logcost-go/pkg/tracker"
)

// namespace prefixes every metric the collector registers.
const namespace = "logcost"

// Collector bundles the sidecar's operational metrics on one registry.
// All record methods are safe for concurrent use.
type Collector struct {
	registry *prometheus.Registry

	pollCycles        prometheus.Counter
	parseFailures     prometheus.Counter
	historyEntries    prometheus.Counter
	historyPruned     prometheus.Counter
	notificationsSent prometheus.Counter
	notificationsFail prometheus.Counter
	lastPoll          prometheus.Gauge
}

// NewCollector creates a collector and registers its metrics.
// If registry is nil, a private registry is created.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,

		pollCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_cycles_total",
			Help:      "Total number of snapshot poll cycles run",
		}),
		parseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_parse_failures_total",
			Help:      "Total number of poll cycles skipped because the snapshot could not be parsed",
		}),
		historyEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_entries_total",
			Help:      "Total number of snapshot captures appended to history",
		}),
		historyPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_pruned_total",
			Help:      "Total number of history captures removed by retention pruning",
		}),
		notificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Total number of notifications delivered",
		}),
		notificationsFail: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_failed_total",
			Help:      "Total number of notification deliveries that failed",
		}),
		lastPoll: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_poll_timestamp_seconds",
			Help:      "Unix time of the last completed poll cycle",
		}),
	}

	registry.MustRegister(
		c.pollCycles,
		c.parseFailures,
		c.historyEntries,
		c.historyPruned,
		c.notificationsSent,
		c.notificationsFail,
		c.lastPoll,
	)

	return c
}

// ObserveTracker registers live gauges over an in-process tracker: the
// number of tracked call sites and the interceptor miss count. Call at most
// once per collector.
func (c *Collector) ObserveTracker(trk *tracker.Tracker) {
	c.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_sites",
			Help:      "Number of call sites currently tracked in this process",
		}, func() float64 {
			return float64(trk.Sites())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tap_misses",
			Help:      "Number of log records whose call site could not be resolved",
		}, func() float64 {
			return float64(trk.Misses())
		}),
	)
}

// RecordPollCycle records a completed poll cycle.
func (c *Collector) RecordPollCycle(at time.Time) {
	c.pollCycles.Inc()
	c.lastPoll.Set(float64(at.Unix()))
}

// RecordParseFailure records a poll cycle skipped on an unreadable snapshot.
func (c *Collector) RecordParseFailure() {
	c.parseFailures.Inc()
}

// RecordHistoryAppend records a capture added to history.
func (c *Collector) RecordHistoryAppend() {
	c.historyEntries.Inc()
}

// RecordHistoryPruned records captures removed by retention pruning.
func (c *Collector) RecordHistoryPruned(n int) {
	if n > 0 {
		c.historyPruned.Add(float64(n))
	}
}

// RecordNotification records one delivery attempt outcome.
func (c *Collector) RecordNotification(success bool) {
	if success {
		c.notificationsSent.Inc()
	} else {
		c.notificationsFail.Inc()
	}
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler serving the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
