// Package metrics exposes the sidecar's own operational metrics.
//
// These are metrics ABOUT logcost (poll cycles, parse failures, delivery
// outcomes), not the per-statement cost metrics derived from a snapshot;
// those are written by pkg/export in textfile form.
//
// # Usage
//
//	collector := metrics.NewCollector(nil)
//	collector.ObserveTracker(trk)
//	http.Handle("/metrics", collector.Handler())
//
// All metrics live under the "logcost" namespace on a private registry, so
// embedding the collector in a host application never collides with the
// host's own Prometheus metrics.
package metrics
