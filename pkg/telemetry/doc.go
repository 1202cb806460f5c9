// Package telemetry provides observability for the LogCost sidecar.
//
// # Overview
//
// The telemetry package covers the sidecar's own operational visibility:
// structured logging and Prometheus metrics. Cost attribution itself lives
// in the tracker and analyzer packages; telemetry only reports on how the
// sidecar is running.
//
// # Components
//
//   - logging: structured log/slog setup (level, format, destination)
//   - metrics: Prometheus counters and gauges for the watch loop
//
// # Usage
//
//	logger, err := logging.Setup(logging.Config{Level: "info", Format: "json"})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
//	collector := metrics.NewCollector(nil)
//	collector.RecordPollCycle(time.Now())
//
// The metrics collector registers on a prometheus.Registry and is served
// by the watcher's /metrics endpoint.
package telemetry
