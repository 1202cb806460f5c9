package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/logcost/logcost-go/pkg/analyzer"
	"github.com/logcost/logcost-go/pkg/telemetry/logging"
)

// Sanitize coerces out-of-range values back to their defaults and returns a
// message for each adjustment. It never fails: a bad value costs a warning,
// not the process.
func Sanitize(cfg *Config) []string {
	var adjustments []string
	def := DefaultConfig()

	fixDuration := func(field string, value *time.Duration, fallback time.Duration) {
		if *value <= 0 {
			adjustments = append(adjustments, fmt.Sprintf("%s %v is not positive, using %v", field, *value, fallback))
			*value = fallback
		}
	}
	fixCount := func(field string, value *int, fallback int) {
		if *value < 1 {
			adjustments = append(adjustments, fmt.Sprintf("%s %d is below 1, using %d", field, *value, fallback))
			*value = fallback
		}
	}

	fixDuration("output.flush_interval", &cfg.Output.FlushInterval, def.Output.FlushInterval)
	fixDuration("watcher.poll_interval", &cfg.Watcher.PollInterval, def.Watcher.PollInterval)
	fixDuration("history.retention", &cfg.History.Retention, def.History.Retention)
	fixDuration("history.trend_window", &cfg.History.TrendWindow, def.History.TrendWindow)
	fixDuration("notify.interval", &cfg.Notify.Interval, def.Notify.Interval)

	fixCount("notify.top_n", &cfg.Notify.TopN, def.Notify.TopN)
	fixCount("analysis.top_n", &cfg.Analysis.TopN, def.Analysis.TopN)

	if cfg.Analysis.HighFrequencyThreshold < 1 {
		adjustments = append(adjustments, fmt.Sprintf("analysis.high_frequency_threshold %d is below 1, using %d",
			cfg.Analysis.HighFrequencyThreshold, def.Analysis.HighFrequencyThreshold))
		cfg.Analysis.HighFrequencyThreshold = def.Analysis.HighFrequencyThreshold
	}
	if cfg.Analysis.LargePayloadThreshold <= 0 {
		adjustments = append(adjustments, fmt.Sprintf("analysis.large_payload_threshold %g is not positive, using %g",
			cfg.Analysis.LargePayloadThreshold, def.Analysis.LargePayloadThreshold))
		cfg.Analysis.LargePayloadThreshold = def.Analysis.LargePayloadThreshold
	}

	if cfg.PricePerGiB < 0 {
		adjustments = append(adjustments, fmt.Sprintf("price_per_gib %g is negative, using provider pricing", cfg.PricePerGiB))
		cfg.PricePerGiB = 0
	}

	// A custom price bypasses the provider table, so only check the provider
	// name when pricing will be looked up.
	if cfg.PricePerGiB == 0 {
		if _, err := analyzer.PricingFor(cfg.Provider); err != nil {
			adjustments = append(adjustments, fmt.Sprintf("provider %q is not recognized, using %q", cfg.Provider, def.Provider))
			cfg.Provider = def.Provider
		}
	}

	if cfg.Notify.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Notify.Schedule); err != nil {
			adjustments = append(adjustments, fmt.Sprintf("notify.schedule %q is not a valid cron expression, using interval delivery", cfg.Notify.Schedule))
			cfg.Notify.Schedule = ""
		}
	}

	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		adjustments = append(adjustments, fmt.Sprintf("logging.level %q is not recognized, using %q", cfg.Logging.Level, def.Logging.Level))
		cfg.Logging.Level = def.Logging.Level
	}
	if _, err := logging.ParseFormat(cfg.Logging.Format); err != nil {
		adjustments = append(adjustments, fmt.Sprintf("logging.format %q is not recognized, using %q", cfg.Logging.Format, def.Logging.Format))
		cfg.Logging.Format = def.Logging.Format
	}

	return adjustments
}
