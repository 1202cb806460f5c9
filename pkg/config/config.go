package config

import (
	"path/filepath"
	"time"

	"github.com/logcost/logcost-go/pkg/analyzer"
)

// Config is the root configuration shared by the tracker, sidecar and CLI.
type Config struct {
	// Provider selects the pricing table (gcp/aws/azure).
	Provider string `yaml:"provider"`

	// PricePerGiB overrides the provider pricing table when > 0.
	PricePerGiB float64 `yaml:"price_per_gib"`

	// Output configures in-process snapshot flushing.
	Output OutputConfig `yaml:"output"`

	// Watcher configures the sidecar poll loop.
	Watcher WatcherConfig `yaml:"watcher"`

	// History configures snapshot retention.
	History HistoryConfig `yaml:"history"`

	// Notify configures notification cadence and delivery.
	Notify NotifyConfig `yaml:"notify"`

	// Analysis configures report building and anti-pattern detection.
	Analysis AnalysisConfig `yaml:"analysis"`

	// Tap configures call-site resolution.
	Tap TapConfig `yaml:"tap"`

	// HTTP configures the sidecar status endpoint.
	HTTP HTTPConfig `yaml:"http"`

	// Logging configures the sidecar's own log output.
	Logging LoggingConfig `yaml:"logging"`
}

// OutputConfig controls how an instrumented process publishes snapshots.
type OutputConfig struct {
	// Path is the snapshot file the flusher writes.
	// Default: /tmp/logcost_stats.json
	Path string `yaml:"path"`

	// FlushInterval is how often the tracker state is flushed to disk.
	// Default: 30 seconds
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// WatcherConfig controls the sidecar's poll loop.
type WatcherConfig struct {
	// WatchPath is the snapshot file the sidecar polls.
	// Default: /var/log/logcost/stats.json
	WatchPath string `yaml:"watch_path"`

	// PollInterval is the poll cadence. Polling cadence is independent of
	// notification cadence.
	// Default: 60 seconds
	PollInterval time.Duration `yaml:"poll_interval"`

	// FSNotify enables an immediate poll when the snapshot directory
	// changes. Polling continues regardless.
	// Default: true
	FSNotify bool `yaml:"fsnotify"`
}

// HistoryConfig controls snapshot history retention.
type HistoryConfig struct {
	// Dir is the directory holding the history database.
	// Default: /var/log/logcost/history
	Dir string `yaml:"dir"`

	// Retention is how long captures are kept.
	// Default: 168h (7 days)
	Retention time.Duration `yaml:"retention"`

	// TrendWindow is the minimum age of a capture used as trend baseline.
	// Default: 24h
	TrendWindow time.Duration `yaml:"trend_window"`
}

// NotifyConfig controls notification cadence and delivery.
type NotifyConfig struct {
	// SlackWebhook is the Slack incoming-webhook URL. Empty disables
	// notifications.
	SlackWebhook string `yaml:"slack_webhook"`

	// Interval is the time between notifications.
	// Default: 1 hour
	Interval time.Duration `yaml:"interval"`

	// Schedule is an optional cron expression (standard 5-field spec)
	// replacing the fixed interval, e.g. "0 9 * * *" for daily at 09:00.
	Schedule string `yaml:"schedule"`

	// TopN is the number of top statements included per notification.
	// Default: 5
	TopN int `yaml:"top_n"`

	// TestDelay schedules a one-time test notification this long after
	// startup. Zero disables it.
	TestDelay time.Duration `yaml:"test_delay"`
}

// AnalysisConfig controls report building.
type AnalysisConfig struct {
	// HighFrequencyThreshold flags sites with more calls than this.
	// Default: 1000
	HighFrequencyThreshold int64 `yaml:"high_frequency_threshold"`

	// LargePayloadThreshold flags sites averaging more bytes per call.
	// Default: 5000
	LargePayloadThreshold float64 `yaml:"large_payload_threshold"`

	// TopN is the number of top statements highlighted in reports.
	// Default: 10
	TopN int `yaml:"top_n"`
}

// TapConfig controls call-site resolution.
type TapConfig struct {
	// IgnorePrefixes lists function prefixes skipped during attribution,
	// typically logging helpers and wrapper packages.
	IgnorePrefixes []string `yaml:"ignore_prefixes"`
}

// HTTPConfig controls the sidecar status endpoint.
type HTTPConfig struct {
	// ListenAddress is the address the sidecar serves /healthz, /v1/status
	// and /metrics on. Empty disables the endpoint.
	ListenAddress string `yaml:"listen_address"`
}

// LoggingConfig controls the sidecar's own log output.
type LoggingConfig struct {
	// Level is the minimum log level (debug/info/warn/error).
	// Default: info
	Level string `yaml:"level"`

	// Format selects json or text output.
	// Default: json
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() *Config {
	return &Config{
		Provider: "gcp",
		Output: OutputConfig{
			Path:          "/tmp/logcost_stats.json",
			FlushInterval: 30 * time.Second,
		},
		Watcher: WatcherConfig{
			WatchPath:    "/var/log/logcost/stats.json",
			PollInterval: 60 * time.Second,
			FSNotify:     true,
		},
		History: HistoryConfig{
			Dir:         "/var/log/logcost/history",
			Retention:   7 * 24 * time.Hour,
			TrendWindow: 24 * time.Hour,
		},
		Notify: NotifyConfig{
			Interval: time.Hour,
			TopN:     5,
		},
		Analysis: AnalysisConfig{
			HighFrequencyThreshold: 1000,
			LargePayloadThreshold:  5000,
			TopN:                   10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// ApplyDefaults fills unset fields with their defaults. Boolean fields are
// not touched; construct via DefaultConfig or Load to get their defaults.
func ApplyDefaults(cfg *Config) {
	def := DefaultConfig()

	if cfg.Provider == "" {
		cfg.Provider = def.Provider
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = def.Output.Path
	}
	if cfg.Output.FlushInterval == 0 {
		cfg.Output.FlushInterval = def.Output.FlushInterval
	}
	if cfg.Watcher.WatchPath == "" {
		cfg.Watcher.WatchPath = def.Watcher.WatchPath
	}
	if cfg.Watcher.PollInterval == 0 {
		cfg.Watcher.PollInterval = def.Watcher.PollInterval
	}
	if cfg.History.Dir == "" {
		cfg.History.Dir = def.History.Dir
	}
	if cfg.History.Retention == 0 {
		cfg.History.Retention = def.History.Retention
	}
	if cfg.History.TrendWindow == 0 {
		cfg.History.TrendWindow = def.History.TrendWindow
	}
	if cfg.Notify.Interval == 0 {
		cfg.Notify.Interval = def.Notify.Interval
	}
	if cfg.Notify.TopN == 0 {
		cfg.Notify.TopN = def.Notify.TopN
	}
	if cfg.Analysis.HighFrequencyThreshold == 0 {
		cfg.Analysis.HighFrequencyThreshold = def.Analysis.HighFrequencyThreshold
	}
	if cfg.Analysis.LargePayloadThreshold == 0 {
		cfg.Analysis.LargePayloadThreshold = def.Analysis.LargePayloadThreshold
	}
	if cfg.Analysis.TopN == 0 {
		cfg.Analysis.TopN = def.Analysis.TopN
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Logging.Format
	}
}

// Pricing resolves the pricing the configuration selects: the explicit
// per-GiB override when set, otherwise the provider's table entry.
func (c *Config) Pricing() (analyzer.Pricing, error) {
	if c.PricePerGiB > 0 {
		return analyzer.Pricing{Provider: c.Provider, Currency: "USD", PerGiB: c.PricePerGiB}, nil
	}
	return analyzer.PricingFor(c.Provider)
}

// Thresholds returns the anti-pattern thresholds as the analyzer consumes
// them.
func (c *Config) Thresholds() analyzer.Thresholds {
	return analyzer.Thresholds{
		HighFrequency: c.Analysis.HighFrequencyThreshold,
		LargePayload:  c.Analysis.LargePayloadThreshold,
	}
}

// HistoryDBPath returns the history database file under the history dir.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.History.Dir, "history.db")
}
