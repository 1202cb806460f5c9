package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a YAML file. File values are layered over
// DefaultConfig, then sanitized. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(cfg)
	logAdjustments(Sanitize(cfg))
	return cfg, nil
}

// LoadWithEnv loads configuration from a YAML file and applies LOGCOST_*
// environment variable overrides. Environment variables take precedence
// over file values.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	logAdjustments(Sanitize(cfg))
	return cfg, nil
}

// FromEnv returns the default configuration with environment overrides
// applied. Instrumented applications use this when no file is involved.
func FromEnv() *Config {
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	logAdjustments(Sanitize(cfg))
	return cfg
}

func logAdjustments(adjustments []string) {
	logger := slog.Default().With("component", "config")
	for _, adj := range adjustments {
		logger.Warn("configuration value adjusted", "detail", adj)
	}
}

// applyEnvOverrides applies LOGCOST_* environment variables to the
// configuration. Interval variables keep their original units: seconds for
// LOGCOST_NOTIFICATION_INTERVAL, days for LOGCOST_HISTORY_RETENTION.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("LOGCOST_OUTPUT"); val != "" {
		cfg.Output.Path = val
	}
	if val := os.Getenv("LOGCOST_WATCH_PATH"); val != "" {
		cfg.Watcher.WatchPath = val
	}
	if val := os.Getenv("LOGCOST_HISTORY_DIR"); val != "" {
		cfg.History.Dir = val
	}
	if val := os.Getenv("LOGCOST_SLACK_WEBHOOK"); val != "" {
		cfg.Notify.SlackWebhook = val
	}
	if val := os.Getenv("LOGCOST_PROVIDER"); val != "" {
		cfg.Provider = val
	}
	if val := os.Getenv("LOGCOST_HTTP_ADDR"); val != "" {
		cfg.HTTP.ListenAddress = val
	}
	if val := os.Getenv("LOGCOST_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("LOGCOST_POLL_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Watcher.PollInterval = d
		} else {
			warnInvalidEnv("LOGCOST_POLL_INTERVAL", val)
		}
	}

	if n, ok := getEnvInt("LOGCOST_NOTIFICATION_INTERVAL"); ok {
		cfg.Notify.Interval = time.Duration(n) * time.Second
	}
	if n, ok := getEnvInt("LOGCOST_HISTORY_RETENTION"); ok {
		cfg.History.Retention = time.Duration(n) * 24 * time.Hour
	}
	if n, ok := getEnvInt("LOGCOST_NOTIFICATION_TOP_N"); ok {
		cfg.Notify.TopN = n
	}
}

// getEnvInt reads an integer environment variable. An unparseable value is
// reported and ignored, keeping whatever the variable would have replaced.
func getEnvInt(name string) (int, bool) {
	val := os.Getenv(name)
	if val == "" {
		return 0, false
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		warnInvalidEnv(name, val)
		return 0, false
	}
	return n, true
}

func warnInvalidEnv(name, val string) {
	slog.Default().With("component", "config").Warn("invalid environment value, using default",
		"variable", name,
		"value", val,
	)
}
