package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/logcost/logcost-go/pkg/analyzer"
	"github.com/logcost/logcost-go/pkg/cli"
	"github.com/logcost/logcost-go/pkg/config"
	"github.com/logcost/logcost-go/pkg/history"
	"github.com/logcost/logcost-go/pkg/notify"
	"github.com/logcost/logcost-go/pkg/telemetry/logging"
	"github.com/logcost/logcost-go/pkg/watcher"
)

var sidecarFlags struct {
	watchPath      string
	webhookURL     string
	listenAddress  string
	pollInterval   time.Duration
	notifyInterval time.Duration
	schedule       string
	historyDir     string
	provider       string
	testDelay      time.Duration
}

var sidecarCmd = &cobra.Command{
	Use:   "sidecar",
	Short: "Watch a snapshot file and post cost reports",
	Long: `Run the LogCost sidecar: poll an exported snapshot file, keep a
history of changes, and post periodic cost reports to Slack.

The sidecar polls on a fixed interval and, when the snapshot directory
supports it, wakes early on file change notifications. A corrupt or
missing snapshot skips the cycle; the loop never stops because of one.

Configuration comes from the config file, LOGCOST_* environment
variables, and flags, in that order of precedence.

Examples:
  # Watch the default path, no notifications
  logcost sidecar

  # Post hourly reports to Slack
  logcost sidecar --watch /var/log/logcost/stats.json \
    --webhook https://hooks.slack.com/services/T000/B000/XXXX

  # Daily report at 09:00 instead of a fixed interval
  logcost sidecar --webhook $WEBHOOK --schedule "0 9 * * *"

  # Expose /healthz, /v1/status and /metrics
  logcost sidecar --listen :9090`,
	RunE: runSidecar,
}

func init() {
	rootCmd.AddCommand(sidecarCmd)

	sidecarCmd.Flags().StringVarP(&sidecarFlags.watchPath, "watch", "w", "", "snapshot file to watch (overrides config)")
	sidecarCmd.Flags().StringVar(&sidecarFlags.webhookURL, "webhook", "", "Slack incoming-webhook URL")
	sidecarCmd.Flags().StringVarP(&sidecarFlags.listenAddress, "listen", "l", "", "status endpoint address, e.g. :9090")
	sidecarCmd.Flags().DurationVar(&sidecarFlags.pollInterval, "poll-interval", 0, "poll cadence (overrides config)")
	sidecarCmd.Flags().DurationVar(&sidecarFlags.notifyInterval, "notify-interval", 0, "notification cadence (overrides config)")
	sidecarCmd.Flags().StringVar(&sidecarFlags.schedule, "schedule", "", `cron notification schedule, e.g. "0 9 * * *"`)
	sidecarCmd.Flags().StringVar(&sidecarFlags.historyDir, "history-dir", "", "history database directory (overrides config)")
	sidecarCmd.Flags().StringVar(&sidecarFlags.provider, "provider", "", "pricing provider (gcp, aws, azure)")
	sidecarCmd.Flags().DurationVar(&sidecarFlags.testDelay, "test-delay", 0, "send a test notification this long after startup")
}

func runSidecar(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithEnv(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	// Apply flag overrides
	if sidecarFlags.watchPath != "" {
		cfg.Watcher.WatchPath = sidecarFlags.watchPath
	}
	if sidecarFlags.webhookURL != "" {
		cfg.Notify.SlackWebhook = sidecarFlags.webhookURL
	}
	if sidecarFlags.listenAddress != "" {
		cfg.HTTP.ListenAddress = sidecarFlags.listenAddress
	}
	if sidecarFlags.pollInterval > 0 {
		cfg.Watcher.PollInterval = sidecarFlags.pollInterval
	}
	if sidecarFlags.notifyInterval > 0 {
		cfg.Notify.Interval = sidecarFlags.notifyInterval
	}
	if sidecarFlags.schedule != "" {
		cfg.Notify.Schedule = sidecarFlags.schedule
	}
	if sidecarFlags.historyDir != "" {
		cfg.History.Dir = sidecarFlags.historyDir
	}
	if sidecarFlags.provider != "" {
		cfg.Provider = sidecarFlags.provider
	}
	if sidecarFlags.testDelay > 0 {
		cfg.Notify.TestDelay = sidecarFlags.testDelay
	}

	// Initialize logging
	logLevel := cfg.Logging.Level
	if verbose {
		logLevel = "debug"
	}
	logger, err := logging.Setup(logging.Config{
		Level:  logLevel,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return cli.NewConfigError("logging", err.Error())
	}
	slog.SetDefault(logger)

	pricing, err := cfg.Pricing()
	if err != nil {
		return cli.NewConfigError("provider", err.Error())
	}
	an := analyzer.New(pricing, cfg.Thresholds())

	if err := os.MkdirAll(cfg.History.Dir, 0o755); err != nil {
		return cli.NewCommandError("sidecar", fmt.Errorf("create history dir: %w", err))
	}
	store, err := history.NewSQLiteStore(history.SQLiteConfig{Path: cfg.HistoryDBPath()})
	if err != nil {
		return cli.NewCommandError("sidecar", fmt.Errorf("open history store: %w", err))
	}
	defer store.Close()

	var notifier notify.Notifier
	if cfg.Notify.SlackWebhook != "" {
		slack, err := notify.NewSlackNotifier(notify.SlackConfig{WebhookURL: cfg.Notify.SlackWebhook})
		if err != nil {
			return cli.NewConfigError("notify.slack_webhook", err.Error())
		}
		notifier = slack
	} else {
		slog.Warn("no webhook configured, notifications disabled")
	}

	w, err := watcher.New(watcher.Config{
		WatchPath:      cfg.Watcher.WatchPath,
		PollInterval:   cfg.Watcher.PollInterval,
		FSNotify:       cfg.Watcher.FSNotify,
		NotifyInterval: cfg.Notify.Interval,
		NotifySchedule: cfg.Notify.Schedule,
		TopN:           cfg.Notify.TopN,
		TestDelay:      cfg.Notify.TestDelay,
		Retention:      cfg.History.Retention,
		TrendWindow:    cfg.History.TrendWindow,
		ListenAddress:  cfg.HTTP.ListenAddress,
	}, an, store, notifier, nil)
	if err != nil {
		return cli.NewCommandError("sidecar", err)
	}

	ctx := cli.SetupSignalHandler()
	if err := w.Run(ctx); err != nil {
		return cli.NewCommandError("sidecar", err)
	}
	return nil
}
