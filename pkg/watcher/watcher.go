package watcher

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/logcost/logcost-go/pkg/analyzer"
	"github.com/logcost/logcost-go/pkg/export"
	"github.com/logcost/logcost-go/pkg/history"
	"github.com/logcost/logcost-go/pkg/notify"
	"github.com/logcost/logcost-go/pkg/telemetry/metrics"
	"github.com/logcost/logcost-go/pkg/tracker"
)

// State identifies what the control loop is doing right now.
type State int

const (
	// StateIdle means the loop is waiting for the next timer.
	StateIdle State = iota

	// StateWatching means a poll cycle is reading the snapshot file.
	StateWatching

	// StateNotifying means a notification is being built or sent.
	StateNotifying
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWatching:
		return "watching"
	case StateNotifying:
		return "notifying"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config controls the sidecar loop.
type Config struct {
	// WatchPath is the snapshot file to poll.
	WatchPath string

	// PollInterval is the snapshot polling cadence.
	// Default: 60s
	PollInterval time.Duration

	// NotifyInterval is the notification cadence, independent of
	// PollInterval. Default: 1h
	NotifyInterval time.Duration

	// NotifySchedule is an optional cron expression that replaces
	// NotifyInterval, for "daily at 09:00" style delivery.
	NotifySchedule string

	// Retention bounds history entry age.
	// Default: 168h
	Retention time.Duration

	// TrendWindow is the minimum baseline age for trend computation.
	// Default: 24h
	TrendWindow time.Duration

	// TopN is how many call sites a notification carries.
	// Default: 5
	TopN int

	// TestDelay schedules a one-time test notification that long after
	// startup, independent of the regular cadence. Zero disables it.
	TestDelay time.Duration

	// FSNotify enables filesystem wake-ups between polls. Polling
	// remains the correctness baseline either way.
	FSNotify bool

	// ListenAddress exposes /healthz, /v1/status and /metrics when
	// non-empty.
	ListenAddress string
}

// Watcher is the sidecar control loop. It polls the snapshot file,
// maintains bounded history, and fires notifications with trend context.
type Watcher struct {
	config   Config
	analyzer *analyzer.Analyzer
	store    history.Store
	notifier notify.Notifier
	metrics  *metrics.Collector
	logger   *slog.Logger

	mu              sync.RWMutex
	state           State
	started         bool
	running         bool
	startedAt       time.Time
	lastPollAt      time.Time
	pollCount       int64
	parseFailures   int64
	lastError       string
	hasSnapshot     bool
	current         tracker.Snapshot
	lastHash        [sha256.Size]byte
	notifyCount     int64
	lastNotifyAt    time.Time
	lastNotifyCost  float64
	lastNotifyError string

	stopCh chan struct{}
	doneCh chan struct{}
	wakeCh chan struct{}
}

// New creates a watcher. The analyzer prices and ranks whatever the poll
// cycle reads. A nil store falls back to an in-memory history; a nil
// notifier disables notification cycles entirely.
func New(config Config, an *analyzer.Analyzer, store history.Store, notifier notify.Notifier, collector *metrics.Collector) (*Watcher, error) {
	if config.WatchPath == "" {
		return nil, fmt.Errorf("watch path is required")
	}
	if an == nil {
		return nil, fmt.Errorf("analyzer is required")
	}
	if config.NotifySchedule != "" {
		if _, err := cron.ParseStandard(config.NotifySchedule); err != nil {
			return nil, fmt.Errorf("invalid notification schedule %q: %w", config.NotifySchedule, err)
		}
	}

	if config.PollInterval <= 0 {
		config.PollInterval = 60 * time.Second
	}
	if config.NotifyInterval <= 0 {
		config.NotifyInterval = time.Hour
	}
	if config.Retention <= 0 {
		config.Retention = 7 * 24 * time.Hour
	}
	if config.TrendWindow <= 0 {
		config.TrendWindow = 24 * time.Hour
	}
	if config.TopN < 1 {
		config.TopN = 5
	}
	if store == nil {
		store = history.NewMemoryStore()
	}
	if collector == nil {
		collector = metrics.NewCollector(nil)
	}

	return &Watcher{
		config:   config,
		analyzer: an,
		store:    store,
		notifier: notifier,
		metrics:  collector,
		logger:   slog.Default().With("component", "watcher"),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		wakeCh:   make(chan struct{}, 1),
	}, nil
}

// Run drives the loop until ctx is cancelled or Stop is called. The
// in-flight cycle finishes before Run returns. Run can be called once
// for the watcher's lifetime.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return fmt.Errorf("watcher already started")
	}
	w.started = true
	w.running = true
	w.startedAt = time.Now()
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	w.logger.Info("watcher started",
		"watch_path", w.config.WatchPath,
		"poll_interval", w.config.PollInterval,
		"notify_interval", w.config.NotifyInterval,
	)

	// Cycles always run to completion; cancellation is honored at the
	// next loop iteration, not mid-cycle.
	cycle := context.Background()

	// Seed before the status server starts so the first status read
	// already reflects an existing snapshot.
	w.pollOnce(cycle)

	var server *http.Server
	httpErrCh := make(chan error, 1)
	if w.config.ListenAddress != "" {
		server = w.newStatusServer()
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				httpErrCh <- err
			}
		}()
		w.logger.Info("status endpoint listening", "addr", w.config.ListenAddress)
	}

	if w.config.FSNotify {
		stopWake, err := w.startFileWake()
		if err != nil {
			w.logger.Warn("filesystem notifications unavailable, polling only", "error", err)
		} else {
			defer stopWake()
		}
	}

	var notifyTick <-chan time.Time
	cronWake := make(chan struct{}, 1)
	if w.notifier != nil {
		if w.config.NotifySchedule != "" {
			sched := cron.New()
			if _, err := sched.AddFunc(w.config.NotifySchedule, func() {
				select {
				case cronWake <- struct{}{}:
				default:
				}
			}); err != nil {
				_ = w.shutdownServer(server)
				return fmt.Errorf("failed to schedule notifications: %w", err)
			}
			sched.Start()
			defer func() { <-sched.Stop().Done() }()
			w.logger.Info("notification schedule active", "schedule", w.config.NotifySchedule)
		} else {
			notifyTicker := time.NewTicker(w.config.NotifyInterval)
			defer notifyTicker.Stop()
			notifyTick = notifyTicker.C
		}
	}

	var testCh <-chan time.Time
	if w.config.TestDelay > 0 && w.notifier != nil {
		testTimer := time.NewTimer(w.config.TestDelay)
		defer testTimer.Stop()
		testCh = testTimer.C
	}

	pollTicker := time.NewTicker(w.config.PollInterval)
	defer pollTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped", "reason", "context cancelled")
			return w.shutdownServer(server)
		case <-w.stopCh:
			w.logger.Info("watcher stopped")
			return w.shutdownServer(server)
		case err := <-httpErrCh:
			return fmt.Errorf("status server failed: %w", err)
		case <-pollTicker.C:
			w.pollOnce(cycle)
		case <-w.wakeCh:
			w.pollOnce(cycle)
		case <-notifyTick:
			w.notifyOnce(cycle, false)
		case <-cronWake:
			w.notifyOnce(cycle, false)
		case <-testCh:
			w.notifyOnce(cycle, true)
		}
	}
}

// Stop signals the loop to exit and waits for the in-flight cycle to
// finish. It is a no-op if the watcher is not running.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
}

// pollOnce runs a single poll cycle: read, hash, decode, and capture the
// snapshot if it changed. Failures skip the cycle, never abort the loop.
func (w *Watcher) pollOnce(ctx context.Context) {
	w.setState(StateWatching)
	defer w.setState(StateIdle)

	now := time.Now()
	w.metrics.RecordPollCycle(now)

	data, err := os.ReadFile(w.config.WatchPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// The producer may not have flushed yet.
			w.logger.Debug("snapshot file not present", "path", w.config.WatchPath)
			w.finishPoll(now, "")
		} else {
			w.logger.Warn("snapshot file unreadable, skipping cycle",
				"path", w.config.WatchPath,
				"error", err,
			)
			w.finishPoll(now, err.Error())
		}
		return
	}

	snap, err := export.DecodeSnapshot(data)
	if err != nil {
		parseErr := &SnapshotParseError{Path: w.config.WatchPath, Cause: err}
		w.metrics.RecordParseFailure()
		w.logger.Warn("snapshot unparsable, skipping cycle", "error", parseErr)

		w.mu.Lock()
		w.parseFailures++
		w.mu.Unlock()
		w.finishPoll(now, parseErr.Error())
		return
	}

	hash := sha256.Sum256(data)

	w.mu.RLock()
	changed := !w.hasSnapshot || hash != w.lastHash
	w.mu.RUnlock()

	var cycleErr string
	if changed {
		if err := w.captureChange(ctx, snap, now); err != nil {
			cycleErr = err.Error()
		}
	}

	w.mu.Lock()
	w.current = snap
	w.hasSnapshot = true
	w.lastHash = hash
	w.mu.Unlock()

	w.finishPoll(now, cycleErr)
}

func (w *Watcher) finishPoll(at time.Time, errMsg string) {
	w.mu.Lock()
	w.lastPollAt = at
	w.pollCount++
	w.lastError = errMsg
	w.mu.Unlock()
}

// captureChange appends a history entry for a changed snapshot and
// prunes entries past the retention age.
func (w *Watcher) captureChange(ctx context.Context, snap tracker.Snapshot, now time.Time) error {
	entry := history.NewEntry(snap)
	if err := w.store.Append(ctx, entry); err != nil {
		w.logger.Error("failed to append history entry", "error", err)
		return fmt.Errorf("append history entry: %w", err)
	}
	w.metrics.RecordHistoryAppend()
	w.logger.Info("snapshot change captured",
		"entry_id", entry.ID,
		"total_bytes", snap.TotalBytes,
		"total_cost", snap.TotalCost,
	)

	deleted, err := w.store.Prune(ctx, now.Add(-w.config.Retention))
	if err != nil {
		w.logger.Error("failed to prune history", "error", err)
		return fmt.Errorf("prune history: %w", err)
	}
	if deleted > 0 {
		w.metrics.RecordHistoryPruned(deleted)
		w.logger.Info("history pruned",
			"deleted_count", deleted,
			"retention", w.config.Retention,
		)
	}
	return nil
}

// notifyOnce runs a single notification cycle. Delivery failures are
// recorded and skipped; the next interval is the only retry.
func (w *Watcher) notifyOnce(ctx context.Context, test bool) {
	if w.notifier == nil {
		return
	}

	w.setState(StateNotifying)
	defer w.setState(StateIdle)

	w.mu.RLock()
	snap := w.current
	has := w.hasSnapshot
	w.mu.RUnlock()

	if !has {
		w.logger.Debug("no snapshot observed yet, skipping notification")
		return
	}

	report := w.analyzer.BuildReport(snap, w.config.TopN)

	var trendPct *float64
	entries, err := w.store.List(ctx)
	if err != nil {
		w.logger.Error("failed to list history for trend", "error", err)
	} else {
		trendPct = Trend(report.TotalCost, entries, time.Now(), w.config.TrendWindow)
	}

	payload := notify.PayloadFromReport(report, trendPct, test)

	if err := w.notifier.Send(ctx, payload); err != nil {
		w.metrics.RecordNotification(false)
		w.logger.Warn("notification delivery failed, next interval retries",
			"report_id", payload.ReportID,
			"error", err,
		)
		w.mu.Lock()
		w.lastNotifyError = err.Error()
		w.mu.Unlock()
		return
	}

	w.metrics.RecordNotification(true)
	w.logger.Info("notification delivered",
		"report_id", payload.ReportID,
		"total_cost", report.TotalCost,
		"test", test,
	)

	w.mu.Lock()
	w.notifyCount++
	w.lastNotifyAt = time.Now()
	w.lastNotifyCost = report.TotalCost
	w.lastNotifyError = ""
	w.mu.Unlock()
}

func (w *Watcher) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

// State reports what the loop is doing right now.
func (w *Watcher) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}
