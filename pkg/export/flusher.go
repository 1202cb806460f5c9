package export

import (
	"log/slog"
	"sync"
	"time"

	"github.com/logcost/logcost-go/pkg/analyzer"
	"github.com/logcost/logcost-go/pkg/tracker"
)

// DefaultFlushInterval is how often the Flusher publishes a snapshot when
// not configured otherwise.
const DefaultFlushInterval = 30 * time.Second

// Flusher periodically exports the tracker to the durable snapshot file
// the sidecar polls. Counters are cumulative: every flush publishes the
// full aggregate, not a delta, so a missed cycle costs nothing.
type Flusher struct {
	trk      *tracker.Tracker
	pricing  analyzer.Pricing
	path     string
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewFlusher creates a Flusher writing priced snapshots of trk to path.
// Intervals below one second fall back to DefaultFlushInterval.
func NewFlusher(trk *tracker.Tracker, pricing analyzer.Pricing, path string, interval time.Duration) *Flusher {
	if interval < time.Second {
		interval = DefaultFlushInterval
	}
	return &Flusher{
		trk:      trk,
		pricing:  pricing,
		path:     path,
		interval: interval,
		logger:   slog.Default().With("component", "flusher"),
	}
}

// Start launches the flush loop. Starting twice is a no-op.
func (f *Flusher) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return
	}
	f.stopCh = make(chan struct{})
	f.doneCh = make(chan struct{})
	f.running = true
	go f.run(f.stopCh, f.doneCh)
	f.logger.Info("flusher started", "path", f.path, "interval", f.interval)
}

func (f *Flusher) run(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := f.Flush(); err != nil {
				f.logger.Error("snapshot flush failed", "error", err, "path", f.path)
			}
		case <-stopCh:
			// Final flush so shutdown never loses the tail of the window.
			if err := f.Flush(); err != nil {
				f.logger.Error("final snapshot flush failed", "error", err, "path", f.path)
			}
			return
		}
	}
}

// Flush publishes the current aggregate once, outside the regular
// cadence. Safe to call whether or not the loop is running.
func (f *Flusher) Flush() error {
	snap := analyzer.ApplyPricing(f.trk.Snapshot(false), f.pricing)
	return WriteSnapshot(f.path, snap)
}

// Stop ends the loop after a final flush and waits for it to finish.
func (f *Flusher) Stop() {
	f.mu.Lock()
	if !f.running {
		f.mu.Unlock()
		return
	}
	f.running = false
	stopCh, doneCh := f.stopCh, f.doneCh
	f.mu.Unlock()

	close(stopCh)
	<-doneCh
	f.logger.Info("flusher stopped")
}
