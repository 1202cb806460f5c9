package watcher

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Status is served at /v1/status.
type Status struct {
	State             string    `json:"state"`
	StartedAt         time.Time `json:"started_at"`
	WatchPath         string    `json:"watch_path"`
	PollIntervalSec   int       `json:"poll_interval_sec"`
	NotifyIntervalSec int       `json:"notify_interval_sec"`
	NotifySchedule    string    `json:"notify_schedule,omitempty"`
	PollCount         int64     `json:"poll_count"`
	ParseFailures     int64     `json:"parse_failures"`
	LastPollAt        time.Time `json:"last_poll_at"`
	LastError         string    `json:"last_error,omitempty"`
	HasSnapshot       bool      `json:"has_snapshot"`
	TotalBytes        int64     `json:"total_bytes"`
	TotalCost         float64   `json:"total_cost"`
	TrackedSites      int       `json:"tracked_sites"`
	NotifyCount       int64     `json:"notify_count"`
	LastNotifyAt      time.Time `json:"last_notify_at"`
	LastNotifyCost    float64   `json:"last_notify_cost"`
	LastNotifyError   string    `json:"last_notify_error,omitempty"`
}

// Status reports loop progress. It never touches the history store, so
// it is safe to call from request handlers at any rate.
func (w *Watcher) Status() Status {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return Status{
		State:             w.state.String(),
		StartedAt:         w.startedAt,
		WatchPath:         w.config.WatchPath,
		PollIntervalSec:   int(w.config.PollInterval.Seconds()),
		NotifyIntervalSec: int(w.config.NotifyInterval.Seconds()),
		NotifySchedule:    w.config.NotifySchedule,
		PollCount:         w.pollCount,
		ParseFailures:     w.parseFailures,
		LastPollAt:        w.lastPollAt,
		LastError:         w.lastError,
		HasSnapshot:       w.hasSnapshot,
		TotalBytes:        w.current.TotalBytes,
		TotalCost:         w.current.TotalCost,
		TrackedSites:      len(w.current.Entries),
		NotifyCount:       w.notifyCount,
		LastNotifyAt:      w.lastNotifyAt,
		LastNotifyCost:    w.lastNotifyCost,
		LastNotifyError:   w.lastNotifyError,
	}
}

func (w *Watcher) newStatusServer() *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", w.handleHealth)
	mux.HandleFunc("/v1/status", w.handleStatus)
	mux.Handle("/metrics", w.metrics.Handler())

	return &http.Server{
		Addr:              w.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (w *Watcher) shutdownServer(server *http.Server) error {
	if server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func (w *Watcher) handleHealth(rw http.ResponseWriter, _ *http.Request) {
	rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = rw.Write([]byte("ok\n"))
}

func (w *Watcher) handleStatus(rw http.ResponseWriter, _ *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(w.Status())
}
