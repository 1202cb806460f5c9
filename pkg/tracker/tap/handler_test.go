package tap_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/logcost/logcost-go/pkg/tracker"
	"github.com/logcost/logcost-go/pkg/tracker/tap"
)

// countingHandler records how often it was delegated to and returns a
// configurable error.
type countingHandler struct {
	handled int
	err     error
}

func (c *countingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (c *countingHandler) Handle(context.Context, slog.Record) error {
	c.handled++
	return c.err
}
func (c *countingHandler) WithAttrs([]slog.Attr) slog.Handler { return c }
func (c *countingHandler) WithGroup(string) slog.Handler      { return c }

func newTestLogger(trk *tracker.Tracker) (*slog.Logger, *tap.Handler) {
	inner := slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug})
	h := tap.NewHandler(inner, trk)
	return slog.New(h), h
}

func TestHandler_MetersRecords(t *testing.T) {
	trk := tracker.New()
	logger, _ := newTestLogger(trk)

	for i := 0; i < 3; i++ {
		logger.Info("request handled")
	}

	snap := trk.Snapshot(false)
	if len(snap.Entries) != 1 {
		t.Fatalf("Expected 1 call site, got %d", len(snap.Entries))
	}

	e := snap.Entries[0]
	if e.Count != 3 {
		t.Errorf("Expected count 3, got %d", e.Count)
	}
	if e.Level != tracker.LevelInfo {
		t.Errorf("Expected level INFO, got %s", e.Level)
	}
	if e.Template != "request handled" {
		t.Errorf("Expected message template, got %q", e.Template)
	}
	if !strings.HasSuffix(e.File, "handler_test.go") {
		t.Errorf("Expected attribution to this test file, got %s", e.File)
	}
	if e.Bytes != 3*int64(len("request handled")) {
		t.Errorf("Expected %d bytes, got %d", 3*len("request handled"), e.Bytes)
	}
}

func TestHandler_DelegatesExactlyOnce(t *testing.T) {
	trk := tracker.New()
	inner := &countingHandler{err: errors.New("sink failed")}
	h := tap.NewHandler(inner, trk)

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0)
	err := h.Handle(context.Background(), r)

	if inner.handled != 1 {
		t.Errorf("Expected exactly one delegation, got %d", inner.handled)
	}
	if err == nil || err.Error() != "sink failed" {
		t.Errorf("Expected wrapped handler error unchanged, got %v", err)
	}
}

func TestHandler_LevelMapping(t *testing.T) {
	trk := tracker.New()
	logger, _ := newTestLogger(trk)
	ctx := context.Background()

	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, tracker.LevelDebug},
		{slog.LevelInfo, tracker.LevelInfo},
		{slog.LevelWarn, tracker.LevelWarning},
		{slog.LevelError, tracker.LevelError},
		{slog.LevelError + 4, tracker.LevelCritical},
	}
	for _, tc := range tests {
		logger.Log(ctx, tc.level, "level probe")
	}

	snap := trk.Snapshot(false)
	seen := map[string]bool{}
	for _, e := range snap.Entries {
		seen[e.Level] = true
	}
	for _, tc := range tests {
		if !seen[tc.want] {
			t.Errorf("Expected a %s entry for slog level %v", tc.want, tc.level)
		}
	}
}

func TestHandler_GatedLevelsNotMetered(t *testing.T) {
	trk := tracker.New()
	// Inner handler gates at INFO, so DEBUG records never reach Handle.
	inner := slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(tap.NewHandler(inner, trk))

	logger.Debug("suppressed")

	if got := trk.Sites(); got != 0 {
		t.Errorf("Expected gated record to go unmetered, got %d sites", got)
	}
}

// logVia is a helper layer between the test and the logger, used to verify
// that ignore prefixes skip helper frames.
func logVia(logger *slog.Logger) {
	logger.Info("through helper")
}

func TestHandler_IgnoreSkipsHelperFrames(t *testing.T) {
	const helperFn = "github.com/logcost/logcost-go/pkg/tracker/tap_test.logVia"

	// Without an ignore entry, cost lands on the helper's own line.
	plain := tracker.New()
	plainLogger, _ := newTestLogger(plain)
	logVia(plainLogger)
	helperSite := plain.Snapshot(false).Entries[0].Site()

	// With the helper ignored, cost lands on the caller of the helper.
	ignoring := tracker.New()
	ignoringLogger, h := newTestLogger(ignoring)
	h.Ignore(helperFn)
	logVia(ignoringLogger)
	callerSite := ignoring.Snapshot(false).Entries[0].Site()

	if callerSite == helperSite {
		t.Fatalf("Expected ignore prefix to move attribution off the helper, both resolved to %v", helperSite)
	}
	if !strings.HasSuffix(callerSite.File, "handler_test.go") {
		t.Errorf("Expected attribution to the helper's caller, got %s", callerSite.File)
	}
}

func TestHandler_AllFramesIgnoredFallsBackToImmediateCaller(t *testing.T) {
	trk := tracker.New()
	logger, h := newTestLogger(trk)
	// Ignoring the entire test package and the test runner leaves no
	// attributable frame; the immediate caller past the machinery is the
	// fallback.
	h.Ignore("github.com/logcost/logcost-go/pkg/tracker/tap_test.", "testing.")

	logVia(logger)

	snap := trk.Snapshot(false)
	if len(snap.Entries) != 1 {
		t.Fatalf("Expected fallback attribution, got %d entries", len(snap.Entries))
	}
	if !strings.HasSuffix(snap.Entries[0].File, "handler_test.go") {
		t.Errorf("Expected fallback to the immediate caller, got %s", snap.Entries[0].File)
	}
	if trk.Misses() != 0 {
		t.Errorf("Fallback must not count as a miss, got %d", trk.Misses())
	}
}

func TestHandler_WithAttrsChargesPrefix(t *testing.T) {
	plain := tracker.New()
	plainLogger, _ := newTestLogger(plain)
	plainLogger.Info("x")

	withAttrs := tracker.New()
	logger, _ := newTestLogger(withAttrs)
	logger.With("component", "api").Info("x")

	plainBytes := plain.Snapshot(false).Entries[0].Bytes
	attrBytes := withAttrs.Snapshot(false).Entries[0].Bytes

	// "component=api " adds len(key)+1+len(value)+1 = 14 bytes.
	if attrBytes != plainBytes+14 {
		t.Errorf("Expected attr prefix to add 14 bytes: plain=%d with=%d", plainBytes, attrBytes)
	}
}

func TestHandler_AttrBytesCounted(t *testing.T) {
	trk := tracker.New()
	logger, _ := newTestLogger(trk)

	logger.Info("msg", "key", "value")

	e := trk.Snapshot(false).Entries[0]
	// "msg" + "key=value " = 3 + 11
	want := int64(len("msg") + len("key") + 1 + len("value") + 1)
	if e.Bytes != want {
		t.Errorf("Expected %d bytes, got %d", want, e.Bytes)
	}
}

func TestHandler_EnabledDelegates(t *testing.T) {
	trk := tracker.New()
	inner := slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	h := tap.NewHandler(inner, trk)

	ctx := context.Background()
	if h.Enabled(ctx, slog.LevelInfo) {
		t.Error("Expected INFO to be gated by the wrapped handler")
	}
	if !h.Enabled(ctx, slog.LevelError) {
		t.Error("Expected ERROR to be enabled by the wrapped handler")
	}
}

func TestHandler_OutputUnchanged(t *testing.T) {
	var tapped, direct bytes.Buffer

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := slog.NewRecord(now, slog.LevelInfo, "identical output", 0)
	r.AddAttrs(slog.String("k", "v"))

	ctx := context.Background()
	if err := tap.NewHandler(slog.NewJSONHandler(&tapped, nil), tracker.New()).Handle(ctx, r); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if err := slog.NewJSONHandler(&direct, nil).Handle(ctx, r); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if tapped.String() != direct.String() {
		t.Errorf("Tap altered output:\n  tapped: %s\n  direct: %s", tapped.String(), direct.String())
	}
}

func BenchmarkHandler_Handle(b *testing.B) {
	trk := tracker.New()
	inner := slog.NewJSONHandler(&bytes.Buffer{}, nil)
	logger := slog.New(tap.NewHandler(inner, trk))

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", "iteration", i)
	}
}
