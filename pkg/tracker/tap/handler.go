package tap

import (
	"context"
	"log/slog"

	"github.com/logcost/logcost-go/pkg/tracker"
)

// Handler is slog middleware that meters every record before delegating to
// the wrapped handler. Level gating, attribute accumulation, and grouping
// all behave exactly as they would without the tap, because every slog
// capability question is forwarded to the wrapped handler.
type Handler struct {
	next   slog.Handler
	trk    *tracker.Tracker
	ignore *IgnoreList

	// prefixBytes is the rendered size of attrs and group names accumulated
	// through WithAttrs/WithGroup, charged to every record this handler
	// emits.
	prefixBytes int64
}

// NewHandler wraps next so that every handled record updates trk.
func NewHandler(next slog.Handler, trk *tracker.Tracker) *Handler {
	return &Handler{
		next:   next,
		trk:    trk,
		ignore: &IgnoreList{},
	}
}

// Ignore registers function-name prefixes whose frames are skipped during
// call-site attribution. Use it to see through in-house logging helpers:
//
//	handler.Ignore("myapp/internal/logutil.")
//
// The registry is add-only and shared with handlers derived via
// WithAttrs/WithGroup.
func (h *Handler) Ignore(prefixes ...string) {
	h.ignore.Add(prefixes...)
}

// Enabled reports whether the wrapped handler handles records at the given
// level. The tap never changes level gating.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle meters the record and delegates it exactly once. The wrapped
// handler's error (or panic) propagates unchanged; metering failures never
// do.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	h.observe(r)
	return h.next.Handle(ctx, r)
}

// WithAttrs returns a handler whose records carry the given attributes.
// Their rendered size is charged to every subsequent record, matching what
// the wrapped handler will emit.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var added int64
	for _, a := range attrs {
		added += attrSize(a)
	}
	return &Handler{
		next:        h.next.WithAttrs(attrs),
		trk:         h.trk,
		ignore:      h.ignore,
		prefixBytes: h.prefixBytes + added,
	}
}

// WithGroup returns a handler that starts a group, forwarding to the
// wrapped handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &Handler{
		next:        h.next.WithGroup(name),
		trk:         h.trk,
		ignore:      h.ignore,
		prefixBytes: h.prefixBytes + int64(len(name)) + 1,
	}
}

// observe attributes the record to its call site and updates the tracker.
// Any failure, including a panic in attribute rendering, is contained here
// and recorded as a miss.
func (h *Handler) observe(r slog.Record) {
	defer func() {
		if recover() != nil {
			h.trk.RecordMiss()
		}
	}()

	// skip trims observe and Handle; slog's own dispatch frames above them
	// are skipped by name.
	file, line, printPath, ok := resolveSite(2, h.ignore)
	if !ok {
		// Handlers driven off the caller goroutine lose the stack; the PC
		// slog captured at the call site still identifies it.
		file, line, ok = resolvePC(r.PC)
	}
	if !ok {
		h.trk.RecordMiss()
		return
	}

	level := levelName(r.Level)
	if printPath {
		// The record arrived through the log package bridge installed by
		// slog.SetDefault, so it is plain print output, not a leveled call.
		level = tracker.LevelPrint
	}

	site := tracker.CallSite{File: file, Line: line, Level: level}
	h.trk.Increment(site, h.recordSize(r), r.Message)
}

// recordSize estimates the rendered byte size of a record: message plus
// every attribute as "key=value" plus the attrs accumulated on this
// handler. Encoder framing (timestamps, braces, quoting) is deliberately
// excluded so the estimate is format-independent.
func (h *Handler) recordSize(r slog.Record) int64 {
	size := int64(len(r.Message)) + h.prefixBytes
	r.Attrs(func(a slog.Attr) bool {
		size += attrSize(a)
		return true
	})
	return size
}

func attrSize(a slog.Attr) int64 {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		var n int64
		if a.Key != "" {
			n = int64(len(a.Key)) + 1
		}
		for _, ga := range v.Group() {
			n += attrSize(ga)
		}
		return n
	}
	// key=value plus a separator
	return int64(len(a.Key)) + 1 + int64(len(v.String())) + 1
}

// Enable installs the tap on the process-wide default logger. Because
// slog.SetDefault also routes the standard log package through the default
// handler, plain log.Print calls are metered too; the tap classifies them
// as PRINT by recognizing the bridge in the call chain. Call once at
// startup; the returned handler can be used to register ignore prefixes.
func Enable(trk *tracker.Tracker) *Handler {
	h := NewHandler(slog.Default().Handler(), trk)
	slog.SetDefault(slog.New(h))
	return h
}
