package tap

import (
	"bytes"
	"io"
	"unicode/utf8"

	"github.com/logcost/logcost-go/pkg/tracker"
)

// templateLimit caps the sample text retained for writer-path sites. The
// writer sees rendered output, not a template, so a truncated first line
// stands in for display purposes.
const templateLimit = 120

// Writer meters everything written through it under the PRINT pseudo-level
// and then writes to the wrapped writer exactly once. It is the tap for
// the standard log package and for anything else that emits rendered
// lines:
//
//	log.SetOutput(tap.NewWriter(os.Stderr, trk))
//
// The standard log package writes synchronously on the calling goroutine,
// so the frame walk attributes each line to the true caller behind
// log.Print and friends.
type Writer struct {
	next   io.Writer
	trk    *tracker.Tracker
	ignore *IgnoreList
}

// NewWriter wraps next so that every write updates trk.
func NewWriter(next io.Writer, trk *tracker.Tracker) *Writer {
	return &Writer{
		next:   next,
		trk:    trk,
		ignore: &IgnoreList{},
	}
}

// Ignore registers function-name prefixes skipped during attribution, as
// with Handler.Ignore.
func (w *Writer) Ignore(prefixes ...string) {
	w.ignore.Add(prefixes...)
}

// Write meters p and delegates to the wrapped writer. The delegated
// write's result is returned unchanged; metering failures are contained
// and counted as misses.
func (w *Writer) Write(p []byte) (int, error) {
	w.observe(p)
	return w.next.Write(p)
}

func (w *Writer) observe(p []byte) {
	defer func() {
		if recover() != nil {
			w.trk.RecordMiss()
		}
	}()

	file, line, _, ok := resolveSite(2, w.ignore)
	if !ok {
		w.trk.RecordMiss()
		return
	}

	site := tracker.CallSite{File: file, Line: line, Level: tracker.LevelPrint}
	w.trk.Increment(site, int64(len(p)), sampleText(p))
}

// sampleText derives a display sample from rendered output: the first
// line, trimmed and capped at templateLimit runes.
func sampleText(p []byte) string {
	if i := bytes.IndexByte(p, '\n'); i >= 0 {
		p = p[:i]
	}
	p = bytes.TrimSpace(p)
	s := string(p)
	if utf8.RuneCountInString(s) <= templateLimit {
		return s
	}
	runes := []rune(s)
	return string(runes[:templateLimit])
}
