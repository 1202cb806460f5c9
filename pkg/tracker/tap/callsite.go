package tap

import (
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/logcost/logcost-go/pkg/tracker"
)

// maxWalkDepth bounds the outward frame walk. Logging machinery plus a few
// helper layers fit comfortably; anything deeper falls back to the
// immediate caller.
const maxWalkDepth = 32

// selfPrefix is this package's fully qualified name with a trailing dot,
// computed at init so the walk skips its own frames under any module path.
var selfPrefix = ownPackagePrefix()

// builtinSkip matches the logging machinery between the host's call and the
// tap. Frames matching these are never attributed.
var builtinSkip = []string{
	"runtime.",
	"log/slog.",
	"log.",
	"fmt.",
}

func ownPackagePrefix() string {
	pc, _, _, ok := runtime.Caller(0)
	if !ok {
		return "github.com/logcost/logcost-go/pkg/tracker/tap."
	}
	fn := runtime.FuncForPC(pc).Name()
	// Function names look like "host/path/pkg.Func"; the package prefix is
	// everything up to and including the first dot after the last slash.
	slash := strings.LastIndex(fn, "/")
	dot := strings.Index(fn[slash+1:], ".")
	if dot < 0 {
		return fn + "."
	}
	return fn[:slash+1+dot+1]
}

// IgnoreList is an add-only registry of function-name prefixes excluded
// from call-site attribution. Prefixes take effect immediately for
// subsequent calls; entries are never removed.
//
// Prefixes match against fully qualified function names, so a package can
// be excluded with "host/path/pkg." and a whole module tree with
// "host/path/".
type IgnoreList struct {
	mu       sync.RWMutex
	prefixes []string
}

// Add registers one or more ignore prefixes.
func (l *IgnoreList) Add(prefixes ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prefixes = append(l.prefixes, prefixes...)
}

func (l *IgnoreList) matches(fn string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, p := range l.prefixes {
		if strings.HasPrefix(fn, p) {
			return true
		}
	}
	return false
}

func isMachinery(fn string) bool {
	if strings.HasPrefix(fn, selfPrefix) {
		return true
	}
	for _, p := range builtinSkip {
		if strings.HasPrefix(fn, p) {
			return true
		}
	}
	return false
}

// resolveSite walks the call chain outward, skipping logging machinery and
// every consecutive frame matching the ignore list, and returns the first
// frame that survives. When only ignored frames remain, the immediate
// caller (first frame past the machinery) is the fallback. ok is false
// when no frame could be resolved at all.
//
// printPath reports whether the chain passed through the standard log
// package. slog.SetDefault bridges log.Print output into the default
// handler, and that is the only way stdlib log frames can sit between the
// tap and the caller, so the flag classifies bridged plain output.
//
// skip counts frames between the runtime.Callers call inside this function
// and the tap's own entry point; callers pass the distance to their caller.
func resolveSite(skip int, ignore *IgnoreList) (file string, line int, printPath, ok bool) {
	var pcs [maxWalkDepth]uintptr
	n := runtime.Callers(skip+2, pcs[:])
	if n == 0 {
		return "", 0, false, false
	}

	frames := runtime.CallersFrames(pcs[:n])
	var fallbackFile string
	var fallbackLine int
	haveFallback := false

	for {
		frame, more := frames.Next()
		if frame.PC != 0 && frame.Function != "" {
			if isMachinery(frame.Function) {
				if strings.HasPrefix(frame.Function, "log.") {
					printPath = true
				}
			} else {
				if !haveFallback {
					fallbackFile, fallbackLine = frame.File, frame.Line
					haveFallback = true
				}
				if ignore == nil || !ignore.matches(frame.Function) {
					return frame.File, frame.Line, printPath, true
				}
			}
		}
		if !more {
			break
		}
	}

	if haveFallback {
		return fallbackFile, fallbackLine, printPath, true
	}
	return "", 0, false, false
}

// resolvePC resolves a single program counter, used when the stack walk is
// unavailable (records handled off the caller goroutine carry only the PC
// slog captured at the call site).
func resolvePC(pc uintptr) (file string, line int, ok bool) {
	if pc == 0 {
		return "", 0, false
	}
	frames := runtime.CallersFrames([]uintptr{pc})
	frame, _ := frames.Next()
	if frame.File == "" {
		return "", 0, false
	}
	return frame.File, frame.Line, true
}

// levelName maps a slog level to the tracker's severity names. Custom
// levels bucket into the nearest named severity at or below them;
// anything past LevelError+4 counts as critical.
func levelName(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return tracker.LevelDebug
	case l < slog.LevelWarn:
		return tracker.LevelInfo
	case l < slog.LevelError:
		return tracker.LevelWarning
	case l < slog.LevelError+4:
		return tracker.LevelError
	default:
		return tracker.LevelCritical
	}
}
