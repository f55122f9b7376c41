package stacktrace

import (
	"errors"
	"runtime"
	"strings"

	"github.com/wolfer717/raven-go/internal/model"
)

const maxDepth = 64

// Tracer computes an ordered frame list for an exception. Implementations
// must return frames oldest call first.
type Tracer interface {
	Trace(err error) ([]model.StackFrame, error)
}

// ErrNoFrames is returned when trace computation resolves zero frames.
var ErrNoFrames = errors.New("stacktrace: no frames resolved")

// pcCarrier is implemented by errors that recorded program counters at
// construction time (e.g. *Error below, or pkg/errors-style types exposing
// their counters).
type pcCarrier interface {
	Callers() []uintptr
}

// Error is an error that records its call stack at construction.
type Error struct {
	msg string
	pcs []uintptr
}

// New returns an *Error carrying the program counters of its construction
// site.
func New(msg string) *Error {
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(2, pcs)
	return &Error{msg: msg, pcs: pcs[:n]}
}

func (e *Error) Error() string { return e.msg }

// Callers exposes the recorded program counters.
func (e *Error) Callers() []uintptr { return e.pcs }

// RuntimeTracer resolves frames from program counters recorded by the
// error itself, falling back to the current call stack when the error
// carries none (plain errors have no stack capability in Go).
type RuntimeTracer struct {
	// InAppPrefixes marks frames whose module matches one of these
	// prefixes as application frames. Empty means every non-runtime
	// frame is in-app.
	InAppPrefixes []string
}

// Trace implements Tracer.
func (t *RuntimeTracer) Trace(err error) ([]model.StackFrame, error) {
	var pcs []uintptr
	var carrier pcCarrier
	if errors.As(err, &carrier) {
		pcs = carrier.Callers()
	} else {
		pcs = make([]uintptr, maxDepth)
		n := runtime.Callers(2, pcs)
		pcs = pcs[:n]
	}

	frames := t.resolve(pcs)
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	return frames, nil
}

// Capture resolves the current call stack, skipping the given number of
// frames on top of Capture itself. Used for synthetic traces where no
// real exception exists.
func (t *RuntimeTracer) Capture(skip int) []model.StackFrame {
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(skip+2, pcs)
	return t.resolve(pcs[:n])
}

// resolve converts program counters to frames, oldest call first,
// dropping runtime internals.
func (t *RuntimeTracer) resolve(pcs []uintptr) []model.StackFrame {
	if len(pcs) == 0 {
		return nil
	}

	cf := runtime.CallersFrames(pcs)
	var frames []model.StackFrame
	for {
		f, more := cf.Next()
		if f.Function != "" && !isRuntimeInternal(f.Function) {
			frames = append(frames, t.frame(f))
		}
		if !more {
			break
		}
	}

	// runtime.CallersFrames yields newest first; report oldest first.
	for i, j := 0, len(frames)-1; i < j; i, j = i+1, j-1 {
		frames[i], frames[j] = frames[j], frames[i]
	}
	return frames
}

func (t *RuntimeTracer) frame(f runtime.Frame) model.StackFrame {
	module, function := splitFunction(f.Function)
	return model.StackFrame{
		Function: function,
		Module:   module,
		Filename: baseName(f.File),
		AbsPath:  f.File,
		Lineno:   f.Line,
		InApp:    t.inApp(module),
	}
}

func (t *RuntimeTracer) inApp(module string) bool {
	if len(t.InAppPrefixes) == 0 {
		return true
	}
	for _, p := range t.InAppPrefixes {
		if strings.HasPrefix(module, p) {
			return true
		}
	}
	return false
}

// splitFunction breaks a fully qualified symbol ("pkg/path.(*T).Func")
// into its package path and function name.
func splitFunction(full string) (module, function string) {
	slash := strings.LastIndex(full, "/")
	dot := strings.Index(full[slash+1:], ".")
	if dot == -1 {
		return "", full
	}
	dot += slash + 1
	return full[:dot], full[dot+1:]
}

func baseName(path string) string {
	if i := strings.LastIndex(path, "/"); i != -1 {
		return path[i+1:]
	}
	return path
}

func isRuntimeInternal(function string) bool {
	return strings.HasPrefix(function, "runtime.") || strings.HasPrefix(function, "testing.tRunner")
}
