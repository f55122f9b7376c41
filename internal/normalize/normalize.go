package normalize

import (
	"fmt"
	"reflect"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/wolfer717/raven-go/internal/model"
)

// Tracer is the stack computation collaborator: ordered frames for a real
// exception, and call-site frames for synthetic traces.
type Tracer interface {
	Trace(err error) ([]model.StackFrame, error)
	Capture(skip int) []model.StackFrame
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithSkipFrames sets how many additional caller frames are trimmed from
// synthetic message traces. Adapters that wrap EventFromMessage in one more
// call layer pass 1. Default: 0.
func WithSkipFrames(n int) Option {
	return func(nm *Normalizer) { nm.skipFrames = n }
}

// Normalizer classifies arbitrary thrown values into canonical events.
// It performs no I/O; a stack computation failure propagates to the caller.
type Normalizer struct {
	tracer     Tracer
	skipFrames int
}

// New creates a Normalizer over the given tracer.
func New(tracer Tracer, opts ...Option) *Normalizer {
	n := &Normalizer{tracer: tracer}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// EventFromException builds a canonical event from an arbitrary thrown
// value. Inputs that cannot be confidently classified are downgraded to
// the message path rather than rejected.
func (n *Normalizer) EventFromException(v any) (*model.Event, error) {
	// Unwrap event wrappers before classifying the payload itself.
	for {
		we, ok := v.(ErrorEvent)
		if !ok || we.Err() == nil {
			break
		}
		v = we.Err()
	}

	switch Classify(v) {
	case KindLegacyError:
		return n.messageEvent(legacyMessage(v), 1+n.skipFrames)
	case KindStandardError:
		return n.exceptionEvent(v.(error))
	case KindPlainRecord:
		return n.messageEvent(recordMessage(v), 1+n.skipFrames)
	default:
		return n.messageEvent(toString(v), 1+n.skipFrames)
	}
}

// EventFromMessage builds a canonical event for a free-text message, with
// a synthetic stack trace representing where capture was requested.
func (n *Normalizer) EventFromMessage(msg string) (*model.Event, error) {
	return n.messageEvent(msg, 1+n.skipFrames)
}

// exceptionEvent is the exception path: real error, real frames.
func (n *Normalizer) exceptionEvent(err error) (*model.Event, error) {
	frames, terr := n.tracer.Trace(err)
	if terr != nil {
		return nil, fmt.Errorf("normalize: %w", terr)
	}
	return &model.Event{
		Level: "error",
		Exception: &model.Exception{
			Type:       errorType(err),
			Value:      err.Error(),
			Stacktrace: &model.Stacktrace{Frames: frames},
			Mechanism:  &model.Mechanism{Handled: true, Type: "generic"},
		},
	}, nil
}

// messageEvent is the message path: a synthetic trace is captured at the
// call site and trimmed of normalizer-internal frames, so the first
// reported frame is the caller's. skip counts the exported entry point
// plus any configured extra layers; messageEvent adds its own frame.
func (n *Normalizer) messageEvent(msg string, skip int) (*model.Event, error) {
	msg = norm.NFC.String(msg)

	frames := n.tracer.Capture(skip + 1)
	ev := &model.Event{
		Level:       "info",
		Message:     msg,
		Fingerprint: []string{msg},
	}
	if len(frames) > 0 {
		ev.Stacktrace = &model.Stacktrace{Frames: frames}
	}
	return ev, nil
}

// legacyMessage renders a name/message-only shape as "<Name>: <message>",
// or just "<Name>" when there is no message.
func legacyMessage(v any) string {
	var name, message string
	switch x := v.(type) {
	case LegacyError:
		name, message = x.Name(), x.Message()
	case map[string]any:
		name, _ = x["name"].(string)
		message, _ = x["message"].(string)
	}
	if message == "" {
		return name
	}
	return name + ": " + message
}

// recordMessage summarizes a plain record by its top-level keys, so that
// grouping reflects the record's shape rather than its serialization.
func recordMessage(v any) string {
	keys := recordKeys(v)
	if len(keys) == 0 {
		return "Non-error object captured with no keys"
	}
	return "Non-error object captured with keys: " + strings.Join(keys, ", ")
}

// errorType reports the concrete type name of an error, without the
// pointer marker.
func errorType(err error) string {
	t := reflect.TypeOf(err)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	if pkg := t.PkgPath(); pkg != "" {
		if i := strings.LastIndex(pkg, "/"); i != -1 {
			pkg = pkg[i+1:]
		}
		return pkg + "." + t.Name()
	}
	return t.Name()
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
