// Package bridge turns the capture engine's callback-driven output into
// plain return values. One bridged call installs nothing and tears down
// nothing: the two engine hooks are claimed once, at construction, for the
// bridge's whole lifetime.
package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfer717/raven-go/internal/engine"
	"github.com/wolfer717/raven-go/internal/model"
)

// Client is the surrounding client's entry points, called by hook routing
// when an artifact arrives outside an explicit capture call.
type Client interface {
	// Send receives events originating from the engine's own internal
	// instrumentation, bypassing the client's normal build-then-send
	// order.
	Send(ev *model.Event)
	// CaptureBreadcrumb receives breadcrumbs the client may decide to
	// store.
	CaptureBreadcrumb(b *model.Breadcrumb)
}

// CaptureError reports a bridged call that violated the capture contract.
// It indicates an integration bug, not a transient condition.
type CaptureError struct {
	Reason string
}

func (e *CaptureError) Error() string {
	return "bridge: " + e.Reason
}

// ErrReentrantCapture is returned when a bridged operation triggers a
// nested bridged call. The single-slot capture state cannot hold two
// pending artifacts; reentrancy is a hard precondition violation.
var ErrReentrantCapture = errors.New("bridge: reentrant capture")

// Bridge owns the engine's two hooks and a single-slot capture state.
// It is built for a single-goroutine, cooperative caller: the engine fires
// hooks synchronously before the triggering call returns, and no bridged
// operation may overlap another.
type Bridge struct {
	engine engine.Engine
	client Client

	capturing bool
	captured  any
}

// New creates a Bridge over the engine and installs its hooks. The engine's
// hook slots belong to this bridge from here on.
func New(eng engine.Engine, client Client) (*Bridge, error) {
	b := &Bridge{engine: eng, client: client}
	hooks := engine.Hooks{
		OnSend:       b.onSend,
		OnBreadcrumb: b.onBreadcrumb,
	}
	if err := eng.Install(hooks); err != nil {
		return nil, fmt.Errorf("bridge: %w", err)
	}
	return b, nil
}

// capture runs op, which must cause exactly one hook to fire synchronously,
// and returns the artifact that firing produced. A panic inside op is not
// recovered; it propagates to the caller with the capture state reset.
func capture[T any](b *Bridge, op func()) (T, error) {
	var zero T
	if b.capturing {
		return zero, ErrReentrantCapture
	}

	b.captured = nil
	b.capturing = true
	defer func() {
		b.captured = nil
		b.capturing = false
	}()

	op()

	if b.captured == nil {
		return zero, &CaptureError{Reason: "no artifact produced"}
	}
	artifact, ok := b.captured.(T)
	if !ok {
		return zero, &CaptureError{Reason: fmt.Sprintf("artifact has type %T", b.captured)}
	}
	return artifact, nil
}

// CaptureException runs one engine exception capture and returns the
// event it produced.
func (b *Bridge) CaptureException(v any) (*model.Event, error) {
	return capture[*model.Event](b, func() { b.engine.CaptureException(v) })
}

// CaptureMessage runs one engine message capture and returns the event it
// produced.
func (b *Bridge) CaptureMessage(msg string) (*model.Event, error) {
	return capture[*model.Event](b, func() { b.engine.CaptureMessage(msg) })
}

// CaptureBreadcrumb runs one engine breadcrumb capture and returns the
// breadcrumb. The engine's default recording side effect still happens
// (see onBreadcrumb).
func (b *Bridge) CaptureBreadcrumb(crumb *model.Breadcrumb) (*model.Breadcrumb, error) {
	return capture[*model.Breadcrumb](b, func() { b.engine.CaptureBreadcrumb(crumb) })
}

// Send delivers an event through the engine's original, unhooked send
// primitive, converting its error-first callback into a plain return.
func (b *Bridge) Send(ctx context.Context, ev *model.Event) error {
	done := make(chan error, 1)
	b.engine.Send(ev, func(err error) { done <- err })
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetOptions passes options through to the engine.
func (b *Bridge) SetOptions(opts map[string]any) error {
	return b.engine.SetOptions(opts)
}

// Context returns the engine's context state.
func (b *Bridge) Context() map[string]any {
	return b.engine.Context()
}

// SetContext replaces the engine's context state.
func (b *Bridge) SetContext(ctx map[string]any) {
	b.engine.SetContext(ctx)
}

// onSend routes an event from the engine. During a capture it lands in
// the slot; otherwise it came from the engine's internal instrumentation
// and goes straight to the client's send entry point.
func (b *Bridge) onSend(ev *model.Event) {
	if b.capturing {
		b.captured = ev
		return
	}
	b.client.Send(ev)
}

// onBreadcrumb routes a breadcrumb from the engine. During a capture the
// explicit-capture path expects both the engine's default recording side
// effect and the returned artifact; otherwise the client decides whether
// to store it.
func (b *Bridge) onBreadcrumb(crumb *model.Breadcrumb) {
	if b.capturing {
		b.engine.Record(crumb)
		b.captured = crumb
		return
	}
	b.client.CaptureBreadcrumb(crumb)
}
