// Package inproc is a minimal in-process implementation of the capture
// engine contract. It assembles events through the normalizer, keeps a
// fixed-size breadcrumb ring, and delegates its original send primitive
// to a pluggable function.
package inproc

import (
	"time"

	"github.com/wolfer717/raven-go/internal/engine"
	"github.com/wolfer717/raven-go/internal/model"
	"github.com/wolfer717/raven-go/internal/normalize"
)

const defaultMaxBreadcrumbs = 100

// SendFunc is the engine's original send primitive. A nil SendFunc makes
// Send report success without doing anything, which suits setups where
// delivery happens entirely through the transport dispatch.
type SendFunc func(ev *model.Event) error

// Option configures an Engine.
type Option func(*Engine)

// WithMaxBreadcrumbs caps the breadcrumb ring. Default: 100.
func WithMaxBreadcrumbs(n int) Option {
	return func(e *Engine) { e.maxBreadcrumbs = n }
}

// WithSendFunc sets the engine's own delivery primitive.
func WithSendFunc(f SendFunc) Option {
	return func(e *Engine) { e.sendFunc = f }
}

// Engine is an in-process engine.Engine. Like the legacy engines it
// stands in for, it is stateful and owned by exactly one adapter.
type Engine struct {
	normalizer     *normalize.Normalizer
	hooks          engine.Hooks
	installed      bool
	sendFunc       SendFunc
	maxBreadcrumbs int

	breadcrumbs []*model.Breadcrumb
	options     map[string]any
	ctx         map[string]any
}

var _ engine.Engine = (*Engine)(nil)

// New creates an Engine that builds events with the given normalizer.
func New(n *normalize.Normalizer, opts ...Option) *Engine {
	e := &Engine{
		normalizer:     n,
		maxBreadcrumbs: defaultMaxBreadcrumbs,
		ctx:            map[string]any{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Install implements engine.Engine. Exactly once per engine lifetime.
func (e *Engine) Install(h engine.Hooks) error {
	if e.installed {
		return engine.ErrAlreadyInstalled
	}
	e.installed = true
	e.hooks = h
	return nil
}

// CaptureException normalizes the thrown value and fires OnSend with the
// result. Normalization failures surface as a message event so that a
// capture call never produces nothing.
func (e *Engine) CaptureException(v any) {
	ev, err := e.normalizer.EventFromException(v)
	if err != nil {
		ev = &model.Event{Level: "error", Message: "event normalization failed: " + err.Error()}
	}
	e.emit(ev)
}

// CaptureMessage normalizes the message and fires OnSend with the result.
func (e *Engine) CaptureMessage(msg string) {
	ev, err := e.normalizer.EventFromMessage(msg)
	if err != nil {
		ev = &model.Event{Level: "info", Message: msg}
	}
	e.emit(ev)
}

// CaptureBreadcrumb stamps the breadcrumb and fires OnBreadcrumb. The
// hook owner decides whether Record is also called.
func (e *Engine) CaptureBreadcrumb(b *model.Breadcrumb) {
	if b.Timestamp.IsZero() {
		b.Timestamp = time.Now().UTC()
	}
	if e.hooks.OnBreadcrumb != nil {
		e.hooks.OnBreadcrumb(b)
	}
}

// Record appends the breadcrumb to the ring, evicting the oldest entry
// when the ring is full.
func (e *Engine) Record(b *model.Breadcrumb) {
	e.breadcrumbs = append(e.breadcrumbs, b)
	if len(e.breadcrumbs) > e.maxBreadcrumbs {
		e.breadcrumbs = e.breadcrumbs[1:]
	}
}

// Breadcrumbs returns the recorded trail, oldest first.
func (e *Engine) Breadcrumbs() []*model.Breadcrumb {
	return e.breadcrumbs
}

// Send implements the engine's original, unhooked send primitive.
func (e *Engine) Send(ev *model.Event, done func(error)) {
	if e.sendFunc == nil {
		done(nil)
		return
	}
	done(e.sendFunc(ev))
}

// SetOptions implements engine.Engine.
func (e *Engine) SetOptions(opts map[string]any) error {
	e.options = opts
	return nil
}

// Context implements engine.Engine.
func (e *Engine) Context() map[string]any { return e.ctx }

// SetContext implements engine.Engine.
func (e *Engine) SetContext(ctx map[string]any) { e.ctx = ctx }

func (e *Engine) emit(ev *model.Event) {
	if e.hooks.OnSend != nil {
		e.hooks.OnSend(ev)
	}
}
