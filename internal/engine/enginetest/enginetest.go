// Package enginetest provides a scripted engine.Engine for exercising the
// bridge against well-behaved and misbehaving engines.
package enginetest

import (
	"github.com/wolfer717/raven-go/internal/engine"
	"github.com/wolfer717/raven-go/internal/model"
)

// Engine is a scripted fake. By default each capture call fires its hook
// exactly once with a canned artifact; the Fire* knobs script contract
// violations.
type Engine struct {
	Hooks     engine.Hooks
	Installed int

	// FireNothing suppresses hook firing entirely (a misbehaving engine).
	FireNothing bool
	// FireCount overrides how many times the hook fires per capture call
	// when > 0.
	FireCount int

	// EventToProduce is passed to OnSend; when nil a minimal event is
	// synthesized from the capture input.
	EventToProduce *model.Event

	// SendErr is reported through the Send callback.
	SendErr error

	Recorded []*model.Breadcrumb
	Sent     []*model.Event
	Options  map[string]any
	Ctx      map[string]any
}

var _ engine.Engine = (*Engine)(nil)

func (e *Engine) Install(h engine.Hooks) error {
	if e.Installed > 0 {
		return engine.ErrAlreadyInstalled
	}
	e.Installed++
	e.Hooks = h
	return nil
}

func (e *Engine) CaptureException(v any) {
	ev := e.EventToProduce
	if ev == nil {
		err, ok := v.(error)
		value := "unknown"
		if ok {
			value = err.Error()
		}
		ev = &model.Event{Exception: &model.Exception{Value: value}}
	}
	e.fireSend(ev)
}

func (e *Engine) CaptureMessage(msg string) {
	ev := e.EventToProduce
	if ev == nil {
		ev = &model.Event{Message: msg}
	}
	e.fireSend(ev)
}

func (e *Engine) CaptureBreadcrumb(b *model.Breadcrumb) {
	for i := 0; i < e.fireCount(); i++ {
		if e.Hooks.OnBreadcrumb != nil {
			e.Hooks.OnBreadcrumb(b)
		}
	}
}

func (e *Engine) Record(b *model.Breadcrumb) {
	e.Recorded = append(e.Recorded, b)
}

func (e *Engine) Send(ev *model.Event, done func(error)) {
	e.Sent = append(e.Sent, ev)
	done(e.SendErr)
}

func (e *Engine) SetOptions(opts map[string]any) error {
	e.Options = opts
	return nil
}

func (e *Engine) Context() map[string]any { return e.Ctx }

func (e *Engine) SetContext(ctx map[string]any) { e.Ctx = ctx }

// EmitInternal simulates the engine's own instrumentation producing an
// event outside any capture call.
func (e *Engine) EmitInternal(ev *model.Event) {
	if e.Hooks.OnSend != nil {
		e.Hooks.OnSend(ev)
	}
}

func (e *Engine) fireSend(ev *model.Event) {
	for i := 0; i < e.fireCount(); i++ {
		if e.Hooks.OnSend != nil {
			e.Hooks.OnSend(ev)
		}
	}
}

func (e *Engine) fireCount() int {
	if e.FireNothing {
		return 0
	}
	if e.FireCount > 0 {
		return e.FireCount
	}
	return 1
}
