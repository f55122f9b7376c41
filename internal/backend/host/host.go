// Package host is the host-process adapter: it bridges the process-local
// capture engine and normalizes Go errors, plain records, and free-text
// messages.
package host

import (
	"context"

	"github.com/wolfer717/raven-go/internal/backend"
	"github.com/wolfer717/raven-go/internal/bridge"
	"github.com/wolfer717/raven-go/internal/engine"
	"github.com/wolfer717/raven-go/internal/model"
	"github.com/wolfer717/raven-go/internal/normalize"
	"github.com/wolfer717/raven-go/internal/stacktrace"
)

const platform = "go"

// Adapter implements backend.Backend for host processes.
type Adapter struct {
	bridge     *bridge.Bridge
	normalizer *normalize.Normalizer
	dispatcher *backend.Dispatcher
}

var _ backend.Backend = (*Adapter)(nil)

// New wires a host adapter over the given engine. The engine's hooks are
// claimed here, once, for the adapter's lifetime.
func New(eng engine.Engine, client bridge.Client, cfg backend.Config) (*Adapter, error) {
	br, err := bridge.New(eng, client)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		bridge: br,
		normalizer: normalize.New(
			&stacktrace.RuntimeTracer{},
			normalize.WithSkipFrames(1+cfg.SkipFrames),
		),
		dispatcher: backend.NewDispatcher(cfg),
	}, nil
}

// EventFromException implements backend.Backend.
func (a *Adapter) EventFromException(v any) (*model.Event, error) {
	ev, err := a.normalizer.EventFromException(v)
	if err != nil {
		return nil, err
	}
	return backend.Prepare(ev, platform), nil
}

// EventFromMessage implements backend.Backend.
func (a *Adapter) EventFromMessage(msg string) (*model.Event, error) {
	ev, err := a.normalizer.EventFromMessage(msg)
	if err != nil {
		return nil, err
	}
	return backend.Prepare(ev, platform), nil
}

// CaptureException implements backend.Backend.
func (a *Adapter) CaptureException(v any) (*model.Event, error) {
	ev, err := a.bridge.CaptureException(v)
	if err != nil {
		return nil, err
	}
	return backend.Prepare(ev, platform), nil
}

// CaptureMessage implements backend.Backend.
func (a *Adapter) CaptureMessage(msg string) (*model.Event, error) {
	ev, err := a.bridge.CaptureMessage(msg)
	if err != nil {
		return nil, err
	}
	return backend.Prepare(ev, platform), nil
}

// CaptureBreadcrumb implements backend.Backend.
func (a *Adapter) CaptureBreadcrumb(b *model.Breadcrumb) (*model.Breadcrumb, error) {
	return a.bridge.CaptureBreadcrumb(b)
}

// Send implements backend.Backend.
func (a *Adapter) Send(ctx context.Context, ev *model.Event) error {
	return a.bridge.Send(ctx, ev)
}

// SendEvent implements backend.Backend.
func (a *Adapter) SendEvent(ctx context.Context, ev *model.Event) (model.Response, error) {
	return a.dispatcher.SendEvent(ctx, ev)
}

// Close implements backend.Backend.
func (a *Adapter) Close() error {
	return a.dispatcher.Close()
}

// SetOptions passes options through to the engine.
func (a *Adapter) SetOptions(opts map[string]any) error {
	return a.bridge.SetOptions(opts)
}

// Context returns the engine's context state.
func (a *Adapter) Context() map[string]any { return a.bridge.Context() }

// SetContext replaces the engine's context state.
func (a *Adapter) SetContext(ctx map[string]any) { a.bridge.SetContext(ctx) }
