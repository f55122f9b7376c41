// Package engine specifies the contract of the underlying capture engine:
// a stateful object that produces events and breadcrumbs through two
// synchronously fired hooks. The bridge owns those hooks for the lifetime
// of an adapter.
package engine

import (
	"errors"

	"github.com/wolfer717/raven-go/internal/model"
)

// ErrAlreadyInstalled is returned when Install is called more than once.
var ErrAlreadyInstalled = errors.New("engine: hooks already installed")

// Hooks are the two interception points an engine exposes. The engine
// invokes them synchronously, before the triggering capture call returns.
type Hooks struct {
	// OnSend fires with the event produced by a capture call, or by the
	// engine's own internal instrumentation.
	OnSend func(*model.Event)
	// OnBreadcrumb fires with every captured breadcrumb, before the
	// engine's default recording side effect.
	OnBreadcrumb func(*model.Breadcrumb)
}

// Engine is the capture engine contract the bridge consumes.
type Engine interface {
	// Install replaces the engine's hooks. Exactly once per engine
	// lifetime; a second call fails with ErrAlreadyInstalled.
	Install(Hooks) error

	// CaptureException produces an event for a thrown value and fires
	// OnSend exactly once before returning.
	CaptureException(v any)

	// CaptureMessage produces an event for a free-text message and fires
	// OnSend exactly once before returning.
	CaptureMessage(msg string)

	// CaptureBreadcrumb fires OnBreadcrumb exactly once before returning.
	// The hook decides whether Record is also invoked.
	CaptureBreadcrumb(b *model.Breadcrumb)

	// Record performs the engine's default breadcrumb-recording side
	// effect, bypassing OnBreadcrumb.
	Record(b *model.Breadcrumb)

	// Send delivers an event through the engine's original, unhooked send
	// primitive. done is invoked once with the delivery error, nil on
	// success.
	Send(ev *model.Event, done func(error))

	// SetOptions updates engine configuration.
	SetOptions(opts map[string]any) error

	// Context returns the engine's current context state.
	Context() map[string]any

	// SetContext replaces the engine's context state.
	SetContext(ctx map[string]any)
}
