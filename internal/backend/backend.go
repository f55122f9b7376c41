// Package backend defines the adapter contract the surrounding client
// calls per-operation, and the transport dispatch shared by every adapter.
package backend

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/wolfer717/raven-go/internal/dsn"
	"github.com/wolfer717/raven-go/internal/metrics"
	"github.com/wolfer717/raven-go/internal/model"
	"github.com/wolfer717/raven-go/internal/transport"
)

// ErrMissingDSN is the configuration precondition failure for sends: no
// network call is attempted without a resolved DSN.
var ErrMissingDSN = errors.New("backend: missing DSN")

// Backend is the per-runtime adapter contract.
type Backend interface {
	// EventFromException normalizes an arbitrary thrown value into a
	// canonical event.
	EventFromException(v any) (*model.Event, error)
	// EventFromMessage normalizes a free-text message into a canonical
	// event with a synthetic call-site stacktrace.
	EventFromMessage(msg string) (*model.Event, error)

	// CaptureException runs one bridged engine capture and returns the
	// produced event.
	CaptureException(v any) (*model.Event, error)
	// CaptureMessage runs one bridged engine capture and returns the
	// produced event.
	CaptureMessage(msg string) (*model.Event, error)
	// CaptureBreadcrumb runs one bridged engine capture and returns the
	// produced breadcrumb.
	CaptureBreadcrumb(b *model.Breadcrumb) (*model.Breadcrumb, error)

	// Send delivers an event through the engine's original send
	// primitive.
	Send(ctx context.Context, ev *model.Event) error
	// SendEvent delivers an event through the transport dispatch.
	SendEvent(ctx context.Context, ev *model.Event) (model.Response, error)
	// Close releases delivery resources held by the dispatch.
	Close() error
}

// Config is the resolved configuration a dispatcher is built from.
type Config struct {
	// DSN is required before any send attempt.
	DSN *dsn.DSN
	// Factory, when non-nil, overrides transport selection.
	Factory transport.Factory
	// TransportOptions, when non-nil, are used verbatim; otherwise a
	// default is built from the DSN alone.
	TransportOptions *transport.Options
	// Metrics, when non-nil, records delivery outcomes.
	Metrics *metrics.DispatchMetrics
	// SkipFrames trims additional caller frames from synthetic message
	// stacktraces, on top of the adapter's own call layer. The right
	// depth depends on how many layers the caller wraps around the
	// adapter, so it is configuration, not a constant.
	SkipFrames int
	// Detect overrides runtime capability detection; nil means
	// transport.Detect.
	Detect func() transport.Capabilities
}

// Dispatcher resolves options, selects a delivery mechanism, and reports
// delivery outcomes. Selection happens once, on first send; it depends
// only on configuration and runtime capability.
type Dispatcher struct {
	cfg Config
	tr  transport.Transport
}

// NewDispatcher creates a Dispatcher from resolved configuration.
func NewDispatcher(cfg Config) *Dispatcher {
	return &Dispatcher{cfg: cfg}
}

// SendEvent delivers the event and returns the transport's outcome
// unchanged. Without a DSN it fails immediately with ErrMissingDSN.
func (d *Dispatcher) SendEvent(ctx context.Context, ev *model.Event) (model.Response, error) {
	if d.cfg.DSN == nil {
		if d.cfg.Metrics != nil {
			d.cfg.Metrics.MissingDSNTotal.Inc()
		}
		return model.Response{Status: model.StatusFailed}, ErrMissingDSN
	}

	if d.tr == nil {
		d.tr = d.build()
	}

	resp, err := d.tr.Send(ctx, ev)
	if d.cfg.Metrics != nil {
		d.cfg.Metrics.DeliveriesTotal.WithLabelValues(string(resp.Status)).Inc()
	}
	return resp, err
}

// build resolves transport options and instantiates the selected
// mechanism.
func (d *Dispatcher) build() transport.Transport {
	opts := transport.Options{DSN: d.cfg.DSN}
	if d.cfg.TransportOptions != nil {
		opts = *d.cfg.TransportOptions
		opts.DSN = d.cfg.DSN
	}

	detect := d.cfg.Detect
	if detect == nil {
		detect = transport.Detect
	}
	factory := transport.Select(d.cfg.Factory, detect())
	return factory(opts)
}

// Close releases the built transport when it holds resources, such as the
// async wrapper's delivery queue. A dispatcher that never sent is a no-op.
func (d *Dispatcher) Close() error {
	if c, ok := d.tr.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Prepare stamps identity fields a canonical event must carry before it
// leaves the adapter. Existing values are kept; the event is never touched
// again after it has been returned.
func Prepare(ev *model.Event, platform string) *model.Event {
	if ev.EventID == "" {
		ev.EventID = model.NewEventID()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	if ev.Platform == "" {
		ev.Platform = platform
	}
	return ev
}
