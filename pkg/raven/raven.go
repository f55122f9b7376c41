package raven

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wolfer717/raven-go/internal/backend"
	"github.com/wolfer717/raven-go/internal/backend/host"
	"github.com/wolfer717/raven-go/internal/backend/web"
	"github.com/wolfer717/raven-go/internal/bridge"
	"github.com/wolfer717/raven-go/internal/config"
	"github.com/wolfer717/raven-go/internal/dedup"
	"github.com/wolfer717/raven-go/internal/dsn"
	"github.com/wolfer717/raven-go/internal/engine/inproc"
	"github.com/wolfer717/raven-go/internal/metrics"
	"github.com/wolfer717/raven-go/internal/model"
	"github.com/wolfer717/raven-go/internal/normalize"
	"github.com/wolfer717/raven-go/internal/stacktrace"
	"github.com/wolfer717/raven-go/internal/transport"
)

// ErrRepeatedEvent reports a delivery suppressed by the deduplication
// window; the event was identical to the previous one. See WithDedupWindow.
var ErrRepeatedEvent = errors.New("raven: repeated event suppressed")

// Raven captures, normalizes, and delivers error events. Capture is
// synchronous and single-goroutine; SendEvent crosses the network.
type Raven struct {
	backend     backend.Backend
	environment string
	dedup       *dedup.Deduplicator
}

// New creates a Raven instance. The default setup runs the host adapter
// over an in-process engine; see the Options for every knob.
func New(opts ...Option) (*Raven, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	// The facade adds one call layer on top of the adapter.
	cfg := backend.Config{Factory: o.factory, SkipFrames: 1 + o.skipFrames}

	if o.dsn != "" {
		parsed, err := dsn.Parse(o.dsn)
		if err != nil {
			return nil, fmt.Errorf("raven: %w", err)
		}
		cfg.DSN = parsed
	}

	if cfg.Factory == nil {
		switch o.transportName {
		case "":
		case "http":
			cfg.Factory = transport.NewHTTP
		case "request":
			cfg.Factory = transport.NewRequest
		default:
			return nil, fmt.Errorf("raven: unknown transport %q", o.transportName)
		}
	}

	if o.httpClient != nil || o.timeout != 0 {
		cfg.TransportOptions = &transport.Options{
			HTTPClient: o.httpClient,
			Timeout:    o.timeout,
		}
	}

	if o.async {
		inner := cfg.Factory
		cfg.Factory = func(topts transport.Options) transport.Transport {
			base := transport.Select(inner, transport.Detect())
			return transport.NewAsync(base(topts))
		}
	}

	if o.registerer != nil {
		cfg.Metrics = metrics.New(o.registerer)
	}

	eng := o.engine
	if eng == nil {
		// Bridged captures run through six layers between the user's
		// call and the engine's normalizer; trim them so synthetic
		// traces start at the capture request site.
		eng = inproc.New(
			normalize.New(
				&stacktrace.RuntimeTracer{},
				normalize.WithSkipFrames(6+o.skipFrames),
			),
			inproc.WithMaxBreadcrumbs(o.maxBreadcrumbs),
		)
	}

	r := &Raven{environment: o.environment}
	if o.dedupEnabled {
		r.dedup = dedup.New(o.dedupWindow)
	}
	client := &hookClient{raven: r, onEvent: o.onEvent, onBreadcrumb: o.onBreadcrumb, engine: eng}

	var err error
	switch o.adapterKind {
	case "web":
		r.backend, err = web.New(eng, client, cfg)
	default:
		r.backend, err = host.New(eng, client, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("raven: %w", err)
	}
	return r, nil
}

// NewFromEnv creates a Raven instance from RAVEN_* environment variables.
func NewFromEnv(extra ...Option) (*Raven, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("raven: %w", err)
	}

	opts := []Option{
		WithTimeout(cfg.Timeout),
		WithSkipFrames(cfg.SkipFrames),
		WithMaxBreadcrumbs(cfg.MaxBreadcrumbs),
		WithEnvironment(cfg.Environment),
	}
	if cfg.DSN != "" {
		opts = append(opts, WithDSN(cfg.DSN))
	}
	if cfg.Transport != "" {
		opts = append(opts, WithTransport(cfg.Transport))
	}
	if cfg.Async {
		opts = append(opts, WithAsyncDelivery())
	}
	if cfg.DedupWindow > 0 {
		opts = append(opts, WithDedupWindow(cfg.DedupWindow))
	}
	return New(append(opts, extra...)...)
}

// CaptureException runs one bridged capture for a thrown value and
// returns the event it produced.
func (r *Raven) CaptureException(v any) (*Event, error) {
	ev, err := r.backend.CaptureException(v)
	if err != nil {
		return nil, err
	}
	return r.tag(ev), nil
}

// CaptureMessage runs one bridged capture for a free-text message and
// returns the event it produced.
func (r *Raven) CaptureMessage(msg string) (*Event, error) {
	ev, err := r.backend.CaptureMessage(msg)
	if err != nil {
		return nil, err
	}
	return r.tag(ev), nil
}

// CaptureBreadcrumb runs one bridged breadcrumb capture. The engine's
// default recording still happens; the breadcrumb is also returned.
func (r *Raven) CaptureBreadcrumb(b *Breadcrumb) (*Breadcrumb, error) {
	return r.backend.CaptureBreadcrumb(b)
}

// EventFromException normalizes a thrown value without going through the
// engine.
func (r *Raven) EventFromException(v any) (*Event, error) {
	ev, err := r.backend.EventFromException(v)
	if err != nil {
		return nil, err
	}
	return r.tag(ev), nil
}

// EventFromMessage normalizes a free-text message without going through
// the engine.
func (r *Raven) EventFromMessage(msg string) (*Event, error) {
	ev, err := r.backend.EventFromMessage(msg)
	if err != nil {
		return nil, err
	}
	return r.tag(ev), nil
}

// SendEvent delivers a canonical event to the collector and reports the
// outcome. With a dedup window configured, events identical to the
// previous one are suppressed and reported with ErrRepeatedEvent.
func (r *Raven) SendEvent(ctx context.Context, ev *Event) (Response, error) {
	if r.dedup != nil && r.dedup.Repeated(ev) {
		return Response{Status: model.StatusFailed, EventID: ev.EventID}, ErrRepeatedEvent
	}
	return r.backend.SendEvent(ctx, ev)
}

// Close releases delivery resources. With WithAsyncDelivery it drains the
// queue before returning.
func (r *Raven) Close() error {
	return r.backend.Close()
}

// Report is the capture-and-send convenience: one bridged exception
// capture followed by one delivery.
func (r *Raven) Report(ctx context.Context, v any) (Response, error) {
	ev, err := r.CaptureException(v)
	if err != nil {
		return Response{Status: model.StatusFailed}, err
	}
	return r.SendEvent(ctx, ev)
}

// tag applies instance-wide tags while the event is still being
// assembled; events are never touched after they leave this layer.
func (r *Raven) tag(ev *Event) *Event {
	if r.environment != "" {
		if ev.Tags == nil {
			ev.Tags = map[string]string{}
		}
		if _, ok := ev.Tags["environment"]; !ok {
			ev.Tags["environment"] = r.environment
		}
	}
	return ev
}

// hookClient receives artifacts the bridge routes outside explicit
// captures: engine-internal events and background breadcrumbs.
type hookClient struct {
	raven        *Raven
	engine       interface{ Record(*model.Breadcrumb) }
	onEvent      func(*Event)
	onBreadcrumb func(*Breadcrumb)
}

var _ bridge.Client = (*hookClient)(nil)

func (c *hookClient) Send(ev *model.Event) {
	if c.onEvent != nil {
		c.onEvent(ev)
		return
	}
	resp, err := c.raven.SendEvent(context.Background(), ev)
	if err != nil {
		slog.Warn("raven: engine-internal event delivery failed", "error", err)
		return
	}
	slog.Debug("raven: engine-internal event delivered", "event_id", resp.EventID)
}

func (c *hookClient) CaptureBreadcrumb(b *model.Breadcrumb) {
	if c.onBreadcrumb != nil {
		c.onBreadcrumb(b)
		return
	}
	c.engine.Record(b)
}
