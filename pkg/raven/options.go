package raven

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfer717/raven-go/internal/engine"
	"github.com/wolfer717/raven-go/internal/model"
	"github.com/wolfer717/raven-go/internal/transport"
)

type options struct {
	dsn            string
	adapterKind    string // "host" or "web"
	transportName  string // "", "http", "request"
	factory        transport.Factory
	httpClient     *http.Client
	timeout        time.Duration
	skipFrames     int
	maxBreadcrumbs int
	environment    string
	async          bool
	dedupWindow    time.Duration
	dedupEnabled   bool
	engine         engine.Engine
	registerer     prometheus.Registerer
	onEvent        func(*Event)
	onBreadcrumb   func(*Breadcrumb)
}

// Option configures a Raven instance.
type Option func(*options)

// WithDSN sets the collector connection string. Without it, capture works
// but SendEvent fails its configuration precondition.
func WithDSN(dsn string) Option {
	return func(o *options) { o.dsn = dsn }
}

// WithWebAdapter selects the in-browser adapter instead of the
// host-process one.
func WithWebAdapter() Option {
	return func(o *options) { o.adapterKind = "web" }
}

// WithTransport forces a delivery mechanism by name: "http" (pooled) or
// "request" (one-shot fallback). Default: capability-based selection.
func WithTransport(name string) Option {
	return func(o *options) { o.transportName = name }
}

// WithCustomTransport supplies a ready transport instance, bypassing both
// named and capability-based selection.
func WithCustomTransport(tr Transport) Option {
	return func(o *options) {
		o.factory = func(transport.Options) transport.Transport { return tr }
	}
}

// WithHTTPClient supplies the HTTP client used by the built-in transports.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTimeout bounds one delivery attempt. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithSkipFrames trims additional caller frames from synthetic message
// stacktraces, for callers that wrap capture in their own helper layers.
func WithSkipFrames(n int) Option {
	return func(o *options) { o.skipFrames = n }
}

// WithMaxBreadcrumbs caps the in-process engine's breadcrumb ring.
// Default: 100.
func WithMaxBreadcrumbs(n int) Option {
	return func(o *options) { o.maxBreadcrumbs = n }
}

// WithAsyncDelivery queues events for background delivery instead of
// sending inline. SendEvent then reports acceptance into the queue; call
// Close to drain it before the process exits.
func WithAsyncDelivery() Option {
	return func(o *options) { o.async = true }
}

// WithDedupWindow suppresses deliveries of events identical to the
// previous one within the window. SendEvent reports suppressed events with
// ErrRepeatedEvent. A non-positive window uses the default (5s).
func WithDedupWindow(d time.Duration) Option {
	return func(o *options) {
		o.dedupEnabled = true
		o.dedupWindow = d
	}
}

// WithEnvironment tags captured events with a deployment environment.
func WithEnvironment(env string) Option {
	return func(o *options) { o.environment = env }
}

// WithEngine supplies a custom capture engine. Default: the in-process
// engine.
func WithEngine(e engine.Engine) Option {
	return func(o *options) { o.engine = e }
}

// WithMetrics registers delivery-outcome counters on the given registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithOnEvent sets the handler for events produced by the engine's own
// instrumentation, outside any explicit capture call. Default: deliver
// through SendEvent and log the outcome.
func WithOnEvent(f func(*Event)) Option {
	return func(o *options) { o.onEvent = f }
}

// WithOnBreadcrumb sets the handler for breadcrumbs that arrive outside an
// explicit capture call. Default: record on the engine.
func WithOnBreadcrumb(f func(*Breadcrumb)) Option {
	return func(o *options) { o.onBreadcrumb = f }
}

// Public aliases of the canonical wire types.
type (
	// Event is the canonical record of one reportable occurrence.
	Event = model.Event
	// Breadcrumb is a trail entry recorded before an error.
	Breadcrumb = model.Breadcrumb
	// Response reports the outcome of one delivery attempt.
	Response = model.Response
	// Transport delivers one event and reports the outcome.
	Transport = transport.Transport
)

func defaultOptions() options {
	return options{
		adapterKind:    "host",
		maxBreadcrumbs: 100,
	}
}
