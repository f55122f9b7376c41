// Package transport delivers canonical events to the remote collector.
// Mechanism selection is a pure function of configuration and runtime
// capability; it never probes the network.
package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/wolfer717/raven-go/internal/dsn"
	"github.com/wolfer717/raven-go/internal/model"
)

// ClientVersion identifies this client in the collector auth header.
const ClientVersion = "raven-go/1.0"

const defaultTimeout = 30 * time.Second

// Transport delivers one event and reports the outcome. Ordinary network
// failures resolve as a failed Response plus a *DeliveryError; Send never
// panics for them.
type Transport interface {
	Send(ctx context.Context, ev *model.Event) (model.Response, error)
}

// Options is the configuration bag handed to whichever transport is
// instantiated.
type Options struct {
	DSN        *dsn.DSN
	HTTPClient *http.Client
	Timeout    time.Duration
	Headers    map[string]string
}

// Factory constructs a transport from resolved options.
type Factory func(Options) Transport

// DeliveryError reports a transport-level send failure: a transient
// network or collector condition, non-fatal to the host application.
type DeliveryError struct {
	StatusCode int
	Reason     string
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport: HTTP %d: %s", e.StatusCode, e.Reason)
	}
	return "transport: " + e.Reason
}

// Capabilities describes what the runtime's HTTP stack supports.
type Capabilities struct {
	// HTTP2 reports whether the default transport attempts HTTP/2 with
	// shared connection pooling.
	HTTP2 bool
}

// Detect inspects the runtime's default HTTP transport. Overridable in
// tests.
var Detect = func() Capabilities {
	t, ok := http.DefaultTransport.(*http.Transport)
	return Capabilities{HTTP2: ok && t.ForceAttemptHTTP2}
}

// Select picks the transport factory: an explicit factory always wins;
// otherwise the pooled mechanism when the runtime supports it, else the
// one-shot fallback.
func Select(explicit Factory, caps Capabilities) Factory {
	if explicit != nil {
		return explicit
	}
	if caps.HTTP2 {
		return NewHTTP
	}
	return NewRequest
}
