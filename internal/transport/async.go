package transport

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/wolfer717/raven-go/internal/model"
)

const (
	defaultQueueSize    = 256
	defaultDrainTimeout = 5 * time.Second
)

// AsyncOption configures an Async wrapper.
type AsyncOption func(*Async)

// WithQueueSize sets the queue capacity. Default: 256.
func WithQueueSize(n int) AsyncOption {
	return func(a *Async) { a.queueSize = n }
}

// WithOnError sets the callback invoked when the inner transport's Send
// fails. Default: logs a warning via slog.
func WithOnError(f func(error)) AsyncOption {
	return func(a *Async) { a.errFunc = f }
}

// WithDropOnFull makes Send drop the event when the queue is full instead
// of blocking the caller. Use where losing events beats stalling the
// reporting path.
func WithDropOnFull() AsyncOption {
	return func(a *Async) { a.dropOnFull = true }
}

// Async decouples capture from delivery via a buffered queue. Send
// enqueues and reports the event as accepted; a background goroutine
// drains the queue through the wrapped transport. Delivery errors reach
// the error callback rather than the caller.
type Async struct {
	inner      Transport
	ch         chan *model.Event
	done       chan struct{}
	errFunc    func(error)
	queueSize  int
	dropOnFull bool
	closeOnce  sync.Once
}

var _ Transport = (*Async)(nil)

// NewAsync wraps a transport in a queue-backed asynchronous sender. The
// background drain goroutine starts immediately.
func NewAsync(inner Transport, opts ...AsyncOption) *Async {
	a := &Async{
		inner:     inner,
		queueSize: defaultQueueSize,
		errFunc:   func(err error) { slog.Warn("transport: async delivery failed", "error", err) },
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ch = make(chan *model.Event, a.queueSize)
	a.done = make(chan struct{})
	go a.drain()
	return a
}

// Send implements Transport. The response reports acceptance into the
// queue, not delivery. By default a full queue blocks the caller
// (backpressure); with WithDropOnFull the event is dropped and the
// response marks it failed.
func (a *Async) Send(_ context.Context, ev *model.Event) (model.Response, error) {
	if a.dropOnFull {
		select {
		case a.ch <- ev:
		default:
			slog.Warn("transport: queue full, dropping event", "event_id", ev.EventID)
			return model.Response{Status: model.StatusFailed, EventID: ev.EventID}, nil
		}
		return model.Response{Status: model.StatusSuccess, EventID: ev.EventID}, nil
	}
	a.ch <- ev
	return model.Response{Status: model.StatusSuccess, EventID: ev.EventID}, nil
}

// Close stops accepting events and waits for the queue to drain, with a
// timeout. Send must not be called after Close.
func (a *Async) Close() error {
	a.closeOnce.Do(func() {
		close(a.ch)
		select {
		case <-a.done:
		case <-time.After(defaultDrainTimeout):
			slog.Warn("transport: queue drain timed out")
		}
	})
	return nil
}

// drain moves queued events through the inner transport.
func (a *Async) drain() {
	defer close(a.done)
	for ev := range a.ch {
		if _, err := a.inner.Send(context.Background(), ev); err != nil {
			a.errFunc(err)
		}
	}
}
