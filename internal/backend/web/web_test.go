package web

import (
	"context"
	"errors"
	"testing"

	"github.com/wolfer717/raven-go/internal/backend"
	"github.com/wolfer717/raven-go/internal/engine/inproc"
	"github.com/wolfer717/raven-go/internal/model"
	"github.com/wolfer717/raven-go/internal/normalize"
	"github.com/wolfer717/raven-go/internal/stacktrace"
)

type nullClient struct{}

func (nullClient) Send(*model.Event) {}
func (nullClient) CaptureBreadcrumb(*model.Breadcrumb) {}

type errorEvent struct {
	err error
}

func (e errorEvent) Err() error { return e.err }

func newAdapter(t *testing.T, cfg backend.Config) *Adapter {
	t.Helper()
	eng := inproc.New(normalize.New(&stacktrace.RuntimeTracer{}))
	a, err := New(eng, nullClient{}, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return a
}

func TestEventFromExceptionUnwrapsWrapper(t *testing.T) {
	a := newAdapter(t, backend.Config{})

	ev, err := a.EventFromException(errorEvent{err: errors.New("inner")})
	if err != nil {
		t.Fatalf("EventFromException failed: %v", err)
	}
	if ev.Exception == nil || ev.Exception.Value != "inner" {
		t.Fatalf("wrapper was not unwrapped: %+v", ev.Exception)
	}
	if ev.Platform != "javascript" {
		t.Errorf("Platform = %q", ev.Platform)
	}
}

func TestEventFromExceptionLegacyShape(t *testing.T) {
	a := newAdapter(t, backend.Config{})

	ev, err := a.EventFromException(map[string]any{
		"name":    "NotFoundError",
		"message": "no such node",
	})
	if err != nil {
		t.Fatalf("EventFromException failed: %v", err)
	}
	if ev.Exception != nil {
		t.Error("legacy shapes have no stack capability, no exception descriptor")
	}
	if ev.Message != "NotFoundError: no such node" {
		t.Errorf("Message = %q", ev.Message)
	}
}

func TestEventFromExceptionPlainRecord(t *testing.T) {
	a := newAdapter(t, backend.Config{})

	ev, err := a.EventFromException(map[string]any{"code": 42, "reason": "x"})
	if err != nil {
		t.Fatalf("EventFromException failed: %v", err)
	}
	if ev.Exception != nil {
		t.Error("plain records must not produce an exception descriptor")
	}
	if ev.Message != "Non-error object captured with keys: code, reason" {
		t.Errorf("Message = %q", ev.Message)
	}
}

func TestSendEventMissingDSN(t *testing.T) {
	a := newAdapter(t, backend.Config{})

	_, err := a.SendEvent(context.Background(), &model.Event{Message: "x"})
	if !errors.Is(err, backend.ErrMissingDSN) {
		t.Fatalf("err = %v, want ErrMissingDSN", err)
	}
}

func TestStoreMethodsAreNoOps(t *testing.T) {
	a := newAdapter(t, backend.Config{})

	// Storage belongs to the surrounding client; these must do nothing,
	// and in particular must not panic on nil input.
	a.StoreBreadcrumb(nil)
	a.StoreScope(nil)
}

func TestCaptureBreadcrumbThroughBridge(t *testing.T) {
	a := newAdapter(t, backend.Config{})

	crumb := &model.Breadcrumb{Message: "navigated"}
	got, err := a.CaptureBreadcrumb(crumb)
	if err != nil {
		t.Fatalf("CaptureBreadcrumb failed: %v", err)
	}
	if got != crumb {
		t.Error("returned breadcrumb is not the captured one")
	}
}
