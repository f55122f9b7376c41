package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/wolfer717/raven-go/internal/dsn"
	"github.com/wolfer717/raven-go/internal/model"
	"github.com/wolfer717/raven-go/internal/transport"
)

type stubTransport struct {
	sent []*model.Event
	resp model.Response
	err  error
}

func (s *stubTransport) Send(_ context.Context, ev *model.Event) (model.Response, error) {
	s.sent = append(s.sent, ev)
	return s.resp, s.err
}

func mustDSN(t *testing.T) *dsn.DSN {
	t.Helper()
	d, err := dsn.Parse("https://pub@collector.example.com/42")
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestSendEventMissingDSN(t *testing.T) {
	stub := &stubTransport{}
	d := NewDispatcher(Config{
		Factory: func(transport.Options) transport.Transport { return stub },
	})

	resp, err := d.SendEvent(context.Background(), &model.Event{Message: "x"})

	if !errors.Is(err, ErrMissingDSN) {
		t.Fatalf("err = %v, want ErrMissingDSN", err)
	}
	if resp.Status != model.StatusFailed {
		t.Errorf("Status = %v, want failed", resp.Status)
	}
	if len(stub.sent) != 0 {
		t.Error("no network call may be attempted without a DSN")
	}
}

func TestSendEventUsesExplicitFactory(t *testing.T) {
	stub := &stubTransport{resp: model.Response{Status: model.StatusSuccess, StatusCode: 200}}
	d := NewDispatcher(Config{
		DSN:     mustDSN(t),
		Factory: func(transport.Options) transport.Transport { return stub },
		// Capability detection must not matter when a factory is given.
		Detect: func() transport.Capabilities { return transport.Capabilities{HTTP2: true} },
	})

	ev := &model.Event{Message: "x"}
	resp, err := d.SendEvent(context.Background(), ev)
	if err != nil {
		t.Fatalf("SendEvent failed: %v", err)
	}
	if resp.Status != model.StatusSuccess || resp.StatusCode != 200 {
		t.Errorf("outcome not returned unchanged: %+v", resp)
	}
	if len(stub.sent) != 1 || stub.sent[0] != ev {
		t.Error("event did not reach the explicit transport")
	}
}

func TestSendEventFallbackSelection(t *testing.T) {
	d := NewDispatcher(Config{
		DSN:    mustDSN(t),
		Detect: func() transport.Capabilities { return transport.Capabilities{HTTP2: false} },
	})

	tr := d.build()
	if _, ok := tr.(*transport.RequestTransport); !ok {
		t.Fatalf("selected %T, want *transport.RequestTransport", tr)
	}
}

func TestSendEventPreferredSelection(t *testing.T) {
	d := NewDispatcher(Config{
		DSN:    mustDSN(t),
		Detect: func() transport.Capabilities { return transport.Capabilities{HTTP2: true} },
	})

	tr := d.build()
	if _, ok := tr.(*transport.HTTPTransport); !ok {
		t.Fatalf("selected %T, want *transport.HTTPTransport", tr)
	}
}

func TestSendEventExplicitTransportOptions(t *testing.T) {
	var got transport.Options
	d := NewDispatcher(Config{
		DSN: mustDSN(t),
		TransportOptions: &transport.Options{
			Headers: map[string]string{"X-Env": "staging"},
		},
		Factory: func(opts transport.Options) transport.Transport {
			got = opts
			return &stubTransport{}
		},
	})

	d.SendEvent(context.Background(), &model.Event{})

	if got.Headers["X-Env"] != "staging" {
		t.Error("explicit transport options were not used")
	}
	if got.DSN == nil {
		t.Error("the resolved DSN must accompany explicit options")
	}
}

func TestPrepare(t *testing.T) {
	ev := Prepare(&model.Event{}, "go")
	if ev.EventID == "" || len(ev.EventID) != 32 {
		t.Errorf("EventID = %q, want 32 hex chars", ev.EventID)
	}
	if ev.Timestamp.IsZero() {
		t.Error("Timestamp must be stamped")
	}
	if ev.Platform != "go" {
		t.Errorf("Platform = %q", ev.Platform)
	}

	// Existing identity is kept.
	again := Prepare(ev, "other")
	if again.Platform != "go" {
		t.Error("Prepare must not overwrite existing fields")
	}
}
