package inproc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/wolfer717/raven-go/internal/engine"
	"github.com/wolfer717/raven-go/internal/model"
	"github.com/wolfer717/raven-go/internal/normalize"
	"github.com/wolfer717/raven-go/internal/stacktrace"
)

func newEngine(opts ...Option) *Engine {
	return New(normalize.New(&stacktrace.RuntimeTracer{}), opts...)
}

func TestInstallOnce(t *testing.T) {
	e := newEngine()
	if err := e.Install(engine.Hooks{}); err != nil {
		t.Fatalf("first Install failed: %v", err)
	}
	if err := e.Install(engine.Hooks{}); !errors.Is(err, engine.ErrAlreadyInstalled) {
		t.Fatalf("second Install = %v, want ErrAlreadyInstalled", err)
	}
}

func TestCaptureExceptionFiresOnSendOnce(t *testing.T) {
	e := newEngine()
	var fired []*model.Event
	e.Install(engine.Hooks{OnSend: func(ev *model.Event) { fired = append(fired, ev) }})

	e.CaptureException(errors.New("boom"))

	if len(fired) != 1 {
		t.Fatalf("OnSend fired %d times, want 1", len(fired))
	}
	if fired[0].Exception == nil || fired[0].Exception.Value != "boom" {
		t.Errorf("unexpected event: %+v", fired[0])
	}
}

func TestCaptureMessageFiresOnSendOnce(t *testing.T) {
	e := newEngine()
	var fired []*model.Event
	e.Install(engine.Hooks{OnSend: func(ev *model.Event) { fired = append(fired, ev) }})

	e.CaptureMessage("disk full")

	if len(fired) != 1 {
		t.Fatalf("OnSend fired %d times, want 1", len(fired))
	}
	if fired[0].Message != "disk full" {
		t.Errorf("Message = %q", fired[0].Message)
	}
}

func TestCaptureBreadcrumbFiresHookNotRecord(t *testing.T) {
	e := newEngine()
	var fired []*model.Breadcrumb
	e.Install(engine.Hooks{OnBreadcrumb: func(b *model.Breadcrumb) { fired = append(fired, b) }})

	e.CaptureBreadcrumb(&model.Breadcrumb{Message: "clicked"})

	if len(fired) != 1 {
		t.Fatalf("OnBreadcrumb fired %d times, want 1", len(fired))
	}
	if fired[0].Timestamp.IsZero() {
		t.Error("breadcrumb should be timestamped")
	}
	if len(e.Breadcrumbs()) != 0 {
		t.Error("CaptureBreadcrumb must not record directly; that is the hook owner's call")
	}
}

func TestRecordEvictsOldest(t *testing.T) {
	e := newEngine(WithMaxBreadcrumbs(2))

	for i := 0; i < 3; i++ {
		e.Record(&model.Breadcrumb{Message: fmt.Sprintf("b%d", i)})
	}

	got := e.Breadcrumbs()
	if len(got) != 2 {
		t.Fatalf("ring size = %d, want 2", len(got))
	}
	if got[0].Message != "b1" || got[1].Message != "b2" {
		t.Errorf("ring = [%s %s], want [b1 b2]", got[0].Message, got[1].Message)
	}
}

func TestSendUsesSendFunc(t *testing.T) {
	wantErr := errors.New("collector down")
	var sent *model.Event
	e := newEngine(WithSendFunc(func(ev *model.Event) error {
		sent = ev
		return wantErr
	}))

	var got error
	e.Send(&model.Event{Message: "hi"}, func(err error) { got = err })

	if sent == nil || sent.Message != "hi" {
		t.Errorf("send func did not receive the event")
	}
	if !errors.Is(got, wantErr) {
		t.Errorf("callback error = %v, want %v", got, wantErr)
	}
}

func TestSendDefaultsToSuccess(t *testing.T) {
	e := newEngine()
	called := false
	e.Send(&model.Event{}, func(err error) {
		called = true
		if err != nil {
			t.Errorf("default Send error = %v, want nil", err)
		}
	})
	if !called {
		t.Error("done callback was not invoked")
	}
}
