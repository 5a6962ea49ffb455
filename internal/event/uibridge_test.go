package event

import (
	"errors"
	"fmt"
	"testing"

	"github.com/liftlab/liftoff/internal/domain"
)

type recordingSink struct {
	events []Event
}

func (s *recordingSink) Deliver(ev Event) {
	s.events = append(s.events, ev)
}

func TestUIBridge_StripsErrorDetail(t *testing.T) {
	bus := NewBus(nil)
	sink := &recordingSink{}
	bridge := NewUIBridge(bus, sink)
	defer bridge.Close()

	// A diagnostics subscriber on the same bus sees the full event.
	var diagnostic ErrorOccurredEvent
	bus.Subscribe(TypeErrorOccurred, func(ev Event) {
		diagnostic = ev.(ErrorOccurredEvent)
	})

	cause := errors.New("permission denied")
	lerr := &domain.LifecycleError{
		HookName: "open-journal",
		Phase:    domain.PhaseBeforeStart,
		Err:      fmt.Errorf("opening journal: %w", cause),
		Stack:    "goroutine 1 [running]:\nmain.main()",
		Critical: true,
	}
	bus.Publish(NewErrorOccurred(lerr))

	if diagnostic.Stack == "" {
		t.Fatal("diagnostics channel lost the stack trace")
	}
	if !errors.Is(diagnostic.Err, cause) {
		t.Error("diagnostics channel lost the wrapped error chain")
	}

	if len(sink.events) != 1 {
		t.Fatalf("sink received %d events, want 1", len(sink.events))
	}
	redacted, ok := sink.events[0].(ErrorOccurredEvent)
	if !ok {
		t.Fatalf("sink received %T, want ErrorOccurredEvent", sink.events[0])
	}
	if redacted.Stack != "" {
		t.Errorf("UI channel leaked a stack trace: %q", redacted.Stack)
	}
	if errors.Is(redacted.Err, cause) {
		t.Error("UI channel leaked the wrapped error chain")
	}
	if redacted.Err == nil || redacted.Err.Error() != lerr.Err.Error() {
		t.Errorf("UI channel error message = %v, want %q", redacted.Err, lerr.Err.Error())
	}
	if redacted.HookName != "open-journal" || !redacted.Critical {
		t.Errorf("redaction dropped payload fields: %+v", redacted)
	}
}

func TestUIBridge_PassesOtherEventsThrough(t *testing.T) {
	bus := NewBus(nil)
	sink := &recordingSink{}
	bridge := NewUIBridge(bus, sink)
	defer bridge.Close()

	bus.Publish(NewPhaseStarted(domain.PhaseInit, 2))
	bus.Publish(NewProgressUpdated(domain.PhaseInit, 12.5, "load-config"))

	if len(sink.events) != 2 {
		t.Fatalf("sink received %d events, want 2", len(sink.events))
	}
	if _, ok := sink.events[0].(PhaseStartedEvent); !ok {
		t.Errorf("sink event 0 = %T, want PhaseStartedEvent", sink.events[0])
	}
	progress, ok := sink.events[1].(ProgressUpdatedEvent)
	if !ok {
		t.Fatalf("sink event 1 = %T, want ProgressUpdatedEvent", sink.events[1])
	}
	if progress.Percent != 12.5 || progress.Message != "load-config" {
		t.Errorf("progress event = %+v", progress)
	}
}

func TestUIBridge_Close(t *testing.T) {
	bus := NewBus(nil)
	sink := &recordingSink{}
	bridge := NewUIBridge(bus, sink)

	bridge.Close()
	bus.Publish(NewPhaseStarted(domain.PhaseInit, 0))

	if len(sink.events) != 0 {
		t.Errorf("sink received %d events after Close, want 0", len(sink.events))
	}
}

func TestShutdownPreventedEvent(t *testing.T) {
	ev := NewShutdownPrevented("confirm-quit", "unsaved changes")

	if !ev.ShutdownPrevented {
		t.Error("ShutdownPrevented = false")
	}
	if ev.Phase != domain.PhaseBeforeQuit {
		t.Errorf("Phase = %v, want before-quit", ev.Phase)
	}
	if ev.Critical {
		t.Error("a veto must not be marked critical")
	}
	if ev.Err == nil || ev.Err.Error() != "unsaved changes" {
		t.Errorf("Err = %v, want the veto reason", ev.Err)
	}
	if ev.Stack != "" {
		t.Error("a veto must not carry a stack")
	}
}
