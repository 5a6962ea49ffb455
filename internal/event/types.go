// Package event defines the lifecycle engine's typed events and the bus
// that carries them.
//
// Subscribing a handler directly to the bus is the diagnostics channel:
// events arrive as published, including stack traces on error events.
// The UI channel is the [UIBridge], which forwards the same stream with
// error detail stripped. Keeping the two apart is a deliberate boundary:
// user-facing surfaces never see internals they could leak.
package event

import (
	"errors"
	"time"

	"github.com/liftlab/liftoff/internal/domain"
)

// Event type identifiers, "category.action" style.
const (
	TypePhaseStarted      = "phase.started"
	TypePhaseCompleted    = "phase.completed"
	TypeHookExecuted      = "hook.executed"
	TypeHookRecovered     = "hook.recovered"
	TypeErrorOccurred     = "error.occurred"
	TypeProgressUpdated   = "progress.updated"
	TypeShutdownRequested = "shutdown.requested"
)

// Event is the interface all lifecycle events implement.
type Event interface {
	// EventType returns the event's type identifier.
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides the common fields. Embed it in concrete event types.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// PhaseStartedEvent is emitted when a phase begins executing its hooks.
type PhaseStartedEvent struct {
	baseEvent
	Phase     domain.Phase
	HookCount int
}

// NewPhaseStarted creates a PhaseStartedEvent.
func NewPhaseStarted(phase domain.Phase, hookCount int) PhaseStartedEvent {
	return PhaseStartedEvent{
		baseEvent: newBaseEvent(TypePhaseStarted),
		Phase:     phase,
		HookCount: hookCount,
	}
}

// PhaseCompletedEvent is emitted when a phase ran to completion. Failed
// counts hooks that exhausted their retries, including those the engine
// then degraded past.
type PhaseCompletedEvent struct {
	baseEvent
	Phase     domain.Phase
	Duration  time.Duration
	HookCount int
	Succeeded int
	Failed    int
}

// NewPhaseCompleted creates a PhaseCompletedEvent.
func NewPhaseCompleted(phase domain.Phase, duration time.Duration, hookCount, succeeded, failed int) PhaseCompletedEvent {
	return PhaseCompletedEvent{
		baseEvent: newBaseEvent(TypePhaseCompleted),
		Phase:     phase,
		Duration:  duration,
		HookCount: hookCount,
		Succeeded: succeeded,
		Failed:    failed,
	}
}

// HookExecutedEvent is emitted after each hook finishes, whatever the
// outcome.
type HookExecutedEvent struct {
	baseEvent
	Name     string
	Phase    domain.Phase
	Priority int
	Critical bool
	Timeout  time.Duration
}

// NewHookExecuted creates a HookExecutedEvent from the hook definition.
func NewHookExecuted(h domain.Hook) HookExecutedEvent {
	return HookExecutedEvent{
		baseEvent: newBaseEvent(TypeHookExecuted),
		Name:      h.Name,
		Phase:     h.Phase,
		Priority:  h.Priority,
		Critical:  h.Critical,
		Timeout:   h.Timeout,
	}
}

// HookRecoveredEvent is emitted when a hook succeeds after at least one
// retry.
type HookRecoveredEvent struct {
	baseEvent
	Name     string
	Phase    domain.Phase
	Attempts int
}

// NewHookRecovered creates a HookRecoveredEvent.
func NewHookRecovered(name string, phase domain.Phase, attempts int) HookRecoveredEvent {
	return HookRecoveredEvent{
		baseEvent: newBaseEvent(TypeHookRecovered),
		Name:      name,
		Phase:     phase,
		Attempts:  attempts,
	}
}

// ErrorOccurredEvent is emitted when a hook exhausts its attempts, and on
// a vetoed shutdown with ShutdownPrevented set. Stack travels only on the
// diagnostics channel.
type ErrorOccurredEvent struct {
	baseEvent
	HookName          string
	Phase             domain.Phase
	Err               error
	Stack             string
	Critical          bool
	ShutdownPrevented bool
}

// NewErrorOccurred creates an ErrorOccurredEvent from a failure record.
func NewErrorOccurred(lerr *domain.LifecycleError) ErrorOccurredEvent {
	return ErrorOccurredEvent{
		baseEvent: newBaseEvent(TypeErrorOccurred),
		HookName:  lerr.HookName,
		Phase:     lerr.Phase,
		Err:       lerr.Err,
		Stack:     lerr.Stack,
		Critical:  lerr.Critical,
	}
}

// NewShutdownPrevented creates the veto variant of ErrorOccurredEvent.
// The reason rides in Err; a veto is an anticipated outcome, so there is
// no stack and no critical flag.
func NewShutdownPrevented(hookName, reason string) ErrorOccurredEvent {
	return ErrorOccurredEvent{
		baseEvent:         newBaseEvent(TypeErrorOccurred),
		HookName:          hookName,
		Phase:             domain.PhaseBeforeQuit,
		Err:               errors.New(reason),
		ShutdownPrevented: true,
	}
}

// Redacted returns a copy safe for user-facing surfaces: the stack is
// dropped and the error is flattened to its message, severing any wrapped
// chain a handler could introspect.
func (e ErrorOccurredEvent) Redacted() ErrorOccurredEvent {
	clone := e
	clone.Stack = ""
	if e.Err != nil {
		clone.Err = errors.New(e.Err.Error())
	}
	return clone
}

// ProgressUpdatedEvent is emitted as hooks complete within a phase. Percent
// is monotonic within a sequence and lands on the phase band edges at phase
// boundaries.
type ProgressUpdatedEvent struct {
	baseEvent
	Phase   domain.Phase
	Percent float64
	Message string
}

// NewProgressUpdated creates a ProgressUpdatedEvent.
func NewProgressUpdated(phase domain.Phase, percent float64, message string) ProgressUpdatedEvent {
	return ProgressUpdatedEvent{
		baseEvent: newBaseEvent(TypeProgressUpdated),
		Phase:     phase,
		Percent:   percent,
		Message:   message,
	}
}

// ShutdownRequestedEvent is emitted when a shutdown attempt begins, carrying
// the pending shutdown-hook counts.
type ShutdownRequestedEvent struct {
	baseEvent
	BeforeQuitHooks int
	WillQuitHooks   int
}

// NewShutdownRequested creates a ShutdownRequestedEvent.
func NewShutdownRequested(beforeQuit, willQuit int) ShutdownRequestedEvent {
	return ShutdownRequestedEvent{
		baseEvent:       newBaseEvent(TypeShutdownRequested),
		BeforeQuitHooks: beforeQuit,
		WillQuitHooks:   willQuit,
	}
}
