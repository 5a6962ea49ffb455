package liftoff

import (
	"github.com/liftlab/liftoff/internal/event"
)

// Event stream types, re-exported from the engine's bus.
type (
	// Bus is the synchronous publish/subscribe event bus.
	Bus = event.Bus

	// Event is the interface every lifecycle event satisfies.
	Event = event.Event

	// EventHandler consumes published events.
	EventHandler = event.Handler

	// Sink receives the redacted, user-facing event stream.
	Sink = event.Sink

	// PhaseStartedEvent announces a phase beginning execution.
	PhaseStartedEvent = event.PhaseStartedEvent

	// PhaseCompletedEvent reports a finished phase with its counters.
	PhaseCompletedEvent = event.PhaseCompletedEvent

	// HookExecutedEvent reports one hook finishing, whatever the outcome.
	HookExecutedEvent = event.HookExecutedEvent

	// HookRecoveredEvent reports a hook succeeding after retries.
	HookRecoveredEvent = event.HookRecoveredEvent

	// ErrorOccurredEvent reports an exhausted hook failure or a vetoed
	// shutdown.
	ErrorOccurredEvent = event.ErrorOccurredEvent

	// ProgressUpdatedEvent reports sequence-relative progress.
	ProgressUpdatedEvent = event.ProgressUpdatedEvent

	// ShutdownRequestedEvent announces a shutdown attempt beginning.
	ShutdownRequestedEvent = event.ShutdownRequestedEvent
)

// Event type identifiers, usable with Bus.Subscribe.
const (
	TypePhaseStarted      = event.TypePhaseStarted
	TypePhaseCompleted    = event.TypePhaseCompleted
	TypeHookExecuted      = event.TypeHookExecuted
	TypeHookRecovered     = event.TypeHookRecovered
	TypeErrorOccurred     = event.TypeErrorOccurred
	TypeProgressUpdated   = event.TypeProgressUpdated
	TypeShutdownRequested = event.TypeShutdownRequested
)
