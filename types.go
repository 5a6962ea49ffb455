package liftoff

import (
	"github.com/liftlab/liftoff/internal/app"
	"github.com/liftlab/liftoff/internal/domain"
	"github.com/liftlab/liftoff/internal/ports"
	"github.com/liftlab/liftoff/internal/recovery"
	"github.com/liftlab/liftoff/pkg/log"
)

// Core lifecycle types, re-exported from the engine.
type (
	// Phase is a position in the lifecycle sequence.
	Phase = domain.Phase

	// Hook is a unit of work registered against a phase.
	Hook = domain.Hook

	// HookID is the registration handle used to unregister a hook.
	HookID = domain.HookID

	// HookFunc is the body of an ordinary hook.
	HookFunc = domain.HookFunc

	// InterceptFunc is the body of a before-quit interceptor.
	InterceptFunc = domain.InterceptFunc

	// HookContext is the read view handed to an executing hook.
	HookContext = domain.HookContext

	// Registrar is the manager surface available from inside hook bodies.
	Registrar = domain.Registrar

	// Decision is an interceptor's verdict on a shutdown request.
	Decision = domain.Decision

	// RetryConfig is the process-wide retry and backoff policy.
	RetryConfig = domain.RetryConfig

	// RetryOverrides is a partial retry policy update.
	RetryOverrides = domain.RetryOverrides

	// LifecycleError is the failure record kept for an exhausted hook.
	LifecycleError = domain.LifecycleError

	// Status is the manager's coarse lifecycle position.
	Status = app.Status

	// RecoveryStats summarizes hook failures and recoveries.
	RecoveryStats = recovery.Stats
)

// Lifecycle phases in execution order.
const (
	PhaseInit        = domain.PhaseInit
	PhaseBeforeStart = domain.PhaseBeforeStart
	PhaseReady       = domain.PhaseReady
	PhaseAfterStart  = domain.PhaseAfterStart
	PhaseBeforeQuit  = domain.PhaseBeforeQuit
	PhaseWillQuit    = domain.PhaseWillQuit
)

// Manager statuses.
const (
	StatusNew          = app.StatusNew
	StatusStarting     = app.StatusStarting
	StatusRunning      = app.StatusRunning
	StatusShuttingDown = app.StatusShuttingDown
	StatusTerminated   = app.StatusTerminated
	StatusFailed       = app.StatusFailed
)

// Sentinel errors.
var (
	ErrAlreadyStarted = domain.ErrAlreadyStarted
	ErrStartupAborted = domain.ErrStartupAborted
	ErrHookTimeout    = domain.ErrHookTimeout
	ErrInvalidHook    = domain.ErrInvalidHook
	ErrDuplicateHook  = domain.ErrDuplicateHook
	ErrInvalidConfig  = domain.ErrInvalidConfig
	ErrClosed         = domain.ErrClosed
	ErrPluginInit     = domain.ErrPluginInit
)

// Proceed allows a shutdown request to continue.
func Proceed() Decision { return domain.Proceed() }

// Veto blocks a shutdown request, recording why.
func Veto(reason string) Decision { return domain.Veto(reason) }

// DefaultRetryConfig returns the standard retry policy.
func DefaultRetryConfig() RetryConfig { return domain.DefaultRetryConfig() }

// StartupPhases returns the startup sequence in order.
func StartupPhases() []Phase { return domain.StartupPhases() }

// ShutdownPhases returns the shutdown sequence in order.
func ShutdownPhases() []Phase { return domain.ShutdownPhases() }

// Integration ports. Implement these to put the lifecycle behind your own
// UI or host environment.
type (
	// ProgressSurface displays lifecycle progress.
	ProgressSurface = ports.ProgressSurface

	// RecoveryDialog asks the user how to handle a critical failure.
	RecoveryDialog = ports.RecoveryDialog

	// DialogRequest describes one recovery prompt.
	DialogRequest = ports.DialogRequest

	// DialogButton is one offered answer.
	DialogButton = ports.DialogButton

	// DialogChoice is a recovery dialog answer.
	DialogChoice = ports.DialogChoice

	// ExitSignal delivers host exit requests to the manager.
	ExitSignal = ports.ExitSignal
)

// Recovery dialog answers.
const (
	ChoiceRetry    = ports.ChoiceRetry
	ChoiceContinue = ports.ChoiceContinue
	ChoiceAbort    = ports.ChoiceAbort
)

// Logging types from pkg/log, re-exported for convenience.
type (
	// Logger is the structured logger interface the manager logs through.
	Logger = log.Logger

	// Field is one structured log field.
	Field = log.Field
)
