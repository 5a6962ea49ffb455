package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors returned by the public API. All can be checked with
// errors.Is.
var (
	// ErrAlreadyStarted is returned when Start is called more than once.
	ErrAlreadyStarted = errors.New("liftoff: already started")

	// ErrStartupAborted is returned by Start when a critical hook failure
	// halts the startup sequence. The wrapping names the hook.
	ErrStartupAborted = errors.New("liftoff: startup aborted")

	// ErrHookTimeout marks a hook attempt that exceeded its budget.
	ErrHookTimeout = errors.New("liftoff: hook timed out")

	// ErrInvalidHook is returned when hook registration fails validation.
	ErrInvalidHook = errors.New("liftoff: invalid hook")

	// ErrDuplicateHook is returned when a hook name is already registered
	// in the same phase.
	ErrDuplicateHook = errors.New("liftoff: duplicate hook name")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("liftoff: invalid configuration")

	// ErrClosed is returned on use after Close.
	ErrClosed = errors.New("liftoff: manager closed")

	// ErrPluginInit is returned by Start when a plugin fails to initialize.
	ErrPluginInit = errors.New("liftoff: plugin initialization failed")
)

// LifecycleError records one exhausted hook failure. Stack is populated at
// capture time and travels only on the diagnostics channel; the UI bridge
// strips it.
type LifecycleError struct {
	// HookName is the failing hook.
	HookName string

	// Phase the hook ran in.
	Phase Phase

	// Err is the final attempt's error.
	Err error

	// Stack is the capture-site stack trace. Diagnostics only.
	Stack string

	// Timestamp is when the failure was recorded.
	Timestamp time.Time

	// Duration covers the full attempt sequence including backoff waits.
	Duration time.Duration

	// Critical mirrors the hook definition.
	Critical bool

	// Retries is the number of retries consumed (attempts minus one).
	Retries int
}

// Error implements the error interface.
func (e *LifecycleError) Error() string {
	return fmt.Sprintf("liftoff: hook %q failed during %s: %v", e.HookName, e.Phase, e.Err)
}

// Unwrap exposes the final attempt's error to errors.Is and errors.As.
func (e *LifecycleError) Unwrap() error {
	return e.Err
}
