package domain

import (
	"context"
	"fmt"
	"time"
)

// HookID identifies a registered hook. IDs are assigned by the engine at
// registration and are the only handle for unregistering.
type HookID string

// HookFunc is the body of an ordinary hook. The context carries the hook's
// deadline when one is configured; bodies are expected to honor it.
type HookFunc func(ctx context.Context, hc *HookContext) error

// InterceptFunc is the body of a PhaseBeforeQuit interceptor. Returning a
// veto Decision aborts the shutdown attempt; returning an error is a hook
// failure and never blocks shutdown.
type InterceptFunc func(ctx context.Context, hc *HookContext) (Decision, error)

// Hook is a unit of work registered against a lifecycle phase.
type Hook struct {
	// Name labels the hook in logs, events and error records. Names must be
	// unique within a phase.
	Name string

	// Phase the hook runs in.
	Phase Phase

	// Priority orders execution within the phase: lower runs earlier, ties
	// preserve registration order.
	Priority int

	// Timeout bounds a single attempt. Zero means no deadline.
	Timeout time.Duration

	// Critical marks hooks whose exhausted failure may abort startup.
	Critical bool

	// NoRetry opts the hook out of automatic retries.
	NoRetry bool

	// Run is the hook body. Exactly one of Run and Intercept must be set.
	Run HookFunc

	// Intercept is the shutdown-interceptor body. Only valid on
	// PhaseBeforeQuit.
	Intercept InterceptFunc
}

// Validate checks the hook definition at registration time.
func (h Hook) Validate() error {
	if h.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidHook)
	}
	if !h.Phase.Valid() {
		return fmt.Errorf("%w: %q has unknown phase %d", ErrInvalidHook, h.Name, int(h.Phase))
	}
	if h.Timeout < 0 {
		return fmt.Errorf("%w: %q has negative timeout", ErrInvalidHook, h.Name)
	}
	if h.Run == nil && h.Intercept == nil {
		return fmt.Errorf("%w: %q has no body", ErrInvalidHook, h.Name)
	}
	if h.Run != nil && h.Intercept != nil {
		return fmt.Errorf("%w: %q sets both Run and Intercept", ErrInvalidHook, h.Name)
	}
	if h.Intercept != nil && h.Phase != PhaseBeforeQuit {
		return fmt.Errorf("%w: %q intercepts outside before-quit", ErrInvalidHook, h.Name)
	}
	return nil
}

// Registrar is the manager surface hooks may use from inside their bodies.
type Registrar interface {
	// RegisterHook adds a hook. Registration into a phase that already
	// started is accepted but the hook never runs.
	RegisterHook(h Hook) (HookID, error)

	// UnregisterHook removes a pending hook. It reports whether the hook
	// was found.
	UnregisterHook(phase Phase, id HookID) bool

	// CurrentPhase returns the phase currently executing, or the last one
	// reached.
	CurrentPhase() Phase

	// PhaseComplete reports whether the phase ran to completion.
	PhaseComplete(p Phase) bool
}

// HookContext is the read view handed to an executing hook. It is rebuilt
// once per phase transition; all hooks of a phase share one context.
type HookContext struct {
	phase Phase
	reg   Registrar
}

// NewHookContext builds the context for one phase's execution.
func NewHookContext(phase Phase, reg Registrar) *HookContext {
	return &HookContext{phase: phase, reg: reg}
}

// Phase returns the phase being executed.
func (hc *HookContext) Phase() Phase {
	return hc.phase
}

// Registrar returns the manager reference for late registration and lookups.
func (hc *HookContext) Registrar() Registrar {
	return hc.reg
}
