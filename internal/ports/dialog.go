package ports

import (
	"context"
	"time"
)

// DialogChoice is a recovery dialog answer.
type DialogChoice string

const (
	// ChoiceRetry re-runs the failed hook with a fresh retry budget.
	ChoiceRetry DialogChoice = "retry"

	// ChoiceContinue accepts the failure and continues degraded.
	ChoiceContinue DialogChoice = "continue"

	// ChoiceAbort halts startup. This is the default on timeout.
	ChoiceAbort DialogChoice = "abort"
)

// DialogButton is one offered answer.
type DialogButton struct {
	// Choice is the value returned when this button is picked.
	Choice DialogChoice

	// Label is the user-facing text.
	Label string
}

// DialogRequest describes a critical-failure prompt. Buttons lists only the
// answers valid for this failure: Retry is absent for non-retryable hooks,
// Continue is absent when degradation is disallowed.
type DialogRequest struct {
	Title   string
	Message string
	Buttons []DialogButton

	// Timeout is informational for the implementation; the engine enforces
	// its own deadline and treats an overdue reply as abort.
	Timeout time.Duration
}

// RecoveryDialog asks the user how to proceed after a critical hook
// exhausted its retries. Implementations block until an answer, ctx
// cancellation, or their own failure; the engine treats errors and
// timeouts as ChoiceAbort.
type RecoveryDialog interface {
	Show(ctx context.Context, req DialogRequest) (DialogChoice, error)
}
