// Package recovery turns hook failures into outcomes.
//
// The Handler owns the retry policy, the bounded failure history, and the
// critical-failure dialog flow. The engine hands it every hook execution;
// the Handler decides between success, degraded continuation, and abort.
package recovery

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/zoobzio/clockz"

	"github.com/liftlab/liftoff/internal/domain"
	"github.com/liftlab/liftoff/internal/event"
	"github.com/liftlab/liftoff/internal/ports"
	"github.com/liftlab/liftoff/pkg/log"
)

// DefaultDialogTimeout bounds how long an unattended recovery dialog can
// hold up startup before the safe default (abort) applies.
const DefaultDialogTimeout = 60 * time.Second

// Outcome is how a hook execution ended after recovery ran its course.
type Outcome int

const (
	// OutcomeSuccess means the hook returned nil, possibly after retries.
	OutcomeSuccess Outcome = iota

	// OutcomeDegraded means the hook exhausted its attempts but the
	// lifecycle continues without it.
	OutcomeDegraded

	// OutcomeAborted means the failure must halt the sequence.
	OutcomeAborted
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeDegraded:
		return "degraded"
	case OutcomeAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Result reports one hook execution.
type Result struct {
	Outcome Outcome

	// Decision carries an interceptor's answer. Zero (proceed) for
	// ordinary hooks.
	Decision domain.Decision

	// Attempts executed in the final automatic sequence.
	Attempts int

	// Err is the failure record when Outcome is not success.
	Err *domain.LifecycleError
}

// ExecOptions select the escalation rules for one execution.
type ExecOptions struct {
	// AllowDialog lets a critical failure consult the recovery dialog.
	// Startup sets it; shutdown never does.
	AllowDialog bool

	// ForceDegrade makes every exhausted failure degrade. Shutdown sets
	// it: hook errors never block termination.
	ForceDegrade bool
}

// Config configures a Handler. Nil and zero fields get safe defaults.
type Config struct {
	// Retry is the initial policy. Zero value means DefaultRetryConfig.
	Retry domain.RetryConfig

	// Logger for recovery decisions. Nil means silent.
	Logger log.Logger

	// Clock drives backoff waits, timeout races and dialog deadlines.
	Clock clockz.Clock

	// Bus receives error and recovery events. Nil means a private bus
	// nobody listens to.
	Bus *event.Bus

	// Dialog is consulted on critical failures. Nil disables the flow.
	Dialog ports.RecoveryDialog

	// Degradation allows critical hooks to fail without aborting.
	Degradation bool

	// DialogTimeout overrides DefaultDialogTimeout when positive.
	DialogTimeout time.Duration
}

// Handler executes hooks under the retry policy and resolves failures.
type Handler struct {
	mu       sync.Mutex
	retry    domain.RetryConfig
	failures *failureLog
	retrying map[string]int // hook name -> retries consumed, cleared on success

	logger        log.Logger
	clock         clockz.Clock
	bus           *event.Bus
	dialog        ports.RecoveryDialog
	degradation   bool
	dialogTimeout time.Duration
}

// New creates a Handler.
func New(cfg Config) *Handler {
	h := &Handler{
		retry:         cfg.Retry,
		failures:      newFailureLog(maxTrackedFailures),
		retrying:      make(map[string]int),
		logger:        cfg.Logger,
		clock:         cfg.Clock,
		bus:           cfg.Bus,
		dialog:        cfg.Dialog,
		degradation:   cfg.Degradation,
		dialogTimeout: cfg.DialogTimeout,
	}
	if h.retry == (domain.RetryConfig{}) {
		h.retry = domain.DefaultRetryConfig()
	}
	if h.logger == nil {
		h.logger = log.NewNoopLogger()
	}
	if h.clock == nil {
		h.clock = clockz.RealClock
	}
	if h.bus == nil {
		h.bus = event.NewBus(h.logger)
	}
	if h.dialogTimeout <= 0 {
		h.dialogTimeout = DefaultDialogTimeout
	}
	return h
}

// Execute runs the hook through the full recovery flow: automatic attempts
// with capped exponential backoff, then escalation per the hook's
// criticality and the options. Dialog Retry answers re-enter a fresh
// automatic sequence, so total attempts grow only through explicit user
// choices.
func (h *Handler) Execute(ctx context.Context, hook domain.Hook, hc *domain.HookContext, opts ExecOptions) Result {
	seqStart := h.clock.Now()
	for {
		dec, attempts, err := h.runAttempts(ctx, hook, hc)
		if err == nil {
			h.clearRetrying(hook.Name)
			if attempts > 1 {
				h.logger.Info("hook recovered",
					log.String("hook", hook.Name),
					log.String("phase", hook.Phase.String()),
					log.Int("attempts", attempts),
				)
				h.bus.Publish(event.NewHookRecovered(hook.Name, hook.Phase, attempts))
			}
			return Result{Outcome: OutcomeSuccess, Decision: dec, Attempts: attempts}
		}

		lerr := &domain.LifecycleError{
			HookName:  hook.Name,
			Phase:     hook.Phase,
			Err:       err,
			Stack:     string(debug.Stack()),
			Timestamp: h.clock.Now(),
			Duration:  h.clock.Now().Sub(seqStart),
			Critical:  hook.Critical,
			Retries:   attempts - 1,
		}
		h.recordFailure(lerr)
		h.logger.Error("hook failed",
			log.String("hook", hook.Name),
			log.String("phase", hook.Phase.String()),
			log.Bool("critical", hook.Critical),
			log.Int("attempts", attempts),
			log.Err(err),
		)
		h.bus.Publish(event.NewErrorOccurred(lerr))

		outcome, retryAgain := h.resolve(ctx, hook, lerr, opts)
		if retryAgain {
			continue
		}
		return Result{Outcome: outcome, Attempts: attempts, Err: lerr}
	}
}

// runAttempts executes the automatic attempt sequence. The budget is fixed
// when the sequence starts; backoff delays read the live policy, so a
// config update mid-sequence changes the next wait.
func (h *Handler) runAttempts(ctx context.Context, hook domain.Hook, hc *domain.HookContext) (domain.Decision, int, error) {
	budget := h.attemptBudget(hook)
	var lastErr error
	for n := 1; n <= budget; n++ {
		if n > 1 {
			delay := h.RetryConfig().DelayFor(n)
			h.markRetrying(hook.Name, n-1)
			h.logger.Warn("hook attempt failed, backing off",
				log.String("hook", hook.Name),
				log.Int("attempt", n-1),
				log.Duration("backoff", delay),
				log.Err(lastErr),
			)
			select {
			case <-h.clock.After(delay):
			case <-ctx.Done():
				return domain.Decision{}, n - 1, ctx.Err()
			}
		}
		dec, err := h.runOnce(ctx, hook, hc)
		if err == nil {
			return dec, n, nil
		}
		lastErr = err
	}
	return domain.Decision{}, budget, lastErr
}

func (h *Handler) attemptBudget(hook domain.Hook) int {
	if hook.NoRetry {
		return 1
	}
	cfg := h.RetryConfig()
	if cfg.MaxRetries <= 0 {
		return 1
	}
	return cfg.MaxRetries + 1
}

type attemptResult struct {
	dec domain.Decision
	err error
}

// runOnce executes a single attempt under the hook's timeout. The body
// races the clock; on timeout the attempt's context is canceled and a late
// cooperative return is discarded. Interruption is cooperative only: a
// body that ignores its context keeps its goroutine until it returns.
func (h *Handler) runOnce(ctx context.Context, hook domain.Hook, hc *domain.HookContext) (domain.Decision, error) {
	if hook.Timeout <= 0 {
		select {
		case <-ctx.Done():
			return domain.Decision{}, ctx.Err()
		default:
		}
		return h.invoke(ctx, hook, hc)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	resCh := make(chan attemptResult, 1)
	go func() {
		dec, err := h.invoke(runCtx, hook, hc)
		resCh <- attemptResult{dec: dec, err: err}
	}()

	select {
	case r := <-resCh:
		return r.dec, r.err
	case <-h.clock.After(hook.Timeout):
		cancel()
		return domain.Decision{}, fmt.Errorf("%w: %q exceeded %s", domain.ErrHookTimeout, hook.Name, hook.Timeout)
	case <-ctx.Done():
		return domain.Decision{}, ctx.Err()
	}
}

// invoke calls the hook body with panic recovery. A panic becomes an
// ordinary failure carrying the panic site's stack.
func (h *Handler) invoke(ctx context.Context, hook domain.Hook, hc *domain.HookContext) (dec domain.Decision, err error) {
	defer func() {
		if r := recover(); r != nil {
			dec = domain.Decision{}
			err = fmt.Errorf("hook %q panicked: %v\n%s", hook.Name, r, debug.Stack())
		}
	}()

	if hook.Intercept != nil {
		return hook.Intercept(ctx, hc)
	}
	return domain.Decision{}, hook.Run(ctx, hc)
}

// resolve maps an exhausted failure to an outcome. The second return asks
// the caller to re-run the automatic sequence (dialog Retry).
func (h *Handler) resolve(ctx context.Context, hook domain.Hook, lerr *domain.LifecycleError, opts ExecOptions) (Outcome, bool) {
	if opts.ForceDegrade {
		h.logger.Warn("continuing past hook failure", log.String("hook", hook.Name))
		return OutcomeDegraded, false
	}

	if !hook.Critical {
		// Non-critical failures never halt the sequence.
		return OutcomeDegraded, false
	}

	if opts.AllowDialog && h.dialog != nil {
		switch h.ask(ctx, hook, lerr) {
		case ports.ChoiceRetry:
			h.logger.Info("retrying on user request", log.String("hook", hook.Name))
			return OutcomeSuccess, true
		case ports.ChoiceContinue:
			h.logger.Warn("continuing degraded on user request", log.String("hook", hook.Name))
			return OutcomeDegraded, false
		default:
			return OutcomeAborted, false
		}
	}

	if h.degradation {
		h.logger.Warn("continuing degraded", log.String("hook", hook.Name))
		return OutcomeDegraded, false
	}
	return OutcomeAborted, false
}

// ask runs the dialog flow. The reply races the dialog deadline on the
// handler's clock; timeouts, dialog errors and answers that were not
// offered all resolve to abort.
func (h *Handler) ask(ctx context.Context, hook domain.Hook, lerr *domain.LifecycleError) ports.DialogChoice {
	req := ports.DialogRequest{
		Title:   fmt.Sprintf("startup step %q failed", hook.Name),
		Message: lerr.Err.Error(),
		Timeout: h.dialogTimeout,
	}
	if h.retryable(hook) {
		req.Buttons = append(req.Buttons, ports.DialogButton{Choice: ports.ChoiceRetry, Label: "Retry"})
	}
	if h.degradation {
		req.Buttons = append(req.Buttons, ports.DialogButton{Choice: ports.ChoiceContinue, Label: "Continue anyway"})
	}
	req.Buttons = append(req.Buttons, ports.DialogButton{Choice: ports.ChoiceAbort, Label: "Quit"})

	dialogCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type reply struct {
		choice ports.DialogChoice
		err    error
	}
	replyCh := make(chan reply, 1)
	go func() {
		choice, err := h.dialog.Show(dialogCtx, req)
		replyCh <- reply{choice: choice, err: err}
	}()

	select {
	case r := <-replyCh:
		if r.err != nil {
			h.logger.Warn("recovery dialog failed, aborting",
				log.String("hook", hook.Name),
				log.Err(r.err),
			)
			return ports.ChoiceAbort
		}
		for _, b := range req.Buttons {
			if b.Choice == r.choice {
				return r.choice
			}
		}
		return ports.ChoiceAbort
	case <-h.clock.After(h.dialogTimeout):
		cancel()
		h.logger.Warn("recovery dialog timed out, aborting",
			log.String("hook", hook.Name),
			log.Duration("timeout", h.dialogTimeout),
		)
		return ports.ChoiceAbort
	case <-ctx.Done():
		return ports.ChoiceAbort
	}
}

func (h *Handler) retryable(hook domain.Hook) bool {
	return !hook.NoRetry && h.RetryConfig().MaxRetries > 0
}

// RetryConfig returns the current policy.
func (h *Handler) RetryConfig() domain.RetryConfig {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.retry
}

// UpdateRetryConfig merges the overrides onto the live policy. The merge is
// rejected whole if the result fails validation.
func (h *Handler) UpdateRetryConfig(o domain.RetryOverrides) (domain.RetryConfig, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	merged := h.retry.Apply(o)
	if err := merged.Validate(); err != nil {
		return h.retry, err
	}
	h.retry = merged
	h.logger.Info("retry policy updated",
		log.Int("max_retries", merged.MaxRetries),
		log.Duration("retry_delay", merged.RetryDelay),
		log.Float64("backoff_multiplier", merged.BackoffMultiplier),
		log.Duration("max_retry_delay", merged.MaxRetryDelay),
	)
	return merged, nil
}

// Stats is a snapshot of the failure history.
type Stats struct {
	// TotalFailures counts hooks with a tracked failure record.
	TotalFailures int

	// CriticalFailures counts tracked failures of critical hooks.
	CriticalFailures int

	// NonCriticalFailures counts the rest.
	NonCriticalFailures int

	// RetriedHooks counts hooks currently holding a consumed retry,
	// meaning they failed at least once and have not succeeded since.
	RetriedHooks int

	// Failures lists the records in insertion order, oldest first.
	Failures []domain.LifecycleError
}

// Statistics returns a copy of the failure history.
func (h *Handler) Statistics() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	stats := Stats{
		TotalFailures: h.failures.len(),
		RetriedHooks:  len(h.retrying),
		Failures:      h.failures.snapshot(),
	}
	for _, f := range stats.Failures {
		if f.Critical {
			stats.CriticalFailures++
		} else {
			stats.NonCriticalFailures++
		}
	}
	return stats
}

// ClearHistory drops the failure log and the live retry set.
func (h *Handler) ClearHistory() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures.clear()
	h.retrying = make(map[string]int)
}

func (h *Handler) recordFailure(lerr *domain.LifecycleError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures.record(*lerr)
}

func (h *Handler) markRetrying(name string, retries int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.retrying[name] = retries
}

func (h *Handler) clearRetrying(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.retrying, name)
}
