package app

import (
	"context"

	"github.com/liftlab/liftoff/internal/domain"
	"github.com/liftlab/liftoff/internal/event"
	"github.com/liftlab/liftoff/internal/recovery"
	"github.com/liftlab/liftoff/pkg/log"
)

// RequestShutdown runs the shutdown sequence and reports whether the
// process may terminate. It is idempotent under concurrency: callers
// arriving while an attempt is in flight join it and share its result, so
// the before-quit hooks run at most once per attempt.
//
// The sequence: before-quit hooks in priority order, where the first veto
// aborts the attempt, resets the shutting-down flag and resolves false;
// then will-quit cleanup, whose failures are logged but never block; then
// the manager is terminated and the call resolves true. Hook errors never
// block shutdown. Requests before the manager is running resolve false.
func (m *Manager) RequestShutdown(ctx context.Context) bool {
	m.mu.Lock()
	if m.inflight != nil {
		attempt := m.inflight
		m.mu.Unlock()
		<-attempt.done
		return attempt.result
	}
	if m.status != StatusRunning {
		status := m.status
		m.mu.Unlock()
		m.logger.Debug("shutdown request refused", log.String("status", status.String()))
		return false
	}
	attempt := &shutdownAttempt{done: make(chan struct{})}
	m.inflight = attempt
	m.status = StatusShuttingDown
	m.mu.Unlock()

	result := m.runShutdown(ctx)

	m.mu.Lock()
	attempt.result = result
	if result {
		m.status = StatusTerminated
	} else {
		// Vetoed: back to steady state, ready for a later request.
		m.status = StatusRunning
		m.currentPhase = m.steadyPhase
	}
	m.inflight = nil
	m.mu.Unlock()
	close(attempt.done)
	return result
}

func (m *Manager) runShutdown(ctx context.Context) bool {
	before := m.registry.snapshot(domain.PhaseBeforeQuit, false)
	will := m.registry.snapshot(domain.PhaseWillQuit, false)

	m.logger.Info("shutdown requested",
		log.Int("before_quit_hooks", len(before)),
		log.Int("will_quit_hooks", len(will)),
	)
	m.bus.Publish(event.NewShutdownRequested(len(before), len(will)))

	if vetoName, reason, vetoed := m.runShutdownPhase(ctx, domain.PhaseBeforeQuit, before); vetoed {
		m.logger.Info("shutdown vetoed",
			log.String("hook", vetoName),
			log.String("reason", reason),
		)
		m.bus.Publish(event.NewShutdownPrevented(vetoName, reason))
		return false
	}

	m.runShutdownPhase(ctx, domain.PhaseWillQuit, will)
	m.closeSurface()
	m.logger.Info("shutdown complete")
	return true
}

// runShutdownPhase executes one shutdown phase. Failures degrade, never
// block. For before-quit the first veto stops the pass and is returned;
// the phase is then not marked complete, so a later attempt re-consults
// every interceptor.
func (m *Manager) runShutdownPhase(ctx context.Context, phase domain.Phase, hooks []domain.Hook) (vetoName, vetoReason string, vetoed bool) {
	m.setCurrentPhase(phase)

	hc := domain.NewHookContext(phase, m)
	phaseStart := m.clock.Now()
	m.bus.Publish(event.NewPhaseStarted(phase, len(hooks)))

	lo, hi := phase.Band()
	m.publishProgress(phase, lo, "")

	succeeded, failed := 0, 0
	for i, h := range hooks {
		res := m.recovery.Execute(ctx, h, hc, recovery.ExecOptions{ForceDegrade: true})
		m.bus.Publish(event.NewHookExecuted(h))

		if res.Outcome == recovery.OutcomeSuccess && res.Decision.Vetoed() {
			return h.Name, res.Decision.Reason(), true
		}
		if res.Outcome == recovery.OutcomeSuccess {
			succeeded++
		} else {
			failed++
		}
		m.publishProgress(phase, phase.Progress(i+1, len(hooks)), h.Name)
	}
	if len(hooks) == 0 {
		m.publishProgress(phase, hi, "")
	}

	m.markComplete(phase)
	duration := m.clock.Now().Sub(phaseStart)
	m.bus.Publish(event.NewPhaseCompleted(phase, duration, len(hooks), succeeded, failed))
	m.logger.Info("phase complete",
		log.String("phase", phase.String()),
		log.Duration("duration", duration),
		log.Int("succeeded", succeeded),
		log.Int("failed", failed),
	)
	return "", "", false
}
