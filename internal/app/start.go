package app

import (
	"context"
	"fmt"

	"github.com/liftlab/liftoff/internal/domain"
	"github.com/liftlab/liftoff/internal/event"
	"github.com/liftlab/liftoff/internal/recovery"
	"github.com/liftlab/liftoff/pkg/log"
)

// Start runs the four startup phases in order on the caller's goroutine.
// It runs exactly once: later calls fail fast with ErrAlreadyStarted. A
// critical failure that escalates to abort tears down the progress surface
// and returns ErrStartupAborted naming the hook; phases after the failing
// one never run.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return domain.ErrClosed
	}
	if m.status != StatusNew {
		m.mu.Unlock()
		return domain.ErrAlreadyStarted
	}
	m.status = StatusStarting
	m.mu.Unlock()

	m.logger.Info("startup beginning", log.Int("pending_hooks", m.registry.totalPending()))
	m.openSurface()

	for _, phase := range domain.StartupPhases() {
		if err := m.runStartupPhase(ctx, phase); err != nil {
			m.closeSurface()
			m.setStatus(StatusFailed)
			return err
		}
	}

	m.closeSurface()
	m.mu.Lock()
	m.status = StatusRunning
	m.mu.Unlock()
	m.logger.Info("startup complete")
	return nil
}

// runStartupPhase drains the phase's snapshot and executes it in priority
// order. Hooks that exhaust recovery and degrade count as failed but do
// not stop the phase; an abort does.
func (m *Manager) runStartupPhase(ctx context.Context, phase domain.Phase) error {
	hooks := m.registry.snapshot(phase, true)

	m.mu.Lock()
	m.currentPhase = phase
	m.steadyPhase = phase
	m.mu.Unlock()

	hc := domain.NewHookContext(phase, m)
	phaseStart := m.clock.Now()
	m.logger.Info("phase starting",
		log.String("phase", phase.String()),
		log.Int("hooks", len(hooks)),
	)
	m.bus.Publish(event.NewPhaseStarted(phase, len(hooks)))

	lo, hi := phase.Band()
	m.publishProgress(phase, lo, "")

	succeeded, failed := 0, 0
	for i, h := range hooks {
		res := m.recovery.Execute(ctx, h, hc, recovery.ExecOptions{AllowDialog: true})
		m.bus.Publish(event.NewHookExecuted(h))

		switch res.Outcome {
		case recovery.OutcomeSuccess:
			succeeded++
		case recovery.OutcomeDegraded:
			// Failed but non-fatal: the phase moves on without it.
			failed++
		case recovery.OutcomeAborted:
			failed++
			m.logger.Error("startup aborted",
				log.String("phase", phase.String()),
				log.String("hook", h.Name),
			)
			return fmt.Errorf("%w: hook %q failed during %s", domain.ErrStartupAborted, h.Name, phase)
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
	return nil
}
