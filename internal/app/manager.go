// Package app implements the lifecycle engine.
//
// The Manager owns the single control loop: startup phases run on the
// Start caller's goroutine, shutdown phases on the requester's, and the
// mutex-guarded state makes every transition observable from any
// goroutine. Hook execution is delegated to the recovery handler; surfaces
// and signals stay behind ports.
package app

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/zoobzio/clockz"

	"github.com/liftlab/liftoff/internal/domain"
	"github.com/liftlab/liftoff/internal/event"
	"github.com/liftlab/liftoff/internal/ports"
	"github.com/liftlab/liftoff/internal/recovery"
	"github.com/liftlab/liftoff/pkg/log"
)

// Config wires a Manager. Nil fields get working defaults.
type Config struct {
	// Logger for engine decisions. Nil means silent.
	Logger log.Logger

	// Clock drives durations. Nil means the real clock.
	Clock clockz.Clock

	// Bus carries lifecycle events. Nil means a private bus.
	Bus *event.Bus

	// Recovery executes hooks. Nil means a default handler on the same
	// logger, clock and bus.
	Recovery *recovery.Handler

	// Surface displays progress. Nil disables display; events still flow.
	Surface ports.ProgressSurface
}

// shutdownAttempt is the shared record concurrent RequestShutdown callers
// join on.
type shutdownAttempt struct {
	done   chan struct{}
	result bool
}

// Manager orchestrates the six lifecycle phases.
type Manager struct {
	mu           sync.Mutex
	status       Status
	currentPhase domain.Phase
	steadyPhase  domain.Phase
	completed    map[domain.Phase]bool
	progress     float64
	inflight     *shutdownAttempt
	closed       bool

	registry *hookRegistry
	recovery *recovery.Handler
	bus      *event.Bus
	logger   log.Logger
	clock    clockz.Clock
	surface  ports.ProgressSurface
}

// New creates a Manager.
func New(cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockz.RealClock
	}
	bus := cfg.Bus
	if bus == nil {
		bus = event.NewBus(logger)
	}
	rec := cfg.Recovery
	if rec == nil {
		rec = recovery.New(recovery.Config{
			Logger: logger,
			Clock:  clock,
			Bus:    bus,
		})
	}
	return &Manager{
		status:    StatusNew,
		completed: make(map[domain.Phase]bool),
		registry:  newHookRegistry(),
		recovery:  rec,
		bus:       bus,
		logger:    logger,
		clock:     clock,
		surface:   cfg.Surface,
	}
}

// RegisterHook validates and stores a hook. Registering into a phase that
// already ran is accepted; the hook simply never fires.
func (m *Manager) RegisterHook(h domain.Hook) (domain.HookID, error) {
	if err := h.Validate(); err != nil {
		return "", err
	}

	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return "", domain.ErrClosed
	}

	if m.registry.nameTaken(h.Phase, h.Name) {
		return "", fmt.Errorf("%w: %q in %s", domain.ErrDuplicateHook, h.Name, h.Phase)
	}

	id := domain.HookID(uuid.NewString())
	m.registry.add(h, id)
	m.logger.Debug("hook registered",
		log.String("hook", h.Name),
		log.String("phase", h.Phase.String()),
		log.Int("priority", h.Priority),
		log.Bool("critical", h.Critical),
	)
	return id, nil
}

// UnregisterHook removes a pending hook and reports whether it existed.
func (m *Manager) UnregisterHook(phase domain.Phase, id domain.HookID) bool {
	removed := m.registry.remove(phase, id)
	if removed {
		m.logger.Debug("hook unregistered",
			log.String("phase", phase.String()),
			log.String("id", string(id)),
		)
	}
	return removed
}

// Status returns the manager's lifecycle position.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// CurrentPhase returns the executing phase, or the last one reached.
func (m *Manager) CurrentPhase() domain.Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentPhase
}

// PhaseComplete reports whether the phase ran to completion. A vetoed
// before-quit pass does not count.
func (m *Manager) PhaseComplete(p domain.Phase) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completed[p]
}

// IsShuttingDown reports whether a shutdown attempt is executing.
func (m *Manager) IsShuttingDown() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status == StatusShuttingDown
}

// Progress returns the last published percentage.
func (m *Manager) Progress() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress
}

// Events returns the bus carrying the manager's event stream.
func (m *Manager) Events() *event.Bus {
	return m.bus
}

// Statistics returns the recovery handler's failure history.
func (m *Manager) Statistics() recovery.Stats {
	return m.recovery.Statistics()
}

// ClearErrorHistory drops the failure history.
func (m *Manager) ClearErrorHistory() {
	m.recovery.ClearHistory()
}

// RetryConfig returns the live retry policy.
func (m *Manager) RetryConfig() domain.RetryConfig {
	return m.recovery.RetryConfig()
}

// UpdateRetryConfig merges a partial policy update into the live policy.
func (m *Manager) UpdateRetryConfig(o domain.RetryOverrides) (domain.RetryConfig, error) {
	return m.recovery.UpdateRetryConfig(o)
}

// ForceShutdown marks the manager terminated without running any hooks or
// interception. The caller owns actual process exit.
func (m *Manager) ForceShutdown() {
	m.mu.Lock()
	m.status = StatusTerminated
	m.mu.Unlock()
	m.logger.Warn("forced shutdown, lifecycle hooks skipped")
	m.closeSurface()
}

// Close releases the manager: registration stops and the progress surface
// is torn down. Idempotent.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()
	m.closeSurface()
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
}

func (m *Manager) setCurrentPhase(p domain.Phase) {
	m.mu.Lock()
	m.currentPhase = p
	m.mu.Unlock()
}

func (m *Manager) markComplete(p domain.Phase) {
	m.mu.Lock()
	m.completed[p] = true
	m.mu.Unlock()
}

// publishProgress records and fans out one progress position. The mutex is
// released before publishing: bus handlers may call back into the manager.
func (m *Manager) publishProgress(phase domain.Phase, pct float64, msg string) {
	m.mu.Lock()
	m.progress = pct
	m.mu.Unlock()

	m.bus.Publish(event.NewProgressUpdated(phase, pct, msg))
	if m.surface != nil && m.surface.Visible() {
		m.surface.Update(phase, pct, msg)
	}
}

func (m *Manager) openSurface() {
	if m.surface == nil {
		return
	}
	// A broken splash must not block the application itself.
	if err := m.surface.Create(); err != nil {
		m.logger.Warn("progress surface unavailable", log.Err(err))
	}
}

func (m *Manager) closeSurface() {
	if m.surface == nil {
		return
	}
	if err := m.surface.Close(); err != nil {
		m.logger.Warn("progress surface close failed", log.Err(err))
	}
}
