package liftoff

import (
	"context"
	"fmt"
	"sync"

	"github.com/liftlab/liftoff/internal/app"
	"github.com/liftlab/liftoff/internal/domain"
	"github.com/liftlab/liftoff/internal/event"
	"github.com/liftlab/liftoff/internal/ports"
	"github.com/liftlab/liftoff/internal/recovery"
	"github.com/liftlab/liftoff/pkg/log"
)

// Manager is the application lifecycle orchestrator. Use New to create
// one, RegisterHook to attach work to phases, Start to run the startup
// sequence, and RequestShutdown (or a configured exit signal) to leave.
type Manager struct {
	engine *app.Manager
	bus    *event.Bus
	logger log.Logger

	plugins []Plugin
	bridge  *event.UIBridge
	exitSig ports.ExitSignal
	exitFn  func(code int)

	mu          sync.Mutex
	initialized []Plugin
	pluginsDown bool
	closed      bool
}

// New creates a Manager with the given options.
func New(opts ...Option) (*Manager, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	if o.retry != (RetryConfig{}) {
		if err := o.retry.Validate(); err != nil {
			return nil, err
		}
	}

	bus := event.NewBus(logger)
	rec := recovery.New(recovery.Config{
		Retry:         o.retry,
		Logger:        logger,
		Clock:         o.clock,
		Bus:           bus,
		Dialog:        o.dialog,
		Degradation:   o.degradation,
		DialogTimeout: o.dialogTimeout,
	})
	engine := app.New(app.Config{
		Logger:   logger,
		Clock:    o.clock,
		Bus:      bus,
		Recovery: rec,
		Surface:  o.surface,
	})

	m := &Manager{
		engine:  engine,
		bus:     bus,
		logger:  logger,
		plugins: o.plugins,
		exitSig: o.exitSignal,
		exitFn:  o.exitFn,
	}
	if o.sink != nil {
		m.bridge = event.NewUIBridge(bus, o.sink)
	}
	if m.exitSig != nil {
		go m.watchExit()
	}
	return m, nil
}

// RegisterHook validates and stores a hook for its phase.
func (m *Manager) RegisterHook(h Hook) (HookID, error) {
	return m.engine.RegisterHook(h)
}

// UnregisterHook removes a pending hook and reports whether it existed.
func (m *Manager) UnregisterHook(phase Phase, id HookID) bool {
	return m.engine.UnregisterHook(phase, id)
}

// Start initializes plugins in registration order, then runs the four
// startup phases. It runs exactly once.
func (m *Manager) Start(ctx context.Context) error {
	if err := m.initPlugins(ctx); err != nil {
		return err
	}
	return m.engine.Start(ctx)
}

// RequestShutdown runs the shutdown sequence and reports whether the
// process may terminate. On a granted request the plugins are shut down in
// reverse order. A vetoed request leaves everything running.
func (m *Manager) RequestShutdown(ctx context.Context) bool {
	ok := m.engine.RequestShutdown(ctx)
	if ok {
		m.shutdownPlugins(context.Background())
	}
	return ok
}

// ForceShutdown terminates the lifecycle without consulting hooks,
// interceptors, or plugins.
func (m *Manager) ForceShutdown() {
	m.engine.ForceShutdown()
}

// Status returns the manager's lifecycle position.
func (m *Manager) Status() Status {
	return m.engine.Status()
}

// CurrentPhase returns the executing phase, or the last one reached.
func (m *Manager) CurrentPhase() Phase {
	return m.engine.CurrentPhase()
}

// PhaseComplete reports whether the phase ran to completion.
func (m *Manager) PhaseComplete(p Phase) bool {
	return m.engine.PhaseComplete(p)
}

// IsShuttingDown reports whether a shutdown attempt is executing.
func (m *Manager) IsShuttingDown() bool {
	return m.engine.IsShuttingDown()
}

// Progress returns the last published lifecycle percentage.
func (m *Manager) Progress() float64 {
	return m.engine.Progress()
}

// Statistics returns the failure and recovery history.
func (m *Manager) Statistics() RecoveryStats {
	return m.engine.Statistics()
}

// ClearErrorHistory drops the failure history.
func (m *Manager) ClearErrorHistory() {
	m.engine.ClearErrorHistory()
}

// RetryConfig returns the live retry policy.
func (m *Manager) RetryConfig() RetryConfig {
	return m.engine.RetryConfig()
}

// UpdateRetryConfig merges a partial policy update into the live policy
// and returns the result. Invalid updates are rejected whole.
func (m *Manager) UpdateRetryConfig(o RetryOverrides) (RetryConfig, error) {
	return m.engine.UpdateRetryConfig(o)
}

// Events returns the bus carrying the manager's event stream.
func (m *Manager) Events() *Bus {
	return m.bus
}

// Close releases the manager: the exit signal source is stopped, the UI
// sink detached, plugins shut down, and the engine torn down. Idempotent.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	if m.exitSig != nil {
		m.exitSig.Stop()
	}
	if m.bridge != nil {
		m.bridge.Close()
	}
	m.shutdownPlugins(context.Background())
	m.engine.Close()
}

func (m *Manager) initPlugins(ctx context.Context) error {
	env := PluginEnv{Logger: m.logger, Manager: m}
	var ready []Plugin
	for _, p := range m.plugins {
		if err := p.Initialize(ctx, env); err != nil {
			m.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err),
			)
			for i := len(ready) - 1; i >= 0; i-- {
				if derr := ready[i].Shutdown(ctx); derr != nil {
					m.logger.Error("plugin shutdown failed",
						log.String("plugin", ready[i].Name()),
						log.Err(derr),
					)
				}
			}
			return fmt.Errorf("%w: %q: %v", domain.ErrPluginInit, p.Name(), err)
		}
		m.logger.Info("plugin initialized", log.String("plugin", p.Name()))
		ready = append(ready, p)
	}
	m.mu.Lock()
	m.initialized = ready
	m.mu.Unlock()
	return nil
}

// shutdownPlugins runs plugin shutdown in reverse initialization order, at
// most once over the manager's lifetime.
func (m *Manager) shutdownPlugins(ctx context.Context) {
	m.mu.Lock()
	if m.pluginsDown {
		m.mu.Unlock()
		return
	}
	m.pluginsDown = true
	down := m.initialized
	m.mu.Unlock()

	for i := len(down) - 1; i >= 0; i-- {
		p := down[i]
		if err := p.Shutdown(ctx); err != nil {
			m.logger.Error("plugin shutdown failed",
				log.String("plugin", p.Name()),
				log.Err(err),
			)
		} else {
			m.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
		}
	}
}

// watchExit routes exit-signal notifications through the shutdown
// sequence. A notification arriving while an attempt is already in flight
// forces termination.
func (m *Manager) watchExit() {
	for range m.exitSig.Notify() {
		if m.engine.IsShuttingDown() {
			m.logger.Warn("exit requested again, forcing shutdown")
			m.engine.ForceShutdown()
			m.exitFn(1)
			continue
		}
		go func() {
			if m.RequestShutdown(context.Background()) {
				m.exitFn(0)
			} else {
				m.logger.Info("exit request refused")
			}
		}()
	}
}
