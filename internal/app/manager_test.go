package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/liftlab/liftoff/internal/domain"
	"github.com/liftlab/liftoff/internal/event"
	"github.com/liftlab/liftoff/internal/ports"
	"github.com/liftlab/liftoff/internal/recovery"
)

// quickRetry keeps failing-hook tests fast without changing the budget
// shape: three automatic retries, millisecond delays.
var quickRetry = domain.RetryConfig{
	MaxRetries:        3,
	RetryDelay:        time.Millisecond,
	BackoffMultiplier: 2.0,
	MaxRetryDelay:     4 * time.Millisecond,
}

// eventLog records every published event for order and payload assertions.
type eventLog struct {
	mu     sync.Mutex
	events []event.Event
}

func (l *eventLog) record(ev event.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) ofType(eventType string) []event.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []event.Event
	for _, ev := range l.events {
		if ev.EventType() == eventType {
			out = append(out, ev)
		}
	}
	return out
}

func (l *eventLog) typeSequence() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.events))
	for _, ev := range l.events {
		out = append(out, ev.EventType())
	}
	return out
}

// fakeSurface records progress-surface calls.
type fakeSurface struct {
	mu        sync.Mutex
	creates   int
	closes    int
	visible   bool
	createErr error
	messages  []string
	percents  []float64
}

func (s *fakeSurface) Create() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	if s.createErr != nil {
		return s.createErr
	}
	s.visible = true
	return nil
}

func (s *fakeSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	s.visible = false
	return nil
}

func (s *fakeSurface) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

func (s *fakeSurface) Update(phase domain.Phase, percent float64, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.percents = append(s.percents, percent)
	s.messages = append(s.messages, message)
}

// newTestManager builds a manager on a shared bus with fast retries and
// subscribes a recorder to everything it publishes.
func newTestManager(t *testing.T, surface ports.ProgressSurface) (*Manager, *eventLog) {
	t.Helper()
	bus := event.NewBus(nil)
	m := New(Config{
		Bus:      bus,
		Recovery: recovery.New(recovery.Config{Retry: quickRetry, Bus: bus}),
		Surface:  surface,
	})
	rec := &eventLog{}
	bus.SubscribeAll(rec.record)
	return m, rec
}

func TestNewManagerDefaults(t *testing.T) {
	m := New(Config{})

	if got := m.Status(); got != StatusNew {
		t.Errorf("Status = %v, want %v", got, StatusNew)
	}
	if got := m.CurrentPhase(); got != domain.PhaseInit {
		t.Errorf("CurrentPhase = %v, want %v", got, domain.PhaseInit)
	}
	if m.IsShuttingDown() {
		t.Error("IsShuttingDown = true on a new manager")
	}
	if got := m.Progress(); got != 0 {
		t.Errorf("Progress = %v, want 0", got)
	}
	if m.Events() == nil {
		t.Error("Events returned nil bus")
	}
	if got := m.RetryConfig(); got != domain.DefaultRetryConfig() {
		t.Errorf("RetryConfig = %+v, want defaults", got)
	}
}

func TestRegisterHookValidation(t *testing.T) {
	run := func(ctx context.Context, hc *domain.HookContext) error { return nil }
	intercept := func(ctx context.Context, hc *domain.HookContext) (domain.Decision, error) {
		return domain.Proceed(), nil
	}

	tests := []struct {
		name    string
		hook    domain.Hook
		wantErr error
	}{
		{
			name:    "missing name",
			hook:    domain.Hook{Phase: domain.PhaseInit, Run: run},
			wantErr: domain.ErrInvalidHook,
		},
		{
			name:    "no body",
			hook:    domain.Hook{Name: "empty", Phase: domain.PhaseInit},
			wantErr: domain.ErrInvalidHook,
		},
		{
			name:    "negative timeout",
			hook:    domain.Hook{Name: "bad-timeout", Phase: domain.PhaseInit, Timeout: -time.Second, Run: run},
			wantErr: domain.ErrInvalidHook,
		},
		{
			name:    "interceptor outside before-quit",
			hook:    domain.Hook{Name: "early-veto", Phase: domain.PhaseInit, Intercept: intercept},
			wantErr: domain.ErrInvalidHook,
		},
		{
			name: "valid hook",
			hook: domain.Hook{Name: "journal", Phase: domain.PhaseInit, Run: run},
		},
		{
			name: "valid interceptor",
			hook: domain.Hook{Name: "confirm-quit", Phase: domain.PhaseBeforeQuit, Intercept: intercept},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestManager(t, nil)
			id, err := m.RegisterHook(tt.hook)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("RegisterHook error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("RegisterHook failed: %v", err)
			}
			if id == "" {
				t.Error("RegisterHook returned empty id")
			}
		})
	}
}

func TestRegisterHookDuplicateName(t *testing.T) {
	run := func(ctx context.Context, hc *domain.HookContext) error { return nil }
	m, _ := newTestManager(t, nil)

	if _, err := m.RegisterHook(domain.Hook{Name: "journal", Phase: domain.PhaseInit, Run: run}); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if _, err := m.RegisterHook(domain.Hook{Name: "journal", Phase: domain.PhaseInit, Run: run}); !errors.Is(err, domain.ErrDuplicateHook) {
		t.Errorf("duplicate registration error = %v, want ErrDuplicateHook", err)
	}

	// The same name is fine in another phase.
	if _, err := m.RegisterHook(domain.Hook{Name: "journal", Phase: domain.PhaseWillQuit, Run: run}); err != nil {
		t.Errorf("same name in a different phase failed: %v", err)
	}
}

func TestUnregisterHook(t *testing.T) {
	m, _ := newTestManager(t, nil)
	id, err := m.RegisterHook(domain.Hook{
		Name:  "journal",
		Phase: domain.PhaseReady,
		Run:   func(ctx context.Context, hc *domain.HookContext) error { return nil },
	})
	if err != nil {
		t.Fatalf("RegisterHook failed: %v", err)
	}

	if !m.UnregisterHook(domain.PhaseReady, id) {
		t.Error("UnregisterHook = false for a registered hook")
	}
	if m.UnregisterHook(domain.PhaseReady, id) {
		t.Error("UnregisterHook = true for an already-removed hook")
	}
	if m.UnregisterHook(domain.PhaseInit, "no-such-id") {
		t.Error("UnregisterHook = true for an unknown id")
	}
}

func TestRegisterHookAfterClose(t *testing.T) {
	m, _ := newTestManager(t, nil)
	m.Close()

	_, err := m.RegisterHook(domain.Hook{
		Name:  "late",
		Phase: domain.PhaseInit,
		Run:   func(ctx context.Context, hc *domain.HookContext) error { return nil },
	})
	if !errors.Is(err, domain.ErrClosed) {
		t.Errorf("RegisterHook after Close error = %v, want ErrClosed", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	surface := &fakeSurface{}
	m, _ := newTestManager(t, surface)

	m.Close()
	m.Close()

	if surface.closes != 1 {
		t.Errorf("surface closed %d times, want 1", surface.closes)
	}
}

func TestUpdateRetryConfigReachesHandler(t *testing.T) {
	m, _ := newTestManager(t, nil)

	five := 5
	updated, err := m.UpdateRetryConfig(domain.RetryOverrides{MaxRetries: &five})
	if err != nil {
		t.Fatalf("UpdateRetryConfig failed: %v", err)
	}
	if updated.MaxRetries != 5 {
		t.Errorf("updated MaxRetries = %d, want 5", updated.MaxRetries)
	}
	if got := m.RetryConfig().MaxRetries; got != 5 {
		t.Errorf("RetryConfig().MaxRetries = %d, want 5", got)
	}

	bad := -2.0
	if _, err := m.UpdateRetryConfig(domain.RetryOverrides{BackoffMultiplier: &bad}); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("invalid update error = %v, want ErrInvalidConfig", err)
	}
	if got := m.RetryConfig().MaxRetries; got != 5 {
		t.Errorf("rejected update changed the policy: MaxRetries = %d, want 5", got)
	}
}
