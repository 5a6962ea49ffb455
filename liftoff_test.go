package liftoff_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/liftlab/liftoff"
)

// quickRetry keeps failing-hook tests fast.
var quickRetry = liftoff.RetryConfig{
	MaxRetries:        1,
	RetryDelay:        time.Millisecond,
	BackoffMultiplier: 2.0,
	MaxRetryDelay:     2 * time.Millisecond,
}

// stepLog records ordered lifecycle steps across goroutines.
type stepLog struct {
	mu    sync.Mutex
	steps []string
}

func (l *stepLog) add(step string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, step)
}

func (l *stepLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.steps...)
}

// trackingPlugin records its lifecycle into a shared stepLog.
type trackingPlugin struct {
	name    string
	log     *stepLog
	initErr error
}

func (p *trackingPlugin) Name() string { return p.name }

func (p *trackingPlugin) Initialize(ctx context.Context, env liftoff.PluginEnv) error {
	if p.initErr != nil {
		return p.initErr
	}
	if env.Manager == nil {
		return errors.New("no manager in plugin env")
	}
	p.log.add("init:" + p.name)
	return nil
}

func (p *trackingPlugin) Shutdown(ctx context.Context) error {
	p.log.add("down:" + p.name)
	return nil
}

// fakeSignal is a test ExitSignal fired by hand.
type fakeSignal struct {
	ch   chan struct{}
	once sync.Once
}

func newFakeSignal() *fakeSignal {
	return &fakeSignal{ch: make(chan struct{}, 2)}
}

func (s *fakeSignal) fire() { s.ch <- struct{}{} }

func (s *fakeSignal) Notify() <-chan struct{} { return s.ch }

func (s *fakeSignal) Stop() { s.once.Do(func() { close(s.ch) }) }

// exitRecorder captures exit codes instead of terminating the process.
type exitRecorder struct {
	mu    sync.Mutex
	codes []int
	ch    chan int
}

func newExitRecorder() *exitRecorder {
	return &exitRecorder{ch: make(chan int, 4)}
}

func (r *exitRecorder) fn(code int) {
	r.mu.Lock()
	r.codes = append(r.codes, code)
	r.mu.Unlock()
	select {
	case r.ch <- code:
	default:
	}
}

func (r *exitRecorder) wait(t *testing.T) int {
	t.Helper()
	select {
	case code := <-r.ch:
		return code
	case <-time.After(2 * time.Second):
		t.Fatal("exit function never called")
		return -1
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestPluginLifecycleOrdering(t *testing.T) {
	steps := &stepLog{}
	m, err := liftoff.New(
		liftoff.WithPlugin(&trackingPlugin{name: "alpha", log: steps}),
		liftoff.WithPlugin(&trackingPlugin{name: "beta", log: steps}),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer m.Close()

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !m.RequestShutdown(context.Background()) {
		t.Fatal("RequestShutdown failed")
	}

	want := []string{"init:alpha", "init:beta", "down:beta", "down:alpha"}
	got := steps.list()
	if len(got) != len(want) {
		t.Fatalf("plugin steps = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("plugin steps = %v, want %v", got, want)
		}
	}

	// Close must not shut the plugins down a second time.
	m.Close()
	if n := len(steps.list()); n != len(want) {
		t.Errorf("Close re-ran plugin shutdown: %v", steps.list())
	}
}

func TestPluginInitFailureUnwinds(t *testing.T) {
	steps := &stepLog{}
	m, err := liftoff.New(
		liftoff.WithPlugin(&trackingPlugin{name: "alpha", log: steps}),
		liftoff.WithPlugin(&trackingPlugin{name: "broken", log: steps, initErr: errors.New("no backend")}),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer m.Close()

	startErr := m.Start(context.Background())
	if !errors.Is(startErr, liftoff.ErrPluginInit) {
		t.Fatalf("Start error = %v, want ErrPluginInit", startErr)
	}
	if !strings.Contains(startErr.Error(), "broken") {
		t.Errorf("error %q does not name the failing plugin", startErr)
	}
	if got := m.Status(); got != liftoff.StatusNew {
		t.Errorf("Status = %v, want %v (engine must not have started)", got, liftoff.StatusNew)
	}

	want := []string{"init:alpha", "down:alpha"}
	got := steps.list()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("plugin steps = %v, want %v", got, want)
	}
}

func TestExitSignalDrivesShutdown(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	steps := &stepLog{}
	sig := newFakeSignal()
	exits := newExitRecorder()

	m, err := liftoff.New(
		liftoff.WithExitSignal(sig),
		liftoff.WithExitFunc(exits.fn),
		liftoff.WithPlugin(&trackingPlugin{name: "journal", log: steps}),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer m.Close()

	var hookRan bool
	if _, err := m.RegisterHook(liftoff.Hook{
		Name:  "flush",
		Phase: liftoff.PhaseBeforeQuit,
		Run: func(ctx context.Context, hc *liftoff.HookContext) error {
			hookRan = true
			return nil
		},
	}); err != nil {
		t.Fatalf("RegisterHook failed: %v", err)
	}

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	sig.fire()

	if code := exits.wait(t); code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if !hookRan {
		t.Error("before-quit hook never ran")
	}
	if got := m.Status(); got != liftoff.StatusTerminated {
		t.Errorf("Status = %v, want %v", got, liftoff.StatusTerminated)
	}

	found := false
	for _, s := range steps.list() {
		if s == "down:journal" {
			found = true
		}
	}
	if !found {
		t.Errorf("plugin never shut down after granted exit: %v", steps.list())
	}
}

func TestExitSignalVetoKeepsRunning(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sig := newFakeSignal()
	exits := newExitRecorder()

	m, err := liftoff.New(
		liftoff.WithExitSignal(sig),
		liftoff.WithExitFunc(exits.fn),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer m.Close()

	var vetoes atomic.Int32
	if _, err := m.RegisterHook(liftoff.Hook{
		Name:  "confirm-quit",
		Phase: liftoff.PhaseBeforeQuit,
		Intercept: func(ctx context.Context, hc *liftoff.HookContext) (liftoff.Decision, error) {
			vetoes.Add(1)
			return liftoff.Veto("unsaved work"), nil
		},
	}); err != nil {
		t.Fatalf("RegisterHook failed: %v", err)
	}

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	sig.fire()
	waitFor(t, "the veto to land", func() bool { return vetoes.Load() >= 1 })
	waitFor(t, "the attempt to resolve", func() bool { return !m.IsShuttingDown() })

	if got := m.Status(); got != liftoff.StatusRunning {
		t.Errorf("Status after vetoed exit = %v, want %v", got, liftoff.StatusRunning)
	}
	select {
	case code := <-exits.ch:
		t.Errorf("process exited with %d despite the veto", code)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSecondSignalForces(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sig := newFakeSignal()
	exits := newExitRecorder()

	m, err := liftoff.New(
		liftoff.WithExitSignal(sig),
		liftoff.WithExitFunc(exits.fn),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer m.Close()

	release := make(chan struct{})
	if _, err := m.RegisterHook(liftoff.Hook{
		Name:  "slow-flush",
		Phase: liftoff.PhaseBeforeQuit,
		Run: func(ctx context.Context, hc *liftoff.HookContext) error {
			<-release
			return nil
		},
	}); err != nil {
		t.Fatalf("RegisterHook failed: %v", err)
	}

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	sig.fire()
	waitFor(t, "the shutdown attempt to begin", m.IsShuttingDown)
	sig.fire()

	if code := exits.wait(t); code != 1 {
		t.Errorf("forced exit code = %d, want 1", code)
	}
	if got := m.Status(); got != liftoff.StatusTerminated {
		t.Errorf("Status after force = %v, want %v", got, liftoff.StatusTerminated)
	}

	// Let the in-flight graceful attempt finish before teardown.
	close(release)
	exits.wait(t)
}

func TestUISinkGetsRedactedErrors(t *testing.T) {
	sink := &recordingSink{}
	m, err := liftoff.New(
		liftoff.WithRetryConfig(quickRetry),
		liftoff.WithUISink(sink),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer m.Close()

	var diagStack string
	m.Events().Subscribe(liftoff.TypeErrorOccurred, func(ev liftoff.Event) {
		diagStack = ev.(liftoff.ErrorOccurredEvent).Stack
	})

	if _, err := m.RegisterHook(liftoff.Hook{
		Name:  "telemetry",
		Phase: liftoff.PhaseInit,
		Run: func(ctx context.Context, hc *liftoff.HookContext) error {
			return errors.New("endpoint unreachable")
		},
	}); err != nil {
		t.Fatalf("RegisterHook failed: %v", err)
	}

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if diagStack == "" {
		t.Error("diagnostics subscriber saw no stack trace")
	}

	var uiErr *liftoff.ErrorOccurredEvent
	for _, ev := range sink.list() {
		if e, ok := ev.(liftoff.ErrorOccurredEvent); ok {
			uiErr = &e
			break
		}
	}
	if uiErr == nil {
		t.Fatal("sink never received the error event")
	}
	if uiErr.Stack != "" {
		t.Error("sink received a stack trace")
	}
	if uiErr.Err == nil || uiErr.Err.Error() != "endpoint unreachable" {
		t.Errorf("sink error = %v, want the flattened message", uiErr.Err)
	}
}

func TestNewRejectsInvalidRetryConfig(t *testing.T) {
	_, err := liftoff.New(liftoff.WithRetryConfig(liftoff.RetryConfig{
		MaxRetries:        -1,
		RetryDelay:        time.Second,
		BackoffMultiplier: 2.0,
		MaxRetryDelay:     10 * time.Second,
	}))
	if !errors.Is(err, liftoff.ErrInvalidConfig) {
		t.Errorf("New error = %v, want ErrInvalidConfig", err)
	}
}

func TestMonitorObservesManager(t *testing.T) {
	m, err := liftoff.New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer m.Close()

	mon := liftoff.NewMonitor(m, nil)
	mon.Start()
	defer mon.Stop()

	if _, err := m.RegisterHook(liftoff.Hook{
		Name:  "journal",
		Phase: liftoff.PhaseInit,
		Run:   func(ctx context.Context, hc *liftoff.HookContext) error { return nil },
	}); err != nil {
		t.Fatalf("RegisterHook failed: %v", err)
	}
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	snap := mon.Snapshot()
	if snap.Totals.HooksExecuted != 1 {
		t.Errorf("monitor counted %d hooks, want 1", snap.Totals.HooksExecuted)
	}
	if snap.Progress != 100 {
		t.Errorf("monitor progress = %.1f, want 100", snap.Progress)
	}
	if !snap.Phases[liftoff.PhaseInit].Completed {
		t.Error("monitor did not see the init phase complete")
	}
}

// recordingSink collects delivered events.
type recordingSink struct {
	mu     sync.Mutex
	events []liftoff.Event
}

func (s *recordingSink) Deliver(ev liftoff.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) list() []liftoff.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]liftoff.Event(nil), s.events...)
}
