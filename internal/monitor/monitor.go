// Package monitor aggregates lifecycle events into queryable statistics.
//
// The Monitor is a pure observer: it subscribes to the event bus and never
// touches the engine, so attaching one cannot change lifecycle behavior.
package monitor

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/liftlab/liftoff/internal/domain"
	"github.com/liftlab/liftoff/internal/event"
	"github.com/liftlab/liftoff/pkg/log"
)

// PhaseStats accumulates per-phase execution counters.
type PhaseStats struct {
	HookCount int
	Succeeded int
	Failed    int
	Duration  time.Duration
	Completed bool
}

// Totals accumulates whole-lifecycle counters.
type Totals struct {
	HooksExecuted    int
	Errors           int
	CriticalErrors   int
	Recoveries       int
	ShutdownRequests int
	Vetoes           int
}

// Snapshot is a point-in-time copy of the monitor's state.
type Snapshot struct {
	Phases   map[domain.Phase]PhaseStats
	Totals   Totals
	Progress float64
}

// Monitor consumes lifecycle events and keeps running aggregates.
type Monitor struct {
	mu       sync.Mutex
	bus      *event.Bus
	logger   log.Logger
	subID    string
	phases   map[domain.Phase]PhaseStats
	totals   Totals
	progress float64
}

// New creates a Monitor on the given bus. It stays inert until Start.
func New(bus *event.Bus, logger log.Logger) *Monitor {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Monitor{
		bus:    bus,
		logger: logger,
		phases: make(map[domain.Phase]PhaseStats),
	}
}

// Start subscribes the monitor to the bus. Calling Start on a running
// monitor is a no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subID != "" {
		return
	}
	m.subID = m.bus.SubscribeAll(m.consume)
	m.logger.Debug("monitor started")
}

// Stop unsubscribes and discards accumulated state.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subID == "" {
		return
	}
	m.bus.Unsubscribe(m.subID)
	m.subID = ""
	m.phases = make(map[domain.Phase]PhaseStats)
	m.totals = Totals{}
	m.progress = 0
	m.logger.Debug("monitor stopped")
}

func (m *Monitor) consume(ev event.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch e := ev.(type) {
	case event.PhaseStartedEvent:
		ps := m.phases[e.Phase]
		ps.HookCount = e.HookCount
		m.phases[e.Phase] = ps
	case event.PhaseCompletedEvent:
		ps := m.phases[e.Phase]
		ps.HookCount = e.HookCount
		ps.Succeeded = e.Succeeded
		ps.Failed = e.Failed
		ps.Duration = e.Duration
		ps.Completed = true
		m.phases[e.Phase] = ps
	case event.HookExecutedEvent:
		m.totals.HooksExecuted++
	case event.HookRecoveredEvent:
		m.totals.Recoveries++
	case event.ErrorOccurredEvent:
		if e.ShutdownPrevented {
			m.totals.Vetoes++
			return
		}
		m.totals.Errors++
		if e.Critical {
			m.totals.CriticalErrors++
		}
	case event.ProgressUpdatedEvent:
		m.progress = e.Percent
	case event.ShutdownRequestedEvent:
		m.totals.ShutdownRequests++
	}
}

// Snapshot returns a copy of the current aggregates.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	phases := make(map[domain.Phase]PhaseStats, len(m.phases))
	for p, s := range m.phases {
		phases[p] = s
	}
	return Snapshot{
		Phases:   phases,
		Totals:   m.totals,
		Progress: m.progress,
	}
}

// Dump renders the current aggregates as a multi-line report.
func (m *Monitor) Dump() string {
	snap := m.Snapshot()

	order := make([]domain.Phase, 0, len(snap.Phases))
	for p := range snap.Phases {
		order = append(order, p)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	var b strings.Builder
	fmt.Fprintf(&b, "lifecycle: %.1f%%\n", snap.Progress)
	for _, p := range order {
		s := snap.Phases[p]
		state := "running"
		if s.Completed {
			state = "complete"
		}
		fmt.Fprintf(&b, "  %-12s %d hooks, %d ok, %d failed, %s, %s\n",
			p.String(), s.HookCount, s.Succeeded, s.Failed, s.Duration, state)
	}
	t := snap.Totals
	fmt.Fprintf(&b, "  totals: %d executed, %d errors (%d critical), %d recovered, %d shutdown requests, %d vetoed\n",
		t.HooksExecuted, t.Errors, t.CriticalErrors, t.Recoveries, t.ShutdownRequests, t.Vetoes)
	return b.String()
}
