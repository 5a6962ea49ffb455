package liftoff

import (
	"github.com/liftlab/liftoff/internal/monitor"
)

// Monitoring types, re-exported from the internal monitor.
type (
	// Monitor aggregates lifecycle events into queryable statistics.
	Monitor = monitor.Monitor

	// MonitorSnapshot is a point-in-time copy of a Monitor's aggregates.
	MonitorSnapshot = monitor.Snapshot

	// PhaseStats holds per-phase execution counters.
	PhaseStats = monitor.PhaseStats

	// MonitorTotals holds whole-lifecycle counters.
	MonitorTotals = monitor.Totals
)

// NewMonitor creates a Monitor on the manager's event bus. Call Start on
// the result to begin observing.
func NewMonitor(m *Manager, logger Logger) *Monitor {
	return monitor.New(m.Events(), logger)
}
