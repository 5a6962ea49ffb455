package app

// Status is the manager's lifecycle position.
type Status int

const (
	// StatusNew means Start has not been called.
	StatusNew Status = iota

	// StatusStarting means the startup sequence is executing.
	StatusStarting

	// StatusRunning is the steady state after a successful startup, and
	// again after a vetoed shutdown attempt.
	StatusRunning

	// StatusShuttingDown means a shutdown attempt is executing.
	StatusShuttingDown

	// StatusTerminated means the shutdown sequence completed or the
	// manager was force-shut.
	StatusTerminated

	// StatusFailed means startup aborted on a critical failure.
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusStarting:
		return "starting"
	case StatusRunning:
		return "running"
	case StatusShuttingDown:
		return "shutting-down"
	case StatusTerminated:
		return "terminated"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}
