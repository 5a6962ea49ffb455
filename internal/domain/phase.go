package domain

// Phase identifies one step of the lifecycle. Startup runs PhaseInit through
// PhaseAfterStart in order; shutdown runs PhaseBeforeQuit then PhaseWillQuit.
// The two sequences are independent and each is strictly forward.
type Phase int

const (
	// PhaseInit is the first startup phase: configuration, environment checks.
	PhaseInit Phase = iota

	// PhaseBeforeStart prepares core services before the application surfaces.
	PhaseBeforeStart

	// PhaseReady runs when the application is ready to serve.
	PhaseReady

	// PhaseAfterStart runs deferred work after the application is up.
	PhaseAfterStart

	// PhaseBeforeQuit runs on a shutdown request; its interceptors may veto.
	PhaseBeforeQuit

	// PhaseWillQuit is cleanup-only; failures never block termination.
	PhaseWillQuit
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseBeforeStart:
		return "before-start"
	case PhaseReady:
		return "ready"
	case PhaseAfterStart:
		return "after-start"
	case PhaseBeforeQuit:
		return "before-quit"
	case PhaseWillQuit:
		return "will-quit"
	default:
		return "unknown"
	}
}

// Valid reports whether p is one of the six defined phases.
func (p Phase) Valid() bool {
	return p >= PhaseInit && p <= PhaseWillQuit
}

// IsStartup reports whether p belongs to the startup sequence.
func (p Phase) IsStartup() bool {
	return p >= PhaseInit && p <= PhaseAfterStart
}

// IsShutdown reports whether p belongs to the shutdown sequence.
func (p Phase) IsShutdown() bool {
	return p == PhaseBeforeQuit || p == PhaseWillQuit
}

// Band returns the progress range [lo, hi] the phase occupies within its
// sequence. Startup phases split 0-100 four ways; shutdown phases split
// 0-100 two ways.
func (p Phase) Band() (lo, hi float64) {
	switch p {
	case PhaseInit:
		return 0, 25
	case PhaseBeforeStart:
		return 25, 50
	case PhaseReady:
		return 50, 75
	case PhaseAfterStart:
		return 75, 100
	case PhaseBeforeQuit:
		return 0, 50
	case PhaseWillQuit:
		return 50, 100
	default:
		return 0, 0
	}
}

// Progress maps hook completion within the phase onto the phase's band.
// completed counts hooks that finished regardless of outcome. An empty
// phase reports the top of its band: it is complete the moment it starts.
func (p Phase) Progress(completed, total int) float64 {
	lo, hi := p.Band()
	if total <= 0 {
		return hi
	}
	if completed < 0 {
		completed = 0
	}
	if completed > total {
		completed = total
	}
	return lo + (hi-lo)*float64(completed)/float64(total)
}

// StartupPhases returns the startup sequence in execution order.
func StartupPhases() []Phase {
	return []Phase{PhaseInit, PhaseBeforeStart, PhaseReady, PhaseAfterStart}
}

// ShutdownPhases returns the shutdown sequence in execution order.
func ShutdownPhases() []Phase {
	return []Phase{PhaseBeforeQuit, PhaseWillQuit}
}
