package domain

// Decision is the outcome of a shutdown interceptor. The zero value
// proceeds. A veto is an anticipated outcome, not an error: it aborts the
// shutdown attempt and carries a reason for the diagnostics trail.
type Decision struct {
	veto   bool
	reason string
}

// Proceed allows the shutdown to continue.
func Proceed() Decision {
	return Decision{}
}

// Veto aborts the shutdown attempt with a reason.
func Veto(reason string) Decision {
	return Decision{veto: true, reason: reason}
}

// Vetoed reports whether the decision blocks shutdown.
func (d Decision) Vetoed() bool {
	return d.veto
}

// Reason returns the veto reason, empty for a proceed decision.
func (d Decision) Reason() string {
	return d.reason
}
