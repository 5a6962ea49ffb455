package event

// Sink receives the user-facing event stream. Implementations are UI
// surfaces: status bars, splash screens, renderer processes.
type Sink interface {
	// Deliver hands the sink one event. Called synchronously on the
	// publishing goroutine.
	Deliver(ev Event)
}

// UIBridge forwards the bus stream to a Sink with error detail stripped.
// Every ErrorOccurredEvent is replaced by its Redacted copy before
// delivery; all other events pass through unchanged. UI code gets no path
// to stack traces or wrapped error chains.
type UIBridge struct {
	bus   *Bus
	subID string
}

// NewUIBridge subscribes the sink to all events through the redaction
// filter.
func NewUIBridge(bus *Bus, sink Sink) *UIBridge {
	bridge := &UIBridge{bus: bus}
	bridge.subID = bus.SubscribeAll(func(ev Event) {
		if errEv, ok := ev.(ErrorOccurredEvent); ok {
			sink.Deliver(errEv.Redacted())
			return
		}
		sink.Deliver(ev)
	})
	return bridge
}

// Close detaches the sink from the bus.
func (u *UIBridge) Close() {
	u.bus.Unsubscribe(u.subID)
}
