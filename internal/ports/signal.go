package ports

// ExitSignal delivers the host's process-exit requests: OS signals for a
// daemon, a window-close or quit-menu notification for a GUI shell. The
// facade subscribes exactly once at construction and routes every
// notification through RequestShutdown, so plain notifications can never
// bypass the shutdown phases.
type ExitSignal interface {
	// Notify returns the channel exit requests arrive on. The channel
	// stays open while the signal source is running and is closed after
	// Stop, so consumers can range over it.
	Notify() <-chan struct{}

	// Stop releases the signal source and any goroutine behind it.
	// Idempotent.
	Stop()
}
