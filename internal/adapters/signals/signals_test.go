package signals

import (
	"os"
	"syscall"
	"testing"
	"time"
)

func TestNotifierForwardsSignal(t *testing.T) {
	n := New()
	defer n.Stop()

	proc, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatalf("FindProcess failed: %v", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		t.Fatalf("sending SIGTERM failed: %v", err)
	}

	select {
	case <-n.Notify():
	case <-time.After(2 * time.Second):
		t.Fatal("signal never forwarded")
	}
}

func TestNotifierStopIdempotent(t *testing.T) {
	n := New()
	n.Stop()
	n.Stop()

	// Stop closes the notify channel so consumers unblock.
	select {
	case _, ok := <-n.Notify():
		if ok {
			t.Fatal("stopped notifier delivered a signal")
		}
	case <-time.After(time.Second):
		t.Fatal("notify channel not closed after Stop")
	}
}
