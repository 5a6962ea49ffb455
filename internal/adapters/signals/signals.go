// Package signals adapts OS termination signals to the engine's exit-signal
// port.
package signals

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Notifier forwards SIGINT and SIGTERM as exit requests. Signals arriving
// while the consumer is busy coalesce; none are dropped silently while the
// consumer keeps receiving.
type Notifier struct {
	mu      sync.Mutex
	stopped bool

	out  chan struct{}
	sigs chan os.Signal
	done chan struct{}
}

// New registers for SIGINT and SIGTERM and starts forwarding.
func New() *Notifier {
	n := &Notifier{
		out:  make(chan struct{}, 1),
		sigs: make(chan os.Signal, 2),
		done: make(chan struct{}),
	}
	signal.Notify(n.sigs, syscall.SIGINT, syscall.SIGTERM)
	go n.forward()
	return n
}

func (n *Notifier) forward() {
	defer close(n.done)
	// Closing out lets consumers ranging over Notify unblock after Stop.
	defer close(n.out)
	for range n.sigs {
		select {
		case n.out <- struct{}{}:
		default:
		}
	}
}

// Notify returns the channel exit requests arrive on.
func (n *Notifier) Notify() <-chan struct{} {
	return n.out
}

// Stop unregisters the signal handler and releases the forwarding
// goroutine. Idempotent.
func (n *Notifier) Stop() {
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return
	}
	n.stopped = true
	n.mu.Unlock()

	signal.Stop(n.sigs)
	close(n.sigs)
	<-n.done
}
