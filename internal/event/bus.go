package event

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/liftlab/liftoff/pkg/log"
)

// Handler is a function that handles an event.
type Handler func(Event)

// subscription is one registered handler.
type subscription struct {
	id        string
	eventType string
	handler   Handler
}

// Bus is a synchronous pub-sub bus. Publish dispatches on the caller's
// goroutine; handlers must not block the lifecycle they observe.
type Bus struct {
	mu            sync.RWMutex
	subscriptions map[string][]subscription // eventType -> subscriptions
	nextID        atomic.Uint64
	logger        log.Logger
}

// NewBus creates an event bus. A nil logger discards panic reports.
func NewBus(logger log.Logger) *Bus {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Bus{
		subscriptions: make(map[string][]subscription),
		logger:        logger,
	}
}

// Subscribe registers a handler for one event type and returns the
// subscription ID used to unsubscribe.
func (b *Bus) Subscribe(eventType string, handler Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := fmt.Sprintf("sub-%d", b.nextID.Add(1))
	b.subscriptions[eventType] = append(b.subscriptions[eventType], subscription{
		id:        id,
		eventType: eventType,
		handler:   handler,
	})
	return id
}

// SubscribeAll registers a handler for every event type.
func (b *Bus) SubscribeAll(handler Handler) string {
	return b.Subscribe("*", handler)
}

// Unsubscribe removes a subscription by ID and reports whether it existed.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.subscriptions {
		for i, sub := range subs {
			if sub.id == id {
				b.subscriptions[eventType] = append(subs[:i], subs[i+1:]...)
				return true
			}
		}
	}
	return false
}

// Publish dispatches an event: type subscribers first, then wildcard
// subscribers, each group in subscription order. Handler panics are
// recovered and logged so one bad observer cannot stall the lifecycle.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	specific := make([]subscription, len(b.subscriptions[ev.EventType()]))
	copy(specific, b.subscriptions[ev.EventType()])
	wildcard := make([]subscription, len(b.subscriptions["*"]))
	copy(wildcard, b.subscriptions["*"])
	b.mu.RUnlock()

	for _, sub := range specific {
		b.safeCall(sub.handler, ev)
	}
	for _, sub := range wildcard {
		b.safeCall(sub.handler, ev)
	}
}

func (b *Bus) safeCall(handler Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				log.String("event", ev.EventType()),
				log.Any("panic", r),
				log.String("stack", string(debug.Stack())),
			)
		}
	}()
	handler(ev)
}

// Clear removes all subscriptions.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions = make(map[string][]subscription)
}

// SubscriptionCount returns the number of active subscriptions for an
// event type; "*" counts wildcard subscribers.
func (b *Bus) SubscriptionCount(eventType string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions[eventType])
}

// TotalSubscriptions returns the number of active subscriptions across all
// types.
func (b *Bus) TotalSubscriptions() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, subs := range b.subscriptions {
		count += len(subs)
	}
	return count
}
