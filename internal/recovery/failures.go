package recovery

import "github.com/liftlab/liftoff/internal/domain"

// maxTrackedFailures bounds the failure log. One entry per hook name; the
// oldest hook's record is evicted when the bound is hit, so a long-running
// process cannot grow the log without bound.
const maxTrackedFailures = 64

// failureLog keeps the latest failure per hook, insertion-ordered. Not
// goroutine safe; the Handler guards it.
type failureLog struct {
	entries map[string]domain.LifecycleError
	order   []string
	max     int
}

func newFailureLog(max int) *failureLog {
	return &failureLog{
		entries: make(map[string]domain.LifecycleError),
		max:     max,
	}
}

// record stores the failure, replacing any previous record for the same
// hook in place.
func (l *failureLog) record(e domain.LifecycleError) {
	if _, ok := l.entries[e.HookName]; !ok {
		if len(l.order) >= l.max {
			delete(l.entries, l.order[0])
			l.order = l.order[1:]
		}
		l.order = append(l.order, e.HookName)
	}
	l.entries[e.HookName] = e
}

// snapshot returns value copies in insertion order.
func (l *failureLog) snapshot() []domain.LifecycleError {
	out := make([]domain.LifecycleError, 0, len(l.order))
	for _, name := range l.order {
		out = append(out, l.entries[name])
	}
	return out
}

func (l *failureLog) len() int {
	return len(l.order)
}

func (l *failureLog) clear() {
	l.entries = make(map[string]domain.LifecycleError)
	l.order = nil
}
