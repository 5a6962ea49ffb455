package app

import (
	"sort"
	"sync"

	"github.com/liftlab/liftoff/internal/domain"
)

// registeredHook pairs a hook with its registration handle.
type registeredHook struct {
	hook domain.Hook
	id   domain.HookID
}

// hookRegistry holds pending hooks per phase. Entries stay in registration
// order; snapshot applies the stable priority sort, so equal priorities
// keep arrival order.
type hookRegistry struct {
	mu      sync.Mutex
	pending map[domain.Phase][]registeredHook
}

func newHookRegistry() *hookRegistry {
	return &hookRegistry{
		pending: make(map[domain.Phase][]registeredHook),
	}
}

func (r *hookRegistry) add(h domain.Hook, id domain.HookID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[h.Phase] = append(r.pending[h.Phase], registeredHook{hook: h, id: id})
}

// nameTaken reports whether a pending hook in the phase already uses the
// name.
func (r *hookRegistry) nameTaken(phase domain.Phase, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.pending[phase] {
		if e.hook.Name == name {
			return true
		}
	}
	return false
}

func (r *hookRegistry) remove(phase domain.Phase, id domain.HookID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.pending[phase]
	for i, e := range entries {
		if e.id == id {
			r.pending[phase] = append(entries[:i], entries[i+1:]...)
			return true
		}
	}
	return false
}

// snapshot returns the phase's hooks in execution order. Draining removes
// them: startup phases run once, so their hooks are consumed; shutdown
// phases keep theirs, letting a vetoed attempt be retried against the full
// set.
func (r *hookRegistry) snapshot(phase domain.Phase, drain bool) []domain.Hook {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.pending[phase]
	out := make([]domain.Hook, len(entries))
	for i, e := range entries {
		out[i] = e.hook
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	if drain {
		delete(r.pending, phase)
	}
	return out
}

func (r *hookRegistry) count(phase domain.Phase) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending[phase])
}

func (r *hookRegistry) totalPending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, entries := range r.pending {
		total += len(entries)
	}
	return total
}
