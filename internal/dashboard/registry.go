package dashboard

import (
	"sync"
	"time"
)

type entry struct {
	ctrl     *Controller
	lastUsed time.Time
}

// Registry keeps one Controller per session handle so that view state
// survives between requests of the same browser.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{entries: map[string]*entry{}, now: time.Now}
}

// Get returns the controller for handle, building it with create when
// there is none.  created tells the caller to Mount it.
func (r *Registry) Get(handle string, create func() *Controller) (ctrl *Controller, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[handle]; ok {
		e.lastUsed = r.now()
		return e.ctrl, false
	}
	c := create()
	r.entries[handle] = &entry{ctrl: c, lastUsed: r.now()}
	return c, true
}

// Lookup returns the controller of handle without creating one.
func (r *Registry) Lookup(handle string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[handle]
	if !ok {
		return nil, false
	}
	return e.ctrl, true
}

// Drop forgets the controller of handle.
func (r *Registry) Drop(handle string) {
	r.mu.Lock()
	delete(r.entries, handle)
	r.mu.Unlock()
}

// Len returns the number of live controllers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep drops controllers idle for longer than maxIdle and returns how many
// were removed.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-maxIdle)
	n := 0
	for h, e := range r.entries {
		if e.lastUsed.Before(cutoff) {
			delete(r.entries, h)
			n++
		}
	}
	return n
}
