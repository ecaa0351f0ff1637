package form

import "sync"

// Tracker records which fields have an AI polish request in flight and which
// field last received an empty-input warning. It is safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	active  map[string]struct{}
	warning string
}

func NewTracker() *Tracker {
	return &Tracker{active: map[string]struct{}{}}
}

// Begin marks p as being optimized. It returns false when a request for p is
// already running.
func (t *Tracker) Begin(p Path) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := p.String()
	if _, busy := t.active[key]; busy {
		return false
	}
	t.active[key] = struct{}{}
	if t.warning == key {
		t.warning = ""
	}
	return true
}

// Done clears the in-flight flag for p.
func (t *Tracker) Done(p Path) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.active, p.String())
}

// Optimizing reports whether p has a request in flight.
func (t *Tracker) Optimizing(p Path) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, busy := t.active[p.String()]
	return busy
}

// Busy reports whether any request is in flight.
func (t *Tracker) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active) > 0
}

// Warn flags p as having been submitted empty.
func (t *Tracker) Warn(p Path) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.warning = p.String()
}

// Warning returns the dotted path of the warned field, or "".
func (t *Tracker) Warning() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.warning
}

// ClearWarning removes any pending warning.
func (t *Tracker) ClearWarning() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.warning = ""
}
