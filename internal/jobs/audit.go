package jobs

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/folioforge/go-folio/internal/lifecycle"
)

// AuditOutcome names the result of one replay attempt.
type AuditOutcome string

const (
	AuditResynced AuditOutcome = "resync"
	AuditFailed   AuditOutcome = "resync_failed"
)

// AuditEvent records a single replay of a desynced record.
type AuditEvent struct {
	Ref        lifecycle.Ref
	Outcome    AuditOutcome
	Op         string
	JobID      string
	Attempt    int
	Error      string
	OccurredAt time.Time
}

// AuditRecorder stores replay outcomes for later export and pruning.
type AuditRecorder interface {
	Record(ctx context.Context, event AuditEvent) error
	List(ctx context.Context) ([]AuditEvent, error)
	// Prune drops events that occurred at or before cutoff and reports how many were removed.
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}

// AuditOption configures the in-memory recorder.
type AuditOption func(*InMemoryAuditRecorder)

// WithAuditCapacity keeps at most n events, discarding the oldest first.
func WithAuditCapacity(n int) AuditOption {
	return func(r *InMemoryAuditRecorder) {
		if n > 0 {
			r.capacity = n
		}
	}
}

// InMemoryAuditRecorder keeps replay outcomes in process.
type InMemoryAuditRecorder struct {
	mu       sync.Mutex
	events   []AuditEvent
	capacity int
	err      error
}

func NewInMemoryAuditRecorder(opts ...AuditOption) *InMemoryAuditRecorder {
	r := &InMemoryAuditRecorder{}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *InMemoryAuditRecorder) Record(_ context.Context, event AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	if r.capacity > 0 && len(r.events) > r.capacity {
		r.events = slices.Delete(r.events, 0, len(r.events)-r.capacity)
	}
	return nil
}

// Events is List without a context, for tests.
func (r *InMemoryAuditRecorder) Events() []AuditEvent {
	events, _ := r.List(context.Background())
	return events
}

// Fail makes subsequent Record calls return err.
func (r *InMemoryAuditRecorder) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *InMemoryAuditRecorder) List(context.Context) ([]AuditEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events), nil
}

func (r *InMemoryAuditRecorder) Prune(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	before := len(r.events)
	r.events = slices.DeleteFunc(r.events, func(event AuditEvent) bool {
		return !event.OccurredAt.After(cutoff)
	})
	return before - len(r.events), nil
}

// FilterOutcome returns the events with the given outcome. An empty outcome keeps everything.
func FilterOutcome(events []AuditEvent, outcome AuditOutcome) []AuditEvent {
	if outcome == "" {
		return events
	}
	out := make([]AuditEvent, 0, len(events))
	for _, event := range events {
		if event.Outcome == outcome {
			out = append(out, event)
		}
	}
	return out
}
