package scheduler

import (
	"cmp"
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/folioforge/go-folio/pkg/interfaces"
)

const (
	defaultMaxAttempts  = 5
	defaultHistoryLimit = 256
)

var errRunAtRequired = errors.New("scheduler: run_at is required")

// Option configures the in-memory scheduler.
type Option func(*memoryScheduler)

func WithClock(clock func() time.Time) Option {
	return func(s *memoryScheduler) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithIDGenerator(generator func() string) Option {
	return func(s *memoryScheduler) {
		if generator != nil {
			s.newID = generator
		}
	}
}

// WithDefaultMaxAttempts applies to specs that leave MaxAttempts at zero.
func WithDefaultMaxAttempts(limit int) Option {
	return func(s *memoryScheduler) {
		if limit > 0 {
			s.maxAttempts = limit
		}
	}
}

// WithHistoryLimit bounds how many finished jobs stay readable through Get.
// The oldest finished jobs are forgotten first.
func WithHistoryLimit(limit int) Option {
	return func(s *memoryScheduler) {
		if limit >= 0 {
			s.historyLimit = limit
		}
	}
}

// NewInMemory returns a process-local scheduler for the sync retry queue.
//
// Enqueueing a key that already has a pending job refreshes its spec but keeps
// the earlier run time and the attempts already spent.
func NewInMemory(opts ...Option) interfaces.Scheduler {
	s := &memoryScheduler{
		now:          time.Now,
		newID:        uuid.NewString,
		maxAttempts:  defaultMaxAttempts,
		historyLimit: defaultHistoryLimit,
		jobs:         make(map[string]*interfaces.Job),
		pendingByKey: make(map[string]string),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type memoryScheduler struct {
	mu           sync.Mutex
	now          func() time.Time
	newID        func() string
	maxAttempts  int
	historyLimit int

	jobs         map[string]*interfaces.Job
	pendingByKey map[string]string
	finished     []string
}

func (s *memoryScheduler) Enqueue(_ context.Context, spec interfaces.JobSpec) (*interfaces.Job, error) {
	if spec.RunAt.IsZero() {
		return nil, errRunAtRequired
	}
	if spec.MaxAttempts == 0 {
		spec.MaxAttempts = s.maxAttempts
	}
	spec.Payload = maps.Clone(spec.Payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()

	if current := s.pendingLocked(spec.Key); current != nil {
		runAt := current.RunAt
		if spec.RunAt.Before(runAt) {
			runAt = spec.RunAt
		}
		current.JobSpec = spec
		current.RunAt = runAt
		current.UpdatedAt = now
		return copyJob(current), nil
	}

	job := &interfaces.Job{
		JobSpec:   spec,
		ID:        s.newID(),
		Status:    interfaces.JobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.jobs[job.ID] = job
	if job.Key != "" {
		s.pendingByKey[job.Key] = job.ID
	}
	return copyJob(job), nil
}

func (s *memoryScheduler) Cancel(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return interfaces.ErrJobNotFound
	}
	s.finishLocked(job, interfaces.JobStatusCanceled)
	return nil
}

func (s *memoryScheduler) Get(_ context.Context, id string) (*interfaces.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, interfaces.ErrJobNotFound
	}
	return copyJob(job), nil
}

func (s *memoryScheduler) GetByKey(_ context.Context, key string) (*interfaces.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := s.pendingLocked(key)
	if job == nil {
		return nil, interfaces.ErrJobNotFound
	}
	return copyJob(job), nil
}

func (s *memoryScheduler) ListDue(_ context.Context, until time.Time, limit int) ([]*interfaces.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	due := s.collectLocked(func(job *interfaces.Job) bool { return !job.RunAt.After(until) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *memoryScheduler) ListPending(_ context.Context) ([]*interfaces.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collectLocked(nil), nil
}

func (s *memoryScheduler) MarkDone(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return interfaces.ErrJobNotFound
	}
	s.finishLocked(job, interfaces.JobStatusCompleted)
	return nil
}

func (s *memoryScheduler) MarkFailed(_ context.Context, id string, failure error, retryAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return interfaces.ErrJobNotFound
	}
	job.Attempt++
	job.LastError = ""
	if failure != nil {
		job.LastError = failure.Error()
	}
	if job.MaxAttempts > 0 && job.Attempt >= job.MaxAttempts {
		s.finishLocked(job, interfaces.JobStatusFailed)
		return nil
	}
	job.Status = interfaces.JobStatusPending
	job.UpdatedAt = s.now()
	if !retryAt.IsZero() {
		job.RunAt = retryAt
	}
	return nil
}

func (s *memoryScheduler) pendingLocked(key string) *interfaces.Job {
	if key == "" {
		return nil
	}
	job, ok := s.jobs[s.pendingByKey[key]]
	if !ok || job.Status != interfaces.JobStatusPending {
		return nil
	}
	return job
}

// finishLocked moves a job to a terminal status, frees its key and trims history.
func (s *memoryScheduler) finishLocked(job *interfaces.Job, status interfaces.JobStatus) {
	job.Status = status
	job.UpdatedAt = s.now()
	if job.Key != "" && s.pendingByKey[job.Key] == job.ID {
		delete(s.pendingByKey, job.Key)
	}
	s.finished = append(s.finished, job.ID)
	for len(s.finished) > s.historyLimit {
		delete(s.jobs, s.finished[0])
		s.finished = s.finished[1:]
	}
}

// collectLocked returns copies of pending jobs ordered by run time, then creation.
func (s *memoryScheduler) collectLocked(keep func(*interfaces.Job) bool) []*interfaces.Job {
	out := make([]*interfaces.Job, 0, len(s.pendingByKey))
	for _, job := range s.jobs {
		if job.Status != interfaces.JobStatusPending {
			continue
		}
		if keep != nil && !keep(job) {
			continue
		}
		out = append(out, copyJob(job))
	}
	slices.SortFunc(out, func(a, b *interfaces.Job) int {
		if c := a.RunAt.Compare(b.RunAt); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func copyJob(job *interfaces.Job) *interfaces.Job {
	clone := *job
	clone.Payload = maps.Clone(job.Payload)
	return &clone
}
