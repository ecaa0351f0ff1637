package interfaces

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrJobNotFound reports missing jobs when looking them up by ID or key.
	ErrJobNotFound = errors.New("scheduler: job not found")
)

// Scheduler queues deferred work. folio uses it to park persistence
// mirroring that failed so a worker can replay it later.
type Scheduler interface {
	// Enqueue registers a job. A pending job with the same key is replaced.
	Enqueue(ctx context.Context, spec JobSpec) (*Job, error)
	// Cancel marks the job as cancelled so it will not be executed.
	Cancel(ctx context.Context, id string) error
	// Get returns the stored job by identifier.
	Get(ctx context.Context, id string) (*Job, error)
	// GetByKey returns the pending job registered under key.
	GetByKey(ctx context.Context, key string) (*Job, error)
	// ListDue returns pending jobs scheduled to run at or before until.
	ListDue(ctx context.Context, until time.Time, limit int) ([]*Job, error)
	// ListPending returns every job that has not completed, failed or been cancelled.
	ListPending(ctx context.Context) ([]*Job, error)
	// MarkDone marks the job as successfully processed.
	MarkDone(ctx context.Context, id string) error
	// MarkFailed records a failed attempt and reschedules the job at retryAt
	// unless its attempt budget is exhausted.
	MarkFailed(ctx context.Context, id string, err error, retryAt time.Time) error
}

// JobStatus describes the lifecycle of a queued job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusCompleted JobStatus = "completed"
	JobStatusCanceled  JobStatus = "canceled"
	JobStatusFailed    JobStatus = "failed"
)

// JobSpec captures the information required to enqueue a job.
type JobSpec struct {
	// Key uniquely identifies the job so newer requests replace older ones.
	Key string
	// Type describes the action to perform (e.g. folio.sync.upsert).
	Type string
	// RunAt specifies when the job becomes due.
	RunAt time.Time
	// Payload carries contextual data required by the worker.
	Payload map[string]any
	// MaxAttempts limits retries. Zero falls back to the scheduler default.
	MaxAttempts int
}

// Job is a stored job entry with scheduler-managed metadata.
type Job struct {
	JobSpec
	ID        string
	Attempt   int
	LastError string
	Status    JobStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
