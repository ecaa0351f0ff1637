package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/folioforge/go-folio/internal/lifecycle"
	"github.com/folioforge/go-folio/internal/logging"
	"github.com/folioforge/go-folio/internal/scheduler"
	"github.com/folioforge/go-folio/pkg/interfaces"
)

// SyncQueue records persistence desyncs as scheduler jobs, one per touched
// record. A record with a pending job is not queued twice.
type SyncQueue struct {
	scheduler   interfaces.Scheduler
	now         func() time.Time
	delay       time.Duration
	maxAttempts int
	logger      interfaces.Logger
}

// QueueOption configures a SyncQueue.
type QueueOption func(*SyncQueue)

func WithQueueClock(clock func() time.Time) QueueOption {
	return func(q *SyncQueue) {
		if clock != nil {
			q.now = clock
		}
	}
}

// WithRetryDelay sets how long after a failure the first retry runs.
func WithRetryDelay(delay time.Duration) QueueOption {
	return func(q *SyncQueue) {
		if delay >= 0 {
			q.delay = delay
		}
	}
}

func WithMaxAttempts(limit int) QueueOption {
	return func(q *SyncQueue) {
		if limit > 0 {
			q.maxAttempts = limit
		}
	}
}

func WithQueueLogger(logger interfaces.Logger) QueueOption {
	return func(q *SyncQueue) {
		q.logger = logging.Ensure(logger)
	}
}

func NewSyncQueue(sched interfaces.Scheduler, opts ...QueueOption) *SyncQueue {
	q := &SyncQueue{
		scheduler: sched,
		now:       time.Now,
		delay:     5 * time.Second,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// RecordDesync implements lifecycle.DesyncRecorder.
func (q *SyncQueue) RecordDesync(ctx context.Context, change lifecycle.Change, cause error) error {
	if q.scheduler == nil {
		return errors.New("jobs: scheduler is nil")
	}
	runAt := q.now().Add(q.delay)
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}

	var errs []error
	for _, ref := range change.Refs() {
		_, err := q.scheduler.Enqueue(ctx, interfaces.JobSpec{
			Key:   scheduler.SyncRecordJobKey(string(ref.Entity), ref.ID),
			Type:  scheduler.JobTypeSyncRecord,
			RunAt: runAt,
			Payload: map[string]any{
				payloadEntity: string(ref.Entity),
				payloadID:     ref.ID.String(),
				payloadOp:     string(change.Op),
				payloadCause:  reason,
			},
			MaxAttempts: q.maxAttempts,
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	q.logger.Debug("jobs.sync.queued", "op", change.Op, "records", len(change.Refs()), "run_at", runAt)
	return nil
}
