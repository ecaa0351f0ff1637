package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/folioforge/go-folio/internal/lifecycle"
	"github.com/folioforge/go-folio/internal/logging"
	"github.com/folioforge/go-folio/internal/scheduler"
	"github.com/folioforge/go-folio/pkg/interfaces"
)

const (
	payloadEntity = "entity"
	payloadID     = "id"
	payloadOp     = "op"
	payloadCause  = "cause"
)

// Resyncer pushes the current state of lifecycle records to the mirror.
// *lifecycle.Store implements it.
type Resyncer interface {
	Resync(ctx context.Context, refs []lifecycle.Ref) error
}

// Worker replays due sync jobs. It never reapplies the change that failed;
// it pushes whatever the store holds now, so stale writes cannot win.
type Worker struct {
	scheduler  interfaces.Scheduler
	store      Resyncer
	audit      AuditRecorder
	now        func() time.Time
	batchSize  int
	retryDelay time.Duration
	logger     interfaces.Logger
}

type Option func(*Worker)

func WithAuditRecorder(recorder AuditRecorder) Option {
	return func(w *Worker) {
		w.audit = recorder
	}
}

func WithClock(clock func() time.Time) Option {
	return func(w *Worker) {
		if clock != nil {
			w.now = clock
		}
	}
}

func WithBatchSize(size int) Option {
	return func(w *Worker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

// WithBackoff sets the base delay; attempt n is retried after n+1 times it.
func WithBackoff(delay time.Duration) Option {
	return func(w *Worker) {
		if delay > 0 {
			w.retryDelay = delay
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(w *Worker) {
		w.logger = logging.Ensure(logger)
	}
}

func NewWorker(sched interfaces.Scheduler, store Resyncer, opts ...Option) *Worker {
	w := &Worker{
		scheduler:  sched,
		store:      store,
		now:        time.Now,
		batchSize:  50,
		retryDelay: 5 * time.Second,
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Process runs one batch of due jobs. All records are resynced together;
// when that fails each job is retried alone so one bad record does not hold
// back the rest.
func (w *Worker) Process(ctx context.Context) error {
	if w.scheduler == nil {
		return errors.New("jobs: scheduler is nil")
	}
	if w.store == nil {
		return errors.New("jobs: store is nil")
	}
	now := w.now()
	due, err := w.scheduler.ListDue(ctx, now, w.batchSize)
	if err != nil {
		return err
	}

	valid := make([]*interfaces.Job, 0, len(due))
	refs := make([]lifecycle.Ref, 0, len(due))
	for _, job := range due {
		if job == nil {
			continue
		}
		ref, err := parseRef(job)
		if err != nil {
			w.logger.Warn("jobs.sync.invalid_payload", "job_id", job.ID, "error", err)
			_ = w.scheduler.Cancel(ctx, job.ID)
			continue
		}
		valid = append(valid, job)
		refs = append(refs, ref)
	}
	if len(valid) == 0 {
		return nil
	}

	if err := w.store.Resync(ctx, refs); err == nil {
		for i, job := range valid {
			w.succeed(ctx, job, refs[i], now)
		}
		return nil
	}

	for i, job := range valid {
		if err := w.store.Resync(ctx, refs[i:i+1]); err != nil {
			w.fail(ctx, job, refs[i], err, now)
			continue
		}
		w.succeed(ctx, job, refs[i], now)
	}
	return nil
}

// Run processes due jobs every interval until ctx is done.
func (w *Worker) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = w.retryDelay
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := w.Process(ctx); err != nil {
			w.logger.Error("jobs.sync.process_failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *Worker) succeed(ctx context.Context, job *interfaces.Job, ref lifecycle.Ref, now time.Time) {
	_ = w.scheduler.MarkDone(ctx, job.ID)
	w.logger.Info("jobs.sync.resynced", "entity", ref.Entity, "id", ref.ID, "attempt", job.Attempt+1)
	w.recordAudit(ctx, auditEvent(job, ref, AuditResynced, now))
}

func (w *Worker) fail(ctx context.Context, job *interfaces.Job, ref lifecycle.Ref, cause error, now time.Time) {
	retryAt := now.Add(w.retryDelay * time.Duration(job.Attempt+1))
	_ = w.scheduler.MarkFailed(ctx, job.ID, cause, retryAt)
	w.logger.Warn("jobs.sync.retry_failed", "entity", ref.Entity, "id", ref.ID, "attempt", job.Attempt+1, "error", cause)

	event := auditEvent(job, ref, AuditFailed, now)
	event.Error = cause.Error()
	w.recordAudit(ctx, event)
}

func (w *Worker) recordAudit(ctx context.Context, event AuditEvent) {
	if w.audit == nil {
		return
	}
	_ = w.audit.Record(ctx, event)
}

func parseRef(job *interfaces.Job) (lifecycle.Ref, error) {
	if job.Type != scheduler.JobTypeSyncRecord {
		return lifecycle.Ref{}, fmt.Errorf("jobs: unexpected job type %q", job.Type)
	}
	if job.Payload == nil {
		return lifecycle.Ref{}, errors.New("jobs: missing payload")
	}
	entity, _ := job.Payload[payloadEntity].(string)
	switch lifecycle.Entity(entity) {
	case lifecycle.EntityPortfolio, lifecycle.EntityVersion, lifecycle.EntityDeployment:
	default:
		return lifecycle.Ref{}, fmt.Errorf("jobs: invalid entity %q", entity)
	}
	rawID, _ := job.Payload[payloadID].(string)
	id, err := uuid.Parse(rawID)
	if err != nil {
		return lifecycle.Ref{}, fmt.Errorf("jobs: invalid id: %w", err)
	}
	return lifecycle.Ref{Entity: lifecycle.Entity(entity), ID: id}, nil
}

func auditEvent(job *interfaces.Job, ref lifecycle.Ref, outcome AuditOutcome, now time.Time) AuditEvent {
	op, _ := job.Payload[payloadOp].(string)
	return AuditEvent{
		Ref:        ref,
		Outcome:    outcome,
		Op:         op,
		JobID:      job.ID,
		Attempt:    job.Attempt + 1,
		OccurredAt: now,
	}
}
