package synccmd

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/folioforge/go-folio/internal/contentdata"
	"github.com/folioforge/go-folio/internal/jobs"
	"github.com/folioforge/go-folio/internal/lifecycle"
	"github.com/folioforge/go-folio/internal/logging"
	"github.com/folioforge/go-folio/internal/persistence"
	"github.com/folioforge/go-folio/internal/scheduler"
)

type stubWorker struct {
	processErr error
	calls      int
}

func (s *stubWorker) Process(context.Context) error {
	s.calls++
	return s.processErr
}

type stubAuditLog struct {
	events     []jobs.AuditEvent
	listErr    error
	pruneErr   error
	listCalls  int
	pruneCalls int
	cutoffs    []time.Time
}

func (s *stubAuditLog) List(context.Context) ([]jobs.AuditEvent, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]jobs.AuditEvent(nil), s.events...), nil
}

func (s *stubAuditLog) Prune(_ context.Context, cutoff time.Time) (int, error) {
	s.pruneCalls++
	s.cutoffs = append(s.cutoffs, cutoff)
	return len(s.events), s.pruneErr
}

func auditEvent(entity lifecycle.Entity, outcome jobs.AuditOutcome) jobs.AuditEvent {
	return jobs.AuditEvent{
		Ref:        lifecycle.Ref{Entity: entity, ID: uuid.New()},
		Outcome:    outcome,
		Attempt:    1,
		OccurredAt: time.Now(),
	}
}

func TestProcessQueueHandlerRunsRounds(t *testing.T) {
	worker := &stubWorker{}
	handler := NewProcessQueueHandler(worker, logging.NoOp())

	if err := handler.Execute(context.Background(), ProcessQueueCommand{}); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := handler.Execute(context.Background(), ProcessQueueCommand{Rounds: 3}); err != nil {
		t.Fatalf("process rounds: %v", err)
	}
	if worker.calls != 4 {
		t.Fatalf("expected 4 worker calls, got %d", worker.calls)
	}

	err := handler.Execute(context.Background(), ProcessQueueCommand{Rounds: -1})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestProcessQueueHandlerPropagatesError(t *testing.T) {
	worker := &stubWorker{processErr: errors.New("boom")}
	handler := NewProcessQueueHandler(worker, logging.NoOp())

	err := handler.Execute(context.Background(), ProcessQueueCommand{})
	if !errors.Is(err, worker.processErr) {
		t.Fatalf("expected worker error, got %v", err)
	}
}

func TestProcessQueueHandlerReplaysDesyncedRecords(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	sched := scheduler.NewInMemory(scheduler.WithClock(clock))
	mirror := persistence.NewMemoryMirror()
	queue := jobs.NewSyncQueue(sched, jobs.WithQueueClock(clock), jobs.WithRetryDelay(time.Second))
	store := lifecycle.NewStore(lifecycle.WithClock(clock), lifecycle.WithMirror(mirror), lifecycle.WithDesyncRecorder(queue))
	audit := jobs.NewInMemoryAuditRecorder()
	worker := jobs.NewWorker(sched, store, jobs.WithClock(clock), jobs.WithAuditRecorder(audit))

	mirror.FailNext(1, errors.New("offline"))
	if _, err := store.CreateVersion(ctx, uuid.Nil, "t2", contentdata.Data{"bio": "hi"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	now = now.Add(2 * time.Second)

	if err := NewProcessQueueHandler(worker, logging.NoOp()).Execute(ctx, ProcessQueueCommand{}); err != nil {
		t.Fatalf("process: %v", err)
	}
	snap, _ := mirror.Load(ctx)
	if len(snap.Portfolios) != 1 || len(snap.Versions) != 1 {
		t.Fatalf("expected replayed records, got %+v", snap)
	}

	exported, err := NewExportAuditHandler(audit, logging.NoOp()).Export(ctx, ExportAuditCommand{Outcome: "resync"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(exported) != 2 {
		t.Fatalf("expected 2 resync events, got %d", len(exported))
	}
}

func TestExportAuditHandlerRespectsLimitAndFilter(t *testing.T) {
	log := &stubAuditLog{
		events: []jobs.AuditEvent{
			auditEvent(lifecycle.EntityVersion, jobs.AuditResynced),
			auditEvent(lifecycle.EntityVersion, jobs.AuditFailed),
			auditEvent(lifecycle.EntityDeployment, jobs.AuditResynced),
		},
	}
	handler := NewExportAuditHandler(log, logging.NoOp())

	limit := 2
	all, err := handler.Export(context.Background(), ExportAuditCommand{MaxRecords: &limit})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 events, got %d", len(all))
	}

	failed, err := handler.Export(context.Background(), ExportAuditCommand{Outcome: "resync_failed"})
	if err != nil {
		t.Fatalf("export filtered: %v", err)
	}
	if len(failed) != 1 || failed[0].Ref.ID != log.events[1].Ref.ID {
		t.Fatalf("unexpected filtered events %+v", failed)
	}

	if err := handler.Execute(context.Background(), ExportAuditCommand{Outcome: "deleted"}); !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error for unknown outcome, got %v", err)
	}

	negative := -1
	if err := handler.Execute(context.Background(), ExportAuditCommand{MaxRecords: &negative}); !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExportAuditHandlerPropagatesError(t *testing.T) {
	log := &stubAuditLog{listErr: errors.New("list failed")}
	err := NewExportAuditHandler(log, logging.NoOp()).Execute(context.Background(), ExportAuditCommand{})
	if !errors.Is(err, log.listErr) {
		t.Fatalf("expected list error, got %v", err)
	}
}

func TestCleanupAuditHandler(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	log := &stubAuditLog{events: []jobs.AuditEvent{auditEvent(lifecycle.EntityVersion, jobs.AuditResynced)}}
	handler := NewCleanupAuditHandler(log, logging.NoOp(),
		CleanupWithCronExpression("@hourly"),
		CleanupWithRetention(24*time.Hour),
		CleanupWithClock(func() time.Time { return now }),
	)

	if err := handler.Execute(context.Background(), CleanupAuditCommand{DryRun: true}); err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if log.pruneCalls != 0 {
		t.Fatalf("dry run must not prune, got %d", log.pruneCalls)
	}
	if err := handler.CronHandler()(); err != nil {
		t.Fatalf("cron run: %v", err)
	}
	if log.pruneCalls != 1 || !log.cutoffs[0].Equal(now.Add(-24*time.Hour)) {
		t.Fatalf("expected one prune at the retention cutoff, got %v", log.cutoffs)
	}
	if err := handler.Execute(context.Background(), CleanupAuditCommand{OlderThan: time.Hour}); err != nil {
		t.Fatalf("explicit window: %v", err)
	}
	if !log.cutoffs[1].Equal(now.Add(-time.Hour)) {
		t.Fatalf("unexpected cutoff %v", log.cutoffs[1])
	}
	if handler.CronOptions().Expression != "@hourly" {
		t.Fatalf("unexpected cron expression %q", handler.CronOptions().Expression)
	}

	if err := handler.Execute(context.Background(), CleanupAuditCommand{OlderThan: -time.Second}); !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	log.pruneErr = errors.New("prune boom")
	if err := handler.Execute(context.Background(), CleanupAuditCommand{}); !errors.Is(err, log.pruneErr) {
		t.Fatalf("expected prune error, got %v", err)
	}
}
