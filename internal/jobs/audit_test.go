package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/folioforge/go-folio/internal/jobs"
	"github.com/folioforge/go-folio/internal/lifecycle"
)

func TestAuditRecorderCapacityAndPrune(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	recorder := jobs.NewInMemoryAuditRecorder(jobs.WithAuditCapacity(3))

	for i := range 5 {
		outcome := jobs.AuditResynced
		if i%2 == 1 {
			outcome = jobs.AuditFailed
		}
		_ = recorder.Record(ctx, jobs.AuditEvent{
			Ref:        lifecycle.Ref{Entity: lifecycle.EntityVersion, ID: uuid.New()},
			Outcome:    outcome,
			Attempt:    i + 1,
			OccurredAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	events := recorder.Events()
	if len(events) != 3 || events[0].Attempt != 3 {
		t.Fatalf("expected the three newest events, got %+v", events)
	}
	if failed := jobs.FilterOutcome(events, jobs.AuditFailed); len(failed) != 1 || failed[0].Attempt != 4 {
		t.Fatalf("unexpected failed events %+v", failed)
	}

	removed, err := recorder.Prune(ctx, base.Add(3*time.Minute))
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 2 || len(recorder.Events()) != 1 {
		t.Fatalf("Prune removed %d, left %d", removed, len(recorder.Events()))
	}
}
