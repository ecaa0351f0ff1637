package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	"github.com/google/uuid"

	"github.com/folioforge/go-folio/internal/lifecycle"
)

type publishProbe struct {
	VersionID uuid.UUID
}

func (publishProbe) Type() string { return "folio.test.publish_probe" }

func (publishProbe) Validate() error { return nil }

func TestDispatcherRetriesUntilVersionAppears(t *testing.T) {
	t.Parallel()

	versionID := uuid.New()
	var statuses []TelemetryStatus
	attempts := 0
	handler := NewHandler(func(_ context.Context, msg publishProbe) error {
		attempts++
		if attempts == 1 {
			return &lifecycle.NotFoundError{Resource: "version", Key: msg.VersionID.String()}
		}
		return nil
	},
		WithTimeout[publishProbe](time.Second),
		WithTelemetry[publishProbe](func(_ context.Context, _ publishProbe, info TelemetryInfo) {
			statuses = append(statuses, info.Status)
		}),
	)

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(1))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), publishProbe{VersionID: versionID}); err != nil {
		t.Fatalf("dispatch: expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	if len(statuses) != 2 || statuses[0] != TelemetryStatusNotFound || statuses[1] != TelemetryStatusSuccess {
		t.Fatalf("unexpected telemetry statuses %v", statuses)
	}
}

type deployProbe struct{}

func (deployProbe) Type() string { return "folio.test.deploy_probe" }

func (deployProbe) Validate() error { return nil }

func TestDispatcherRetryExhaustionPropagatesError(t *testing.T) {
	t.Parallel()

	attempts := 0
	handler := NewHandler(func(context.Context, deployProbe) error {
		attempts++
		return errors.New("mirror offline")
	}, WithTimeout[deployProbe](time.Second))

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(2))
	t.Cleanup(sub.Unsubscribe)

	err := dispatcher.Dispatch(context.Background(), deployProbe{})
	if err == nil {
		t.Fatal("expected dispatcher to return error after exhausting retries")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}
