package commands

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/folioforge/go-folio/internal/lifecycle"
)

type testMessage struct{}

func (testMessage) Type() string { return "folio.test.message" }

func (testMessage) Validate() error { return nil }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "folio.test.invalid" }

func (invalidMessage) Validate() error {
	return validationError()
}

func validationError() error {
	return errors.New("invalid")
}

func TestHandlerExecuteSuccess(t *testing.T) {
	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !called {
		t.Fatal("expected handler to be invoked")
	}
}

func TestHandlerValidationShortCircuitsExecution(t *testing.T) {
	called := false
	h := NewHandler[invalidMessage](func(ctx context.Context, msg invalidMessage) error {
		called = true
		return nil
	})

	err := h.Execute(context.Background(), invalidMessage{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when validation fails")
	}
}

func TestHandlerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	err := h.Execute(ctx, testMessage{})
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when context is cancelled")
	}
}

func TestHandlerWrapsExecutionError(t *testing.T) {
	execErr := errors.New("boom")
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return execErr
	})

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected wrapped execution error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if !goerrors.HasCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category to propagate, got %v", err)
	}
}

func TestHandlerHonoursTimeoutOption(t *testing.T) {
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(20 * time.Millisecond):
			return nil
		}
	}, WithTimeout[testMessage](10*time.Millisecond))

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for timeout, got %v", err)
	}
}

func TestHandlerReportsTelemetry(t *testing.T) {
	var infos []TelemetryInfo
	record := func(_ context.Context, _ testMessage, info TelemetryInfo) {
		infos = append(infos, info)
	}

	ok := NewHandler[testMessage](func(context.Context, testMessage) error { return nil },
		WithOperation[testMessage]("test.ok"),
		WithTelemetry[testMessage](record),
	)
	if err := ok.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	boom := errors.New("boom")
	failing := NewHandler[testMessage](func(context.Context, testMessage) error { return boom },
		WithTelemetry[testMessage](record),
	)
	if err := failing.Execute(context.Background(), testMessage{}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}

	if len(infos) != 2 {
		t.Fatalf("expected 2 telemetry calls, got %d", len(infos))
	}
	if infos[0].Status != TelemetryStatusSuccess || infos[0].Operation != "test.ok" || infos[0].Command != "folio.test.message" {
		t.Fatalf("unexpected success info %+v", infos[0])
	}
	if infos[1].Status != TelemetryStatusFailed || !errors.Is(infos[1].Error, boom) {
		t.Fatalf("unexpected failure info %+v", infos[1])
	}
}

func TestWrapExecuteErrorMapsLifecycleFailures(t *testing.T) {
	missing := WrapExecuteError(&lifecycle.NotFoundError{Resource: "version", Key: "v1"})
	if !goerrors.IsCategory(missing, goerrors.CategoryCommand) || !lifecycle.IsNotFound(missing) {
		t.Fatalf("expected not-found command error, got %v", missing)
	}

	template := WrapExecuteError(fmt.Errorf("create: %w", lifecycle.ErrTemplateRequired))
	if !goerrors.IsCategory(template, goerrors.CategoryValidation) || !errors.Is(template, lifecycle.ErrTemplateRequired) {
		t.Fatalf("expected template validation error, got %v", template)
	}

	status := WrapExecuteError(lifecycle.ErrInvalidDeploymentStatus)
	if !goerrors.IsCategory(status, goerrors.CategoryValidation) {
		t.Fatalf("expected status validation error, got %v", status)
	}

	cases := map[error]TelemetryStatus{
		nil:                                  TelemetryStatusSuccess,
		context.DeadlineExceeded:             TelemetryStatusContextError,
		missing:                              TelemetryStatusNotFound,
		lifecycle.ErrInvalidDeploymentStatus: TelemetryStatusRejected,
		errors.New("disk full"):              TelemetryStatusFailed,
	}
	for err, want := range cases {
		if got := StatusFor(err); got != want {
			t.Fatalf("StatusFor(%v) = %q, want %q", err, got, want)
		}
	}

	if WrapExecuteError(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}
