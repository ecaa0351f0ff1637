package commands

import (
	"context"
	"errors"
	"time"

	"github.com/folioforge/go-folio/internal/lifecycle"
	"github.com/folioforge/go-folio/internal/logging"
	"github.com/folioforge/go-folio/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

// TelemetryStatus classifies how a command run ended.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusNotFound     TelemetryStatus = "not_found"
	TelemetryStatusRejected     TelemetryStatus = "rejected"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo is passed to telemetry callbacks after every run.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry is invoked once per command run.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// StatusFor classifies a command failure. Missing records and rejected
// lifecycle input are kept apart from genuine execution failures.
func StatusFor(err error) TelemetryStatus {
	switch {
	case err == nil:
		return TelemetryStatusSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return TelemetryStatusContextError
	case lifecycle.IsNotFound(err):
		return TelemetryStatusNotFound
	case errors.Is(err, lifecycle.ErrTemplateRequired), errors.Is(err, lifecycle.ErrInvalidDeploymentStatus):
		return TelemetryStatusRejected
	default:
		return TelemetryStatusFailed
	}
}

// DefaultTelemetry logs the outcome. Missing records and rejected input are
// warnings, everything else that fails is an error.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	logger = logging.Ensure(logger)
	return func(_ context.Context, _ T, info TelemetryInfo) {
		entry := logging.WithFields(logger, info.Fields)
		args := []any{"duration_ms", info.Duration.Milliseconds(), "status", info.Status}
		if info.Error != nil {
			args = append(args, "error", info.Error)
		}
		switch info.Status {
		case TelemetryStatusSuccess:
			entry.Info("command.execute.success", args...)
		case TelemetryStatusNotFound, TelemetryStatusRejected:
			entry.Warn("command.execute.rejected", args...)
		default:
			entry.Error("command.execute.failed", args...)
		}
	}
}
