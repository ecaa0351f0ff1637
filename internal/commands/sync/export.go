package synccmd

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/folioforge/go-folio/internal/commands"
	"github.com/folioforge/go-folio/internal/jobs"
	"github.com/folioforge/go-folio/internal/logging"
	"github.com/folioforge/go-folio/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const exportAuditMessageType = "folio.sync.audit.export"

// AuditLog exposes read operations for recorded audit events.
type AuditLog interface {
	List(ctx context.Context) ([]jobs.AuditEvent, error)
}

// ExportAuditCommand emits recorded sync audit events through the logger.
// Outcome filters by "resync" or "resync_failed".
type ExportAuditCommand struct {
	MaxRecords *int   `json:"max_records,omitempty"`
	Outcome    string `json:"outcome,omitempty"`
}

func (ExportAuditCommand) Type() string { return exportAuditMessageType }

func (m ExportAuditCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.MaxRecords, validation.By(func(any) error {
			if m.MaxRecords != nil && *m.MaxRecords < 0 {
				return validation.NewError("folio.sync.audit.export.max_records_invalid", "max_records must be zero or positive")
			}
			return nil
		})),
		validation.Field(&m.Outcome, validation.In(string(jobs.AuditResynced), string(jobs.AuditFailed)).
			Error("outcome must be resync or resync_failed")),
	)
}

// ExportAuditHandler logs audit events up to the requested limit.
type ExportAuditHandler struct {
	log     AuditLog
	logger  interfaces.Logger
	timeout time.Duration
}

type ExportHandlerOption func(*ExportAuditHandler)

func ExportWithTimeout(timeout time.Duration) ExportHandlerOption {
	return func(h *ExportAuditHandler) {
		h.timeout = timeout
	}
}

func NewExportAuditHandler(log AuditLog, logger interfaces.Logger, opts ...ExportHandlerOption) *ExportAuditHandler {
	handler := &ExportAuditHandler{
		log:     log,
		logger:  logging.Ensure(logger),
		timeout: commands.DefaultCommandTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(handler)
		}
	}
	return handler
}

// Execute satisfies command.Commander[ExportAuditCommand]. It returns the
// number of exported events through the logger only.
func (h *ExportAuditHandler) Execute(ctx context.Context, msg ExportAuditCommand) error {
	_, err := h.Export(ctx, msg)
	return err
}

// Export returns the events that were emitted.
func (h *ExportAuditHandler) Export(ctx context.Context, msg ExportAuditCommand) ([]jobs.AuditEvent, error) {
	if err := commands.WrapValidationError(command.ValidateMessage(msg)); err != nil {
		return nil, err
	}
	ctx, cancel, err := commands.Begin(ctx, h.timeout)
	if err != nil {
		return nil, err
	}
	defer cancel()

	events, err := h.log.List(ctx)
	if err != nil {
		return nil, commands.WrapExecuteError(err)
	}
	events = jobs.FilterOutcome(events, jobs.AuditOutcome(strings.TrimSpace(msg.Outcome)))
	limit := len(events)
	if msg.MaxRecords != nil && *msg.MaxRecords < limit {
		limit = *msg.MaxRecords
	}

	logger := logging.WithFields(h.logger, map[string]any{
		"operation": "sync.audit.export",
	})
	for idx, event := range events[:limit] {
		logging.WithFields(logger, map[string]any{
			"index":       idx,
			"entity":      event.Ref.Entity,
			"id":          event.Ref.ID.String(),
			"outcome":     event.Outcome,
			"op":          event.Op,
			"attempt":     event.Attempt,
			"error":       event.Error,
			"occurred_at": event.OccurredAt.Format(time.RFC3339),
		}).Debug("sync.command.audit.event")
	}
	logging.WithFields(logger, map[string]any{
		"exported": limit,
		"total":    len(events),
	}).Info("sync.command.audit.exported")
	return events[:limit], nil
}

func (h *ExportAuditHandler) CLIHandler() any {
	return h
}

func (h *ExportAuditHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"sync", "audit", "export"},
		Group:       "sync",
		Description: "Export sync audit events to the configured logger",
	}
}
