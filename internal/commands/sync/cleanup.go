package synccmd

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/folioforge/go-folio/internal/commands"
	"github.com/folioforge/go-folio/internal/logging"
	"github.com/folioforge/go-folio/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const cleanupAuditMessageType = "folio.sync.audit.cleanup"

// DefaultAuditRetention is how long replay outcomes survive the scheduled cleanup.
const DefaultAuditRetention = 7 * 24 * time.Hour

// AuditCleaner extends AuditLog with retention pruning.
type AuditCleaner interface {
	AuditLog
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}

// CleanupAuditCommand drops audit events older than OlderThan. A zero
// OlderThan falls back to the handler retention. DryRun only reports the count.
type CleanupAuditCommand struct {
	OlderThan time.Duration `json:"older_than,omitempty"`
	DryRun    bool          `json:"dry_run,omitempty"`
}

func (CleanupAuditCommand) Type() string { return cleanupAuditMessageType }

func (m CleanupAuditCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.OlderThan, validation.Min(time.Duration(0)).
			Error("older_than must be zero or positive")),
	)
}

type cleanupHandlerConfig struct {
	cronConfig command.HandlerConfig
	timeout    time.Duration
	retention  time.Duration
	clock      func() time.Time
}

type CleanupHandlerOption func(*cleanupHandlerConfig)

// CleanupWithCronExpression overrides the cron schedule, "@daily" by default.
func CleanupWithCronExpression(expression string) CleanupHandlerOption {
	return func(cfg *cleanupHandlerConfig) {
		if trimmed := strings.TrimSpace(expression); trimmed != "" {
			cfg.cronConfig.Expression = trimmed
		}
	}
}

func CleanupWithTimeout(timeout time.Duration) CleanupHandlerOption {
	return func(cfg *cleanupHandlerConfig) {
		cfg.timeout = timeout
	}
}

// CleanupWithRetention sets how long events are kept when a command does not say. Zero drops everything.
func CleanupWithRetention(retention time.Duration) CleanupHandlerOption {
	return func(cfg *cleanupHandlerConfig) {
		if retention >= 0 {
			cfg.retention = retention
		}
	}
}

func CleanupWithClock(clock func() time.Time) CleanupHandlerOption {
	return func(cfg *cleanupHandlerConfig) {
		if clock != nil {
			cfg.clock = clock
		}
	}
}

// CleanupAuditHandler prunes the audit log by age.
type CleanupAuditHandler struct {
	cleaner    AuditCleaner
	logger     interfaces.Logger
	cronConfig command.HandlerConfig
	timeout    time.Duration
	retention  time.Duration
	clock      func() time.Time
}

func NewCleanupAuditHandler(cleaner AuditCleaner, logger interfaces.Logger, opts ...CleanupHandlerOption) *CleanupAuditHandler {
	cfg := cleanupHandlerConfig{
		cronConfig: command.HandlerConfig{Expression: "@daily"},
		timeout:    commands.DefaultCommandTimeout,
		retention:  DefaultAuditRetention,
		clock:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &CleanupAuditHandler{
		cleaner:    cleaner,
		logger:     logging.Ensure(logger),
		cronConfig: cfg.cronConfig,
		timeout:    cfg.timeout,
		retention:  cfg.retention,
		clock:      cfg.clock,
	}
}

func (h *CleanupAuditHandler) Execute(ctx context.Context, msg CleanupAuditCommand) error {
	if err := commands.WrapValidationError(command.ValidateMessage(msg)); err != nil {
		return err
	}
	ctx, cancel, err := commands.Begin(ctx, h.timeout)
	if err != nil {
		return err
	}
	defer cancel()

	retention := msg.OlderThan
	if retention == 0 {
		retention = h.retention
	}
	cutoff := h.clock().Add(-retention)
	logger := logging.WithFields(h.logger, map[string]any{
		"operation": "sync.audit.cleanup",
		"dry_run":   msg.DryRun,
		"cutoff":    cutoff.Format(time.RFC3339),
	})

	if msg.DryRun {
		events, err := h.cleaner.List(ctx)
		if err != nil {
			return commands.WrapExecuteError(err)
		}
		expired := 0
		for _, event := range events {
			if !event.OccurredAt.After(cutoff) {
				expired++
			}
		}
		logger.Debug("sync.command.audit.cleanup_dry_run", "count", expired)
		return nil
	}
	removed, err := h.cleaner.Prune(ctx, cutoff)
	if err != nil {
		return commands.WrapExecuteError(err)
	}
	logger.Info("sync.command.audit.cleaned", "count", removed)
	return nil
}

// CronHandler satisfies command.CronCommand.
func (h *CleanupAuditHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), CleanupAuditCommand{})
	}
}

func (h *CleanupAuditHandler) CronOptions() command.HandlerConfig {
	return h.cronConfig
}

func (h *CleanupAuditHandler) CLIHandler() any {
	return h
}

func (h *CleanupAuditHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"sync", "audit", "cleanup"},
		Group:       "sync",
		Description: "Prune sync audit events older than the retention window; supports dry-run",
	}
}
