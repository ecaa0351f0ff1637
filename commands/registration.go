package commands

import (
	"errors"
	"strings"

	command "github.com/goliatone/go-command"

	"github.com/folioforge/go-folio/internal/commands"
	portfoliocmd "github.com/folioforge/go-folio/internal/commands/portfolio"
	synccmd "github.com/folioforge/go-folio/internal/commands/sync"
	"github.com/folioforge/go-folio/internal/di"
	"github.com/folioforge/go-folio/pkg/interfaces"
)

// ErrNoHandlers is returned when the container exposes no services to build handlers from.
var ErrNoHandlers = errors.New("no command handlers registered; ensure services are configured")

// CommandRegistry records command handlers so hosts can expose them via CLI or cron.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// CronRegistrar registers command handlers with a cron scheduler.
type CronRegistrar func(command.HandlerConfig, any) error

// RegistrationOptions configures how handlers are registered during construction.
type RegistrationOptions struct {
	Registry       CommandRegistry
	Dispatcher     CommandDispatcher
	CronRegistrar  CronRegistrar
	LoggerProvider interfaces.LoggerProvider
	// CleanupAuditCron overrides the cron expression configured for the audit cleanup handler.
	CleanupAuditCron string
}

// RegistrationResult captures the constructed command handlers and any dispatcher subscriptions.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// Unsubscribe tears down every dispatcher subscription.
func (r *RegistrationResult) Unsubscribe() {
	if r == nil {
		return
	}
	for _, sub := range r.Subscriptions {
		if sub != nil {
			sub.Unsubscribe()
		}
	}
	r.Subscriptions = nil
}

// RegisterContainerCommands builds the command handlers exposed by the provided container and
// optionally registers them with registry/dispatcher/cron integrations.
func RegisterContainerCommands(container *di.Container, opts RegistrationOptions) (*RegistrationResult, error) {
	if container == nil {
		return &RegistrationResult{}, nil
	}

	cfg := container.Config

	provider := opts.LoggerProvider
	if provider == nil {
		provider = container.LoggerProvider()
	}

	if opts.Registry != nil && opts.CronRegistrar != nil {
		if reg, ok := opts.Registry.(interface {
			SetCronRegister(func(command.HandlerConfig, any) error) *command.Registry
		}); ok && reg != nil {
			reg.SetCronRegister(opts.CronRegistrar)
		}
	}

	result := &RegistrationResult{
		Handlers:      make([]any, 0),
		Subscriptions: make([]CommandSubscription, 0),
	}

	var errs error

	register := func(handler any) {
		if handler == nil {
			return
		}
		result.Handlers = append(result.Handlers, handler)

		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}

		if opts.Dispatcher != nil {
			subscription, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				result.Subscriptions = append(result.Subscriptions, subscription)
			}
		}

		if opts.CronRegistrar != nil {
			if cronCmd, ok := handler.(command.CronCommand); ok {
				if err := opts.CronRegistrar(cronCmd.CronOptions(), cronCmd.CronHandler()); err != nil {
					errs = errors.Join(errs, err)
				}
			}
		}
	}

	loggerFor := func(module string) interfaces.Logger {
		return commands.CommandLogger(provider, module)
	}

	// Portfolio lifecycle commands.
	if store := container.Store(); store != nil {
		gates := portfoliocmd.FeatureGates{
			PublishingEnabled: func() bool { return strings.TrimSpace(cfg.Publish.BaseURL) != "" },
		}
		portfolioLogger := loggerFor("portfolio")
		register(portfoliocmd.NewCreateVersionHandler(store, portfolioLogger))
		register(portfoliocmd.NewSaveVersionHandler(store, portfolioLogger))
		register(portfoliocmd.NewPublishVersionHandler(store, gates, portfolioLogger))
		register(portfoliocmd.NewRenamePortfolioHandler(store, portfolioLogger))
		register(portfoliocmd.NewDeletePortfolioHandler(store, portfolioLogger))
		register(portfoliocmd.NewUpdateDeploymentHandler(store, portfolioLogger))
	}

	// Sync queue and audit commands.
	if worker := container.JobWorker(); worker != nil {
		register(synccmd.NewProcessQueueHandler(worker, loggerFor("sync")))
	}
	if audit := container.AuditRecorder(); audit != nil {
		syncLogger := loggerFor("sync")
		register(synccmd.NewExportAuditHandler(audit, syncLogger))
		expr := strings.TrimSpace(opts.CleanupAuditCron)
		if expr == "" {
			expr = strings.TrimSpace(cfg.Commands.CleanupAuditCron)
		}
		cleanupOpts := []synccmd.CleanupHandlerOption{
			synccmd.CleanupWithRetention(cfg.Commands.AuditRetention),
		}
		if expr != "" {
			cleanupOpts = append(cleanupOpts, synccmd.CleanupWithCronExpression(expr))
		}
		register(synccmd.NewCleanupAuditHandler(audit, syncLogger, cleanupOpts...))
	}

	if len(result.Handlers) == 0 {
		return result, errors.Join(errs, ErrNoHandlers)
	}

	return result, errs
}
