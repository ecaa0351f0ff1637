// Package folio is the runtime façade of the portfolio builder: template
// catalog, form-driven editor with live preview, version lifecycle with
// deployments, persistence mirroring and the dashboard projection.
package folio

import (
	"context"
	"errors"

	"github.com/folioforge/go-folio/commands"
	"github.com/folioforge/go-folio/internal/dashboard"
	"github.com/folioforge/go-folio/internal/di"
	"github.com/folioforge/go-folio/internal/editor"
	"github.com/folioforge/go-folio/internal/lifecycle"
	"github.com/folioforge/go-folio/internal/polish"
	"github.com/folioforge/go-folio/internal/templates"
	"github.com/folioforge/go-folio/pkg/interfaces"
)

type (
	// TemplateService exports the template catalog contract.
	TemplateService = templates.Service
	Template        = templates.Template

	// Store exports the portfolio lifecycle store.
	Store      = lifecycle.Store
	Portfolio  = lifecycle.Portfolio
	Version    = lifecycle.Version
	Deployment = lifecycle.Deployment
	SyncStatus = lifecycle.SyncStatus

	// Editor exports a single portfolio editing session.
	Editor       = editor.Editor
	EditorOption = editor.Option
	Suggestion   = editor.Suggestion

	DashboardItem  = dashboard.Item
	DashboardStats = dashboard.Stats

	PolishService = polish.Service
)

// Module represents the top level runtime façade.
type Module struct {
	container *di.Container
	commands  *commands.RegistrationResult
}

// New constructs a module using the provided configuration and optional DI
// overrides. When Commands.AutoRegisterDispatcher is set the command handlers
// are subscribed to the go-command dispatcher.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	module := &Module{container: container}

	if cfg.Commands.Enabled && cfg.Commands.AutoRegisterDispatcher {
		result, err := commands.RegisterContainerCommands(container, commands.RegistrationOptions{
			Dispatcher: commands.NewDispatcherAdapter(),
		})
		if err != nil {
			result.Unsubscribe()
			return nil, errors.Join(err, container.Close())
		}
		module.commands = result
	}
	return module, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Templates returns the template catalog.
func (m *Module) Templates() TemplateService {
	return m.container.Templates()
}

// Store returns the lifecycle store.
func (m *Module) Store() *Store {
	return m.container.Store()
}

// Polisher returns the configured polish backend.
func (m *Module) Polisher() PolishService {
	return m.container.Polisher()
}

// Scheduler returns the retry queue scheduler.
func (m *Module) Scheduler() interfaces.Scheduler {
	return m.container.Scheduler()
}

// NewEditor starts an editing session. Call Open or SelectTemplate on it.
func (m *Module) NewEditor(opts ...EditorOption) *Editor {
	return m.container.NewEditor(opts...)
}

// Dashboard returns the portfolio items, latest first, and summary stats.
func (m *Module) Dashboard(ctx context.Context) ([]DashboardItem, DashboardStats, error) {
	return m.container.Dashboard(ctx)
}

// RunSyncWorker replays failed persistence writes until ctx ends. It returns
// immediately when the worker is disabled in the config.
func (m *Module) RunSyncWorker(ctx context.Context) error {
	if !m.container.Config.Sync.WorkerEnabled {
		return nil
	}
	return m.container.RunWorker(ctx)
}

// Close releases dispatcher subscriptions, drains the async mirror and closes
// storage owned by the module.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	m.commands.Unsubscribe()
	return m.container.Close()
}
