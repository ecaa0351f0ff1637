package commands

import (
	"fmt"

	"github.com/goliatone/go-command/dispatcher"

	portfoliocmd "github.com/folioforge/go-folio/internal/commands/portfolio"
	synccmd "github.com/folioforge/go-folio/internal/commands/sync"
)

// DispatcherAdapter subscribes folio handlers to the process-wide go-command
// dispatcher so hosts can call dispatcher.Dispatch with folio messages.
type DispatcherAdapter struct{}

var _ CommandDispatcher = DispatcherAdapter{}

// NewDispatcherAdapter returns an adapter bound to the default dispatcher.
func NewDispatcherAdapter() DispatcherAdapter {
	return DispatcherAdapter{}
}

// RegisterCommand subscribes handler under its message type.
func (DispatcherAdapter) RegisterCommand(handler any) (CommandSubscription, error) {
	switch h := handler.(type) {
	case *portfoliocmd.CreateVersionHandler:
		return dispatcher.SubscribeCommand[portfoliocmd.CreateVersionCommand](h), nil
	case *portfoliocmd.SaveVersionHandler:
		return dispatcher.SubscribeCommand[portfoliocmd.SaveVersionCommand](h), nil
	case *portfoliocmd.PublishVersionHandler:
		return dispatcher.SubscribeCommand[portfoliocmd.PublishVersionCommand](h), nil
	case *portfoliocmd.RenamePortfolioHandler:
		return dispatcher.SubscribeCommand[portfoliocmd.RenamePortfolioCommand](h), nil
	case *portfoliocmd.DeletePortfolioHandler:
		return dispatcher.SubscribeCommand[portfoliocmd.DeletePortfolioCommand](h), nil
	case *portfoliocmd.UpdateDeploymentHandler:
		return dispatcher.SubscribeCommand[portfoliocmd.UpdateDeploymentCommand](h), nil
	case *synccmd.ProcessQueueHandler:
		return dispatcher.SubscribeCommand[synccmd.ProcessQueueCommand](h), nil
	case *synccmd.ExportAuditHandler:
		return dispatcher.SubscribeCommand[synccmd.ExportAuditCommand](h), nil
	case *synccmd.CleanupAuditHandler:
		return dispatcher.SubscribeCommand[synccmd.CleanupAuditCommand](h), nil
	default:
		return nil, fmt.Errorf("commands: unsupported handler %T", handler)
	}
}
