// Package portfoliocmd exposes portfolio lifecycle operations as go-command
// messages and handlers.
package portfoliocmd

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/folioforge/go-folio/internal/commands"
	"github.com/folioforge/go-folio/internal/contentdata"
	"github.com/folioforge/go-folio/internal/lifecycle"
	"github.com/folioforge/go-folio/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

// Service is the lifecycle surface the handlers drive; *lifecycle.Store
// satisfies it.
type Service interface {
	CreateVersion(ctx context.Context, portfolioID uuid.UUID, templateID string, data contentdata.Data) (*lifecycle.Version, error)
	SaveVersion(ctx context.Context, versionID uuid.UUID, data contentdata.Data) (*lifecycle.Version, error)
	Publish(ctx context.Context, versionID uuid.UUID, triggeredBy string) (*lifecycle.Deployment, error)
	DeletePortfolio(ctx context.Context, portfolioID uuid.UUID) error
	RenamePortfolio(ctx context.Context, portfolioID uuid.UUID, name string) (*lifecycle.Portfolio, error)
	UpdateDeployment(ctx context.Context, deploymentID uuid.UUID, update lifecycle.DeploymentUpdate) (*lifecycle.Deployment, error)
	OnlineVersions(portfolioID uuid.UUID) []*lifecycle.Version
}

var _ Service = (*lifecycle.Store)(nil)

func handlerOptions[T command.Message](logger interfaces.Logger, operation string, extra []commands.HandlerOption[T]) []commands.HandlerOption[T] {
	opts := []commands.HandlerOption[T]{
		commands.WithLogger[T](logger),
		commands.WithOperation[T](operation),
	}
	return append(opts, extra...)
}

// CreateVersionHandler creates draft versions.
type CreateVersionHandler struct {
	inner *commands.Handler[CreateVersionCommand]
}

func NewCreateVersionHandler(service Service, logger interfaces.Logger, opts ...commands.HandlerOption[CreateVersionCommand]) *CreateVersionHandler {
	exec := func(ctx context.Context, msg CreateVersionCommand) error {
		version, err := service.CreateVersion(ctx, msg.PortfolioID, msg.TemplateID, msg.Data)
		if err != nil {
			return err
		}
		if name := strings.TrimSpace(msg.Name); name != "" {
			if _, err := service.RenamePortfolio(ctx, version.PortfolioID, name); err != nil {
				return err
			}
		}
		if msg.Created != nil {
			msg.Created(version)
		}
		return nil
	}
	return &CreateVersionHandler{
		inner: commands.NewHandler(exec, handlerOptions(logger, "portfolio.version.create", opts)...),
	}
}

func (h *CreateVersionHandler) Execute(ctx context.Context, msg CreateVersionCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SaveVersionHandler stores edited data, renaming the portfolio when asked.
type SaveVersionHandler struct {
	inner *commands.Handler[SaveVersionCommand]
}

func NewSaveVersionHandler(service Service, logger interfaces.Logger, opts ...commands.HandlerOption[SaveVersionCommand]) *SaveVersionHandler {
	exec := func(ctx context.Context, msg SaveVersionCommand) error {
		version, err := service.SaveVersion(ctx, msg.VersionID, msg.Data)
		if err != nil {
			return err
		}
		if name := strings.TrimSpace(msg.Name); name != "" {
			if _, err := service.RenamePortfolio(ctx, version.PortfolioID, name); err != nil {
				return err
			}
		}
		if msg.Saved != nil {
			msg.Saved(version)
		}
		return nil
	}
	return &SaveVersionHandler{
		inner: commands.NewHandler(exec, handlerOptions(logger, "portfolio.version.save", opts)...),
	}
}

func (h *SaveVersionHandler) Execute(ctx context.Context, msg SaveVersionCommand) error {
	return h.inner.Execute(ctx, msg)
}

// PublishVersionHandler publishes versions when the publishing gate allows it.
type PublishVersionHandler struct {
	inner *commands.Handler[PublishVersionCommand]
}

func NewPublishVersionHandler(service Service, gates FeatureGates, logger interfaces.Logger, opts ...commands.HandlerOption[PublishVersionCommand]) *PublishVersionHandler {
	exec := func(ctx context.Context, msg PublishVersionCommand) error {
		if !gates.publishingEnabled() {
			return ErrPublishingDisabled
		}
		deployment, err := service.Publish(ctx, msg.VersionID, msg.TriggeredBy)
		if err != nil {
			return err
		}
		if msg.Published != nil {
			msg.Published(deployment)
		}
		return nil
	}
	return &PublishVersionHandler{
		inner: commands.NewHandler(exec, handlerOptions(logger, "portfolio.version.publish", opts)...),
	}
}

func (h *PublishVersionHandler) Execute(ctx context.Context, msg PublishVersionCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CLIHandler satisfies command.CLICommand.
func (h *PublishVersionHandler) CLIHandler() any {
	return h
}

func (h *PublishVersionHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"portfolio", "publish"},
		Group:       "portfolio",
		Description: "Publish a portfolio version and record a deployment",
	}
}

// DeletePortfolioHandler removes portfolios, refusing live ones unless forced.
type DeletePortfolioHandler struct {
	inner *commands.Handler[DeletePortfolioCommand]
}

func NewDeletePortfolioHandler(service Service, logger interfaces.Logger, opts ...commands.HandlerOption[DeletePortfolioCommand]) *DeletePortfolioHandler {
	exec := func(ctx context.Context, msg DeletePortfolioCommand) error {
		if !msg.Force && len(service.OnlineVersions(msg.PortfolioID)) > 0 {
			return ErrPortfolioPublished
		}
		return service.DeletePortfolio(ctx, msg.PortfolioID)
	}
	return &DeletePortfolioHandler{
		inner: commands.NewHandler(exec, handlerOptions(logger, "portfolio.delete", opts)...),
	}
}

func (h *DeletePortfolioHandler) Execute(ctx context.Context, msg DeletePortfolioCommand) error {
	return h.inner.Execute(ctx, msg)
}

func (h *DeletePortfolioHandler) CLIHandler() any {
	return h
}

func (h *DeletePortfolioHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"portfolio", "delete"},
		Group:       "portfolio",
		Description: "Delete a portfolio with its versions and deployments; published portfolios need --force",
	}
}

// RenamePortfolioHandler renames portfolios.
type RenamePortfolioHandler struct {
	inner *commands.Handler[RenamePortfolioCommand]
}

func NewRenamePortfolioHandler(service Service, logger interfaces.Logger, opts ...commands.HandlerOption[RenamePortfolioCommand]) *RenamePortfolioHandler {
	exec := func(ctx context.Context, msg RenamePortfolioCommand) error {
		_, err := service.RenamePortfolio(ctx, msg.PortfolioID, msg.Name)
		return err
	}
	return &RenamePortfolioHandler{
		inner: commands.NewHandler(exec, handlerOptions(logger, "portfolio.rename", opts)...),
	}
}

func (h *RenamePortfolioHandler) Execute(ctx context.Context, msg RenamePortfolioCommand) error {
	return h.inner.Execute(ctx, msg)
}

// UpdateDeploymentHandler applies deployment pipeline callbacks.
type UpdateDeploymentHandler struct {
	inner *commands.Handler[UpdateDeploymentCommand]
}

func NewUpdateDeploymentHandler(service Service, logger interfaces.Logger, opts ...commands.HandlerOption[UpdateDeploymentCommand]) *UpdateDeploymentHandler {
	exec := func(ctx context.Context, msg UpdateDeploymentCommand) error {
		_, err := service.UpdateDeployment(ctx, msg.DeploymentID, lifecycle.DeploymentUpdate{
			Status:               msg.Status,
			URL:                  msg.URL,
			ProviderProjectID:    msg.ProviderProjectID,
			ProviderDeploymentID: msg.ProviderDeploymentID,
		})
		return err
	}
	return &UpdateDeploymentHandler{
		inner: commands.NewHandler(exec, handlerOptions(logger, "portfolio.deployment.update", opts)...),
	}
}

func (h *UpdateDeploymentHandler) Execute(ctx context.Context, msg UpdateDeploymentCommand) error {
	return h.inner.Execute(ctx, msg)
}
