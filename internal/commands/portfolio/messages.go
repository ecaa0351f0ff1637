package portfoliocmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/folioforge/go-folio/internal/contentdata"
	"github.com/folioforge/go-folio/internal/lifecycle"
)

const (
	createVersionMessageType    = "folio.portfolio.version.create"
	saveVersionMessageType      = "folio.portfolio.version.save"
	publishVersionMessageType   = "folio.portfolio.version.publish"
	deletePortfolioMessageType  = "folio.portfolio.delete"
	renamePortfolioMessageType  = "folio.portfolio.rename"
	updateDeploymentMessageType = "folio.portfolio.deployment.update"
)

// CreateVersionCommand starts a new draft version. A nil PortfolioID creates a
// new portfolio. Created receives the stored version.
type CreateVersionCommand struct {
	PortfolioID uuid.UUID                `json:"portfolio_id,omitempty"`
	TemplateID  string                   `json:"template_id"`
	Data        contentdata.Data         `json:"data,omitempty"`
	Name        string                   `json:"name,omitempty"`
	Created     func(*lifecycle.Version) `json:"-"`
}

func (CreateVersionCommand) Type() string { return createVersionMessageType }

func (m CreateVersionCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.TemplateID) == "" {
		errs["template_id"] = validation.NewError("folio.portfolio.version.template_required", "template_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SaveVersionCommand replaces a version's data. A non-blank Name also renames
// the owning portfolio.
type SaveVersionCommand struct {
	VersionID uuid.UUID                `json:"version_id"`
	Data      contentdata.Data         `json:"data"`
	Name      string                   `json:"name,omitempty"`
	Saved     func(*lifecycle.Version) `json:"-"`
}

func (SaveVersionCommand) Type() string { return saveVersionMessageType }

func (m SaveVersionCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.VersionID, validation.By(requiredID("folio.portfolio.version.version_required", "version_id is required"))),
	)
}

// PublishVersionCommand marks a version online and records a deployment.
type PublishVersionCommand struct {
	VersionID   uuid.UUID                   `json:"version_id"`
	TriggeredBy string                      `json:"triggered_by,omitempty"`
	Published   func(*lifecycle.Deployment) `json:"-"`
}

func (PublishVersionCommand) Type() string { return publishVersionMessageType }

func (m PublishVersionCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.VersionID, validation.By(requiredID("folio.portfolio.publish.version_required", "version_id is required"))),
	)
}

// DeletePortfolioCommand removes a portfolio and everything under it. Published
// portfolios require Force.
type DeletePortfolioCommand struct {
	PortfolioID uuid.UUID `json:"portfolio_id"`
	Force       bool      `json:"force,omitempty"`
}

func (DeletePortfolioCommand) Type() string { return deletePortfolioMessageType }

func (m DeletePortfolioCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.PortfolioID, validation.By(requiredID("folio.portfolio.delete.portfolio_required", "portfolio_id is required"))),
	)
}

// RenamePortfolioCommand changes a portfolio's display name.
type RenamePortfolioCommand struct {
	PortfolioID uuid.UUID `json:"portfolio_id"`
	Name        string    `json:"name"`
}

func (RenamePortfolioCommand) Type() string { return renamePortfolioMessageType }

func (m RenamePortfolioCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.PortfolioID, validation.By(requiredID("folio.portfolio.rename.portfolio_required", "portfolio_id is required"))),
		validation.Field(&m.Name, validation.Required.ErrorObject(
			validation.NewError("folio.portfolio.rename.name_required", "name is required"),
		), validation.Length(1, 200)),
	)
}

// UpdateDeploymentCommand reports build pipeline progress for a deployment.
type UpdateDeploymentCommand struct {
	DeploymentID         uuid.UUID                  `json:"deployment_id"`
	Status               lifecycle.DeploymentStatus `json:"status,omitempty"`
	URL                  string                     `json:"url,omitempty"`
	ProviderProjectID    string                     `json:"provider_project_id,omitempty"`
	ProviderDeploymentID string                     `json:"provider_deployment_id,omitempty"`
}

func (UpdateDeploymentCommand) Type() string { return updateDeploymentMessageType }

func (m UpdateDeploymentCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.DeploymentID, validation.By(requiredID("folio.portfolio.deployment.deployment_required", "deployment_id is required"))),
		validation.Field(&m.Status, validation.By(func(any) error {
			if m.Status == "" || m.Status.Valid() {
				return nil
			}
			return validation.NewError("folio.portfolio.deployment.status_invalid", "status must be queued, building, ready, error or canceled")
		})),
	)
}

func requiredID(code, message string) validation.RuleFunc {
	return func(value any) error {
		id, _ := value.(uuid.UUID)
		if id == uuid.Nil {
			return validation.NewError(code, message)
		}
		return nil
	}
}
