// Package lifecycle owns portfolios, their content versions and the
// deployments produced by publishing them.
package lifecycle

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/folioforge/go-folio/internal/contentdata"
)

// DefaultPortfolioName names portfolios created implicitly by CreateVersion.
const DefaultPortfolioName = "Untitled Portfolio"

// VersionStatus describes whether a version has been published.
type VersionStatus string

const (
	VersionDraft  VersionStatus = "draft"
	VersionOnline VersionStatus = "online"
)

// DeploymentStatus tracks a publish attempt through the build pipeline.
type DeploymentStatus string

const (
	DeploymentQueued   DeploymentStatus = "queued"
	DeploymentBuilding DeploymentStatus = "building"
	DeploymentReady    DeploymentStatus = "ready"
	DeploymentError    DeploymentStatus = "error"
	DeploymentCanceled DeploymentStatus = "canceled"
)

// Valid reports whether the status is one of the known pipeline states.
func (s DeploymentStatus) Valid() bool {
	switch s {
	case DeploymentQueued, DeploymentBuilding, DeploymentReady, DeploymentError, DeploymentCanceled:
		return true
	}
	return false
}

// SyncStatus summarises how a portfolio's published site relates to its content.
type SyncStatus string

const (
	SyncDraft    SyncStatus = "draft"
	SyncLive     SyncStatus = "live"
	SyncUnsynced SyncStatus = "unsynced"
)

// Portfolio is the user-facing project container.
type Portfolio struct {
	bun.BaseModel `bun:"table:portfolios,alias:p"`

	ID          uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description string    `bun:"description" json:"description,omitempty"`
	CoverURL    string    `bun:"cover_url" json:"coverUrl,omitempty"`
	OwnerID     string    `bun:"owner_id" json:"ownerId,omitempty"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt   time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// Version is one content snapshot of a portfolio rendered with a template.
// TemplateID holds the template slug.
type Version struct {
	bun.BaseModel `bun:"table:portfolio_versions,alias:pv"`

	ID           uuid.UUID        `bun:",pk,type:uuid" json:"id"`
	PortfolioID  uuid.UUID        `bun:"portfolio_id,notnull,type:uuid" json:"portfolioId"`
	TemplateID   string           `bun:"template_id,notnull" json:"templateId"`
	Data         contentdata.Data `bun:"data,type:jsonb" json:"data"`
	Status       VersionStatus    `bun:"status,notnull" json:"status"`
	CreatedAt    time.Time        `bun:"created_at,notnull" json:"createdAt"`
	LastModified time.Time        `bun:"last_modified,notnull" json:"lastModified"`
}

// IsOnline reports whether the version has been published.
func (v *Version) IsOnline() bool {
	return v != nil && v.Status == VersionOnline
}

// Deployment records a single publish of a version.
type Deployment struct {
	bun.BaseModel `bun:"table:deployments,alias:d"`

	ID                   uuid.UUID        `bun:",pk,type:uuid" json:"id"`
	PortfolioVersionID   uuid.UUID        `bun:"portfolio_version_id,notnull,type:uuid" json:"portfolioVersionId"`
	TriggeredBy          string           `bun:"triggered_by" json:"triggeredBy,omitempty"`
	Status               DeploymentStatus `bun:"status,notnull" json:"status"`
	URL                  string           `bun:"url" json:"url,omitempty"`
	ProviderProjectID    string           `bun:"provider_project_id" json:"providerProjectId,omitempty"`
	ProviderDeploymentID string           `bun:"provider_deployment_id" json:"providerDeploymentId,omitempty"`
	CreatedAt            time.Time        `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt            time.Time        `bun:"updated_at,notnull" json:"updatedAt"`
}

// Snapshot is a detached copy of every collection held by a Store.
type Snapshot struct {
	Portfolios  []*Portfolio  `json:"portfolios"`
	Versions    []*Version    `json:"versions"`
	Deployments []*Deployment `json:"deployments"`
}

func clonePortfolio(p *Portfolio) *Portfolio {
	if p == nil {
		return nil
	}
	cloned := *p
	return &cloned
}

func cloneVersion(v *Version) *Version {
	if v == nil {
		return nil
	}
	cloned := *v
	cloned.Data = v.Data.Clone()
	return &cloned
}

func cloneDeployment(d *Deployment) *Deployment {
	if d == nil {
		return nil
	}
	cloned := *d
	return &cloned
}
