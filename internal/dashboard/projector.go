// Package dashboard builds the read-only portfolio listing from lifecycle
// collections.
package dashboard

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/folioforge/go-folio/internal/lifecycle"
)

// Item is one row of the dashboard.
type Item struct {
	ID            uuid.UUID            `json:"id"`
	Name          string               `json:"name"`
	Title         string               `json:"title"`
	TemplateID    string               `json:"templateId,omitempty"`
	IsPublished   bool                 `json:"isPublished"`
	SyncStatus    lifecycle.SyncStatus `json:"syncStatus"`
	URL           string               `json:"url,omitempty"`
	LastModified  time.Time            `json:"lastModified"`
	LastPublished *time.Time           `json:"lastPublished,omitempty"`
}

// Projector joins the lifecycle collections into dashboard items.
type Projector struct {
	syncBuffer time.Duration
}

type Option func(*Projector)

// WithSyncBuffer sets the tolerance used when deriving each item's sync status.
func WithSyncBuffer(buffer time.Duration) Option {
	return func(p *Projector) {
		if buffer >= 0 {
			p.syncBuffer = buffer
		}
	}
}

func NewProjector(opts ...Option) *Projector {
	p := &Projector{syncBuffer: lifecycle.DefaultSyncBuffer}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Project returns one item per portfolio, most recently modified first. The
// inputs are never modified. Versions and deployments whose owner is missing
// are ignored.
func (p *Projector) Project(portfolios []*lifecycle.Portfolio, versions []*lifecycle.Version, deployments []*lifecycle.Deployment) []Item {
	byPortfolio := make(map[uuid.UUID][]*lifecycle.Version, len(portfolios))
	for _, v := range versions {
		if v != nil {
			byPortfolio[v.PortfolioID] = append(byPortfolio[v.PortfolioID], v)
		}
	}
	byVersion := make(map[uuid.UUID][]*lifecycle.Deployment, len(deployments))
	for _, d := range deployments {
		if d != nil {
			byVersion[d.PortfolioVersionID] = append(byVersion[d.PortfolioVersionID], d)
		}
	}

	items := make([]Item, 0, len(portfolios))
	for _, portfolio := range portfolios {
		if portfolio == nil {
			continue
		}
		owned := byPortfolio[portfolio.ID]
		item := Item{
			ID:           portfolio.ID,
			Name:         portfolio.Name,
			LastModified: portfolio.UpdatedAt,
			SyncStatus:   lifecycle.SyncDraft,
		}

		if latest := lifecycle.PickLatest(owned); latest != nil {
			item.Title, _ = latest.Data["title"].(string)
			item.TemplateID = latest.TemplateID
			item.LastModified = latest.LastModified
		}

		if online := lifecycle.PickLatest(lifecycle.PickOnline(owned)); online != nil {
			item.IsPublished = true
			published := byVersion[online.ID]
			item.SyncStatus = lifecycle.SyncStatusOf(online, published, p.syncBuffer)
			if last := lifecycle.PickLatestDeployment(published); last != nil {
				at := last.UpdatedAt
				item.LastPublished = &at
				item.URL = last.URL
			}
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].LastModified.Equal(items[j].LastModified) {
			return items[i].ID.String() < items[j].ID.String()
		}
		return items[i].LastModified.After(items[j].LastModified)
	})
	return items
}

// ProjectSnapshot projects a store snapshot.
func (p *Projector) ProjectSnapshot(snapshot lifecycle.Snapshot) []Item {
	return p.Project(snapshot.Portfolios, snapshot.Versions, snapshot.Deployments)
}

// Split separates the most recent item from the rest, the way the dashboard
// features the latest project.
func Split(items []Item) (*Item, []Item) {
	if len(items) == 0 {
		return nil, nil
	}
	latest := items[0]
	return &latest, items[1:]
}
