package dashboard

import (
	"github.com/folioforge/go-folio/internal/lifecycle"
)

// Stats summarises the dashboard.
type Stats struct {
	TotalPortfolios  int     `json:"totalPortfolios"`
	Published        int     `json:"published"`
	Unsynced         int     `json:"unsynced"`
	Drafts           int     `json:"drafts"`
	TotalDeployments int     `json:"totalDeployments"`
	DeploymentRate   float64 `json:"deploymentRate"`
	ActiveTemplates  int     `json:"activeTemplates"`
}

// Summarize counts items by status. DeploymentRate is the published share in
// percent. Deployments belonging to unknown versions are not counted.
func Summarize(items []Item, snapshot lifecycle.Snapshot, activeTemplates int) Stats {
	stats := Stats{TotalPortfolios: len(items), ActiveTemplates: activeTemplates}
	for _, item := range items {
		switch {
		case !item.IsPublished:
			stats.Drafts++
		case item.SyncStatus == lifecycle.SyncUnsynced:
			stats.Published++
			stats.Unsynced++
		default:
			stats.Published++
		}
	}

	portfolios := make(map[string]struct{}, len(snapshot.Portfolios))
	for _, p := range snapshot.Portfolios {
		portfolios[p.ID.String()] = struct{}{}
	}
	versions := make(map[string]struct{}, len(snapshot.Versions))
	for _, v := range snapshot.Versions {
		if _, ok := portfolios[v.PortfolioID.String()]; ok {
			versions[v.ID.String()] = struct{}{}
		}
	}
	for _, d := range snapshot.Deployments {
		if _, ok := versions[d.PortfolioVersionID.String()]; ok {
			stats.TotalDeployments++
		}
	}

	if stats.TotalPortfolios > 0 {
		stats.DeploymentRate = float64(stats.Published) / float64(stats.TotalPortfolios) * 100
	}
	return stats
}
