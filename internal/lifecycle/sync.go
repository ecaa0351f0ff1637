package lifecycle

import (
	"time"
)

// PickLatest returns the version with the greatest LastModified. Ties go to
// the greater ID so the choice is stable.
func PickLatest(versions []*Version) *Version {
	var latest *Version
	for _, v := range versions {
		if v == nil {
			continue
		}
		if latest == nil || v.LastModified.After(latest.LastModified) ||
			(v.LastModified.Equal(latest.LastModified) && v.ID.String() > latest.ID.String()) {
			latest = v
		}
	}
	return latest
}

// PickOnline filters the online versions, keeping their order.
func PickOnline(versions []*Version) []*Version {
	out := make([]*Version, 0, len(versions))
	for _, v := range versions {
		if v.IsOnline() {
			out = append(out, v)
		}
	}
	return out
}

// PickLatestDeployment returns the deployment with the greatest UpdatedAt.
// Ties go to the later CreatedAt, then the greater ID.
func PickLatestDeployment(deployments []*Deployment) *Deployment {
	var latest *Deployment
	for _, d := range deployments {
		if d == nil {
			continue
		}
		if latest == nil {
			latest = d
			continue
		}
		switch {
		case d.UpdatedAt.After(latest.UpdatedAt):
			latest = d
		case d.UpdatedAt.Equal(latest.UpdatedAt):
			if d.CreatedAt.After(latest.CreatedAt) ||
				(d.CreatedAt.Equal(latest.CreatedAt) && d.ID.String() > latest.ID.String()) {
				latest = d
			}
		}
	}
	return latest
}

// SyncStatusOf derives the sync status of an online version from the
// deployments that reference it. A version with no deployment counts as
// just published. Content saved more than buffer after the latest
// deployment is unsynced.
func SyncStatusOf(online *Version, deployments []*Deployment, buffer time.Duration) SyncStatus {
	if !online.IsOnline() {
		return SyncDraft
	}
	var own []*Deployment
	for _, d := range deployments {
		if d != nil && d.PortfolioVersionID == online.ID {
			own = append(own, d)
		}
	}
	latest := PickLatestDeployment(own)
	if latest == nil {
		return SyncLive
	}
	if online.LastModified.After(latest.UpdatedAt.Add(buffer)) {
		return SyncUnsynced
	}
	return SyncLive
}
