package lifecycle

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Portfolio returns a copy of the portfolio.
func (s *Store) Portfolio(id uuid.UUID) (*Portfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	portfolio, ok := s.portfolios[id]
	if !ok {
		return nil, &NotFoundError{Resource: "portfolio", Key: id.String()}
	}
	return clonePortfolio(portfolio), nil
}

// Version returns a copy of the version.
func (s *Store) Version(id uuid.UUID) (*Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	version, ok := s.versions[id]
	if !ok {
		return nil, &NotFoundError{Resource: "version", Key: id.String()}
	}
	return cloneVersion(version), nil
}

// Deployment returns a copy of the deployment.
func (s *Store) Deployment(id uuid.UUID) (*Deployment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	deployment, ok := s.deployments[id]
	if !ok {
		return nil, &NotFoundError{Resource: "deployment", Key: id.String()}
	}
	return cloneDeployment(deployment), nil
}

// ListPortfolios returns every portfolio ordered by creation time.
func (s *Store) ListPortfolios() []*Portfolio {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Portfolio, 0, len(s.portfolios))
	for _, p := range s.portfolios {
		out = append(out, clonePortfolio(p))
	}
	sort.Slice(out, func(i, j int) bool {
		return earlier(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}

// Versions returns the versions of a portfolio ordered by creation time.
func (s *Store) Versions(portfolioID uuid.UUID) []*Version {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versionsLocked(portfolioID)
}

// Deployments returns the deployments of a version ordered by creation time.
func (s *Store) Deployments(versionID uuid.UUID) []*Deployment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deploymentsLocked(versionID)
}

// LatestVersion returns the most recently modified version of a portfolio,
// the one editing resumes from.
func (s *Store) LatestVersion(portfolioID uuid.UUID) (*Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	latest := PickLatest(s.versionsLocked(portfolioID))
	if latest == nil {
		return nil, &NotFoundError{Resource: "version", Key: "portfolio " + portfolioID.String()}
	}
	return latest, nil
}

// OnlineVersions returns every online version of a portfolio. More than one
// version may be online at a time.
func (s *Store) OnlineVersions(portfolioID uuid.UUID) []*Version {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return PickOnline(s.versionsLocked(portfolioID))
}

// Snapshot returns a detached copy of every collection.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Portfolios:  make([]*Portfolio, 0, len(s.portfolios)),
		Versions:    make([]*Version, 0, len(s.versions)),
		Deployments: make([]*Deployment, 0, len(s.deployments)),
	}
	for _, p := range s.portfolios {
		snap.Portfolios = append(snap.Portfolios, clonePortfolio(p))
	}
	for _, v := range s.versions {
		snap.Versions = append(snap.Versions, cloneVersion(v))
	}
	for _, d := range s.deployments {
		snap.Deployments = append(snap.Deployments, cloneDeployment(d))
	}
	sort.Slice(snap.Portfolios, func(i, j int) bool {
		return earlier(snap.Portfolios[i].CreatedAt, snap.Portfolios[j].CreatedAt, snap.Portfolios[i].ID, snap.Portfolios[j].ID)
	})
	sort.Slice(snap.Versions, func(i, j int) bool {
		return earlier(snap.Versions[i].CreatedAt, snap.Versions[j].CreatedAt, snap.Versions[i].ID, snap.Versions[j].ID)
	})
	sort.Slice(snap.Deployments, func(i, j int) bool {
		return earlier(snap.Deployments[i].CreatedAt, snap.Deployments[j].CreatedAt, snap.Deployments[i].ID, snap.Deployments[j].ID)
	})
	return snap
}

// DeriveSyncStatus reports whether the portfolio is unpublished, live, or
// online with content saved after its latest deployment.
func (s *Store) DeriveSyncStatus(portfolioID uuid.UUID) SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	online := PickLatest(PickOnline(s.versionsLocked(portfolioID)))
	if online == nil {
		return SyncDraft
	}
	return SyncStatusOf(online, s.deploymentsLocked(online.ID), s.syncBuffer)
}

func (s *Store) versionsLocked(portfolioID uuid.UUID) []*Version {
	out := make([]*Version, 0)
	for _, v := range s.versions {
		if v.PortfolioID == portfolioID {
			out = append(out, cloneVersion(v))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return earlier(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}

func (s *Store) deploymentsLocked(versionID uuid.UUID) []*Deployment {
	out := make([]*Deployment, 0)
	for _, d := range s.deployments {
		if d.PortfolioVersionID == versionID {
			out = append(out, cloneDeployment(d))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return earlier(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}

func earlier(a, b time.Time, idA, idB uuid.UUID) bool {
	if a.Equal(b) {
		return idA.String() < idB.String()
	}
	return a.Before(b)
}
