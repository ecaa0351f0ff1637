package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/folioforge/go-folio/internal/lifecycle"
)

// MemoryMirror keeps mirrored records in maps. Failures can be injected to
// exercise desync handling.
type MemoryMirror struct {
	mu          sync.Mutex
	portfolios  map[uuid.UUID]*lifecycle.Portfolio
	versions    map[uuid.UUID]*lifecycle.Version
	deployments map[uuid.UUID]*lifecycle.Deployment
	failure     error
	failures    int
	applied     int
}

func NewMemoryMirror() *MemoryMirror {
	return &MemoryMirror{
		portfolios:  make(map[uuid.UUID]*lifecycle.Portfolio),
		versions:    make(map[uuid.UUID]*lifecycle.Version),
		deployments: make(map[uuid.UUID]*lifecycle.Deployment),
	}
}

// FailNext makes the next n Apply calls return err. A negative n fails until
// FailNext is called again.
func (m *MemoryMirror) FailNext(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = n
	m.failure = err
}

// Applied reports how many changes were stored.
func (m *MemoryMirror) Applied() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applied
}

func (m *MemoryMirror) Apply(_ context.Context, change lifecycle.Change) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failure != nil && m.failures != 0 {
		if m.failures > 0 {
			m.failures--
		}
		return m.failure
	}

	switch change.Op {
	case lifecycle.OpDelete:
		for _, d := range change.Deployments {
			delete(m.deployments, d.ID)
		}
		for _, v := range change.Versions {
			delete(m.versions, v.ID)
			for id, d := range m.deployments {
				if d.PortfolioVersionID == v.ID {
					delete(m.deployments, id)
				}
			}
		}
		for _, p := range change.Portfolios {
			delete(m.portfolios, p.ID)
		}
	default:
		for _, p := range change.Portfolios {
			cloned := *p
			m.portfolios[p.ID] = &cloned
		}
		for _, v := range change.Versions {
			cloned := *v
			cloned.Data = v.Data.Clone()
			m.versions[v.ID] = &cloned
		}
		for _, d := range change.Deployments {
			cloned := *d
			m.deployments[d.ID] = &cloned
		}
	}
	m.applied++
	return nil
}

// Load returns a copy of the mirrored records ordered by id.
func (m *MemoryMirror) Load(context.Context) (lifecycle.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := lifecycle.Snapshot{}
	for _, p := range m.portfolios {
		cloned := *p
		snap.Portfolios = append(snap.Portfolios, &cloned)
	}
	for _, v := range m.versions {
		cloned := *v
		cloned.Data = v.Data.Clone()
		snap.Versions = append(snap.Versions, &cloned)
	}
	for _, d := range m.deployments {
		cloned := *d
		snap.Deployments = append(snap.Deployments, &cloned)
	}
	sort.Slice(snap.Portfolios, func(i, j int) bool { return snap.Portfolios[i].ID.String() < snap.Portfolios[j].ID.String() })
	sort.Slice(snap.Versions, func(i, j int) bool { return snap.Versions[i].ID.String() < snap.Versions[j].ID.String() })
	sort.Slice(snap.Deployments, func(i, j int) bool { return snap.Deployments[i].ID.String() < snap.Deployments[j].ID.String() })
	return snap, nil
}
