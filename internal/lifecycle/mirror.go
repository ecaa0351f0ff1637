package lifecycle

import (
	"context"

	"github.com/google/uuid"
)

// Operation is the kind of write a Change asks the mirror to perform.
type Operation string

const (
	OpUpsert Operation = "upsert"
	OpDelete Operation = "delete"
)

// Entity names a collection held by the store.
type Entity string

const (
	EntityPortfolio  Entity = "portfolio"
	EntityVersion    Entity = "version"
	EntityDeployment Entity = "deployment"
)

// Change is the set of records touched by a single store mutation. Upserts
// carry full records; deletes only need the IDs. Mirrors apply upserts
// parents first and deletes children first.
type Change struct {
	Op          Operation
	Portfolios  []*Portfolio
	Versions    []*Version
	Deployments []*Deployment
}

// Ref identifies one record in a Change.
type Ref struct {
	Entity Entity
	ID     uuid.UUID
}

// IsZero reports whether the change touches no records.
func (c Change) IsZero() bool {
	return len(c.Portfolios) == 0 && len(c.Versions) == 0 && len(c.Deployments) == 0
}

// Refs lists the touched records in dependency order for the operation.
func (c Change) Refs() []Ref {
	refs := make([]Ref, 0, len(c.Portfolios)+len(c.Versions)+len(c.Deployments))
	portfolios := func() {
		for _, p := range c.Portfolios {
			refs = append(refs, Ref{Entity: EntityPortfolio, ID: p.ID})
		}
	}
	versions := func() {
		for _, v := range c.Versions {
			refs = append(refs, Ref{Entity: EntityVersion, ID: v.ID})
		}
	}
	deployments := func() {
		for _, d := range c.Deployments {
			refs = append(refs, Ref{Entity: EntityDeployment, ID: d.ID})
		}
	}
	if c.Op == OpDelete {
		deployments()
		versions()
		portfolios()
	} else {
		portfolios()
		versions()
		deployments()
	}
	return refs
}

// Mirror is the persistence collaborator. The store is the source of truth;
// mirrors receive a copy of every committed change.
type Mirror interface {
	Apply(ctx context.Context, change Change) error
}

// MirrorFunc adapts a function to Mirror.
type MirrorFunc func(ctx context.Context, change Change) error

func (f MirrorFunc) Apply(ctx context.Context, change Change) error {
	return f(ctx, change)
}

// DesyncRecorder parks changes the mirror failed to apply so they can be
// retried later.
type DesyncRecorder interface {
	RecordDesync(ctx context.Context, change Change, cause error) error
}

func cloneChange(c Change) Change {
	out := Change{Op: c.Op}
	for _, p := range c.Portfolios {
		out.Portfolios = append(out.Portfolios, clonePortfolio(p))
	}
	for _, v := range c.Versions {
		out.Versions = append(out.Versions, cloneVersion(v))
	}
	for _, d := range c.Deployments {
		out.Deployments = append(out.Deployments, cloneDeployment(d))
	}
	return out
}
