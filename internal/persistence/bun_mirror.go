package persistence

import (
	"context"
	"errors"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/folioforge/go-folio/internal/lifecycle"
	"github.com/folioforge/go-folio/internal/logging"
	"github.com/folioforge/go-folio/pkg/interfaces"
)

// BunMirror writes lifecycle changes to a SQL database through bun. Each
// change runs in its own transaction.
type BunMirror struct {
	db          *bun.DB
	portfolios  repository.Repository[*lifecycle.Portfolio]
	versions    repository.Repository[*lifecycle.Version]
	deployments repository.Repository[*lifecycle.Deployment]
	logger      interfaces.Logger
}

// BunOption configures a BunMirror.
type BunOption func(*BunMirror)

func WithBunLogger(logger interfaces.Logger) BunOption {
	return func(m *BunMirror) {
		m.logger = logging.Ensure(logger)
	}
}

func NewBunMirror(db *bun.DB, opts ...BunOption) *BunMirror {
	m := &BunMirror{
		db:          db,
		portfolios:  NewPortfolioRepository(db),
		versions:    NewVersionRepository(db),
		deployments: NewDeploymentRepository(db),
		logger:      logging.NoOp(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func NewPortfolioRepository(db *bun.DB) repository.Repository[*lifecycle.Portfolio] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*lifecycle.Portfolio]{
		NewRecord:          func() *lifecycle.Portfolio { return &lifecycle.Portfolio{} },
		GetID:              func(p *lifecycle.Portfolio) uuid.UUID { return p.ID },
		SetID:              func(p *lifecycle.Portfolio, id uuid.UUID) { p.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(p *lifecycle.Portfolio) string { return p.ID.String() },
	})
}

func NewVersionRepository(db *bun.DB) repository.Repository[*lifecycle.Version] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*lifecycle.Version]{
		NewRecord:          func() *lifecycle.Version { return &lifecycle.Version{} },
		GetID:              func(v *lifecycle.Version) uuid.UUID { return v.ID },
		SetID:              func(v *lifecycle.Version, id uuid.UUID) { v.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(v *lifecycle.Version) string { return v.ID.String() },
	})
}

func NewDeploymentRepository(db *bun.DB) repository.Repository[*lifecycle.Deployment] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*lifecycle.Deployment]{
		NewRecord:          func() *lifecycle.Deployment { return &lifecycle.Deployment{} },
		GetID:              func(d *lifecycle.Deployment) uuid.UUID { return d.ID },
		SetID:              func(d *lifecycle.Deployment, id uuid.UUID) { d.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(d *lifecycle.Deployment) string { return d.ID.String() },
	})
}

// Apply writes the change. Upserts run parents first, deletes children first.
func (m *BunMirror) Apply(ctx context.Context, change lifecycle.Change) error {
	if m.db == nil {
		return errors.New("persistence: bun mirror requires a database")
	}
	if change.IsZero() {
		return nil
	}
	err := m.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		switch change.Op {
		case lifecycle.OpDelete:
			return deleteChange(ctx, tx, change)
		default:
			return upsertChange(ctx, tx, change)
		}
	})
	if err != nil {
		return fmt.Errorf("persistence: apply %s: %w", change.Op, err)
	}
	m.logger.Debug("persistence.bun.applied", "op", change.Op,
		"portfolios", len(change.Portfolios), "versions", len(change.Versions), "deployments", len(change.Deployments))
	return nil
}

// Load reads every stored record.
func (m *BunMirror) Load(ctx context.Context) (lifecycle.Snapshot, error) {
	portfolios, _, err := m.portfolios.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("created_at ASC", "id ASC")
	}))
	if err != nil {
		return lifecycle.Snapshot{}, fmt.Errorf("persistence: load portfolios: %w", err)
	}
	versions, _, err := m.versions.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("created_at ASC", "id ASC")
	}))
	if err != nil {
		return lifecycle.Snapshot{}, fmt.Errorf("persistence: load versions: %w", err)
	}
	deployments, _, err := m.deployments.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("created_at ASC", "id ASC")
	}))
	if err != nil {
		return lifecycle.Snapshot{}, fmt.Errorf("persistence: load deployments: %w", err)
	}
	return lifecycle.Snapshot{Portfolios: portfolios, Versions: versions, Deployments: deployments}, nil
}

func upsertChange(ctx context.Context, tx bun.Tx, change lifecycle.Change) error {
	if len(change.Portfolios) > 0 {
		if _, err := tx.NewInsert().
			Model(&change.Portfolios).
			On("CONFLICT (id) DO UPDATE").
			Set("name = EXCLUDED.name").
			Set("description = EXCLUDED.description").
			Set("cover_url = EXCLUDED.cover_url").
			Set("owner_id = EXCLUDED.owner_id").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx); err != nil {
			return fmt.Errorf("upsert portfolios: %w", err)
		}
	}
	if len(change.Versions) > 0 {
		if _, err := tx.NewInsert().
			Model(&change.Versions).
			On("CONFLICT (id) DO UPDATE").
			Set("portfolio_id = EXCLUDED.portfolio_id").
			Set("template_id = EXCLUDED.template_id").
			Set("data = EXCLUDED.data").
			Set("status = EXCLUDED.status").
			Set("last_modified = EXCLUDED.last_modified").
			Exec(ctx); err != nil {
			return fmt.Errorf("upsert versions: %w", err)
		}
	}
	if len(change.Deployments) > 0 {
		if _, err := tx.NewInsert().
			Model(&change.Deployments).
			On("CONFLICT (id) DO UPDATE").
			Set("status = EXCLUDED.status").
			Set("url = EXCLUDED.url").
			Set("provider_project_id = EXCLUDED.provider_project_id").
			Set("provider_deployment_id = EXCLUDED.provider_deployment_id").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx); err != nil {
			return fmt.Errorf("upsert deployments: %w", err)
		}
	}
	return nil
}

func deleteChange(ctx context.Context, tx bun.Tx, change lifecycle.Change) error {
	if ids := deploymentIDs(change.Deployments); len(ids) > 0 {
		if _, err := tx.NewDelete().
			Model((*lifecycle.Deployment)(nil)).
			Where("id IN (?)", bun.In(ids)).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete deployments: %w", err)
		}
	}
	if ids := versionIDs(change.Versions); len(ids) > 0 {
		if _, err := tx.NewDelete().
			Model((*lifecycle.Deployment)(nil)).
			Where("portfolio_version_id IN (?)", bun.In(ids)).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete version deployments: %w", err)
		}
		if _, err := tx.NewDelete().
			Model((*lifecycle.Version)(nil)).
			Where("id IN (?)", bun.In(ids)).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete versions: %w", err)
		}
	}
	if ids := portfolioIDs(change.Portfolios); len(ids) > 0 {
		if _, err := tx.NewDelete().
			Model((*lifecycle.Portfolio)(nil)).
			Where("id IN (?)", bun.In(ids)).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete portfolios: %w", err)
		}
	}
	return nil
}

func portfolioIDs(records []*lifecycle.Portfolio) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	return ids
}

func versionIDs(records []*lifecycle.Version) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	return ids
}

func deploymentIDs(records []*lifecycle.Deployment) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	return ids
}
