package templates

import (
	"context"
	"fmt"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunTemplateRepository implements TemplateRepository on bun with an
// optional read-through cache. Filtered listings always hit the database.
type BunTemplateRepository struct {
	repo  repository.Repository[*Template]
	lists repository.Repository[*Template]
}

func NewBunTemplateRepository(db *bun.DB) *BunTemplateRepository {
	return NewBunTemplateRepositoryWithCache(db, nil, nil)
}

// NewBunTemplateRepositoryWithCache wraps the repository with
// go-repository-cache when both cacheService and serializer are set.
func NewBunTemplateRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunTemplateRepository {
	base := NewTemplateRecordRepository(db)
	repo := base
	if cacheService != nil && serializer != nil {
		repo = repositorycache.New(base, cacheService, serializer)
	}
	return &BunTemplateRepository{repo: repo, lists: base}
}

func (r *BunTemplateRepository) Create(ctx context.Context, tpl *Template) (*Template, error) {
	return r.repo.Create(ctx, tpl)
}

func (r *BunTemplateRepository) Update(ctx context.Context, tpl *Template) (*Template, error) {
	record, err := r.repo.Update(ctx, tpl,
		repository.UpdateByID(tpl.ID.String()),
		repository.UpdateColumns(
			"slug", "name", "description", "thumbnail", "tags", "style", "engine",
			"repo_url", "dist_path", "schema", "demo_data", "source", "is_active",
			"visibility", "updated_at",
		),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "template", tpl.ID.String())
	}
	return record, nil
}

func (r *BunTemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*Template, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "template", id.String())
	}
	return record, nil
}

func (r *BunTemplateRepository) GetBySlug(ctx context.Context, slug string) (*Template, error) {
	record, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, "template", slug)
	}
	return record, nil
}

func (r *BunTemplateRepository) List(ctx context.Context) ([]*Template, error) {
	records, _, err := r.lists.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("slug ASC")
	}))
	return records, err
}

func (r *BunTemplateRepository) ListActive(ctx context.Context) ([]*Template, error) {
	records, _, err := r.lists.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.is_active = TRUE").Order("slug ASC")
	}))
	return records, err
}

func (r *BunTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &Template{ID: id}); err != nil {
		return mapRepositoryError(err, "template", id.String())
	}
	return nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if repository.IsRecordNotFound(err) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
