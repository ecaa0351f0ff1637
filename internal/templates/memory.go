package templates

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryTemplateRepository keeps templates in process memory.
type MemoryTemplateRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Template
	bySlug map[string]uuid.UUID
}

func NewMemoryTemplateRepository() *MemoryTemplateRepository {
	return &MemoryTemplateRepository{
		byID:   make(map[uuid.UUID]*Template),
		bySlug: make(map[string]uuid.UUID),
	}
}

func (r *MemoryTemplateRepository) Create(_ context.Context, tpl *Template) (*Template, error) {
	if tpl == nil {
		return nil, nil
	}
	cloned := cloneTemplate(tpl)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[cloned.ID] = cloned
	r.bySlug[cloned.Slug] = cloned.ID
	return cloneTemplate(cloned), nil
}

func (r *MemoryTemplateRepository) Update(_ context.Context, tpl *Template) (*Template, error) {
	if tpl == nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[tpl.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "template", Key: tpl.ID.String()}
	}
	if existing.Slug != tpl.Slug {
		delete(r.bySlug, existing.Slug)
	}
	cloned := cloneTemplate(tpl)
	r.byID[cloned.ID] = cloned
	r.bySlug[cloned.Slug] = cloned.ID
	return cloneTemplate(cloned), nil
}

func (r *MemoryTemplateRepository) GetByID(_ context.Context, id uuid.UUID) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tpl, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "template", Key: id.String()}
	}
	return cloneTemplate(tpl), nil
}

func (r *MemoryTemplateRepository) GetBySlug(_ context.Context, slug string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.bySlug[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "template", Key: slug}
	}
	return cloneTemplate(r.byID[id]), nil
}

func (r *MemoryTemplateRepository) List(_ context.Context) ([]*Template, error) {
	return r.collect(func(*Template) bool { return true }), nil
}

func (r *MemoryTemplateRepository) ListActive(_ context.Context) ([]*Template, error) {
	return r.collect(func(tpl *Template) bool { return tpl.IsActive }), nil
}

func (r *MemoryTemplateRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tpl, ok := r.byID[id]
	if !ok {
		return &NotFoundError{Resource: "template", Key: id.String()}
	}
	delete(r.bySlug, tpl.Slug)
	delete(r.byID, id)
	return nil
}

func (r *MemoryTemplateRepository) collect(keep func(*Template) bool) []*Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Template, 0, len(r.byID))
	for _, tpl := range r.byID {
		if keep(tpl) {
			out = append(out, cloneTemplate(tpl))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}
