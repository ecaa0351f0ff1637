package templates

import (
	"context"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TemplateRepository persists catalog entries.
type TemplateRepository interface {
	Create(ctx context.Context, tpl *Template) (*Template, error)
	Update(ctx context.Context, tpl *Template) (*Template, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Template, error)
	GetBySlug(ctx context.Context, slug string) (*Template, error)
	List(ctx context.Context) ([]*Template, error)
	ListActive(ctx context.Context) ([]*Template, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotFoundError is returned when a template cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// NewTemplateRecordRepository builds the go-repository-bun repository for
// templates, keyed by slug.
func NewTemplateRecordRepository(db *bun.DB) repository.Repository[*Template] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Template]{
		NewRecord:          func() *Template { return &Template{} },
		GetID:              func(tpl *Template) uuid.UUID { return tpl.ID },
		SetID:              func(tpl *Template, id uuid.UUID) { tpl.ID = id },
		GetIdentifier:      func() string { return "slug" },
		GetIdentifierValue: func(tpl *Template) string { return tpl.Slug },
	})
}
