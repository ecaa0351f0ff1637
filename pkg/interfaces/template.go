package interfaces

import (
	"context"
	"errors"
)

// ErrTemplateSourceNotFound is returned when no source is registered for a template id.
var ErrTemplateSourceNotFound = errors.New("templates: source not found")

// TemplateSourceStore resolves the markup source of a template by id.
// Callers treat any error as "no source yet".
type TemplateSourceStore interface {
	FetchSource(ctx context.Context, templateID string) (string, error)
}
