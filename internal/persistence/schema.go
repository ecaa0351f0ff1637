package persistence

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/folioforge/go-folio/internal/lifecycle"
	"github.com/folioforge/go-folio/internal/templates"
)

// EnsureSchema creates the lifecycle and template tables when missing.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*templates.Template)(nil),
		(*lifecycle.Portfolio)(nil),
		(*lifecycle.Version)(nil),
		(*lifecycle.Deployment)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("persistence: create table for %T: %w", model, err)
		}
	}

	indexes := []struct {
		model  any
		name   string
		column string
	}{
		{(*lifecycle.Version)(nil), "idx_portfolio_versions_portfolio_id", "portfolio_id"},
		{(*lifecycle.Deployment)(nil), "idx_deployments_portfolio_version_id", "portfolio_version_id"},
	}
	for _, idx := range indexes {
		if _, err := db.NewCreateIndex().Model(idx.model).Index(idx.name).Column(idx.column).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("persistence: create index %s: %w", idx.name, err)
		}
	}
	return nil
}
