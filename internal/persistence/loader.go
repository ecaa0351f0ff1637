package persistence

import (
	"context"
	"fmt"

	"github.com/folioforge/go-folio/internal/lifecycle"
)

// Loader reads previously mirrored records.
type Loader interface {
	Load(ctx context.Context) (lifecycle.Snapshot, error)
}

// Restore loads the persisted records into store, replacing its contents.
func Restore(ctx context.Context, loader Loader, store *lifecycle.Store) (lifecycle.Snapshot, error) {
	snapshot, err := loader.Load(ctx)
	if err != nil {
		return lifecycle.Snapshot{}, fmt.Errorf("persistence: restore: %w", err)
	}
	store.Hydrate(snapshot)
	return snapshot, nil
}
