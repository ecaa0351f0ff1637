package di

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/folioforge/go-folio/internal/persistence"
	"github.com/folioforge/go-folio/internal/runtimeconfig"
	"github.com/folioforge/go-folio/internal/templates"
)

func bunConfig(dsn string) runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Persistence = true
	cfg.Storage.Provider = "bun"
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.DSN = dsn
	return cfg
}

func TestContainerBunStorageRestoresLifecycle(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?_fk=1", filepath.Join(t.TempDir(), "folio.db"))
	ctx := context.Background()

	first, err := NewContainer(bunConfig(dsn))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if _, ok := first.mirror.(*persistence.BunMirror); !ok {
		t.Fatalf("expected bun mirror, got %T", first.mirror)
	}
	if _, ok := first.templateRepo.(*templates.BunTemplateRepository); !ok {
		t.Fatalf("expected bun template repository, got %T", first.templateRepo)
	}

	version, err := first.Store().CreateVersion(ctx, uuid.Nil, "t3", map[string]any{"fullName": "Grace"})
	if err != nil {
		t.Fatalf("CreateVersion() error = %v", err)
	}
	if _, err := first.Store().Publish(ctx, version.ID, "tester"); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	second, err := NewContainer(bunConfig(dsn))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = second.Close() })

	restored, err := second.Store().Version(version.ID)
	if err != nil {
		t.Fatalf("expected restored version: %v", err)
	}
	if !restored.IsOnline() || restored.Data["fullName"] != "Grace" {
		t.Fatalf("unexpected restored version %+v", restored)
	}
	if got := len(second.Store().Deployments(version.ID)); got != 1 {
		t.Fatalf("expected 1 restored deployment, got %d", got)
	}
}

func TestContainerBunStorageWithCacheAndAsyncMirror(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?_fk=1", filepath.Join(t.TempDir(), "folio.db"))
	cfg := bunConfig(dsn)
	cfg.Features.Cache = true
	cfg.Cache.Enabled = true
	cfg.Sync.Async = true
	ctx := context.Background()

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	if container.cacheService == nil || container.keySerializer == nil {
		t.Fatal("expected cache service to be configured")
	}
	if container.asyncMirror == nil {
		t.Fatal("expected async mirror")
	}

	version, err := container.Store().CreateVersion(ctx, uuid.Nil, "t1", nil)
	if err != nil {
		t.Fatalf("CreateVersion() error = %v", err)
	}
	if err := container.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	snapshot, err := container.loader.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(snapshot.Versions) != 1 || snapshot.Versions[0].ID != version.ID {
		t.Fatalf("expected flushed version in storage, got %+v", snapshot.Versions)
	}

	tpl, err := container.Templates().Get(ctx, "t1")
	if err != nil || tpl.Slug != "t1" {
		t.Fatalf("Get(t1) = %+v, %v", tpl, err)
	}
}
