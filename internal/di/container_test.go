package di_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/folioforge/go-folio/internal/di"
	"github.com/folioforge/go-folio/internal/editor"
	"github.com/folioforge/go-folio/internal/form"
	"github.com/folioforge/go-folio/internal/lifecycle"
	"github.com/folioforge/go-folio/internal/persistence"
	"github.com/folioforge/go-folio/internal/polish"
	"github.com/folioforge/go-folio/internal/render"
	"github.com/folioforge/go-folio/internal/runtimeconfig"
)

func newContainer(t *testing.T, cfg runtimeconfig.Config, opts ...di.Option) *di.Container {
	t.Helper()
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })
	return container
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "redis"

	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrStorageProviderUnknown) {
		t.Fatalf("expected storage provider error, got %v", err)
	}
}

func TestDefaultContainerSeedsBuiltinTemplates(t *testing.T) {
	container := newContainer(t, runtimeconfig.DefaultConfig())
	ctx := context.Background()

	active, err := container.Templates().CountActive(ctx)
	if err != nil {
		t.Fatalf("CountActive() error = %v", err)
	}
	if active == 0 {
		t.Fatal("expected builtin templates to be active")
	}
	source, err := container.Templates().FetchSource(ctx, "t1")
	if err != nil || strings.TrimSpace(source) == "" {
		t.Fatalf("FetchSource(t1) = %q, %v", source, err)
	}
	if _, ok := container.Polisher().(polish.Mock); !ok {
		t.Fatalf("expected mock polisher, got %T", container.Polisher())
	}
}

func TestContainerLoadsTemplatesFromDir(t *testing.T) {
	dir := t.TempDir()
	doc := "---\nslug: plain\nname: Plain\nschema:\n  sections:\n    - id: basics\n      fields:\n        - id: fullName\n          type: text\n---\n<h1>{{fullName}}</h1>\n"
	if err := os.WriteFile(filepath.Join(dir, "plain.hbs"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	cfg := runtimeconfig.DefaultConfig()
	cfg.Templates.Dir = dir
	container := newContainer(t, cfg)

	tpl, err := container.Templates().Get(context.Background(), "plain")
	if err != nil {
		t.Fatalf("Get(plain) error = %v", err)
	}
	if tpl.Name != "Plain" {
		t.Fatalf("unexpected template %+v", tpl)
	}
}

func TestContainerEditorFlowFeedsDashboard(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Preview.Debounce = 0
	container := newContainer(t, cfg)
	ctx := context.Background()

	ed := container.NewEditor()
	if _, err := ed.SelectTemplate(ctx, "t1"); err != nil {
		t.Fatalf("SelectTemplate() error = %v", err)
	}
	if !strings.Contains(ed.Preview(), "Sarah Jenkins") {
		t.Fatalf("expected demo preview, got %q", ed.Preview())
	}

	if err := ed.Write(form.Top("fullName"), "Ada Lovelace"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if _, err := ed.Save(ctx, "Ada"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	deployment, err := ed.Publish(ctx, "tester")
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if !strings.HasPrefix(deployment.URL, cfg.Publish.BaseURL) {
		t.Fatalf("unexpected deployment url %q", deployment.URL)
	}

	items, stats, err := container.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if len(items) != 1 || items[0].Name != "Ada" || !items[0].IsPublished {
		t.Fatalf("unexpected dashboard items %+v", items)
	}
	if stats.TotalPortfolios != 1 || stats.Published != 1 || stats.ActiveTemplates == 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestContainerEditorOptionsOverrideDefaults(t *testing.T) {
	container := newContainer(t, runtimeconfig.DefaultConfig())
	session := render.NewSession(container.Compiler(), render.WithDebounce(0))

	ed := container.NewEditor(editor.WithSession(session))
	if ed.Session() != session {
		t.Fatal("expected caller session to replace the default")
	}
}

func TestContainerReplaysFailedMirrorWrites(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Persistence = true
	cfg.Sync.RetryDelay = time.Millisecond

	mirror := persistence.NewMemoryMirror()
	container := newContainer(t, cfg, di.WithMirror(mirror))
	ctx := context.Background()

	mirror.FailNext(1, errors.New("offline"))
	version, err := container.Store().CreateVersion(ctx, uuid.Nil, "t1", nil)
	if err != nil {
		t.Fatalf("CreateVersion() error = %v", err)
	}

	pending, err := container.Scheduler().ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending() error = %v", err)
	}
	if len(pending) == 0 {
		t.Fatal("expected desynced records to be queued")
	}

	time.Sleep(5 * time.Millisecond)
	if err := container.JobWorker().Process(ctx); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	snapshot, err := mirror.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	found := false
	for _, v := range snapshot.Versions {
		if v.ID == version.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected version %s to be mirrored after replay", version.ID)
	}

	events, err := container.AuditRecorder().List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) == 0 {
		t.Fatal("expected audit events for the replay")
	}
}

func TestContainerRestoresFromLoaderMirror(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	mirror := persistence.NewMemoryMirror()
	ctx := context.Background()

	first := newContainer(t, cfg, di.WithMirror(mirror))
	version, err := first.Store().CreateVersion(ctx, uuid.Nil, "t2", nil)
	if err != nil {
		t.Fatalf("CreateVersion() error = %v", err)
	}

	second := newContainer(t, cfg, di.WithMirror(mirror))
	restored, err := second.Store().Version(version.ID)
	if err != nil {
		t.Fatalf("expected restored version, got %v", err)
	}
	if restored.TemplateID != "t2" || restored.Status != lifecycle.VersionDraft {
		t.Fatalf("unexpected restored version %+v", restored)
	}
}
