package editor_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/folioforge/go-folio/internal/contentdata"
	"github.com/folioforge/go-folio/internal/editor"
	"github.com/folioforge/go-folio/internal/form"
	"github.com/folioforge/go-folio/internal/lifecycle"
	"github.com/folioforge/go-folio/internal/polish"
	"github.com/folioforge/go-folio/internal/render"
	"github.com/folioforge/go-folio/internal/templates"
	"github.com/folioforge/go-folio/pkg/interfaces"
)

type fixture struct {
	store   *lifecycle.Store
	catalog templates.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	catalog := templates.NewService(templates.NewMemoryTemplateRepository())
	builtin, err := templates.Builtin()
	if err != nil {
		t.Fatalf("Builtin() error = %v", err)
	}
	if err := catalog.Seed(context.Background(), builtin...); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	return &fixture{store: lifecycle.NewStore(), catalog: catalog}
}

func (f *fixture) editor(opts ...editor.Option) *editor.Editor {
	session := render.NewSession(render.NewCompiler(), render.WithDebounce(0))
	return editor.New(f.store, f.catalog, append([]editor.Option{editor.WithSession(session)}, opts...)...)
}

type failingPolisher struct{ err error }

func (p failingPolisher) Polish(context.Context, string, interfaces.PolishContext, interfaces.PolishTone) (string, error) {
	return "", p.err
}

type blockingPolisher struct {
	started chan struct{}
	release chan struct{}
}

func (p blockingPolisher) Polish(ctx context.Context, text string, _ interfaces.PolishContext, _ interfaces.PolishTone) (string, error) {
	close(p.started)
	<-p.release
	return strings.ToUpper(text), nil
}

type stubExtractor struct{ profile contentdata.Data }

func (s stubExtractor) ExtractProfile(context.Context, string) (contentdata.Data, error) {
	return s.profile.Clone(), nil
}

func TestSelectTemplateStartsFromDemoData(t *testing.T) {
	f := newFixture(t)
	ed := f.editor()

	version, err := ed.SelectTemplate(context.Background(), "t1")
	if err != nil {
		t.Fatalf("SelectTemplate() error = %v", err)
	}
	if version.PortfolioID == uuid.Nil || ed.PortfolioID() != version.PortfolioID {
		t.Fatalf("expected a new portfolio, got %s", version.PortfolioID)
	}
	if version.Data["fullName"] != "Sarah Jenkins" {
		t.Fatalf("expected demo data, got %v", version.Data["fullName"])
	}
	if !strings.Contains(ed.Preview(), "Sarah Jenkins") {
		t.Fatalf("preview missing demo name: %q", ed.Preview())
	}
	if ed.Dirty() {
		t.Fatal("fresh draft must not be dirty")
	}
}

func TestEditSaveAndRename(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ed := f.editor()
	if _, err := ed.SelectTemplate(ctx, "t1"); err != nil {
		t.Fatalf("SelectTemplate() error = %v", err)
	}

	if err := ed.Write(form.Top("fullName"), "Mara Holm"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := ed.Write(form.Item("projects", 0, "title"), "Fjord Studies"); err != nil {
		t.Fatalf("Write() item error = %v", err)
	}
	if !ed.Dirty() {
		t.Fatal("expected dirty after edit")
	}
	if !ed.Session().Flush(time.Now().Add(time.Second)) {
		t.Fatal("expected pending preview render")
	}
	if preview := ed.Preview(); !strings.Contains(preview, "Mara Holm") || !strings.Contains(preview, "Fjord Studies") {
		t.Fatalf("preview not updated: %q", preview)
	}

	result, err := ed.Save(ctx, "Mara's Folio")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if result.Version.Data["fullName"] != "Mara Holm" {
		t.Fatalf("unexpected saved data %v", result.Version.Data)
	}
	if len(result.Issues) != 0 {
		t.Fatalf("unexpected issues %+v", result.Issues)
	}
	portfolio, _ := f.store.Portfolio(ed.PortfolioID())
	if portfolio.Name != "Mara's Folio" {
		t.Fatalf("expected rename, got %q", portfolio.Name)
	}
	if ed.Dirty() {
		t.Fatal("expected clean after save")
	}
}

func TestSaveReportsIssuesWithoutBlocking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ed := f.editor()
	if _, err := ed.SelectTemplate(ctx, "t1"); err != nil {
		t.Fatalf("SelectTemplate() error = %v", err)
	}
	if err := ed.Write(form.Top("fullName"), ""); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	result, err := ed.Save(ctx, "")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if len(result.Issues) == 0 {
		t.Fatal("expected a required-field issue")
	}
	if result.Version.Data["fullName"] != "" {
		t.Fatalf("content must be saved as is, got %v", result.Version.Data["fullName"])
	}
}

func TestSwitchingTemplateCarriesContent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ed := f.editor()
	first, _ := ed.SelectTemplate(ctx, "t1")
	_ = ed.Write(form.Top("fullName"), "Mara Holm")

	second, err := ed.SelectTemplate(ctx, "t2")
	if err != nil {
		t.Fatalf("SelectTemplate() error = %v", err)
	}
	if second.PortfolioID != first.PortfolioID || second.ID == first.ID {
		t.Fatalf("expected a new version on the same portfolio")
	}
	if second.TemplateID != "t2" || second.Data["fullName"] != "Mara Holm" {
		t.Fatalf("expected carried content on t2, got %+v", second)
	}
	if got := len(f.store.Versions(first.PortfolioID)); got != 2 {
		t.Fatalf("expected 2 versions, got %d", got)
	}
}

func TestSelectTemplateRejectsInactive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	if _, err := f.catalog.SetActive(ctx, "t4", false); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	ed := f.editor()
	if _, err := ed.SelectTemplate(ctx, "t4"); !errors.Is(err, editor.ErrTemplateUnavailable) {
		t.Fatalf("expected ErrTemplateUnavailable, got %v", err)
	}
}

func TestOpenRehydratesLatestVersion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ed := f.editor()
	_, _ = ed.SelectTemplate(ctx, "t1")
	_ = ed.Write(form.Top("bio"), "Saved bio")
	if _, err := ed.Save(ctx, ""); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reopened := f.editor()
	if err := reopened.Open(ctx, ed.PortfolioID()); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if reopened.VersionID() != ed.VersionID() {
		t.Fatalf("expected latest version %s, got %s", ed.VersionID(), reopened.VersionID())
	}
	if value, ok := reopened.Read(form.Top("bio")); !ok || value != "Saved bio" {
		t.Fatalf("expected saved bio, got %v (%v)", value, ok)
	}
	if !strings.Contains(reopened.Preview(), "Saved bio") {
		t.Fatalf("preview not rendered on open")
	}

	if err := f.editor().Open(ctx, uuid.New()); !lifecycle.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPublishSavesPendingEdits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ed := f.editor()
	_, _ = ed.SelectTemplate(ctx, "t1")
	_ = ed.Write(form.Top("title"), "Curator")

	deployment, err := ed.Publish(ctx, "mara")
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if deployment.Status != lifecycle.DeploymentReady {
		t.Fatalf("unexpected deployment %+v", deployment)
	}
	version, _ := f.store.Version(ed.VersionID())
	if !version.IsOnline() || version.Data["title"] != "Curator" {
		t.Fatalf("expected saved online version, got %+v", version)
	}
	if ed.Dirty() {
		t.Fatal("publish must leave the editor clean")
	}
}

func TestOperationsRequireTemplate(t *testing.T) {
	ed := newFixture(t).editor(editor.WithPolisher(polish.NewMock()))
	if err := ed.Write(form.Top("bio"), "x"); !errors.Is(err, editor.ErrNoTemplate) {
		t.Fatalf("Write() expected ErrNoTemplate, got %v", err)
	}
	if _, err := ed.Save(context.Background(), ""); !errors.Is(err, editor.ErrNoTemplate) {
		t.Fatalf("Save() expected ErrNoTemplate, got %v", err)
	}
	if _, err := ed.Polish(context.Background(), form.Top("bio"), ""); !errors.Is(err, editor.ErrNoTemplate) {
		t.Fatalf("Polish() expected ErrNoTemplate, got %v", err)
	}
}

func TestPolishAcceptAndReject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ed := f.editor(editor.WithPolisher(polish.NewMock()), editor.WithTone(interfaces.PolishToneConcise))
	_, _ = ed.SelectTemplate(ctx, "t1")
	_ = ed.Write(form.Top("bio"), "I take photos.")

	suggestion, err := ed.Polish(ctx, form.Top("bio"), "")
	if err != nil {
		t.Fatalf("Polish() error = %v", err)
	}
	if suggestion.Polished != "I take photos. (AI Polished - concise)" || suggestion.Original != "I take photos." {
		t.Fatalf("unexpected suggestion %+v", suggestion)
	}
	if value, _ := ed.Read(form.Top("bio")); value != "I take photos." {
		t.Fatalf("suggestion must not apply before accept, got %v", value)
	}
	if err := ed.Accept(form.Top("bio")); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if value, _ := ed.Read(form.Top("bio")); value != suggestion.Polished {
		t.Fatalf("expected accepted text, got %v", value)
	}

	item := form.Item("projects", 1, "description")
	if _, err := ed.Polish(ctx, item, interfaces.PolishToneCreative); err != nil {
		t.Fatalf("Polish() item error = %v", err)
	}
	if err := ed.Reject(item); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if value, _ := ed.Read(item); value != "Visual storytelling in empty urban spaces." {
		t.Fatalf("reject must keep original, got %v", value)
	}
	if err := ed.Accept(item); !errors.Is(err, editor.ErrSuggestionNotPending) {
		t.Fatalf("expected ErrSuggestionNotPending, got %v", err)
	}
}

func TestPolishGuards(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ed := f.editor(editor.WithPolisher(polish.NewMock()))
	_, _ = ed.SelectTemplate(ctx, "t1")

	_ = ed.Write(form.Top("bio"), "   ")
	if _, err := ed.Polish(ctx, form.Top("bio"), ""); !errors.Is(err, editor.ErrEmptyField) {
		t.Fatalf("expected ErrEmptyField, got %v", err)
	}
	if ed.Tracker().Warning() != "bio" {
		t.Fatalf("expected warning on bio, got %q", ed.Tracker().Warning())
	}
	if _, err := ed.Polish(ctx, form.Top("fullName"), ""); !errors.Is(err, editor.ErrPolishNotAllowed) {
		t.Fatalf("expected ErrPolishNotAllowed, got %v", err)
	}
	if _, err := ed.Polish(ctx, form.Top("hobbies"), ""); !errors.Is(err, editor.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}

	noPolisher := f.editor()
	_, _ = noPolisher.SelectTemplate(ctx, "t1")
	if _, err := noPolisher.Polish(ctx, form.Top("bio"), ""); !errors.Is(err, editor.ErrPolisherMissing) {
		t.Fatalf("expected ErrPolisherMissing, got %v", err)
	}
}

func TestPolishFailureLeavesContent(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("quota exceeded")
	ed := newFixture(t).editor(editor.WithPolisher(failingPolisher{err: boom}))
	_, _ = ed.SelectTemplate(ctx, "t1")
	before := ed.Data()

	if _, err := ed.Polish(ctx, form.Top("bio"), ""); !errors.Is(err, boom) {
		t.Fatalf("expected polisher error, got %v", err)
	}
	if !contentdata.Equal(map[string]any(before), map[string]any(ed.Data())) {
		t.Fatal("content changed after failed polish")
	}
	if ed.Tracker().Busy() {
		t.Fatal("tracker must be released after failure")
	}
}

func TestPolishRejectsConcurrentRequestForSameField(t *testing.T) {
	ctx := context.Background()
	p := blockingPolisher{started: make(chan struct{}), release: make(chan struct{})}
	ed := newFixture(t).editor(editor.WithPolisher(p))
	_, _ = ed.SelectTemplate(ctx, "t1")

	done := make(chan error, 1)
	go func() {
		_, err := ed.Polish(ctx, form.Top("bio"), "")
		done <- err
	}()
	<-p.started

	if !ed.Tracker().Optimizing(form.Top("bio")) {
		t.Fatal("expected bio to be marked in flight")
	}
	if _, err := ed.Polish(ctx, form.Top("bio"), ""); !errors.Is(err, editor.ErrPolishInFlight) {
		t.Fatalf("expected ErrPolishInFlight, got %v", err)
	}
	close(p.release)
	if err := <-done; err != nil {
		t.Fatalf("first polish error = %v", err)
	}
	if suggestion, ok := ed.Suggestion(form.Top("bio")); !ok || !strings.HasPrefix(suggestion.Polished, "CAPTURING") {
		t.Fatalf("expected pending suggestion, got %+v", suggestion)
	}
}

func TestImportResumeKeepsSchemaFields(t *testing.T) {
	ctx := context.Background()
	extractor := stubExtractor{profile: contentdata.Data{
		"fullName": "Dana Ortiz",
		"bio":      "Pipelines at scale.",
		"hobbies":  "climbing",
		"projects": []any{
			map[string]any{"title": "Lakehouse", "description": "Moved 2PB.", "technologies": "Spark, Go"},
		},
	}}
	ed := newFixture(t).editor(editor.WithExtractor(extractor))
	_, _ = ed.SelectTemplate(ctx, "t1")

	imported, err := ed.ImportResume(ctx, "Dana Ortiz\nData engineer")
	if err != nil {
		t.Fatalf("ImportResume() error = %v", err)
	}
	if _, ok := imported["hobbies"]; ok {
		t.Fatal("unknown keys must be dropped")
	}
	if value, _ := ed.Read(form.Item("projects", 0, "title")); value != "Lakehouse" {
		t.Fatalf("expected imported project, got %v", value)
	}
	if value, _ := ed.Read(form.Top("title")); value != "Editorial Photographer" {
		t.Fatalf("fields missing from the profile must be kept, got %v", value)
	}
	if !ed.Dirty() {
		t.Fatal("import must mark the editor dirty")
	}

	if _, err := ed.ImportResume(ctx, " "); !errors.Is(err, editor.ErrEmptyField) {
		t.Fatalf("expected ErrEmptyField, got %v", err)
	}
}

func TestRepeatableItemOperations(t *testing.T) {
	ctx := context.Background()
	ed := newFixture(t).editor()
	_, _ = ed.SelectTemplate(ctx, "t1")

	if err := ed.AddItem("projects"); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	items, _ := ed.Read(form.Top("projects"))
	if got := len(items.([]any)); got != 3 {
		t.Fatalf("expected 3 projects, got %d", got)
	}
	if err := ed.MoveItem("projects", 1, 0); err != nil {
		t.Fatalf("MoveItem() error = %v", err)
	}
	if value, _ := ed.Read(form.Item("projects", 0, "title")); value != "Silence" {
		t.Fatalf("expected Silence first, got %v", value)
	}
	if err := ed.RemoveItem("projects", 2); err != nil {
		t.Fatalf("RemoveItem() error = %v", err)
	}
	items, _ = ed.Read(form.Top("projects"))
	if got := len(items.([]any)); got != 2 {
		t.Fatalf("expected 2 projects, got %d", got)
	}
}
