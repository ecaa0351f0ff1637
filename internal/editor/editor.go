// Package editor ties a portfolio's latest version to its template schema,
// the form engine, the live preview and the AI polish collaborator.
package editor

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/folioforge/go-folio/internal/contentdata"
	"github.com/folioforge/go-folio/internal/form"
	"github.com/folioforge/go-folio/internal/lifecycle"
	"github.com/folioforge/go-folio/internal/logging"
	"github.com/folioforge/go-folio/internal/normalize"
	"github.com/folioforge/go-folio/internal/render"
	"github.com/folioforge/go-folio/internal/templates"
	"github.com/folioforge/go-folio/internal/validation"
	"github.com/folioforge/go-folio/pkg/interfaces"
)

var (
	ErrNoTemplate           = errors.New("editor: no template selected")
	ErrTemplateUnavailable  = errors.New("editor: template is not selectable")
	ErrUnknownField         = errors.New("editor: field is not part of the template schema")
	ErrEmptyField           = errors.New("editor: field is empty")
	ErrPolishNotAllowed     = errors.New("editor: field cannot be polished")
	ErrPolishInFlight       = errors.New("editor: polish already running for field")
	ErrPolisherMissing      = errors.New("editor: no polisher configured")
	ErrExtractorMissing     = errors.New("editor: no profile extractor configured")
	ErrSuggestionNotPending = errors.New("editor: no pending suggestion for field")
)

// Lifecycle is the store surface used by the editor; *lifecycle.Store
// satisfies it.
type Lifecycle interface {
	CreateVersion(ctx context.Context, portfolioID uuid.UUID, templateID string, data contentdata.Data) (*lifecycle.Version, error)
	SaveVersion(ctx context.Context, versionID uuid.UUID, data contentdata.Data) (*lifecycle.Version, error)
	Publish(ctx context.Context, versionID uuid.UUID, triggeredBy string) (*lifecycle.Deployment, error)
	RenamePortfolio(ctx context.Context, portfolioID uuid.UUID, name string) (*lifecycle.Portfolio, error)
	LatestVersion(portfolioID uuid.UUID) (*lifecycle.Version, error)
}

// Catalog resolves templates and their sources.
type Catalog interface {
	interfaces.TemplateSourceStore
	Get(ctx context.Context, slug string) (*templates.Template, error)
}

// Extractor turns resume text into starter content.
type Extractor interface {
	ExtractProfile(ctx context.Context, resume string) (contentdata.Data, error)
}

var (
	_ Lifecycle = (*lifecycle.Store)(nil)
	_ Catalog   = templates.Service(nil)
)

type Option func(*Editor)

func WithPolisher(polisher interfaces.Polisher) Option {
	return func(e *Editor) {
		e.polisher = polisher
	}
}

func WithExtractor(extractor Extractor) Option {
	return func(e *Editor) {
		e.extractor = extractor
	}
}

// WithSession replaces the preview session, e.g. to change the debounce.
func WithSession(session *render.Session) Option {
	return func(e *Editor) {
		if session != nil {
			e.session = session
		}
	}
}

// WithTone sets the default polish tone.
func WithTone(tone interfaces.PolishTone) Option {
	return func(e *Editor) {
		if tone != "" {
			e.tone = tone
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(e *Editor) {
		e.logger = logging.Ensure(logger)
	}
}

// Editor is one user's editing session for one portfolio.
type Editor struct {
	mu        sync.Mutex
	store     Lifecycle
	catalog   Catalog
	polisher  interfaces.Polisher
	extractor Extractor
	session   *render.Session
	tracker   *form.Tracker
	tone      interfaces.PolishTone
	logger    interfaces.Logger

	portfolioID uuid.UUID
	versionID   uuid.UUID
	template    *templates.Template
	engine      *form.Engine
	data        contentdata.Data
	dirty       bool
	suggestions map[string]*Suggestion
}

func New(store Lifecycle, catalog Catalog, opts ...Option) *Editor {
	e := &Editor{
		store:       store,
		catalog:     catalog,
		tracker:     form.NewTracker(),
		tone:        interfaces.PolishToneProfessional,
		logger:      logging.NoOp(),
		data:        contentdata.Data{},
		suggestions: map[string]*Suggestion{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.session == nil {
		e.session = render.NewSession(render.NewCompiler(render.WithLogger(e.logger)), render.WithSessionLogger(e.logger))
	}
	return e
}

// Open rehydrates the editor from the latest version of portfolioID.
func (e *Editor) Open(ctx context.Context, portfolioID uuid.UUID) error {
	version, err := e.store.LatestVersion(portfolioID)
	if err != nil {
		return err
	}
	tpl, err := e.catalog.Get(ctx, version.TemplateID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.portfolioID = version.PortfolioID
	e.install(tpl, version)
	data := e.data.Clone()
	e.mu.Unlock()

	e.loadPreview(ctx, tpl.Slug, data)
	e.logger.Debug("editor.opened", "portfolio_id", portfolioID, "version_id", version.ID, "template_id", tpl.Slug)
	return nil
}

// SelectTemplate starts a new draft on templateID. The draft carries the
// current content over when there is any and the template's demo content
// otherwise. A session without a portfolio creates one.
func (e *Editor) SelectTemplate(ctx context.Context, templateID string) (*lifecycle.Version, error) {
	tpl, err := e.catalog.Get(ctx, strings.TrimSpace(templateID))
	if err != nil {
		return nil, err
	}
	if !tpl.Selectable() {
		return nil, ErrTemplateUnavailable
	}

	e.mu.Lock()
	portfolioID := e.portfolioID
	data := e.data.Clone()
	e.mu.Unlock()

	if len(data) == 0 {
		data = tpl.Demo()
	}
	version, err := e.store.CreateVersion(ctx, portfolioID, tpl.Slug, data)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.portfolioID = version.PortfolioID
	e.install(tpl, version)
	e.mu.Unlock()

	e.loadPreview(ctx, tpl.Slug, version.Data)
	e.logger.Info("editor.template.selected", "portfolio_id", version.PortfolioID, "version_id", version.ID, "template_id", tpl.Slug)
	return version, nil
}

// install must be called with e.mu held.
func (e *Editor) install(tpl *templates.Template, version *lifecycle.Version) {
	e.template = tpl
	e.engine = form.New(tpl.Schema)
	e.versionID = version.ID
	e.data = version.Data.Clone()
	if e.data == nil {
		e.data = contentdata.Data{}
	}
	e.dirty = false
	e.suggestions = map[string]*Suggestion{}
	e.tracker.ClearWarning()
}

func (e *Editor) loadPreview(ctx context.Context, templateID string, data contentdata.Data) {
	e.session.LoadSource(ctx, e.catalog, templateID)
	if _, err := e.session.RenderNow(normalize.RenderContext(data)); err != nil {
		e.logger.Debug("editor.preview.render_failed", "error", err)
	}
}

// Read returns the display value of p.
func (e *Editor) Read(p form.Path) (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.engine == nil {
		return nil, false
	}
	return e.engine.Read(e.data, p)
}

// Write sets p to value and queues a preview update.
func (e *Editor) Write(p form.Path, value any) error {
	return e.mutate(func(engine *form.Engine, data contentdata.Data) (contentdata.Data, error) {
		return engine.Write(data, p, value), nil
	})
}

// AddItem appends an empty record to a repeatable field.
func (e *Editor) AddItem(fieldID string) error {
	return e.mutate(func(engine *form.Engine, data contentdata.Data) (contentdata.Data, error) {
		return engine.AddItem(data, fieldID), nil
	})
}

// RemoveItem deletes one record of a repeatable field.
func (e *Editor) RemoveItem(fieldID string, index int) error {
	return e.mutate(func(engine *form.Engine, data contentdata.Data) (contentdata.Data, error) {
		return engine.RemoveItem(data, fieldID, index), nil
	})
}

// MoveItem reorders a repeatable field.
func (e *Editor) MoveItem(fieldID string, from, to int) error {
	return e.mutate(func(engine *form.Engine, data contentdata.Data) (contentdata.Data, error) {
		return engine.Move(data, fieldID, from, to), nil
	})
}

func (e *Editor) mutate(fn func(*form.Engine, contentdata.Data) (contentdata.Data, error)) error {
	e.mu.Lock()
	if e.engine == nil {
		e.mu.Unlock()
		return ErrNoTemplate
	}
	next, err := fn(e.engine, e.data)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.data = next
	e.dirty = true
	snapshot := next.Clone()
	e.mu.Unlock()

	e.session.Update(normalize.RenderContext(snapshot))
	return nil
}

// SaveResult carries the stored version and any content hints.
type SaveResult struct {
	Version *lifecycle.Version
	Issues  []validation.Issue
}

// Save stores the current content on the active version. A non-blank name
// renames the portfolio. Validation issues are reported but never block.
func (e *Editor) Save(ctx context.Context, name string) (*SaveResult, error) {
	e.mu.Lock()
	if e.engine == nil {
		e.mu.Unlock()
		return nil, ErrNoTemplate
	}
	versionID, portfolioID := e.versionID, e.portfolioID
	data := e.data.Clone()
	tplSchema := e.template.Schema
	e.mu.Unlock()

	version, err := e.store.SaveVersion(ctx, versionID, data)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) != "" {
		if _, err := e.store.RenamePortfolio(ctx, portfolioID, name); err != nil {
			return nil, err
		}
	}

	e.mu.Lock()
	if e.versionID == versionID && contentdata.Equal(map[string]any(e.data), map[string]any(data)) {
		e.dirty = false
	}
	e.mu.Unlock()

	result := &SaveResult{Version: version}
	if err := validation.ValidateContent(tplSchema, data); err != nil {
		result.Issues = validation.Issues(err)
		e.logger.Debug("editor.save.issues", "version_id", versionID, "issues", len(result.Issues))
	}
	return result, nil
}

// Publish saves pending edits and publishes the active version.
func (e *Editor) Publish(ctx context.Context, triggeredBy string) (*lifecycle.Deployment, error) {
	e.mu.Lock()
	if e.engine == nil {
		e.mu.Unlock()
		return nil, ErrNoTemplate
	}
	dirty, versionID := e.dirty, e.versionID
	e.mu.Unlock()

	if dirty {
		if _, err := e.Save(ctx, ""); err != nil {
			return nil, err
		}
	}
	return e.store.Publish(ctx, versionID, triggeredBy)
}

// Preview returns the last good preview render.
func (e *Editor) Preview() string {
	return e.session.Output()
}

// PreviewErr returns the latest preview failure, if any.
func (e *Editor) PreviewErr() error {
	return e.session.Err()
}

// Session exposes the preview session so hosts can Run or Flush it.
func (e *Editor) Session() *render.Session {
	return e.session
}

func (e *Editor) Data() contentdata.Data {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data.Clone()
}

func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

func (e *Editor) PortfolioID() uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.portfolioID
}

func (e *Editor) VersionID() uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.versionID
}

// Template returns the active template, or nil.
func (e *Editor) Template() *templates.Template {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.template
}

// Tracker exposes the per-field polish state.
func (e *Editor) Tracker() *form.Tracker {
	return e.tracker
}
