package templates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-slug"

	"github.com/folioforge/go-folio/internal/identity"
	"github.com/folioforge/go-folio/internal/logging"
	"github.com/folioforge/go-folio/internal/schema"
	"github.com/folioforge/go-folio/pkg/interfaces"
)

// Service manages the template catalog and serves template sources to the
// preview.
type Service interface {
	Register(ctx context.Context, input RegisterTemplateInput) (*Template, error)
	Seed(ctx context.Context, templates ...*Template) error
	Get(ctx context.Context, slug string) (*Template, error)
	List(ctx context.Context, opts ListOptions) ([]*Template, error)
	SetActive(ctx context.Context, slug string, active bool) (*Template, error)
	Delete(ctx context.Context, slug string) error
	CountActive(ctx context.Context) (int, error)
	FetchSource(ctx context.Context, templateID string) (string, error)
}

// RegisterTemplateInput describes a template to create or replace.
type RegisterTemplateInput struct {
	Slug        string
	Name        string
	Description string
	Thumbnail   string
	Tags        []string
	Style       Style
	Engine      string
	RepoURL     string
	DistPath    string
	Schema      schema.Schema
	DemoData    map[string]any
	Source      string
	Visibility  Visibility
	Inactive    bool
}

// ListOptions filters List results.
type ListOptions struct {
	IncludeInactive bool
	IncludePrivate  bool
}

var (
	ErrRepositoryRequired    = errors.New("templates: repository required")
	ErrTemplateNameRequired  = errors.New("templates: name required")
	ErrTemplateSlugInvalid   = errors.New("templates: slug invalid")
	ErrTemplateEngineInvalid = errors.New("templates: unsupported engine")
	ErrTemplateNotFound      = errors.New("templates: template not found")
	ErrTemplateStyleInvalid  = errors.New("templates: unsupported style")
)

// ServiceOption configures the catalog service.
type ServiceOption func(*service)

// WithNow overrides the time source.
func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the catalog logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		s.logger = logging.Ensure(logger)
	}
}

type service struct {
	repo   TemplateRepository
	now    func() time.Time
	logger interfaces.Logger
}

var _ interfaces.TemplateSourceStore = (*service)(nil)

func NewService(repo TemplateRepository, opts ...ServiceOption) Service {
	if repo == nil {
		panic(ErrRepositoryRequired)
	}
	s := &service{repo: repo, now: time.Now, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Register(ctx context.Context, input RegisterTemplateInput) (*Template, error) {
	tpl, err := s.buildTemplate(input)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetBySlug(ctx, tpl.Slug)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	now := s.now().UTC()
	tpl.UpdatedAt = now
	if existing != nil {
		tpl.ID = existing.ID
		tpl.CreatedAt = existing.CreatedAt
		updated, err := s.repo.Update(ctx, tpl)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("templates.updated", "slug", tpl.Slug)
		return updated, nil
	}

	tpl.ID = identity.TemplateUUID(tpl.Slug)
	tpl.CreatedAt = now
	created, err := s.repo.Create(ctx, tpl)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("templates.registered", "slug", tpl.Slug)
	return created, nil
}

func (s *service) buildTemplate(input RegisterTemplateInput) (*Template, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTemplateNameRequired
	}
	slugValue, err := normalizeSlug(input.Slug, name)
	if err != nil {
		return nil, err
	}

	engine := strings.ToLower(strings.TrimSpace(input.Engine))
	if engine == "" {
		engine = EngineHandlebars
	}
	if engine != EngineHandlebars {
		return nil, fmt.Errorf("%w: %s", ErrTemplateEngineInvalid, input.Engine)
	}

	switch input.Style {
	case "", StyleMinimal, StyleCreative, StyleCorporate:
	default:
		return nil, fmt.Errorf("%w: %s", ErrTemplateStyleInvalid, input.Style)
	}

	if err := input.Schema.Validate(); err != nil {
		return nil, err
	}

	visibility := input.Visibility
	if visibility == "" {
		visibility = VisibilityPublic
	}

	return cloneTemplate(&Template{
		Slug:        slugValue,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Thumbnail:   strings.TrimSpace(input.Thumbnail),
		Tags:        input.Tags,
		Style:       input.Style,
		Engine:      engine,
		RepoURL:     strings.TrimSpace(input.RepoURL),
		DistPath:    strings.TrimSpace(input.DistPath),
		Schema:      input.Schema,
		DemoData:    input.DemoData,
		Source:      input.Source,
		Visibility:  visibility,
		IsActive:    !input.Inactive,
	}), nil
}

// Seed registers each template, typically the result of Builtin or LoadFS.
func (s *service) Seed(ctx context.Context, templates ...*Template) error {
	for _, tpl := range templates {
		if tpl == nil {
			continue
		}
		if _, err := s.Register(ctx, RegisterTemplateInput{
			Slug:        tpl.Slug,
			Name:        tpl.Name,
			Description: tpl.Description,
			Thumbnail:   tpl.Thumbnail,
			Tags:        tpl.Tags,
			Style:       tpl.Style,
			Engine:      tpl.Engine,
			RepoURL:     tpl.RepoURL,
			DistPath:    tpl.DistPath,
			Schema:      tpl.Schema,
			DemoData:    tpl.DemoData,
			Source:      tpl.Source,
			Visibility:  tpl.Visibility,
			Inactive:    !tpl.IsActive,
		}); err != nil {
			return fmt.Errorf("templates: seed %s: %w", tpl.Slug, err)
		}
	}
	return nil
}

func (s *service) Get(ctx context.Context, slugValue string) (*Template, error) {
	tpl, err := s.repo.GetBySlug(ctx, strings.TrimSpace(slugValue))
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, slugValue)
		}
		return nil, err
	}
	return tpl, nil
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]*Template, error) {
	var (
		records []*Template
		err     error
	)
	if opts.IncludeInactive {
		records, err = s.repo.List(ctx)
	} else {
		records, err = s.repo.ListActive(ctx)
	}
	if err != nil {
		return nil, err
	}
	if opts.IncludePrivate {
		return records, nil
	}
	out := records[:0]
	for _, tpl := range records {
		if tpl.Visibility != VisibilityPrivate {
			out = append(out, tpl)
		}
	}
	return out, nil
}

func (s *service) SetActive(ctx context.Context, slugValue string, active bool) (*Template, error) {
	tpl, err := s.Get(ctx, slugValue)
	if err != nil {
		return nil, err
	}
	if tpl.IsActive == active {
		return tpl, nil
	}
	tpl.IsActive = active
	tpl.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, tpl)
}

func (s *service) Delete(ctx context.Context, slugValue string) error {
	tpl, err := s.Get(ctx, slugValue)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, tpl.ID)
}

func (s *service) CountActive(ctx context.Context) (int, error) {
	records, err := s.repo.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// FetchSource returns the markup of the template with the given slug. Unknown
// templates and templates without source report ErrTemplateSourceNotFound.
func (s *service) FetchSource(ctx context.Context, templateID string) (string, error) {
	tpl, err := s.Get(ctx, templateID)
	if err != nil {
		if errors.Is(err, ErrTemplateNotFound) {
			return "", fmt.Errorf("%w: %s", interfaces.ErrTemplateSourceNotFound, templateID)
		}
		return "", err
	}
	if strings.TrimSpace(tpl.Source) == "" {
		return "", fmt.Errorf("%w: %s", interfaces.ErrTemplateSourceNotFound, templateID)
	}
	return tpl.Source, nil
}

func normalizeSlug(raw, name string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		candidate = name
	}
	normalized, err := slug.Normalize(candidate)
	if err != nil || normalized == "" {
		return "", fmt.Errorf("%w: %q", ErrTemplateSlugInvalid, candidate)
	}
	return normalized, nil
}

func isNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
