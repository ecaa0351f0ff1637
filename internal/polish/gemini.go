package polish

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/folioforge/go-folio/internal/contentdata"
	"github.com/folioforge/go-folio/internal/logging"
	"github.com/folioforge/go-folio/pkg/interfaces"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

var (
	ErrAPIKeyRequired = errors.New("polish: gemini api key is required")
	ErrEmptyResponse  = errors.New("polish: model returned no text")
)

// Generator is the slice of the genai client used here; *genai.Models
// satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini polishes text with Google's Gemini models.
type Gemini struct {
	models Generator
	model  string
	logger interfaces.Logger
}

type GeminiOption func(*Gemini)

func WithModel(model string) GeminiOption {
	return func(g *Gemini) {
		if model = strings.TrimSpace(model); model != "" {
			g.model = model
		}
	}
}

func WithLogger(logger interfaces.Logger) GeminiOption {
	return func(g *Gemini) {
		g.logger = logging.Ensure(logger)
	}
}

// NewGemini creates a client for the Gemini API backend.
func NewGemini(ctx context.Context, apiKey string, opts ...GeminiOption) (*Gemini, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("polish: create gemini client: %w", err)
	}
	return NewGeminiWithGenerator(client.Models, opts...), nil
}

// NewGeminiWithGenerator wraps an existing generator.
func NewGeminiWithGenerator(models Generator, opts ...GeminiOption) *Gemini {
	g := &Gemini{models: models, model: DefaultModel, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gemini) Polish(ctx context.Context, text string, pctx interfaces.PolishContext, tone interfaces.PolishTone) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(BuildPrompt(text, pctx, tone)), nil)
	if err != nil {
		g.logger.Warn("polish.gemini.failed", "context", pctx, "error", err)
		return "", fmt.Errorf("polish: generate: %w", err)
	}
	polished := Clean(resp.Text())
	if polished == "" {
		return "", ErrEmptyResponse
	}
	g.logger.Debug("polish.gemini.polished", "context", pctx, "tone", tone, "chars", len(polished))
	return polished, nil
}

// ExtractProfile asks the model for a JSON profile built from resume text.
// Technology lists are flattened to comma separated strings so templates
// can split them.
func (g *Gemini) ExtractProfile(ctx context.Context, resume string) (contentdata.Data, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(BuildProfilePrompt(resume)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		g.logger.Warn("polish.gemini.extract_failed", "error", err)
		return nil, fmt.Errorf("polish: extract: %w", err)
	}
	raw := strings.TrimSpace(resp.Text())
	if raw == "" {
		return contentdata.Data{}, nil
	}
	profile, err := contentdata.FromJSON([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("polish: extract: %w", err)
	}
	return FlattenProfile(profile), nil
}

// FlattenProfile joins array technologies of every project into a string.
func FlattenProfile(profile contentdata.Data) contentdata.Data {
	out := profile.Clone()
	projects, ok := contentdata.AsSlice(out["projects"])
	if !ok {
		return out
	}
	for _, item := range projects {
		project, ok := contentdata.AsMap(item)
		if !ok {
			continue
		}
		techs, ok := contentdata.AsSlice(project["technologies"])
		if !ok {
			continue
		}
		parts := make([]string, 0, len(techs))
		for _, tech := range techs {
			if s, ok := tech.(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		project["technologies"] = strings.Join(parts, ", ")
	}
	out["projects"] = projects
	return out
}
