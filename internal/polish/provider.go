package polish

import (
	"context"
	"strings"

	"github.com/folioforge/go-folio/internal/contentdata"
	"github.com/folioforge/go-folio/pkg/interfaces"
)

const (
	ProviderMock   = "mock"
	ProviderGemini = "gemini"
)

// Service polishes copy and extracts starter profiles.
type Service interface {
	interfaces.Polisher
	ExtractProfile(ctx context.Context, resume string) (contentdata.Data, error)
}

// Config selects the polish backend.
type Config struct {
	Provider string
	APIKey   string
	Model    string
}

// New returns the configured backend. Gemini without an API key falls back
// to the mock.
func New(ctx context.Context, cfg Config, logger interfaces.Logger) (Service, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderGemini:
		if strings.TrimSpace(cfg.APIKey) == "" {
			if logger != nil {
				logger.Warn("polish.gemini.missing_api_key", "fallback", ProviderMock)
			}
			return NewMock(), nil
		}
		return NewGemini(ctx, cfg.APIKey, WithModel(cfg.Model), WithLogger(logger))
	default:
		return NewMock(), nil
	}
}
