package polish

import (
	"context"
	"strings"

	"github.com/folioforge/go-folio/internal/contentdata"
	"github.com/folioforge/go-folio/pkg/interfaces"
)

// Mock polishes without a model by tagging the text with the tone. It is
// used when no API key is configured.
type Mock struct{}

func NewMock() Mock {
	return Mock{}
}

func (Mock) Polish(ctx context.Context, text string, _ interfaces.PolishContext, tone interfaces.PolishTone) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.TrimSpace(text) + " (AI Polished - " + string(ParseTone(string(tone))) + ")", nil
}

// ExtractProfile returns a fixed sample profile.
func (Mock) ExtractProfile(ctx context.Context, _ string) (contentdata.Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return contentdata.Data{
		"fullName": "Alex 'Mock' Chen",
		"title":    "Senior Full Stack Engineer",
		"email":    "alex.mock@example.com",
		"bio":      "Experienced developer with a focus on React and Node.js ecosystems. Passionate about building scalable web applications.",
		"projects": []any{
			map[string]any{
				"title":        "E-Commerce Platform",
				"description":  "Built a scalable shopping platform serving 10k users.",
				"technologies": "React, Node.js, MongoDB",
			},
			map[string]any{
				"title":        "Portfolio Generator",
				"description":  "AI-powered tool for creating personal websites.",
				"technologies": "TypeScript, Gemini API, Tailwind",
			},
		},
	}, nil
}
