package editor

import (
	"context"
	"strings"

	"github.com/folioforge/go-folio/internal/contentdata"
	"github.com/folioforge/go-folio/internal/form"
	"github.com/folioforge/go-folio/internal/polish"
	"github.com/folioforge/go-folio/pkg/interfaces"
)

// Suggestion is a polished rewrite waiting for the user to accept or reject.
type Suggestion struct {
	Path     form.Path
	Original string
	Polished string
	Tone     interfaces.PolishTone
}

// Polish asks the polisher for a rewrite of the text at p. Empty fields get a
// warning on the tracker instead of a call. A failed call leaves the content
// untouched.
func (e *Editor) Polish(ctx context.Context, p form.Path, tone interfaces.PolishTone) (*Suggestion, error) {
	if e.polisher == nil {
		return nil, ErrPolisherMissing
	}

	e.mu.Lock()
	if e.engine == nil {
		e.mu.Unlock()
		return nil, ErrNoTemplate
	}
	if err := e.optimizable(p); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	value, _ := e.engine.Read(e.data, p)
	versionID := e.versionID
	if tone == "" {
		tone = e.tone
	}
	e.mu.Unlock()

	text, _ := value.(string)
	if strings.TrimSpace(text) == "" {
		e.tracker.Warn(p)
		return nil, ErrEmptyField
	}
	if !e.tracker.Begin(p) {
		return nil, ErrPolishInFlight
	}
	defer e.tracker.Done(p)

	polished, err := e.polisher.Polish(ctx, text, polish.ContextFor(p), tone)
	if err != nil {
		e.logger.Warn("editor.polish.failed", "path", p.String(), "error", err)
		return nil, err
	}

	suggestion := &Suggestion{Path: p, Original: text, Polished: polished, Tone: tone}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.versionID != versionID {
		return nil, ErrSuggestionNotPending
	}
	e.suggestions[p.String()] = suggestion
	return suggestion, nil
}

// optimizable must be called with e.mu held.
func (e *Editor) optimizable(p form.Path) error {
	field, ok := e.engine.Schema().Field(p.Field)
	if p.IsItem() && ok {
		field, ok = field.Item(p.Sub)
	}
	if !ok {
		return ErrUnknownField
	}
	if !field.AIOptimizable {
		return ErrPolishNotAllowed
	}
	return nil
}

// Suggestion returns the pending suggestion for p.
func (e *Editor) Suggestion(p form.Path) (*Suggestion, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.suggestions[p.String()]
	if !ok {
		return nil, false
	}
	copied := *s
	return &copied, true
}

// Accept writes the pending suggestion for p into the content.
func (e *Editor) Accept(p form.Path) error {
	e.mu.Lock()
	s, ok := e.suggestions[p.String()]
	delete(e.suggestions, p.String())
	e.mu.Unlock()
	if !ok {
		return ErrSuggestionNotPending
	}
	return e.Write(p, s.Polished)
}

// Reject drops the pending suggestion for p.
func (e *Editor) Reject(p form.Path) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.suggestions[p.String()]; !ok {
		return ErrSuggestionNotPending
	}
	delete(e.suggestions, p.String())
	return nil
}

// ImportResume fills schema fields from a profile extracted out of resume.
// Keys the template does not declare are dropped.
func (e *Editor) ImportResume(ctx context.Context, resume string) (contentdata.Data, error) {
	if e.extractor == nil {
		return nil, ErrExtractorMissing
	}
	if strings.TrimSpace(resume) == "" {
		return nil, ErrEmptyField
	}
	profile, err := e.extractor.ExtractProfile(ctx, resume)
	if err != nil {
		e.logger.Warn("editor.import.failed", "error", err)
		return nil, err
	}

	imported := contentdata.Data{}
	err = e.mutate(func(engine *form.Engine, data contentdata.Data) (contentdata.Data, error) {
		next := data.Clone()
		for key, value := range profile {
			if _, known := engine.Schema().Field(key); !known {
				continue
			}
			next[key] = contentdata.CloneValue(value)
			imported[key] = contentdata.CloneValue(value)
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("editor.import.completed", "fields", len(imported))
	return imported, nil
}
