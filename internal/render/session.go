package render

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/folioforge/go-folio/internal/logging"
	"github.com/folioforge/go-folio/pkg/interfaces"
)

// DefaultDebounce is the quiet period before a pending context is rendered.
const DefaultDebounce = 300 * time.Millisecond

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithDebounce overrides DefaultDebounce. Zero renders on the next flush.
func WithDebounce(d time.Duration) SessionOption {
	return func(s *Session) {
		if d >= 0 {
			s.debounce = d
		}
	}
}

// WithSessionClock overrides the clock used to stamp pending updates.
func WithSessionClock(clock func() time.Time) SessionOption {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithErrorHandler receives compile and render failures. It is called
// without the session lock held.
func WithErrorHandler(fn func(error)) SessionOption {
	return func(s *Session) {
		s.onError = fn
	}
}

// WithSessionLogger sets the logger used for failures.
func WithSessionLogger(logger interfaces.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logging.Ensure(logger)
	}
}

// Session is a live preview of one template. It recompiles only when the
// source changes, coalesces context updates inside the debounce window and
// always exposes the last successful output.
type Session struct {
	mu       sync.Mutex
	compiler *Compiler
	debounce time.Duration
	clock    func() time.Time
	logger   interfaces.Logger
	onError  func(error)

	source    string
	hasSource bool
	tmpl      *Template

	ctx        map[string]any
	pending    map[string]any
	hasPending bool
	pendingAt  time.Time

	output  string
	lastErr error
	renders int
}

func NewSession(compiler *Compiler, opts ...SessionOption) *Session {
	if compiler == nil {
		compiler = NewCompiler()
	}
	s := &Session{
		compiler: compiler,
		debounce: DefaultDebounce,
		clock:    time.Now,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetSource installs a new template source. An unchanged source is a no-op.
// On success the current context is rendered immediately. On failure the
// last good output is kept and the error is returned and reported.
func (s *Session) SetSource(source string) error {
	s.mu.Lock()
	if s.hasSource && s.source == source {
		s.mu.Unlock()
		return nil
	}
	s.source = source
	s.hasSource = true

	tmpl, err := s.compiler.Compile(source)
	if err != nil {
		s.tmpl = nil
		s.lastErr = err
		s.mu.Unlock()
		s.report("render.compile.failed", err)
		return err
	}
	s.tmpl = tmpl
	err = s.renderLocked()
	s.mu.Unlock()
	if err != nil {
		s.report("render.execute.failed", err)
	}
	return err
}

// LoadSource fetches the source of templateID and installs it. A failing
// store is treated as "no source yet": the session keeps its state and the
// error is only reported.
func (s *Session) LoadSource(ctx context.Context, store interfaces.TemplateSourceStore, templateID string) bool {
	if store == nil {
		return false
	}
	source, err := store.FetchSource(ctx, templateID)
	if err != nil {
		if !errors.Is(err, interfaces.ErrTemplateSourceNotFound) {
			s.report("render.source.fetch_failed", err)
		} else {
			s.logger.Debug("render.source.missing", "template_id", templateID)
		}
		return false
	}
	return s.SetSource(source) == nil
}

// Update queues ctx for rendering. Bursts of updates collapse into one render
// of the latest context once the debounce window passes without new updates.
func (s *Session) Update(ctx map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = ctx
	s.hasPending = true
	s.pendingAt = s.clock()
}

// Flush renders the pending context when its debounce window has elapsed at
// now. It reports whether a render happened.
func (s *Session) Flush(now time.Time) bool {
	s.mu.Lock()
	if !s.hasPending || now.Sub(s.pendingAt) < s.debounce {
		s.mu.Unlock()
		return false
	}
	s.ctx = s.pending
	s.pending = nil
	s.hasPending = false
	err := s.renderLocked()
	s.mu.Unlock()

	if err != nil {
		s.report("render.execute.failed", err)
	}
	return true
}

// RenderNow replaces the context and renders immediately, dropping any
// pending update.
func (s *Session) RenderNow(ctx map[string]any) (string, error) {
	s.mu.Lock()
	s.ctx = ctx
	s.pending = nil
	s.hasPending = false
	err := s.renderLocked()
	out := s.output
	s.mu.Unlock()

	if err != nil {
		s.report("render.execute.failed", err)
	}
	return out, err
}

// Run flushes pending updates until ctx is cancelled.
func (s *Session) Run(ctx context.Context) {
	interval := s.debounce / 2
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Flush(s.clock())
		}
	}
}

// Output returns the last successful render, or "" before the first one.
func (s *Session) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output
}

// Err returns the most recent compile or render failure, cleared by the
// next successful render.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Pending reports whether an update is waiting for the debounce window.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasPending
}

// Renders counts successful renders.
func (s *Session) Renders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renders
}

func (s *Session) renderLocked() error {
	if s.tmpl == nil {
		return nil
	}
	out, err := s.tmpl.Execute(s.ctx)
	if err != nil {
		s.lastErr = err
		return err
	}
	s.output = out
	s.lastErr = nil
	s.renders++
	return nil
}

func (s *Session) report(event string, err error) {
	s.logger.Warn(event, "error", err)
	if s.onError != nil {
		s.onError(err)
	}
}
