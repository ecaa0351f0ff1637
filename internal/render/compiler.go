// Package render compiles and executes the logic-less template dialect used
// by portfolio templates: escaped interpolation, each blocks with parent
// scope access and helper sub-expressions such as (split tags ',').
package render

import (
	"crypto/sha1"
	"encoding/hex"
	"sync"

	"github.com/folioforge/go-folio/internal/logging"
	"github.com/folioforge/go-folio/pkg/interfaces"
)

// Template is a compiled template. It is immutable and safe for concurrent
// execution.
type Template struct {
	key     string
	source  string
	nodes   []node
	helpers *Helpers
}

// Key returns the cache key derived from the template source.
func (t *Template) Key() string {
	return t.key
}

// Source returns the source the template was compiled from.
func (t *Template) Source() string {
	return t.source
}

// Execute renders the template against ctx. Missing keys render as empty
// strings and each over a non-array renders nothing. Errors only come from
// helpers and are reported as *RenderError.
func (t *Template) Execute(ctx map[string]any) (out string, err error) {
	if ctx == nil {
		ctx = map[string]any{}
	}
	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = &RenderError{Key: t.key, Cause: panicError{value: r}}
		}
	}()

	x := &executor{helpers: t.helpers}
	if err := x.run(t.nodes, &scope{value: ctx}); err != nil {
		return "", &RenderError{Key: t.key, Cause: err}
	}
	return x.out.String(), nil
}

type panicError struct {
	value any
}

func (p panicError) Error() string {
	return "panic: " + stringify(p.value)
}

// CompilerOption configures a Compiler.
type CompilerOption func(*Compiler)

// WithHelpers replaces the helper registry.
func WithHelpers(h *Helpers) CompilerOption {
	return func(c *Compiler) {
		if h != nil {
			c.helpers = h
		}
	}
}

// WithLogger sets the logger used for compile diagnostics.
func WithLogger(logger interfaces.Logger) CompilerOption {
	return func(c *Compiler) {
		c.logger = logging.Ensure(logger)
	}
}

// Compiler compiles template sources and caches the results by source hash.
type Compiler struct {
	mu      sync.Mutex
	cache   map[string]*Template
	helpers *Helpers
	logger  interfaces.Logger
	hits    int
	misses  int
}

func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{
		cache:   map[string]*Template{},
		helpers: NewHelpers(),
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Helpers exposes the registry so callers can add helpers before compiling.
func (c *Compiler) Helpers() *Helpers {
	return c.helpers
}

// Compile returns the cached template for source or parses it. Failed
// compilations are not cached.
func (c *Compiler) Compile(source string) (*Template, error) {
	key := cacheKey(source)

	c.mu.Lock()
	if cached, ok := c.cache[key]; ok && cached.source == source {
		c.hits++
		c.mu.Unlock()
		return cached, nil
	}
	c.misses++
	c.mu.Unlock()

	nodes, err := parse(source, c.helpers)
	if err != nil {
		c.logger.Debug("render.compile.failed", "template_key", key, "error", err)
		return nil, err
	}
	tmpl := &Template{key: key, source: source, nodes: nodes, helpers: c.helpers}

	c.mu.Lock()
	c.cache[key] = tmpl
	c.mu.Unlock()

	c.logger.Trace("render.compile.cached", "template_key", key)
	return tmpl, nil
}

// Render compiles source (or reuses the cached template) and executes it.
func (c *Compiler) Render(source string, ctx map[string]any) (string, error) {
	tmpl, err := c.Compile(source)
	if err != nil {
		return "", err
	}
	return tmpl.Execute(ctx)
}

// Stats reports cache size, hits and misses.
func (c *Compiler) Stats() (size, hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache), c.hits, c.misses
}

// Purge drops every cached template.
func (c *Compiler) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = map[string]*Template{}
}

func cacheKey(source string) string {
	sum := sha1.Sum([]byte(source))
	return hex.EncodeToString(sum[:])
}
