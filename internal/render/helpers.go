package render

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/folioforge/go-folio/internal/contentdata"
)

// HelperFunc receives evaluated arguments and returns a value. Returning an
// error aborts the render with a *RenderError.
type HelperFunc func(args ...any) (any, error)

// Helpers is a concurrency-safe helper registry.
type Helpers struct {
	mu    sync.RWMutex
	funcs map[string]HelperFunc
}

// NewHelpers returns a registry holding the built-in helpers.
func NewHelpers() *Helpers {
	return &Helpers{funcs: map[string]HelperFunc{
		"split": splitHelper,
	}}
}

// Register adds a helper. Names must be unique.
func (h *Helpers) Register(name string, fn HelperFunc) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return fmt.Errorf("render: helper name and func are required")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.funcs[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateHelper, name)
	}
	h.funcs[name] = fn
	return nil
}

// Lookup returns the helper registered under name.
func (h *Helpers) Lookup(name string) (HelperFunc, bool) {
	if h == nil {
		return nil, false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	fn, ok := h.funcs[name]
	return fn, ok
}

// Names lists the registered helper names.
func (h *Helpers) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Sorted(maps.Keys(h.funcs))
}

// splitHelper splits its first argument on the separator (default ","),
// trims every part and drops empty ones. A falsy input yields no parts.
func splitHelper(args ...any) (any, error) {
	if len(args) == 0 || !contentdata.Truthy(args[0]) {
		return []any{}, nil
	}
	sep := ","
	if len(args) > 1 {
		if s, ok := args[1].(string); ok && s != "" {
			sep = s
		}
	}
	parts := strings.Split(stringify(args[0]), sep)
	out := make([]any, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out, nil
}
