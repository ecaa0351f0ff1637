package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPath reports a field path that cannot be parsed.
var ErrInvalidPath = errors.New("form: invalid field path")

// Path addresses a top-level field or, for repeatable groups, one sub-field
// of one array element. Build paths with Top, Item or ParsePath: a literal
// with a zero Index addresses element 0.
type Path struct {
	Field string
	Index int
	Sub   string
}

// Top addresses a top-level field.
func Top(field string) Path {
	return Path{Field: field, Index: -1}
}

// Item addresses sub-field sub of element index of repeatable field.
func Item(field string, index int, sub string) Path {
	return Path{Field: field, Index: index, Sub: sub}
}

// IsItem reports whether the path targets a repeatable element. An element
// path without a sub-field is still an element path, it just names nothing
// readable or writable.
func (p Path) IsItem() bool {
	return p.Index >= 0 || p.Sub != ""
}

// String renders the path in dotted form, e.g. "projects.0.title".
func (p Path) String() string {
	if !p.IsItem() {
		return p.Field
	}
	if p.Sub == "" {
		return p.Field + "." + strconv.Itoa(p.Index)
	}
	return p.Field + "." + strconv.Itoa(p.Index) + "." + p.Sub
}

// ParsePath parses "field" or "field.index.sub".
func ParsePath(raw string) (Path, error) {
	parts := strings.Split(strings.TrimSpace(raw), ".")
	switch len(parts) {
	case 1:
		if parts[0] == "" {
			return Path{}, fmt.Errorf("%w: empty", ErrInvalidPath)
		}
		return Top(parts[0]), nil
	case 3:
		index, err := strconv.Atoi(parts[1])
		if err != nil || index < 0 {
			return Path{}, fmt.Errorf("%w: %q has a bad index", ErrInvalidPath, raw)
		}
		if parts[0] == "" || parts[2] == "" {
			return Path{}, fmt.Errorf("%w: %q", ErrInvalidPath, raw)
		}
		return Item(parts[0], index, parts[2]), nil
	default:
		return Path{}, fmt.Errorf("%w: %q", ErrInvalidPath, raw)
	}
}
