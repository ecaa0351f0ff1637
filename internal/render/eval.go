package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/folioforge/go-folio/internal/contentdata"
)

// scope is one level of the context stack. The root scope holds the render
// context and every each iteration pushes the current element.
type scope struct {
	value  any
	data   map[string]any
	parent *scope
}

type executor struct {
	helpers *Helpers
	out     strings.Builder
}

func (x *executor) run(nodes []node, s *scope) error {
	for _, n := range nodes {
		switch typed := n.(type) {
		case textNode:
			x.out.WriteString(typed.text)
		case outputNode:
			value, err := x.eval(typed.value, s)
			if err != nil {
				return err
			}
			text := stringify(value)
			if !typed.raw {
				text = escapeHTML(text)
			}
			x.out.WriteString(text)
		case eachNode:
			if err := x.each(typed, s); err != nil {
				return err
			}
		}
	}
	return nil
}

func (x *executor) each(n eachNode, s *scope) error {
	source, err := x.eval(n.source, s)
	if err != nil {
		return err
	}
	items, ok := contentdata.AsSlice(source)
	if !ok {
		return nil
	}
	last := len(items) - 1
	for i, item := range items {
		child := &scope{
			value:  item,
			parent: s,
			data: map[string]any{
				"index": i,
				"first": i == 0,
				"last":  i == last,
			},
		}
		if err := x.run(n.body, child); err != nil {
			return err
		}
	}
	return nil
}

func (x *executor) eval(e expr, s *scope) (any, error) {
	switch typed := e.(type) {
	case literalExpr:
		return typed.value, nil
	case pathExpr:
		return resolve(typed, s), nil
	case callExpr:
		fn, ok := x.helpers.Lookup(typed.helper)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownHelper, typed.helper)
		}
		args := make([]any, len(typed.args))
		for i, arg := range typed.args {
			value, err := x.eval(arg, s)
			if err != nil {
				return nil, err
			}
			args[i] = value
		}
		result, err := fn(args...)
		if err != nil {
			return nil, fmt.Errorf("helper %s: %w", typed.helper, err)
		}
		return result, nil
	default:
		return nil, nil
	}
}

// resolve looks a path up. Plain names are tried against the current scope
// and then each enclosing scope. ../ and this pin the lookup to one scope.
func resolve(p pathExpr, s *scope) any {
	target := s
	for i := 0; i < p.parents && target != nil; i++ {
		target = target.parent
	}
	if target == nil {
		return nil
	}

	if p.data != "" {
		return target.data[p.data]
	}

	if p.explicit || p.parents > 0 {
		return walk(target.value, p.segments)
	}

	for candidate := target; candidate != nil; candidate = candidate.parent {
		head, ok := lookup(candidate.value, p.segments[0])
		if ok {
			return walk(head, p.segments[1:])
		}
	}
	return nil
}

func walk(value any, segments []string) any {
	for _, seg := range segments {
		next, ok := lookup(value, seg)
		if !ok {
			return nil
		}
		value = next
	}
	return value
}

func lookup(value any, key string) (any, bool) {
	if m, ok := contentdata.AsMap(value); ok {
		v, found := m[key]
		return v, found
	}
	if items, ok := contentdata.AsSlice(value); ok {
		if key == "length" {
			return len(items), true
		}
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(items) {
			return nil, false
		}
		return items[i], true
	}
	return nil, false
}

// stringify formats a value the way it appears in rendered output. Records
// render as empty and arrays join their elements with commas.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case fmt.Stringer:
		return v.String()
	}
	if items, ok := contentdata.AsSlice(value); ok {
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = stringify(item)
		}
		return strings.Join(parts, ",")
	}
	if _, ok := contentdata.AsMap(value); ok {
		return ""
	}
	return fmt.Sprint(value)
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"`", "&#x60;",
	"=", "&#x3D;",
)

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
