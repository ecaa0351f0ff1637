// Package form reads and edits portfolio content through a template schema.
// Every edit returns a new content map and leaves its input untouched.
package form

import (
	"github.com/folioforge/go-folio/internal/contentdata"
	"github.com/folioforge/go-folio/internal/schema"
)

// Engine interprets one schema against content data.
type Engine struct {
	schema schema.Schema
}

// New returns an engine bound to s.
func New(s schema.Schema) *Engine {
	return &Engine{schema: s}
}

// Schema returns the schema the engine was built with.
func (e *Engine) Schema() schema.Schema {
	return e.schema
}

// Read returns the value stored at p. The boolean is false when the path
// names a field the schema does not declare, or an element that does not
// exist. Unset select fields read as their first option. Unset repeatable
// fields read as an empty list. Returned maps and slices are copies.
func (e *Engine) Read(data contentdata.Data, p Path) (any, bool) {
	field, ok := e.schema.Field(p.Field)
	if !ok {
		return nil, false
	}

	if !p.IsItem() {
		value := data[p.Field]
		if field.IsRepeatable() {
			items, ok := contentdata.AsSlice(value)
			if !ok {
				return []any{}, true
			}
			return contentdata.CloneValue(items), true
		}
		return readScalar(field, value), true
	}

	if !field.IsRepeatable() {
		return nil, false
	}
	sub, ok := field.Item(p.Sub)
	if !ok {
		return nil, false
	}
	items, _ := contentdata.AsSlice(data[p.Field])
	if p.Index < 0 || p.Index >= len(items) {
		return nil, false
	}
	record, _ := contentdata.AsMap(items[p.Index])
	return readScalar(sub, record[p.Sub]), true
}

func readScalar(field schema.Field, value any) any {
	if field.Type == schema.FieldSelect && isUnset(value) {
		if first, ok := field.FirstOption(); ok {
			return first
		}
	}
	return contentdata.CloneValue(value)
}

func isUnset(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}

// Write stores value at p in a copy of data. Fields unknown to the schema are
// stored anyway. Writing past the end of a repeatable list pads it with empty
// records. A negative index or a missing sub-field leaves the data unchanged.
func (e *Engine) Write(data contentdata.Data, p Path, value any) contentdata.Data {
	next := data.Clone()
	if !p.IsItem() {
		next[p.Field] = contentdata.CloneValue(value)
		return next
	}
	if p.Index < 0 || p.Sub == "" {
		return next
	}

	items, _ := contentdata.AsSlice(next[p.Field])
	for len(items) <= p.Index {
		items = append(items, map[string]any{})
	}
	record, ok := contentdata.AsMap(items[p.Index])
	if !ok {
		record = map[string]any{}
	}
	record[p.Sub] = contentdata.CloneValue(value)
	items[p.Index] = record
	next[p.Field] = items
	return next
}

// NewItem builds a record for a repeatable field with every sub-field set to
// its default or an empty string.
func (e *Engine) NewItem(fieldID string) map[string]any {
	record := map[string]any{}
	field, ok := e.schema.Field(fieldID)
	if !ok {
		return record
	}
	for _, sub := range field.Items {
		if sub.Default != nil {
			record[sub.ID] = contentdata.CloneValue(sub.Default)
			continue
		}
		record[sub.ID] = ""
	}
	return record
}

// AddItem appends a fresh record to the repeatable field.
func (e *Engine) AddItem(data contentdata.Data, fieldID string) contentdata.Data {
	next := data.Clone()
	items, _ := contentdata.AsSlice(next[fieldID])
	next[fieldID] = append(items, e.NewItem(fieldID))
	return next
}

// RemoveItem deletes the record at index and shifts later records down. An
// out of range index returns an unchanged copy.
func (e *Engine) RemoveItem(data contentdata.Data, fieldID string, index int) contentdata.Data {
	next := data.Clone()
	items, _ := contentdata.AsSlice(next[fieldID])
	if index < 0 || index >= len(items) {
		return next
	}
	out := make([]any, 0, len(items)-1)
	out = append(out, items[:index]...)
	out = append(out, items[index+1:]...)
	next[fieldID] = out
	return next
}

// Reorder replaces the repeatable list with items. The caller supplies a
// permutation of the current elements; set equality is not checked.
func (e *Engine) Reorder(data contentdata.Data, fieldID string, items []any) contentdata.Data {
	next := data.Clone()
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = contentdata.CloneValue(item)
	}
	next[fieldID] = out
	return next
}

// Move relocates the element at from to position to. Out of range indices
// return an unchanged copy.
func (e *Engine) Move(data contentdata.Data, fieldID string, from, to int) contentdata.Data {
	items, _ := contentdata.AsSlice(data[fieldID])
	if from < 0 || from >= len(items) || to < 0 || to >= len(items) || from == to {
		return data.Clone()
	}
	order := make([]any, 0, len(items))
	for i, item := range items {
		if i != from {
			order = append(order, item)
		}
	}
	order = append(order[:to], append([]any{items[from]}, order[to:]...)...)
	return e.Reorder(data, fieldID, order)
}

// Defaults returns content seeded with schema defaults for every top-level
// field that declares one. Repeatable fields start as empty lists.
func (e *Engine) Defaults() contentdata.Data {
	out := contentdata.Data{}
	for _, field := range e.schema.Fields() {
		switch {
		case field.IsRepeatable():
			out[field.ID] = []any{}
		case field.Default != nil:
			out[field.ID] = contentdata.CloneValue(field.Default)
		}
	}
	return out
}
