// Package schema describes the editable surface of a portfolio template:
// ordered sections of typed fields, with repeatable groups holding their own
// sub-field list.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/folioforge/go-folio/internal/contentdata"
)

// FieldType enumerates the supported editor controls.
type FieldType string

const (
	FieldText       FieldType = "text"
	FieldTextarea   FieldType = "textarea"
	FieldSelect     FieldType = "select"
	FieldColor      FieldType = "color"
	FieldImage      FieldType = "image"
	FieldRepeatable FieldType = "repeatable"
)

// FieldTypes lists every known FieldType.
var FieldTypes = []FieldType{FieldText, FieldTextarea, FieldSelect, FieldColor, FieldImage, FieldRepeatable}

// Option is a single choice of a select field.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Field describes one editable value. Items is only meaningful for
// repeatable fields and describes the shape of each array element.
type Field struct {
	ID            string    `json:"id"`
	Label         string    `json:"label"`
	Type          FieldType `json:"type"`
	Required      bool      `json:"required,omitempty"`
	AIOptimizable bool      `json:"aiOptimizable,omitempty"`
	Default       any       `json:"default,omitempty"`
	Placeholder   string    `json:"placeholder,omitempty"`
	Options       []Option  `json:"options,omitempty"`
	Items         []Field   `json:"items,omitempty"`
}

// Section groups fields for display.
type Section struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Fields []Field `json:"fields"`
}

// Schema is the ordered list of sections of a template.
type Schema struct {
	Sections []Section `json:"sections"`
}

// IsRepeatable reports whether the field holds an array of records.
func (f Field) IsRepeatable() bool {
	return f.Type == FieldRepeatable
}

// Item returns the sub-field with the given id.
func (f Field) Item(id string) (Field, bool) {
	for _, item := range f.Items {
		if item.ID == id {
			return item, true
		}
	}
	return Field{}, false
}

// FirstOption returns the value of the first option of a select field.
func (f Field) FirstOption() (string, bool) {
	if len(f.Options) == 0 {
		return "", false
	}
	return f.Options[0].Value, true
}

// Field looks up a top-level field across all sections. The first match wins.
func (s Schema) Field(id string) (Field, bool) {
	for _, section := range s.Sections {
		for _, field := range section.Fields {
			if field.ID == id {
				return field, true
			}
		}
	}
	return Field{}, false
}

// Section returns the section with the given id.
func (s Schema) Section(id string) (Section, bool) {
	for _, section := range s.Sections {
		if section.ID == id {
			return section, true
		}
	}
	return Section{}, false
}

// Fields flattens all sections into a single ordered list.
func (s Schema) Fields() []Field {
	var out []Field
	for _, section := range s.Sections {
		out = append(out, section.Fields...)
	}
	return out
}

// AIFields returns the ids of top-level fields flagged aiOptimizable.
func (s Schema) AIFields() []string {
	var out []string
	for _, field := range s.Fields() {
		if field.AIOptimizable {
			out = append(out, field.ID)
		}
	}
	return out
}

// IsZero reports whether the schema has no sections.
func (s Schema) IsZero() bool {
	return len(s.Sections) == 0
}

// Parse decodes a JSON encoded schema.
func Parse(raw []byte) (Schema, error) {
	var s Schema
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return Schema{}, fmt.Errorf("schema: decode: %w", err)
	}
	return s, nil
}

// FromMap decodes a schema held as a generic map, e.g. from YAML front matter
// or a JSON column.
func FromMap(raw map[string]any) (Schema, error) {
	if len(raw) == 0 {
		return Schema{}, nil
	}
	encoded, err := json.Marshal(contentdata.CoerceYAML(raw))
	if err != nil {
		return Schema{}, fmt.Errorf("schema: encode: %w", err)
	}
	return Parse(encoded)
}

// ToMap encodes the schema into a generic map.
func (s Schema) ToMap() (map[string]any, error) {
	encoded, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("schema: encode: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, fmt.Errorf("schema: decode: %w", err)
	}
	return out, nil
}
