package schema

import (
	"errors"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func portfolioSchema() Schema {
	return Schema{Sections: []Section{
		{ID: "basics", Label: "Basics", Fields: []Field{
			{ID: "fullName", Label: "Full name", Type: FieldText, Required: true},
			{ID: "bio", Label: "Bio", Type: FieldTextarea, AIOptimizable: true},
		}},
		{ID: "design", Label: "Design", Fields: []Field{
			{ID: "themeColor", Label: "Theme", Type: FieldColor, Default: "#6366f1"},
			{ID: "typography", Label: "Typography", Type: FieldSelect, Options: []Option{
				{Label: "Sans", Value: "sans"},
				{Label: "Serif", Value: "serif"},
			}},
		}},
		{ID: "work", Label: "Work", Fields: []Field{
			{ID: "projects", Label: "Projects", Type: FieldRepeatable, Items: []Field{
				{ID: "title", Label: "Title", Type: FieldText},
				{ID: "technologies", Label: "Tech", Type: FieldText, Default: "Go"},
			}},
		}},
	}}
}

func TestSchemaLookups(t *testing.T) {
	s := portfolioSchema()

	field, ok := s.Field("projects")
	if !ok || !field.IsRepeatable() {
		t.Fatalf("expected repeatable projects field, got %+v %v", field, ok)
	}
	item, ok := field.Item("technologies")
	if !ok || item.Default != "Go" {
		t.Fatalf("unexpected item %+v", item)
	}
	if _, ok := s.Field("missing"); ok {
		t.Fatalf("expected missing field lookup to fail")
	}
	if got := len(s.Fields()); got != 5 {
		t.Fatalf("expected 5 fields, got %d", got)
	}
	if ai := s.AIFields(); len(ai) != 1 || ai[0] != "bio" {
		t.Fatalf("unexpected ai fields %v", ai)
	}
	sel, _ := s.Field("typography")
	if v, ok := sel.FirstOption(); !ok || v != "sans" {
		t.Fatalf("FirstOption() = %q, %v", v, ok)
	}
}

func TestValidateAcceptsWellFormedSchema(t *testing.T) {
	if err := portfolioSchema().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateReportsStructuralProblems(t *testing.T) {
	s := Schema{Sections: []Section{
		{ID: "a", Fields: []Field{
			{ID: "x", Type: FieldText},
			{ID: "x", Type: FieldText},
			{ID: "pick", Type: FieldSelect},
			{ID: "flat", Type: FieldText, Items: []Field{{ID: "y", Type: FieldText}}},
			{ID: "weird", Type: "slider"},
			{ID: "group", Type: FieldRepeatable, Items: []Field{
				{ID: "inner", Type: FieldRepeatable, Items: []Field{{ID: "z", Type: FieldText}}},
			}},
		}},
		{ID: "a"},
	}}

	err := s.Validate()
	if !errors.Is(err, ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		t.Fatalf("expected validation.Errors, got %T", err)
	}
	for _, key := range []string{
		"sections[0].fields[1].id",
		"sections[0].fields[2].options",
		"sections[0].fields[3].items",
		"sections[0].fields[4].type",
		"sections[0].fields[5].items[0].type",
		"sections[1].id",
	} {
		if _, ok := errs[key]; !ok {
			t.Fatalf("expected error at %s, got %v", key, errs)
		}
	}
}

func TestFromMapAndToMap(t *testing.T) {
	raw := map[string]any{
		"sections": []any{
			map[any]any{
				"id":    "basics",
				"label": "Basics",
				"fields": []any{
					map[any]any{"id": "fullName", "label": "Name", "type": "text", "required": true},
				},
			},
		},
	}
	s, err := FromMap(raw)
	if err != nil {
		t.Fatalf("FromMap() error = %v", err)
	}
	field, ok := s.Field("fullName")
	if !ok || !field.Required || field.Type != FieldText {
		t.Fatalf("unexpected field %+v", field)
	}

	out, err := s.ToMap()
	if err != nil {
		t.Fatalf("ToMap() error = %v", err)
	}
	if _, ok := out["sections"].([]any); !ok {
		t.Fatalf("expected sections array, got %T", out["sections"])
	}
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	if _, err := Parse([]byte("{")); err == nil {
		t.Fatalf("expected error")
	}
	s, err := Parse(nil)
	if err != nil || !s.IsZero() {
		t.Fatalf("Parse(nil) = %+v, %v", s, err)
	}
}
