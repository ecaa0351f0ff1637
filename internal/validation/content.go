// Package validation checks portfolio content against the JSON Schema
// projection of a template schema. Results are hints for the editor; saving
// never depends on them.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/folioforge/go-folio/internal/contentdata"
	"github.com/folioforge/go-folio/internal/schema"
)

var (
	ErrSchemaInvalid  = errors.New("validation: schema invalid")
	ErrContentInvalid = errors.New("validation: content invalid")
)

// Issue is a single validation failure at a JSON pointer location.
type Issue struct {
	Location string
	Message  string
}

// ContentValidationError lists every issue found in a payload.
type ContentValidationError struct {
	Issues []Issue
	Cause  error
}

func (e *ContentValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrContentInvalid.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		loc := issue.Location
		if !strings.HasPrefix(loc, "#") {
			loc = "#" + loc
		}
		if issue.Message == "" {
			parts = append(parts, loc)
			continue
		}
		parts = append(parts, loc+": "+issue.Message)
	}
	return strings.Join(parts, "; ")
}

func (e *ContentValidationError) Unwrap() error {
	return ErrContentInvalid
}

// Issues extracts validation issues from err.
func Issues(err error) []Issue {
	if err == nil {
		return nil
	}
	var contentErr *ContentValidationError
	if errors.As(err, &contentErr) && contentErr != nil {
		return contentErr.Issues
	}
	var schemaErr *jsonschema.ValidationError
	if errors.As(err, &schemaErr) && schemaErr != nil {
		return collectIssues(schemaErr)
	}
	return []Issue{{Message: err.Error()}}
}

// Validator compiles a template schema once and validates content against it.
type Validator struct {
	compiled *jsonschema.Schema
}

// NewValidator projects s into JSON Schema and compiles it. A schema without
// fields yields a validator that accepts everything.
func NewValidator(s schema.Schema) (*Validator, error) {
	projection := Project(s)
	if projection == nil {
		return &Validator{}, nil
	}
	compiled, err := compile(projection)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return &Validator{compiled: compiled}, nil
}

// Validate returns a *ContentValidationError when data does not satisfy the
// schema. Keys unknown to the schema are allowed.
func (v *Validator) Validate(data map[string]any) error {
	if v == nil || v.compiled == nil {
		return nil
	}
	payload, err := toJSONValue(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrContentInvalid, err)
	}
	if err := v.compiled.Validate(payload); err != nil {
		return &ContentValidationError{Issues: Issues(err), Cause: err}
	}
	return nil
}

// ValidateContent is a convenience wrapper compiling s on every call.
func ValidateContent(s schema.Schema, data map[string]any) error {
	v, err := NewValidator(s)
	if err != nil {
		return err
	}
	return v.Validate(data)
}

// Project converts a template schema into a JSON Schema document. Required
// string fields must be non-empty. Select fields are constrained to their
// option values.
func Project(s schema.Schema) map[string]any {
	fields := s.Fields()
	if len(fields) == 0 {
		return nil
	}
	return objectSchema(fields)
}

func objectSchema(fields []schema.Field) map[string]any {
	properties := make(map[string]any, len(fields))
	required := make([]any, 0)
	for _, field := range fields {
		if strings.TrimSpace(field.ID) == "" {
			continue
		}
		properties[field.ID] = fieldSchema(field)
		if field.Required {
			required = append(required, field.ID)
		}
	}
	out := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": true,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

func fieldSchema(field schema.Field) map[string]any {
	switch field.Type {
	case schema.FieldRepeatable:
		return map[string]any{
			"type":  "array",
			"items": objectSchema(field.Items),
		}
	case schema.FieldSelect:
		values := make([]any, 0, len(field.Options))
		for _, opt := range field.Options {
			values = append(values, opt.Value)
		}
		out := map[string]any{"type": "string"}
		if len(values) > 0 {
			out["enum"] = values
		}
		return out
	default:
		out := map[string]any{"type": "string"}
		if field.Required {
			out["minLength"] = 1
		}
		return out
	}
}

func compile(doc map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

// toJSONValue round-trips data through encoding/json so integer and typed
// slice values reach the validator in their JSON form.
func toJSONValue(data map[string]any) (any, error) {
	if data == nil {
		return map[string]any{}, nil
	}
	encoded, err := json.Marshal(contentdata.CoerceYAML(data))
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func collectIssues(err *jsonschema.ValidationError) []Issue {
	var issues []Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
