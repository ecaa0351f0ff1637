package schema

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	// ErrInvalidSchema wraps structural problems reported by Validate.
	ErrInvalidSchema = errors.New("schema: invalid")
)

// Validate checks the structure of the schema: ids present and unique per
// scope, known field types, select fields with options and repeatable fields
// with a flat items list. The returned error wraps ErrInvalidSchema and
// carries a validation.Errors keyed by location.
func (s Schema) Validate() error {
	errs := validation.Errors{}

	sectionIDs := map[string]bool{}
	fieldIDs := map[string]bool{}
	for i, section := range s.Sections {
		loc := fmt.Sprintf("sections[%d]", i)
		id := strings.TrimSpace(section.ID)
		switch {
		case id == "":
			errs[loc+".id"] = validation.NewError("folio.schema.section_id_required", "section id is required")
		case sectionIDs[id]:
			errs[loc+".id"] = validation.NewError("folio.schema.section_id_duplicate", fmt.Sprintf("duplicate section id %q", id))
		}
		sectionIDs[id] = true

		for j, field := range section.Fields {
			validateField(errs, fmt.Sprintf("%s.fields[%d]", loc, j), field, fieldIDs, false)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSchema, errs)
	}
	return nil
}

func validateField(errs validation.Errors, loc string, field Field, seen map[string]bool, nested bool) {
	id := strings.TrimSpace(field.ID)
	switch {
	case id == "":
		errs[loc+".id"] = validation.NewError("folio.schema.field_id_required", "field id is required")
	case seen[id]:
		errs[loc+".id"] = validation.NewError("folio.schema.field_id_duplicate", fmt.Sprintf("duplicate field id %q", id))
	}
	seen[id] = true

	if !slices.Contains(FieldTypes, field.Type) {
		errs[loc+".type"] = validation.NewError("folio.schema.field_type_unknown", fmt.Sprintf("unknown field type %q", field.Type))
		return
	}

	if field.Type == FieldSelect && len(field.Options) == 0 {
		errs[loc+".options"] = validation.NewError("folio.schema.select_options_required", "select fields need at least one option")
	}

	if field.Type != FieldRepeatable {
		if len(field.Items) > 0 {
			errs[loc+".items"] = validation.NewError("folio.schema.items_not_allowed", "only repeatable fields may declare items")
		}
		return
	}

	if nested {
		errs[loc+".type"] = validation.NewError("folio.schema.nested_repeatable", "repeatable fields cannot nest")
		return
	}
	if len(field.Items) == 0 {
		errs[loc+".items"] = validation.NewError("folio.schema.items_required", "repeatable fields need at least one item field")
		return
	}
	itemIDs := map[string]bool{}
	for k, item := range field.Items {
		validateField(errs, fmt.Sprintf("%s.items[%d]", loc, k), item, itemIDs, true)
	}
}
