// Package templates is the catalog of portfolio templates: metadata, editable
// schema, demo content and the markup source the preview compiles.
package templates

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/folioforge/go-folio/internal/contentdata"
	"github.com/folioforge/go-folio/internal/schema"
)

// Style is the visual family a template belongs to.
type Style string

const (
	StyleMinimal   Style = "minimal"
	StyleCreative  Style = "creative"
	StyleCorporate Style = "corporate"
)

// Visibility controls whether end users can pick a template.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// EngineHandlebars is the only engine the preview compiler understands.
const EngineHandlebars = "handlebars"

// Template is a catalog entry. Slug is the public identifier stored on
// portfolio versions; ID is derived from it.
type Template struct {
	bun.BaseModel `bun:"table:templates,alias:tpl"`

	ID          uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	Slug        string         `bun:"slug,notnull,unique" json:"slug"`
	Name        string         `bun:"name,notnull" json:"name"`
	Description string         `bun:"description" json:"description,omitempty"`
	Thumbnail   string         `bun:"thumbnail" json:"thumbnail,omitempty"`
	Tags        []string       `bun:"tags,type:jsonb" json:"tags,omitempty"`
	Style       Style          `bun:"style" json:"style,omitempty"`
	Engine      string         `bun:"engine,notnull" json:"engine"`
	RepoURL     string         `bun:"repo_url" json:"repo_url,omitempty"`
	DistPath    string         `bun:"dist_path" json:"dist_path,omitempty"`
	Schema      schema.Schema  `bun:"schema,type:jsonb" json:"schema"`
	DemoData    map[string]any `bun:"demo_data,type:jsonb" json:"demo_data,omitempty"`
	Source      string         `bun:"source" json:"-"`
	IsActive    bool           `bun:"is_active,notnull,default:true" json:"is_active"`
	Visibility  Visibility     `bun:"visibility" json:"visibility,omitempty"`
	CreatedAt   time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Demo returns a deep copy of the demo content.
func (t *Template) Demo() contentdata.Data {
	if t == nil {
		return contentdata.Data{}
	}
	return contentdata.FromMap(t.DemoData)
}

// Selectable reports whether end users may pick the template.
func (t *Template) Selectable() bool {
	return t != nil && t.IsActive && t.Visibility != VisibilityPrivate
}

func cloneTemplate(src *Template) *Template {
	if src == nil {
		return nil
	}
	out := *src
	if src.Tags != nil {
		out.Tags = append([]string(nil), src.Tags...)
	}
	if src.DemoData != nil {
		out.DemoData = src.Demo().Map()
	}
	out.Schema = cloneSchema(src.Schema)
	return &out
}

func cloneSchema(src schema.Schema) schema.Schema {
	if src.Sections == nil {
		return schema.Schema{}
	}
	sections := make([]schema.Section, len(src.Sections))
	for i, section := range src.Sections {
		sections[i] = section
		sections[i].Fields = cloneFields(section.Fields)
	}
	return schema.Schema{Sections: sections}
}

func cloneFields(src []schema.Field) []schema.Field {
	if src == nil {
		return nil
	}
	out := make([]schema.Field, len(src))
	for i, field := range src {
		out[i] = field
		out[i].Default = contentdata.CloneValue(field.Default)
		if field.Options != nil {
			out[i].Options = append([]schema.Option(nil), field.Options...)
		}
		out[i].Items = cloneFields(field.Items)
	}
	return out
}
