package templates

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/folioforge/go-folio/internal/contentdata"
	"github.com/folioforge/go-folio/internal/schema"
)

// SourceExt is the file extension of template documents.
const SourceExt = ".hbs"

// templateEnvelope is the YAML front matter of a template document.
type templateEnvelope struct {
	Slug        string         `yaml:"slug"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Thumbnail   string         `yaml:"thumbnail"`
	Tags        []string       `yaml:"tags"`
	Style       string         `yaml:"style"`
	Engine      string         `yaml:"engine"`
	RepoURL     string         `yaml:"repo_url"`
	DistPath    string         `yaml:"dist_path"`
	Visibility  string         `yaml:"visibility"`
	Active      *bool          `yaml:"active"`
	Schema      map[string]any `yaml:"schema"`
	Demo        map[string]any `yaml:"demo"`
}

// ParseDocument reads a template document: YAML front matter describing the
// template followed by its markup source. fallbackSlug is used when the
// front matter does not name one.
func ParseDocument(raw []byte, fallbackSlug string) (*Template, error) {
	var env templateEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(raw), &env)
	if err != nil {
		return nil, fmt.Errorf("templates: parse front matter: %w", err)
	}

	tplSchema, err := schema.FromMap(env.Schema)
	if err != nil {
		return nil, fmt.Errorf("templates: %s: %w", fallbackSlug, err)
	}

	slug := strings.TrimSpace(env.Slug)
	if slug == "" {
		slug = fallbackSlug
	}
	active := true
	if env.Active != nil {
		active = *env.Active
	}

	tpl := &Template{
		Slug:        slug,
		Name:        strings.TrimSpace(env.Name),
		Description: strings.TrimSpace(env.Description),
		Thumbnail:   strings.TrimSpace(env.Thumbnail),
		Tags:        env.Tags,
		Style:       Style(strings.ToLower(strings.TrimSpace(env.Style))),
		Engine:      strings.TrimSpace(env.Engine),
		RepoURL:     strings.TrimSpace(env.RepoURL),
		DistPath:    strings.TrimSpace(env.DistPath),
		Visibility:  Visibility(strings.ToLower(strings.TrimSpace(env.Visibility))),
		IsActive:    active,
		Schema:      tplSchema,
		Source:      string(body),
	}
	if env.Demo != nil {
		demo, _ := contentdata.CoerceYAML(env.Demo).(map[string]any)
		tpl.DemoData = demo
	}
	if tpl.Engine == "" {
		tpl.Engine = EngineHandlebars
	}
	if tpl.Visibility == "" {
		tpl.Visibility = VisibilityPublic
	}
	if tpl.Name == "" {
		tpl.Name = slug
	}
	return tpl, nil
}

// LoadFS parses every *.hbs file at the root of fsys, ordered by file name.
func LoadFS(fsys fs.FS) ([]*Template, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("templates: read dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != SourceExt {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	out := make([]*Template, 0, len(names))
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("templates: read %s: %w", name, err)
		}
		tpl, err := ParseDocument(raw, strings.TrimSuffix(name, SourceExt))
		if err != nil {
			return nil, fmt.Errorf("templates: %s: %w", name, err)
		}
		out = append(out, tpl)
	}
	return out, nil
}
