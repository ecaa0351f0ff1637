// Package normalize flattens historical content shapes into the single flat
// context templates render against.
package normalize

import (
	"maps"

	"github.com/folioforge/go-folio/internal/contentdata"
)

// Legacy namespace keys.
const (
	KeyBasics    = "basics"
	KeyDesign    = "design"
	KeyPortfolio = "portfolio"
	KeyProjects  = "projects"
)

// Render-time defaults. They are never written back to stored content.
const (
	DefaultTypography   = "sans"
	DefaultCornerRadius = "smooth"
)

// Normalize merges the legacy basics and design objects over a shallow copy
// of raw and resolves projects, preferring raw.projects over raw.portfolio
// when both are arrays. raw is not modified.
func Normalize(raw contentdata.Data) contentdata.Data {
	out := make(contentdata.Data, len(raw))
	maps.Copy(out, raw)

	if basics, ok := contentdata.AsMap(raw[KeyBasics]); ok {
		maps.Copy(out, basics)
	}
	if design, ok := contentdata.AsMap(raw[KeyDesign]); ok {
		maps.Copy(out, design)
	}
	if items, ok := contentdata.AsSlice(raw[KeyPortfolio]); ok {
		out[KeyProjects] = items
	}
	if items, ok := contentdata.AsSlice(raw[KeyProjects]); ok {
		out[KeyProjects] = items
	}
	return out
}

// RenderContext normalizes raw and fills typography and cornerRadius when
// they are missing or falsy.
func RenderContext(raw contentdata.Data) contentdata.Data {
	ctx := Normalize(raw)
	if !contentdata.Truthy(ctx["typography"]) {
		ctx["typography"] = DefaultTypography
	}
	if !contentdata.Truthy(ctx["cornerRadius"]) {
		ctx["cornerRadius"] = DefaultCornerRadius
	}
	return ctx
}
