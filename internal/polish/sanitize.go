package polish

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Clean strips markup from model output and unwraps the quotes the prompt
// puts around the input. The result is plain text; the template escapes it
// on render.
func Clean(raw string) string {
	text := html.UnescapeString(strict.Sanitize(raw))
	text = strings.TrimSpace(text)
	if len(text) >= 2 {
		first, last := text[0], text[len(text)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			text = strings.TrimSpace(text[1 : len(text)-1])
		}
	}
	return text
}
