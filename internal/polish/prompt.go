// Package polish rewrites portfolio copy with a language model and turns
// resumes into starter content.
package polish

import (
	"fmt"
	"strings"

	"github.com/folioforge/go-folio/internal/form"
	"github.com/folioforge/go-folio/pkg/interfaces"
)

var toneInstructions = map[interfaces.PolishTone]string{
	interfaces.PolishToneProfessional: "formal, authoritative, and polished",
	interfaces.PolishToneConcise:      "brief, direct, and to-the-point",
	interfaces.PolishToneCreative:     "engaging, vibrant, and unique",
}

// ParseTone maps a configured tone name, defaulting to professional.
func ParseTone(raw string) interfaces.PolishTone {
	tone := interfaces.PolishTone(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := toneInstructions[tone]; ok {
		return tone
	}
	return interfaces.PolishToneProfessional
}

// ContextFor picks the polish context for a form path. Repeatable item
// fields are project copy unless they are titles.
func ContextFor(path form.Path) interfaces.PolishContext {
	if path.IsItem() {
		if path.Sub == "title" {
			return interfaces.PolishContextTitle
		}
		return interfaces.PolishContextProject
	}
	switch path.Field {
	case "bio":
		return interfaces.PolishContextBio
	case "title":
		return interfaces.PolishContextTitle
	default:
		return interfaces.PolishContextProject
	}
}

// BuildPrompt renders the instruction sent to the model.
func BuildPrompt(text string, pctx interfaces.PolishContext, tone interfaces.PolishTone) string {
	style := toneInstructions[ParseTone(string(tone))]
	switch pctx {
	case interfaces.PolishContextBio:
		return fmt.Sprintf("Refine the following professional biography to be more %s. Keep it suitable for a portfolio website.\n\n%q", style, text)
	case interfaces.PolishContextTitle:
		return fmt.Sprintf("Suggest a job title based on this input that sounds %s:\n\n%q", style, text)
	default:
		return fmt.Sprintf("Rewrite the following project description to highlight technical achievements. Make it %s.\n\n%q", style, text)
	}
}

const profilePrompt = `You are an expert Resume Parser.
Extract the following information from the resume text provided below and return it as a JSON object.

Fields to extract:
- fullName (string)
- title (string)
- email (string)
- bio (string, summary of the candidate)
- projects (array of objects with: title, description, technologies (array of strings))

If a field is missing, use an empty string or empty array.

Resume Text:
`

// BuildProfilePrompt renders the resume extraction instruction.
func BuildProfilePrompt(resume string) string {
	return profilePrompt + resume
}
