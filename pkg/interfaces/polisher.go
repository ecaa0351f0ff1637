package interfaces

import "context"

// PolishContext hints the kind of text being polished.
type PolishContext string

const (
	PolishContextBio     PolishContext = "bio"
	PolishContextProject PolishContext = "project"
	PolishContextTitle   PolishContext = "title"
)

// PolishTone selects the register of the rewritten text.
type PolishTone string

const (
	PolishToneProfessional PolishTone = "professional"
	PolishToneConcise      PolishTone = "concise"
	PolishToneCreative     PolishTone = "creative"
)

// Polisher rewrites a piece of portfolio copy. Implementations may call
// remote models and are expected to honour ctx cancellation.
type Polisher interface {
	Polish(ctx context.Context, text string, pctx PolishContext, tone PolishTone) (string, error)
}
