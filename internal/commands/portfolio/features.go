package portfoliocmd

import "errors"

var (
	// ErrPortfolioPublished blocks deleting a live portfolio without Force.
	ErrPortfolioPublished = errors.New("portfoliocmd: portfolio has published versions")
	// ErrPublishingDisabled is returned when the publishing gate is off.
	ErrPublishingDisabled = errors.New("portfoliocmd: publishing is disabled")
)

// FeatureGates exposes runtime toggles consulted by the handlers. Nil gates
// default to enabled.
type FeatureGates struct {
	PublishingEnabled func() bool
}

func (g FeatureGates) publishingEnabled() bool {
	if g.PublishingEnabled == nil {
		return true
	}
	return g.PublishingEnabled()
}
