package ai

import (
	"context"

	"github.com/rs/zerolog"

	"ashare-trader/internal/models"
)

// FallbackSource tries a primary decision source and falls back to a
// secondary when the primary errors. The two sources are peers behind
// the same contract; neither knows about the other.
type FallbackSource struct {
	primary  DecisionSource
	fallback DecisionSource
	logger   zerolog.Logger
}

// NewFallbackSource composes primary-with-fallback.
func NewFallbackSource(primary, fallback DecisionSource, logger zerolog.Logger) *FallbackSource {
	return &FallbackSource{primary: primary, fallback: fallback, logger: logger}
}

func (f *FallbackSource) Name() string {
	return f.primary.Name() + "+" + f.fallback.Name()
}

func (f *FallbackSource) Decide(ctx context.Context, view View) (map[string]models.Decision, error) {
	decisions, err := f.primary.Decide(ctx, view)
	if err == nil {
		return decisions, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	f.logger.Warn().
		Str("primary", f.primary.Name()).
		Str("fallback", f.fallback.Name()).
		Err(err).
		Msg("Primary decision source failed, falling back")
	return f.fallback.Decide(ctx, view)
}
