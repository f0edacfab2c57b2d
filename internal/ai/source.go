// Package ai provides the per-cycle decision sources: the rule engine
// built on the signal classifier, and an optional LLM fallback speaking
// an OpenAI-compatible API.
package ai

import (
	"context"
	"time"

	"ashare-trader/internal/models"
)

// View is everything a decision source sees for one cycle: the current
// snapshots, the account as reconstructed from the ledger, and the
// evaluation order of the universe.
type View struct {
	Symbols   []string
	Snapshots map[string]models.Snapshot
	Portfolio *models.Portfolio
	Timestamp time.Time
}

// DecisionSource maps a cycle view to per-symbol decisions. Symbols
// missing from the result are treated as hold. Implementations must be
// safe for concurrent use across models.
type DecisionSource interface {
	Name() string
	Decide(ctx context.Context, view View) (map[string]models.Decision, error)
}

// holdDecision is the neutral result for one symbol.
func holdDecision(symbol, rationale string) models.Decision {
	return models.Decision{
		Symbol:    symbol,
		Action:    models.DecisionActionHold,
		Signal:    models.SignalHold,
		Rationale: rationale,
	}
}
