package ai

import (
	"context"
	"fmt"

	"ashare-trader/internal/models"
	"ashare-trader/internal/strategy"
)

// BuySizer turns a price and the available funds into a lot-aligned
// quantity; satisfied by the trading sizer.
type BuySizer interface {
	SizeBuy(price, cashAvailable, startingCapital float64) (int, error)
}

// RuleSource derives decisions from the signal classifier alone. It is
// deterministic and needs no network.
type RuleSource struct {
	classifier *strategy.Classifier
	sizer      BuySizer
}

// NewRuleSource creates the rule decision source.
func NewRuleSource(classifier *strategy.Classifier, sizer BuySizer) *RuleSource {
	return &RuleSource{classifier: classifier, sizer: sizer}
}

func (r *RuleSource) Name() string { return "rules" }

// Decide classifies every symbol in view order. Buys are sized against
// the remaining cash as earlier buys in the same pass commit it; sells
// always request the full holding.
func (r *RuleSource) Decide(ctx context.Context, view View) (map[string]models.Decision, error) {
	decisions := make(map[string]models.Decision, len(view.Symbols))
	cash := view.Portfolio.Cash

	for _, symbol := range view.Symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		snap, ok := view.Snapshots[symbol]
		if !ok || snap.Indeterminate() {
			decisions[symbol] = holdDecision(symbol, "indeterminate snapshot")
			continue
		}

		pos := view.Portfolio.Position(symbol)
		var entryPrice float64
		if pos != nil {
			entryPrice = pos.AvgCost
		}

		signal := r.classifier.Classify(snap, pos != nil, entryPrice)
		switch {
		case signal.IsBuy():
			qty, err := r.sizer.SizeBuy(snap.Price, cash, view.Portfolio.InitialCapital)
			if err != nil || qty == 0 {
				decisions[symbol] = holdDecision(symbol, "insufficient budget for one lot")
				continue
			}
			takeProfit, stopLoss := r.classifier.Targets(signal, snap.Price)
			decisions[symbol] = models.Decision{
				Symbol:       symbol,
				Action:       models.DecisionActionBuy,
				Quantity:     qty,
				ProfitTarget: takeProfit,
				StopLoss:     stopLoss,
				Confidence:   1,
				Rationale:    fmt.Sprintf("%s at %.2f", signal, snap.Price),
				Signal:       signal,
			}
			cash -= snap.Price * float64(qty)

		case signal.IsSell():
			decisions[symbol] = models.Decision{
				Symbol:     symbol,
				Action:     models.DecisionActionSell,
				Quantity:   pos.Quantity,
				Confidence: 1,
				Rationale:  fmt.Sprintf("%s at %.2f", signal, snap.Price),
				Signal:     signal,
			}

		default:
			decisions[symbol] = holdDecision(symbol, "no signal")
		}
	}

	return decisions, nil
}
