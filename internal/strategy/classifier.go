// Package strategy implements the three buy-point / three sell-point
// signal taxonomy over indicator snapshots.
package strategy

import (
	"math"

	"ashare-trader/internal/config"
	"ashare-trader/internal/models"
)

// Classifier maps an indicator snapshot plus position state into a
// single signal. It is a pure function of its inputs and the risk
// parameters fixed at construction.
type Classifier struct {
	risk config.RiskConfig
}

// NewClassifier creates a classifier with the given risk parameters.
func NewClassifier(risk config.RiskConfig) *Classifier {
	return &Classifier{risk: risk}
}

// Classify returns the signal for one symbol. entryPrice is only
// consulted when hasPosition is true. An indeterminate snapshot always
// reads as Hold; the classifier never guesses over missing indicators.
func (c *Classifier) Classify(snap models.Snapshot, hasPosition bool, entryPrice float64) models.Signal {
	if snap.Indeterminate() {
		return models.SignalHold
	}

	if hasPosition {
		return c.classifyHolding(snap, entryPrice)
	}
	return c.classifyFlat(snap)
}

// classifyFlat evaluates the three buy classes in strict priority
// order; first match wins.
func (c *Classifier) classifyFlat(snap models.Snapshot) models.Signal {
	p := snap.Price

	// Class 3: trend breakout or oversold rebound.
	aligned := snap.MA5 > snap.MA10 && snap.MA10 > snap.MA20
	if (aligned && p > snap.MA5 && snap.MACD > 0) ||
		(snap.RSI14 <= c.risk.RSIBuyLow && snap.MACD >= 0) {
		return models.SignalBuyBreakout
	}

	nearMid := math.Abs(p-snap.MA10)/snap.MA10 < c.risk.PullbackTolerance

	// Class 1: pullback to a rising mean that is holding.
	if snap.MA5 >= snap.MA10 && snap.MA10 >= snap.MA20 && nearMid {
		return models.SignalBuyPullback
	}

	// Class 2: failed pullback with neutral momentum.
	if nearMid &&
		snap.RSI14 >= c.risk.RSINeutralLow && snap.RSI14 <= c.risk.RSINeutralHigh &&
		snap.MA5 >= snap.MA10 {
		return models.SignalBuyContinuation
	}

	return models.SignalHold
}

// classifyHolding evaluates the three sell conditions in strict
// priority order.
func (c *Classifier) classifyHolding(snap models.Snapshot, entryPrice float64) models.Signal {
	p := snap.Price

	if p < snap.MA20 && snap.MACD < 0 {
		return models.SignalSellTrendBreak
	}
	if snap.RSI14 > c.risk.RSISellHigh && p < snap.MA5 {
		return models.SignalSellOverheat
	}
	if entryPrice > 0 && p <= entryPrice*(1-c.risk.StopLossPct) {
		return models.SignalSellStopLoss
	}

	return models.SignalHold
}

// Targets returns the advisory take-profit and stop-loss prices for a
// buy signal at the given entry price. Non-buy signals yield zeros.
func (c *Classifier) Targets(signal models.Signal, entryPrice float64) (takeProfit, stopLoss float64) {
	switch signal {
	case models.SignalBuyBreakout:
		return entryPrice * c.risk.TakeProfitBreakout, entryPrice * (1 - c.risk.StopOffsetBreakout)
	case models.SignalBuyPullback:
		return entryPrice * c.risk.TakeProfitPullback, entryPrice * (1 - c.risk.StopOffsetPullback)
	case models.SignalBuyContinuation:
		return entryPrice * c.risk.TakeProfitContinuation, entryPrice * (1 - c.risk.StopOffsetContinuation)
	default:
		return 0, 0
	}
}
