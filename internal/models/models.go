// Package models provides domain models for the A-share trading simulator.
package models

import (
	"math"
	"time"
)

// OrderSide represents the side of an order.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// Signal represents the classified market state for one symbol.
// The three buy classes map to the breakout / pullback / continuation
// taxonomy; the three sell classes to trend break / overheat / stop loss.
type Signal string

const (
	SignalHold            Signal = "HOLD"
	SignalBuyBreakout     Signal = "BUY_BREAKOUT"     // class 3
	SignalBuyPullback     Signal = "BUY_PULLBACK"     // class 1
	SignalBuyContinuation Signal = "BUY_CONTINUATION" // class 2
	SignalSellTrendBreak  Signal = "SELL_TREND_BREAK"
	SignalSellOverheat    Signal = "SELL_OVERHEAT"
	SignalSellStopLoss    Signal = "SELL_STOP_LOSS"

	// Signals attributed to the external decision source, which does
	// not classify into the three-tier taxonomy.
	SignalLLMBuy  Signal = "LLM_BUY"
	SignalLLMSell Signal = "LLM_SELL"
)

// IsBuy returns true for any buy signal.
func (s Signal) IsBuy() bool {
	return s == SignalBuyBreakout || s == SignalBuyPullback || s == SignalBuyContinuation || s == SignalLLMBuy
}

// IsSell returns true for any sell signal.
func (s Signal) IsSell() bool {
	return s == SignalSellTrendBreak || s == SignalSellOverheat || s == SignalSellStopLoss || s == SignalLLMSell
}

// Snapshot represents one symbol's quote plus the fixed indicator set
// for a single evaluation cycle. Absent numeric fields are NaN.
type Snapshot struct {
	Symbol    string
	Name      string
	Price     float64
	ChangePct float64 // percent change versus prior close
	MA5       float64
	MA10      float64
	MA20      float64
	RSI14     float64
	MACD      float64
	Volume    float64
	Turnover  float64
	Timestamp time.Time
}

// Indeterminate reports whether any field the classifier needs is
// missing. Indeterminate snapshots always classify as hold.
func (s Snapshot) Indeterminate() bool {
	if s.Price <= 0 || math.IsNaN(s.Price) || math.IsInf(s.Price, 0) {
		return true
	}
	for _, v := range []float64{s.MA5, s.MA10, s.MA20, s.RSI14, s.MACD} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return s.RSI14 < 0 || s.RSI14 > 100
}

// AbsentSnapshot returns a snapshot for a symbol the supplier could not
// quote: every numeric field NaN so it classifies as indeterminate.
func AbsentSnapshot(symbol, name string) Snapshot {
	nan := math.NaN()
	return Snapshot{
		Symbol:    symbol,
		Name:      name,
		Price:     nan,
		ChangePct: nan,
		MA5:       nan,
		MA10:      nan,
		MA20:      nan,
		RSI14:     nan,
		MACD:      nan,
		Volume:    nan,
		Turnover:  nan,
		Timestamp: time.Now(),
	}
}
