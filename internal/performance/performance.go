// Package performance derives account statistics from the ledger's
// trade and valuation history.
package performance

import (
	"math"

	"ashare-trader/internal/models"
)

// Report summarizes one model's trading record. Win/loss counts cover
// sells only; buys carry no realized pnl.
type Report struct {
	TotalTrades   int
	Buys          int
	Sells         int
	WinningTrades int
	LosingTrades  int
	WinRate       float64 // percent of sells closed at a net gain
	GrossProfit   float64
	GrossLoss     float64 // positive figure
	ProfitFactor  float64 // gross profit / gross loss; +Inf with no losses
	NetRealized   float64
	TotalFees     float64
	BestTrade     float64
	WorstTrade    float64
	MaxDrawdown   float64 // worst peak-to-trough total value drop, percent
	ReturnPct     float64 // latest total value versus initial capital
}

// Compute builds a report. valuations are expected newest first, the
// order the ledger returns them in; trades may arrive in any order.
func Compute(trades []models.TradeRecord, valuations []models.Valuation, initialCapital float64) Report {
	r := Report{}

	for _, t := range trades {
		r.TotalTrades++
		r.TotalFees += t.TotalFees()
		if t.Side == models.OrderSideBuy {
			r.Buys++
			continue
		}
		r.Sells++
		r.NetRealized += t.RealizedPnL
		if t.RealizedPnL > 0 {
			r.WinningTrades++
			r.GrossProfit += t.RealizedPnL
		} else {
			r.LosingTrades++
			r.GrossLoss -= t.RealizedPnL
		}
		if t.RealizedPnL > r.BestTrade {
			r.BestTrade = t.RealizedPnL
		}
		if t.RealizedPnL < r.WorstTrade {
			r.WorstTrade = t.RealizedPnL
		}
	}

	if r.Sells > 0 {
		r.WinRate = float64(r.WinningTrades) / float64(r.Sells) * 100
	}
	switch {
	case r.GrossLoss > 0:
		r.ProfitFactor = r.GrossProfit / r.GrossLoss
	case r.GrossProfit > 0:
		r.ProfitFactor = math.Inf(1)
	}

	r.MaxDrawdown = maxDrawdown(valuations)
	if len(valuations) > 0 && initialCapital > 0 {
		r.ReturnPct = (valuations[0].TotalValue - initialCapital) / initialCapital * 100
	}
	return r
}

// maxDrawdown walks the valuation history oldest to newest and tracks
// the deepest drop from a running peak.
func maxDrawdown(valuations []models.Valuation) float64 {
	if len(valuations) < 2 {
		return 0
	}

	var peak, worst float64
	for i := len(valuations) - 1; i >= 0; i-- {
		v := valuations[i].TotalValue
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (peak - v) / peak * 100
			if dd > worst {
				worst = dd
			}
		}
	}
	return worst
}
