package performance

import (
	"math"
	"testing"
	"time"

	"ashare-trader/internal/models"
)

func sell(symbol string, pnl float64) models.TradeRecord {
	return models.TradeRecord{
		Symbol: symbol, Side: models.OrderSideSell,
		Quantity: 100, Price: 100,
		Commission: 5, Levy: 10, RealizedPnL: pnl,
		Timestamp: time.Now(),
	}
}

func buy(symbol string) models.TradeRecord {
	return models.TradeRecord{
		Symbol: symbol, Side: models.OrderSideBuy,
		Quantity: 100, Price: 100, Commission: 5,
		Timestamp: time.Now(),
	}
}

func TestComputeEmpty(t *testing.T) {
	r := Compute(nil, nil, 100000)
	if r.TotalTrades != 0 || r.WinRate != 0 || r.ProfitFactor != 0 {
		t.Errorf("empty report = %+v", r)
	}
	if r.MaxDrawdown != 0 || r.ReturnPct != 0 {
		t.Errorf("empty report = %+v", r)
	}
}

func TestComputeCounts(t *testing.T) {
	trades := []models.TradeRecord{
		buy("600519"),
		buy("000858"),
		sell("600519", 1500),
		sell("000858", -500),
		sell("600519", 300),
	}

	r := Compute(trades, nil, 100000)
	if r.TotalTrades != 5 || r.Buys != 2 || r.Sells != 3 {
		t.Errorf("counts = %d/%d/%d", r.TotalTrades, r.Buys, r.Sells)
	}
	if r.WinningTrades != 2 || r.LosingTrades != 1 {
		t.Errorf("wins/losses = %d/%d", r.WinningTrades, r.LosingTrades)
	}
	if math.Abs(r.WinRate-200.0/3.0) > 1e-9 {
		t.Errorf("win rate = %v", r.WinRate)
	}
	if r.GrossProfit != 1800 || r.GrossLoss != 500 {
		t.Errorf("gross = %v/%v", r.GrossProfit, r.GrossLoss)
	}
	if math.Abs(r.ProfitFactor-3.6) > 1e-9 {
		t.Errorf("profit factor = %v", r.ProfitFactor)
	}
	if r.NetRealized != 1300 {
		t.Errorf("net realized = %v", r.NetRealized)
	}
	// Two buy commissions plus three sells at 15 each.
	if r.TotalFees != 5+5+45 {
		t.Errorf("fees = %v", r.TotalFees)
	}
	if r.BestTrade != 1500 || r.WorstTrade != -500 {
		t.Errorf("best/worst = %v/%v", r.BestTrade, r.WorstTrade)
	}
}

func TestComputeNoLosses(t *testing.T) {
	r := Compute([]models.TradeRecord{sell("600519", 100)}, nil, 100000)
	if !math.IsInf(r.ProfitFactor, 1) {
		t.Errorf("profit factor = %v, want +Inf with no losses", r.ProfitFactor)
	}
	if r.WinRate != 100 {
		t.Errorf("win rate = %v", r.WinRate)
	}
}

func TestMaxDrawdown(t *testing.T) {
	at := func(total float64) models.Valuation {
		return models.Valuation{TotalValue: total, Timestamp: time.Now()}
	}
	// Ledger order is newest first: the account ran 100k -> 110k ->
	// 99k -> 104.5k, so the worst drop is 10% off the 110k peak.
	valuations := []models.Valuation{at(104500), at(99000), at(110000), at(100000)}

	r := Compute(nil, valuations, 100000)
	if math.Abs(r.MaxDrawdown-10) > 1e-9 {
		t.Errorf("max drawdown = %v, want 10", r.MaxDrawdown)
	}
	if math.Abs(r.ReturnPct-4.5) > 1e-9 {
		t.Errorf("return = %v, want 4.5", r.ReturnPct)
	}
}

func TestMaxDrawdownMonotonicRise(t *testing.T) {
	at := func(total float64) models.Valuation {
		return models.Valuation{TotalValue: total}
	}
	valuations := []models.Valuation{at(120000), at(110000), at(100000)}
	r := Compute(nil, valuations, 100000)
	if r.MaxDrawdown != 0 {
		t.Errorf("max drawdown = %v, want 0 on a rising account", r.MaxDrawdown)
	}
	if r.ReturnPct != 20 {
		t.Errorf("return = %v, want 20", r.ReturnPct)
	}
}
