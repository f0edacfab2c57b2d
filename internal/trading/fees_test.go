package trading

import (
	"math"
	"testing"

	"ashare-trader/internal/config"
)

func defaultFees() config.FeeConfig {
	return config.FeeConfig{
		CommissionRate:     0.0003,
		CommissionFloor:    5.0,
		LevyRate:           0.001,
		LotSize:            100,
		NormalLimitPct:     0.10,
		RestrictedLimitPct: 0.05,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBuyCost(t *testing.T) {
	fees := NewFeeCalculator(defaultFees())

	// 100 shares at 1680: notional 168000, commission 50.4.
	commission, total := fees.BuyCost(1680, 100)
	if !almostEqual(commission, 50.4) {
		t.Errorf("commission = %v, want 50.4", commission)
	}
	if !almostEqual(total, 168050.4) {
		t.Errorf("total = %v, want 168050.4", total)
	}

	// Small notional hits the floor.
	commission, _ = fees.BuyCost(10, 100)
	if !almostEqual(commission, 5.0) {
		t.Errorf("commission = %v, want floor 5.0", commission)
	}
}

func TestSellProceeds(t *testing.T) {
	fees := NewFeeCalculator(defaultFees())

	// 100 shares at 1848: commission 55.44, levy 184.8.
	commission, levy, net := fees.SellProceeds(1848, 100)
	if !almostEqual(commission, 55.44) {
		t.Errorf("commission = %v, want 55.44", commission)
	}
	if !almostEqual(levy, 184.8) {
		t.Errorf("levy = %v, want 184.8", levy)
	}
	if !almostEqual(commission+levy, 240.24) {
		t.Errorf("total fees = %v, want 240.24", commission+levy)
	}
	if !almostEqual(net, 184800-240.24) {
		t.Errorf("net proceeds = %v, want %v", net, 184800-240.24)
	}
}

func TestNetPnL(t *testing.T) {
	fees := NewFeeCalculator(defaultFees())

	// Bought at 1680, sold at 1848 (10 percent gain): gross 16800,
	// fees 240.24, net 16559.76.
	net := fees.NetPnL(1848, 1680, 100)
	if !almostEqual(net, 16559.76) {
		t.Errorf("NetPnL = %v, want 16559.76", net)
	}

	// Losing sell: fees still apply.
	net = fees.NetPnL(90, 100, 100)
	commission, levy, _ := fees.SellProceeds(90, 100)
	if !almostEqual(net, -1000-commission-levy) {
		t.Errorf("NetPnL = %v, want %v", net, -1000-commission-levy)
	}
}
