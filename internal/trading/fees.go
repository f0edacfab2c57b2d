package trading

import (
	"math"

	"ashare-trader/internal/config"
)

// FeeCalculator computes A-share transaction costs: a floored
// commission on both sides and a stamp levy charged on sells only.
type FeeCalculator struct {
	fees config.FeeConfig
}

// NewFeeCalculator creates a calculator from the fee schedule.
func NewFeeCalculator(fees config.FeeConfig) *FeeCalculator {
	return &FeeCalculator{fees: fees}
}

// Commission returns max(notional × rate, floor).
func (f *FeeCalculator) Commission(notional float64) float64 {
	return math.Max(notional*f.fees.CommissionRate, f.fees.CommissionFloor)
}

// BuyCost returns the commission on a buy and the total cash outlay
// including it.
func (f *FeeCalculator) BuyCost(price float64, quantity int) (commission, totalCost float64) {
	notional := price * float64(quantity)
	commission = f.Commission(notional)
	return commission, notional + commission
}

// SellProceeds returns the fees on a sell and the net cash received.
// The levy applies to the sell notional only.
func (f *FeeCalculator) SellProceeds(price float64, quantity int) (commission, levy, netProceeds float64) {
	notional := price * float64(quantity)
	commission = f.Commission(notional)
	levy = notional * f.fees.LevyRate
	return commission, levy, notional - commission - levy
}

// NetPnL returns the realized profit of a sell after fees.
func (f *FeeCalculator) NetPnL(sellPrice, avgCost float64, quantity int) float64 {
	gross := (sellPrice - avgCost) * float64(quantity)
	commission, levy, _ := f.SellProceeds(sellPrice, quantity)
	return gross - commission - levy
}
