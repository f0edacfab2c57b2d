package trading

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: any buy quantity is either zero or a positive multiple of
// the lot size, and its notional never exceeds the budget.
func TestProperty_BuyQuantityLotAligned(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	priceGen := gen.Float64Range(0.5, 3000)
	cashGen := gen.Float64Range(0, 500000)
	capitalGen := gen.Float64Range(1000, 1000000)
	limitGen := gen.Float64Range(0.05, 1.0)

	properties.Property("quantity is 0 or a positive lot multiple within budget", prop.ForAll(
		func(price, cash, capital, limit float64) bool {
			sizer := NewSizer(100, limit)

			qty, err := sizer.SizeBuy(price, cash, capital)
			if err != nil {
				return false
			}
			if qty == 0 {
				return true
			}
			if qty < 100 || qty%100 != 0 {
				return false
			}

			budget := capital * limit
			if cash < budget {
				budget = cash
			}
			return price*float64(qty) <= budget
		},
		priceGen, cashGen, capitalGen, limitGen,
	))

	properties.TestingRun(t)
}

// Property: a sell never exceeds the held quantity.
func TestProperty_SellNeverExceedsHolding(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("sell quantity <= held quantity", prop.ForAll(
		func(requested, held int) bool {
			sizer := NewSizer(100, 0.30)

			qty, err := sizer.SizeSell(requested, held)
			if err != nil {
				return false
			}
			return qty > 0 && qty <= held
		},
		gen.IntRange(1, 100000), gen.IntRange(1, 100000),
	))

	properties.TestingRun(t)
}
