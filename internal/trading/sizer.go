// Package trading implements position sizing, A-share settlement
// rules and the per-model cycle orchestrator.
package trading

import (
	"math"

	"ashare-trader/internal/errors"
)

// DefaultLotSize is the A-share board lot.
const DefaultLotSize = 100

// Sizer applies position-limit and lot-size rules to order quantities.
type Sizer struct {
	lotSize          int
	positionLimitPct float64
}

// NewSizer creates a sizer. lotSize falls back to the board lot of 100
// when non-positive.
func NewSizer(lotSize int, positionLimitPct float64) *Sizer {
	if lotSize <= 0 {
		lotSize = DefaultLotSize
	}
	return &Sizer{lotSize: lotSize, positionLimitPct: positionLimitPct}
}

// SizeBuy returns the largest whole-lot quantity affordable under both
// the per-position capital cap and available cash. A result of 0 means
// the budget does not cover a single lot and no trade should happen.
func (s *Sizer) SizeBuy(price, cashAvailable, startingCapital float64) (int, error) {
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, errors.ErrInvalidPrice
	}

	cap := startingCapital * s.positionLimitPct
	budget := math.Min(cap, cashAvailable)
	if budget <= 0 {
		return 0, nil
	}

	lots := int(math.Floor(budget / price / float64(s.lotSize)))
	qty := lots * s.lotSize
	if qty < s.lotSize {
		return 0, nil
	}
	return qty, nil
}

// SizeSell clamps a requested sell to the held quantity. Sub-lot
// remainders left by a partial sell are retained; only an explicit
// request for the full holding liquidates it.
func (s *Sizer) SizeSell(requested, held int) (int, error) {
	if requested <= 0 {
		return 0, errors.ErrInvalidQuantity
	}
	if held <= 0 {
		return 0, errors.ErrNoPosition
	}
	if requested > held {
		return held, nil
	}
	return requested, nil
}
