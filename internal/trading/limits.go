package trading

import (
	"math"

	"ashare-trader/internal/config"
	"ashare-trader/internal/errors"
)

// LimitGuard rejects orders for symbols whose price already sits at
// the exchange daily limit. At the limit no counterparty volume can be
// assumed, so no fill is possible in either direction.
type LimitGuard struct {
	cfg *config.Config
}

// NewLimitGuard creates a guard over the configured limit tiers.
func NewLimitGuard(cfg *config.Config) *LimitGuard {
	return &LimitGuard{cfg: cfg}
}

// Check returns ErrPriceLimitReached when changePct (percent move from
// the prior close) has reached the symbol's daily limit. Restricted
// tier symbols move within 5% instead of the normal 10%.
func (g *LimitGuard) Check(symbol string, changePct float64) error {
	limit := g.cfg.Fees.NormalLimitPct
	if g.cfg.IsRestricted(symbol) {
		limit = g.cfg.Fees.RestrictedLimitPct
	}
	if math.Abs(changePct) >= limit*100 {
		return errors.NewOrderError(symbol, "", "daily limit reached", errors.ErrPriceLimitReached)
	}
	return nil
}
