package market

import (
	"context"

	"github.com/rs/zerolog"

	"ashare-trader/internal/errors"
)

// Chain tries suppliers in order and returns the first full result set.
// A supplier that answers for only part of the batch is still accepted;
// later suppliers fill the gaps.
type Chain struct {
	suppliers []Supplier
	logger    zerolog.Logger
}

// NewChain creates a failover chain over the given suppliers.
func NewChain(logger zerolog.Logger, suppliers ...Supplier) *Chain {
	return &Chain{suppliers: suppliers, logger: logger}
}

func (c *Chain) Name() string { return "chain" }

// Quotes queries the chain, merging partial answers across suppliers.
// It fails only when no supplier returned anything usable.
func (c *Chain) Quotes(ctx context.Context, symbols []string) (map[string]Quote, error) {
	merged := make(map[string]Quote, len(symbols))
	var lastErr error

	for _, s := range c.suppliers {
		missing := missingSymbols(symbols, merged)
		if len(missing) == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		quotes, err := s.Quotes(ctx, missing)
		if err != nil {
			lastErr = err
			c.logger.Warn().
				Str("supplier", s.Name()).
				Err(err).
				Msg("Quote supplier failed, trying next")
			continue
		}
		for sym, q := range quotes {
			merged[sym] = q
		}
	}

	if len(merged) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, errors.ErrSupplierUnavailable
	}
	return merged, nil
}

func missingSymbols(symbols []string, have map[string]Quote) []string {
	var missing []string
	for _, sym := range symbols {
		if _, ok := have[sym]; !ok {
			missing = append(missing, sym)
		}
	}
	return missing
}
