// Package resilience protects upstream quote endpoints: a supplier that
// keeps failing is benched for a cooldown instead of being hit on every
// cycle, then probed with single requests until it proves healthy.
package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ashare-trader/internal/errors"
	"ashare-trader/internal/market"
)

// State names the breaker's position.
type State string

const (
	StateClosed  State = "CLOSED"  // passing traffic
	StateOpen    State = "OPEN"    // benched, rejecting
	StateProbing State = "PROBING" // letting single requests test recovery
)

const (
	defaultFailureThreshold = 3
	defaultCooldown         = 2 * time.Minute
	defaultProbeSuccesses   = 2
)

// BreakerSupplier wraps a quote supplier with a circuit breaker. It
// implements market.Supplier, so it can sit anywhere in the chain.
type BreakerSupplier struct {
	inner  market.Supplier
	logger zerolog.Logger

	failureThreshold int
	cooldown         time.Duration
	probeSuccesses   int

	mu          sync.Mutex
	state       State
	failures    int
	successes   int
	lastFailure time.Time
}

// NewBreakerSupplier wraps inner with default thresholds: three straight
// failures open the breaker, a two-minute cooldown precedes probing, and
// two clean probes close it again.
func NewBreakerSupplier(inner market.Supplier, logger zerolog.Logger) *BreakerSupplier {
	return &BreakerSupplier{
		inner:            inner,
		logger:           logger,
		failureThreshold: defaultFailureThreshold,
		cooldown:         defaultCooldown,
		probeSuccesses:   defaultProbeSuccesses,
		state:            StateClosed,
	}
}

func (b *BreakerSupplier) Name() string { return b.inner.Name() }

// State returns the breaker's current state.
func (b *BreakerSupplier) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Quotes passes the request through unless the supplier is benched.
// While benched it fails fast so the chain moves on to the next
// supplier without waiting out an HTTP timeout.
func (b *BreakerSupplier) Quotes(ctx context.Context, symbols []string) (map[string]market.Quote, error) {
	if err := b.allow(); err != nil {
		return nil, err
	}

	quotes, err := b.inner.Quotes(ctx, symbols)
	if err != nil {
		b.recordFailure()
		return nil, err
	}
	b.recordSuccess()
	return quotes, nil
}

func (b *BreakerSupplier) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if time.Since(b.lastFailure) < b.cooldown {
			return errors.NewDataError(b.inner.Name(), "", "supplier benched", errors.ErrSupplierUnavailable)
		}
		b.state = StateProbing
		b.successes = 0
		b.logger.Info().Str("supplier", b.inner.Name()).Msg("Cooldown over, probing supplier")
	}
	return nil
}

func (b *BreakerSupplier) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateProbing:
		b.successes++
		if b.successes >= b.probeSuccesses {
			b.state = StateClosed
			b.failures = 0
			b.logger.Info().Str("supplier", b.inner.Name()).Msg("Supplier recovered")
		}
	case StateClosed:
		b.failures = 0
	}
}

func (b *BreakerSupplier) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFailure = time.Now()
	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.failureThreshold {
			b.state = StateOpen
			b.logger.Warn().
				Str("supplier", b.inner.Name()).
				Int("failures", b.failures).
				Dur("cooldown", b.cooldown).
				Msg("Supplier benched after repeated failures")
		}
	case StateProbing:
		// A failed probe restarts the cooldown.
		b.state = StateOpen
	}
}
