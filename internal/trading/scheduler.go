package trading

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ashare-trader/internal/notify"
)

const failureBackoff = 60 * time.Second

// Scheduler drives all registered engines on a fixed interval. Models
// run their cycles in parallel; each engine serializes against itself.
// A model that keeps faulting is held back for a backoff window instead
// of hammering the ledger every tick.
type Scheduler struct {
	registry *Registry
	interval time.Duration
	logger   zerolog.Logger
	gate     func() bool
	notifier notify.Notifier

	mu       sync.Mutex
	deferred map[int64]time.Time
}

// NewScheduler creates a scheduler over the registry.
func NewScheduler(registry *Registry, interval time.Duration, logger zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Scheduler{
		registry: registry,
		interval: interval,
		logger:   logger,
		notifier: notify.Nop{},
		deferred: make(map[int64]time.Time),
	}
}

// SetNotifier installs an event notifier. The default discards events.
func (s *Scheduler) SetNotifier(n notify.Notifier) {
	if n != nil {
		s.notifier = n
	}
}

// SetGate installs a predicate consulted before every pass; when it
// returns false the pass is skipped. Used to sit out non-trading hours.
func (s *Scheduler) SetGate(gate func() bool) {
	s.gate = gate
}

// Run ticks until ctx is cancelled. The first pass happens immediately.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// Tick runs one pass over all engines and returns their results.
func (s *Scheduler) Tick(ctx context.Context) []*CycleResult {
	return s.tick(ctx)
}

func (s *Scheduler) tick(ctx context.Context) []*CycleResult {
	if s.gate != nil && !s.gate() {
		s.logger.Debug().Msg("Outside trading hours, pass skipped")
		return nil
	}

	engines := s.registry.Engines()
	results := make([]*CycleResult, len(engines))

	var wg sync.WaitGroup
	for i, engine := range engines {
		if s.heldBack(engine.ModelID()) {
			continue
		}
		wg.Add(1)
		go func(i int, engine *Engine) {
			defer wg.Done()
			result, err := engine.RunCycle(ctx)
			if err != nil {
				s.holdBack(engine.ModelID())
				s.notifier.CycleFaulted(engine.ModelName(), err)
				s.logger.Error().
					Int64("model_id", engine.ModelID()).
					Err(err).
					Msg("Cycle faulted, backing off")
				return
			}
			s.clearHold(engine.ModelID())
			s.announce(engine.ModelName(), result)
			results[i] = result
		}(i, engine)
	}
	wg.Wait()

	out := results[:0]
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (s *Scheduler) announce(model string, result *CycleResult) {
	if result.Skipped {
		s.notifier.CycleSkipped(model, result.Reason)
		return
	}
	for _, trade := range result.Trades() {
		s.notifier.TradeExecuted(model, trade)
	}
	if result.Valuation != nil {
		s.notifier.ValuationRecorded(model, *result.Valuation)
	}
}

func (s *Scheduler) heldBack(modelID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.deferred[modelID]
	return ok && time.Now().Before(until)
}

func (s *Scheduler) holdBack(modelID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deferred[modelID] = time.Now().Add(failureBackoff)
}

func (s *Scheduler) clearHold(modelID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.deferred, modelID)
}
