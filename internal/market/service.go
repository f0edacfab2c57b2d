package market

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ashare-trader/internal/models"
)

const historyDays = 30

// Service combines real-time quotes with daily history and produces
// the technical snapshots the rest of the system consumes.
type Service struct {
	quotes  Supplier
	history HistorySupplier
	logger  zerolog.Logger

	mu         sync.Mutex
	histCache  map[string]histEntry
	histMaxAge time.Duration
}

type histEntry struct {
	closes  []float64
	fetched time.Time
}

// NewService creates a snapshot service. Daily history is refreshed at
// most once per histMaxAge per symbol; real-time caching is the quote
// supplier's concern.
func NewService(quotes Supplier, history HistorySupplier, histMaxAge time.Duration, logger zerolog.Logger) *Service {
	if histMaxAge <= 0 {
		histMaxAge = 5 * time.Minute
	}
	return &Service{
		quotes:     quotes,
		history:    history,
		logger:     logger,
		histCache:  make(map[string]histEntry),
		histMaxAge: histMaxAge,
	}
}

// Snapshots fetches quotes for all symbols and enriches each with
// derived indicators. A symbol whose quote is missing gets an absent
// snapshot; indicator failures leave the indicator fields unset so the
// snapshot reads as indeterminate. The call errors only when the quote
// fetch fails outright.
func (s *Service) Snapshots(ctx context.Context, symbols []string) (map[string]models.Snapshot, error) {
	quotes, err := s.quotes.Quotes(ctx, symbols)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	snapshots := make(map[string]models.Snapshot, len(symbols))
	for _, sym := range symbols {
		q, ok := quotes[sym]
		if !ok || q.Price <= 0 {
			snapshots[sym] = models.AbsentSnapshot(sym, DisplayName(sym))
			continue
		}

		snap := models.AbsentSnapshot(sym, q.Name)
		snap.Price = q.Price
		snap.ChangePct = q.ChangePct
		snap.Volume = q.Volume
		snap.Turnover = q.Turnover
		snap.Timestamp = now

		if closes, err := s.closes(ctx, sym); err != nil {
			s.logger.Warn().Str("symbol", sym).Err(err).Msg("History unavailable, snapshot left indeterminate")
		} else if ind, ok := ComputeIndicators(closes); ok {
			snap.MA5 = ind.SMA5
			snap.MA10 = ind.SMA10
			snap.MA20 = ind.SMA20
			snap.RSI14 = ind.RSI14
			snap.MACD = ind.MACD
		}

		snapshots[sym] = snap
	}
	return snapshots, nil
}

// Quote fetches a single real-time quote.
func (s *Service) Quote(ctx context.Context, symbol string) (Quote, error) {
	quotes, err := s.quotes.Quotes(ctx, []string{symbol})
	if err != nil {
		return Quote{}, err
	}
	q, ok := quotes[symbol]
	if !ok {
		return Quote{}, nil
	}
	return q, nil
}

func (s *Service) closes(ctx context.Context, symbol string) ([]float64, error) {
	s.mu.Lock()
	entry, ok := s.histCache[symbol]
	s.mu.Unlock()
	if ok && time.Since(entry.fetched) < s.histMaxAge {
		return entry.closes, nil
	}

	bars, err := s.history.History(ctx, symbol, historyDays)
	if err != nil {
		if ok {
			// Stale closes beat none at all.
			return entry.closes, nil
		}
		return nil, err
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	s.mu.Lock()
	s.histCache[symbol] = histEntry{closes: closes, fetched: time.Now()}
	s.mu.Unlock()

	return closes, nil
}

// MarketOpen reports whether the A-share market is in a trading session
// at t: weekdays 09:30-11:30 and 13:00-15:00 Shanghai time. Exchange
// holidays are not modelled.
func MarketOpen(t time.Time) bool {
	local := t.In(ShanghaiTZ())
	if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	hm := local.Hour()*60 + local.Minute()
	return (hm >= 9*60+30 && hm <= 11*60+30) || (hm >= 13*60 && hm <= 15*60)
}

var (
	shanghaiOnce sync.Once
	shanghaiLoc  *time.Location
)

// ShanghaiTZ returns the Asia/Shanghai location, falling back to a
// fixed UTC+8 zone when tzdata is unavailable.
func ShanghaiTZ() *time.Location {
	shanghaiOnce.Do(func() {
		loc, err := time.LoadLocation("Asia/Shanghai")
		if err != nil {
			loc = time.FixedZone("CST", 8*3600)
		}
		shanghaiLoc = loc
	})
	return shanghaiLoc
}
