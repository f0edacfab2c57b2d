package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ashare-trader/internal/errors"
	"ashare-trader/pkg/utils"
)

const sinaKLineURL = "https://quotes.sina.cn/cn/api/json_v2.php/CN_MarketDataService.getKLineData"

// SinaHistorySupplier fetches daily candles from the Sina kline API.
// Transient failures are retried; the kline endpoint drops requests far
// more often than the realtime one.
type SinaHistorySupplier struct {
	client *http.Client
	retry  utils.RetryPolicy
}

// NewSinaHistorySupplier creates a daily-history supplier with the
// given timeout.
func NewSinaHistorySupplier(timeout time.Duration) *SinaHistorySupplier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SinaHistorySupplier{
		client: &http.Client{Timeout: timeout},
		retry:  utils.DefaultRetryPolicy(),
	}
}

type sinaKLineRow struct {
	Day    string `json:"day"`
	Open   string `json:"open"`
	High   string `json:"high"`
	Low    string `json:"low"`
	Close  string `json:"close"`
	Volume string `json:"volume"`
}

// History returns up to days daily bars for symbol, oldest first.
func (s *SinaHistorySupplier) History(ctx context.Context, symbol string, days int) ([]Bar, error) {
	var bars []Bar
	err := utils.Retry(ctx, s.retry, func() error {
		var err error
		bars, err = s.fetch(ctx, symbol, days)
		return err
	})
	return bars, err
}

func (s *SinaHistorySupplier) fetch(ctx context.Context, symbol string, days int) ([]Bar, error) {
	if days <= 0 {
		days = 30
	}

	u, _ := url.Parse(sinaKLineURL)
	q := u.Query()
	q.Set("symbol", PrefixExchange(symbol))
	q.Set("scale", "240") // daily
	q.Set("ma", "no")
	q.Set("datalen", strconv.Itoa(days))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.NewDataError("sina", symbol, "building history request", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.NewDataError("sina", symbol, "fetching history", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewDataError("sina", symbol, fmt.Sprintf("status %d", resp.StatusCode), errors.ErrSupplierUnavailable)
	}

	var rows []sinaKLineRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, errors.NewDataError("sina", symbol, "decoding history", err)
	}

	bars := make([]Bar, 0, len(rows))
	for _, row := range rows {
		closePrice := parseField(row.Close)
		if closePrice <= 0 {
			continue
		}
		bars = append(bars, Bar{
			Date:   row.Day,
			Open:   parseField(row.Open),
			High:   parseField(row.High),
			Low:    parseField(row.Low),
			Close:  closePrice,
			Volume: parseField(row.Volume),
		})
	}
	if len(bars) == 0 {
		return nil, errors.NewDataError("sina", symbol, "empty history", errors.ErrSupplierUnavailable)
	}
	return bars, nil
}
