// Package market fetches real-time A-share quotes and daily history
// and derives the technical snapshots the strategy layer consumes.
package market

import (
	"context"
	"strings"
)

// Quote is a single real-time quote as returned by a supplier.
type Quote struct {
	Symbol    string
	Name      string
	Price     float64
	PrevClose float64
	ChangePct float64
	Volume    float64
	Turnover  float64
}

// Bar is one daily candle.
type Bar struct {
	Date   string // YYYY-MM-DD
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Supplier fetches real-time quotes for a batch of symbols.
// Implementations must return results keyed by the bare 6-digit symbol.
type Supplier interface {
	Name() string
	Quotes(ctx context.Context, symbols []string) (map[string]Quote, error)
}

// HistorySupplier fetches recent daily bars for a single symbol,
// oldest first.
type HistorySupplier interface {
	History(ctx context.Context, symbol string, days int) ([]Bar, error)
}

// PrefixExchange adds the exchange prefix expected by the Sina and
// Tencent quote endpoints. Codes starting with 6 trade in Shanghai,
// codes starting with 0 or 3 in Shenzhen.
func PrefixExchange(symbol string) string {
	if strings.HasPrefix(symbol, "6") {
		return "sh" + symbol
	}
	return "sz" + symbol
}

// StockNames maps the default universe to display names.
var StockNames = map[string]string{
	"600519": "贵州茅台",
	"000858": "五粮液",
	"601318": "中国平安",
	"600036": "招商银行",
	"000333": "美的集团",
	"300750": "宁德时代",
}

// DisplayName returns the known display name for a symbol, or the
// symbol itself.
func DisplayName(symbol string) string {
	if name, ok := StockNames[symbol]; ok {
		return name
	}
	return symbol
}
