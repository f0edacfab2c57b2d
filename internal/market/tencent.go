package market

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ashare-trader/internal/errors"
)

const tencentQuoteURL = "http://qt.gtimg.cn/q="

// TencentSupplier fetches real-time quotes from the Tencent qt endpoint.
// Responses are GBK-encoded lines of the form
//
//	v_sh600519="51~贵州茅台~600519~1680.00~1598.00~...";
//
// with tilde-separated fields: name at index 1, latest price at 3,
// previous close at 4, volume (hands) at 6 and turnover (万元) at 37.
type TencentSupplier struct {
	client *http.Client
}

// NewTencentSupplier creates a Tencent quote supplier with the given timeout.
func NewTencentSupplier(timeout time.Duration) *TencentSupplier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &TencentSupplier{client: &http.Client{Timeout: timeout}}
}

func (t *TencentSupplier) Name() string { return "tencent" }

// Quotes fetches quotes for the given symbols in a single batch request.
func (t *TencentSupplier) Quotes(ctx context.Context, symbols []string) (map[string]Quote, error) {
	if len(symbols) == 0 {
		return map[string]Quote{}, nil
	}

	prefixed := make([]string, len(symbols))
	for i, sym := range symbols {
		prefixed[i] = PrefixExchange(sym)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tencentQuoteURL+strings.Join(prefixed, ","), nil)
	if err != nil {
		return nil, errors.NewDataError("tencent", "", "building request", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, errors.NewDataError("tencent", "", "fetching quotes", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewDataError("tencent", "", fmt.Sprintf("status %d", resp.StatusCode), errors.ErrSupplierUnavailable)
	}

	body, err := decodeGBK(resp.Body)
	if err != nil {
		return nil, errors.NewDataError("tencent", "", "decoding response", err)
	}
	if strings.HasPrefix(strings.TrimSpace(body), "<") {
		return nil, errors.NewDataError("tencent", "", "html response", errors.ErrSupplierUnavailable)
	}

	quotes := make(map[string]Quote, len(symbols))
	lines := strings.Split(strings.TrimSpace(body), ";")
	for i, line := range lines {
		if i >= len(symbols) {
			break
		}
		q, ok := parseTencentLine(symbols[i], line)
		if ok {
			quotes[symbols[i]] = q
		}
	}
	if len(quotes) == 0 {
		return nil, errors.NewDataError("tencent", "", "no parseable quotes", errors.ErrSupplierUnavailable)
	}
	return quotes, nil
}

func parseTencentLine(symbol, line string) (Quote, bool) {
	_, payload, found := strings.Cut(line, "=\"")
	if !found {
		return Quote{}, false
	}
	payload = strings.TrimSuffix(strings.TrimSpace(payload), "\";")
	payload = strings.TrimSuffix(payload, "\"")
	fields := strings.Split(payload, "~")
	if len(fields) < 5 {
		return Quote{}, false
	}

	price := parseField(fields[3])
	prevClose := parseField(fields[4])
	if price <= 0 {
		return Quote{}, false
	}

	q := Quote{
		Symbol:    symbol,
		Name:      fields[1],
		Price:     price,
		PrevClose: prevClose,
	}
	if prevClose > 0 {
		q.ChangePct = (price - prevClose) / prevClose * 100
	}
	if len(fields) > 6 {
		q.Volume = parseField(fields[6]) * 100 // hands to shares
	}
	if len(fields) > 37 {
		q.Turnover = parseField(fields[37]) * 10000 // 万元 to CNY
	}
	return q, true
}
