package market

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"ashare-trader/internal/errors"
)

const sinaQuoteURL = "http://hq.sinajs.cn/list="

// SinaSupplier fetches real-time quotes from the Sina hq endpoint.
// Responses are GBK-encoded lines of the form
//
//	var hq_str_sh600519="贵州茅台,1601.00,1598.00,1680.00,...";
//
// where index 0 is the name, 2 the previous close and 3 the latest price.
type SinaSupplier struct {
	client *http.Client
}

// NewSinaSupplier creates a Sina quote supplier with the given timeout.
func NewSinaSupplier(timeout time.Duration) *SinaSupplier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SinaSupplier{client: &http.Client{Timeout: timeout}}
}

func (s *SinaSupplier) Name() string { return "sina" }

// Quotes fetches quotes for the given symbols in a single batch request.
func (s *SinaSupplier) Quotes(ctx context.Context, symbols []string) (map[string]Quote, error) {
	if len(symbols) == 0 {
		return map[string]Quote{}, nil
	}

	prefixed := make([]string, len(symbols))
	for i, sym := range symbols {
		prefixed[i] = PrefixExchange(sym)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sinaQuoteURL+strings.Join(prefixed, ","), nil)
	if err != nil {
		return nil, errors.NewDataError("sina", "", "building request", err)
	}
	// Sina rejects requests without a finance referer.
	req.Header.Set("Referer", "http://finance.sina.com.cn/")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.NewDataError("sina", "", "fetching quotes", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewDataError("sina", "", fmt.Sprintf("status %d", resp.StatusCode), errors.ErrSupplierUnavailable)
	}

	body, err := decodeGBK(resp.Body)
	if err != nil {
		return nil, errors.NewDataError("sina", "", "decoding response", err)
	}
	if strings.HasPrefix(strings.TrimSpace(body), "<") {
		return nil, errors.NewDataError("sina", "", "html response", errors.ErrSupplierUnavailable)
	}

	quotes := make(map[string]Quote, len(symbols))
	lines := strings.Split(strings.TrimSpace(body), ";")
	for i, line := range lines {
		if i >= len(symbols) {
			break
		}
		q, ok := parseSinaLine(symbols[i], line)
		if ok {
			quotes[symbols[i]] = q
		}
	}
	if len(quotes) == 0 {
		return nil, errors.NewDataError("sina", "", "no parseable quotes", errors.ErrSupplierUnavailable)
	}
	return quotes, nil
}

func parseSinaLine(symbol, line string) (Quote, bool) {
	_, payload, found := strings.Cut(line, "=\"")
	if !found {
		return Quote{}, false
	}
	payload = strings.TrimSuffix(strings.TrimSpace(payload), "\";")
	payload = strings.TrimSuffix(payload, "\"")
	fields := strings.Split(payload, ",")
	if len(fields) < 4 {
		return Quote{}, false
	}

	price := parseField(fields[3])
	prevClose := parseField(fields[2])
	if price <= 0 {
		return Quote{}, false
	}

	q := Quote{
		Symbol:    symbol,
		Name:      fields[0],
		Price:     price,
		PrevClose: prevClose,
	}
	if prevClose > 0 {
		q.ChangePct = (price - prevClose) / prevClose * 100
	}
	// Sina carries volume (shares) at index 8 and turnover (CNY) at 9.
	if len(fields) > 9 {
		q.Volume = parseField(fields[8])
		q.Turnover = parseField(fields[9])
	}
	return q, true
}

func parseField(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

func decodeGBK(r io.Reader) (string, error) {
	decoded, err := io.ReadAll(transform.NewReader(r, simplifiedchinese.GBK.NewDecoder()))
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
