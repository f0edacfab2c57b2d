package market

import (
	"strings"
	"testing"
)

func TestPrefixExchange(t *testing.T) {
	cases := []struct {
		symbol string
		want   string
	}{
		{"600519", "sh600519"},
		{"601318", "sh601318"},
		{"000858", "sz000858"},
		{"300750", "sz300750"},
	}
	for _, tc := range cases {
		if got := PrefixExchange(tc.symbol); got != tc.want {
			t.Errorf("PrefixExchange(%q) = %q, want %q", tc.symbol, got, tc.want)
		}
	}
}

func TestParseSinaLine(t *testing.T) {
	line := `var hq_str_sh600519="贵州茅台,1601.00,1598.00,1680.00,1681.00,1599.00,1679.90,1680.10,32000,52000000.00,100,1679.90";`

	q, ok := parseSinaLine("600519", line)
	if !ok {
		t.Fatal("line should parse")
	}
	if q.Symbol != "600519" {
		t.Errorf("symbol = %q", q.Symbol)
	}
	if q.Name != "贵州茅台" {
		t.Errorf("name = %q", q.Name)
	}
	if !closeEnough(q.Price, 1680) {
		t.Errorf("price = %v, want 1680", q.Price)
	}
	if !closeEnough(q.PrevClose, 1598) {
		t.Errorf("prev close = %v, want 1598", q.PrevClose)
	}
	wantChange := (1680.0 - 1598.0) / 1598.0 * 100
	if !closeEnough(q.ChangePct, wantChange) {
		t.Errorf("change pct = %v, want %v", q.ChangePct, wantChange)
	}
	if !closeEnough(q.Volume, 32000) {
		t.Errorf("volume = %v, want 32000", q.Volume)
	}
	if !closeEnough(q.Turnover, 52000000) {
		t.Errorf("turnover = %v, want 52000000", q.Turnover)
	}
}

func TestParseSinaLineRejects(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"no assignment", "var hq_str_sh600519;"},
		{"empty payload", `var hq_str_sh600000="";`},
		{"too few fields", `var hq_str_sh600000="名字,1.0,2.0";`},
		{"zero price", `var hq_str_sh688000="停牌股,0.00,10.00,0.00,0.00";`},
	}
	for _, tc := range cases {
		if _, ok := parseSinaLine("600000", tc.line); ok {
			t.Errorf("%s: parsed, want rejection", tc.name)
		}
	}
}

func TestParseTencentLine(t *testing.T) {
	fields := make([]string, 40)
	for i := range fields {
		fields[i] = "0"
	}
	fields[1] = "五粮液"
	fields[2] = "000858"
	fields[3] = "150.00"
	fields[4] = "148.00"
	fields[6] = "1200" // hands
	fields[37] = "1800" // 万元
	line := `v_sz000858="` + strings.Join(fields, "~") + `";`

	q, ok := parseTencentLine("000858", line)
	if !ok {
		t.Fatal("line should parse")
	}
	if q.Name != "五粮液" {
		t.Errorf("name = %q", q.Name)
	}
	if !closeEnough(q.Price, 150) {
		t.Errorf("price = %v, want 150", q.Price)
	}
	if !closeEnough(q.PrevClose, 148) {
		t.Errorf("prev close = %v, want 148", q.PrevClose)
	}
	if !closeEnough(q.Volume, 120000) {
		t.Errorf("volume = %v, want 120000 shares", q.Volume)
	}
	if !closeEnough(q.Turnover, 18000000) {
		t.Errorf("turnover = %v, want 18000000 CNY", q.Turnover)
	}
}

func TestParseTencentLineShortPayload(t *testing.T) {
	// Five fields is the minimum; volume and turnover stay zero when
	// the payload stops early.
	line := `v_sh600036="51~招商银行~600036~35.50~35.00";`
	q, ok := parseTencentLine("600036", line)
	if !ok {
		t.Fatal("line should parse")
	}
	if !closeEnough(q.Price, 35.5) {
		t.Errorf("price = %v, want 35.5", q.Price)
	}
	if q.Volume != 0 || q.Turnover != 0 {
		t.Errorf("volume/turnover = %v/%v, want zero", q.Volume, q.Turnover)
	}
}

func TestParseTencentLineRejects(t *testing.T) {
	if _, ok := parseTencentLine("600000", "v_sh600000=pv_none_match"); ok {
		t.Error("non-quote payload should be rejected")
	}
	if _, ok := parseTencentLine("600000", `v_sh600000="1~a~b~0.00~10.00";`); ok {
		t.Error("zero price should be rejected")
	}
}

func TestParseField(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1680.00", 1680},
		{" 12.5 ", 12.5},
		{"", 0},
		{"n/a", 0},
	}
	for _, tc := range cases {
		if got := parseField(tc.in); got != tc.want {
			t.Errorf("parseField(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("600519"); got != "贵州茅台" {
		t.Errorf("DisplayName(600519) = %q", got)
	}
	if got := DisplayName("999999"); got != "999999" {
		t.Errorf("unknown symbol should echo back, got %q", got)
	}
}
