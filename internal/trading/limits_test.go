package trading

import (
	"testing"

	"ashare-trader/internal/config"
	"ashare-trader/internal/errors"
)

func limitTestConfig() *config.Config {
	return &config.Config{
		Trading: config.TradingConfig{
			Symbols:           []string{"600519", "600888"},
			RestrictedSymbols: []string{"600888"},
		},
		Fees: defaultFees(),
	}
}

func TestLimitGuard(t *testing.T) {
	guard := NewLimitGuard(limitTestConfig())

	tests := []struct {
		name      string
		symbol    string
		changePct float64
		wantErr   bool
	}{
		{"normal symbol within limit", "600519", 9.99, false},
		{"normal symbol at limit up", "600519", 10.0, true},
		{"normal symbol at limit down", "600519", -10.0, true},
		{"restricted symbol within limit", "600888", 4.9, false},
		{"restricted symbol at limit", "600888", 5.0, true},
		{"restricted symbol would pass normal tier", "600888", 9.0, true},
		{"flat", "600519", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.Check(tt.symbol, tt.changePct)
			if tt.wantErr && !errors.Is(err, errors.ErrPriceLimitReached) {
				t.Errorf("Check() error = %v, want ErrPriceLimitReached", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Check() unexpected error = %v", err)
			}
		})
	}
}
