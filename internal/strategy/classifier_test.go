package strategy

import (
	"math"
	"testing"
	"time"

	"ashare-trader/internal/config"
	"ashare-trader/internal/models"
)

func defaultRisk() config.RiskConfig {
	return config.RiskConfig{
		PullbackTolerance:      0.01,
		RSIBuyLow:              30,
		RSINeutralLow:          45,
		RSINeutralHigh:         60,
		RSISellHigh:            70,
		PositionLimitPct:       0.30,
		StopLossPct:            0.05,
		TakeProfitBreakout:     1.10,
		TakeProfitPullback:     1.08,
		TakeProfitContinuation: 1.06,
		StopOffsetBreakout:     0.05,
		StopOffsetPullback:     0.04,
		StopOffsetContinuation: 0.03,
	}
}

func snapshot(price, ma5, ma10, ma20, rsi, macd float64) models.Snapshot {
	return models.Snapshot{
		Symbol:    "600519",
		Price:     price,
		MA5:       ma5,
		MA10:      ma10,
		MA20:      ma20,
		RSI14:     rsi,
		MACD:      macd,
		Timestamp: time.Now(),
	}
}

func TestClassifyNoPosition(t *testing.T) {
	c := NewClassifier(defaultRisk())

	tests := []struct {
		name string
		snap models.Snapshot
		want models.Signal
	}{
		{
			name: "breakout: aligned MAs, price above MA5, positive MACD",
			snap: snapshot(110, 105, 100, 95, 55, 1.5),
			want: models.SignalBuyBreakout,
		},
		{
			name: "oversold rebound: RSI at buy threshold, MACD non-negative",
			snap: snapshot(90, 95, 100, 105, 30, 0),
			want: models.SignalBuyBreakout,
		},
		{
			name: "pullback: aligned MAs, price within tolerance of MA10",
			snap: snapshot(100.5, 101, 100, 99, 52, -0.2),
			want: models.SignalBuyPullback,
		},
		{
			name: "continuation: near MA10, neutral RSI, MA5 >= MA10, MA10 < MA20",
			snap: snapshot(100.5, 100, 100, 102, 50, -0.2),
			want: models.SignalBuyContinuation,
		},
		{
			name: "no conditions met",
			snap: snapshot(90, 95, 100, 105, 50, -1),
			want: models.SignalHold,
		},
		{
			name: "oversold but negative MACD holds",
			snap: snapshot(90, 95, 100, 105, 25, -0.5),
			want: models.SignalHold,
		},
		{
			name: "near MA10 but RSI above neutral band holds",
			snap: snapshot(100.5, 100, 100, 102, 65, -0.2),
			want: models.SignalHold,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.snap, false, 0)
			if got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyHolding(t *testing.T) {
	c := NewClassifier(defaultRisk())

	tests := []struct {
		name  string
		snap  models.Snapshot
		entry float64
		want  models.Signal
	}{
		{
			name:  "trend break: below MA20 with negative MACD",
			snap:  snapshot(94, 96, 98, 95, 50, -0.5),
			entry: 95,
			want:  models.SignalSellTrendBreak,
		},
		{
			name:  "overheat: RSI above sell threshold, price below MA5",
			snap:  snapshot(104, 105, 100, 95, 75, 1),
			entry: 95,
			want:  models.SignalSellOverheat,
		},
		{
			name:  "stop loss at exactly 5 percent down",
			snap:  snapshot(95, 100, 101, 90, 50, 0.5),
			entry: 100,
			want:  models.SignalSellStopLoss,
		},
		{
			name:  "above stop, no sell condition",
			snap:  snapshot(96, 100, 101, 90, 50, 0.5),
			entry: 100,
			want:  models.SignalHold,
		},
		{
			name:  "trend break outranks stop loss",
			snap:  snapshot(80, 96, 98, 95, 50, -0.5),
			entry: 100,
			want:  models.SignalSellTrendBreak,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.snap, true, tt.entry)
			if got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

// When breakout and pullback conditions hold simultaneously, breakout
// wins on priority.
func TestClassifyBreakoutPriority(t *testing.T) {
	c := NewClassifier(defaultRisk())

	// Aligned MAs, price above MA5 and within tolerance of MA10,
	// positive MACD, neutral RSI: both class 3 and class 1 fire.
	snap := snapshot(100.9, 100.5, 100.1, 99.5, 50, 0.5)

	if got := c.Classify(snap, false, 0); got != models.SignalBuyBreakout {
		t.Errorf("Classify() = %v, want %v", got, models.SignalBuyBreakout)
	}
}

func TestClassifyIndeterminate(t *testing.T) {
	c := NewClassifier(defaultRisk())
	nan := math.NaN()

	snaps := []models.Snapshot{
		models.AbsentSnapshot("600519", "test"),
		snapshot(nan, 105, 100, 95, 55, 1.5),
		snapshot(110, nan, 100, 95, 55, 1.5),
		snapshot(110, 105, nan, 95, 55, 1.5),
		snapshot(110, 105, 100, nan, 55, 1.5),
		snapshot(110, 105, 100, 95, nan, 1.5),
		snapshot(110, 105, 100, 95, 55, nan),
		snapshot(0, 105, 100, 95, 55, 1.5),
		snapshot(-1, 105, 100, 95, 55, 1.5),
		snapshot(110, 105, 100, 95, 120, 1.5),
	}

	for i, snap := range snaps {
		if got := c.Classify(snap, false, 0); got != models.SignalHold {
			t.Errorf("snapshot %d: Classify() = %v, want HOLD", i, got)
		}
		if got := c.Classify(snap, true, 100); got != models.SignalHold {
			t.Errorf("snapshot %d (holding): Classify() = %v, want HOLD", i, got)
		}
	}
}

func TestTargets(t *testing.T) {
	c := NewClassifier(defaultRisk())

	tp, sl := c.Targets(models.SignalBuyBreakout, 100)
	if tp != 110 || sl != 95 {
		t.Errorf("breakout targets = (%v, %v), want (110, 95)", tp, sl)
	}
	tp, sl = c.Targets(models.SignalBuyPullback, 100)
	if tp != 108 || sl != 96 {
		t.Errorf("pullback targets = (%v, %v), want (108, 96)", tp, sl)
	}
	tp, sl = c.Targets(models.SignalBuyContinuation, 100)
	if tp != 106 || sl != 97 {
		t.Errorf("continuation targets = (%v, %v), want (106, 97)", tp, sl)
	}
	tp, sl = c.Targets(models.SignalHold, 100)
	if tp != 0 || sl != 0 {
		t.Errorf("hold targets = (%v, %v), want zeros", tp, sl)
	}
}
