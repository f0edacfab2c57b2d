package market

import (
	"math"
	"testing"
)

func closeEnough(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func ascending(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

func TestComputeIndicatorsAscendingSeries(t *testing.T) {
	// Closes 1..20: every average is exact and every change positive.
	ind, ok := ComputeIndicators(ascending(20))
	if !ok {
		t.Fatal("twenty closes should be enough")
	}

	if !closeEnough(ind.SMA5, 18) {
		t.Errorf("SMA5 = %v, want 18", ind.SMA5)
	}
	if !closeEnough(ind.SMA10, 15.5) {
		t.Errorf("SMA10 = %v, want 15.5", ind.SMA10)
	}
	if !closeEnough(ind.SMA20, 10.5) {
		t.Errorf("SMA20 = %v, want 10.5", ind.SMA20)
	}
	// Fourteen consecutive gains, zero losses.
	if !closeEnough(ind.RSI14, 100) {
		t.Errorf("RSI14 = %v, want 100", ind.RSI14)
	}
	// EMA12 settles at close-5.5 on a unit-step series (14.5); the
	// 26-period EMA falls back to the plain mean (10.5).
	if !closeEnough(ind.MACD, 4.0) {
		t.Errorf("MACD = %v, want 4.0", ind.MACD)
	}
}

func TestComputeIndicatorsShortSeries(t *testing.T) {
	ind, ok := ComputeIndicators([]float64{10, 11, 12, 13, 14})
	if !ok {
		t.Fatal("five closes is the minimum, should be accepted")
	}

	if !closeEnough(ind.SMA5, 12) {
		t.Errorf("SMA5 = %v, want 12", ind.SMA5)
	}
	// Shorter than the period: the latest close stands in.
	if !closeEnough(ind.SMA10, 14) {
		t.Errorf("SMA10 = %v, want 14", ind.SMA10)
	}
	if !closeEnough(ind.SMA20, 14) {
		t.Errorf("SMA20 = %v, want 14", ind.SMA20)
	}
	// Not enough changes for a window: neutral.
	if !closeEnough(ind.RSI14, 50) {
		t.Errorf("RSI14 = %v, want 50", ind.RSI14)
	}
	// Both EMAs degrade to the same mean.
	if !closeEnough(ind.MACD, 0) {
		t.Errorf("MACD = %v, want 0", ind.MACD)
	}
}

func TestComputeIndicatorsTooFewCloses(t *testing.T) {
	for n := 0; n < 5; n++ {
		if _, ok := ComputeIndicators(ascending(n)); ok {
			t.Errorf("ComputeIndicators with %d closes: ok = true, want false", n)
		}
	}
}

func TestRSIDowntrend(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = float64(100 - i)
	}
	ind, ok := ComputeIndicators(closes)
	if !ok {
		t.Fatal("unexpected short-series rejection")
	}
	if !closeEnough(ind.RSI14, 0) {
		t.Errorf("RSI14 on pure downtrend = %v, want 0", ind.RSI14)
	}
}

func TestRSIMixedChanges(t *testing.T) {
	// Seven +2 gains and seven -1 losses in the window:
	// rs = 14/7 = 2, so RSI = 100 - 100/3.
	closes := []float64{100}
	for i := 0; i < 7; i++ {
		last := closes[len(closes)-1]
		closes = append(closes, last+2, last+1)
	}
	ind, ok := ComputeIndicators(closes)
	if !ok {
		t.Fatal("unexpected short-series rejection")
	}
	want := 100 - 100.0/3.0
	if !closeEnough(ind.RSI14, want) {
		t.Errorf("RSI14 = %v, want %v", ind.RSI14, want)
	}
}

func TestRSIFlatSeries(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 50
	}
	ind, _ := ComputeIndicators(closes)
	// No movement either way reads as neutral-to-overbought per the
	// zero-loss rule.
	if !closeEnough(ind.RSI14, 100) {
		t.Errorf("RSI14 on flat series = %v, want 100", ind.RSI14)
	}
	if !closeEnough(ind.MACD, 0) {
		t.Errorf("MACD on flat series = %v, want 0", ind.MACD)
	}
}
