package market

// Indicators holds the derived technical values for one symbol.
type Indicators struct {
	SMA5  float64
	SMA10 float64
	SMA20 float64
	RSI14 float64
	MACD  float64
}

// ComputeIndicators derives moving averages, a 14-period RSI and the
// MACD line (EMA12 minus EMA26) from daily closes, oldest first.
// With fewer than five closes there is not enough signal to work with
// and ok is false.
func ComputeIndicators(closes []float64) (ind Indicators, ok bool) {
	if len(closes) < 5 {
		return Indicators{}, false
	}

	ind.SMA5 = sma(closes, 5)
	ind.SMA10 = sma(closes, 10)
	ind.SMA20 = sma(closes, 20)
	ind.RSI14 = rsi14(closes)
	ind.MACD = ema(closes, 12) - ema(closes, 26)
	return ind, true
}

// sma averages the last period closes, falling back to the latest
// close when the series is shorter than the period.
func sma(closes []float64, period int) float64 {
	if len(closes) < period {
		return closes[len(closes)-1]
	}
	var sum float64
	for _, c := range closes[len(closes)-period:] {
		sum += c
	}
	return sum / float64(period)
}

// rsi14 computes a simple-average RSI over the last 14 changes.
// Series too short for a full window read as neutral.
func rsi14(closes []float64) float64 {
	if len(closes) < 14 {
		return 50
	}

	var gains, losses float64
	changes := 0
	for i := len(closes) - 14; i < len(closes); i++ {
		if i == 0 {
			continue
		}
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
		changes++
	}
	if changes == 0 {
		return 50
	}

	avgGain := gains / float64(changes)
	avgLoss := losses / float64(changes)
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// ema seeds with the SMA of the first period closes and folds the rest
// in with the standard 2/(period+1) multiplier.
func ema(closes []float64, period int) float64 {
	if len(closes) < period {
		var sum float64
		for _, c := range closes {
			sum += c
		}
		return sum / float64(len(closes))
	}

	var seed float64
	for _, c := range closes[:period] {
		seed += c
	}
	value := seed / float64(period)

	multiplier := 2.0 / float64(period+1)
	for _, c := range closes[period:] {
		value = (c-value)*multiplier + value
	}
	return value
}
