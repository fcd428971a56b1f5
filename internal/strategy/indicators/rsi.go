package indicators

// NeutralRSI is returned while the RSI warm-up window is incomplete.
// The neutral reading deliberately suppresses entry signals until enough
// deltas exist; callers must not treat it as a computed value.
const NeutralRSI = 50.0

// RSI computes a simple average-gain/average-loss Relative Strength Index
// over the last period deltas. No Wilder smoothing is applied: gains and
// losses are plain means over the window. Requires period+1 prices; with
// fewer it returns NeutralRSI. When the window has no losses it returns 100.
func RSI(prices []float64, period int) float64 {
	if period < 1 || len(prices) < period+1 {
		return NeutralRSI
	}

	var gains, losses float64
	for i := len(prices) - period; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
