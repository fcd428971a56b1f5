package indicators

// SMA computes the arithmetic mean of the last period prices.
// ok is false while fewer than period prices are available, in which case
// the indicator is undefined and any condition built on it cannot match.
func SMA(prices []float64, period int) (value float64, ok bool) {
	if period <= 0 || len(prices) < period {
		return 0, false
	}
	total := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		total += prices[i]
	}
	return total / float64(period), true
}
