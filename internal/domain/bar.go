package domain

import "time"

// Bar represents a single OHLCV observation for one session.
type Bar struct {
	Date   time.Time // Session date (start of the bar interval)
	Symbol string    // Trading symbol (e.g., "ETHUSDT")
	Open   float64   // Opening price
	High   float64   // Highest price
	Low    float64   // Lowest price
	Close  float64   // Closing price
	Volume float64   // Traded volume
}
