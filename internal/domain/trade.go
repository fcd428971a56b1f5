package domain

import "time"

// Trade represents a single long position across its lifecycle.
// A trade is created open by the ledger when an entry signal fires and
// transitions to closed exactly once, either when an exit rule matches or
// when the run finalizes.
type Trade struct {
	ID          int64       // Assigned by the repository on save (0 before)
	Symbol      string      // Trading symbol (e.g., "ETHUSDT")
	EntryDate   time.Time   // Bar date the position was opened on
	ExitDate    time.Time   // Bar date the position was closed on (zero while open)
	EntryPrice  float64     // Close price of the entry bar
	ExitPrice   float64     // Close price of the exit bar (0 while open)
	Quantity    int64       // Whole units held; always >= 1
	Side        TradeSide   // Always SideLong
	PNL         float64     // (exit - entry) * quantity, set on close
	PNLPercent  float64     // PNL relative to entry price, set on close
	Status      TradeStatus // open or closed
	CloseReason CloseReason // Which rule closed the trade (empty while open)
}

// IsOpen reports whether the trade is still open.
func (t *Trade) IsOpen() bool {
	return t.Status == StatusOpen
}
