package backtesting

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/SCPrime/PaiiD-sub000/internal/domain"
)

// equityTracker derives the mark-to-market equity curve from the ledger's
// state, one point per bar. The peak is monotonically non-decreasing, so
// drawdown is never negative.
type equityTracker struct {
	peak   decimal.Decimal
	points []domain.EquityPoint
}

func newEquityTracker(bars int) *equityTracker {
	return &equityTracker{points: make([]domain.EquityPoint, 0, bars)}
}

// record appends one equity point: capital plus the current value of every
// open position at the bar's close.
func (e *equityTracker) record(date time.Time, capital decimal.Decimal, open []*domain.Trade, closePrice float64) {
	px := decimal.NewFromFloat(closePrice)
	openValue := decimal.Zero
	for _, t := range open {
		openValue = openValue.Add(px.Mul(decimal.NewFromInt(t.Quantity)))
	}
	equity := capital.Add(openValue)

	if equity.GreaterThan(e.peak) {
		e.peak = equity
	}
	drawdown := e.peak.Sub(equity)

	ddPercent := 0.0
	if e.peak.IsPositive() {
		ddPercent = drawdown.Div(e.peak).InexactFloat64() * 100
	}

	e.points = append(e.points, domain.EquityPoint{
		Date:            date,
		Value:           equity.InexactFloat64(),
		Drawdown:        drawdown.InexactFloat64(),
		DrawdownPercent: ddPercent,
	})
}
