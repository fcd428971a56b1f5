package backtesting

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SCPrime/PaiiD-sub000/internal/domain"
	"github.com/SCPrime/PaiiD-sub000/internal/ports"
)

// ledger owns the capital and the open/closed trade lists for exactly one
// run. Capital, entry costs and exit proceeds are kept in decimal so long
// bar sequences accumulate no binary rounding drift; ratios stay float64.
type ledger struct {
	capital decimal.Decimal
	open    []*domain.Trade
	closed  []*domain.Trade
}

func newLedger(initialCapital float64) *ledger {
	return &ledger{capital: decimal.NewFromFloat(initialCapital)}
}

// tryOpen opens a new long position at the bar's close if the sizing rules
// allow a quantity of at least one whole unit without overdrawing capital.
// A rejected entry is not an error; the run simply moves to the next bar.
func (l *ledger) tryOpen(symbol string, date time.Time, price float64, rules domain.StrategyRules) error {
	if len(l.open) >= rules.MaxPositions {
		return nil
	}

	px := decimal.NewFromFloat(price)
	if !px.IsPositive() {
		return nil
	}
	positionValue := l.capital.Mul(decimal.NewFromFloat(rules.PositionSizePercent)).Div(decimal.NewFromInt(100))
	quantity := positionValue.Div(px).Floor().IntPart()
	if quantity < 1 {
		return nil
	}
	cost := px.Mul(decimal.NewFromInt(quantity))
	if cost.GreaterThan(l.capital) {
		return nil
	}

	l.capital = l.capital.Sub(cost)
	if l.capital.IsNegative() {
		return fmt.Errorf("%w: capital went negative after entry on %s", ports.ErrInvariantViolation, date.Format("2006-01-02"))
	}

	l.open = append(l.open, &domain.Trade{
		Symbol:     symbol,
		EntryDate:  date,
		EntryPrice: price,
		Quantity:   quantity,
		Side:       domain.SideLong,
		Status:     domain.StatusOpen,
	})
	return nil
}

// closeTrade settles an open trade at the given price: it credits the full
// exit proceeds back to capital, stamps the trade closed and moves it to
// the closed list. Closing a trade twice is a defect, never a recoverable
// condition.
func (l *ledger) closeTrade(t *domain.Trade, date time.Time, price float64, reason domain.CloseReason) error {
	if !t.IsOpen() {
		return fmt.Errorf("%w: trade entered %s is already closed", ports.ErrInvariantViolation, t.EntryDate.Format("2006-01-02"))
	}

	px := decimal.NewFromFloat(price)
	qty := decimal.NewFromInt(t.Quantity)
	proceeds := px.Mul(qty)
	pnl := px.Sub(decimal.NewFromFloat(t.EntryPrice)).Mul(qty)

	l.capital = l.capital.Add(proceeds)

	t.ExitDate = date
	t.ExitPrice = price
	t.PNL = pnl.InexactFloat64()
	t.PNLPercent = (price - t.EntryPrice) / t.EntryPrice * 100
	t.Status = domain.StatusClosed
	t.CloseReason = reason

	for i, candidate := range l.open {
		if candidate == t {
			l.open = append(l.open[:i], l.open[i+1:]...)
			break
		}
	}
	l.closed = append(l.closed, t)
	return nil
}

// openSnapshot returns a copy of the open list so callers can close trades
// while iterating.
func (l *ledger) openSnapshot() []*domain.Trade {
	return append([]*domain.Trade(nil), l.open...)
}
