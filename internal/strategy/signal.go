package strategy

import (
	"fmt"

	"github.com/SCPrime/PaiiD-sub000/internal/domain"
	"github.com/SCPrime/PaiiD-sub000/internal/ports"
	"github.com/SCPrime/PaiiD-sub000/internal/strategy/indicators"
)

// CheckEntry evaluates the entry conditions against the price history.
// closes must include the current bar's close as its last element. All
// conditions are AND-combined and a failing condition short-circuits; an
// empty condition set never enters. Unknown indicator or operator names are
// a hard error, not a silent false: rule sets are validated at
// construction, so hitting one here means a defect upstream.
func CheckEntry(conditions []domain.Condition, closes []float64, currentPrice float64, rsiPeriod int) (bool, error) {
	if len(conditions) == 0 {
		return false, nil
	}

	for _, c := range conditions {
		var value float64
		switch c.Indicator {
		case domain.IndicatorRSI:
			value = indicators.RSI(closes, rsiPeriod)
		case domain.IndicatorSMA:
			v, ok := indicators.SMA(closes, c.Period)
			if !ok {
				// Indicator undefined during warm-up: the condition
				// cannot match yet.
				return false, nil
			}
			value = v
		case domain.IndicatorPrice:
			value = currentPrice
		default:
			return false, fmt.Errorf("%w: unknown indicator %q", ports.ErrInvalidRules, c.Indicator)
		}

		match, err := compare(value, c.Op, c.Value)
		if err != nil {
			return false, err
		}
		if !match {
			return false, nil
		}
	}
	return true, nil
}

func compare(value float64, op domain.Operator, target float64) (bool, error) {
	switch op {
	case domain.OpLess:
		return value < target, nil
	case domain.OpGreater:
		return value > target, nil
	case domain.OpEqual:
		return value == target, nil
	default:
		return false, fmt.Errorf("%w: unknown operator %q", ports.ErrInvalidRules, op)
	}
}

// CheckExit evaluates the exit rules for an open trade at the current
// price. Rules fire in order, first match wins. The PNL percent is
// long-only: it is not direction-adjusted, which is fine as the ledger
// never opens shorts.
func CheckExit(trade *domain.Trade, currentPrice float64, exitRules []domain.ExitRule) (bool, domain.CloseReason) {
	pnlPercent := (currentPrice - trade.EntryPrice) / trade.EntryPrice * 100

	for _, rule := range exitRules {
		switch rule.Kind {
		case domain.ExitTakeProfit:
			if pnlPercent >= rule.Percent {
				return true, domain.CloseReasonTakeProfit
			}
		case domain.ExitStopLoss:
			if pnlPercent <= -rule.Percent {
				return true, domain.CloseReasonStopLoss
			}
		case domain.ExitTrailingStop:
			// Static threshold against the entry price, same trigger as a
			// stop loss. No per-trade peak price is tracked.
			if pnlPercent <= -rule.Percent {
				return true, domain.CloseReasonTrailingStop
			}
		}
	}
	return false, ""
}
