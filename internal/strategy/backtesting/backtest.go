// Package backtesting implements the deterministic bar-by-bar simulator:
// it replays a strategy rule set against a historical bar sequence,
// maintains the capital/position ledger and equity curve, and derives the
// run's performance summary.
package backtesting

import (
	"fmt"

	"github.com/SCPrime/PaiiD-sub000/internal/domain"
	"github.com/SCPrime/PaiiD-sub000/internal/ports"
	"github.com/SCPrime/PaiiD-sub000/internal/strategy"
)

// Option overrides a run parameter.
type Option func(*options)

type options struct {
	annualization float64
}

// WithAnnualization overrides the trading-day constant used to annualize
// the Sharpe ratio.
func WithAnnualization(days float64) Option {
	return func(o *options) {
		o.annualization = days
	}
}

// Run replays the rule set over the bar sequence and returns the run's
// summary. It is a pure function: every call owns a fresh ledger and
// equity state, so any number of runs may execute concurrently. The loop
// has no suspension points and performs no I/O; callers needing
// cancellation must bound the input instead.
//
// All validation happens before the first bar. A validation failure never
// partially executes the run.
func Run(bars []*domain.Bar, rules domain.StrategyRules, initialCapital float64, opts ...Option) (*domain.BacktestResult, error) {
	o := options{annualization: TradingDaysPerYear}
	for _, opt := range opts {
		opt(&o)
	}

	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrInvalidRules, err)
	}
	if initialCapital <= 0 {
		return nil, fmt.Errorf("%w: got %v", ports.ErrInvalidCapital, initialCapital)
	}
	if err := validateBars(bars, rules); err != nil {
		return nil, err
	}

	led := newLedger(initialCapital)
	eq := newEquityTracker(len(bars))
	closes := make([]float64, 0, len(bars))

	for _, bar := range bars {
		closes = append(closes, bar.Close)

		// Exit pass over a snapshot: closing mutates the open list.
		for _, t := range led.openSnapshot() {
			if hit, reason := strategy.CheckExit(t, bar.Close, rules.Exit); hit {
				if err := led.closeTrade(t, bar.Date, bar.Close, reason); err != nil {
					return nil, err
				}
			}
		}

		// Entry pass, in the same bar, after exits freed capacity.
		if len(led.open) < rules.MaxPositions {
			enter, err := strategy.CheckEntry(rules.Entry, closes, bar.Close, rules.RSIPeriod)
			if err != nil {
				return nil, err
			}
			if enter {
				if err := led.tryOpen(bar.Symbol, bar.Date, bar.Close, rules); err != nil {
					return nil, err
				}
			}
		}

		eq.record(bar.Date, led.capital, led.open, bar.Close)
	}

	// Force-close whatever survived the loop at the final bar's close so
	// the run never ends with unrealized trades.
	last := bars[len(bars)-1]
	for _, t := range led.openSnapshot() {
		if err := led.closeTrade(t, last.Date, last.Close, domain.CloseReasonEndOfData); err != nil {
			return nil, err
		}
	}

	res := &domain.BacktestResult{
		Symbol:         bars[0].Symbol,
		StartDate:      bars[0].Date,
		EndDate:        last.Date,
		InitialCapital: initialCapital,
		EquityCurve:    eq.points,
		TradeHistory:   led.closed,
	}
	summarize(res, o.annualization)
	return res, nil
}

// validateBars rejects empty, unordered, or too-short sequences before any
// state exists.
func validateBars(bars []*domain.Bar, rules domain.StrategyRules) error {
	if len(bars) == 0 {
		return fmt.Errorf("%w: empty bar sequence", ports.ErrInsufficientData)
	}
	if required := rules.RequiredBars(); len(bars) < required {
		return fmt.Errorf("%w: have %d bars, rules need %d", ports.ErrInsufficientData, len(bars), required)
	}
	for i := 1; i < len(bars); i++ {
		if !bars[i].Date.After(bars[i-1].Date) {
			return fmt.Errorf("%w: bar %d (%s) is not after bar %d (%s)",
				ports.ErrUnorderedBars, i, bars[i].Date.Format("2006-01-02"), i-1, bars[i-1].Date.Format("2006-01-02"))
		}
	}
	return nil
}
