package backtesting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SCPrime/PaiiD-sub000/internal/domain"
	"github.com/SCPrime/PaiiD-sub000/internal/ports"
)

// dailyBars builds an ascending daily bar sequence from close prices.
func dailyBars(closes ...float64) []*domain.Bar {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]*domain.Bar, len(closes))
	for i, c := range closes {
		bars[i] = &domain.Bar{
			Date:   base.AddDate(0, 0, i),
			Symbol: "ETHUSDT",
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func alwaysEnter() []domain.Condition {
	return []domain.Condition{{Indicator: domain.IndicatorPrice, Op: domain.OpGreater, Value: 0}}
}

func TestRunConcreteScenario(t *testing.T) {
	bars := dailyBars(100, 101, 103, 105, 104, 106)
	rules := domain.StrategyRules{
		Entry:               alwaysEnter(),
		Exit:                []domain.ExitRule{{Kind: domain.ExitTakeProfit, Percent: 5}},
		PositionSizePercent: 100,
		MaxPositions:        1,
	}

	res, err := Run(bars, rules, 10000)
	require.NoError(t, err)

	assert.Equal(t, 2, res.TotalTrades)
	assert.InDelta(t, 10600.0, res.FinalCapital, 1e-9)
	assert.InDelta(t, 100.0, res.WinRate, 1e-9)
	assert.InDelta(t, 600.0, res.TotalReturn, 1e-9)
	require.Len(t, res.EquityCurve, len(bars))

	// First trade: 100 units at 100, take profit on the 105 bar.
	first := res.TradeHistory[0]
	assert.Equal(t, int64(100), first.Quantity)
	assert.InDelta(t, 100.0, first.EntryPrice, 1e-9)
	assert.InDelta(t, 105.0, first.ExitPrice, 1e-9)
	assert.InDelta(t, 500.0, first.PNL, 1e-9)
	assert.Equal(t, domain.CloseReasonTakeProfit, first.CloseReason)

	// Second trade: re-entered on the same bar the first one exited,
	// force-closed on the final bar.
	second := res.TradeHistory[1]
	assert.Equal(t, int64(100), second.Quantity)
	assert.InDelta(t, 105.0, second.EntryPrice, 1e-9)
	assert.InDelta(t, 106.0, second.ExitPrice, 1e-9)
	assert.InDelta(t, 100.0, second.PNL, 1e-9)
	assert.Equal(t, domain.CloseReasonEndOfData, second.CloseReason)
	assert.Equal(t, bars[3].Date, second.EntryDate)

	// Spot-check the equity curve at the drawdown bar.
	assert.InDelta(t, 10400.0, res.EquityCurve[4].Value, 1e-9)
	assert.InDelta(t, 100.0, res.EquityCurve[4].Drawdown, 1e-9)
	assert.InDelta(t, 100.0, res.MaxDrawdown, 1e-9)
	assert.InDelta(t, ProfitFactorCap, res.ProfitFactor, 1e-9)
}

func TestRunEmptyEntryRulesIsNoOp(t *testing.T) {
	bars := dailyBars(100, 101, 103, 105, 104, 106)
	rules := domain.StrategyRules{
		PositionSizePercent: 100,
		MaxPositions:        1,
	}

	res, err := Run(bars, rules, 10000)
	require.NoError(t, err)

	assert.Equal(t, 0, res.TotalTrades)
	assert.Equal(t, 10000.0, res.FinalCapital)
	assert.Equal(t, 0.0, res.TotalReturn)
	assert.Equal(t, 0.0, res.ProfitFactor)
	assert.Equal(t, 0.0, res.SharpeRatio)
	require.Len(t, res.EquityCurve, len(bars))
	for _, p := range res.EquityCurve {
		assert.Equal(t, 10000.0, p.Value)
		assert.Equal(t, 0.0, p.Drawdown)
	}
}

func TestRunCapitalConservation(t *testing.T) {
	// Buy and hold: one entry at half size, no exit rules.
	closes := []float64{100, 104, 98, 103, 110, 95, 101}
	bars := dailyBars(closes...)
	rules := domain.StrategyRules{
		Entry:               alwaysEnter(),
		PositionSizePercent: 50,
		MaxPositions:        1,
	}

	res, err := Run(bars, rules, 10000)
	require.NoError(t, err)
	require.Len(t, res.TradeHistory, 1)

	// qty = floor(5000 / 100) = 50, residual cash = 5000.
	qty := res.TradeHistory[0].Quantity
	assert.Equal(t, int64(50), qty)
	for i, p := range res.EquityCurve {
		expected := 5000 + float64(qty)*closes[i]
		assert.InDelta(t, expected, p.Value, 1e-9, "bar %d", i)
	}
}

func TestRunPeakIsMonotonicAndDrawdownNonNegative(t *testing.T) {
	bars := dailyBars(100, 110, 90, 95, 120, 80, 130, 70, 140)
	rules := domain.StrategyRules{
		Entry:               alwaysEnter(),
		Exit:                []domain.ExitRule{{Kind: domain.ExitStopLoss, Percent: 10}},
		PositionSizePercent: 100,
		MaxPositions:        1,
	}

	res, err := Run(bars, rules, 10000)
	require.NoError(t, err)

	peak := 0.0
	for i, p := range res.EquityCurve {
		if p.Value > peak {
			peak = p.Value
		}
		assert.GreaterOrEqual(t, p.Drawdown, 0.0, "bar %d", i)
		assert.InDelta(t, peak-p.Value, p.Drawdown, 1e-9, "bar %d", i)
	}
}

func TestRunForcesClosureOnFinalBar(t *testing.T) {
	bars := dailyBars(100, 101, 102, 103)
	rules := domain.StrategyRules{
		Entry:               alwaysEnter(),
		PositionSizePercent: 100,
		MaxPositions:        1,
	}

	res, err := Run(bars, rules, 10000)
	require.NoError(t, err)
	require.Len(t, res.TradeHistory, 1)

	trade := res.TradeHistory[0]
	assert.Equal(t, domain.StatusClosed, trade.Status)
	assert.Equal(t, bars[len(bars)-1].Date, trade.ExitDate)
	assert.InDelta(t, 103.0, trade.ExitPrice, 1e-9)
	assert.Equal(t, domain.CloseReasonEndOfData, trade.CloseReason)
}

func TestRunIsDeterministic(t *testing.T) {
	bars := dailyBars(100, 101, 103, 105, 104, 106, 99, 108, 102, 111)
	rules := domain.StrategyRules{
		Entry: alwaysEnter(),
		Exit: []domain.ExitRule{
			{Kind: domain.ExitTakeProfit, Percent: 4},
			{Kind: domain.ExitStopLoss, Percent: 3},
		},
		PositionSizePercent: 100,
		MaxPositions:        1,
	}

	first, err := Run(bars, rules, 10000)
	require.NoError(t, err)
	second, err := Run(bars, rules, 10000)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRunRejectsEntryThatWouldOverdraw(t *testing.T) {
	// Capital buys less than one whole unit, so no trade ever opens.
	bars := dailyBars(100, 101, 102)
	rules := domain.StrategyRules{
		Entry:               alwaysEnter(),
		PositionSizePercent: 100,
		MaxPositions:        1,
	}

	res, err := Run(bars, rules, 50)
	require.NoError(t, err)
	assert.Empty(t, res.TradeHistory)
	assert.Equal(t, 50.0, res.FinalCapital)
}

func TestRunHonorsMaxPositions(t *testing.T) {
	bars := dailyBars(100, 100, 100, 100, 100)
	rules := domain.StrategyRules{
		Entry:               alwaysEnter(),
		PositionSizePercent: 20,
		MaxPositions:        2,
	}

	res, err := Run(bars, rules, 10000)
	require.NoError(t, err)
	// Two positions open on the first two bars, then capacity is full
	// until the forced close.
	require.Len(t, res.TradeHistory, 2)
	assert.Equal(t, bars[0].Date, res.TradeHistory[0].EntryDate)
	assert.Equal(t, bars[1].Date, res.TradeHistory[1].EntryDate)
}

func TestRunValidation(t *testing.T) {
	good := domain.StrategyRules{
		Entry:               alwaysEnter(),
		PositionSizePercent: 100,
		MaxPositions:        1,
	}

	tests := []struct {
		name    string
		bars    []*domain.Bar
		rules   domain.StrategyRules
		capital float64
		wantErr error
	}{
		{
			name:    "empty bars",
			bars:    nil,
			rules:   good,
			capital: 10000,
			wantErr: ports.ErrInsufficientData,
		},
		{
			name: "too few bars for rsi warm-up",
			bars: dailyBars(100, 101, 102, 103, 104),
			rules: domain.StrategyRules{
				Entry:               []domain.Condition{{Indicator: domain.IndicatorRSI, Op: domain.OpLess, Value: 30}},
				PositionSizePercent: 100,
				MaxPositions:        1,
			},
			capital: 10000,
			wantErr: ports.ErrInsufficientData,
		},
		{
			name: "unordered bars",
			bars: func() []*domain.Bar {
				bars := dailyBars(100, 101, 102)
				bars[2].Date = bars[0].Date
				return bars
			}(),
			rules:   good,
			capital: 10000,
			wantErr: ports.ErrUnorderedBars,
		},
		{
			name: "malformed rules",
			bars: dailyBars(100, 101, 102),
			rules: domain.StrategyRules{
				Entry:               alwaysEnter(),
				PositionSizePercent: 100,
				MaxPositions:        0,
			},
			capital: 10000,
			wantErr: ports.ErrInvalidRules,
		},
		{
			name:    "non-positive capital",
			bars:    dailyBars(100, 101, 102),
			rules:   good,
			capital: 0,
			wantErr: ports.ErrInvalidCapital,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(tt.bars, tt.rules, tt.capital)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
