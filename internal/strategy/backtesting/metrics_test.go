package backtesting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/SCPrime/PaiiD-sub000/internal/domain"
)

func curveFromValues(start time.Time, values ...float64) []domain.EquityPoint {
	points := make([]domain.EquityPoint, len(values))
	peak := 0.0
	for i, v := range values {
		if v > peak {
			peak = v
		}
		points[i] = domain.EquityPoint{
			Date:            start.AddDate(0, 0, i),
			Value:           v,
			Drawdown:        peak - v,
			DrawdownPercent: (peak - v) / peak * 100,
		}
	}
	return points
}

func TestSummarizeProfitFactorSentinel(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		pnls     []float64
		expected float64
	}{
		{
			name:     "winners only hit the cap",
			pnls:     []float64{50, 30},
			expected: ProfitFactorCap,
		},
		{
			name:     "no trades at all",
			pnls:     nil,
			expected: 0,
		},
		{
			name:     "losers only",
			pnls:     []float64{-20, -10},
			expected: 0,
		},
		{
			name:     "mixed trades use the ratio",
			pnls:     []float64{100, -50},
			expected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trades := make([]*domain.Trade, len(tt.pnls))
			for i, pnl := range tt.pnls {
				trades[i] = &domain.Trade{PNL: pnl, Status: domain.StatusClosed}
			}
			res := &domain.BacktestResult{
				InitialCapital: 10000,
				StartDate:      start,
				EndDate:        start.AddDate(0, 0, 30),
				EquityCurve:    curveFromValues(start, 10000, 10000),
				TradeHistory:   trades,
			}
			summarize(res, TradingDaysPerYear)
			assert.InDelta(t, tt.expected, res.ProfitFactor, 1e-9)
		})
	}
}

func TestSummarizeTradeStats(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	res := &domain.BacktestResult{
		InitialCapital: 10000,
		StartDate:      start,
		EndDate:        start.AddDate(1, 0, 0),
		EquityCurve:    curveFromValues(start, 10000, 10200, 10150, 10400),
		TradeHistory: []*domain.Trade{
			{PNL: 200, Status: domain.StatusClosed},
			{PNL: -50, Status: domain.StatusClosed},
			{PNL: 250, Status: domain.StatusClosed},
		},
	}
	summarize(res, TradingDaysPerYear)

	assert.Equal(t, 3, res.TotalTrades)
	assert.Equal(t, 2, res.WinningTrades)
	assert.Equal(t, 1, res.LosingTrades)
	assert.InDelta(t, 200.0/3, res.WinRate, 1e-9)
	assert.InDelta(t, 225.0, res.AverageWin, 1e-9)
	assert.InDelta(t, -50.0, res.AverageLoss, 1e-9)
	assert.InDelta(t, 9.0, res.ProfitFactor, 1e-9)
	assert.InDelta(t, 10400.0, res.FinalCapital, 1e-9)
	assert.InDelta(t, 400.0, res.TotalReturn, 1e-9)
	assert.InDelta(t, 4.0, res.TotalReturnPercent, 1e-9)
	assert.InDelta(t, 50.0, res.MaxDrawdown, 1e-9)
	assert.Greater(t, res.SharpeRatio, 0.0)
}

func TestSummarizeZeroVolatilitySharpeIsZero(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	res := &domain.BacktestResult{
		InitialCapital: 10000,
		StartDate:      start,
		EndDate:        start.AddDate(0, 0, 3),
		EquityCurve:    curveFromValues(start, 10000, 10000, 10000, 10000),
	}
	summarize(res, TradingDaysPerYear)
	assert.Equal(t, 0.0, res.SharpeRatio)
}

func TestAnnualizedReturn(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// A full year maps the total return directly.
	oneYear := annualizedReturn(10000, 11000, start, start.AddDate(0, 0, 365))
	assert.InDelta(t, 10.0, oneYear, 1e-6)

	// Sub-day runs clamp to one day instead of exploding.
	sameDay := annualizedReturn(10000, 10010, start, start)
	oneDay := annualizedReturn(10000, 10010, start, start.AddDate(0, 0, 1))
	assert.InDelta(t, oneDay, sameDay, 1e-9)
	assert.Greater(t, sameDay, 0.0)
}
