package backtesting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SCPrime/PaiiD-sub000/internal/domain"
	"github.com/SCPrime/PaiiD-sub000/internal/ports"
)

func TestLedgerOpenAndClose(t *testing.T) {
	led := newLedger(10000)
	rules := domain.StrategyRules{PositionSizePercent: 100, MaxPositions: 1}
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, led.tryOpen("ETHUSDT", day, 100, rules))
	require.Len(t, led.open, 1)

	trade := led.open[0]
	assert.Equal(t, int64(100), trade.Quantity)
	assert.True(t, trade.IsOpen())
	assert.True(t, led.capital.IsZero())

	require.NoError(t, led.closeTrade(trade, day.AddDate(0, 0, 3), 105, domain.CloseReasonTakeProfit))
	assert.Empty(t, led.open)
	require.Len(t, led.closed, 1)
	assert.False(t, trade.IsOpen())
	assert.Equal(t, domain.StatusClosed, trade.Status)
	assert.InDelta(t, 500.0, trade.PNL, 1e-9)
	assert.InDelta(t, 5.0, trade.PNLPercent, 1e-9)
	assert.InDelta(t, 10500.0, led.capital.InexactFloat64(), 1e-9)
}

func TestLedgerFloorsFractionalQuantity(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rules := domain.StrategyRules{PositionSizePercent: 100, MaxPositions: 1}

	tests := []struct {
		name        string
		capital     float64
		price       float64
		wantQty     int64
		wantCapital float64
	}{
		{name: "terminating quotient", capital: 10000, price: 333, wantQty: 30, wantCapital: 10},
		{name: "repeating quotient", capital: 10000, price: 3, wantQty: 3333, wantCapital: 1},
		{name: "exact quotient", capital: 10000, price: 100, wantQty: 100, wantCapital: 0},
		{name: "below one unit", capital: 99, price: 100, wantQty: 0, wantCapital: 99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			led := newLedger(tt.capital)
			require.NoError(t, led.tryOpen("ETHUSDT", day, tt.price, rules))
			if tt.wantQty == 0 {
				assert.Empty(t, led.open)
			} else {
				require.Len(t, led.open, 1)
				assert.Equal(t, tt.wantQty, led.open[0].Quantity)
			}
			assert.InDelta(t, tt.wantCapital, led.capital.InexactFloat64(), 1e-9)
		})
	}
}

func TestLedgerDoubleCloseIsInvariantViolation(t *testing.T) {
	led := newLedger(10000)
	rules := domain.StrategyRules{PositionSizePercent: 100, MaxPositions: 1}
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, led.tryOpen("ETHUSDT", day, 100, rules))
	trade := led.open[0]
	require.NoError(t, led.closeTrade(trade, day.AddDate(0, 0, 1), 101, domain.CloseReasonTakeProfit))

	err := led.closeTrade(trade, day.AddDate(0, 0, 2), 102, domain.CloseReasonTakeProfit)
	require.ErrorIs(t, err, ports.ErrInvariantViolation)
	// The failed close must not have credited capital again.
	assert.InDelta(t, 10100.0, led.capital.InexactFloat64(), 1e-9)
}

func TestLedgerRespectsCapacityAndFunds(t *testing.T) {
	led := newLedger(10000)
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	// Capacity reached: a second open is a silent no-op.
	rules := domain.StrategyRules{PositionSizePercent: 50, MaxPositions: 1}
	require.NoError(t, led.tryOpen("ETHUSDT", day, 100, rules))
	require.NoError(t, led.tryOpen("ETHUSDT", day.AddDate(0, 0, 1), 100, rules))
	assert.Len(t, led.open, 1)

	// Sizing that cannot afford one whole unit opens nothing.
	small := newLedger(30)
	require.NoError(t, small.tryOpen("ETHUSDT", day, 100, domain.StrategyRules{PositionSizePercent: 100, MaxPositions: 1}))
	assert.Empty(t, small.open)
	assert.InDelta(t, 30.0, small.capital.InexactFloat64(), 1e-9)
}
