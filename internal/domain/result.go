package domain

import "time"

// EquityPoint is one mark-to-market observation on the equity curve:
// cash plus the value of all open positions at the bar's close.
type EquityPoint struct {
	Date            time.Time
	Value           float64
	Drawdown        float64 // Distance below the highest equity seen so far
	DrawdownPercent float64 // Drawdown relative to that peak
}

// BacktestResult is the sole artifact of a completed run. It is immutable
// after creation and safe to serialize directly: every numeric field is
// finite (the profit factor cap stands in for infinity).
type BacktestResult struct {
	RunID     string    // Assigned by the run service before persistence
	Symbol    string    // Symbol the run was executed against
	StartDate time.Time // Date of the first bar
	EndDate   time.Time // Date of the last bar

	InitialCapital          float64
	FinalCapital            float64
	TotalReturn             float64
	TotalReturnPercent      float64
	AnnualizedReturnPercent float64
	SharpeRatio             float64
	MaxDrawdown             float64
	MaxDrawdownPercent      float64

	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64 // Percent of closed trades with positive PNL
	AverageWin    float64
	AverageLoss   float64
	ProfitFactor  float64

	EquityCurve  []EquityPoint // One point per processed bar
	TradeHistory []*Trade      // All trades, closed, in entry order

	CreatedAt time.Time // Assigned by the run service before persistence
}
