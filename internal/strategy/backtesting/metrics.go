package backtesting

import (
	"math"
	"time"

	"github.com/SCPrime/PaiiD-sub000/internal/domain"
)

const (
	// TradingDaysPerYear annualizes bar-to-bar Sharpe regardless of the
	// bar interval actually used. Override per run with WithAnnualization.
	TradingDaysPerYear = 252.0

	// ProfitFactorCap stands in for an infinite profit factor (wins with
	// zero losses) so the result stays serializable without Inf.
	ProfitFactorCap = 999.99
)

// summarize computes the final metrics from the finished equity curve and
// closed trade list. Numeric edge cases (zero volatility, no losses, zero
// duration) resolve to documented defaults; none of them is an error.
func summarize(res *domain.BacktestResult, annualization float64) {
	curve := res.EquityCurve
	res.FinalCapital = curve[len(curve)-1].Value
	res.TotalReturn = res.FinalCapital - res.InitialCapital
	res.TotalReturnPercent = res.TotalReturn / res.InitialCapital * 100
	res.AnnualizedReturnPercent = annualizedReturn(res.InitialCapital, res.FinalCapital, res.StartDate, res.EndDate)

	var totalWins, totalLosses float64
	for _, t := range res.TradeHistory {
		if t.PNL > 0 {
			res.WinningTrades++
			totalWins += t.PNL
		} else if t.PNL < 0 {
			res.LosingTrades++
			totalLosses += -t.PNL
		}
	}
	res.TotalTrades = len(res.TradeHistory)
	if res.TotalTrades > 0 {
		res.WinRate = float64(res.WinningTrades) / float64(res.TotalTrades) * 100
	}
	if res.WinningTrades > 0 {
		res.AverageWin = totalWins / float64(res.WinningTrades)
	}
	if res.LosingTrades > 0 {
		res.AverageLoss = -totalLosses / float64(res.LosingTrades)
	}
	switch {
	case totalLosses > 0:
		res.ProfitFactor = totalWins / totalLosses
	case totalWins > 0:
		res.ProfitFactor = ProfitFactorCap
	default:
		res.ProfitFactor = 0
	}

	for _, p := range curve {
		if p.Drawdown > res.MaxDrawdown {
			res.MaxDrawdown = p.Drawdown
		}
		if p.DrawdownPercent > res.MaxDrawdownPercent {
			res.MaxDrawdownPercent = p.DrawdownPercent
		}
	}

	res.SharpeRatio = sharpeRatio(curve, annualization)
}

// annualizedReturn converts the total return into a compound annual rate.
// Runs shorter than one day are treated as one day.
func annualizedReturn(initial, final float64, start, end time.Time) float64 {
	days := end.Sub(start).Hours() / 24
	if days < 1 {
		days = 1
	}
	years := days / 365.0
	return (math.Pow(final/initial, 1/years) - 1) * 100
}

// sharpeRatio computes the annualized Sharpe ratio over bar-to-bar simple
// returns of the equity curve, with population standard deviation. Zero
// volatility yields 0, not an error.
func sharpeRatio(curve []domain.EquityPoint, annualization float64) float64 {
	returns := make([]float64, 0, len(curve))
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Value
		if prev == 0 {
			continue
		}
		returns = append(returns, (curve[i].Value-prev)/prev)
	}
	if len(returns) == 0 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))
	std := math.Sqrt(variance)

	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(annualization)
}
