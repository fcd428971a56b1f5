package domain

import "fmt"

// IndicatorName identifies the indicator an entry condition evaluates.
type IndicatorName string

const (
	IndicatorRSI   IndicatorName = "RSI"
	IndicatorSMA   IndicatorName = "SMA"
	IndicatorPrice IndicatorName = "PRICE"
)

// Operator compares an indicator value against a condition threshold.
type Operator string

const (
	OpLess    Operator = "<"
	OpGreater Operator = ">"
	OpEqual   Operator = "="
)

// Condition is a single entry rule. All conditions in a rule set are
// AND-combined; an empty set never triggers an entry.
type Condition struct {
	Indicator IndicatorName
	Op        Operator
	Value     float64
	Period    int // Lookback window for SMA; RSI uses StrategyRules.RSIPeriod
}

// ExitRuleKind identifies the kind of exit rule.
type ExitRuleKind string

const (
	ExitTakeProfit ExitRuleKind = "take_profit"
	ExitStopLoss   ExitRuleKind = "stop_loss"
	// ExitTrailingStop currently behaves as a static stop loss: no rolling
	// peak price is tracked per trade. Kept for compatibility with stored
	// strategies; a true trailing variant would be a new kind.
	ExitTrailingStop ExitRuleKind = "trailing_stop"
)

// ExitRule closes an open trade when its threshold is crossed. Rules are
// evaluated in order and the first match wins.
type ExitRule struct {
	Kind    ExitRuleKind
	Percent float64
}

// Defaults applied by Validate when the corresponding field is zero.
const (
	DefaultRSIPeriod = 14
	DefaultSMAPeriod = 20
)

// StrategyRules is a complete, self-contained strategy definition for one run.
type StrategyRules struct {
	Entry               []Condition
	Exit                []ExitRule
	PositionSizePercent float64 // Fraction of current capital per entry, (0, 100]
	MaxPositions        int     // Concurrent open position cap, >= 1
	RSIPeriod           int     // Delta window for RSI conditions, >= 2
}

// Validate checks the rule set against the closed variant sets and value
// ranges, applying defaults for zero RSI and SMA periods. A rule set that
// fails validation must reject the whole run before any bar is processed.
func (r *StrategyRules) Validate() error {
	if r.RSIPeriod == 0 {
		r.RSIPeriod = DefaultRSIPeriod
	}
	if r.RSIPeriod < 2 {
		return fmt.Errorf("rsi period must be at least 2, got %d", r.RSIPeriod)
	}
	if r.PositionSizePercent <= 0 || r.PositionSizePercent > 100 {
		return fmt.Errorf("position size percent must be in (0, 100], got %v", r.PositionSizePercent)
	}
	if r.MaxPositions < 1 {
		return fmt.Errorf("max positions must be at least 1, got %d", r.MaxPositions)
	}
	for i := range r.Entry {
		c := &r.Entry[i]
		switch c.Indicator {
		case IndicatorRSI, IndicatorPrice:
		case IndicatorSMA:
			if c.Period == 0 {
				c.Period = DefaultSMAPeriod
			}
			if c.Period < 1 {
				return fmt.Errorf("entry condition %d: SMA period must be positive, got %d", i, c.Period)
			}
		default:
			return fmt.Errorf("entry condition %d: unknown indicator %q", i, c.Indicator)
		}
		switch c.Op {
		case OpLess, OpGreater, OpEqual:
		default:
			return fmt.Errorf("entry condition %d: unknown operator %q", i, c.Op)
		}
	}
	for i, e := range r.Exit {
		switch e.Kind {
		case ExitTakeProfit, ExitStopLoss, ExitTrailingStop:
		default:
			return fmt.Errorf("exit rule %d: unknown kind %q", i, e.Kind)
		}
		if e.Percent <= 0 {
			return fmt.Errorf("exit rule %d: percent must be positive, got %v", i, e.Percent)
		}
	}
	return nil
}

// RequiredBars returns the minimum bar count the rule set needs before the
// first bar can be evaluated with fully warmed-up indicators.
func (r *StrategyRules) RequiredBars() int {
	required := 1
	for _, c := range r.Entry {
		switch c.Indicator {
		case IndicatorRSI:
			// RSI looks one step further back than its delta window.
			if r.RSIPeriod+1 > required {
				required = r.RSIPeriod + 1
			}
		case IndicatorSMA:
			if c.Period > required {
				required = c.Period
			}
		}
	}
	return required
}
