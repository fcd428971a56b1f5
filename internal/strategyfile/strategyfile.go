// Package strategyfile loads strategy definitions from YAML files and maps
// them onto the closed domain rule variants. Unknown indicator names,
// operators or exit kinds fail at load time so a malformed file can never
// reach the engine.
package strategyfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/SCPrime/PaiiD-sub000/internal/domain"
	"github.com/SCPrime/PaiiD-sub000/internal/ports"
)

// File schema:
//
//	entry:
//	  - indicator: RSI
//	    operator: "<"
//	    value: 30
//	  - indicator: SMA
//	    operator: ">"
//	    value: 100
//	    period: 20
//	exit:
//	  - type: take_profit
//	    percent: 5
//	  - type: stop_loss
//	    percent: 3
//	position_size_percent: 100
//	max_positions: 1
//	rsi_period: 14
type fileRules struct {
	Entry               []fileCondition `yaml:"entry"`
	Exit                []fileExitRule  `yaml:"exit"`
	PositionSizePercent float64         `yaml:"position_size_percent"`
	MaxPositions        int             `yaml:"max_positions"`
	RSIPeriod           int             `yaml:"rsi_period"`
}

type fileCondition struct {
	Indicator string  `yaml:"indicator"`
	Operator  string  `yaml:"operator"`
	Value     float64 `yaml:"value"`
	Period    int     `yaml:"period"`
}

type fileExitRule struct {
	Type    string  `yaml:"type"`
	Percent float64 `yaml:"percent"`
}

// Load reads and validates a strategy definition from path.
func Load(path string) (domain.StrategyRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.StrategyRules{}, fmt.Errorf("reading strategy file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a strategy definition from YAML bytes and validates it.
func Parse(data []byte) (domain.StrategyRules, error) {
	var f fileRules
	if err := yaml.Unmarshal(data, &f); err != nil {
		return domain.StrategyRules{}, fmt.Errorf("%w: parsing strategy YAML: %v", ports.ErrInvalidRules, err)
	}

	rules := domain.StrategyRules{
		PositionSizePercent: f.PositionSizePercent,
		MaxPositions:        f.MaxPositions,
		RSIPeriod:           f.RSIPeriod,
	}
	for _, c := range f.Entry {
		rules.Entry = append(rules.Entry, domain.Condition{
			Indicator: domain.IndicatorName(c.Indicator),
			Op:        domain.Operator(c.Operator),
			Value:     c.Value,
			Period:    c.Period,
		})
	}
	for _, e := range f.Exit {
		rules.Exit = append(rules.Exit, domain.ExitRule{
			Kind:    domain.ExitRuleKind(e.Type),
			Percent: e.Percent,
		})
	}

	if err := rules.Validate(); err != nil {
		return domain.StrategyRules{}, fmt.Errorf("%w: %v", ports.ErrInvalidRules, err)
	}
	return rules, nil
}
