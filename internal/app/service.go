// Package app wires the simulation core to its collaborators: the bar
// provider that supplies history, the repository that stores results, and
// the logger. The engine stays pure; everything stateful happens here.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SCPrime/PaiiD-sub000/internal/domain"
	"github.com/SCPrime/PaiiD-sub000/internal/ports"
	"github.com/SCPrime/PaiiD-sub000/internal/strategy/backtesting"
)

// Service orchestrates backtest runs end to end.
type Service struct {
	provider ports.BarProvider
	repo     ports.ResultRepository
	logger   ports.Logger
	engine   []backtesting.Option
}

// Config holds the service dependencies. Provider and Repo are optional:
// a nil provider restricts the service to RunBars, a nil repo skips
// persistence.
type Config struct {
	Provider ports.BarProvider
	Repo     ports.ResultRepository
	Logger   ports.Logger
	// AnnualizationDays overrides the Sharpe annualization constant when
	// positive.
	AnnualizationDays float64
}

// New creates the run service.
func New(cfg Config) (*Service, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for backtest service")
	}
	s := &Service{
		provider: cfg.Provider,
		repo:     cfg.Repo,
		logger:   cfg.Logger,
	}
	if cfg.AnnualizationDays > 0 {
		s.engine = append(s.engine, backtesting.WithAnnualization(cfg.AnnualizationDays))
	}
	return s, nil
}

// RunBars executes one backtest over an already-loaded bar sequence,
// stamps the result with its run ID, and persists it when a repository is
// configured. The provider-level sanity floor is enforced here, before the
// engine sees the sequence.
func (s *Service) RunBars(ctx context.Context, bars []*domain.Bar, rules domain.StrategyRules, initialCapital float64) (*domain.BacktestResult, error) {
	if len(bars) < ports.MinProviderBars {
		return nil, fmt.Errorf("%w: have %d bars, provider floor is %d",
			ports.ErrInsufficientData, len(bars), ports.MinProviderBars)
	}

	started := time.Now()
	res, err := backtesting.Run(bars, rules, initialCapital, s.engine...)
	if err != nil {
		s.logger.Error(ctx, err, "Backtest run failed", map[string]interface{}{"bars": len(bars)})
		return nil, err
	}

	res.RunID = uuid.New().String()
	res.CreatedAt = time.Now().UTC()

	s.logger.Info(ctx, "Backtest run completed", map[string]interface{}{
		"runID":        res.RunID,
		"symbol":       res.Symbol,
		"bars":         len(bars),
		"trades":       res.TotalTrades,
		"finalCapital": res.FinalCapital,
		"elapsed":      time.Since(started),
	})

	if s.repo != nil {
		if err := s.repo.Save(ctx, res); err != nil {
			return nil, fmt.Errorf("saving run %s: %w", res.RunID, err)
		}
	}
	return res, nil
}

// RunRange fetches history from the configured provider and executes one
// backtest over it.
func (s *Service) RunRange(ctx context.Context, symbol, interval string, start, end time.Time, rules domain.StrategyRules, initialCapital float64) (*domain.BacktestResult, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("%w: no bar provider configured", ports.ErrConfigurationError)
	}

	bars, err := s.provider.GetBars(ctx, symbol, interval, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetching bars for %s: %w", symbol, err)
	}
	s.logger.Info(ctx, "Fetched bar history", map[string]interface{}{
		"symbol":   symbol,
		"interval": interval,
		"count":    len(bars),
	})

	return s.RunBars(ctx, bars, rules, initialCapital)
}
