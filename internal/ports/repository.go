package ports

import (
	"context"

	"github.com/SCPrime/PaiiD-sub000/internal/domain"
)

// ResultRepository stores and retrieves completed backtest runs.
type ResultRepository interface {
	// Save persists a completed run, including its equity curve and trade
	// history. The result's RunID must already be assigned.
	Save(ctx context.Context, res *domain.BacktestResult) error
	// FindByID retrieves a full run by its ID, equity curve and trades
	// included. Returns nil, nil when no run matches.
	FindByID(ctx context.Context, runID string) (*domain.BacktestResult, error)
	// FindRecent retrieves summaries of the most recent runs, newest first,
	// without equity curves or trade histories.
	FindRecent(ctx context.Context, limit int) ([]*domain.BacktestResult, error)
}
