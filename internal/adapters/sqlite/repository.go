package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/SCPrime/PaiiD-sub000/internal/domain"
	"github.com/SCPrime/PaiiD-sub000/internal/ports"

	"github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.ResultRepository using SQLite. A completed
// run is stored as one summary row plus its trades and equity points.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository opens (or creates) the results database.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/backtests.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	cfg.Logger.Info(context.Background(), "Results database ready", map[string]interface{}{"path": dbPath})
	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS backtest_results (
		run_id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		start_date TIMESTAMP NOT NULL,
		end_date TIMESTAMP NOT NULL,
		initial_capital REAL NOT NULL,
		final_capital REAL NOT NULL,
		total_return REAL NOT NULL,
		total_return_percent REAL NOT NULL,
		annualized_return_percent REAL NOT NULL,
		sharpe_ratio REAL NOT NULL,
		max_drawdown REAL NOT NULL,
		max_drawdown_percent REAL NOT NULL,
		total_trades INTEGER NOT NULL,
		winning_trades INTEGER NOT NULL,
		losing_trades INTEGER NOT NULL,
		win_rate REAL NOT NULL,
		average_win REAL NOT NULL,
		average_loss REAL NOT NULL,
		profit_factor REAL NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS backtest_trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		entry_date TIMESTAMP NOT NULL,
		exit_date TIMESTAMP NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL NOT NULL,
		quantity INTEGER NOT NULL,
		side TEXT NOT NULL,
		pnl REAL NOT NULL,
		pnl_percent REAL NOT NULL,
		close_reason TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS equity_points (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		date TIMESTAMP NOT NULL,
		value REAL NOT NULL,
		drawdown REAL NOT NULL,
		drawdown_percent REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_backtest_trades_run_id ON backtest_trades (run_id);
	CREATE INDEX IF NOT EXISTS idx_equity_points_run_id ON equity_points (run_id);
	CREATE INDEX IF NOT EXISTS idx_backtest_results_created_at ON backtest_results (created_at);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Save persists a completed run atomically: summary, trades and equity
// curve either all land or none do.
func (r *Repository) Save(ctx context.Context, res *domain.BacktestResult) error {
	if res.RunID == "" {
		return fmt.Errorf("%w: result has no run ID", ports.ErrQueryFailed)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const resultQuery = `
	INSERT INTO backtest_results (
		run_id, symbol, start_date, end_date,
		initial_capital, final_capital, total_return, total_return_percent,
		annualized_return_percent, sharpe_ratio, max_drawdown, max_drawdown_percent,
		total_trades, winning_trades, losing_trades, win_rate,
		average_win, average_loss, profit_factor, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if _, err := tx.ExecContext(ctx, resultQuery,
		res.RunID, res.Symbol, res.StartDate, res.EndDate,
		res.InitialCapital, res.FinalCapital, res.TotalReturn, res.TotalReturnPercent,
		res.AnnualizedReturnPercent, res.SharpeRatio, res.MaxDrawdown, res.MaxDrawdownPercent,
		res.TotalTrades, res.WinningTrades, res.LosingTrades, res.WinRate,
		res.AverageWin, res.AverageLoss, res.ProfitFactor, res.CreatedAt,
	); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("%w: run %s is already stored", ports.ErrDuplicateEntry, res.RunID)
		}
		return fmt.Errorf("failed to insert result %s: %w", res.RunID, err)
	}

	const tradeQuery = `
	INSERT INTO backtest_trades (run_id, symbol, entry_date, exit_date, entry_price, exit_price,
	                             quantity, side, pnl, pnl_percent, close_reason)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, t := range res.TradeHistory {
		if _, err := tx.ExecContext(ctx, tradeQuery,
			res.RunID, t.Symbol, t.EntryDate, t.ExitDate, t.EntryPrice, t.ExitPrice,
			t.Quantity, t.Side, t.PNL, t.PNLPercent, t.CloseReason,
		); err != nil {
			return fmt.Errorf("failed to insert trade for run %s: %w", res.RunID, err)
		}
	}

	const pointQuery = `
	INSERT INTO equity_points (run_id, date, value, drawdown, drawdown_percent)
	VALUES (?, ?, ?, ?, ?)`
	for _, p := range res.EquityCurve {
		if _, err := tx.ExecContext(ctx, pointQuery,
			res.RunID, p.Date, p.Value, p.Drawdown, p.DrawdownPercent,
		); err != nil {
			return fmt.Errorf("failed to insert equity point for run %s: %w", res.RunID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", res.RunID, err)
	}
	r.logger.Debug(ctx, "Backtest result saved", map[string]interface{}{
		"runID":  res.RunID,
		"trades": len(res.TradeHistory),
		"points": len(res.EquityCurve),
	})
	return nil
}

// FindByID retrieves a full run, trades and equity curve included.
// Returns nil, nil when no run matches.
func (r *Repository) FindByID(ctx context.Context, runID string) (*domain.BacktestResult, error) {
	const query = `
	SELECT run_id, symbol, start_date, end_date,
	       initial_capital, final_capital, total_return, total_return_percent,
	       annualized_return_percent, sharpe_ratio, max_drawdown, max_drawdown_percent,
	       total_trades, winning_trades, losing_trades, win_rate,
	       average_win, average_loss, profit_factor, created_at
	FROM backtest_results WHERE run_id = ?`

	res, err := scanResult(r.db.QueryRowContext(ctx, query, runID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query result %s: %w", runID, err)
	}

	if res.TradeHistory, err = r.loadTrades(ctx, runID); err != nil {
		return nil, err
	}
	if res.EquityCurve, err = r.loadEquityCurve(ctx, runID); err != nil {
		return nil, err
	}
	return res, nil
}

// FindRecent retrieves summaries of the most recent runs, newest first.
// Equity curves and trade histories are left empty.
func (r *Repository) FindRecent(ctx context.Context, limit int) ([]*domain.BacktestResult, error) {
	const query = `
	SELECT run_id, symbol, start_date, end_date,
	       initial_capital, final_capital, total_return, total_return_percent,
	       annualized_return_percent, sharpe_ratio, max_drawdown, max_drawdown_percent,
	       total_trades, winning_trades, losing_trades, win_rate,
	       average_win, average_loss, profit_factor, created_at
	FROM backtest_results ORDER BY created_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent results: %w", err)
	}
	defer rows.Close()

	results := make([]*domain.BacktestResult, 0)
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result during FindRecent: %w", err)
		}
		results = append(results, res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating result rows: %w", err)
	}
	return results, nil
}

func (r *Repository) loadTrades(ctx context.Context, runID string) ([]*domain.Trade, error) {
	const query = `
	SELECT symbol, entry_date, exit_date, entry_price, exit_price,
	       quantity, side, pnl, pnl_percent, close_reason
	FROM backtest_trades WHERE run_id = ? ORDER BY entry_date, id`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades for run %s: %w", runID, err)
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		t := &domain.Trade{Status: domain.StatusClosed}
		var side, reason string
		if err := rows.Scan(
			&t.Symbol, &t.EntryDate, &t.ExitDate, &t.EntryPrice, &t.ExitPrice,
			&t.Quantity, &side, &t.PNL, &t.PNLPercent, &reason,
		); err != nil {
			return nil, fmt.Errorf("failed to scan trade for run %s: %w", runID, err)
		}
		t.Side = domain.TradeSide(side)
		t.CloseReason = domain.CloseReason(reason)
		trades = append(trades, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}

func (r *Repository) loadEquityCurve(ctx context.Context, runID string) ([]domain.EquityPoint, error) {
	const query = `
	SELECT date, value, drawdown, drawdown_percent
	FROM equity_points WHERE run_id = ? ORDER BY date, id`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query equity curve for run %s: %w", runID, err)
	}
	defer rows.Close()

	points := make([]domain.EquityPoint, 0)
	for rows.Next() {
		var p domain.EquityPoint
		if err := rows.Scan(&p.Date, &p.Value, &p.Drawdown, &p.DrawdownPercent); err != nil {
			return nil, fmt.Errorf("failed to scan equity point for run %s: %w", runID, err)
		}
		points = append(points, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating equity point rows: %w", err)
	}
	return points, nil
}

// scanner is compatible with both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanResult(s scanner) (*domain.BacktestResult, error) {
	res := &domain.BacktestResult{}
	err := s.Scan(
		&res.RunID, &res.Symbol, &res.StartDate, &res.EndDate,
		&res.InitialCapital, &res.FinalCapital, &res.TotalReturn, &res.TotalReturnPercent,
		&res.AnnualizedReturnPercent, &res.SharpeRatio, &res.MaxDrawdown, &res.MaxDrawdownPercent,
		&res.TotalTrades, &res.WinningTrades, &res.LosingTrades, &res.WinRate,
		&res.AverageWin, &res.AverageLoss, &res.ProfitFactor, &res.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return res, nil
}
