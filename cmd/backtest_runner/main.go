package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/SCPrime/PaiiD-sub000/config"
	"github.com/SCPrime/PaiiD-sub000/internal/adapters/binanceclient"
	"github.com/SCPrime/PaiiD-sub000/internal/adapters/logger"
	"github.com/SCPrime/PaiiD-sub000/internal/adapters/sqlite"
	"github.com/SCPrime/PaiiD-sub000/internal/app"
	"github.com/SCPrime/PaiiD-sub000/internal/domain"
	"github.com/SCPrime/PaiiD-sub000/internal/ports"
	"github.com/SCPrime/PaiiD-sub000/internal/strategyfile"
	"github.com/SCPrime/PaiiD-sub000/internal/utils"
)

func main() {
	ctx := context.Background()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger := logger.NewStdLogger(cfg.LogLevel)

	// 2. Load the strategy rule set
	rules, err := strategyfile.Load(cfg.StrategyPath)
	if err != nil {
		appLogger.Error(ctx, err, "Failed to load strategy file",
			map[string]interface{}{"path": cfg.StrategyPath})
		log.Fatalf("Failed to load strategy file: %v", err)
	}
	appLogger.Info(ctx, "Loaded strategy rules", map[string]interface{}{
		"path":         cfg.StrategyPath,
		"entryRules":   len(rules.Entry),
		"exitRules":    len(rules.Exit),
		"maxPositions": rules.MaxPositions,
	})

	// 3. Wire the bar provider: CSV file when configured, the exchange
	// otherwise.
	var provider ports.BarProvider
	if cfg.DataFile == "" {
		provider, err = binanceclient.New(binanceclient.Config{
			APIKey:     cfg.APIKey,
			SecretKey:  cfg.SecretKey,
			UseTestnet: cfg.IsTestnet,
			Logger:     appLogger,
		})
		if err != nil {
			appLogger.Error(ctx, err, "Failed to create Binance client")
			log.Fatalf("Failed to create Binance client: %v", err)
		}
	}

	// 4. Open the results repository unless persistence is disabled.
	var repo ports.ResultRepository
	if cfg.DBPath != "" {
		sqliteRepo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
		if err != nil {
			appLogger.Error(ctx, err, "Failed to open results database",
				map[string]interface{}{"dbPath": cfg.DBPath})
			log.Fatalf("Failed to open results database: %v", err)
		}
		defer sqliteRepo.Close()
		repo = sqliteRepo
	}

	service, err := app.New(app.Config{
		Provider:          provider,
		Repo:              repo,
		Logger:            appLogger,
		AnnualizationDays: cfg.AnnualizationDays,
	})
	if err != nil {
		log.Fatalf("Failed to create backtest service: %v", err)
	}

	// 5. Run
	var result *domain.BacktestResult
	if cfg.DataFile != "" {
		bars, err := utils.ReadBarsFromCSV(cfg.DataFile)
		if err != nil {
			appLogger.Error(ctx, err, "Failed to read bar file",
				map[string]interface{}{"dataFile": cfg.DataFile})
			log.Fatalf("Failed to read bar file: %v", err)
		}
		result, err = service.RunBars(ctx, bars, rules, cfg.InitialCapital)
		if err != nil {
			appLogger.Error(ctx, err, "Backtest failed")
			log.Fatalf("Backtest failed: %v", err)
		}
	} else {
		result, err = service.RunRange(ctx, cfg.Symbol, cfg.Interval, cfg.StartDate, cfg.EndDate, rules, cfg.InitialCapital)
		if err != nil {
			appLogger.Error(ctx, err, "Backtest failed")
			log.Fatalf("Backtest failed: %v", err)
		}
	}

	// 6. Report
	printSummary(result)
	printTrades(result)

	tradesFile := fmt.Sprintf("data/backtest_trades_%s.csv", result.RunID)
	if err := utils.WriteTradesToCSV(result.TradeHistory, tradesFile); err != nil {
		appLogger.Error(ctx, err, "Error writing trades CSV",
			map[string]interface{}{"filename": tradesFile})
	} else {
		appLogger.Info(ctx, "Trades saved", map[string]interface{}{"filename": tradesFile})
	}
}

func printSummary(res *domain.BacktestResult) {
	fmt.Printf("\nBacktest %s — %s, %s to %s\n\n",
		res.RunID, res.Symbol,
		res.StartDate.Format("2006-01-02"), res.EndDate.Format("2006-01-02"))

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Metric", "Value")
	table.Append("Initial Capital", fmt.Sprintf("%.2f", res.InitialCapital))
	table.Append("Final Capital", fmt.Sprintf("%.2f", res.FinalCapital))
	table.Append("Total Return", fmt.Sprintf("%.2f (%.2f%%)", res.TotalReturn, res.TotalReturnPercent))
	table.Append("Annualized Return", fmt.Sprintf("%.2f%%", res.AnnualizedReturnPercent))
	table.Append("Sharpe Ratio", fmt.Sprintf("%.2f", res.SharpeRatio))
	table.Append("Max Drawdown", fmt.Sprintf("%.2f (%.2f%%)", res.MaxDrawdown, res.MaxDrawdownPercent))
	table.Append("Total Trades", fmt.Sprintf("%d", res.TotalTrades))
	table.Append("Winning / Losing", fmt.Sprintf("%d / %d", res.WinningTrades, res.LosingTrades))
	table.Append("Win Rate", fmt.Sprintf("%.2f%%", res.WinRate))
	table.Append("Average Win", fmt.Sprintf("%.2f", res.AverageWin))
	table.Append("Average Loss", fmt.Sprintf("%.2f", res.AverageLoss))
	table.Append("Profit Factor", fmt.Sprintf("%.2f", res.ProfitFactor))
	table.Render()
}

func printTrades(res *domain.BacktestResult) {
	if len(res.TradeHistory) == 0 {
		fmt.Println("\nNo trades executed.")
		return
	}

	fmt.Println("\nTrades:")
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("#", "Entry", "Exit", "Entry Px", "Exit Px", "Qty", "PNL", "PNL %", "Reason")
	for i, t := range res.TradeHistory {
		table.Append(
			fmt.Sprintf("%d", i+1),
			t.EntryDate.Format("2006-01-02"),
			formatExitDate(t.ExitDate),
			fmt.Sprintf("%.2f", t.EntryPrice),
			fmt.Sprintf("%.2f", t.ExitPrice),
			fmt.Sprintf("%d", t.Quantity),
			fmt.Sprintf("%.2f", t.PNL),
			fmt.Sprintf("%.2f%%", t.PNLPercent),
			string(t.CloseReason),
		)
	}
	table.Render()
}

func formatExitDate(d time.Time) string {
	if d.IsZero() {
		return "-"
	}
	return d.Format("2006-01-02")
}
