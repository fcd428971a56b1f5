package main

import (
	"context"
	"fmt"
	"log"

	"github.com/SCPrime/PaiiD-sub000/config"
	"github.com/SCPrime/PaiiD-sub000/internal/adapters/binanceclient"
	"github.com/SCPrime/PaiiD-sub000/internal/adapters/logger"
	"github.com/SCPrime/PaiiD-sub000/internal/utils"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Bar Provider (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	fmt.Printf("Fetching bars for %s %s from %s to %s...\n",
		cfg.Symbol, cfg.Interval, cfg.StartDate.Format("2006-01-02"), cfg.EndDate.Format("2006-01-02"))
	bars, err := binanceClient.GetBars(context.Background(), cfg.Symbol, cfg.Interval, cfg.StartDate, cfg.EndDate)
	if err != nil {
		appLogger.Error(context.Background(), err, "Error fetching bars")
		log.Fatalf("Error fetching bars: %v", err)
	}
	appLogger.Info(context.Background(), "Fetched bars", map[string]interface{}{"count": len(bars)})

	filename := fmt.Sprintf("data/%s_%s_%s_to_%s.csv",
		cfg.Symbol, cfg.Interval, cfg.StartDate.Format("20060102"), cfg.EndDate.Format("20060102"))
	if err := utils.WriteBarsToCSV(bars, filename); err != nil {
		appLogger.Error(context.Background(), err, "Error writing CSV")
		log.Fatalf("Error writing CSV: %v", err)
	}
	appLogger.Info(context.Background(), "Saved to", map[string]interface{}{"filename": filename})
}
