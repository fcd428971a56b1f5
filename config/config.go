package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/SCPrime/PaiiD-sub000/internal/adapters/logger"
)

// Config holds all application configuration.
type Config struct {
	// Binance API (only required when fetching bars from the exchange)
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Run Parameters
	Symbol         string
	Interval       string  // Bar interval, e.g. "1d", "4h", "1h"
	InitialCapital float64 // Starting capital for the run
	StartDate      time.Time
	EndDate        time.Time

	// Strategy
	StrategyPath string // Path to the YAML strategy rules file

	// Data Sources
	DataFile string // Optional CSV bar file; when set, the exchange is not queried

	// Metrics
	AnnualizationDays float64 // Sharpe annualization override, 0 keeps the default

	// Database
	DBPath string // Empty disables result persistence

	// Logging
	LogLevel logger.LogLevel
}

const dateLayout = "2006-01-02"

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Binance API. Keys are optional: the kline endpoints used for
	// historical fetches are public.
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", true) // Default to testnet for safety

	// Run Parameters
	cfg.Symbol = getEnv("SYMBOL", "ETHUSDT")
	if cfg.Symbol == "" {
		errs = append(errs, "SYMBOL must be set")
	}

	cfg.Interval = getEnv("INTERVAL", "1d")
	if cfg.Interval == "" {
		errs = append(errs, "INTERVAL must be set")
	}

	cfg.InitialCapital, err = getEnvAsFloatRequired("INITIAL_CAPITAL", 10000.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid INITIAL_CAPITAL: %v", err))
	} else if cfg.InitialCapital <= 0 {
		errs = append(errs, "INITIAL_CAPITAL must be positive")
	}

	cfg.StartDate, err = getEnvAsDate("START_DATE", time.Now().UTC().AddDate(-1, 0, 0))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid START_DATE: %v", err))
	}
	cfg.EndDate, err = getEnvAsDate("END_DATE", time.Now().UTC())
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid END_DATE: %v", err))
	}
	if !cfg.StartDate.Before(cfg.EndDate) {
		errs = append(errs, "START_DATE must be before END_DATE")
	}

	// Strategy
	cfg.StrategyPath = getEnv("STRATEGY_PATH", "./strategies/default.yaml")
	if cfg.StrategyPath == "" {
		errs = append(errs, "STRATEGY_PATH must be set")
	}

	// Data Sources
	cfg.DataFile = getEnv("DATA_FILE", "")

	// Metrics
	cfg.AnnualizationDays = getEnvAsFloat("ANNUALIZATION_DAYS", 0)
	if cfg.AnnualizationDays < 0 {
		errs = append(errs, "ANNUALIZATION_DAYS cannot be negative")
	}

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/backtests.db")

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr)

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDate(key string, defaultValue time.Time) (time.Time, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := time.Parse(dateLayout, valueStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date value '%s' for key %s (want YYYY-MM-DD): %w", valueStr, key, err)
	}
	return value, nil
}
