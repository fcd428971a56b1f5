// Package binanceclient implements the ports.BarProvider boundary on the
// Binance REST API. All network concerns of a run (pagination, rate
// limiting, error translation) live here; the engine itself never touches
// the network.
package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"golang.org/x/time/rate"

	"github.com/SCPrime/PaiiD-sub000/internal/domain"
	"github.com/SCPrime/PaiiD-sub000/internal/ports"
)

const (
	// maxKlinesPerRequest is the Binance API page size cap.
	maxKlinesPerRequest = 1000
	// requestsPerSecond keeps the paginated fetch well under the API
	// weight limits.
	requestsPerSecond = 5
)

// Client fetches historical bars from Binance.
type Client struct {
	api     *binance.Client
	limiter *rate.Limiter
	logger  ports.Logger
}

// Config holds configuration for the Binance bar provider.
type Config struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
	Logger     ports.Logger
}

// New creates a Binance bar provider. Keys may be empty: kline endpoints
// are public.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}

	binance.UseTestnet = cfg.UseTestnet
	api := binance.NewClient(cfg.APIKey, cfg.SecretKey)

	cfg.Logger.Info(context.Background(), "Binance bar provider configured",
		map[string]interface{}{"testnet": cfg.UseTestnet})

	return &Client{
		api:     api,
		limiter: rate.NewLimiter(requestsPerSecond, 1),
		logger:  cfg.Logger,
	}, nil
}

// GetBars fetches all klines for the symbol and interval between start and
// end, paginating as needed and translating every kline into a domain.Bar.
// The returned sequence is strictly ascending by date, as the BarProvider
// contract requires.
func (c *Client) GetBars(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Bar, error) {
	var bars []*domain.Bar
	from := start

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}

		klines, err := c.api.NewKlinesService().
			Symbol(symbol).
			Interval(interval).
			StartTime(from.UnixMilli()).
			EndTime(end.UnixMilli()).
			Limit(maxKlinesPerRequest).
			Do(ctx)
		if err != nil {
			return nil, c.translateError(ctx, err, symbol)
		}
		if len(klines) == 0 {
			break
		}

		for _, k := range klines {
			bar, err := translateKline(k, symbol)
			if err != nil {
				return nil, fmt.Errorf("translating kline for %s: %w", symbol, err)
			}
			bars = append(bars, bar)
		}

		last := klines[len(klines)-1]
		from = time.UnixMilli(last.CloseTime)
		if from.After(end) || len(klines) < maxKlinesPerRequest {
			break
		}
	}

	c.logger.Debug(ctx, "Fetched historical bars", map[string]interface{}{
		"symbol":   symbol,
		"interval": interval,
		"count":    len(bars),
	})
	return bars, nil
}

// translateError maps Binance API errors onto the application sentinels.
func (c *Client) translateError(ctx context.Context, err error, symbol string) error {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		c.logger.Warn(ctx, "Binance API error", map[string]interface{}{
			"symbol": symbol,
			"code":   apiErr.Code,
		})
		switch apiErr.Code {
		case -1003: // TOO_MANY_REQUESTS
			return fmt.Errorf("%w: %v", ports.ErrRateLimited, err)
		default:
			return fmt.Errorf("%w: %v", ports.ErrProviderUnavailable, err)
		}
	}
	return fmt.Errorf("%w: %v", ports.ErrProviderUnavailable, err)
}

func translateKline(k *binance.Kline, symbol string) (*domain.Bar, error) {
	if k == nil {
		return nil, errors.New("received nil kline")
	}
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing open price %q: %w", k.Open, err)
	}
	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing high price %q: %w", k.High, err)
	}
	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing low price %q: %w", k.Low, err)
	}
	cls, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing close price %q: %w", k.Close, err)
	}
	vol, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing volume %q: %w", k.Volume, err)
	}

	return &domain.Bar{
		Date:   time.UnixMilli(k.OpenTime),
		Symbol: symbol,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  cls,
		Volume: vol,
	}, nil
}
