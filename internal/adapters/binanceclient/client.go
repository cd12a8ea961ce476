package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/ports"
	"smcSignalBot/internal/retry"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"golang.org/x/time/rate"
)

const (
	// Base URLs
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"

	// maxKlinesLimit is the largest page the klines endpoint serves.
	maxKlinesLimit = 1500
)

// Client implements ports.MarketDataClient using the go-binance futures API.
type Client struct {
	futuresClient  *futures.Client
	logger         ports.Logger
	limiter        *rate.Limiter
	retry          retry.Policy
	symbols        []string
	quoteAsset     string
	topSymbols     int
	minQuoteVolume float64
}

// Config holds configuration specific to the Binance client adapter.
type Config struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
	// BaseURL overrides the production or testnet endpoint when set.
	BaseURL string
	Logger  ports.Logger

	// Symbols is a static scan list. When empty, ListSymbols discovers the
	// TopSymbols most traded QuoteAsset perpetuals above MinQuoteVolume.
	Symbols        []string
	QuoteAsset     string
	TopSymbols     int
	MinQuoteVolume float64

	RequestsPerSecond float64 // 0 disables client-side throttling
	Burst             int
	Retry             retry.Policy
}

// New creates a new Binance client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		cfg.Logger.Debug(context.Background(), "APIKey or SecretKey is empty. Client will only use public endpoints.")
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.DefaultPolicy()
	}
	if err := cfg.Retry.Validate(); err != nil {
		return nil, err
	}

	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)

	// Set BaseURL directly instead of using global futures.UseTestnet
	switch {
	case cfg.BaseURL != "":
		client.BaseURL = cfg.BaseURL
	case cfg.UseTestnet:
		client.BaseURL = baseURLTestnet
	default:
		client.BaseURL = baseURLProduction
	}
	cfg.Logger.Info(context.Background(), "Binance client configured", map[string]interface{}{"baseURL": client.BaseURL, "testnet": cfg.UseTestnet})

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	quote := strings.ToUpper(cfg.QuoteAsset)
	if quote == "" {
		quote = "USDT"
	}
	top := cfg.TopSymbols
	if top <= 0 {
		top = 50
	}

	symbols := make([]string, 0, len(cfg.Symbols))
	for _, s := range cfg.Symbols {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			symbols = append(symbols, s)
		}
	}

	return &Client{
		futuresClient:  client,
		logger:         cfg.Logger,
		limiter:        limiter,
		retry:          cfg.Retry,
		symbols:        symbols,
		quoteAsset:     quote,
		topSymbols:     top,
		minQuoteVolume: cfg.MinQuoteVolume,
	}, nil
}

// handleError translates common Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		// Map specific Binance error codes to custom errors
		var mappedErr error
		switch apiErr.Code {
		case -1000, -1001, -1006, -1007, -1016: // Unknown, disconnected, unexpected response, timeout, service shutting down
			mappedErr = ports.ErrExchangeUnavailable
		case -1003, -1015: // Too many requests, too many orders
			mappedErr = ports.ErrRateLimited
		case -1021: // Timestamp for this request is outside of the recvWindow
			mappedErr = ports.ErrTimeout
		case -1022: // Signature for this request is not valid
			mappedErr = ports.ErrAuthenticationFailed
		case -1100, -1101, -1102, -1103, -1104, -1105, -1106, -1111, -1115, -1116, -1117, -1120, -1121, -1125, -1127, -1128, -1130: // Parameter/Request format errors
			mappedErr = ports.ErrInvalidRequest
		case -2014, -2015: // API-key format invalid; invalid API-key, IP, or permissions
			mappedErr = ports.ErrInvalidAPIKeys
		default:
			mappedErr = ports.ErrUnknown
		}
		finalErr := fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
		c.logger.Warn(ctx, fmt.Sprintf("%s failed with API error", operation), fields)
		return finalErr
	}

	// Handle non-API errors (network, context cancellation, etc.)
	var finalErr error
	if errors.Is(err, context.DeadlineExceeded) {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	} else if errors.Is(err, context.Canceled) {
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	} else if strings.Contains(err.Error(), "use of closed network connection") ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connection reset by peer") ||
		strings.Contains(err.Error(), "no such host") {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	} else {
		// Default for other errors (e.g., parsing errors within the adapter)
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Warn(ctx, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// call waits for the rate limiter and runs fn under the retry policy.
func (c *Client) call(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	return c.retry.DoNotify(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s rate limiter: %w: %w", operation, ports.ErrContextCanceled, err)
		}
		return fn(ctx)
	}, func(attempt int, err error, delay time.Duration) {
		c.logger.Info(ctx, operation+": request failed, retrying...", map[string]interface{}{"attempt": attempt, "delay": delay.String(), "error": err.Error()})
	})
}

// Ping checks the connectivity to the exchange API.
func (c *Client) Ping(ctx context.Context) error {
	op := "Ping"
	err := c.call(ctx, op, func(ctx context.Context) error {
		if err := c.futuresClient.NewPingService().Do(ctx); err != nil {
			return c.handleError(ctx, fmt.Errorf("ping failed: %w", err), op)
		}
		return nil
	})
	if err != nil {
		return err
	}
	c.logger.Debug(ctx, op+" successful")
	return nil
}

// GetServerTime retrieves the current server time from the exchange.
func (c *Client) GetServerTime(ctx context.Context) (time.Time, error) {
	op := "GetServerTime"
	var serverTimeMs int64
	err := c.call(ctx, op, func(ctx context.Context) error {
		var err error
		serverTimeMs, err = c.futuresClient.NewServerTimeService().Do(ctx)
		return c.handleError(ctx, err, op)
	})
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(serverTimeMs), nil
}

// GetKlines retrieves the latest limit klines for the given symbol, oldest first.
func (c *Client) GetKlines(ctx context.Context, symbol string, interval string, limit int) ([]*domain.Kline, error) {
	op := "GetKlines"
	if symbol == "" || interval == "" || limit <= 0 || limit > maxKlinesLimit {
		return nil, fmt.Errorf("%s failed: %w: symbol=%q interval=%q limit=%d", op, ports.ErrInvalidRequest, symbol, interval, limit)
	}

	var binanceKlines []*futures.Kline
	err := c.call(ctx, op, func(ctx context.Context) error {
		var err error
		binanceKlines, err = c.futuresClient.NewKlinesService().Symbol(symbol).Interval(interval).Limit(limit).Do(ctx)
		return c.handleError(ctx, err, op)
	})
	if err != nil {
		return nil, err
	}

	domainKlines := make([]*domain.Kline, 0, len(binanceKlines))
	for _, bk := range binanceKlines {
		dk, err := translateBinanceKline(bk, symbol, interval)
		if err != nil {
			return nil, c.handleError(ctx, fmt.Errorf("failed to translate historical kline: %w", err), op)
		}
		domainKlines = append(domainKlines, dk)
	}

	return domainKlines, nil
}

// GetKlinesRange fetches all klines for a symbol/interval between start and end time.
func (c *Client) GetKlinesRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Kline, error) {
	op := "GetKlinesRange"
	var allKlines []*domain.Kline
	from := start

	for {
		var page []*futures.Kline
		err := c.call(ctx, op, func(ctx context.Context) error {
			var err error
			page, err = c.futuresClient.NewKlinesService().
				Symbol(symbol).
				Interval(interval).
				StartTime(from.UnixMilli()).
				EndTime(end.UnixMilli()).
				Limit(maxKlinesLimit).
				Do(ctx)
			return c.handleError(ctx, err, op)
		})
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		for _, bk := range page {
			dk, err := translateBinanceKline(bk, symbol, interval)
			if err != nil {
				return nil, c.handleError(ctx, fmt.Errorf("failed to translate historical kline range: %w", err), op)
			}
			allKlines = append(allKlines, dk)
		}
		last := page[len(page)-1]
		from = time.UnixMilli(last.CloseTime + 1)
		if from.After(end) || len(page) < maxKlinesLimit {
			break
		}
	}

	return allKlines, nil
}

// ListSymbols returns the static symbol list when configured. Otherwise it
// ranks the quote asset perpetuals by 24h quote volume and keeps the top
// ones above the minimum volume.
func (c *Client) ListSymbols(ctx context.Context) ([]string, error) {
	op := "ListSymbols"
	if len(c.symbols) > 0 {
		return append([]string(nil), c.symbols...), nil
	}

	var stats []*futures.PriceChangeStats
	err := c.call(ctx, op, func(ctx context.Context) error {
		var err error
		stats, err = c.futuresClient.NewListPriceChangeStatsService().Do(ctx)
		return c.handleError(ctx, err, op)
	})
	if err != nil {
		return nil, err
	}

	type ranked struct {
		symbol string
		volume float64
	}
	var candidates []ranked
	for _, s := range stats {
		// Delivery contracts carry an expiry suffix such as BTCUSDT_250627.
		if s == nil || !strings.HasSuffix(s.Symbol, c.quoteAsset) || strings.Contains(s.Symbol, "_") {
			continue
		}
		volume, err := strconv.ParseFloat(s.QuoteVolume, 64)
		if err != nil {
			c.logger.Debug(ctx, op+": skipping symbol with unparsable volume", map[string]interface{}{"symbol": s.Symbol, "quoteVolume": s.QuoteVolume})
			continue
		}
		if volume < c.minQuoteVolume {
			continue
		}
		candidates = append(candidates, ranked{symbol: s.Symbol, volume: volume})
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].volume > candidates[j].volume })
	if len(candidates) > c.topSymbols {
		candidates = candidates[:c.topSymbols]
	}

	symbols := make([]string, len(candidates))
	for i, cand := range candidates {
		symbols[i] = cand.symbol
	}
	c.logger.Debug(ctx, op+" successful", map[string]interface{}{"count": len(symbols), "quoteAsset": c.quoteAsset})
	return symbols, nil
}

func translateBinanceKline(bk *futures.Kline, symbol, interval string) (*domain.Kline, error) {
	if bk == nil {
		return nil, errors.New("received nil historical kline")
	}
	open, err := strconv.ParseFloat(bk.Open, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing open price '%s': %w", bk.Open, err)
	}
	high, err := strconv.ParseFloat(bk.High, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing high price '%s': %w", bk.High, err)
	}
	low, err := strconv.ParseFloat(bk.Low, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing low price '%s': %w", bk.Low, err)
	}
	cls, err := strconv.ParseFloat(bk.Close, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing close price '%s': %w", bk.Close, err)
	}
	vol, err := strconv.ParseFloat(bk.Volume, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing volume '%s': %w", bk.Volume, err)
	}

	return &domain.Kline{
		OpenTime:  time.UnixMilli(bk.OpenTime),
		CloseTime: time.UnixMilli(bk.CloseTime),
		Symbol:    symbol,
		Interval:  interval,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     cls,
		Volume:    vol,
		// The last kline of a live request is still forming.
		IsFinal: time.UnixMilli(bk.CloseTime).Before(time.Now()),
	}, nil
}
