package binanceclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"smcSignalBot/internal/ports"
	"smcSignalBot/internal/retry"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

var fastRetry = retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 2, MaxDelay: 5 * time.Millisecond}

func newTestClient(t *testing.T, handler http.Handler, cfg Config) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg.BaseURL = srv.URL
	cfg.Logger = &mockLogger{}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = fastRetry
	}
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "public endpoints only", cfg: Config{Logger: &mockLogger{}}},
		{name: "testnet", cfg: Config{Logger: &mockLogger{}, UseTestnet: true, APIKey: "k", SecretKey: "s"}},
		{name: "nil logger", cfg: Config{}, wantErr: true},
		{name: "invalid retry policy", cfg: Config{Logger: &mockLogger{}, Retry: retry.Policy{MaxAttempts: 2, Multiplier: 0.5}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			if tt.cfg.UseTestnet {
				assert.Equal(t, baseURLTestnet, c.futuresClient.BaseURL)
			} else {
				assert.Equal(t, baseURLProduction, c.futuresClient.BaseURL)
			}
			assert.Equal(t, "USDT", c.quoteAsset)
			assert.Equal(t, 50, c.topSymbols)
		})
	}
}

func TestGetKlines(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/fapi/v1/klines", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "15m", r.URL.Query().Get("interval"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			[1700000000000,"100.0","101.5","99.5","101.0","12.5",1700000899999,"1262.5",10,"6.0","606.0","0"],
			[1700000900000,"101.0","102.0","100.5","101.8","8.0",1700001799999,"812.0",7,"4.0","406.0","0"]
		]`))
	})
	c := newTestClient(t, mux, Config{})

	klines, err := c.GetKlines(context.Background(), "BTCUSDT", "15m", 2)
	require.NoError(t, err)
	require.Len(t, klines, 2)

	assert.Equal(t, "BTCUSDT", klines[0].Symbol)
	assert.Equal(t, "15m", klines[0].Interval)
	assert.Equal(t, 100.0, klines[0].Open)
	assert.Equal(t, 101.5, klines[0].High)
	assert.Equal(t, 99.5, klines[0].Low)
	assert.Equal(t, 101.0, klines[0].Close)
	assert.Equal(t, 12.5, klines[0].Volume)
	assert.Equal(t, time.UnixMilli(1700000000000), klines[0].OpenTime)
	assert.True(t, klines[0].IsFinal)
	assert.True(t, klines[1].OpenTime.After(klines[0].OpenTime))
}

func TestGetKlines_InvalidArguments(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler(), Config{})

	for _, limit := range []int{0, -1, maxKlinesLimit + 1} {
		_, err := c.GetKlines(context.Background(), "BTCUSDT", "15m", limit)
		assert.ErrorIs(t, err, ports.ErrInvalidRequest)
	}
	_, err := c.GetKlines(context.Background(), "", "15m", 10)
	assert.ErrorIs(t, err, ports.ErrInvalidRequest)
}

func TestGetKlines_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/fapi/v1/klines", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"code":-1001,"msg":"Internal error; unable to process your request."}`))
			return
		}
		_, _ = w.Write([]byte(`[[1700000000000,"1","2","0.5","1.5","3",1700000899999,"4",1,"1","1","0"]]`))
	})
	c := newTestClient(t, mux, Config{})

	klines, err := c.GetKlines(context.Background(), "ETHUSDT", "1h", 1)
	require.NoError(t, err)
	assert.Len(t, klines, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetKlines_InvalidSymbolIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/fapi/v1/klines", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	})
	c := newTestClient(t, mux, Config{})

	_, err := c.GetKlines(context.Background(), "NOPEUSDT", "1h", 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrInvalidRequest)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/fapi/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	c := newTestClient(t, mux, Config{})
	assert.NoError(t, c.Ping(context.Background()))
}

func TestGetServerTime(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/fapi/v1/time", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"serverTime":1704067200000}`))
	})
	var market ports.MarketDataClient = newTestClient(t, mux, Config{})

	got, err := market.GetServerTime(context.Background())
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestListSymbols(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/fapi/v1/ticker/24hr", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"symbol":"BTCUSDT","quoteVolume":"9000000000"},
			{"symbol":"ETHUSDT","quoteVolume":"5000000000"},
			{"symbol":"BTCUSDT_250627","quoteVolume":"8000000000"},
			{"symbol":"ETHBTC","quoteVolume":"7000000000"},
			{"symbol":"DOGEUSDT","quoteVolume":"900000"},
			{"symbol":"SOLUSDT","quoteVolume":"2000000000"},
			{"symbol":"XRPUSDT","quoteVolume":"not-a-number"}
		]`))
	})

	t.Run("ranked by quote volume", func(t *testing.T) {
		c := newTestClient(t, mux, Config{TopSymbols: 2, MinQuoteVolume: 1_000_000})
		symbols, err := c.ListSymbols(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, symbols)
	})

	t.Run("minimum volume filter", func(t *testing.T) {
		c := newTestClient(t, mux, Config{TopSymbols: 10, MinQuoteVolume: 1_000_000})
		symbols, err := c.ListSymbols(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"}, symbols)
	})

	t.Run("static list overrides discovery", func(t *testing.T) {
		c := newTestClient(t, http.NotFoundHandler(), Config{Symbols: []string{" btcusdt", "", "ETHUSDT "}})
		symbols, err := c.ListSymbols(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, symbols)

		symbols[0] = "MUTATED"
		again, err := c.ListSymbols(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "BTCUSDT", again[0])
	})
}

func TestTranslateBinanceKline(t *testing.T) {
	tests := []struct {
		name    string
		kline   *futures.Kline
		wantErr bool
	}{
		{name: "nil kline", kline: nil, wantErr: true},
		{name: "bad open", kline: &futures.Kline{Open: "x", High: "1", Low: "1", Close: "1", Volume: "1"}, wantErr: true},
		{name: "bad volume", kline: &futures.Kline{Open: "1", High: "1", Low: "1", Close: "1", Volume: ""}, wantErr: true},
		{name: "valid", kline: &futures.Kline{OpenTime: 1000, CloseTime: 1999, Open: "1", High: "2", Low: "0.5", Close: "1.5", Volume: "10"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := translateBinanceKline(tt.kline, "BTCUSDT", "1m")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 2.0, k.High)
			assert.Equal(t, 10.0, k.Volume)
			assert.Equal(t, time.UnixMilli(1999), k.CloseTime)
		})
	}
}

func TestHandleError(t *testing.T) {
	c := &Client{logger: &mockLogger{}}
	ctx := context.Background()

	assert.NoError(t, c.handleError(ctx, nil, "op"))
	assert.ErrorIs(t, c.handleError(ctx, context.DeadlineExceeded, "op"), ports.ErrTimeout)
	assert.ErrorIs(t, c.handleError(ctx, context.Canceled, "op"), ports.ErrContextCanceled)
	assert.ErrorIs(t, c.handleError(ctx, assert.AnError, "op"), ports.ErrUnknown)
}
