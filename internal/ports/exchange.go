package ports

import (
	"context"
	"time"

	"smcSignalBot/internal/domain"
)

// CandleSource retrieves ordered OHLCV series.
type CandleSource interface {
	// GetKlines returns up to limit klines for symbol and interval, oldest first.
	GetKlines(ctx context.Context, symbol string, interval string, limit int) ([]*domain.Kline, error)
}

// SymbolSource lists the instruments to scan on each cycle.
type SymbolSource interface {
	ListSymbols(ctx context.Context) ([]string, error)
}

// MarketDataClient is the exchange surface the scanner needs.
// This abstraction allows decoupling the scan loop from specific exchange implementations.
type MarketDataClient interface {
	CandleSource
	SymbolSource

	// Ping checks the connectivity to the exchange API.
	Ping(ctx context.Context) error
	// GetServerTime returns the exchange clock, used to report local clock skew.
	GetServerTime(ctx context.Context) (time.Time, error)
}
