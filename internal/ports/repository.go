package ports

import (
	"context"
	"time"

	"smcSignalBot/internal/domain"
)

// JournalEntry is a stored signal together with its dedup outcome.
type JournalEntry struct {
	ID         string
	Symbol     string
	Timeframe  string
	Profile    string
	Decision   domain.Decision
	Tier       domain.Tier
	TotalScore float64
	MaxScore   float64
	Entry      float64
	StopLoss   float64
	Targets    []float64
	Suppressed bool
	CreatedAt  time.Time
}

// SignalJournal is an optional durable audit sink for decided signals.
type SignalJournal interface {
	// Record stores a signal and whether the dedup tracker suppressed it.
	Record(ctx context.Context, sig *domain.Signal, suppressed bool) error
	// Recent returns the latest entries for a symbol, newest first.
	Recent(ctx context.Context, symbol string, limit int) ([]JournalEntry, error)
}

// CandleStore is a TTL key-value store for fetched kline series.
type CandleStore interface {
	// Get returns the cached series and true when present and not expired.
	Get(ctx context.Context, key string) ([]*domain.Kline, bool, error)
	// Set stores the series under key for ttl.
	Set(ctx context.Context, key string, klines []*domain.Kline, ttl time.Duration) error
}
