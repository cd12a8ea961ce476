package ports

import (
	"context"

	"smcSignalBot/internal/domain"
)

// Notifier delivers decided signals. Implementations own formatting, transport
// and their own bounded retries.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, sig *domain.Signal) error
}

// StatusNotifier receives periodic heartbeat reports.
type StatusNotifier interface {
	NotifyStatus(ctx context.Context, status domain.Status) error
}

// Analyzer turns a kline snapshot into a signal.
type Analyzer interface {
	// RequiredDataPoints returns the minimum number of klines needed for a full analysis.
	RequiredDataPoints() int
	// Analyze runs every detector over klines and returns a WAIT or BUY signal.
	Analyze(ctx context.Context, symbol string, klines []*domain.Kline) (*domain.Signal, error)
}

// Metrics records scan activity.
type Metrics interface {
	ObserveCycle(seconds float64, instruments int)
	IncSignal(decision domain.Decision, tier domain.Tier)
	IncSuppressed(symbol string)
	IncError(kind string)
	ObserveFetch(seconds float64)
}
