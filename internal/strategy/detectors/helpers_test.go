package detectors

import (
	"testing"
	"time"

	"github.com/creasty/defaults"
	"github.com/stretchr/testify/require"

	"smcSignalBot/internal/domain"
)

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// withDefaults returns a config of type T with its default tags applied.
func withDefaults[T any](t *testing.T) T {
	t.Helper()
	var cfg T
	require.NoError(t, defaults.Set(&cfg))
	return cfg
}

func candle(open, high, low, close, volume float64) *domain.Kline {
	return &domain.Kline{Open: open, High: high, Low: low, Close: close, Volume: volume, IsFinal: true}
}

// series stamps consecutive 15 minute open times on klines.
func series(klines ...*domain.Kline) []*domain.Kline {
	for i, k := range klines {
		k.OpenTime = baseTime.Add(time.Duration(i) * 15 * time.Minute)
		k.CloseTime = k.OpenTime.Add(15*time.Minute - time.Millisecond)
		k.Interval = "15m"
	}
	return klines
}

// flat returns n doji candles at price with a 0.1 wick on each side.
func flat(n int, price, volume float64) []*domain.Kline {
	out := make([]*domain.Kline, n)
	for i := range out {
		out[i] = candle(price, price+0.1, price-0.1, price, volume)
	}
	return series(out...)
}

// fromCloses builds doji candles with 0.1 wicks along a close path.
func fromCloses(closes ...float64) []*domain.Kline {
	out := make([]*domain.Kline, len(closes))
	for i, c := range closes {
		out[i] = candle(c, c+0.1, c-0.1, c, 100)
	}
	return series(out...)
}
