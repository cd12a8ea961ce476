package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"smcSignalBot/internal/domain"
)

func TestClassifyVolatility(t *testing.T) {
	cfg := withDefaults[VolatilityConfig](t)

	tests := []struct {
		ratio  float64
		tier   domain.VolatilityTier
		points float64
	}{
		{ratio: 2.4, tier: domain.VolatilityHigh, points: 50},
		{ratio: 1.5, tier: domain.VolatilityHigh, points: 50},
		{ratio: 1.3, tier: domain.VolatilityHigh, points: 50},
		{ratio: 1.29, tier: domain.VolatilityMedium, points: 35},
		{ratio: 1.0, tier: domain.VolatilityMedium, points: 35},
		{ratio: 0.99, tier: domain.VolatilityLow, points: 20},
		{ratio: 0, tier: domain.VolatilityLow, points: 20},
	}
	for _, tt := range tests {
		reading := ClassifyVolatility(tt.ratio, cfg)
		assert.Equal(t, tt.tier, reading.Tier, "ratio %.2f", tt.ratio)
		assert.Equal(t, tt.points, reading.Points, "ratio %.2f", tt.ratio)
		assert.Equal(t, tt.ratio, reading.Ratio)
		assert.False(t, reading.Degenerate)
	}
}

func TestScoreVolatility_ExpandingRange(t *testing.T) {
	cfg := withDefaults[VolatilityConfig](t)
	var klines []*domain.Kline
	for i := 0; i < 30; i++ {
		klines = append(klines, candle(100, 100.5, 99.5, 100, 100))
	}
	for i := 0; i < 14; i++ {
		klines = append(klines, candle(100, 101.5, 98.5, 100, 100))
	}

	reading := ScoreVolatility(series(klines...), cfg)
	assert.Equal(t, domain.VolatilityHigh, reading.Tier)
	assert.InDelta(t, 3/(46.0/31.0), reading.Ratio, 1e-9)
	assert.Equal(t, 50.0, VolatilityScore(reading).Points)
}

func TestScoreVolatility_Degenerate(t *testing.T) {
	cfg := withDefaults[VolatilityConfig](t)

	tests := []struct {
		name   string
		klines []*domain.Kline
	}{
		{name: "shorter than period", klines: flat(5, 100, 10)},
		{name: "zero range candles", klines: series(
			candle(1, 1, 1, 1, 1), candle(1, 1, 1, 1, 1), candle(1, 1, 1, 1, 1), candle(1, 1, 1, 1, 1),
			candle(1, 1, 1, 1, 1), candle(1, 1, 1, 1, 1), candle(1, 1, 1, 1, 1), candle(1, 1, 1, 1, 1),
			candle(1, 1, 1, 1, 1), candle(1, 1, 1, 1, 1), candle(1, 1, 1, 1, 1), candle(1, 1, 1, 1, 1),
			candle(1, 1, 1, 1, 1), candle(1, 1, 1, 1, 1), candle(1, 1, 1, 1, 1), candle(1, 1, 1, 1, 1),
		)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reading := ScoreVolatility(tt.klines, cfg)
			assert.True(t, reading.Degenerate)
			assert.Equal(t, domain.VolatilityLow, reading.Tier)
			assert.Equal(t, cfg.LowPoints, reading.Points)
			assert.Zero(t, reading.Ratio)
		})
	}
}
