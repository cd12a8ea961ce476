package detectors

import (
	"context"
	"fmt"

	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/strategy/indicators"
)

// ScoreVolatility compares the latest ATR proxy value with the mean of its own
// series and buckets the ratio into fixed tiers. Insufficient data or a zero
// mean yields LOW with ratio 0 and Degenerate set.
func ScoreVolatility(klines []*domain.Kline, cfg VolatilityConfig) domain.VolatilityReading {
	atr := indicators.NewATRProxy(indicators.ATRProxyConfig{IndicatorConfig: indicators.IndicatorConfig{Period: cfg.Period}})
	series, err := atr.Series(context.Background(), klines)
	if err != nil || len(series) == 0 {
		return domain.VolatilityReading{Tier: domain.VolatilityLow, Points: cfg.LowPoints, Degenerate: true}
	}

	sum := 0.0
	for _, v := range series {
		sum += v
	}
	mean := sum / float64(len(series))
	if mean <= 0 {
		return domain.VolatilityReading{Tier: domain.VolatilityLow, Points: cfg.LowPoints, Degenerate: true}
	}

	reading := ClassifyVolatility(series[len(series)-1]/mean, cfg)
	return reading
}

// ClassifyVolatility maps a ratio onto its tier. Points are the configured
// constants for the tier and are never interpolated.
func ClassifyVolatility(ratio float64, cfg VolatilityConfig) domain.VolatilityReading {
	switch {
	case ratio >= cfg.HighRatio:
		return domain.VolatilityReading{Tier: domain.VolatilityHigh, Ratio: ratio, Points: cfg.HighPoints}
	case ratio >= cfg.MediumRatio:
		return domain.VolatilityReading{Tier: domain.VolatilityMedium, Ratio: ratio, Points: cfg.MediumPoints}
	default:
		return domain.VolatilityReading{Tier: domain.VolatilityLow, Ratio: ratio, Points: cfg.LowPoints}
	}
}

// VolatilityScore renders a reading as a raw contribution.
func VolatilityScore(r domain.VolatilityReading) Score {
	return Score{Points: r.Points, Reason: fmt.Sprintf("%s volatility (ATR ratio %.2f)", r.Tier, r.Ratio)}
}
