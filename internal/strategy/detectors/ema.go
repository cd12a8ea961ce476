package detectors

import (
	"context"
	"math"

	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/strategy/indicators"
)

// EMASetup classifies the 5/8/13 EMA stack.
type EMASetup string

const (
	EMANoSignal  EMASetup = "NO_SIGNAL"
	EMAFullCross EMASetup = "FULL_CROSS"
	EMAPreCross  EMASetup = "PRE_CROSS"
	EMAPreparing EMASetup = "PREPARING"
)

// ScoreEMASetup awards full points for a bullish Fast>Mid>Slow stack, less for
// a stack about to cross with a rising fast EMA, and least when the fast EMA
// is rising close to the mid one.
func ScoreEMASetup(ctx context.Context, klines []*domain.Kline, cfg EMAConfig) (EMASetup, Score) {
	if len(klines) < cfg.Slow+cfg.SlopeBars {
		return EMANoSignal, Score{Reason: "not enough candles for EMA setup"}
	}

	var lines [3][]float64
	for i, period := range []int{cfg.Fast, cfg.Mid, cfg.Slow} {
		var ema indicators.Indicator = indicators.NewMovingAverage(indicators.MovingAverageConfig{
			IndicatorConfig: indicators.IndicatorConfig{Period: period},
			Type:            indicators.ExponentialMovingAverage,
		})
		series, err := ema.Series(ctx, klines)
		if err != nil {
			return EMANoSignal, Score{Reason: "EMA not ready"}
		}
		lines[i] = series
	}
	fast, mid, slow := lines[0], lines[1], lines[2]

	f, m, s := fast[len(fast)-1], mid[len(mid)-1], slow[len(slow)-1]
	prev := fast[len(fast)-1-cfg.SlopeBars]
	if m <= 0 || s <= 0 || prev <= 0 {
		return EMANoSignal, Score{Reason: "EMA not ready"}
	}
	rising := f > prev
	slopePct := (f - prev) / prev * 100
	tolerance := 1 - cfg.CrossTolerance/100

	switch {
	case f > m && m > s:
		return EMAFullCross, Score{Points: cfg.FullPoints, Reason: "EMA fast>mid>slow"}
	case f >= m*tolerance && m >= s*tolerance && rising && slopePct > cfg.SlopePct:
		return EMAPreCross, Score{Points: cfg.PreCrossPoints, Reason: "EMA about to cross"}
	case math.Abs(f-m)/m*100 < cfg.ProximityPct && rising:
		return EMAPreparing, Score{Points: cfg.PreparingPoints, Reason: "EMA preparing to cross"}
	default:
		return EMANoSignal, Score{Reason: "EMA not ready"}
	}
}
