package detectors

import (
	"fmt"
	"math"

	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/strategy/indicators"
)

// FindLiquidityPools clusters near-equal highs into BUY_SIDE pools and
// near-equal lows into SELL_SIDE pools over the last Lookback candles, then
// adds the psychological round numbers bracketing the latest close.
func FindLiquidityPools(klines []*domain.Kline, cfg LiquidityConfig) []domain.LiquidityPool {
	if len(klines) == 0 {
		return nil
	}
	window := klines
	if len(window) > cfg.Lookback {
		window = window[len(window)-cfg.Lookback:]
	}

	pools := clusterLevels(indicators.Highs(window), domain.PoolBuySide, cfg)
	pools = append(pools, clusterLevels(indicators.Lows(window), domain.PoolSellSide, cfg)...)
	pools = append(pools, psychologicalLevels(klines[len(klines)-1].Close, cfg)...)
	return pools
}

func clusterLevels(values []float64, poolType domain.PoolType, cfg LiquidityConfig) []domain.LiquidityPool {
	tol := cfg.TolerancePct / 100
	var pools []domain.LiquidityPool

	for i := 0; i < len(values)-cfg.ExcludeRecent; i++ {
		level := values[i]
		if level <= 0 {
			continue
		}
		touches := 1
		for j := i + 1; j < len(values) && j < i+cfg.ClusterWindow; j++ {
			if math.Abs(values[j]-level)/level < tol {
				touches++
			}
		}
		if touches < cfg.MinTouches {
			continue
		}

		merged := false
		for p := range pools {
			if math.Abs(pools[p].Price-level)/pools[p].Price < tol {
				if touches > pools[p].Touches {
					pools[p].Touches = touches
					pools[p].Strength = float64(touches) * cfg.StrengthPerTouch
				}
				merged = true
				break
			}
		}
		if !merged {
			pools = append(pools, domain.LiquidityPool{
				Price:    level,
				Touches:  touches,
				Type:     poolType,
				Strength: float64(touches) * cfg.StrengthPerTouch,
			})
		}
	}
	return pools
}

// psychologicalLevels returns the half-step round numbers directly below and
// above price, where step is the power of ten of the price magnitude.
func psychologicalLevels(price float64, cfg LiquidityConfig) []domain.LiquidityPool {
	if price <= 0 {
		return nil
	}
	half := math.Pow(10, math.Floor(math.Log10(price))) / 2
	below := math.Floor(price/half) * half
	above := math.Ceil(price/half) * half

	levels := []float64{below}
	if above != below {
		levels = append(levels, above)
	}
	pools := make([]domain.LiquidityPool, 0, len(levels))
	for _, l := range levels {
		pools = append(pools, domain.LiquidityPool{Price: l, Type: domain.PoolPsychological, Strength: cfg.PsychologicalStrength})
	}
	return pools
}

// DetectSweeps checks the last SweepCandles candles for a wick through each
// non-psychological pool that closes back on the pool's originating side on
// above-average volume. It returns a copy of pools with Swept set and the
// sweeps found, at most one per pool. degenerate is true when the volume
// average is zero or cannot be computed.
func DetectSweeps(klines []*domain.Kline, pools []domain.LiquidityPool, cfg LiquidityConfig) (updated []domain.LiquidityPool, sweeps []domain.LiquiditySweep, degenerate bool) {
	updated = append([]domain.LiquidityPool(nil), pools...)
	if len(klines) == 0 {
		return updated, nil, false
	}

	avgVolume, ok := indicators.MeanWindow(indicators.Volumes(klines), len(klines)-1, cfg.SweepVolumePeriod)
	if !ok || avgVolume <= 0 {
		return updated, nil, true
	}

	from := len(klines) - cfg.SweepCandles
	if from < 0 {
		from = 0
	}
	for p := range updated {
		pool := &updated[p]
		if pool.Type == domain.PoolPsychological {
			continue
		}
		for i := from; i < len(klines); i++ {
			k := klines[i]
			if k.Volume <= avgVolume*cfg.SweepVolumeMultiplier {
				continue
			}
			var bullish bool
			switch {
			case pool.Type == domain.PoolSellSide && k.Low < pool.Price && k.Close > pool.Price:
				bullish = true
			case pool.Type == domain.PoolBuySide && k.High > pool.Price && k.Close < pool.Price:
				bullish = false
			default:
				continue
			}

			pool.Swept = true
			sweep := domain.LiquiditySweep{Pool: *pool, CandleIndex: i, Bullish: bullish, Strength: cfg.SweepStrength}
			if bullish {
				sweep.Entry = pool.Price * (1 + cfg.EntryOffsetPct/100)
				sweep.Stop = pool.Price * (1 - cfg.StopOffsetPct/100)
			} else {
				sweep.Entry = pool.Price * (1 - cfg.EntryOffsetPct/100)
				sweep.Stop = pool.Price * (1 + cfg.StopOffsetPct/100)
			}
			sweeps = append(sweeps, sweep)
			break
		}
	}
	return updated, sweeps, false
}

// FirstBullishSweep returns the first bullish sweep, if any.
func FirstBullishSweep(sweeps []domain.LiquiditySweep) (domain.LiquiditySweep, bool) {
	for _, s := range sweeps {
		if s.Bullish {
			return s, true
		}
	}
	return domain.LiquiditySweep{}, false
}

// ScoreLiquidity scores the first bullish sweep as a stop hunt.
func ScoreLiquidity(pools []domain.LiquidityPool, sweeps []domain.LiquiditySweep, maxPoints float64) Score {
	if s, ok := FirstBullishSweep(sweeps); ok {
		return Score{
			Points: math.Min(maxPoints, s.Strength),
			Reason: fmt.Sprintf("sell-side liquidity at %.6g swept (%d touches)", s.Pool.Price, s.Pool.Touches),
		}
	}
	return Score{Reason: fmt.Sprintf("%d pools, no bullish sweep", len(pools))}
}
