package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smcSignalBot/internal/domain"
)

// equalLowsSeries is 40 quiet candles around 100 with three wicks down to 95.
func equalLowsSeries() []*domain.Kline {
	klines := flat(40, 100, 100)
	for _, i := range []int{5, 10, 15} {
		klines[i].Low = 95
	}
	return klines
}

func findPool(pools []domain.LiquidityPool, poolType domain.PoolType, price float64) (domain.LiquidityPool, bool) {
	for _, p := range pools {
		if p.Type == poolType && p.Price > price-1e-9 && p.Price < price+1e-9 {
			return p, true
		}
	}
	return domain.LiquidityPool{}, false
}

func TestFindLiquidityPools(t *testing.T) {
	cfg := withDefaults[LiquidityConfig](t)
	pools := FindLiquidityPools(equalLowsSeries(), cfg)

	lows, ok := findPool(pools, domain.PoolSellSide, 95)
	require.True(t, ok, "equal lows form sell-side liquidity")
	assert.Equal(t, 3, lows.Touches)
	assert.Equal(t, 90.0, lows.Strength)
	assert.False(t, lows.Swept)

	highs, ok := findPool(pools, domain.PoolBuySide, 100.1)
	require.True(t, ok, "equal highs form buy-side liquidity")
	assert.Equal(t, 40, highs.Touches)

	psych, ok := findPool(pools, domain.PoolPsychological, 100)
	require.True(t, ok)
	assert.Equal(t, cfg.PsychologicalStrength, psych.Strength)

	for _, p := range pools {
		if p.Type != domain.PoolPsychological {
			assert.GreaterOrEqual(t, p.Touches, cfg.MinTouches)
		}
	}
}

func TestFindLiquidityPools_RecentCandlesDoNotSeedPools(t *testing.T) {
	cfg := withDefaults[LiquidityConfig](t)
	klines := flat(40, 100, 100)
	klines[35].Low = 95
	klines[38].Low = 95

	_, ok := findPool(FindLiquidityPools(klines, cfg), domain.PoolSellSide, 95)
	assert.False(t, ok)
	assert.Empty(t, FindLiquidityPools(nil, cfg))
}

func TestDetectSweeps_BullishStopHunt(t *testing.T) {
	cfg := withDefaults[LiquidityConfig](t)
	klines := equalLowsSeries()
	klines = series(append(klines, candle(95.2, 96.2, 94.5, 96, 300))...)

	pools := FindLiquidityPools(klines, cfg)
	updated, sweeps, degenerate := DetectSweeps(klines, pools, cfg)
	require.False(t, degenerate)
	require.Len(t, sweeps, 1)

	s := sweeps[0]
	assert.True(t, s.Bullish)
	assert.Equal(t, 40, s.CandleIndex)
	assert.Equal(t, domain.PoolSellSide, s.Pool.Type)
	assert.InDelta(t, 95*1.002, s.Entry, 1e-9)
	assert.InDelta(t, 95*0.997, s.Stop, 1e-9)

	swept, ok := findPool(updated, domain.PoolSellSide, 95)
	require.True(t, ok)
	assert.True(t, swept.Swept)
	original, _ := findPool(pools, domain.PoolSellSide, 95)
	assert.False(t, original.Swept, "input pools are not mutated")

	first, ok := FirstBullishSweep(sweeps)
	require.True(t, ok)
	assert.Equal(t, s, first)

	score := ScoreLiquidity(updated, sweeps, 50)
	assert.Equal(t, 50.0, score.Points)
}

func TestDetectSweeps_RequiresVolume(t *testing.T) {
	cfg := withDefaults[LiquidityConfig](t)
	klines := equalLowsSeries()
	klines = series(append(klines, candle(95.2, 96.2, 94.5, 96, 100))...)

	_, sweeps, degenerate := DetectSweeps(klines, FindLiquidityPools(klines, cfg), cfg)
	assert.False(t, degenerate)
	assert.Empty(t, sweeps)
}

func TestDetectSweeps_BearishSweepIsNotScored(t *testing.T) {
	cfg := withDefaults[LiquidityConfig](t)
	klines := flat(40, 100, 100)
	klines = series(append(klines, candle(100, 100.6, 99.6, 99.8, 400))...)

	pools := FindLiquidityPools(klines, cfg)
	_, sweeps, _ := DetectSweeps(klines, pools, cfg)

	require.NotEmpty(t, sweeps)
	for _, s := range sweeps {
		assert.False(t, s.Bullish)
		assert.NotEqual(t, domain.PoolPsychological, s.Pool.Type)
	}
	_, ok := FirstBullishSweep(sweeps)
	assert.False(t, ok)
	assert.Zero(t, ScoreLiquidity(pools, sweeps, 50).Points)
}

func TestDetectSweeps_ZeroVolumeIsDegenerate(t *testing.T) {
	cfg := withDefaults[LiquidityConfig](t)
	klines := flat(40, 100, 0)
	_, sweeps, degenerate := DetectSweeps(klines, FindLiquidityPools(klines, cfg), cfg)
	assert.True(t, degenerate)
	assert.Empty(t, sweeps)
}
