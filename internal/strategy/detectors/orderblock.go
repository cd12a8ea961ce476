package detectors

import (
	"fmt"
	"math"
	"sort"

	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/strategy/indicators"
)

// FindOrderBlocks finds bearish high-volume candles that were immediately
// followed by a run of bullish candles rallying at least RallyPct. Blocks
// touched more than MaxTouches times afterwards are dropped. The result is
// ordered by strength, strongest first.
func FindOrderBlocks(klines []*domain.Kline, cfg OrderBlockConfig) []domain.OrderBlock {
	volumes := indicators.Volumes(klines)
	start := cfg.VolumePeriod - 1
	if start < 0 {
		start = 0
	}
	end := len(klines) - cfg.ConfirmationWindow

	var blocks []domain.OrderBlock
	for i := start; i < end; i++ {
		candle := klines[i]
		if !candle.IsBearish() || candle.Range() <= 0 || candle.Close <= 0 {
			continue
		}
		if candle.Body()/candle.Range() <= cfg.BodyRatio {
			continue
		}
		avgVolume, ok := indicators.MeanWindow(volumes, i, cfg.VolumePeriod)
		if !ok || candle.Volume <= avgVolume*cfg.VolumeMultiplier {
			continue
		}

		last := i + cfg.RallyCandles
		if last >= len(klines) {
			continue
		}
		if !allBullish(klines[i+1 : last+1]) {
			continue
		}
		rallyPct := (klines[last].Close - candle.Close) / candle.Close * 100
		if rallyPct <= cfg.RallyPct {
			continue
		}

		touches := 0
		for j := last + 1; j < len(klines); j++ {
			if klines[j].Low <= candle.High && klines[j].High >= candle.Low {
				touches++
			}
		}
		if touches > cfg.MaxTouches {
			continue
		}

		blocks = append(blocks, domain.OrderBlock{
			High:           candle.High,
			Low:            candle.Low,
			Strength:       math.Max(rallyPct, 0),
			Touches:        touches,
			FormationIndex: i,
		})
	}

	sort.SliceStable(blocks, func(a, b int) bool { return blocks[a].Strength > blocks[b].Strength })
	return blocks
}

// ScoreOrderBlocks awards full credit when price sits inside one of the TopN
// blocks and NearCredit of it when price is within NearPct of a block midpoint.
func ScoreOrderBlocks(blocks []domain.OrderBlock, price, maxPoints float64, cfg OrderBlockConfig) Score {
	if len(blocks) == 0 || price <= 0 {
		return Score{Reason: "no fresh order block"}
	}
	top := blocks
	if len(top) > cfg.TopN {
		top = top[:cfg.TopN]
	}

	for _, b := range top {
		if b.Contains(price) {
			return Score{
				Points: math.Min(maxPoints, b.Strength),
				Reason: fmt.Sprintf("price inside order block %.6g-%.6g (rally %.1f%%)", b.Low, b.High, b.Strength),
			}
		}
	}
	for _, b := range top {
		if math.Abs(price-b.Mid())/price*100 < cfg.NearPct {
			return Score{
				Points: math.Min(maxPoints, b.Strength) * cfg.NearCredit,
				Reason: fmt.Sprintf("price near order block %.6g-%.6g", b.Low, b.High),
			}
		}
	}
	return Score{Reason: fmt.Sprintf("%d order blocks away from price", len(blocks))}
}

func allBullish(klines []*domain.Kline) bool {
	for _, k := range klines {
		if !k.IsBullish() {
			return false
		}
	}
	return true
}
