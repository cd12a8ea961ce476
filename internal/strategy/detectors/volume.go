package detectors

import (
	"fmt"

	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/strategy/indicators"
)

// ScoreVolumePattern rewards quiet, declining volume inside a consolidation.
func ScoreVolumePattern(klines []*domain.Kline, cfg VolumeConfig) Score {
	volumes := indicators.Volumes(klines)
	n := len(volumes)
	avg, ok := indicators.MeanWindow(volumes, n-1, cfg.Period)
	if !ok || avg <= 0 || n < cfg.DecliningBars {
		return Score{Reason: "volume average unavailable"}
	}

	declining := true
	for i := n - cfg.DecliningBars + 1; i < n; i++ {
		if volumes[i] >= volumes[i-1] {
			declining = false
			break
		}
	}
	ratio := volumes[n-1] / avg
	low := ratio < cfg.LowRatio

	switch {
	case declining && low:
		return Score{Points: cfg.DecliningPoints, Reason: fmt.Sprintf("volume declining to %.0f%% of average", ratio*100)}
	case low:
		return Score{Points: cfg.LowPoints, Reason: fmt.Sprintf("volume low at %.0f%% of average", ratio*100)}
	default:
		return Score{Reason: fmt.Sprintf("volume normal at %.0f%% of average", ratio*100)}
	}
}

// BreakoutVolumeConfirmed reports whether the latest candle traded at least
// BreakoutRatio times the average volume. degenerate is true when the average
// cannot be computed or is zero.
func BreakoutVolumeConfirmed(klines []*domain.Kline, cfg VolumeConfig) (confirmed, degenerate bool) {
	volumes := indicators.Volumes(klines)
	avg, ok := indicators.MeanWindow(volumes, len(volumes)-1, cfg.Period)
	if !ok || avg <= 0 {
		return false, true
	}
	return volumes[len(volumes)-1] >= avg*cfg.BreakoutRatio, false
}
