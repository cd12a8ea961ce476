package detectors

import (
	"fmt"

	"smcSignalBot/internal/domain"
)

// ScoreHigherLows looks for at least HigherLowsMin local lows within the last
// HigherLowsBars candles, the latest of which are strictly ascending.
func ScoreHigherLows(klines []*domain.Kline, cfg PatternConfig) Score {
	if len(klines) < cfg.HigherLowsBars {
		return Score{Reason: "not enough candles for higher lows"}
	}
	window := klines[len(klines)-cfg.HigherLowsBars:]

	// The two outermost candles on each side are never local lows.
	var lows []float64
	for i := 2; i < len(window)-2; i++ {
		if window[i].Low < window[i-1].Low && window[i].Low < window[i+1].Low {
			lows = append(lows, window[i].Low)
		}
	}
	if len(lows) < cfg.HigherLowsMin {
		return Score{Reason: fmt.Sprintf("%d local lows", len(lows))}
	}
	if !strictlyIncreasing(lows[len(lows)-cfg.HigherLowsMin:]) {
		return Score{Reason: "local lows not ascending"}
	}
	return Score{Points: cfg.HigherLowsPoints, Reason: fmt.Sprintf("%d higher lows", cfg.HigherLowsMin)}
}

// ScoreLowerWicks counts recent candles whose lower wick covers at least
// WickRatio of the full range.
func ScoreLowerWicks(klines []*domain.Kline, cfg PatternConfig) Score {
	if len(klines) < cfg.WickBars {
		return Score{Reason: "not enough candles for wick analysis"}
	}
	count := 0
	for _, k := range klines[len(klines)-cfg.WickBars:] {
		if r := k.Range(); r > 0 && k.LowerWick()/r >= cfg.WickRatio {
			count++
		}
	}
	if count < cfg.WickMinCount {
		return Score{Reason: fmt.Sprintf("%d rejection wicks", count)}
	}
	return Score{Points: cfg.WickPoints, Reason: fmt.Sprintf("%d rejection wicks in %d candles", count, cfg.WickBars)}
}
