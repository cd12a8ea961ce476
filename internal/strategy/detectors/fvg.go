package detectors

import (
	"fmt"
	"math"

	"smcSignalBot/internal/domain"
)

// FindFairValueGaps detects bullish and bearish three-candle gaps whose size
// exceeds MinSizePct of the middle candle's close. FilledPct is the deepest
// later penetration back into the gap, clamped to [0,100]. Gaps are returned
// in formation order whether active or not.
func FindFairValueGaps(klines []*domain.Kline, cfg FVGConfig) []domain.FairValueGap {
	var gaps []domain.FairValueGap
	for i := 1; i < len(klines)-1; i++ {
		prev, mid, next := klines[i-1], klines[i], klines[i+1]
		if mid.Close <= 0 {
			continue
		}

		var gap domain.FairValueGap
		switch {
		case next.Low > prev.High:
			gap = domain.FairValueGap{Top: next.Low, Bottom: prev.High, Type: domain.GapBullish}
		case next.High < prev.Low:
			gap = domain.FairValueGap{Top: prev.Low, Bottom: next.High, Type: domain.GapBearish}
		default:
			continue
		}

		size := gap.Top - gap.Bottom
		gap.SizePct = size / mid.Close * 100
		if gap.SizePct <= cfg.MinSizePct {
			continue
		}
		gap.FormationIndex = i
		gap.FilledPct = gapFill(gap, klines[i+2:])
		gaps = append(gaps, gap)
	}
	return gaps
}

func gapFill(gap domain.FairValueGap, later []*domain.Kline) float64 {
	size := gap.Top - gap.Bottom
	filled := 0.0
	for _, k := range later {
		var penetration float64
		if gap.Type == domain.GapBullish {
			penetration = (gap.Top - k.Low) / size * 100
		} else {
			penetration = (k.High - gap.Bottom) / size * 100
		}
		filled = math.Max(filled, penetration)
		if filled >= 100 {
			return 100
		}
	}
	return filled
}

// ActiveGaps keeps the gaps whose fill is still below MaxFilledPct.
func ActiveGaps(gaps []domain.FairValueGap, cfg FVGConfig) []domain.FairValueGap {
	var active []domain.FairValueGap
	for _, g := range gaps {
		if g.FilledPct < cfg.MaxFilledPct {
			active = append(active, g)
		}
	}
	return active
}

// ScoreFairValueGaps scores the most recently formed active bullish gap that
// contains price. The base is SizePct*SizeWeight minus FilledPct, plus the
// volatility bonus, clamped to [0, maxPoints].
func ScoreFairValueGaps(gaps []domain.FairValueGap, price, volatilityPoints, maxPoints float64, cfg FVGConfig) Score {
	active := ActiveGaps(gaps, cfg)
	for i := len(active) - 1; i >= 0; i-- {
		g := active[i]
		if g.Type != domain.GapBullish || !g.Contains(price) {
			continue
		}
		base := g.SizePct*cfg.SizeWeight - g.FilledPct
		points := math.Max(0, math.Min(maxPoints, base+volatilityPoints))
		return Score{
			Points: points,
			Reason: fmt.Sprintf("inside %.2f%% gap %.6g-%.6g, %.0f%% filled", g.SizePct, g.Bottom, g.Top, g.FilledPct),
		}
	}
	return Score{Reason: fmt.Sprintf("%d active gaps, none at price", len(active))}
}
