package detectors

import (
	"fmt"
	"math"

	"smcSignalBot/internal/domain"
)

// RangeBox is the consolidation check over the most recent candles.
type RangeBox struct {
	InRange  bool
	High     float64
	Low      float64
	RangePct float64
	Duration int
	Position float64
}

// DetectRange checks the last MaxDuration candles for a consolidation. The
// whole window must span at most MaxRangePct, and at least MinDuration of its
// candles must sit inside the box widened by InsideTolerancePct. Position is
// where the latest close sits inside the box, 0 at the low and 1 at the high.
func DetectRange(klines []*domain.Kline, cfg RangeConfig) RangeBox {
	n := len(klines)
	if n < cfg.MinDuration {
		return RangeBox{}
	}
	window := klines
	if n > cfg.MaxDuration {
		window = klines[n-cfg.MaxDuration:]
	}

	high, low := math.Inf(-1), math.Inf(1)
	for _, k := range window {
		high = math.Max(high, k.High)
		low = math.Min(low, k.Low)
	}
	if low <= 0 {
		return RangeBox{}
	}
	box := RangeBox{High: high, Low: low, RangePct: (high - low) / low * 100}
	if box.RangePct > cfg.MaxRangePct {
		return box
	}

	lowerBound := low * (1 - cfg.InsideTolerancePct/100)
	upperBound := high * (1 + cfg.InsideTolerancePct/100)
	for _, k := range window {
		if k.Low >= lowerBound && k.High <= upperBound {
			box.Duration++
		}
	}
	if box.Duration < cfg.MinDuration {
		return box
	}

	box.InRange = true
	box.Position = 0.5
	if high > low {
		box.Position = (klines[n-1].Close - low) / (high - low)
	}
	return box
}

// ScoreRange gives the discount bonus when price sits in the lower part of the box.
func ScoreRange(box RangeBox, cfg RangeConfig) Score {
	if !box.InRange {
		return Score{Reason: fmt.Sprintf("no consolidation (%.2f%% range, %d candles in box)", box.RangePct, box.Duration)}
	}
	reason := fmt.Sprintf("%.2f%% range for %d candles, position %.2f", box.RangePct, box.Duration, box.Position)
	if box.Position < cfg.DiscountPosition {
		return Score{Points: cfg.DiscountPoints, Reason: reason + " (discount)"}
	}
	return Score{Points: cfg.Points, Reason: reason}
}
