package detectors

import "smcSignalBot/internal/domain"

// Score is a detector's raw contribution before the fusion cap is applied.
type Score struct {
	Points float64
	Reason string
}

// FindSwings returns the swing highs and lows of klines, ordered by index.
// A HIGH is emitted when high[i] is strictly greater than every other high in
// the 2*radius+1 window centred on i, and a LOW symmetrically. Series shorter
// than the window yield no swings.
func FindSwings(klines []*domain.Kline, radius int) []domain.SwingPoint {
	if radius < 1 || len(klines) < 2*radius+1 {
		return nil
	}

	var swings []domain.SwingPoint
	for i := radius; i < len(klines)-radius; i++ {
		isHigh, isLow := true, true
		for j := i - radius; j <= i+radius && (isHigh || isLow); j++ {
			if j == i {
				continue
			}
			if klines[j].High >= klines[i].High {
				isHigh = false
			}
			if klines[j].Low <= klines[i].Low {
				isLow = false
			}
		}
		if isHigh {
			swings = append(swings, domain.SwingPoint{Price: klines[i].High, Index: i, Kind: domain.SwingHigh})
		}
		if isLow {
			swings = append(swings, domain.SwingPoint{Price: klines[i].Low, Index: i, Kind: domain.SwingLow})
		}
	}
	return swings
}

// SplitSwings separates swing points into highs and lows, preserving order.
func SplitSwings(swings []domain.SwingPoint) (highs, lows []domain.SwingPoint) {
	for _, s := range swings {
		switch s.Kind {
		case domain.SwingHigh:
			highs = append(highs, s)
		case domain.SwingLow:
			lows = append(lows, s)
		}
	}
	return highs, lows
}
