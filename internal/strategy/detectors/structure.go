package detectors

import (
	"fmt"

	"smcSignalBot/internal/domain"
)

// ClassifyStructure reads the trend regime from the last Lookback swing highs
// and lows and the current price. Rules are tried in order BULLISH_BOS,
// BULLISH_CHOCH, BEARISH_BOS, with RANGE as the fallback.
func ClassifyStructure(swings []domain.SwingPoint, price float64, cfg StructureConfig) domain.StructureState {
	rangeState := domain.StructureState{Type: domain.StructureRange}

	k := cfg.Lookback
	if k < 3 {
		k = 3
	}
	highs, lows := SplitSwings(swings)
	if len(highs) < k || len(lows) < k {
		return rangeState
	}

	recentHighs := prices(highs[len(highs)-k:])
	recentLows := prices(lows[len(lows)-k:])
	prevHigh := highs[len(highs)-2].Price
	prevLow := lows[len(lows)-2].Price

	if strictlyIncreasing(recentHighs) && strictlyIncreasing(recentLows) &&
		price > prevHigh*(1+cfg.BreakoutPct/100) {
		return domain.StructureState{
			Type:              domain.StructureBullishBOS,
			Strength:          cfg.BOSStrength,
			InvalidationPrice: prevLow,
			BreakoutLevel:     prevHigh,
		}
	}

	if strictlyDecreasing(recentHighs[:k-1]) && price > prevHigh {
		return domain.StructureState{
			Type:              domain.StructureBullishCHoCH,
			Strength:          cfg.CHoCHStrength,
			InvalidationPrice: prevLow,
			BreakoutLevel:     prevHigh,
		}
	}

	if strictlyDecreasing(recentHighs) && strictlyDecreasing(recentLows) {
		return domain.StructureState{Type: domain.StructureBearishBOS}
	}

	return rangeState
}

// AnalyzeStructure detects swings over klines and classifies them against the latest close.
func AnalyzeStructure(klines []*domain.Kline, cfg StructureConfig) domain.StructureState {
	if len(klines) == 0 {
		return domain.StructureState{Type: domain.StructureRange}
	}
	swings := FindSwings(klines, cfg.SwingRadius)
	return ClassifyStructure(swings, klines[len(klines)-1].Close, cfg)
}

// ScoreStructure turns a structure state into its raw contribution.
func ScoreStructure(state domain.StructureState) Score {
	switch state.Type {
	case domain.StructureBullishCHoCH:
		return Score{Points: state.Strength, Reason: fmt.Sprintf("CHoCH above %.6g, invalid below %.6g", state.BreakoutLevel, state.InvalidationPrice)}
	case domain.StructureBullishBOS:
		return Score{Points: state.Strength, Reason: fmt.Sprintf("BOS above %.6g, invalid below %.6g", state.BreakoutLevel, state.InvalidationPrice)}
	case domain.StructureBearishBOS:
		return Score{Reason: "bearish break of structure"}
	default:
		return Score{Reason: "no directional structure"}
	}
}

func prices(points []domain.SwingPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Price
	}
	return out
}

func strictlyIncreasing(values []float64) bool {
	for i := 1; i < len(values); i++ {
		if values[i] <= values[i-1] {
			return false
		}
	}
	return true
}

func strictlyDecreasing(values []float64) bool {
	for i := 1; i < len(values); i++ {
		if values[i] >= values[i-1] {
			return false
		}
	}
	return true
}
