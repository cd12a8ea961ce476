package detectors

import (
	"strings"

	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/strategy/indicators"
)

// ScoreWhales looks for footprints of large participants: a recent volume
// spike against the preceding average, clean accumulation candles with bodies
// dominating wicks, and long lower wicks defending support.
func ScoreWhales(klines []*domain.Kline, cfg WhaleConfig) Score {
	n := len(klines)
	if n < cfg.VolumePeriod+cfg.SpikeBars {
		return Score{Reason: "not enough candles for whale activity"}
	}

	var points float64
	var reasons []string

	volumes := indicators.Volumes(klines)
	baseline, ok := indicators.MeanWindow(volumes, n-cfg.SpikeBars-1, cfg.VolumePeriod)
	recent, _ := indicators.MeanWindow(volumes, n-1, cfg.SpikeBars)
	if ok && baseline > 0 && recent > baseline*cfg.SpikeMultiplier {
		points += cfg.SpikePoints
		reasons = append(reasons, "volume spike")
	}

	if n >= cfg.AccumulationBars {
		var body, wick float64
		for _, k := range klines[n-cfg.AccumulationBars:] {
			body += k.Body()
			wick += k.UpperWick() + k.LowerWick()
		}
		if body > wick*cfg.BodyToWick {
			points += cfg.AccumulationPoints
			reasons = append(reasons, "clean accumulation")
		}
	}

	if n >= cfg.DefenseBars {
		for _, k := range klines[n-cfg.DefenseBars:] {
			if k.LowerWick() > cfg.DefenseWickToBody*k.Body() {
				points += cfg.DefensePoints
				reasons = append(reasons, "support defended")
				break
			}
		}
	}

	if len(reasons) == 0 {
		return Score{Reason: "no whale activity"}
	}
	return Score{Points: points, Reason: strings.Join(reasons, ", ")}
}
