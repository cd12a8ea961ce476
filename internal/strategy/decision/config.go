package decision

import (
	"fmt"
	"strings"

	"smcSignalBot/internal/domain"
)

// TierPlan maps a confidence tier to its target and stop percentages.
type TierPlan struct {
	TargetsPct []float64 `yaml:"targets_pct" validate:"min=2,max=3,dive,gt=0"`
	StopPct    float64   `yaml:"stop_pct" validate:"gt=0,lt=100"`
}

// Plans holds one plan per tier.
type Plans struct {
	Good    TierPlan `yaml:"good"`
	High    TierPlan `yaml:"high"`
	Extreme TierPlan `yaml:"extreme"`
}

// For returns the plan of a tier.
func (p Plans) For(tier domain.Tier) TierPlan {
	switch tier {
	case domain.TierExtreme:
		return p.Extreme
	case domain.TierHigh:
		return p.High
	default:
		return p.Good
	}
}

// PullbackGate requires price to have retraced between MinPct and MaxPct off
// the highest high of the last Lookback candles.
type PullbackGate struct {
	Enabled  bool    `yaml:"enabled"`
	Lookback int     `yaml:"lookback" default:"20" validate:"gte=2"`
	MinPct   float64 `yaml:"min_pct" default:"0.3" validate:"gte=0"`
	MaxPct   float64 `yaml:"max_pct" default:"5" validate:"gtefield=MinPct"`
}

// DiscountGate requires price to sit below MaxPosition of the range spanned by
// the last Lookback candles.
type DiscountGate struct {
	Enabled     bool    `yaml:"enabled"`
	Lookback    int     `yaml:"lookback" default:"50" validate:"gte=2"`
	MaxPosition float64 `yaml:"max_position" default:"0.4" validate:"gt=0,lte=1"`
}

// Config holds score thresholds, tier plans and hard gates.
type Config struct {
	MinScore     float64      `yaml:"min_score" validate:"gte=0"`
	HighScore    float64      `yaml:"high_score" validate:"gte=0"`
	ExtremeScore float64      `yaml:"extreme_score" validate:"gte=0"`
	Plans        Plans        `yaml:"plans"`
	Pullback     PullbackGate `yaml:"pullback"`
	Discount     DiscountGate `yaml:"discount"`
}

// Validate checks the threshold ordering against the profile maximum and
// that every plan has strictly increasing targets.
func (c Config) Validate(maxScore float64) error {
	var errs []string
	if !(c.MinScore <= c.HighScore && c.HighScore <= c.ExtremeScore && c.ExtremeScore <= maxScore) {
		errs = append(errs, fmt.Sprintf("thresholds must satisfy min (%.0f) <= high (%.0f) <= extreme (%.0f) <= max score (%.0f)",
			c.MinScore, c.HighScore, c.ExtremeScore, maxScore))
	}
	plans := []struct {
		name string
		plan TierPlan
	}{{"good", c.Plans.Good}, {"high", c.Plans.High}, {"extreme", c.Plans.Extreme}}
	for _, p := range plans {
		name, plan := p.name, p.plan
		if len(plan.TargetsPct) < 2 || len(plan.TargetsPct) > 3 {
			errs = append(errs, fmt.Sprintf("%s plan needs 2 or 3 targets", name))
			continue
		}
		for i := 1; i < len(plan.TargetsPct); i++ {
			if plan.TargetsPct[i] <= plan.TargetsPct[i-1] {
				errs = append(errs, fmt.Sprintf("%s plan targets must increase", name))
				break
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("decision config: %s", strings.Join(errs, "; "))
	}
	return nil
}
