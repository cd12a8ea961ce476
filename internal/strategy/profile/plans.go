package profile

import "smcSignalBot/internal/strategy/decision"

// DefaultPlans are the tier plans used by the built-in profiles: wider
// targets and wider stops as conviction grows.
func DefaultPlans() decision.Plans {
	return decision.Plans{
		Good:    decision.TierPlan{TargetsPct: []float64{2.0, 3.5}, StopPct: 1.0},
		High:    decision.TierPlan{TargetsPct: []float64{2.5, 4.0}, StopPct: 1.2},
		Extreme: decision.TierPlan{TargetsPct: []float64{3.0, 5.0, 8.0}, StopPct: 1.5},
	}
}

// SetDefaults fills plans left empty after defaults are applied.
func (p *Profile) SetDefaults() {
	def := DefaultPlans()
	if len(p.Decision.Plans.Good.TargetsPct) == 0 {
		p.Decision.Plans.Good = def.Good
	}
	if len(p.Decision.Plans.High.TargetsPct) == 0 {
		p.Decision.Plans.High = def.High
	}
	if len(p.Decision.Plans.Extreme.TargetsPct) == 0 {
		p.Decision.Plans.Extreme = def.Extreme
	}
}
