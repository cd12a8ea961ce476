package decision

import (
	"fmt"
	"math"

	"smcSignalBot/internal/domain"
)

// Input is everything the policy needs for one candidate.
type Input struct {
	Klines []*domain.Kline
	Total  float64
	// Veto, when set, forces WAIT before any gate or threshold is checked.
	Veto domain.WaitReason
	// Entry overrides the latest close as entry price when positive.
	Entry float64
}

// Outcome is the decision for one candidate.
type Outcome struct {
	Decision   domain.Decision
	Tier       domain.Tier
	WaitReason domain.WaitReason
	Entry      float64
	Targets    []float64
	StopLoss   float64
	Reasons    []string
}

// Policy turns a fused score into WAIT or a tiered BUY.
type Policy struct {
	cfg Config
}

// NewPolicy creates a policy. cfg is expected to be validated already.
func NewPolicy(cfg Config) *Policy {
	return &Policy{cfg: cfg}
}

// Decide evaluates the veto, then the enabled hard gates, then the minimum
// score. Only a candidate passing all three becomes BUY.
func (p *Policy) Decide(in Input) Outcome {
	if len(in.Klines) == 0 {
		return wait(domain.WaitInsufficientData, "no candles")
	}
	price := in.Klines[len(in.Klines)-1].Close

	if in.Veto != domain.WaitNone {
		return wait(in.Veto, string(in.Veto))
	}

	var reasons []string
	if p.cfg.Pullback.Enabled {
		ok, pct := CheckPullback(in.Klines, p.cfg.Pullback)
		if !ok {
			return wait(domain.WaitPullbackOutOfBounds,
				fmt.Sprintf("pullback %.2f%% outside %.2f%%-%.2f%%", pct, p.cfg.Pullback.MinPct, p.cfg.Pullback.MaxPct))
		}
		reasons = append(reasons, fmt.Sprintf("pullback %.2f%%", pct))
	}
	if p.cfg.Discount.Enabled {
		ok, position := CheckDiscount(in.Klines, p.cfg.Discount)
		if !ok {
			return wait(domain.WaitPremiumZone,
				fmt.Sprintf("price at %.0f%% of range, limit %.0f%%", position*100, p.cfg.Discount.MaxPosition*100))
		}
		reasons = append(reasons, fmt.Sprintf("discount zone %.0f%%", position*100))
	}

	if in.Total < p.cfg.MinScore {
		return wait(domain.WaitScoreBelowMinimum, fmt.Sprintf("score %.1f below minimum %.1f", in.Total, p.cfg.MinScore))
	}

	tier := p.TierFor(in.Total)
	entry := price
	if in.Entry > 0 {
		entry = in.Entry
	}
	plan := p.cfg.Plans.For(tier)
	targets := make([]float64, len(plan.TargetsPct))
	for i, pct := range plan.TargetsPct {
		targets[i] = entry * (1 + pct/100)
	}

	return Outcome{
		Decision: domain.DecisionBuy,
		Tier:     tier,
		Entry:    entry,
		Targets:  targets,
		StopLoss: entry * (1 - plan.StopPct/100),
		Reasons:  append(reasons, fmt.Sprintf("%s tier at %.1f", tier, in.Total)),
	}
}

// TierFor assigns the confidence tier of a passing score.
func (p *Policy) TierFor(total float64) domain.Tier {
	switch {
	case total >= p.cfg.ExtremeScore:
		return domain.TierExtreme
	case total >= p.cfg.HighScore:
		return domain.TierHigh
	default:
		return domain.TierGood
	}
}

// CheckPullback measures the retrace of the latest close from the highest
// high of the gate's lookback window.
func CheckPullback(klines []*domain.Kline, gate PullbackGate) (ok bool, pct float64) {
	window := tail(klines, gate.Lookback)
	if len(window) == 0 {
		return false, 0
	}
	recentHigh := math.Inf(-1)
	for _, k := range window {
		recentHigh = math.Max(recentHigh, k.High)
	}
	if recentHigh <= 0 {
		return false, 0
	}
	pct = (recentHigh - window[len(window)-1].Close) / recentHigh * 100
	return pct >= gate.MinPct && pct <= gate.MaxPct, pct
}

// CheckDiscount locates the latest close inside the gate's lookback range.
// A flat range puts price in the middle.
func CheckDiscount(klines []*domain.Kline, gate DiscountGate) (ok bool, position float64) {
	window := tail(klines, gate.Lookback)
	if len(window) == 0 {
		return false, 0
	}
	high, low := math.Inf(-1), math.Inf(1)
	for _, k := range window {
		high = math.Max(high, k.High)
		low = math.Min(low, k.Low)
	}
	position = 0.5
	if high > low {
		position = (window[len(window)-1].Close - low) / (high - low)
	}
	return position < gate.MaxPosition, position
}

func wait(reason domain.WaitReason, detail string) Outcome {
	return Outcome{Decision: domain.DecisionWait, WaitReason: reason, Reasons: []string{detail}}
}

func tail(klines []*domain.Kline, n int) []*domain.Kline {
	if n <= 0 || n >= len(klines) {
		return klines
	}
	return klines[len(klines)-n:]
}
