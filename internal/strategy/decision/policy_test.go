package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smcSignalBot/internal/domain"
)

func plans() Plans {
	return Plans{
		Good:    TierPlan{TargetsPct: []float64{2.0, 3.5}, StopPct: 1.0},
		High:    TierPlan{TargetsPct: []float64{2.5, 4.0}, StopPct: 1.2},
		Extreme: TierPlan{TargetsPct: []float64{3.0, 5.0, 8.0}, StopPct: 1.5},
	}
}

func testConfig() Config {
	return Config{
		MinScore:     200,
		HighScore:    245,
		ExtremeScore: 290,
		Plans:        plans(),
		Pullback:     PullbackGate{Lookback: 20, MinPct: 0.3, MaxPct: 5},
		Discount:     DiscountGate{Lookback: 50, MaxPosition: 0.4},
	}
}

func closes(values ...float64) []*domain.Kline {
	out := make([]*domain.Kline, len(values))
	for i, v := range values {
		out[i] = &domain.Kline{Open: v, High: v, Low: v, Close: v}
	}
	return out
}

func TestDecide_Tiers(t *testing.T) {
	p := NewPolicy(testConfig())
	klines := closes(100, 101, 100)

	tests := []struct {
		name    string
		total   float64
		tier    domain.Tier
		targets []float64
		stop    float64
	}{
		{name: "good at the minimum", total: 200, tier: domain.TierGood, targets: []float64{102, 103.5}, stop: 99},
		{name: "high", total: 260, tier: domain.TierHigh, targets: []float64{102.5, 104}, stop: 98.8},
		{name: "extreme", total: 290, tier: domain.TierExtreme, targets: []float64{103, 105, 108}, stop: 98.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := p.Decide(Input{Klines: klines, Total: tt.total})
			assert.Equal(t, domain.DecisionBuy, out.Decision)
			assert.Equal(t, tt.tier, out.Tier)
			assert.Equal(t, 100.0, out.Entry)
			require.Len(t, out.Targets, len(tt.targets))
			for i := range tt.targets {
				assert.InDelta(t, tt.targets[i], out.Targets[i], 1e-9)
			}
			assert.InDelta(t, tt.stop, out.StopLoss, 1e-9)
			assert.Less(t, out.StopLoss, out.Entry)
		})
	}
}

func TestDecide_StopsWidenWithTier(t *testing.T) {
	p := NewPolicy(testConfig())
	klines := closes(100)
	good := p.Decide(Input{Klines: klines, Total: 200})
	high := p.Decide(Input{Klines: klines, Total: 250})
	extreme := p.Decide(Input{Klines: klines, Total: 300})
	assert.Greater(t, good.StopLoss, high.StopLoss)
	assert.Greater(t, high.StopLoss, extreme.StopLoss)
}

func TestDecide_Waits(t *testing.T) {
	cfg := testConfig()
	cfg.Pullback.Enabled = true
	p := NewPolicy(cfg)

	tests := []struct {
		name   string
		in     Input
		reason domain.WaitReason
	}{
		{name: "no candles", in: Input{Total: 300}, reason: domain.WaitInsufficientData},
		{name: "veto wins over score", in: Input{Klines: closes(101, 100), Total: 400, Veto: domain.WaitStructureBearish}, reason: domain.WaitStructureBearish},
		{name: "no pullback at the high", in: Input{Klines: closes(99, 100), Total: 300}, reason: domain.WaitPullbackOutOfBounds},
		{name: "pullback too deep", in: Input{Klines: closes(110, 100), Total: 300}, reason: domain.WaitPullbackOutOfBounds},
		{name: "below minimum", in: Input{Klines: closes(101, 100), Total: 199.9}, reason: domain.WaitScoreBelowMinimum},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := p.Decide(tt.in)
			assert.Equal(t, domain.DecisionWait, out.Decision)
			assert.Equal(t, tt.reason, out.WaitReason)
			assert.Equal(t, domain.TierNone, out.Tier)
			assert.Empty(t, out.Targets)
			assert.NotEmpty(t, out.Reasons)
		})
	}

	out := p.Decide(Input{Klines: closes(101, 100), Total: 300})
	assert.Equal(t, domain.DecisionBuy, out.Decision)
}

func TestDecide_EntryOverride(t *testing.T) {
	p := NewPolicy(testConfig())
	out := p.Decide(Input{Klines: closes(100), Total: 200, Entry: 95.19})
	assert.Equal(t, 95.19, out.Entry)
	assert.InDelta(t, 95.19*0.99, out.StopLoss, 1e-9)
}

func TestCheckDiscount(t *testing.T) {
	gate := DiscountGate{Enabled: true, Lookback: 50, MaxPosition: 0.4}

	ok, position := CheckDiscount(closes(100, 110, 103), gate)
	assert.True(t, ok)
	assert.InDelta(t, 0.3, position, 1e-9)

	ok, _ = CheckDiscount(closes(100, 110, 108), gate)
	assert.False(t, ok)

	ok, position = CheckDiscount(closes(100, 100, 100), gate)
	assert.False(t, ok)
	assert.Equal(t, 0.5, position)

	cfg := testConfig()
	cfg.Discount.Enabled = true
	out := NewPolicy(cfg).Decide(Input{Klines: closes(100, 110, 108), Total: 300})
	assert.Equal(t, domain.WaitPremiumZone, out.WaitReason)
}

func TestCheckPullback_UsesLookbackWindow(t *testing.T) {
	gate := PullbackGate{Enabled: true, Lookback: 2, MinPct: 0.3, MaxPct: 5}
	ok, pct := CheckPullback(closes(200, 101, 100), gate)
	assert.True(t, ok)
	assert.InDelta(t, 100.0/101, pct, 1e-9)
}

func TestConfigValidate(t *testing.T) {
	cfg := testConfig()
	assert.NoError(t, cfg.Validate(400))

	assert.Error(t, cfg.Validate(250), "extreme above max score")

	unordered := testConfig()
	unordered.HighScore = 300
	assert.Error(t, unordered.Validate(400))

	badTargets := testConfig()
	badTargets.Plans.High.TargetsPct = []float64{4.0, 2.5}
	assert.Error(t, badTargets.Validate(400))

	single := testConfig()
	single.Plans.Good.TargetsPct = []float64{2.0}
	assert.Error(t, single.Validate(400))
}

func TestConfigValidate_ReportsPlansInTierOrder(t *testing.T) {
	cfg := testConfig()
	cfg.Plans.Extreme.TargetsPct = []float64{9}
	cfg.Plans.High.TargetsPct = []float64{4.0, 2.5}
	cfg.Plans.Good.TargetsPct = []float64{1}

	want := "decision config: good plan needs 2 or 3 targets; high plan targets must increase; extreme plan needs 2 or 3 targets"
	for i := 0; i < 10; i++ {
		err := cfg.Validate(400)
		require.Error(t, err)
		assert.Equal(t, want, err.Error())
	}
}
