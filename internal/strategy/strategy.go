package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/ports"
	"smcSignalBot/internal/strategy/decision"
	"smcSignalBot/internal/strategy/detectors"
	"smcSignalBot/internal/strategy/fusion"
	"smcSignalBot/internal/strategy/indicators"
	"smcSignalBot/internal/strategy/profile"
)

// Config holds the dependencies of the analyzer.
type Config struct {
	Profile *profile.Profile
	Logger  ports.Logger
	// Now stamps produced signals. Defaults to time.Now.
	Now func() time.Time
}

// Strategy runs every detector of a profile over one kline snapshot, fuses the
// contributions and applies the decision policy. It holds no mutable state and
// is safe for concurrent use.
type Strategy struct {
	profile *profile.Profile
	engine  *fusion.Engine
	policy  *decision.Policy
	rsi     *indicators.RSI
	logger  ports.Logger
	now     func() time.Time
}

// New creates a new Strategy instance for a validated profile.
func New(cfg Config) (*Strategy, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for strategy")
	}
	if cfg.Profile == nil {
		return nil, fmt.Errorf("%w: profile is required for strategy", ports.ErrConfigurationError)
	}
	if err := cfg.Profile.Validate(); err != nil {
		return nil, err
	}
	engine, err := fusion.NewEngine(cfg.Profile.Weights, cfg.Profile.MaxScore)
	if err != nil {
		return nil, err
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	rsi := indicators.NewRSI(indicators.RSIConfig{
		IndicatorConfig: indicators.IndicatorConfig{Period: 14},
		Overbought:      70,
		Oversold:        30,
	})
	return &Strategy{
		profile: cfg.Profile,
		engine:  engine,
		policy:  decision.NewPolicy(cfg.Profile.Decision),
		rsi:     rsi,
		logger:  cfg.Logger,
		now:     now,
	}, nil
}

// Profile returns the profile the strategy was built with.
func (s *Strategy) Profile() *profile.Profile {
	return s.profile
}

// RequiredDataPoints returns the minimum number of klines needed for the strategy calculations.
func (s *Strategy) RequiredDataPoints() int {
	return s.profile.RequiredDataPoints()
}

// snapshot carries intermediate detector output needed after fusion.
type snapshot struct {
	structure domain.StructureState
	box       detectors.RangeBox
	emaSetup  detectors.EMASetup
	sweep     *domain.LiquiditySweep
}

// Analyze evaluates klines and returns a WAIT or BUY signal. Short series
// produce a WAIT with reason insufficient_data rather than an error.
func (s *Strategy) Analyze(ctx context.Context, symbol string, klines []*domain.Kline) (*domain.Signal, error) {
	op := "Analyze"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s %s: %w: %w", op, symbol, ports.ErrContextCanceled, err)
	}

	p := s.profile
	sig := &domain.Signal{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Timeframe: p.Timeframe,
		Profile:   p.Name,
		Decision:  domain.DecisionWait,
		Direction: domain.DirectionLong,
		MaxScore:  p.MaxScore,
		Structure: domain.StructureRange,
		Timestamp: s.now(),
	}

	if required := s.RequiredDataPoints(); len(klines) < required {
		s.logger.Debug(ctx, "Not enough kline data for analysis", map[string]interface{}{
			"symbol": symbol, "available": len(klines), "required": required,
		})
		sig.WaitReason = domain.WaitInsufficientData
		sig.Breakdown = s.engine.Fuse(nil, 1).Breakdown
		sig.Reasons = []string{fmt.Sprintf("%d candles, need %d", len(klines), required)}
		return sig, nil
	}

	scores, snap := s.runDetectors(ctx, symbol, klines)

	penalty := 1.0
	if p.BreakoutVolumePenalty < 1 {
		confirmed, degenerate := detectors.BreakoutVolumeConfirmed(klines, p.Volume)
		if degenerate {
			s.logger.Debug(ctx, "Breakout volume average unavailable", map[string]interface{}{"symbol": symbol})
		}
		if !confirmed {
			penalty = p.BreakoutVolumePenalty
		}
	}
	fused := s.engine.Fuse(scores, penalty)

	in := decision.Input{Klines: klines, Total: fused.Total, Veto: s.veto(snap)}
	if snap.sweep != nil && fused.Breakdown[domain.ComponentLiquidity].Points > 0 {
		in.Entry = snap.sweep.Entry
	}
	out := s.policy.Decide(in)

	sig.Decision = out.Decision
	sig.TotalScore = fused.Total
	sig.Tier = out.Tier
	sig.Entry = out.Entry
	if sig.Entry == 0 {
		sig.Entry = klines[len(klines)-1].Close
	}
	sig.Targets = out.Targets
	sig.StopLoss = out.StopLoss
	sig.Breakdown = fused.Breakdown
	sig.WaitReason = out.WaitReason
	sig.Structure = snap.structure.Type
	sig.Reasons = out.Reasons
	if fused.Penalty < 1 {
		sig.Reasons = append(sig.Reasons, fmt.Sprintf("breakout volume unconfirmed, score x%.2f", fused.Penalty))
	}

	fields := map[string]interface{}{
		"symbol":    symbol,
		"profile":   p.Name,
		"decision":  sig.Decision,
		"score":     fmt.Sprintf("%.1f/%.0f", sig.TotalScore, sig.MaxScore),
		"structure": sig.Structure,
	}
	if sig.IsBuy() {
		// RSI is shown to the reader only and never scored.
		if v, err := s.rsi.Calculate(ctx, klines); err == nil {
			sig.Reasons = append(sig.Reasons, fmt.Sprintf("RSI(14) %.0f %s", v, s.rsi.Zone(v)))
		}
		fields["tier"] = sig.Tier
		fields["entry"] = sig.Entry
		s.logger.Info(ctx, op+": BUY conditions met", fields)
	} else {
		fields["reason"] = sig.WaitReason
		s.logger.Debug(ctx, op+": waiting", fields)
	}
	return sig, nil
}

// runDetectors computes the raw contribution of every weighted component.
// Structure is always classified since the regime veto depends on it.
func (s *Strategy) runDetectors(ctx context.Context, symbol string, klines []*domain.Kline) (map[domain.Component]detectors.Score, snapshot) {
	p := s.profile
	price := klines[len(klines)-1].Close
	scores := make(map[domain.Component]detectors.Score)
	var snap snapshot

	snap.structure = detectors.AnalyzeStructure(klines, p.Structure)
	if p.Scores(domain.ComponentStructure) {
		scores[domain.ComponentStructure] = detectors.ScoreStructure(snap.structure)
	}

	var vol domain.VolatilityReading
	if p.Scores(domain.ComponentVolatility) || p.Scores(domain.ComponentFairValueGap) {
		vol = detectors.ScoreVolatility(klines, p.Volatility)
		if vol.Degenerate {
			s.logger.Debug(ctx, "Volatility average degenerate, using low tier", map[string]interface{}{"symbol": symbol})
		}
		if p.Scores(domain.ComponentVolatility) {
			scores[domain.ComponentVolatility] = detectors.VolatilityScore(vol)
		}
	}

	if w, ok := s.engine.Weight(domain.ComponentOrderBlock); ok {
		blocks := detectors.FindOrderBlocks(klines, p.OrderBlock)
		scores[domain.ComponentOrderBlock] = detectors.ScoreOrderBlocks(blocks, price, w, p.OrderBlock)
	}

	if w, ok := s.engine.Weight(domain.ComponentFairValueGap); ok {
		gaps := detectors.FindFairValueGaps(klines, p.FVG)
		scores[domain.ComponentFairValueGap] = detectors.ScoreFairValueGaps(gaps, price, vol.Points, w, p.FVG)
	}

	if w, ok := s.engine.Weight(domain.ComponentLiquidity); ok {
		pools := detectors.FindLiquidityPools(klines, p.Liquidity)
		pools, sweeps, degenerate := detectors.DetectSweeps(klines, pools, p.Liquidity)
		if degenerate {
			s.logger.Debug(ctx, "Sweep volume average degenerate, skipping sweeps", map[string]interface{}{"symbol": symbol})
		}
		if sweep, found := detectors.FirstBullishSweep(sweeps); found {
			snap.sweep = &sweep
		}
		scores[domain.ComponentLiquidity] = detectors.ScoreLiquidity(pools, sweeps, w)
	}

	if p.Scores(domain.ComponentWhales) {
		scores[domain.ComponentWhales] = detectors.ScoreWhales(klines, p.Whales)
	}

	if p.Scores(domain.ComponentRange) {
		snap.box = detectors.DetectRange(klines, p.Range)
		scores[domain.ComponentRange] = detectors.ScoreRange(snap.box, p.Range)
	}

	if p.Scores(domain.ComponentEMASetup) {
		setup, score := detectors.ScoreEMASetup(ctx, klines, p.EMA)
		snap.emaSetup = setup
		scores[domain.ComponentEMASetup] = score
	}

	if p.Scores(domain.ComponentVolumePattern) {
		scores[domain.ComponentVolumePattern] = detectors.ScoreVolumePattern(klines, p.Volume)
	}
	if p.Scores(domain.ComponentHigherLows) {
		scores[domain.ComponentHigherLows] = detectors.ScoreHigherLows(klines, p.Patterns)
	}
	if p.Scores(domain.ComponentLowerWicks) {
		scores[domain.ComponentLowerWicks] = detectors.ScoreLowerWicks(klines, p.Patterns)
	}

	return scores, snap
}

// veto returns the regime or precondition failure that forces WAIT, if any.
func (s *Strategy) veto(snap snapshot) domain.WaitReason {
	p := s.profile
	switch p.Regime {
	case profile.RegimeTrend:
		if snap.structure.Type == domain.StructureBearishBOS {
			return domain.WaitStructureBearish
		}
		if !snap.structure.IsBullish() {
			return domain.WaitStructureNotTrending
		}
	case profile.RegimeRange:
		if snap.structure.Type != domain.StructureRange {
			return domain.WaitStructureNotRange
		}
	}
	if p.Scores(domain.ComponentRange) && !snap.box.InRange {
		return domain.WaitOutsideRange
	}
	if p.Scores(domain.ComponentEMASetup) && snap.emaSetup == detectors.EMANoSignal {
		return domain.WaitEMANotReady
	}
	return domain.WaitNone
}
