package profile

import (
	"fmt"
	"sort"
	"time"

	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/ports"
)

const (
	// Structure trades bullish BOS/CHoCH continuations and reversals.
	Structure = "structure"
	// Range trades mean reversion inside a tight consolidation.
	Range = "range"
)

var builtins = map[string]func(*Profile){
	Structure: func(p *Profile) {
		p.Regime = RegimeTrend
		p.MaxScore = 400
		p.Weights = map[domain.Component]float64{
			domain.ComponentStructure:    150,
			domain.ComponentOrderBlock:   80,
			domain.ComponentFairValueGap: 70,
			domain.ComponentLiquidity:    50,
			domain.ComponentWhales:       50,
		}
		p.BreakoutVolumePenalty = 0.9
		p.Cooldown = 2 * time.Hour
		p.Decision.MinScore = 200
		p.Decision.HighScore = 245
		p.Decision.ExtremeScore = 290
		p.Decision.Pullback.Enabled = true
	},
	Range: func(p *Profile) {
		p.Regime = RegimeRange
		p.MaxScore = 550
		p.Weights = map[domain.Component]float64{
			domain.ComponentRange:         60,
			domain.ComponentEMASetup:      70,
			domain.ComponentVolumePattern: 50,
			domain.ComponentHigherLows:    45,
			domain.ComponentLowerWicks:    35,
			domain.ComponentOrderBlock:    80,
			domain.ComponentFairValueGap:  70,
			domain.ComponentLiquidity:     50,
			domain.ComponentWhales:        50,
			domain.ComponentVolatility:    40,
		}
		p.Cooldown = 8 * time.Hour
		p.Decision.MinScore = 275
		p.Decision.HighScore = 340
		p.Decision.ExtremeScore = 400
		p.Decision.Discount.Enabled = true
	},
}

// Builtin returns a fresh copy of a named built-in profile.
func Builtin(name string) (*Profile, error) {
	apply, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown profile %q (available: %v)", ports.ErrConfigurationError, name, Names())
	}
	p, err := New(name)
	if err != nil {
		return nil, err
	}
	apply(p)
	return p, nil
}

// Names lists the built-in profile names.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
