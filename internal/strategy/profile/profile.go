package profile

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/ports"
	"smcSignalBot/internal/strategy/decision"
	"smcSignalBot/internal/strategy/detectors"
	"smcSignalBot/internal/strategy/fusion"
)

// Regime is the market structure a profile trades in.
type Regime string

const (
	// RegimeTrend requires a bullish BOS or CHoCH.
	RegimeTrend Regime = "trend"
	// RegimeRange requires the structure to stay in RANGE.
	RegimeRange Regime = "range"
	// RegimeAny never vetoes on structure.
	RegimeAny Regime = "any"
)

const (
	minCooldown = time.Hour
	maxCooldown = 8 * time.Hour
)

// Profile is the complete, operator-tunable configuration of one scanning
// strategy: which detectors are scored, how much each may contribute, and how
// the fused score is turned into a decision.
type Profile struct {
	Name      string `yaml:"name" validate:"required"`
	Extends   string `yaml:"extends,omitempty"`
	Timeframe string `yaml:"timeframe" default:"15m" validate:"required"`
	Candles   int    `yaml:"candles" default:"500" validate:"gte=50,lte=1500"`
	Regime    Regime `yaml:"regime" default:"trend" validate:"oneof=trend range any"`

	MaxScore float64                      `yaml:"max_score" validate:"gt=0"`
	Weights  map[domain.Component]float64 `yaml:"weights" validate:"required,min=1,dive,gt=0"`
	// BreakoutVolumePenalty multiplies the fused total when the latest candle
	// lacks breakout volume. 1 disables the penalty.
	BreakoutVolumePenalty float64       `yaml:"breakout_volume_penalty" default:"1" validate:"gt=0,lte=1"`
	Cooldown              time.Duration `yaml:"cooldown" default:"2h"`

	Structure  detectors.StructureConfig  `yaml:"structure"`
	OrderBlock detectors.OrderBlockConfig `yaml:"order_block"`
	FVG        detectors.FVGConfig        `yaml:"fair_value_gap"`
	Liquidity  detectors.LiquidityConfig  `yaml:"liquidity"`
	Volatility detectors.VolatilityConfig `yaml:"volatility"`
	Whales     detectors.WhaleConfig      `yaml:"whales"`
	Range      detectors.RangeConfig      `yaml:"range"`
	EMA        detectors.EMAConfig        `yaml:"ema"`
	Volume     detectors.VolumeConfig     `yaml:"volume"`
	Patterns   detectors.PatternConfig    `yaml:"patterns"`
	Decision   decision.Config            `yaml:"decision"`
}

var knownComponents = map[domain.Component]bool{
	domain.ComponentStructure:     true,
	domain.ComponentOrderBlock:    true,
	domain.ComponentFairValueGap:  true,
	domain.ComponentLiquidity:     true,
	domain.ComponentWhales:        true,
	domain.ComponentVolatility:    true,
	domain.ComponentRange:         true,
	domain.ComponentEMASetup:      true,
	domain.ComponentVolumePattern: true,
	domain.ComponentHigherLows:    true,
	domain.ComponentLowerWicks:    true,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// New returns a profile with every detector option at its default value.
// Weights, thresholds and plans for the built-in strategies come from Builtin.
func New(name string) (*Profile, error) {
	p := &Profile{Name: name}
	if err := defaults.Set(p); err != nil {
		return nil, fmt.Errorf("%w: applying profile defaults: %w", ports.ErrConfigurationError, err)
	}
	return p, nil
}

// Validate checks field ranges, the weight table, threshold ordering and the cooldown window.
func (p *Profile) Validate() error {
	var errs []string

	if err := validate.Struct(p); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				errs = append(errs, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	for c := range p.Weights {
		if !knownComponents[c] {
			errs = append(errs, fmt.Sprintf("unknown component %q in weights", c))
		}
	}
	if err := fusion.ValidateWeights(p.Weights, p.MaxScore); err != nil {
		errs = append(errs, err.Error())
	}
	if err := p.Decision.Validate(p.MaxScore); err != nil {
		errs = append(errs, err.Error())
	}
	if p.Decision.MinScore <= 0 {
		errs = append(errs, "decision.min_score must be positive")
	}
	if p.Cooldown < minCooldown || p.Cooldown > maxCooldown {
		errs = append(errs, fmt.Sprintf("cooldown %s outside [%s, %s]", p.Cooldown, minCooldown, maxCooldown))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: profile %q: %s", ports.ErrConfigurationError, p.Name, strings.Join(errs, "; "))
	}
	return nil
}

// Scores reports whether the component is part of the weight table.
func (p *Profile) Scores(c domain.Component) bool {
	_, ok := p.Weights[c]
	return ok
}

// RequiredDataPoints is the minimum series length for a meaningful analysis:
// enough candles for one full swing window and for every enabled gate.
// Individual detectors degrade to neutral scores on shorter series.
func (p *Profile) RequiredDataPoints() int {
	required := 2*p.Structure.SwingRadius + 1
	if p.Decision.Pullback.Enabled && p.Decision.Pullback.Lookback > required {
		required = p.Decision.Pullback.Lookback
	}
	if p.Decision.Discount.Enabled && p.Decision.Discount.Lookback > required {
		required = p.Decision.Discount.Lookback
	}
	return required
}
