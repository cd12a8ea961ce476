package detectors

// Percentages in these configs are expressed in percent (0.5 means 0.5%).
// Ratios and multipliers are plain factors.

// StructureConfig configures swing detection and market structure classification.
type StructureConfig struct {
	SwingRadius   int     `yaml:"swing_radius" default:"10" validate:"gte=1"`
	Lookback      int     `yaml:"lookback" default:"3" validate:"gte=3"`
	BreakoutPct   float64 `yaml:"breakout_pct" default:"0.5" validate:"gte=0"`
	BOSStrength   float64 `yaml:"bos_strength" default:"120" validate:"gte=0"`
	CHoCHStrength float64 `yaml:"choch_strength" default:"150" validate:"gte=0"`
}

// OrderBlockConfig configures order block detection and scoring.
type OrderBlockConfig struct {
	BodyRatio          float64 `yaml:"body_ratio" default:"0.6" validate:"gt=0,lt=1"`
	VolumeMultiplier   float64 `yaml:"volume_multiplier" default:"2.0" validate:"gt=0"`
	VolumePeriod       int     `yaml:"volume_period" default:"50" validate:"gte=1"`
	RallyCandles       int     `yaml:"rally_candles" default:"3" validate:"gte=1"`
	RallyPct           float64 `yaml:"rally_pct" default:"2.0" validate:"gt=0"`
	ConfirmationWindow int     `yaml:"confirmation_window" default:"5" validate:"gte=0"`
	MaxTouches         int     `yaml:"max_touches" default:"1" validate:"gte=0"`
	TopN               int     `yaml:"top_n" default:"3" validate:"gte=1"`
	NearPct            float64 `yaml:"near_pct" default:"0.5" validate:"gte=0"`
	NearCredit         float64 `yaml:"near_credit" default:"0.7" validate:"gt=0,lte=1"`
}

// FVGConfig configures fair value gap detection and scoring.
type FVGConfig struct {
	MinSizePct   float64 `yaml:"min_size_pct" default:"0.8" validate:"gte=0"`
	MaxFilledPct float64 `yaml:"max_filled_pct" default:"70" validate:"gt=0,lte=100"`
	SizeWeight   float64 `yaml:"size_weight" default:"20" validate:"gte=0"`
}

// LiquidityConfig configures liquidity pool clustering and sweep detection.
type LiquidityConfig struct {
	Lookback              int     `yaml:"lookback" default:"100" validate:"gte=10"`
	ClusterWindow         int     `yaml:"cluster_window" default:"50" validate:"gte=1"`
	ExcludeRecent         int     `yaml:"exclude_recent" default:"20" validate:"gte=0"`
	TolerancePct          float64 `yaml:"tolerance_pct" default:"0.3" validate:"gt=0"`
	MinTouches            int     `yaml:"min_touches" default:"2" validate:"gte=2"`
	StrengthPerTouch      float64 `yaml:"strength_per_touch" default:"30" validate:"gte=0"`
	PsychologicalStrength float64 `yaml:"psychological_strength" default:"10" validate:"gte=0"`
	SweepCandles          int     `yaml:"sweep_candles" default:"3" validate:"gte=1"`
	SweepVolumePeriod     int     `yaml:"sweep_volume_period" default:"20" validate:"gte=1"`
	SweepVolumeMultiplier float64 `yaml:"sweep_volume_multiplier" default:"1.5" validate:"gt=0"`
	SweepStrength         float64 `yaml:"sweep_strength" default:"100" validate:"gte=0"`
	EntryOffsetPct        float64 `yaml:"entry_offset_pct" default:"0.2" validate:"gte=0"`
	StopOffsetPct         float64 `yaml:"stop_offset_pct" default:"0.3" validate:"gt=0"`
}

// VolatilityConfig configures the ATR proxy tiers. Points are fixed per tier.
type VolatilityConfig struct {
	Period       int     `yaml:"period" default:"14" validate:"gte=1"`
	HighRatio    float64 `yaml:"high_ratio" default:"1.3" validate:"gt=0"`
	MediumRatio  float64 `yaml:"medium_ratio" default:"1.0" validate:"gt=0"`
	HighPoints   float64 `yaml:"high_points" default:"50" validate:"gte=0"`
	MediumPoints float64 `yaml:"medium_points" default:"35" validate:"gte=0"`
	LowPoints    float64 `yaml:"low_points" default:"20" validate:"gte=0"`
}

// WhaleConfig configures large participant activity scoring.
type WhaleConfig struct {
	VolumePeriod       int     `yaml:"volume_period" default:"50" validate:"gte=1"`
	SpikeBars          int     `yaml:"spike_bars" default:"3" validate:"gte=1"`
	SpikeMultiplier    float64 `yaml:"spike_multiplier" default:"5" validate:"gt=0"`
	SpikePoints        float64 `yaml:"spike_points" default:"50" validate:"gte=0"`
	AccumulationBars   int     `yaml:"accumulation_bars" default:"10" validate:"gte=1"`
	BodyToWick         float64 `yaml:"body_to_wick" default:"1.5" validate:"gt=0"`
	AccumulationPoints float64 `yaml:"accumulation_points" default:"30" validate:"gte=0"`
	DefenseBars        int     `yaml:"defense_bars" default:"5" validate:"gte=1"`
	DefenseWickToBody  float64 `yaml:"defense_wick_to_body" default:"2" validate:"gt=0"`
	DefensePoints      float64 `yaml:"defense_points" default:"20" validate:"gte=0"`
}

// RangeConfig configures consolidation box detection.
type RangeConfig struct {
	MinDuration int     `yaml:"min_duration" default:"16" validate:"gte=2"`
	MaxDuration int     `yaml:"max_duration" default:"32" validate:"gtefield=MinDuration"`
	MaxRangePct float64 `yaml:"max_range_pct" default:"1.8" validate:"gt=0"`
	// InsideTolerancePct widens the box when counting candles inside it.
	InsideTolerancePct float64 `yaml:"inside_tolerance_pct" default:"0.5" validate:"gte=0"`
	DiscountPosition   float64 `yaml:"discount_position" default:"0.4" validate:"gt=0,lte=1"`
	DiscountPoints     float64 `yaml:"discount_points" default:"60" validate:"gte=0"`
	Points             float64 `yaml:"points" default:"40" validate:"gte=0"`
}

// EMAConfig configures the 5/8/13 EMA setup analyzer.
type EMAConfig struct {
	Fast            int     `yaml:"fast" default:"5" validate:"gte=1"`
	Mid             int     `yaml:"mid" default:"8" validate:"gtfield=Fast"`
	Slow            int     `yaml:"slow" default:"13" validate:"gtfield=Mid"`
	ProximityPct    float64 `yaml:"proximity_pct" default:"0.3" validate:"gt=0"`
	CrossTolerance  float64 `yaml:"cross_tolerance_pct" default:"0.2" validate:"gte=0"`
	SlopeBars       int     `yaml:"slope_bars" default:"2" validate:"gte=1"`
	SlopePct        float64 `yaml:"slope_pct" default:"0.2" validate:"gte=0"`
	FullPoints      float64 `yaml:"full_points" default:"70" validate:"gte=0"`
	PreCrossPoints  float64 `yaml:"pre_cross_points" default:"55" validate:"gte=0"`
	PreparingPoints float64 `yaml:"preparing_points" default:"40" validate:"gte=0"`
}

// VolumeConfig configures the volume pattern analyzer and breakout confirmation.
type VolumeConfig struct {
	Period          int     `yaml:"period" default:"20" validate:"gte=1"`
	DecliningBars   int     `yaml:"declining_bars" default:"3" validate:"gte=2"`
	LowRatio        float64 `yaml:"low_ratio" default:"0.7" validate:"gt=0"`
	DecliningPoints float64 `yaml:"declining_points" default:"50" validate:"gte=0"`
	LowPoints       float64 `yaml:"low_points" default:"30" validate:"gte=0"`
	BreakoutRatio   float64 `yaml:"breakout_ratio" default:"1.2" validate:"gt=0"`
}

// PatternConfig configures the higher-lows and lower-wick detectors.
type PatternConfig struct {
	HigherLowsBars   int     `yaml:"higher_lows_bars" default:"15" validate:"gte=5"`
	HigherLowsMin    int     `yaml:"higher_lows_min" default:"3" validate:"gte=2"`
	HigherLowsPoints float64 `yaml:"higher_lows_points" default:"45" validate:"gte=0"`
	WickBars         int     `yaml:"wick_bars" default:"10" validate:"gte=1"`
	WickRatio        float64 `yaml:"wick_ratio" default:"0.3" validate:"gt=0,lt=1"`
	WickMinCount     int     `yaml:"wick_min_count" default:"3" validate:"gte=1"`
	WickPoints       float64 `yaml:"wick_points" default:"35" validate:"gte=0"`
}
