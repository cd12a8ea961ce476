package domain

// SwingKind marks a swing point as a local high or low.
type SwingKind string

const (
	SwingHigh SwingKind = "HIGH"
	SwingLow  SwingKind = "LOW"
)

// SwingPoint is a local price extremum at a candle index.
type SwingPoint struct {
	Price float64
	Index int
	Kind  SwingKind
}

// StructureType enumerates the market structure regimes.
type StructureType string

const (
	StructureRange        StructureType = "RANGE"
	StructureBullishBOS   StructureType = "BULLISH_BOS"
	StructureBullishCHoCH StructureType = "BULLISH_CHOCH"
	StructureBearishBOS   StructureType = "BEARISH_BOS"
)

// StructureState is the classified market structure of a series.
// InvalidationPrice is set only for trade-eligible states.
type StructureState struct {
	Type              StructureType
	Strength          float64
	InvalidationPrice float64
	BreakoutLevel     float64
}

// IsBullish reports whether the state is one of the trade-eligible bullish regimes.
func (s StructureState) IsBullish() bool {
	return s.Type == StructureBullishBOS || s.Type == StructureBullishCHoCH
}

// OrderBlock is the last bearish high-volume candle before a strong rally.
type OrderBlock struct {
	High           float64
	Low            float64
	Strength       float64
	Touches        int
	FormationIndex int
}

// Mid returns the midpoint of the block.
func (b OrderBlock) Mid() float64 {
	return (b.High + b.Low) / 2
}

// Contains reports whether price sits inside the block.
func (b OrderBlock) Contains(price float64) bool {
	return price >= b.Low && price <= b.High
}

// GapType is the direction of a fair value gap.
type GapType string

const (
	GapBullish GapType = "BULLISH"
	GapBearish GapType = "BEARISH"
)

// FairValueGap is a three-candle imbalance zone.
type FairValueGap struct {
	Top            float64
	Bottom         float64
	Type           GapType
	SizePct        float64
	FilledPct      float64
	FormationIndex int
}

// Contains reports whether price sits inside the gap.
func (g FairValueGap) Contains(price float64) bool {
	return price >= g.Bottom && price <= g.Top
}

// PoolType classifies a liquidity pool.
type PoolType string

const (
	PoolSellSide      PoolType = "SELL_SIDE"
	PoolBuySide       PoolType = "BUY_SIDE"
	PoolPsychological PoolType = "PSYCHOLOGICAL"
)

// LiquidityPool is a clustered price level where stops are presumed to rest.
type LiquidityPool struct {
	Price    float64
	Touches  int
	Type     PoolType
	Strength float64
	Swept    bool
}

// LiquiditySweep records a candle that pierced a pool and closed back on its
// originating side.
type LiquiditySweep struct {
	Pool        LiquidityPool
	CandleIndex int
	Bullish     bool
	Strength    float64
	Entry       float64
	Stop        float64
}

// VolatilityTier buckets the ATR proxy ratio.
type VolatilityTier string

const (
	VolatilityLow    VolatilityTier = "LOW"
	VolatilityMedium VolatilityTier = "MEDIUM"
	VolatilityHigh   VolatilityTier = "HIGH"
)

// VolatilityReading is the output of the volatility scorer.
type VolatilityReading struct {
	Tier       VolatilityTier
	Ratio      float64
	Points     float64
	Degenerate bool
}
