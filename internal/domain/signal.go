package domain

import (
	"sort"
	"time"
)

// Component names a scored detector in a profile weight table.
type Component string

const (
	ComponentStructure     Component = "market_structure"
	ComponentOrderBlock    Component = "order_block"
	ComponentFairValueGap  Component = "fair_value_gap"
	ComponentLiquidity     Component = "liquidity"
	ComponentWhales        Component = "whales"
	ComponentVolatility    Component = "volatility"
	ComponentRange         Component = "range"
	ComponentEMASetup      Component = "ema_setup"
	ComponentVolumePattern Component = "volume_pattern"
	ComponentHigherLows    Component = "higher_lows"
	ComponentLowerWicks    Component = "lower_wicks"
)

// Contribution is one component's share of the fused score.
type Contribution struct {
	Points float64 `json:"points"`
	Max    float64 `json:"max"`
	Reason string  `json:"reason"`
}

// ScoreBreakdown maps each scored component to its contribution.
type ScoreBreakdown map[Component]Contribution

// Components returns the component names sorted alphabetically.
func (b ScoreBreakdown) Components() []Component {
	names := make([]Component, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Signal is the immutable result of one analysis pass for one instrument.
type Signal struct {
	ID         string         `json:"id"`
	Symbol     string         `json:"symbol"`
	Timeframe  string         `json:"timeframe"`
	Profile    string         `json:"profile"`
	Decision   Decision       `json:"decision"`
	Direction  Direction      `json:"direction"`
	TotalScore float64        `json:"total_score"`
	MaxScore   float64        `json:"max_score"`
	Tier       Tier           `json:"tier,omitempty"`
	Entry      float64        `json:"entry"`
	Targets    []float64      `json:"targets,omitempty"`
	StopLoss   float64        `json:"stop_loss,omitempty"`
	Breakdown  ScoreBreakdown `json:"breakdown"`
	WaitReason WaitReason     `json:"wait_reason,omitempty"`
	Structure  StructureType  `json:"structure"`
	Reasons    []string       `json:"reasons,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// IsBuy reports whether the signal is actionable.
func (s *Signal) IsBuy() bool {
	return s.Decision == DecisionBuy
}

// Status is a periodic health report emitted by the heartbeat task.
type Status struct {
	StartedAt        time.Time
	Uptime           time.Duration
	Cycles           int64
	InstrumentsSeen  int64
	SignalsEmitted   int64
	SignalsDeduped   int64
	LastCycleAt      time.Time
	LastCycleElapsed time.Duration
}
