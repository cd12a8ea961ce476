package indicators

import (
	"context"
	"fmt"

	"smcSignalBot/internal/domain"
)

// MovingAverageType defines the type of moving average
type MovingAverageType string

const (
	// SimpleMovingAverage represents a simple moving average
	SimpleMovingAverage MovingAverageType = "SMA"
	// ExponentialMovingAverage represents an exponential moving average
	ExponentialMovingAverage MovingAverageType = "EMA"
)

// MovingAverageConfig holds configuration for moving average indicators
type MovingAverageConfig struct {
	IndicatorConfig
	Type MovingAverageType
}

// MovingAverage implements both SMA and EMA indicators over closes
type MovingAverage struct {
	BaseIndicator
	config MovingAverageConfig
}

// NewMovingAverage creates a new moving average indicator instance
func NewMovingAverage(config MovingAverageConfig) *MovingAverage {
	return &MovingAverage{
		BaseIndicator: BaseIndicator{Config: config.IndicatorConfig},
		config:        config,
	}
}

// Name returns the name of the indicator
func (m *MovingAverage) Name() string {
	return string(m.config.Type)
}

// Calculate computes the latest moving average value based on the configured type
func (m *MovingAverage) Calculate(ctx context.Context, klines []*domain.Kline) (float64, error) {
	series, err := m.Series(ctx, klines)
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}

// Series computes the moving average for every index from Period-1 onwards.
func (m *MovingAverage) Series(ctx context.Context, klines []*domain.Kline) ([]float64, error) {
	if m.Config.Period <= 0 {
		return nil, fmt.Errorf("invalid %s period %d", m.config.Type, m.Config.Period)
	}
	if len(klines) < m.Config.Period {
		return nil, fmt.Errorf("not enough data (%d) to calculate %s for period %d", len(klines), m.config.Type, m.Config.Period)
	}

	closes := Closes(klines)
	switch m.config.Type {
	case SimpleMovingAverage:
		return RollingMean(closes, m.Config.Period), nil
	case ExponentialMovingAverage:
		return EMASeries(closes, m.Config.Period), nil
	default:
		return nil, fmt.Errorf("unsupported moving average type: %s", m.config.Type)
	}
}

// RollingMean returns the mean of every full window of period values.
// The result has len(values)-period+1 elements, or none when values is too short.
func RollingMean(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	out := make([]float64, 0, len(values)-period+1)
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out
}

// EMASeries seeds the average with the SMA of the first period values and then
// applies the exponential smoothing. Result is aligned like RollingMean.
func EMASeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	multiplier := 2.0 / float64(period+1)

	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}
	ema := seed / float64(period)

	out := make([]float64, 0, len(values)-period+1)
	out = append(out, ema)
	for _, v := range values[period:] {
		ema = (v-ema)*multiplier + ema
		out = append(out, ema)
	}
	return out
}

// MeanWindow returns the mean of values[end-period+1 : end+1].
// ok is false when the window does not fit.
func MeanWindow(values []float64, end, period int) (mean float64, ok bool) {
	if period <= 0 || end >= len(values) || end-period+1 < 0 {
		return 0, false
	}
	sum := 0.0
	for i := end - period + 1; i <= end; i++ {
		sum += values[i]
	}
	return sum / float64(period), true
}
