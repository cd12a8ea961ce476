package indicators

import (
	"context"
	"fmt"

	"smcSignalBot/internal/domain"
)

// RSIConfig holds configuration for the RSI indicator
type RSIConfig struct {
	IndicatorConfig
	Overbought float64
	Oversold   float64
}

// RSI implements the Relative Strength Index with Wilder's smoothing.
type RSI struct {
	BaseIndicator
	config RSIConfig
}

// NewRSI creates a new RSI indicator instance
func NewRSI(config RSIConfig) *RSI {
	return &RSI{
		BaseIndicator: BaseIndicator{Config: config.IndicatorConfig},
		config:        config,
	}
}

// Name returns the name of the indicator
func (r *RSI) Name() string {
	return "RSI"
}

// RequiredDataPoints is one more than the period since RSI works on changes.
func (r *RSI) RequiredDataPoints() int {
	return r.Config.Period + 1
}

// Calculate returns the latest RSI value.
func (r *RSI) Calculate(ctx context.Context, klines []*domain.Kline) (float64, error) {
	series, err := r.Series(ctx, klines)
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}

// Series returns RSI for every kline from index Period onwards.
func (r *RSI) Series(ctx context.Context, klines []*domain.Kline) ([]float64, error) {
	period := r.Config.Period
	if period <= 0 {
		return nil, fmt.Errorf("invalid RSI period %d", period)
	}
	if len(klines) <= period {
		return nil, fmt.Errorf("not enough data (%d) to calculate RSI for period %d", len(klines), period)
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		if change := klines[i].Close - klines[i-1].Close; change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	n := float64(period)
	out := make([]float64, 0, len(klines)-period)
	out = append(out, rsiValue(avgGain, avgLoss))
	for i := period + 1; i < len(klines); i++ {
		change := klines[i].Close - klines[i-1].Close
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*(n-1) + gain) / n
		avgLoss = (avgLoss*(n-1) + loss) / n
		out = append(out, rsiValue(avgGain, avgLoss))
	}
	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50 // no movement
		}
		return 100
	}
	rsi := 100 - 100/(1+avgGain/avgLoss)
	switch {
	case rsi > 100:
		return 100
	case rsi < 0:
		return 0
	}
	return rsi
}

// IsOverbought checks if the RSI value indicates an overbought condition
func (r *RSI) IsOverbought(value float64) bool {
	return value >= r.config.Overbought
}

// IsOversold checks if the RSI value indicates an oversold condition
func (r *RSI) IsOversold(value float64) bool {
	return value <= r.config.Oversold
}

// Zone labels a value as overbought, oversold or neutral.
func (r *RSI) Zone(value float64) string {
	switch {
	case r.IsOverbought(value):
		return "overbought"
	case r.IsOversold(value):
		return "oversold"
	default:
		return "neutral"
	}
}
