package indicators

import (
	"context"
	"fmt"

	"smcSignalBot/internal/domain"
)

// ATRProxyConfig holds configuration for the range based volatility proxy
type ATRProxyConfig struct {
	IndicatorConfig
}

// ATRProxy approximates Average True Range as the rolling mean of highs minus
// the rolling mean of lows over the same period.
type ATRProxy struct {
	BaseIndicator
}

// NewATRProxy creates a new ATR proxy indicator instance
func NewATRProxy(config ATRProxyConfig) *ATRProxy {
	return &ATRProxy{BaseIndicator: BaseIndicator{Config: config.IndicatorConfig}}
}

// Name returns the name of the indicator
func (a *ATRProxy) Name() string {
	return "ATR_PROXY"
}

// Calculate returns the latest proxy value
func (a *ATRProxy) Calculate(ctx context.Context, klines []*domain.Kline) (float64, error) {
	series, err := a.Series(ctx, klines)
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}

// Series returns the proxy for every index from Period-1 onwards
func (a *ATRProxy) Series(ctx context.Context, klines []*domain.Kline) ([]float64, error) {
	period := a.Config.Period
	if period <= 0 {
		return nil, fmt.Errorf("invalid ATR proxy period %d", period)
	}
	if len(klines) < period {
		return nil, fmt.Errorf("not enough data points for ATR proxy calculation: need %d, got %d", period, len(klines))
	}

	highs := RollingMean(Highs(klines), period)
	lows := RollingMean(Lows(klines), period)

	out := make([]float64, len(highs))
	for i := range highs {
		out[i] = highs[i] - lows[i]
	}
	return out, nil
}
