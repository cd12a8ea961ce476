package indicators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smcSignalBot/internal/domain"
)

func closeKlines(closes ...float64) []*domain.Kline {
	klines := make([]*domain.Kline, len(closes))
	for i, c := range closes {
		klines[i] = &domain.Kline{Open: c, High: c, Low: c, Close: c}
	}
	return klines
}

func newTestRSI(period int) *RSI {
	return NewRSI(RSIConfig{IndicatorConfig: IndicatorConfig{Period: period}, Overbought: 70, Oversold: 30})
}

func TestRSI_Series(t *testing.T) {
	tests := []struct {
		name    string
		period  int
		closes  []float64
		want    []float64
		wantErr bool
	}{
		{
			name:   "alternating moves use wilder smoothing",
			period: 3,
			closes: []float64{100, 102, 101, 103, 102, 104},
			want:   []float64{80, 61.538462, 77.272727},
		},
		{
			name:   "only gains saturate at 100",
			period: 3,
			closes: []float64{100, 102, 104, 106},
			want:   []float64{100},
		},
		{
			name:   "only losses floor at 0",
			period: 3,
			closes: []float64{106, 104, 102, 100},
			want:   []float64{0},
		},
		{
			name:   "flat series is neutral",
			period: 3,
			closes: []float64{5, 5, 5, 5, 5},
			want:   []float64{50, 50},
		},
		{
			name:    "needs one close more than the period",
			period:  3,
			closes:  []float64{100, 101, 102},
			wantErr: true,
		},
		{
			name:    "zero period",
			period:  0,
			closes:  []float64{100, 101},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rsi := newTestRSI(tt.period)
			series, err := rsi.Series(context.Background(), closeKlines(tt.closes...))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, series, len(tt.closes)-tt.period, "warm-up drops the first period closes")
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], series[i], 1e-4)
			}

			last, err := rsi.Calculate(context.Background(), closeKlines(tt.closes...))
			require.NoError(t, err)
			assert.Equal(t, series[len(series)-1], last)
		})
	}
}

func TestRSI_Zone(t *testing.T) {
	rsi := newTestRSI(14)

	tests := []struct {
		value float64
		want  string
	}{
		{value: 100, want: "overbought"},
		{value: 70, want: "overbought"},
		{value: 69.9, want: "neutral"},
		{value: 50, want: "neutral"},
		{value: 30.1, want: "neutral"},
		{value: 30, want: "oversold"},
		{value: 0, want: "oversold"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, rsi.Zone(tt.value), "zone of %.1f", tt.value)
		assert.Equal(t, tt.want == "overbought", rsi.IsOverbought(tt.value))
		assert.Equal(t, tt.want == "oversold", rsi.IsOversold(tt.value))
	}
}

func TestRSI_Metadata(t *testing.T) {
	var ind Indicator = newTestRSI(14)

	assert.Equal(t, "RSI", ind.Name())
	assert.Equal(t, 15, ind.RequiredDataPoints())
}
