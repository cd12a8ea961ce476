package indicators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovingAverage_Series(t *testing.T) {
	closes := []float64{2, 4, 6, 8, 12}

	tests := []struct {
		name    string
		kind    MovingAverageType
		period  int
		closes  []float64
		want    []float64
		wantErr bool
	}{
		{name: "simple", kind: SimpleMovingAverage, period: 3, closes: closes, want: []float64{4, 6, 26.0 / 3}},
		{name: "exponential seeded with the simple mean", kind: ExponentialMovingAverage, period: 3, closes: closes, want: []float64{4, 6, 9}},
		{name: "period equal to length", kind: SimpleMovingAverage, period: 5, closes: closes, want: []float64{6.4}},
		{name: "period one follows closes", kind: ExponentialMovingAverage, period: 1, closes: closes, want: closes},
		{name: "too short", kind: ExponentialMovingAverage, period: 6, closes: closes, wantErr: true},
		{name: "zero period", kind: SimpleMovingAverage, period: 0, closes: closes, wantErr: true},
		{name: "unknown type", kind: "WMA", period: 2, closes: closes, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ma Indicator = NewMovingAverage(MovingAverageConfig{
				IndicatorConfig: IndicatorConfig{Period: tt.period},
				Type:            tt.kind,
			})
			series, err := ma.Series(context.Background(), closeKlines(tt.closes...))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, series, len(tt.closes)-tt.period+1)
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], series[i], 1e-9)
			}

			last, err := ma.Calculate(context.Background(), closeKlines(tt.closes...))
			require.NoError(t, err)
			assert.InDelta(t, tt.want[len(tt.want)-1], last, 1e-9)
			assert.Equal(t, string(tt.kind), ma.Name())
			assert.Equal(t, tt.period, ma.RequiredDataPoints())
		})
	}
}

func TestRollingMean(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		period int
		want   []float64
	}{
		{name: "sliding windows", values: []float64{1, 3, 5, 7}, period: 2, want: []float64{2, 4, 6}},
		{name: "too short", values: []float64{1}, period: 2},
		{name: "negative period", values: []float64{1, 2}, period: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RollingMean(tt.values, tt.period)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-9)
			}
		})
	}
}

func TestMeanWindow(t *testing.T) {
	values := []float64{10, 20, 30, 40}

	tests := []struct {
		name     string
		end      int
		period   int
		wantMean float64
		wantOK   bool
	}{
		{name: "trailing window", end: 3, period: 2, wantMean: 35, wantOK: true},
		{name: "whole slice", end: 3, period: 4, wantMean: 25, wantOK: true},
		{name: "window starts before zero", end: 1, period: 3},
		{name: "end past slice", end: 4, period: 1},
		{name: "zero period", end: 2, period: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, ok := MeanWindow(values, tt.end, tt.period)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.wantMean, mean, 1e-9)
		})
	}
}
