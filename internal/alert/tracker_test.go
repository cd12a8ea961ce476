package alert

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/ports"
)

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestTracker(t *testing.T, cooldown time.Duration) *Tracker {
	t.Helper()
	tracker, err := NewTracker(TrackerConfig{Cooldown: cooldown})
	require.NoError(t, err)
	return tracker
}

func TestNewTracker(t *testing.T) {
	tests := []struct {
		name    string
		config  TrackerConfig
		wantErr bool
	}{
		{name: "two hour cooldown", config: TrackerConfig{Cooldown: 2 * time.Hour}},
		{name: "eight hour cooldown", config: TrackerConfig{Cooldown: 8 * time.Hour, Buffer: 30 * time.Minute, HistorySize: 5}},
		{name: "cooldown below one hour", config: TrackerConfig{Cooldown: 30 * time.Minute}, wantErr: true},
		{name: "cooldown above eight hours", config: TrackerConfig{Cooldown: 12 * time.Hour}, wantErr: true},
		{name: "negative buffer", config: TrackerConfig{Cooldown: 2 * time.Hour, Buffer: -time.Minute}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker, err := NewTracker(tt.config)
			if tt.wantErr {
				assert.ErrorIs(t, err, ports.ErrConfigurationError)
				assert.Nil(t, tracker)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.config.Cooldown, tracker.Cooldown())
		})
	}
}

func TestAllow_SuppressesWithinCooldown(t *testing.T) {
	tracker := newTestTracker(t, 120*time.Minute)

	assert.True(t, tracker.Allow("X", domain.DirectionLong, t0))
	assert.False(t, tracker.Allow("X", domain.DirectionLong, t0.Add(30*time.Minute)))

	history := tracker.History("X")
	require.Len(t, history, 1)
	assert.Equal(t, t0, history[0].Timestamp)

	stats := tracker.Stats()
	assert.Equal(t, 1, stats.Allowed)
	assert.Equal(t, 1, stats.Suppressed)
	assert.Equal(t, 1, stats.Instruments)
}

func TestAllow_Boundaries(t *testing.T) {
	tracker := newTestTracker(t, 2*time.Hour)

	require.True(t, tracker.Allow("BTCUSDT", domain.DirectionLong, t0))
	assert.True(t, tracker.Allow("ETHUSDT", domain.DirectionLong, t0), "other instruments are independent")
	assert.True(t, tracker.Allow("BTCUSDT", domain.DirectionShort, t0.Add(time.Minute)), "other directions are independent")
	assert.False(t, tracker.Allow("BTCUSDT", domain.DirectionLong, t0.Add(2*time.Hour-time.Second)))
	assert.True(t, tracker.Allow("BTCUSDT", domain.DirectionLong, t0.Add(2*time.Hour)))
}

func TestAllow_HistoryIsBounded(t *testing.T) {
	tracker, err := NewTracker(TrackerConfig{Cooldown: time.Hour, Buffer: 100 * time.Hour, HistorySize: 10})
	require.NoError(t, err)

	for i := 0; i < 25; i++ {
		require.True(t, tracker.Allow("X", domain.DirectionLong, t0.Add(time.Duration(i)*time.Hour)))
	}
	history := tracker.History("X")
	require.Len(t, history, 10)
	assert.Equal(t, t0.Add(15*time.Hour), history[0].Timestamp, "oldest entries leave first")
	assert.Equal(t, t0.Add(24*time.Hour), history[9].Timestamp)
}

func TestPrune(t *testing.T) {
	tracker := newTestTracker(t, 2*time.Hour)
	tracker.Allow("OLD", domain.DirectionLong, t0)
	tracker.Allow("NEW", domain.DirectionLong, t0.Add(2*time.Hour))

	assert.Equal(t, 2, tracker.Prune(t0.Add(3*time.Hour)))
	assert.Equal(t, 1, tracker.Prune(t0.Add(3*time.Hour+time.Second)))
	assert.Equal(t, []string{"NEW"}, tracker.Symbols())
	assert.Empty(t, tracker.History("OLD"))
}

func TestAllow_ConcurrentCallersEmitOnce(t *testing.T) {
	tracker := newTestTracker(t, 2*time.Hour)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tracker.Allow("X", domain.DirectionLong, t0) {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, allowed)
	assert.Equal(t, 49, tracker.Stats().Suppressed)
}

func TestForget_ReleasesCooldown(t *testing.T) {
	tracker := newTestTracker(t, 2*time.Hour)

	require.True(t, tracker.Allow("X", domain.DirectionLong, t0))
	require.True(t, tracker.Allow("X", domain.DirectionShort, t0))

	assert.False(t, tracker.Forget("X", domain.DirectionLong, t0.Add(time.Minute)))
	assert.False(t, tracker.Forget("Y", domain.DirectionLong, t0))
	assert.True(t, tracker.Forget("X", domain.DirectionLong, t0))
	assert.False(t, tracker.Forget("X", domain.DirectionLong, t0))

	history := tracker.History("X")
	require.Len(t, history, 1)
	assert.Equal(t, domain.DirectionShort, history[0].Direction)
	assert.Equal(t, 1, tracker.Stats().Allowed)

	assert.True(t, tracker.Allow("X", domain.DirectionLong, t0.Add(30*time.Minute)))

	require.True(t, tracker.Forget("X", domain.DirectionShort, t0))
	assert.Equal(t, []string{"X"}, tracker.Symbols())
	require.True(t, tracker.Forget("X", domain.DirectionLong, t0.Add(30*time.Minute)))
	assert.Empty(t, tracker.Symbols())
}
