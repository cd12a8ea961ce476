package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/ports"
)

type mockStatusNotifier struct {
	calls atomic.Int32
	last  atomic.Int64
	err   error
}

func (m *mockStatusNotifier) NotifyStatus(ctx context.Context, status domain.Status) error {
	m.calls.Add(1)
	m.last.Store(status.Cycles)
	return m.err
}

func TestNewHeartbeat(t *testing.T) {
	status := func() domain.Status { return domain.Status{} }
	tests := []struct {
		name    string
		cfg     HeartbeatConfig
		wantErr bool
	}{
		{name: "valid", cfg: HeartbeatConfig{Interval: time.Minute, Status: status, Logger: &mockLogger{}}},
		{name: "nil logger", cfg: HeartbeatConfig{Interval: time.Minute, Status: status}, wantErr: true},
		{name: "nil status", cfg: HeartbeatConfig{Interval: time.Minute, Logger: &mockLogger{}}, wantErr: true},
		{name: "zero interval", cfg: HeartbeatConfig{Status: status, Logger: &mockLogger{}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewHeartbeat(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, h)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestHeartbeat_ReportsUntilStopped(t *testing.T) {
	var cycles atomic.Int64
	ok := &mockStatusNotifier{}
	failing := &mockStatusNotifier{err: errors.New("telegram down")}
	logger := &mockLogger{}
	h, err := NewHeartbeat(HeartbeatConfig{
		Interval: 5 * time.Millisecond,
		Status:   func() domain.Status { return domain.Status{Cycles: cycles.Add(1)} },
		Sinks:    []ports.StatusNotifier{ok, failing},
		Logger:   logger,
	})
	require.NoError(t, err)

	h.Start(context.Background())
	h.Start(context.Background())
	require.Eventually(t, func() bool { return ok.calls.Load() >= 3 }, time.Second, time.Millisecond)
	h.Stop()
	h.Stop()

	calls := ok.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, ok.calls.Load(), "no reports after Stop")
	assert.Equal(t, calls, failing.calls.Load())
	assert.Equal(t, ok.last.Load(), cycles.Load())
	assert.Contains(t, logger.warnings(), "Heartbeat delivery failed")
}

func TestHeartbeat_StopsWithContext(t *testing.T) {
	sink := &mockStatusNotifier{}
	h, err := NewHeartbeat(HeartbeatConfig{
		Interval: time.Millisecond,
		Status:   func() domain.Status { return domain.Status{} },
		Sinks:    []ports.StatusNotifier{sink},
		Logger:   &mockLogger{},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	h.Start(ctx)
	require.Eventually(t, func() bool { return sink.calls.Load() > 0 }, time.Second, time.Millisecond)
	cancel()
	h.Stop()
}
