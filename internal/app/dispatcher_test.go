package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/ports"
)

type mockNotifier struct {
	name  string
	mu    sync.Mutex
	got   []string
	err   error
	block chan struct{}
}

func (m *mockNotifier) Name() string { return m.name }

func (m *mockNotifier) Notify(ctx context.Context, sig *domain.Signal) error {
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.got = append(m.got, sig.Symbol)
	return m.err
}

func (m *mockNotifier) received() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.got...)
}

func TestNewDispatcher(t *testing.T) {
	_, err := NewDispatcher(DispatcherConfig{Metrics: newMockMetrics()})
	assert.Error(t, err)
	_, err = NewDispatcher(DispatcherConfig{Logger: &mockLogger{}})
	assert.Error(t, err)

	d, err := NewDispatcher(DispatcherConfig{Logger: &mockLogger{}, Metrics: newMockMetrics()})
	require.NoError(t, err)
	assert.Equal(t, defaultQueueSize, cap(d.queue))
	assert.Equal(t, defaultSendTimeout, d.sendTimeout)
}

func TestDispatcher_DeliversToEverySink(t *testing.T) {
	failing := &mockNotifier{name: "telegram", err: errors.New("chat not found")}
	ok := &mockNotifier{name: "kafka"}
	metrics := newMockMetrics()
	logger := &mockLogger{}
	d, err := NewDispatcher(DispatcherConfig{Sinks: []ports.Notifier{failing, ok}, Logger: logger, Metrics: metrics})
	require.NoError(t, err)

	d.Start(context.Background())
	require.NoError(t, d.Submit(&domain.Signal{Symbol: "AAAUSDT"}))
	require.NoError(t, d.Submit(&domain.Signal{Symbol: "BBBUSDT"}))
	d.Stop()

	assert.Equal(t, []string{"AAAUSDT", "BBBUSDT"}, failing.received())
	assert.Equal(t, []string{"AAAUSDT", "BBBUSDT"}, ok.received())
	assert.Equal(t, 2, metrics.errCount("deliver_telegram"))
	assert.Equal(t, 0, metrics.errCount("deliver_kafka"))
	assert.Len(t, logger.errorsLogged(), 2)
}

func TestDispatcher_FullQueueDrops(t *testing.T) {
	slow := &mockNotifier{name: "slow", block: make(chan struct{})}
	d, err := NewDispatcher(DispatcherConfig{Sinks: []ports.Notifier{slow}, QueueSize: 1, Logger: &mockLogger{}, Metrics: newMockMetrics()})
	require.NoError(t, err)
	d.Start(context.Background())

	require.NoError(t, d.Submit(&domain.Signal{Symbol: "A"}))
	// Wait for the worker to take A so the queue is empty again.
	require.Eventually(t, func() bool { return len(d.queue) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, d.Submit(&domain.Signal{Symbol: "B"}))

	err = d.Submit(&domain.Signal{Symbol: "C"})
	assert.ErrorIs(t, err, ports.ErrQueueFull)

	close(slow.block)
	d.Stop()
	assert.Equal(t, []string{"A", "B"}, slow.received())
}

func TestDispatcher_DrainsQueueAfterShutdownSignal(t *testing.T) {
	slow := &mockNotifier{name: "slow", block: make(chan struct{})}
	d, err := NewDispatcher(DispatcherConfig{Sinks: []ports.Notifier{slow}, QueueSize: 4, Logger: &mockLogger{}, Metrics: newMockMetrics()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(context.WithoutCancel(ctx))
	for _, symbol := range []string{"A", "B", "C"} {
		require.NoError(t, d.Submit(&domain.Signal{Symbol: symbol}))
	}
	cancel()
	close(slow.block)
	d.Stop()

	assert.Equal(t, []string{"A", "B", "C"}, slow.received())
}

func TestDispatcher_SubmitAfterStop(t *testing.T) {
	d, err := NewDispatcher(DispatcherConfig{Logger: &mockLogger{}, Metrics: newMockMetrics()})
	require.NoError(t, err)
	d.Start(context.Background())
	d.Stop()
	d.Stop()

	assert.ErrorIs(t, d.Submit(&domain.Signal{Symbol: "A"}), ErrDispatcherStopped)
}

func TestDispatcher_SendTimeout(t *testing.T) {
	stuck := &mockNotifier{name: "stuck", block: make(chan struct{})}
	metrics := newMockMetrics()
	d, err := NewDispatcher(DispatcherConfig{Sinks: []ports.Notifier{stuck}, SendTimeout: 10 * time.Millisecond, Logger: &mockLogger{}, Metrics: metrics})
	require.NoError(t, err)
	d.Start(context.Background())

	require.NoError(t, d.Submit(&domain.Signal{Symbol: "A"}))
	d.Stop()
	assert.Equal(t, 1, metrics.errCount("deliver_stuck"))
}
