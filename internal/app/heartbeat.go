package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/ports"
)

// HeartbeatConfig holds the status report settings.
type HeartbeatConfig struct {
	Interval time.Duration
	Status   func() domain.Status
	Sinks    []ports.StatusNotifier
	Logger   ports.Logger
}

// Heartbeat periodically reports scanner status until stopped.
type Heartbeat struct {
	interval time.Duration
	status   func() domain.Status
	sinks    []ports.StatusNotifier
	logger   ports.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHeartbeat creates a heartbeat task.
func NewHeartbeat(cfg HeartbeatConfig) (*Heartbeat, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for heartbeat")
	}
	if cfg.Status == nil {
		return nil, fmt.Errorf("%w: heartbeat status source is required", ports.ErrConfigurationError)
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("%w: heartbeat interval must be positive", ports.ErrConfigurationError)
	}
	return &Heartbeat{interval: cfg.Interval, status: cfg.Status, sinks: cfg.Sinks, logger: cfg.Logger}, nil
}

// Start launches the ticker. Calling Start on a running heartbeat is a no-op.
func (h *Heartbeat) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		return
	}
	ctx, h.cancel = context.WithCancel(ctx)
	h.done = make(chan struct{})
	go h.run(ctx, h.done)
}

// Stop halts the ticker and waits for an in-flight report to finish.
func (h *Heartbeat) Stop() {
	h.mu.Lock()
	cancel, done := h.cancel, h.done
	h.cancel, h.done = nil, nil
	h.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (h *Heartbeat) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.report(ctx)
		}
	}
}

func (h *Heartbeat) report(ctx context.Context) {
	st := h.status()
	h.logger.Info(ctx, "Heartbeat", map[string]interface{}{
		"uptime":   st.Uptime.Truncate(time.Second).String(),
		"cycles":   st.Cycles,
		"analyzed": st.InstrumentsSeen,
		"emitted":  st.SignalsEmitted,
		"deduped":  st.SignalsDeduped,
	})
	for _, sink := range h.sinks {
		if err := sink.NotifyStatus(ctx, st); err != nil && ctx.Err() == nil {
			h.logger.Warn(ctx, "Heartbeat delivery failed", map[string]interface{}{"error": err.Error()})
		}
	}
}
