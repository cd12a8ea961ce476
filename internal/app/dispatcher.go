package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/ports"
)

const (
	defaultQueueSize   = 64
	defaultSendTimeout = 30 * time.Second
)

// ErrDispatcherStopped is returned by Submit after Stop.
var ErrDispatcherStopped = errors.New("dispatcher stopped")

// DispatcherConfig holds the delivery settings.
type DispatcherConfig struct {
	Sinks       []ports.Notifier
	QueueSize   int
	SendTimeout time.Duration
	Logger      ports.Logger
	Metrics     ports.Metrics
}

// Dispatcher delivers signals to every sink from a single background task so
// scan workers never block on delivery.
type Dispatcher struct {
	sinks       []ports.Notifier
	sendTimeout time.Duration
	logger      ports.Logger
	metrics     ports.Metrics

	mu      sync.RWMutex
	queue   chan *domain.Signal
	started bool
	closed  bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher. It delivers nothing until Start.
func NewDispatcher(cfg DispatcherConfig) (*Dispatcher, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for dispatcher")
	}
	if cfg.Metrics == nil {
		return nil, fmt.Errorf("metrics recorder is required for dispatcher")
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	return &Dispatcher{
		sinks:       cfg.Sinks,
		sendTimeout: cfg.SendTimeout,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		queue:       make(chan *domain.Signal, cfg.QueueSize),
	}, nil
}

// Start launches the delivery task. It returns when ctx is done or Stop drained the queue.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true
	d.wg.Add(1)
	go d.run(ctx)
	d.logger.Info(ctx, "Dispatcher started", map[string]interface{}{"sinks": len(d.sinks), "queue": cap(d.queue)})
}

// Submit enqueues sig without blocking. A full queue drops the signal.
func (d *Dispatcher) Submit(sig *domain.Signal) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherStopped
	}
	select {
	case d.queue <- sig:
		return nil
	default:
		return fmt.Errorf("submit %s: %w", sig.Symbol, ports.ErrQueueFull)
	}
}

// Stop closes the queue and waits for queued signals to be delivered.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) run(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			if n := len(d.queue); n > 0 {
				d.logger.Warn(context.Background(), "Dispatcher canceled with pending signals", map[string]interface{}{"pending": n})
			}
			return
		case sig, ok := <-d.queue:
			if !ok {
				return
			}
			d.deliver(ctx, sig)
		}
	}
}

// deliver sends sig to each sink in turn. A failing sink does not stop the others.
func (d *Dispatcher) deliver(ctx context.Context, sig *domain.Signal) {
	for _, sink := range d.sinks {
		sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
		err := sink.Notify(sendCtx, sig)
		cancel()
		if err != nil {
			d.logger.Error(ctx, err, "Signal delivery failed", map[string]interface{}{"sink": sink.Name(), "symbol": sig.Symbol, "signalID": sig.ID})
			d.metrics.IncError("deliver_" + sink.Name())
			continue
		}
		d.logger.Info(ctx, "Signal delivered", map[string]interface{}{"sink": sink.Name(), "symbol": sig.Symbol, "tier": sig.Tier})
	}
}
