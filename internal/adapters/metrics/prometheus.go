// Package metrics implements ports.Metrics with Prometheus collectors.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/ports"
)

// Recorder implements ports.Metrics using Prometheus.
type Recorder struct {
	registry     *prometheus.Registry
	cycles       prometheus.Counter
	cycleSeconds prometheus.Histogram
	instruments  prometheus.Gauge
	signals      *prometheus.CounterVec
	suppressed   *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	fetchSeconds prometheus.Histogram
}

// New creates a recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		cycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "smc_scan_cycles_total",
			Help: "Total number of completed scan cycles",
		}),
		cycleSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "smc_scan_cycle_duration_seconds",
			Help:    "Duration of scan cycles in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		}),
		instruments: factory.NewGauge(prometheus.GaugeOpts{
			Name: "smc_scan_instruments",
			Help: "Instruments analyzed in the last cycle",
		}),
		signals: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "smc_signals_total",
			Help: "Signals decided, by decision and tier",
		}, []string{"decision", "tier"}),
		suppressed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "smc_signals_suppressed_total",
			Help: "BUY signals suppressed by the alert cooldown",
		}, []string{"symbol"}),
		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "smc_errors_total",
			Help: "Total number of errors encountered",
		}, []string{"type"}),
		fetchSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "smc_candle_fetch_duration_seconds",
			Help:    "Candle fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveCycle records a finished cycle.
func (r *Recorder) ObserveCycle(seconds float64, instruments int) {
	r.cycles.Inc()
	r.cycleSeconds.Observe(seconds)
	r.instruments.Set(float64(instruments))
}

// IncSignal counts a decided signal.
func (r *Recorder) IncSignal(decision domain.Decision, tier domain.Tier) {
	t := string(tier)
	if t == "" {
		t = "none"
	}
	r.signals.WithLabelValues(string(decision), t).Inc()
}

// IncSuppressed counts a deduplicated BUY.
func (r *Recorder) IncSuppressed(symbol string) {
	r.suppressed.WithLabelValues(symbol).Inc()
}

// IncError records an error occurrence.
func (r *Recorder) IncError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// ObserveFetch records candle fetch latency.
func (r *Recorder) ObserveFetch(seconds float64) {
	r.fetchSeconds.Observe(seconds)
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve runs the /metrics endpoint on addr until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string, logger ports.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Metrics endpoint listening", map[string]interface{}{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown: %w", err)
		}
		return nil
	}
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) ObserveCycle(float64, int)              {}
func (Nop) IncSignal(domain.Decision, domain.Tier) {}
func (Nop) IncSuppressed(string)                   {}
func (Nop) IncError(string)                        {}
func (Nop) ObserveFetch(float64)                   {}
