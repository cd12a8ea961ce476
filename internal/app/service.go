package app

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"smcSignalBot/internal/alert"
	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/ports"
)

const (
	defaultWorkers      = 10
	defaultTaskTimeout  = 60 * time.Second
	defaultScanInterval = 5 * time.Minute
)

// Publisher hands a decided signal to asynchronous delivery.
type Publisher interface {
	Submit(sig *domain.Signal) error
}

// JournalPruner is implemented by journals that can drop old entries.
type JournalPruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config holds the scan loop settings.
type Config struct {
	Timeframe    string
	Candles      int
	ScanInterval time.Duration
	Workers      int
	TaskTimeout  time.Duration
	// JournalRetention is how long journal entries are kept. Zero keeps them.
	JournalRetention time.Duration
}

// Deps are the collaborators of the scan service. Journal is optional.
type Deps struct {
	Logger    ports.Logger
	Symbols   ports.SymbolSource
	Candles   ports.CandleSource
	Analyzer  ports.Analyzer
	Tracker   *alert.Tracker
	Publisher Publisher
	Journal   ports.SignalJournal
	Metrics   ports.Metrics
	Now       func() time.Time
}

// CycleReport summarizes one pass over the instrument list.
type CycleReport struct {
	ID          string
	Instruments int
	Analyzed    int64
	Failed      int64
	Buys        int64
	Suppressed  int64
	Emitted     int64
	Elapsed     time.Duration
}

// ScanService periodically analyzes every instrument with a bounded worker
// pool and forwards fresh BUY signals to the publisher.
type ScanService struct {
	cfg       Config
	logger    ports.Logger
	symbols   ports.SymbolSource
	candles   ports.CandleSource
	analyzer  ports.Analyzer
	tracker   *alert.Tracker
	publisher Publisher
	journal   ports.SignalJournal
	metrics   ports.Metrics
	now       func() time.Time

	startedAt        time.Time
	cycles           atomic.Int64
	instrumentsSeen  atomic.Int64
	signalsEmitted   atomic.Int64
	signalsDeduped   atomic.Int64
	lastCycleAt      atomic.Int64 // unix nanos
	lastCycleElapsed atomic.Int64
}

// NewScanService creates a new scan service instance.
func NewScanService(cfg Config, deps Deps) (*ScanService, error) {
	if deps.Logger == nil || deps.Symbols == nil || deps.Candles == nil || deps.Analyzer == nil ||
		deps.Tracker == nil || deps.Publisher == nil || deps.Metrics == nil {
		return nil, fmt.Errorf("missing required dependencies for ScanService")
	}
	if cfg.Timeframe == "" {
		return nil, fmt.Errorf("%w: scan timeframe is required", ports.ErrConfigurationError)
	}
	if cfg.Candles < deps.Analyzer.RequiredDataPoints() {
		return nil, fmt.Errorf("%w: scan candles %d below the analyzer minimum %d", ports.ErrConfigurationError, cfg.Candles, deps.Analyzer.RequiredDataPoints())
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = defaultTaskTimeout
	}
	if cfg.ScanInterval <= 0 {
		cfg.ScanInterval = defaultScanInterval
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &ScanService{
		cfg:       cfg,
		logger:    deps.Logger,
		symbols:   deps.Symbols,
		candles:   deps.Candles,
		analyzer:  deps.Analyzer,
		tracker:   deps.Tracker,
		publisher: deps.Publisher,
		journal:   deps.Journal,
		metrics:   deps.Metrics,
		now:       now,
		startedAt: now(),
	}, nil
}

// Run scans until ctx is done. A failed cycle is logged and the loop keeps going.
func (s *ScanService) Run(ctx context.Context) error {
	s.logger.Info(ctx, "Starting Scan Service...", map[string]interface{}{
		"timeframe": s.cfg.Timeframe,
		"candles":   s.cfg.Candles,
		"workers":   s.cfg.Workers,
		"interval":  s.cfg.ScanInterval.String(),
	})

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Scan Service stopped.")
			return nil
		case <-timer.C:
		}

		if _, err := s.RunCycle(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error(ctx, err, "Scan cycle failed")
		}
		if n := s.tracker.Prune(s.now()); n > 0 {
			s.logger.Debug(ctx, "Pruned alert history", map[string]interface{}{"instruments": n})
		}
		s.pruneJournal(ctx)
		timer.Reset(s.cfg.ScanInterval)
	}
}

// pruneJournal drops journal entries older than the retention window.
func (s *ScanService) pruneJournal(ctx context.Context) {
	if s.cfg.JournalRetention <= 0 || s.journal == nil || ctx.Err() != nil {
		return
	}
	pruner, ok := s.journal.(JournalPruner)
	if !ok {
		return
	}
	cutoff := s.now().Add(-s.cfg.JournalRetention)
	n, err := pruner.DeleteBefore(ctx, cutoff)
	if err != nil {
		s.metrics.IncError("journal")
		s.logger.Error(ctx, err, "Failed to prune signal journal", map[string]interface{}{"cutoff": cutoff})
		return
	}
	if n > 0 {
		s.logger.Info(ctx, "Pruned signal journal", map[string]interface{}{"removed": n, "cutoff": cutoff})
	}
}

// RunCycle analyzes every listed instrument once and waits for all workers.
// Failures of single instruments are counted in the report, not returned.
func (s *ScanService) RunCycle(ctx context.Context) (CycleReport, error) {
	op := "RunCycle"
	report := CycleReport{ID: uuid.NewString()}
	start := time.Now()

	symbols, err := s.symbols.ListSymbols(ctx)
	if err != nil {
		s.metrics.IncError("symbols")
		return report, fmt.Errorf("%s failed to list symbols: %w", op, err)
	}
	report.Instruments = len(symbols)
	s.logger.Debug(ctx, op+": scanning instruments", map[string]interface{}{"cycle": report.ID, "count": len(symbols)})

	var analyzed, failed, buys, suppressed, emitted atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Workers)
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			break
		}
		symbol := symbol
		g.Go(func() error {
			res := s.scanSymbol(ctx, symbol)
			switch {
			case res.failed:
				failed.Add(1)
				return nil
			case res.buy && res.suppressed:
				buys.Add(1)
				suppressed.Add(1)
			case res.buy && res.emitted:
				buys.Add(1)
				emitted.Add(1)
			case res.buy:
				buys.Add(1)
			}
			analyzed.Add(1)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	report.Analyzed = analyzed.Load()
	report.Failed = failed.Load()
	report.Buys = buys.Load()
	report.Suppressed = suppressed.Load()
	report.Emitted = emitted.Load()
	report.Elapsed = time.Since(start)

	s.cycles.Add(1)
	s.instrumentsSeen.Add(report.Analyzed)
	s.signalsEmitted.Add(report.Emitted)
	s.signalsDeduped.Add(report.Suppressed)
	s.lastCycleAt.Store(s.now().UnixNano())
	s.lastCycleElapsed.Store(int64(report.Elapsed))
	s.metrics.ObserveCycle(report.Elapsed.Seconds(), report.Instruments)

	s.logger.Info(ctx, op+": cycle complete", map[string]interface{}{
		"cycle":      report.ID,
		"analyzed":   report.Analyzed,
		"failed":     report.Failed,
		"buys":       report.Buys,
		"suppressed": report.Suppressed,
		"elapsed":    report.Elapsed.Round(time.Millisecond).String(),
	})
	return report, ctx.Err()
}

type scanResult struct {
	failed     bool
	buy        bool
	suppressed bool
	emitted    bool
}

// scanSymbol runs fetch, analysis and dedup for one instrument. Panics are
// recovered so one instrument never aborts the cycle.
func (s *ScanService) scanSymbol(parent context.Context, symbol string) (res scanResult) {
	op := "scanSymbol"
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(parent, fmt.Errorf("panic: %v", r), op+": task panicked", map[string]interface{}{"symbol": symbol, "stack": string(debug.Stack())})
			s.metrics.IncError("panic")
			res = scanResult{failed: true}
		}
	}()

	ctx, cancel := context.WithTimeout(parent, s.cfg.TaskTimeout)
	defer cancel()

	fetchStart := time.Now()
	klines, err := s.candles.GetKlines(ctx, symbol, s.cfg.Timeframe, s.cfg.Candles)
	s.metrics.ObserveFetch(time.Since(fetchStart).Seconds())
	if err != nil {
		s.logger.Warn(ctx, op+": failed to fetch klines, skipping symbol", map[string]interface{}{"symbol": symbol, "error": err.Error()})
		s.metrics.IncError("fetch")
		return scanResult{failed: true}
	}

	sig, err := s.analyzer.Analyze(ctx, symbol, klines)
	if err != nil {
		s.logger.Warn(ctx, op+": analysis failed", map[string]interface{}{"symbol": symbol, "error": err.Error()})
		s.metrics.IncError("analyze")
		return scanResult{failed: true}
	}
	s.metrics.IncSignal(sig.Decision, sig.Tier)
	if !sig.IsBuy() {
		return res
	}
	res.buy = true

	res.suppressed = !s.tracker.Allow(symbol, sig.Direction, sig.Timestamp)
	if s.journal != nil {
		if err := s.journal.Record(ctx, sig, res.suppressed); err != nil {
			s.logger.Warn(ctx, op+": failed to journal signal", map[string]interface{}{"symbol": symbol, "signalID": sig.ID, "error": err.Error()})
			s.metrics.IncError("journal")
		}
	}
	if res.suppressed {
		s.metrics.IncSuppressed(symbol)
		s.logger.Info(ctx, op+": signal suppressed by cooldown", map[string]interface{}{"symbol": symbol, "tier": sig.Tier})
		return res
	}

	if err := s.publisher.Submit(sig); err != nil {
		// An undelivered alert must not start the cooldown.
		s.tracker.Forget(symbol, sig.Direction, sig.Timestamp)
		s.logger.Warn(ctx, op+": signal dropped", map[string]interface{}{"symbol": symbol, "signalID": sig.ID, "error": err.Error()})
		s.metrics.IncError("dispatch")
		return res
	}
	res.emitted = true
	return res
}

// Status reports uptime and cumulative counters for the heartbeat.
func (s *ScanService) Status() domain.Status {
	st := domain.Status{
		StartedAt:        s.startedAt,
		Uptime:           s.now().Sub(s.startedAt),
		Cycles:           s.cycles.Load(),
		InstrumentsSeen:  s.instrumentsSeen.Load(),
		SignalsEmitted:   s.signalsEmitted.Load(),
		SignalsDeduped:   s.signalsDeduped.Load(),
		LastCycleElapsed: time.Duration(s.lastCycleElapsed.Load()),
	}
	if ns := s.lastCycleAt.Load(); ns != 0 {
		st.LastCycleAt = time.Unix(0, ns)
	}
	return st
}
