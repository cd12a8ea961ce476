package main

import (
	"context"
	"fmt"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"
	"os/signal"
	"syscall"
	"time"

	"smcSignalBot/config"
	"smcSignalBot/internal/adapters/binanceclient"
	"smcSignalBot/internal/adapters/kafkasink"
	"smcSignalBot/internal/adapters/logger"
	"smcSignalBot/internal/adapters/metrics"
	"smcSignalBot/internal/adapters/redisstore"
	"smcSignalBot/internal/adapters/sqlite"
	"smcSignalBot/internal/adapters/telegram"
	"smcSignalBot/internal/alert"
	"smcSignalBot/internal/app"
	"smcSignalBot/internal/cache"
	"smcSignalBot/internal/ports"
	"smcSignalBot/internal/retry"
	"smcSignalBot/internal/strategy"
	"smcSignalBot/internal/strategy/profile"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger, logCloser, err := logger.New(logger.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		Output:     cfg.LogOutput,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String(), "format": cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, appLogger)
	stop()
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Scanner exited with error")
		_ = logCloser.Close()
		os.Exit(1)
	}
	appLogger.Info(context.Background(), "Application finished gracefully.")
	_ = logCloser.Close()
}

// run wires every component, scans until ctx is cancelled and then releases
// resources in reverse order.
func run(ctx context.Context, cfg *config.Config, appLogger ports.Logger) error {
	// 3. Load Strategy Profile
	var prof *profile.Profile
	var err error
	if cfg.ProfileFile != "" {
		prof, err = profile.Load(cfg.ProfileFile)
	} else {
		prof, err = profile.Builtin(cfg.Profile)
	}
	if err != nil {
		return fmt.Errorf("failed to load strategy profile: %w", err)
	}
	appLogger.Info(ctx, "Strategy profile loaded", map[string]interface{}{
		"profile":   prof.Name,
		"timeframe": prof.Timeframe,
		"candles":   prof.Candles,
		"maxScore":  prof.MaxScore,
	})

	// 4. Initialize Strategy
	strat, err := strategy.New(strategy.Config{Profile: prof, Logger: appLogger})
	if err != nil {
		return fmt.Errorf("failed to initialize strategy: %w", err)
	}

	// 5. Initialize Exchange Client (Binance Adapter)
	retryPolicy := retry.Policy{
		MaxAttempts: cfg.RetryMaxAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
		Multiplier:  2,
		MaxDelay:    30 * time.Second,
		Jitter:      0.2,
	}
	if wait := retryPolicy.MaxWait(); wait >= cfg.TaskTimeout {
		appLogger.Warn(ctx, "Retry backoff exceeds the task timeout, late retries will be cut short", map[string]interface{}{
			"retryWait":   wait.String(),
			"taskTimeout": cfg.TaskTimeout.String(),
		})
	}
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:            cfg.APIKey,
		SecretKey:         cfg.SecretKey,
		UseTestnet:        cfg.IsTestnet,
		Logger:            appLogger,
		Symbols:           cfg.Symbols,
		TopSymbols:        cfg.TopSymbols,
		MinQuoteVolume:    cfg.MinQuoteVolume,
		RequestsPerSecond: cfg.FetchRPS,
		Burst:             cfg.FetchBurst,
		Retry:             retryPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Binance client: %w", err)
	}
	var market ports.MarketDataClient = binanceClient
	if err := checkExchange(ctx, market, appLogger); err != nil {
		return err
	}
	appLogger.Info(ctx, "Binance client initialized", map[string]interface{}{"testnet": cfg.IsTestnet})

	// 6. Initialize Candle Cache
	var store ports.CandleStore
	if cfg.RedisAddr != "" {
		redisStore, err := redisstore.New(ctx, redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Logger:   appLogger,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize Redis candle store: %w", err)
		}
		defer closeWithLog(appLogger, "Redis candle store", redisStore.Close)
		store = redisStore
	} else {
		store = cache.NewMemoryStore(nil)
	}
	candles := ports.CandleSource(market)
	if cfg.CacheTTL > 0 {
		cachingSource, err := cache.NewCachingSource(cache.Config{
			Source: market,
			Store:  store,
			TTL:    cfg.CacheTTL,
			Logger: appLogger,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize candle cache: %w", err)
		}
		candles = cachingSource
	}

	// 7. Initialize Alert Tracker
	tracker, err := alert.NewTracker(alert.TrackerConfig{Cooldown: prof.Cooldown})
	if err != nil {
		return fmt.Errorf("failed to initialize alert tracker: %w", err)
	}

	// 8. Initialize Sinks
	var sinks []ports.Notifier
	var statusSinks []ports.StatusNotifier
	if cfg.TelegramEnabled() {
		tg, err := telegram.New(telegram.Config{
			BotToken: cfg.TelegramBotToken,
			ChatID:   cfg.TelegramChatID,
			Logger:   appLogger,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize Telegram notifier: %w", err)
		}
		sinks = append(sinks, tg)
		statusSinks = append(statusSinks, tg)
	}
	if cfg.KafkaEnabled() {
		sink, err := kafkasink.New(kafkasink.Config{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			Logger:  appLogger,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize Kafka sink: %w", err)
		}
		defer closeWithLog(appLogger, "Kafka sink", sink.Close)
		sinks = append(sinks, sink)
	}
	if len(sinks) == 0 {
		appLogger.Warn(ctx, "No signal sinks configured, signals will only be logged and journaled")
	}

	// 9. Initialize Signal Journal (Database Adapter)
	var journal ports.SignalJournal
	if cfg.DBPath != "" {
		repo, err := sqlite.NewJournal(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
		if err != nil {
			return fmt.Errorf("failed to initialize signal journal: %w", err)
		}
		defer closeWithLog(appLogger, "signal journal", repo.Close)
		journal = repo
	}

	// 10. Initialize Metrics
	var recorder ports.Metrics = metrics.Nop{}
	if cfg.MetricsAddr != "" {
		promRecorder := metrics.New()
		go func() {
			if err := promRecorder.Serve(ctx, cfg.MetricsAddr, appLogger); err != nil {
				appLogger.Error(ctx, err, "Metrics endpoint stopped")
			}
		}()
		recorder = promRecorder
	}

	// 11. Start Dispatcher
	dispatcher, err := app.NewDispatcher(app.DispatcherConfig{
		Sinks:   sinks,
		Logger:  appLogger,
		Metrics: recorder,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize dispatcher: %w", err)
	}
	// Queued signals are still delivered after SIGINT; Stop drains the queue.
	dispatcher.Start(context.WithoutCancel(ctx))
	defer dispatcher.Stop()

	// 12. Initialize Scan Service
	scanner, err := app.NewScanService(app.Config{
		Timeframe:    prof.Timeframe,
		Candles:      prof.Candles,
		ScanInterval: cfg.ScanInterval,
		Workers:      cfg.Workers,
		TaskTimeout:  cfg.TaskTimeout,
		// Retention only applies when the journal is enabled.
		JournalRetention: cfg.JournalRetention,
	}, app.Deps{
		Logger:    appLogger,
		Symbols:   market,
		Candles:   candles,
		Analyzer:  strat,
		Tracker:   tracker,
		Publisher: dispatcher,
		Journal:   journal,
		Metrics:   recorder,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize scan service: %w", err)
	}

	// 13. Start Heartbeat
	if cfg.HeartbeatInterval > 0 {
		heartbeat, err := app.NewHeartbeat(app.HeartbeatConfig{
			Interval: cfg.HeartbeatInterval,
			Status:   scanner.Status,
			Sinks:    statusSinks,
			Logger:   appLogger,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize heartbeat: %w", err)
		}
		heartbeat.Start(ctx)
		defer heartbeat.Stop()
	}

	// 14. Run until SIGINT/SIGTERM
	return scanner.Run(ctx)
}

// checkExchange verifies connectivity and reports how far the local clock is
// from the exchange clock, since candle finality depends on it.
func checkExchange(ctx context.Context, market ports.MarketDataClient, l ports.Logger) error {
	if err := market.Ping(ctx); err != nil {
		return fmt.Errorf("binance connectivity check failed: %w", err)
	}
	serverTime, err := market.GetServerTime(ctx)
	if err != nil {
		l.Warn(ctx, "Could not read exchange server time", map[string]interface{}{"error": err.Error()})
		return nil
	}
	skew := time.Since(serverTime)
	fields := map[string]interface{}{"skew": skew.String()}
	if skew > 5*time.Second || skew < -5*time.Second {
		l.Warn(ctx, "Local clock differs from exchange clock", fields)
	} else {
		l.Debug(ctx, "Exchange clock checked", fields)
	}
	return nil
}

func closeWithLog(l ports.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		l.Error(context.Background(), err, "Error closing "+name)
	}
}
