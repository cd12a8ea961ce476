package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"smcSignalBot/config"
	"smcSignalBot/internal/adapters/binanceclient"
	"smcSignalBot/internal/adapters/logger"
	"smcSignalBot/internal/utils"
)

func main() {
	symbol := flag.String("symbol", "BTCUSDT", "Futures symbol to download")
	interval := flag.String("interval", "15m", "Kline interval")
	days := flag.Int("days", 30, "Number of days of history to fetch")
	out := flag.String("out", "", "Output CSV path (default data/<symbol>_<interval>_<from>_to_<to>.csv)")
	flag.Parse()

	if *days <= 0 {
		log.Fatalf("FATAL: -days must be positive, got %d", *days)
	}

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)

	// 3. Initialize Exchange Client (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:            cfg.APIKey,
		SecretKey:         cfg.SecretKey,
		UseTestnet:        cfg.IsTestnet,
		Logger:            appLogger,
		RequestsPerSecond: cfg.FetchRPS,
		Burst:             cfg.FetchBurst,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sym := strings.ToUpper(*symbol)
	end := time.Now()
	start := end.AddDate(0, 0, -*days)

	fmt.Printf("Fetching klines for %s %s from %s to %s...\n", sym, *interval, start.Format(time.RFC3339), end.Format(time.RFC3339))
	klines, err := binanceClient.GetKlinesRange(ctx, sym, *interval, start, end)
	if err != nil {
		log.Fatalf("Error fetching klines: %v", err)
	}
	appLogger.Info(ctx, "Fetched klines", map[string]interface{}{"symbol": sym, "count": len(klines)})

	filename := *out
	if filename == "" {
		filename = fmt.Sprintf("data/%s_%s_%s_to_%s.csv", sym, *interval, start.Format("20060102"), end.Format("20060102"))
	}
	if err := utils.WriteKlinesToCSV(klines, filename); err != nil {
		log.Fatalf("Error writing CSV: %v", err)
	}
	appLogger.Info(ctx, "Saved to", map[string]interface{}{"filename": filename})
}
