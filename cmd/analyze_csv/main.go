package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"smcSignalBot/internal/adapters/logger"
	"smcSignalBot/internal/adapters/telegram"
	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/strategy"
	"smcSignalBot/internal/strategy/profile"
	"smcSignalBot/internal/utils"
)

func main() {
	file := flag.String("file", "", "Kline CSV written by fetch_klines (required)")
	profiles := flag.String("profiles", "all", "Comma separated built-in profiles, or 'all'")
	profileFile := flag.String("profile-file", "", "YAML profile to use instead of the built-ins")
	level := flag.String("log-level", "WARN", "Log level")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}
	appLogger := logger.NewStdLogger(logger.ParseLevel(*level))

	klines, err := utils.ReadKlinesFromCSV(*file)
	if err != nil {
		log.Fatalf("FATAL: Failed to read klines: %v", err)
	}
	if len(klines) == 0 {
		log.Fatalf("FATAL: %s holds no klines", *file)
	}
	symbol := klines[0].Symbol

	var selected []*profile.Profile
	if *profileFile != "" {
		p, err := profile.Load(*profileFile)
		if err != nil {
			log.Fatalf("FATAL: Failed to load profile: %v", err)
		}
		selected = append(selected, p)
	} else {
		names := profile.Names()
		if *profiles != "all" {
			names = strings.Split(*profiles, ",")
		}
		for _, name := range names {
			p, err := profile.Builtin(strings.TrimSpace(name))
			if err != nil {
				log.Fatalf("FATAL: %v", err)
			}
			selected = append(selected, p)
		}
	}

	ctx := context.Background()
	for _, p := range selected {
		strat, err := strategy.New(strategy.Config{Profile: p, Logger: appLogger})
		if err != nil {
			log.Fatalf("FATAL: Failed to build strategy for %s: %v", p.Name, err)
		}

		// Analyze the same trailing window the live scanner would fetch.
		window := klines
		if len(window) > p.Candles {
			window = window[len(window)-p.Candles:]
		}
		sig, err := strat.Analyze(ctx, symbol, window)
		if err != nil {
			log.Fatalf("FATAL: Analysis failed for %s: %v", p.Name, err)
		}
		printSignal(p, window, sig)
	}
}

func printSignal(p *profile.Profile, window []*domain.Kline, sig *domain.Signal) {
	last := window[len(window)-1]
	fmt.Printf("## %s %s profile=%s candles=%d last_close=%s\n",
		sig.Symbol, p.Timeframe, p.Name, len(window), last.CloseTime.UTC().Format("2006-01-02 15:04"))

	if sig.IsBuy() {
		fmt.Println(telegram.FormatSignal(sig))
	} else {
		fmt.Printf("WAIT (%s) score %.0f/%.0f structure %s\n", sig.WaitReason, sig.TotalScore, sig.MaxScore, sig.Structure)
	}
	for _, r := range sig.Reasons {
		fmt.Printf("  - %s\n", r)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Component\tPoints\tMax\tReason\t")
	for _, c := range sig.Breakdown.Components() {
		b := sig.Breakdown[c]
		fmt.Fprintf(w, "%s\t%.1f\t%.0f\t%s\t\n", c, b.Points, b.Max, b.Reason)
	}
	w.Flush()
	fmt.Println()
}
