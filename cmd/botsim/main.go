package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/botsim/config"
	"github.com/alejandrodnm/botsim/internal/adapters/feed"
	"github.com/alejandrodnm/botsim/internal/adapters/notify"
	"github.com/alejandrodnm/botsim/internal/adapters/storage"
	"github.com/alejandrodnm/botsim/internal/application/engine/backtest"
	"github.com/alejandrodnm/botsim/internal/application/engine/synth"
	"github.com/alejandrodnm/botsim/internal/strategy"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	dataDir := flag.String("data", "", "directory of <symbol>.csv bar files (overrides config)")
	stratName := flag.String("strategy", "", "strategy name (overrides config)")
	paper := flag.Bool("paper", false, "paced pseudo-realtime replay instead of a backtest")
	dryRun := flag.Bool("dry-run", false, "skip result persistence")
	table := flag.Bool("table", false, "print full tables (default: compact 1-line)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *dataDir != "" {
		cfg.Run.DataDir = *dataDir
	}
	if *stratName != "" {
		cfg.Run.Strategy = *stratName
	}
	setupLogger(cfg.Log)

	slog.Info("botsim starting",
		"config", *configPath,
		"strategy", cfg.Run.Strategy,
		"data_dir", cfg.Run.DataDir,
		"paper", *paper,
		"dry_run", *dryRun,
	)

	registry := strategy.NewRegistry()
	registry.Register(strategy.NewBuyHold(1))
	registry.Register(strategy.NewDipBuyer(3, 1, 0.02, 0.02))

	strat, ok := registry.Get(cfg.Run.Strategy)
	if !ok {
		slog.Error("unknown strategy", "name", cfg.Run.Strategy, "available", registry.Names())
		os.Exit(1)
	}

	source, err := feed.NewCSVDir(cfg.Run.DataDir)
	if err != nil {
		slog.Error("failed to open bar data", "err", err, "dir", cfg.Run.DataDir)
		os.Exit(1)
	}

	var store *storage.SQLiteStore
	if !*dryRun {
		store, err = storage.NewSQLiteStore(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer store.Close()
	}

	notifier := notify.NewConsole(*table)

	runCfg := backtest.Config{
		InitialCash: cfg.Run.InitialCash,
		Synth: synth.Config{
			TicksPerBar: cfg.Engine.TicksPerBar,
			Path:        synth.Path(cfg.Engine.Path),
			Spread:      spreadFromConfig(cfg),
		},
		LiquidityCap: cfg.Engine.LiquidityCap,
		FeeRate:      cfg.Engine.FeeRate,
		Latency: backtest.Latency{
			Order:  cfg.OrderLatency(),
			Report: cfg.ReportLatency(),
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *paper {
		runPaper(ctx, cfg, runCfg, source, strat, store, notifier)
		return
	}
	runBacktest(ctx, runCfg, source, strat, store, notifier)
}

func spreadFromConfig(cfg *config.Config) synth.Spread {
	kind := synth.SpreadFixed
	if cfg.Engine.SpreadModel == "relative" {
		kind = synth.SpreadRelative
	}
	return synth.Spread{Kind: kind, Value: cfg.Engine.SpreadValue}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
