package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/alejandrodnm/botsim/config"
	"github.com/alejandrodnm/botsim/internal/adapters/notify"
	"github.com/alejandrodnm/botsim/internal/adapters/storage"
	"github.com/alejandrodnm/botsim/internal/application/engine/backtest"
	"github.com/alejandrodnm/botsim/internal/application/engine/paper"
	"github.com/alejandrodnm/botsim/internal/ports"
)

func runPaper(
	ctx context.Context,
	cfg *config.Config,
	runCfg backtest.Config,
	source ports.BarSource,
	strat ports.Strategy,
	store *storage.SQLiteStore,
	notifier *notify.Console,
) {
	slog.Info("=== PAPER MODE: paced replay, press Ctrl+C to stop ===",
		"ticks_per_second", cfg.Paper.TicksPerSecond)

	pe := paper.New(paper.Config{
		Backtest:       runCfg,
		TicksPerSecond: cfg.Paper.TicksPerSecond,
	}, source, strat, nil)

	result, err := pe.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Info("paper session stopped (signal)")
			return
		}
		slog.Error("paper session failed", "err", err)
		os.Exit(1)
	}

	if err := notifier.Notify(ctx, result); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	if store != nil {
		if err := store.SaveRun(ctx, result); err != nil {
			slog.Error("failed to persist run", "err", err)
		}
	}
}
