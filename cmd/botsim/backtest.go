package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alejandrodnm/botsim/internal/adapters/notify"
	"github.com/alejandrodnm/botsim/internal/adapters/storage"
	"github.com/alejandrodnm/botsim/internal/application/engine/backtest"
	"github.com/alejandrodnm/botsim/internal/ports"
)

func runBacktest(
	ctx context.Context,
	runCfg backtest.Config,
	source ports.BarSource,
	strat ports.Strategy,
	store *storage.SQLiteStore,
	notifier *notify.Console,
) {
	runner := backtest.New(runCfg, source, strat, nil)

	result, err := runner.Run(ctx)
	if err != nil {
		slog.Error("backtest failed", "err", err)
		os.Exit(1)
	}

	if err := notifier.Notify(ctx, result); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	if store != nil {
		if err := store.SaveRun(ctx, result); err != nil {
			slog.Error("failed to persist run", "err", err)
			os.Exit(1)
		}
		slog.Info("run persisted", "run", result.RunID, "fills", len(result.Fills))
	}
}
