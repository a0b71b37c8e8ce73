package paper

// Package paper replays the same deterministic kernel paced to wall clock,
// so a strategy can be watched "live" against synthesized ticks before any
// real money is involved. Nothing here connects anywhere; determinism and
// results are identical to an unpaced backtest of the same configuration.

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/botsim/internal/application/engine/backtest"
	"github.com/alejandrodnm/botsim/internal/domain"
	"github.com/alejandrodnm/botsim/internal/ports"
)

// DefaultTicksPerSecond paces replay at a watchable speed.
const DefaultTicksPerSecond = 2.0

// Config holds paper-mode settings on top of the backtest configuration.
type Config struct {
	Backtest       backtest.Config
	TicksPerSecond float64
}

// Engine runs a rate-limited replay session.
type Engine struct {
	cfg      Config
	source   ports.BarSource
	strategy ports.Strategy
	risk     ports.RiskValidator
}

// New creates a paper engine. risk may be nil.
func New(cfg Config, source ports.BarSource, strategy ports.Strategy, risk ports.RiskValidator) *Engine {
	if cfg.TicksPerSecond <= 0 {
		cfg.TicksPerSecond = DefaultTicksPerSecond
	}
	return &Engine{cfg: cfg, source: source, strategy: strategy, risk: risk}
}

// Run executes the paced session until the tick stream ends or ctx is
// cancelled (Ctrl+C ends a session early without error semantics beyond the
// context's).
func (e *Engine) Run(ctx context.Context) (domain.RunResult, error) {
	limiter := rate.NewLimiter(rate.Limit(e.cfg.TicksPerSecond), 1)

	runner := backtest.New(e.cfg.Backtest, e.source, e.strategy, e.risk)
	runner.Pace = limiter.Wait
	runner.OnFill = func(f domain.Fill) {
		slog.Info("paper: fill",
			"order", f.OrderID, "symbol", f.Symbol, "side", f.Side,
			"qty", f.Quantity, "price", f.Price, "fee", f.Fee)
	}

	slog.Info("paper session starting",
		"strategy", e.strategy.Name(), "ticks_per_second", e.cfg.TicksPerSecond)
	return runner.Run(ctx)
}
