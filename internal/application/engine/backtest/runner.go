package backtest

// Package backtest is the trade runner: the single-threaded event loop that
// drives ticks through the matching engine, feeds fills to the portfolio,
// and invokes the strategy — one iteration per tick, everything for a tick
// finished before the next one is considered.

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/botsim/internal/application/engine/broker"
	"github.com/alejandrodnm/botsim/internal/application/engine/synth"
	"github.com/alejandrodnm/botsim/internal/domain"
	"github.com/alejandrodnm/botsim/internal/ports"
)

// Config is the immutable per-run configuration, constructed once and
// threaded through synthesizer, book and clock. No process-wide state.
type Config struct {
	RunID        string  // namespace for deterministic order IDs; defaults to the strategy name
	InitialCash  float64
	Synth        synth.Config
	LiquidityCap float64
	FeeRate      float64
	Latency      Latency
}

// PaceFunc is called once per tick before processing. The paper engine uses
// it to throttle replay to wall clock; backtests leave it nil.
type PaceFunc func(ctx context.Context) error

// FillFunc observes fills as they are applied to the portfolio.
type FillFunc func(fill domain.Fill)

// Runner orchestrates one backtest run. It owns the virtual clock and routes
// data between synthesizers, book, strategy, and portfolio — nothing else.
type Runner struct {
	cfg      Config
	source   ports.BarSource
	strategy ports.Strategy
	risk     ports.RiskValidator // optional

	// Pace throttles tick processing when set.
	Pace PaceFunc
	// OnFill observes portfolio fills when set.
	OnFill FillFunc
}

// New creates a runner. risk may be nil to admit all strategy requests.
func New(cfg Config, source ports.BarSource, strategy ports.Strategy, risk ports.RiskValidator) *Runner {
	if cfg.RunID == "" {
		cfg.RunID = strategy.Name()
	}
	return &Runner{cfg: cfg, source: source, strategy: strategy, risk: risk}
}

// pendingReport is a fill waiting out its report latency before the
// strategy's portfolio view may include it.
type pendingReport struct {
	fill      domain.Fill
	visibleAt time.Time
}

// Run executes the full event loop until the tick stream is exhausted or
// ctx is cancelled. The returned result is byte-identical across runs over
// identical inputs and configuration.
func (r *Runner) Run(ctx context.Context) (domain.RunResult, error) {
	feed, symbols, err := r.buildFeed(ctx)
	if err != nil {
		return domain.RunResult{}, err
	}

	book := broker.New(broker.Config{
		LiquidityCap: r.cfg.LiquidityCap,
		FeeRate:      r.cfg.FeeRate,
		OrderLatency: r.cfg.Latency.Order,
	})

	truth := domain.NewPortfolio(r.cfg.InitialCash)
	visible := domain.NewPortfolio(r.cfg.InitialCash)
	clock := &Clock{}
	latest := make(map[string]domain.PriceTick, len(symbols))

	var (
		reports  []pendingReport
		orderSeq int64
		ticks    int64
		first    time.Time
		last     time.Time
	)

	slog.Info("backtest starting",
		"run", r.cfg.RunID, "strategy", r.strategy.Name(),
		"symbols", symbols, "initial_cash", r.cfg.InitialCash)

	for {
		tick, ok := feed.next()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return domain.RunResult{}, fmt.Errorf("backtest.Run: %w", err)
		}
		if r.Pace != nil {
			if err := r.Pace(ctx); err != nil {
				return domain.RunResult{}, fmt.Errorf("backtest.Run: pace: %w", err)
			}
		}

		ticks++
		if first.IsZero() {
			first = tick.Timestamp
		}
		last = tick.Timestamp
		clock.Advance(tick.Timestamp)
		now := clock.Now()

		// 1. Match resting orders, book the fills.
		for _, fill := range book.OnTick(tick) {
			truth.ApplyFill(fill)
			reports = append(reports, pendingReport{
				fill:      fill,
				visibleAt: r.cfg.Latency.reportVisibleAt(fill.Timestamp),
			})
			if r.OnFill != nil {
				r.OnFill(fill)
			}
		}
		truth.Mark(tick.Symbol, tick.Last)
		truth.SampleEquity(now)

		// 2. Release fills whose report latency has elapsed into the
		// strategy-visible portfolio.
		for len(reports) > 0 && !now.Before(reports[0].visibleAt) {
			visible.ApplyFill(reports[0].fill)
			reports = reports[1:]
		}
		visible.Mark(tick.Symbol, tick.Last)
		latest[tick.Symbol] = tick

		// 3. Snapshot: only data whose latency window has elapsed.
		snap := domain.Snapshot{
			Timestamp: now,
			Ticks:     copyTicks(latest),
			Portfolio: visible.View(),
		}

		// 4. Strategy decision.
		requests, err := r.strategy.Decide(ctx, snap)
		if err != nil {
			return domain.RunResult{}, fmt.Errorf("backtest.Run: strategy %s: %w", r.strategy.Name(), err)
		}

		// 5. Route requests to the book. Rejections and state errors are
		// recorded and the run continues; nothing is retried.
		for _, req := range requests {
			r.route(ctx, book, snap, req, now, &orderSeq)
		}
	}

	book.ExpireRemaining(last)

	result := domain.RunResult{
		RunID:       r.cfg.RunID,
		Strategy:    r.strategy.Name(),
		Symbols:     symbols,
		StartedAt:   first,
		FinishedAt:  last,
		InitialCash: r.cfg.InitialCash,
		FinalEquity: truth.Equity(),
		Fills:       truth.Fills,
		EquityCurve: truth.EquityCurve,
		Events:      book.Events(),
		Orders:      book.Orders(),
		Ticks:       ticks,
	}

	slog.Info("backtest finished",
		"run", r.cfg.RunID, "ticks", ticks, "fills", len(result.Fills),
		"final_equity", result.FinalEquity, "return_pct", result.TotalReturn()*100)
	return result, nil
}

// route applies one strategy request to the book.
func (r *Runner) route(ctx context.Context, book *broker.Book, snap domain.Snapshot, req domain.OrderRequest, now time.Time, orderSeq *int64) {
	if r.risk != nil {
		if err := r.risk.Validate(ctx, snap, req); err != nil {
			slog.Debug("backtest: request blocked by risk validator", "err", err)
			return
		}
	}

	switch req.Kind {
	case domain.RequestSubmit:
		order := req.Order
		if order.ID == "" {
			*orderSeq++
			order.ID = r.orderID(*orderSeq)
		}
		if err := book.Submit(order, now); err != nil {
			slog.Debug("backtest: submit failed", "id", order.ID, "err", err)
		}
	case domain.RequestCancel:
		if err := book.Cancel(req.OrderID, now); err != nil {
			slog.Debug("backtest: cancel failed", "id", req.OrderID, "err", err)
		}
	default:
		slog.Debug("backtest: unknown request kind ignored", "kind", req.Kind)
	}
}

// orderID derives a deterministic order ID from the run ID and the
// submission sequence. Random UUIDs would break replay identity.
func (r *Runner) orderID(seq int64) string {
	name := fmt.Sprintf("%s/%d", r.cfg.RunID, seq)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// buildFeed loads and validates bars for every symbol and assembles the
// timestamp-merged tick feed.
func (r *Runner) buildFeed(ctx context.Context) (*mergedFeed, []string, error) {
	symbols := append([]string(nil), r.source.Symbols()...)
	sort.Strings(symbols)
	if len(symbols) == 0 {
		return nil, nil, fmt.Errorf("backtest.Run: bar source has no symbols")
	}

	seqs := make([]*synth.Synthesizer, 0, len(symbols))
	for _, sym := range symbols {
		bars, err := r.source.Bars(ctx, sym)
		if err != nil {
			return nil, nil, fmt.Errorf("backtest.Run: load bars for %s: %w", sym, err)
		}
		s, err := synth.New(r.cfg.Synth, sym, bars)
		if err != nil {
			return nil, nil, fmt.Errorf("backtest.Run: %w", err)
		}
		seqs = append(seqs, s)
	}
	return newMergedFeed(seqs), symbols, nil
}

func copyTicks(src map[string]domain.PriceTick) map[string]domain.PriceTick {
	dst := make(map[string]domain.PriceTick, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
