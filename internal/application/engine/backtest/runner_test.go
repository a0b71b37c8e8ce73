package backtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/botsim/internal/application/engine/synth"
	"github.com/alejandrodnm/botsim/internal/domain"
)

var start = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

type stubSource struct {
	bars map[string][]domain.Bar
}

func (s stubSource) Symbols() []string {
	syms := make([]string, 0, len(s.bars))
	for sym := range s.bars {
		syms = append(syms, sym)
	}
	return syms
}

func (s stubSource) Bars(_ context.Context, symbol string) ([]domain.Bar, error) {
	return s.bars[symbol], nil
}

// scriptStrategy runs a per-tick callback and records what each snapshot
// showed it.
type scriptStrategy struct {
	decide    func(snap domain.Snapshot, call int) []domain.OrderRequest
	calls     int
	fillsSeen []int
	err       error
}

func (s *scriptStrategy) Name() string { return "script" }

func (s *scriptStrategy) Decide(_ context.Context, snap domain.Snapshot) ([]domain.OrderRequest, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.fillsSeen = append(s.fillsSeen, len(snap.Portfolio.Fills))
	call := s.calls
	s.calls++
	if s.decide == nil {
		return nil, nil
	}
	return s.decide(snap, call), nil
}

func oneBar() stubSource {
	return stubSource{bars: map[string][]domain.Bar{
		"AAPL": {{
			Symbol: "AAPL",
			Start:  start,
			End:    start.Add(time.Minute),
			Open:   100, High: 110, Low: 95, Close: 105,
			Volume: 400,
		}},
	}}
}

func baseConfig() Config {
	return Config{
		RunID:       "test-run",
		InitialCash: 10000,
		Synth:       synth.Config{TicksPerBar: 4},
	}
}

func submitAtCall(call int, o domain.Order) func(domain.Snapshot, int) []domain.OrderRequest {
	return func(_ domain.Snapshot, c int) []domain.OrderRequest {
		if c != call {
			return nil
		}
		return []domain.OrderRequest{domain.Submit(o)}
	}
}

func TestRunner_LimitFillsAtDipPrice(t *testing.T) {
	// Price walks 100, 110, 95, 105. A buy limit at 97 submitted on the
	// first tick becomes marketable on the third and fills at 95.
	strat := &scriptStrategy{decide: submitAtCall(0, domain.Order{
		ID: "lim-1", Symbol: "AAPL", Side: domain.SideBuy,
		Kind: domain.KindLimit, Quantity: 1, LimitPrice: 97,
	})}

	result, err := New(baseConfig(), oneBar(), strat, nil).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Fills, 1)
	assert.Equal(t, 95.0, result.Fills[0].Price)
	assert.Equal(t, start.Add(30*time.Second), result.Fills[0].Timestamp)
	assert.Equal(t, int64(4), result.Ticks)
	assert.InDelta(t, 10000-95+1*105, result.FinalEquity, 1e-9)
}

func TestRunner_IdenticalInputsIdenticalResults(t *testing.T) {
	run := func() domain.RunResult {
		strat := &scriptStrategy{decide: func(snap domain.Snapshot, c int) []domain.OrderRequest {
			if c != 0 {
				return nil
			}
			// No explicit ID: the runner assigns a deterministic one.
			return []domain.OrderRequest{domain.Submit(domain.Order{
				Symbol: "AAPL", Side: domain.SideBuy,
				Kind: domain.KindMarket, Quantity: 2,
			})}
		}}
		r, err := New(baseConfig(), oneBar(), strat, nil).Run(context.Background())
		require.NoError(t, err)
		return r
	}

	first := run()
	second := run()

	assert.Equal(t, first.Fills, second.Fills)
	assert.Equal(t, first.EquityCurve, second.EquityCurve)
	assert.Equal(t, first.Events, second.Events)
	assert.Equal(t, first.Orders, second.Orders)
	assert.Equal(t, first.FinalEquity, second.FinalEquity)
}

func TestRunner_ReportLatencyDelaysFillVisibility(t *testing.T) {
	// Ticks every 15s. Market order submitted on tick 1 fills on tick 2
	// (t+15s); with a 20s report latency the fill first becomes visible at
	// t+35s, i.e. on tick 4 (t+45s).
	cfg := baseConfig()
	cfg.Latency = Latency{Report: 20 * time.Second}

	strat := &scriptStrategy{decide: submitAtCall(0, domain.Order{
		ID: "mkt-1", Symbol: "AAPL", Side: domain.SideBuy,
		Kind: domain.KindMarket, Quantity: 1,
	})}

	result, err := New(cfg, oneBar(), strat, nil).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Fills, 1)
	assert.Equal(t, []int{0, 0, 0, 1}, strat.fillsSeen)
}

func TestRunner_OrderLatencyDelaysMatching(t *testing.T) {
	// With a 30s order latency the market order submitted at t0 is first
	// eligible on the tick at t+30s, whose price is 95.
	cfg := baseConfig()
	cfg.Latency = Latency{Order: 30 * time.Second}

	strat := &scriptStrategy{decide: submitAtCall(0, domain.Order{
		ID: "mkt-1", Symbol: "AAPL", Side: domain.SideBuy,
		Kind: domain.KindMarket, Quantity: 1,
	})}

	result, err := New(cfg, oneBar(), strat, nil).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Fills, 1)
	assert.Equal(t, 95.0, result.Fills[0].Price)
	assert.Equal(t, start.Add(30*time.Second), result.Fills[0].Timestamp)
}

func TestRunner_UnfilledOrdersExpireAtRunEnd(t *testing.T) {
	strat := &scriptStrategy{decide: submitAtCall(0, domain.Order{
		ID: "lim-low", Symbol: "AAPL", Side: domain.SideBuy,
		Kind: domain.KindLimit, Quantity: 1, LimitPrice: 1,
	})}

	result, err := New(baseConfig(), oneBar(), strat, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, result.Fills)
	require.Len(t, result.Orders, 1)
	assert.Equal(t, domain.StatusExpired, result.Orders[0].Status)

	last := result.Events[len(result.Events)-1]
	assert.Equal(t, domain.StatusExpired, last.To)
	assert.Equal(t, result.FinishedAt, last.Timestamp)
}

func TestRunner_EquityCurveSampledEveryTick(t *testing.T) {
	strat := &scriptStrategy{}
	result, err := New(baseConfig(), oneBar(), strat, nil).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.EquityCurve, 4)
	for _, pt := range result.EquityCurve {
		assert.Equal(t, 10000.0, pt.Equity)
	}
}

func TestRunner_PortfolioReconstructableFromFills(t *testing.T) {
	strat := &scriptStrategy{decide: func(_ domain.Snapshot, c int) []domain.OrderRequest {
		switch c {
		case 0:
			return []domain.OrderRequest{domain.Submit(domain.Order{
				ID: "b", Symbol: "AAPL", Side: domain.SideBuy,
				Kind: domain.KindMarket, Quantity: 3,
			})}
		case 2:
			return []domain.OrderRequest{domain.Submit(domain.Order{
				ID: "s", Symbol: "AAPL", Side: domain.SideSell,
				Kind: domain.KindMarket, Quantity: 3,
			})}
		}
		return nil
	}}

	cfg := baseConfig()
	cfg.FeeRate = 0.001
	result, err := New(cfg, oneBar(), strat, nil).Run(context.Background())
	require.NoError(t, err)

	replayed := domain.ReplayFills(cfg.InitialCash, result.Fills)
	assert.InDelta(t, result.FinalEquity, replayed.Cash, 1e-9)
}

func TestRunner_StrategyErrorAbortsRun(t *testing.T) {
	boom := errors.New("boom")
	strat := &scriptStrategy{err: boom}

	_, err := New(baseConfig(), oneBar(), strat, nil).Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRunner_ContextCancellationStopsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(baseConfig(), oneBar(), &scriptStrategy{}, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

type denyAll struct{}

func (denyAll) Validate(context.Context, domain.Snapshot, domain.OrderRequest) error {
	return errors.New("denied")
}

func TestRunner_RiskValidatorBlocksRequests(t *testing.T) {
	strat := &scriptStrategy{decide: submitAtCall(0, domain.Order{
		ID: "mkt-1", Symbol: "AAPL", Side: domain.SideBuy,
		Kind: domain.KindMarket, Quantity: 1,
	})}

	result, err := New(baseConfig(), oneBar(), strat, denyAll{}).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, result.Fills)
	assert.Empty(t, result.Orders)
}

func TestRunner_NoSymbolsFails(t *testing.T) {
	src := stubSource{bars: map[string][]domain.Bar{}}
	_, err := New(baseConfig(), src, &scriptStrategy{}, nil).Run(context.Background())
	assert.Error(t, err)
}
