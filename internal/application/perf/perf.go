package perf

// Package perf computes performance statistics over a finished run: the
// numbers a consumer compares across parameter sweeps. It only reads the
// run result; nothing here feeds back into the kernel.

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/alejandrodnm/botsim/internal/domain"
)

// Report is the aggregate performance of one run.
type Report struct {
	TotalReturn float64 // fractional, 0.05 == +5%
	MaxDrawdown float64 // fractional peak-to-trough loss, positive number
	Volatility  float64 // annualized standard deviation of per-tick returns
	Sharpe      float64 // annualized, zero risk-free rate
	WinRate     float64 // fraction of realizing fills with positive P&L
	RoundTrips  int     // fills that realized P&L
	FeesPaid    float64
	RealizedPnL float64
}

// Compute builds the report for a run. periodsPerYear annualizes volatility
// and Sharpe from the equity sampling frequency (e.g. ticks per year for
// tick-sampled curves); pass 0 to skip annualization.
func Compute(result domain.RunResult, periodsPerYear float64) (Report, error) {
	if len(result.EquityCurve) < 2 {
		return Report{}, fmt.Errorf("perf.Compute: equity curve too short (%d points)", len(result.EquityCurve))
	}

	returns := periodReturns(result.EquityCurve)
	mean, err := stats.Mean(returns)
	if err != nil {
		return Report{}, fmt.Errorf("perf.Compute: mean: %w", err)
	}
	std, err := stats.StandardDeviationSample(returns)
	if err != nil {
		return Report{}, fmt.Errorf("perf.Compute: stddev: %w", err)
	}

	scale := 1.0
	if periodsPerYear > 0 {
		scale = math.Sqrt(periodsPerYear)
	}

	sharpe := 0.0
	if std > 0 {
		sharpe = mean / std * scale
	}

	wins, trips, realized := roundTrips(result)
	winRate := 0.0
	if trips > 0 {
		winRate = float64(wins) / float64(trips)
	}

	fees := 0.0
	for _, f := range result.Fills {
		fees += f.Fee
	}

	return Report{
		TotalReturn: result.TotalReturn(),
		MaxDrawdown: maxDrawdown(result.EquityCurve),
		Volatility:  std * scale,
		Sharpe:      sharpe,
		WinRate:     winRate,
		RoundTrips:  trips,
		FeesPaid:    fees,
		RealizedPnL: realized,
	}, nil
}

// periodReturns converts the equity curve into simple per-period returns.
func periodReturns(curve []domain.EquityPoint) stats.Float64Data {
	out := make(stats.Float64Data, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, curve[i].Equity/prev-1)
	}
	return out
}

// maxDrawdown returns the largest fractional peak-to-trough equity loss.
func maxDrawdown(curve []domain.EquityPoint) float64 {
	peak := curve[0].Equity
	worst := 0.0
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			dd := (peak - p.Equity) / peak
			if dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

// roundTrips replays the fill log through fresh positions and counts the
// fills that realized P&L, how many of those won, and the realized total.
func roundTrips(result domain.RunResult) (wins, trips int, realized float64) {
	positions := make(map[string]*domain.Position)
	for _, f := range result.Fills {
		pos, ok := positions[f.Symbol]
		if !ok {
			pos = &domain.Position{Symbol: f.Symbol}
			positions[f.Symbol] = pos
		}
		pnl := pos.Apply(f)
		if pnl != 0 {
			trips++
			realized += pnl
			if pnl > 0 {
				wins++
			}
		}
	}
	return wins, trips, realized
}
