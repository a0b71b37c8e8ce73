package strategy

import (
	"context"
	"fmt"
	"sort"

	"github.com/alejandrodnm/botsim/internal/domain"
)

// DipBuyer buys after a streak of consecutive down ticks and exits through
// an OCO pair: a limit order at the profit target and a stop order below the
// entry. One position at a time per symbol.
type DipBuyer struct {
	// Streak is how many consecutive lower ticks arm a buy.
	Streak int
	// Quantity is the size of each entry.
	Quantity float64
	// TakeProfit and StopLoss are fractional offsets from the entry price.
	TakeProfit float64
	StopLoss   float64

	downs   map[string]int
	lastPx  map[string]float64
	holding map[string]bool
	nextID  int64
}

// NewDipBuyer creates a dip buyer with the given parameters; zero values
// fall back to 3 ticks, quantity 1, +2% target, -2% stop.
func NewDipBuyer(streak int, quantity, takeProfit, stopLoss float64) *DipBuyer {
	if streak <= 0 {
		streak = 3
	}
	if quantity <= 0 {
		quantity = 1
	}
	if takeProfit <= 0 {
		takeProfit = 0.02
	}
	if stopLoss <= 0 {
		stopLoss = 0.02
	}
	return &DipBuyer{
		Streak:     streak,
		Quantity:   quantity,
		TakeProfit: takeProfit,
		StopLoss:   stopLoss,
		downs:      make(map[string]int),
		lastPx:     make(map[string]float64),
		holding:    make(map[string]bool),
	}
}

// Name implements ports.Strategy.
func (d *DipBuyer) Name() string { return "dip-buyer" }

// Decide implements ports.Strategy.
func (d *DipBuyer) Decide(_ context.Context, snap domain.Snapshot) ([]domain.OrderRequest, error) {
	var requests []domain.OrderRequest

	// Map iteration order is random; a sorted walk keeps request order (and
	// therefore the whole run) deterministic.
	symbols := make([]string, 0, len(snap.Ticks))
	for sym := range snap.Ticks {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	for _, sym := range symbols {
		tick := snap.Ticks[sym]
		prev, seen := d.lastPx[sym]
		d.lastPx[sym] = tick.Last
		if !seen {
			continue
		}

		if tick.Last < prev {
			d.downs[sym]++
		} else {
			d.downs[sym] = 0
		}

		pos := snap.Portfolio.Positions[sym]
		if d.holding[sym] && pos.Quantity == 0 {
			// Exit completed (or expired); re-arm.
			d.holding[sym] = false
		}

		if d.holding[sym] || d.downs[sym] < d.Streak {
			continue
		}

		entry := tick.Ask
		d.holding[sym] = true
		d.downs[sym] = 0

		buyID := d.id(sym, "buy")
		takeID := d.id(sym, "take")
		stopID := d.id(sym, "stop")

		requests = append(requests,
			domain.Submit(domain.Order{
				ID:       buyID,
				Symbol:   sym,
				Side:     domain.SideBuy,
				Kind:     domain.KindMarket,
				Quantity: d.Quantity,
			}),
			domain.Submit(domain.Order{
				ID:         takeID,
				Symbol:     sym,
				Side:       domain.SideSell,
				Kind:       domain.KindLimit,
				Quantity:   d.Quantity,
				LimitPrice: entry * (1 + d.TakeProfit),
			}),
			domain.Submit(domain.Order{
				ID:           stopID,
				Symbol:       sym,
				Side:         domain.SideSell,
				Kind:         domain.KindStop,
				Quantity:     d.Quantity,
				StopPrice:    entry * (1 - d.StopLoss),
				OCOSiblingID: takeID,
			}),
		)
	}

	return requests, nil
}

// id derives a deterministic, unique order ID for this strategy instance.
func (d *DipBuyer) id(symbol, leg string) string {
	d.nextID++
	return fmt.Sprintf("dip-%s-%s-%d", symbol, leg, d.nextID)
}
