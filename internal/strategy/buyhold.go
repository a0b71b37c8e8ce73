package strategy

import (
	"context"
	"fmt"
	"sort"

	"github.com/alejandrodnm/botsim/internal/domain"
)

// BuyHold buys a fixed quantity of every symbol on its first tick and then
// does nothing. Useful as a benchmark and as the simplest possible kernel
// driver.
type BuyHold struct {
	Quantity float64

	bought map[string]bool
}

// NewBuyHold creates a buy-and-hold strategy; quantity defaults to 1.
func NewBuyHold(quantity float64) *BuyHold {
	if quantity <= 0 {
		quantity = 1
	}
	return &BuyHold{Quantity: quantity, bought: make(map[string]bool)}
}

// Name implements ports.Strategy.
func (b *BuyHold) Name() string { return "buy-hold" }

// Decide implements ports.Strategy.
func (b *BuyHold) Decide(_ context.Context, snap domain.Snapshot) ([]domain.OrderRequest, error) {
	symbols := make([]string, 0, len(snap.Ticks))
	for sym := range snap.Ticks {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	var requests []domain.OrderRequest
	for _, sym := range symbols {
		if b.bought[sym] {
			continue
		}
		b.bought[sym] = true
		requests = append(requests, domain.Submit(domain.Order{
			ID:       fmt.Sprintf("hold-%s", sym),
			Symbol:   sym,
			Side:     domain.SideBuy,
			Kind:     domain.KindMarket,
			Quantity: b.Quantity,
		}))
	}
	return requests, nil
}
