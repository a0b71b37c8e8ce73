package domain

import "time"

// PortfolioView is the read-only portfolio state a strategy may act on.
// Under a non-zero report latency it lags the true portfolio: it is built
// from the fills whose report latency has already elapsed, never from
// information the strategy could not yet have.
type PortfolioView struct {
	Cash      float64
	Equity    float64
	Realized  float64
	FeesPaid  float64
	Positions map[string]Position
	Fills     []Fill
}

// View materializes the strategy-visible projection of a portfolio.
func (p *Portfolio) View() PortfolioView {
	positions := make(map[string]Position, len(p.Positions))
	for sym, pos := range p.Positions {
		positions[sym] = *pos
	}
	return PortfolioView{
		Cash:      p.Cash,
		Equity:    p.Equity(),
		Realized:  p.Realized,
		FeesPaid:  p.FeesPaid,
		Positions: positions,
		Fills:     p.Fills,
	}
}

// Snapshot is everything a strategy sees on one invocation: the virtual
// clock, the latest tick per symbol, and its (possibly lagged) portfolio.
type Snapshot struct {
	Timestamp time.Time
	Ticks     map[string]PriceTick
	Portfolio PortfolioView
}

// Tick returns the latest visible tick for a symbol and whether one exists.
func (s Snapshot) Tick(symbol string) (PriceTick, bool) {
	t, ok := s.Ticks[symbol]
	return t, ok
}
