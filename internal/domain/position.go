package domain

import "math"

// Position is the signed holding in one symbol, derived only from fills.
// Quantity > 0 is long, < 0 is short. AvgCost is the running average entry
// price of the open quantity.
type Position struct {
	Symbol   string
	Quantity float64
	AvgCost  float64
}

// Apply folds one fill into the position and returns the realized P&L it
// produced. Fees are accounted at the portfolio level, not here, so that the
// cash reconstruction invariant stays additive.
func (p *Position) Apply(f Fill) (realized float64) {
	signed := f.Quantity
	if f.Side == SideSell {
		signed = -f.Quantity
	}

	switch {
	case p.Quantity == 0 || sameSign(p.Quantity, signed):
		// Opening or increasing: weighted average entry price.
		abs := math.Abs(p.Quantity)
		p.AvgCost = (abs*p.AvgCost + f.Quantity*f.Price) / (abs + f.Quantity)
		p.Quantity += signed
		return 0

	default:
		// Reducing, closing, or flipping.
		closing := math.Min(math.Abs(p.Quantity), f.Quantity)
		direction := 1.0
		if p.Quantity < 0 {
			direction = -1.0
		}
		realized = (f.Price - p.AvgCost) * closing * direction

		remaining := f.Quantity - closing
		if remaining > 0 {
			// Sign flip: the surplus opens a fresh position at the fill price.
			p.Quantity = remaining
			if f.Side == SideSell {
				p.Quantity = -remaining
			}
			p.AvgCost = f.Price
		} else {
			p.Quantity += signed
			if p.Quantity == 0 {
				p.AvgCost = 0
			}
		}
		return realized
	}
}

// MarketValue returns the signed value of the position at the given price.
func (p Position) MarketValue(price float64) float64 {
	return p.Quantity * price
}

// UnrealizedPnL returns the open profit or loss at the given price.
func (p Position) UnrealizedPnL(price float64) float64 {
	return (price - p.AvgCost) * p.Quantity
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}
