package domain

import "time"

// EquityPoint is one sample of total portfolio value over a run.
type EquityPoint struct {
	Timestamp time.Time
	Equity    float64
}

// Portfolio is pure bookkeeping over the fill stream: cash, positions,
// realized P&L, fees, and the equity curve. It holds the invariant
//
//	cash + Σ position market value == initial cash + realized - fees
//
// at every recorded point, and is fully reconstructable from the fill log
// via ReplayFills.
type Portfolio struct {
	InitialCash float64
	Cash        float64
	Positions   map[string]*Position
	Fills       []Fill
	EquityCurve []EquityPoint
	Realized    float64
	FeesPaid    float64

	marks map[string]float64 // symbol → last traded price seen
}

// NewPortfolio creates an empty portfolio with the given starting cash.
func NewPortfolio(initialCash float64) *Portfolio {
	return &Portfolio{
		InitialCash: initialCash,
		Cash:        initialCash,
		Positions:   make(map[string]*Position),
		marks:       make(map[string]float64),
	}
}

// ApplyFill folds one fill into cash, positions, realized P&L and the fill
// log. Side effects stop there; equity sampling is a separate step.
func (p *Portfolio) ApplyFill(f Fill) {
	pos, ok := p.Positions[f.Symbol]
	if !ok {
		pos = &Position{Symbol: f.Symbol}
		p.Positions[f.Symbol] = pos
	}

	p.Realized += pos.Apply(f)
	p.Cash += f.CashDelta()
	p.FeesPaid += f.Fee
	p.Fills = append(p.Fills, f)

	if pos.Quantity == 0 {
		delete(p.Positions, f.Symbol)
	}
}

// Mark updates the last known price for a symbol. Equity samples use marks,
// so a tick must be marked before sampling equity at its timestamp.
func (p *Portfolio) Mark(symbol string, price float64) {
	p.marks[symbol] = price
}

// MarkPrice returns the last marked price for a symbol, or 0 if the symbol
// has never traded.
func (p *Portfolio) MarkPrice(symbol string) float64 {
	return p.marks[symbol]
}

// Equity returns cash plus the market value of all open positions at the
// current marks.
func (p *Portfolio) Equity() float64 {
	eq := p.Cash
	for sym, pos := range p.Positions {
		eq += pos.MarketValue(p.marks[sym])
	}
	return eq
}

// SampleEquity appends one equity point at the given timestamp.
func (p *Portfolio) SampleEquity(ts time.Time) {
	p.EquityCurve = append(p.EquityCurve, EquityPoint{Timestamp: ts, Equity: p.Equity()})
}

// Position returns a copy of the position for a symbol; the zero Position if
// the symbol is flat.
func (p *Portfolio) Position(symbol string) Position {
	if pos, ok := p.Positions[symbol]; ok {
		return *pos
	}
	return Position{Symbol: symbol}
}

// ReplayFills rebuilds a portfolio from scratch by replaying a fill log over
// the initial cash. The result matches the original portfolio except for
// marks and the equity curve, which derive from ticks rather than fills.
func ReplayFills(initialCash float64, fills []Fill) *Portfolio {
	p := NewPortfolio(initialCash)
	for _, f := range fills {
		p.ApplyFill(f)
	}
	return p
}
