package domain

import "time"

// PriceTick is one synthesized price observation, finer-grained than a bar.
// Bid ≤ Last ≤ Ask always holds for ticks produced by the synthesizer.
type PriceTick struct {
	Symbol    string
	Timestamp time.Time
	Bid       float64
	Ask       float64
	Last      float64
	Volume    float64
}

// Mid returns the midpoint between bid and ask.
func (t PriceTick) Mid() float64 {
	return (t.Bid + t.Ask) / 2
}

// Spread returns the bid/ask spread of the tick.
func (t PriceTick) Spread() float64 {
	return t.Ask - t.Bid
}
