package domain

import "time"

// Fill records one execution against an order. Immutable once created; the
// quantities of all fills for an order never exceed the order's quantity.
type Fill struct {
	OrderID   string
	Symbol    string
	Side      Side
	Quantity  float64
	Price     float64
	Timestamp time.Time
	Fee       float64
}

// Notional returns quantity × price, before fees.
func (f Fill) Notional() float64 {
	return f.Quantity * f.Price
}

// CashDelta returns the signed effect of the fill on cash: buys pay
// notional plus fee, sells receive notional minus fee.
func (f Fill) CashDelta() float64 {
	if f.Side == SideBuy {
		return -f.Notional() - f.Fee
	}
	return f.Notional() - f.Fee
}
