package domain

import "time"

// RunResult is the durable artifact of one backtest run: the ordered fill
// log, the equity curve, the audit trail, and the final portfolio. Two runs
// over identical inputs and configuration produce identical results.
type RunResult struct {
	RunID       string
	Strategy    string
	Symbols     []string
	StartedAt   time.Time // first tick timestamp
	FinishedAt  time.Time // last tick timestamp
	InitialCash float64
	FinalEquity float64
	Fills       []Fill
	EquityCurve []EquityPoint
	Events      []OrderEvent
	Orders      []Order // final state of every order the run saw
	Ticks       int64   // total ticks processed
}

// TotalReturn returns the fractional return of the run.
func (r RunResult) TotalReturn() float64 {
	if r.InitialCash == 0 {
		return 0
	}
	return (r.FinalEquity - r.InitialCash) / r.InitialCash
}

// FilledOrders returns the orders that reached FILLED.
func (r RunResult) FilledOrders() []Order {
	var out []Order
	for _, o := range r.Orders {
		if o.Status == StatusFilled {
			out = append(out, o)
		}
	}
	return out
}

// Rejections returns the audit events that recorded a rejection.
func (r RunResult) Rejections() []OrderEvent {
	var out []OrderEvent
	for _, ev := range r.Events {
		if ev.To == StatusRejected {
			out = append(out, ev)
		}
	}
	return out
}
