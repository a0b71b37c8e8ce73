package domain

import "time"

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderKind selects the execution method of an order.
type OrderKind string

const (
	KindMarket OrderKind = "market"
	KindLimit  OrderKind = "limit"
	KindStop   OrderKind = "stop"
)

// OrderStatus is the lifecycle state of an order in the book.
type OrderStatus string

const (
	StatusPending         OrderStatus = "PENDING"
	StatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	StatusFilled          OrderStatus = "FILLED"
	StatusRejected        OrderStatus = "REJECTED"
	StatusCancelled       OrderStatus = "CANCELLED"
	StatusExpired         OrderStatus = "EXPIRED"
)

// IsTerminal reports whether no further transitions are possible.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case StatusFilled, StatusRejected, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// IsResting reports whether the order is still eligible for matching.
func (s OrderStatus) IsResting() bool {
	return s == StatusPending || s == StatusPartiallyFilled
}

// Order is a request to trade, resting in the simulated book until it fills,
// is cancelled, or expires at the end of the run.
type Order struct {
	ID           string
	Symbol       string
	Side         Side
	Kind         OrderKind
	Quantity     float64
	LimitPrice   float64 // required iff Kind == KindLimit
	StopPrice    float64 // required iff Kind == KindStop
	Status       OrderStatus
	SubmittedAt  time.Time
	OCOSiblingID string // optional, symmetric pairing maintained by the book
}

// Validate checks the static invariants of an order before it enters the
// book. OCO sibling existence is checked by the book, not here.
func (o Order) Validate() error {
	if o.Symbol == "" {
		return &ValidationError{OrderID: o.ID, Reason: "missing symbol"}
	}
	if o.Side != SideBuy && o.Side != SideSell {
		return &ValidationError{OrderID: o.ID, Reason: "invalid side"}
	}
	if o.Quantity <= 0 {
		return &ValidationError{OrderID: o.ID, Reason: "non-positive quantity"}
	}
	switch o.Kind {
	case KindMarket:
	case KindLimit:
		if o.LimitPrice <= 0 {
			return &ValidationError{OrderID: o.ID, Reason: "limit order without limit price"}
		}
	case KindStop:
		if o.StopPrice <= 0 {
			return &ValidationError{OrderID: o.ID, Reason: "stop order without stop price"}
		}
	default:
		return &ValidationError{OrderID: o.ID, Reason: "invalid order kind"}
	}
	return nil
}

// RequestKind distinguishes the two operations a strategy can ask for.
type RequestKind string

const (
	RequestSubmit RequestKind = "submit"
	RequestCancel RequestKind = "cancel"
)

// OrderRequest is one instruction emitted by a strategy: submit a new order
// or cancel a resting one.
type OrderRequest struct {
	Kind    RequestKind
	Order   Order  // populated when Kind == RequestSubmit
	OrderID string // populated when Kind == RequestCancel
}

// Submit wraps an order into a submit request.
func Submit(o Order) OrderRequest {
	return OrderRequest{Kind: RequestSubmit, Order: o}
}

// Cancel wraps an order ID into a cancel request.
func Cancel(orderID string) OrderRequest {
	return OrderRequest{Kind: RequestCancel, OrderID: orderID}
}
