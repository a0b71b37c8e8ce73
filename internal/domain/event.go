package domain

import "time"

// OrderEvent is one entry of the ordered audit log: a status transition (or
// rejection) of a specific order. Replaying the event log reproduces the
// full order lifecycle of a run.
type OrderEvent struct {
	Seq       int64
	Timestamp time.Time
	OrderID   string
	From      OrderStatus
	To        OrderStatus
	Reason    string // populated on rejections and forced cancels
}
