package domain

import (
	"errors"
	"fmt"
)

// Sentinel causes for StateError. Callers match with errors.Is.
var (
	// ErrAlreadyTerminal is returned when cancelling an order that already
	// reached a terminal status.
	ErrAlreadyTerminal = errors.New("order already terminal")

	// ErrUnknownOrder is returned when an operation references an order ID
	// the book has never seen.
	ErrUnknownOrder = errors.New("unknown order")

	// ErrDuplicateOrder is returned when submitting an order whose ID is
	// already in the book.
	ErrDuplicateOrder = errors.New("duplicate order id")
)

// ValidationError marks a malformed order. The order is rejected and the run
// continues.
type ValidationError struct {
	OrderID string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid order %s: %s", e.OrderID, e.Reason)
}

// DataError marks malformed bar input. Fatal for the run that consumed it;
// no ticks are produced past the offending bar.
type DataError struct {
	Symbol string
	Reason string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("bad bar data for %s: %s", e.Symbol, e.Reason)
}

// StateError marks an operation attempted against an order in the wrong
// lifecycle state. The operation fails, the run continues.
type StateError struct {
	OrderID string
	Cause   error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("order %s: %v", e.OrderID, e.Cause)
}

func (e *StateError) Unwrap() error { return e.Cause }
