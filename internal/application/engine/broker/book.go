package broker

// Package broker is the simulated brokerage: a per-run order book that
// consumes ticks and produces fills under the configured latency, spread and
// liquidity assumptions.
//
// Matching per tick follows a fixed total order so repeated runs over
// identical input are identical: stop orders trigger first (and match as
// market orders on the same tick), then market orders, then limit orders,
// FIFO by submission sequence within each kind.

import (
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/alejandrodnm/botsim/internal/domain"
)

// Config are the matching parameters of one run.
type Config struct {
	// LiquidityCap is the maximum quantity a market (or triggered stop)
	// order can fill on a single tick. 0 means unlimited.
	LiquidityCap float64

	// FeeRate is the proportional fee charged on each fill's notional.
	FeeRate float64

	// OrderLatency delays an order's visibility in the book: an order
	// submitted at t matches no earlier than the first tick at t+latency.
	OrderLatency time.Duration
}

// bookOrder is the book's mutable record of one order.
type bookOrder struct {
	order       domain.Order
	seq         int64
	remaining   float64
	effectiveAt time.Time
	triggered   bool // stop converted to market, matches in the market pass
}

// Book owns all order state for the lifetime of a single run. Not safe for
// concurrent use; a run has exactly one logical thread of control.
type Book struct {
	cfg      Config
	orders   map[string]*bookOrder
	sequence []*bookOrder // every order ever submitted, in submission order
	events   []domain.OrderEvent
	seq      int64
	eventSeq int64
}

// New creates an empty book.
func New(cfg Config) *Book {
	return &Book{
		cfg:    cfg,
		orders: make(map[string]*bookOrder),
	}
}

// Submit validates an order and places it in the resting book at PENDING.
// Validation failures reject the order (recorded in the event log) and are
// returned as a ValidationError; duplicate IDs fail with a StateError
// without touching the existing order.
func (b *Book) Submit(o domain.Order, now time.Time) error {
	if _, exists := b.orders[o.ID]; exists {
		b.appendEvent(now, o.ID, "", domain.StatusRejected, "duplicate order id")
		return &domain.StateError{OrderID: o.ID, Cause: domain.ErrDuplicateOrder}
	}

	o.SubmittedAt = now
	if err := o.Validate(); err != nil {
		reason := err.Error()
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			reason = verr.Reason
		}
		b.reject(o, now, reason)
		return err
	}

	var sibling *bookOrder
	if o.OCOSiblingID != "" {
		var reason string
		sibling, reason = b.ocoSibling(o)
		if reason != "" {
			b.reject(o, now, reason)
			return &domain.ValidationError{OrderID: o.ID, Reason: reason}
		}
	}

	b.seq++
	o.Status = domain.StatusPending
	rec := &bookOrder{
		order:       o,
		seq:         b.seq,
		remaining:   o.Quantity,
		effectiveAt: now.Add(b.cfg.OrderLatency),
	}
	b.orders[o.ID] = rec
	b.sequence = append(b.sequence, rec)
	b.appendEvent(now, o.ID, "", domain.StatusPending, "")

	if sibling != nil {
		// Complete the symmetric pairing.
		sibling.order.OCOSiblingID = o.ID
	}

	slog.Debug("broker: order accepted",
		"id", o.ID, "symbol", o.Symbol, "side", o.Side, "kind", o.Kind,
		"qty", o.Quantity, "effective_at", rec.effectiveAt)
	return nil
}

// ocoSibling resolves and checks the OCO sibling of an incoming order.
// Returns a non-empty reason when the pairing is invalid.
func (b *Book) ocoSibling(o domain.Order) (*bookOrder, string) {
	sibling, ok := b.orders[o.OCOSiblingID]
	switch {
	case !ok:
		return nil, "dangling oco reference"
	case sibling.order.Status != domain.StatusPending:
		return nil, "oco sibling not pending"
	case sibling.order.OCOSiblingID != "" && sibling.order.OCOSiblingID != o.ID:
		return nil, "oco sibling already paired"
	}
	return sibling, ""
}

// Cancel cancels a resting order. Terminal or unknown orders fail with a
// StateError. Cancelling one half of an OCO pair cancels the other within
// the same step.
func (b *Book) Cancel(orderID string, now time.Time) error {
	rec, ok := b.orders[orderID]
	if !ok {
		return &domain.StateError{OrderID: orderID, Cause: domain.ErrUnknownOrder}
	}
	if rec.order.Status.IsTerminal() {
		return &domain.StateError{OrderID: orderID, Cause: domain.ErrAlreadyTerminal}
	}

	b.transition(rec, now, domain.StatusCancelled, "cancel requested")
	b.cancelOCOSibling(rec, now, "oco sibling cancelled")
	return nil
}

// OnTick matches all eligible resting orders against one tick and returns
// the fills it produced, in matching order.
func (b *Book) OnTick(tick domain.PriceTick) []domain.Fill {
	var fills []domain.Fill

	// Pass 1: stop triggers. A triggered stop becomes a market order and
	// matches in pass 2 of this same tick.
	for _, rec := range b.sequence {
		if !b.eligible(rec, tick) || rec.order.Kind != domain.KindStop || rec.triggered {
			continue
		}
		if stopTriggered(rec.order, tick.Last) {
			rec.triggered = true
			slog.Debug("broker: stop triggered",
				"id", rec.order.ID, "stop", rec.order.StopPrice, "last", tick.Last)
		}
	}

	// Pass 2: market orders (including triggered stops), FIFO.
	for _, rec := range b.sequence {
		if !b.eligible(rec, tick) {
			continue
		}
		if rec.order.Kind == domain.KindMarket || (rec.order.Kind == domain.KindStop && rec.triggered) {
			fills = append(fills, b.fillMarket(rec, tick)...)
		}
	}

	// Pass 3: limit orders, FIFO.
	for _, rec := range b.sequence {
		if !b.eligible(rec, tick) || rec.order.Kind != domain.KindLimit {
			continue
		}
		if f, ok := b.fillLimit(rec, tick); ok {
			fills = append(fills, f)
		}
	}

	return fills
}

// eligible reports whether an order can match against the given tick.
func (b *Book) eligible(rec *bookOrder, tick domain.PriceTick) bool {
	return rec.order.Status.IsResting() &&
		rec.order.Symbol == tick.Symbol &&
		!tick.Timestamp.Before(rec.effectiveAt)
}

// fillMarket fills a market order (or triggered stop) against the tick,
// crossing the spread. The liquidity cap bounds the quantity matched on one
// tick; the surplus stays PARTIALLY_FILLED for subsequent ticks.
func (b *Book) fillMarket(rec *bookOrder, tick domain.PriceTick) []domain.Fill {
	price := tick.Ask
	if rec.order.Side == domain.SideSell {
		price = tick.Bid
	}

	qty := rec.remaining
	if b.cfg.LiquidityCap > 0 {
		qty = math.Min(qty, b.cfg.LiquidityCap)
	}

	return []domain.Fill{b.execute(rec, tick.Timestamp, qty, price)}
}

// fillLimit fills a limit order when the tick makes it marketable. The fill
// price never violates the limit.
func (b *Book) fillLimit(rec *bookOrder, tick domain.PriceTick) (domain.Fill, bool) {
	o := rec.order
	if o.Side == domain.SideBuy {
		if tick.Ask > o.LimitPrice {
			return domain.Fill{}, false
		}
		return b.execute(rec, tick.Timestamp, rec.remaining, math.Min(o.LimitPrice, tick.Ask)), true
	}
	if tick.Bid < o.LimitPrice {
		return domain.Fill{}, false
	}
	return b.execute(rec, tick.Timestamp, rec.remaining, math.Max(o.LimitPrice, tick.Bid)), true
}

// execute books a fill of qty at price against an order and advances its
// status. A freshly FILLED order cancels its OCO sibling inside this same
// step.
func (b *Book) execute(rec *bookOrder, ts time.Time, qty, price float64) domain.Fill {
	fill := domain.Fill{
		OrderID:   rec.order.ID,
		Symbol:    rec.order.Symbol,
		Side:      rec.order.Side,
		Quantity:  qty,
		Price:     price,
		Timestamp: ts,
		Fee:       b.cfg.FeeRate * qty * price,
	}

	rec.remaining -= qty
	if rec.remaining <= 0 {
		b.transition(rec, ts, domain.StatusFilled, "")
		b.cancelOCOSibling(rec, ts, "oco sibling filled")
	} else {
		b.transition(rec, ts, domain.StatusPartiallyFilled, "")
	}

	slog.Debug("broker: fill",
		"id", rec.order.ID, "qty", qty, "price", price, "remaining", rec.remaining)
	return fill
}

// cancelOCOSibling transitions the still-resting sibling of an OCO pair to
// CANCELLED. Called in the same processing step as the triggering
// transition, never deferred.
func (b *Book) cancelOCOSibling(rec *bookOrder, now time.Time, reason string) {
	if rec.order.OCOSiblingID == "" {
		return
	}
	sibling, ok := b.orders[rec.order.OCOSiblingID]
	if !ok || !sibling.order.Status.IsResting() {
		return
	}
	b.transition(sibling, now, domain.StatusCancelled, reason)
}

// ExpireRemaining force-expires every still-resting order at the end of a
// run. Expired orders never fill.
func (b *Book) ExpireRemaining(now time.Time) {
	for _, rec := range b.sequence {
		if rec.order.Status.IsResting() {
			b.transition(rec, now, domain.StatusExpired, "run ended")
		}
	}
}

// Order returns the current state of an order by ID.
func (b *Book) Order(id string) (domain.Order, bool) {
	rec, ok := b.orders[id]
	if !ok {
		return domain.Order{}, false
	}
	return rec.order, true
}

// Orders returns the final state of every order the book saw, in submission
// order.
func (b *Book) Orders() []domain.Order {
	out := make([]domain.Order, 0, len(b.sequence))
	for _, rec := range b.sequence {
		out = append(out, rec.order)
	}
	return out
}

// Events returns the ordered transition log of the run.
func (b *Book) Events() []domain.OrderEvent {
	return b.events
}

// reject records a rejected order in the book and the event log.
func (b *Book) reject(o domain.Order, now time.Time, reason string) {
	b.seq++
	o.Status = domain.StatusRejected
	rec := &bookOrder{order: o, seq: b.seq}
	b.orders[o.ID] = rec
	b.sequence = append(b.sequence, rec)
	b.appendEvent(now, o.ID, "", domain.StatusRejected, reason)
	slog.Debug("broker: order rejected", "id", o.ID, "reason", reason)
}

// transition moves an order to a new status and records the event.
func (b *Book) transition(rec *bookOrder, now time.Time, to domain.OrderStatus, reason string) {
	from := rec.order.Status
	rec.order.Status = to
	b.appendEvent(now, rec.order.ID, from, to, reason)
}

func (b *Book) appendEvent(now time.Time, orderID string, from, to domain.OrderStatus, reason string) {
	b.eventSeq++
	b.events = append(b.events, domain.OrderEvent{
		Seq:       b.eventSeq,
		Timestamp: now,
		OrderID:   orderID,
		From:      from,
		To:        to,
		Reason:    reason,
	})
}

// stopTriggered reports whether last crossed the stop threshold: buy stops
// trigger at or above, sell stops at or below.
func stopTriggered(o domain.Order, last float64) bool {
	if o.Side == domain.SideBuy {
		return last >= o.StopPrice
	}
	return last <= o.StopPrice
}
