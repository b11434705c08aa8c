package engine

import (
	"github.com/shopspring/decimal"

	"nyx/internal/common"
)

// OrderBook matches orders for a single instrument under strict
// price-time priority and reports outcomes as events.
//
// The book owns all of its mutable state, including the resting Order
// values themselves, and must be driven from a single goroutine: Submit
// and Cancel run to completion synchronously with no internal locking.
// Callers needing concurrent access put a serialization point in front
// (the TCP server runs one engine goroutine over a command channel).
type OrderBook struct {
	bids *bookSide
	asks *bookSide

	// Registry of resting orders by id; an id is present iff the order
	// is actively resting. This is the source of truth for cancels.
	orders map[string]*Order
}

func NewOrderBook() *OrderBook {
	return &OrderBook{
		bids:   newBookSide(common.Buy),
		asks:   newBookSide(common.Sell),
		orders: make(map[string]*Order),
	}
}

// Submit matches an incoming order against the opposite side and
// returns the emitted events in order: one Trade per resting order
// consumed (best price first, arrival order within a price), then
// either an acceptance or, for an unmatched IOC remainder, a
// cancellation.
func (b *OrderBook) Submit(order *Order) []Event {
	var events []Event
	opposite, same := b.asks, b.bids
	if order.Side == common.Sell {
		opposite, same = b.bids, b.asks
	}

	for order.Remaining().IsPositive() {
		best := opposite.bestOrder()
		if best == nil || !crosses(order, best.Price) {
			break
		}
		traded := decimal.Min(order.Remaining(), best.Remaining())
		// ApplyFill cannot reject here: traded is the min of two
		// positive remainders.
		best.ApplyFill(traded)
		order.ApplyFill(traded)
		events = append(events, Trade{
			MakerOrderID: best.ID,
			TakerOrderID: order.ID,
			// The maker's price is authoritative; price improvement
			// goes to the incoming order.
			Price:     best.Price,
			Quantity:  traded,
			Timestamp: eventTime(),
		})
		if best.IsFilled() {
			// Remove the consumed maker immediately rather than
			// leaving it to lazy pruning, so the registry never lags
			// behind the levels.
			opposite.removeOrder(best)
			delete(b.orders, best.ID)
		}
	}

	if order.Remaining().IsPositive() {
		if order.TimeInForce == common.IOC {
			events = append(events, OrderCancelled{
				OrderID:           order.ID,
				RemainingQuantity: order.Remaining(),
				Reason:            "IOC remainder",
				Timestamp:         eventTime(),
			})
			return events
		}
		same.add(order)
		b.orders[order.ID] = order
	}
	// A fully filled order never touches the resting structures but is
	// still acknowledged.
	events = append(events, OrderAccepted{Order: order, Timestamp: eventTime()})
	return events
}

// Cancel removes a resting order by id. Cancelling an id that is not
// resting is a routine outcome, not an error: it yields a rejection
// event.
func (b *OrderBook) Cancel(orderID, reason string) []Event {
	order, ok := b.orders[orderID]
	if !ok {
		return []Event{OrderRejected{
			OrderID:   orderID,
			Reason:    "unknown_order",
			Timestamp: eventTime(),
		}}
	}
	side := b.bids
	if order.Side == common.Sell {
		side = b.asks
	}
	side.removeOrder(order)
	delete(b.orders, orderID)
	return []Event{OrderCancelled{
		OrderID:           orderID,
		RemainingQuantity: order.Remaining(),
		Reason:            reason,
		Timestamp:         eventTime(),
	}}
}

// BestBid returns the highest resting bid price, if any.
func (b *OrderBook) BestBid() (decimal.Decimal, bool) {
	return b.bids.bestPrice()
}

// BestAsk returns the lowest resting ask price, if any.
func (b *OrderBook) BestAsk() (decimal.Decimal, bool) {
	return b.asks.bestPrice()
}

// Snapshot lists the eligible resting orders per side in price-time
// priority. Diagnostics only: it scans both sides in full.
type Snapshot struct {
	Bids []*Order `json:"bids"`
	Asks []*Order `json:"asks"`
}

func (b *OrderBook) Snapshot() Snapshot {
	var snap Snapshot
	for order := range b.bids.orders() {
		snap.Bids = append(snap.Bids, order)
	}
	for order := range b.asks.orders() {
		snap.Asks = append(snap.Asks, order)
	}
	return snap
}

// crosses checks whether the incoming order is marketable against the
// given contra price.
func crosses(incoming *Order, contraPrice decimal.Decimal) bool {
	if incoming.Side == common.Buy {
		return incoming.Price.GreaterThanOrEqual(contraPrice)
	}
	return incoming.Price.LessThanOrEqual(contraPrice)
}
