package engine

import "github.com/shopspring/decimal"

// EventSink consumes events emitted by the book, one at a time.
// Delivery is fire-and-forget: the engine never waits on, or reacts to,
// anything downstream of Publish.
type EventSink interface {
	Publish(event Event)
}

// nullSink is the standalone default when no publisher is wired.
type nullSink struct{}

func (nullSink) Publish(Event) {}

// MatchingEngine is a thin façade routing orders to the book and
// broadcasting the resulting events to the configured sink.
type MatchingEngine struct {
	book *OrderBook
	sink EventSink
}

func New(sink EventSink) *MatchingEngine {
	if sink == nil {
		sink = nullSink{}
	}
	return &MatchingEngine{
		book: NewOrderBook(),
		sink: sink,
	}
}

// SubmitOrder sends an order into the book and forwards the emitted
// events to the sink before returning them.
func (e *MatchingEngine) SubmitOrder(order *Order) []Event {
	events := e.book.Submit(order)
	for _, event := range events {
		e.sink.Publish(event)
	}
	return events
}

// CancelOrder requests cancellation of a resting order by id.
func (e *MatchingEngine) CancelOrder(orderID, reason string) []Event {
	events := e.book.Cancel(orderID, reason)
	for _, event := range events {
		e.sink.Publish(event)
	}
	return events
}

func (e *MatchingEngine) BestBid() (decimal.Decimal, bool) {
	return e.book.BestBid()
}

func (e *MatchingEngine) BestAsk() (decimal.Decimal, bool) {
	return e.book.BestAsk()
}

// Book exposes the underlying order book for read-only inspection.
func (e *MatchingEngine) Book() *OrderBook {
	return e.book
}
