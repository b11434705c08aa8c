package engine

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Event is an immutable record describing the outcome of a book
// operation. Events are pure output: the book never reads them back.
type Event interface {
	// Kind is the event discriminator used on serialized surfaces.
	Kind() string
}

// OrderAccepted is emitted when an order is accepted, whether it rested
// on the book or was fully filled on entry.
type OrderAccepted struct {
	Order     *Order    `json:"order"`
	Timestamp time.Time `json:"timestamp"`
}

func (OrderAccepted) Kind() string { return "order_accepted" }

// Trade records an execution between a resting (maker) and an incoming
// (taker) order. Price is always the maker's price.
type Trade struct {
	MakerOrderID string          `json:"maker_order_id"`
	TakerOrderID string          `json:"taker_order_id"`
	Price        decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity"`
	Timestamp    time.Time       `json:"timestamp"`
}

func (Trade) Kind() string { return "trade" }

// OrderCancelled signals an order has been removed from the book with
// quantity left unfilled.
type OrderCancelled struct {
	OrderID           string          `json:"order_id"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	Reason            string          `json:"reason,omitempty"`
	Timestamp         time.Time       `json:"timestamp"`
}

func (OrderCancelled) Kind() string { return "order_cancelled" }

// OrderRejected indicates a request could not be honoured, e.g. a
// cancel for an id that is not resting.
type OrderRejected struct {
	OrderID   string    `json:"order_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

func (OrderRejected) Kind() string { return "order_rejected" }

// Envelope tags an event with its kind for serialized surfaces (wire
// reports, the Kafka publisher).
type Envelope struct {
	Type  string `json:"type"`
	Event Event  `json:"event"`
}

// MarshalEvent encodes an event as a tagged JSON envelope.
func MarshalEvent(event Event) ([]byte, error) {
	return json.Marshal(Envelope{Type: event.Kind(), Event: event})
}

func eventTime() time.Time {
	return time.Now().UTC()
}
