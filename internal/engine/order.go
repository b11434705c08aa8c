package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"nyx/internal/common"
)

var (
	ErrInvalidOrder = errors.New("invalid order")
	ErrInvalidFill  = errors.New("fill amount must be positive")
	ErrFullyFilled  = errors.New("order is fully filled")
)

// Order is a single limit order, either incoming or resting on the book.
// Price and Quantity are fixed at construction; FilledQuantity only ever
// grows, and only through ApplyFill.
type Order struct {
	ID             string             `json:"id"`
	Side           common.Side        `json:"side"`
	Price          decimal.Decimal    `json:"price"`
	Quantity       decimal.Decimal    `json:"quantity"`
	FilledQuantity decimal.Decimal    `json:"filled_quantity"`
	TimeInForce    common.TimeInForce `json:"time_in_force"`
	CreatedAt      time.Time          `json:"created_at"`

	// UserData carries opaque caller metadata through the book untouched.
	UserData map[string]any `json:"user_data,omitempty"`
}

// NewOrder validates and builds an order. Only simple limit orders are
// supported; price and quantity must be strictly positive.
func NewOrder(id string, side common.Side, price, quantity decimal.Decimal, orderType common.OrderType, tif common.TimeInForce) (*Order, error) {
	if !price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be positive, got %s", ErrInvalidOrder, price)
	}
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive, got %s", ErrInvalidOrder, quantity)
	}
	if orderType != common.LimitOrder {
		return nil, fmt.Errorf("%w: unsupported order type %s", ErrInvalidOrder, orderType)
	}
	return &Order{
		ID:          id,
		Side:        side,
		Price:       price,
		Quantity:    quantity,
		TimeInForce: tif,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Remaining returns the unfilled portion that can still be matched,
// never negative.
func (o *Order) Remaining() decimal.Decimal {
	remaining := o.Quantity.Sub(o.FilledQuantity)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// IsFilled reports whether the order has reached zero remaining size.
func (o *Order) IsFilled() bool {
	return o.Remaining().IsZero()
}

// ApplyFill reduces the remaining quantity by up to amount and returns
// the quantity actually applied, which is clamped to the remaining size.
func (o *Order) ApplyFill(amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: got %s", ErrInvalidFill, amount)
	}
	applied := decimal.Min(amount, o.Remaining())
	o.FilledQuantity = o.FilledQuantity.Add(applied)
	return applied, nil
}

// CloneForRemainder produces a fresh order carrying only the unfilled
// quantity, keeping id, side, price, time-in-force and creation time.
// User data is copied so the clone shares no mutable state with the
// original.
func (o *Order) CloneForRemainder() (*Order, error) {
	remainder := o.Remaining()
	if !remainder.IsPositive() {
		return nil, fmt.Errorf("%w: nothing to clone", ErrFullyFilled)
	}
	var userData map[string]any
	if o.UserData != nil {
		userData = make(map[string]any, len(o.UserData))
		for k, v := range o.UserData {
			userData[k] = v
		}
	}
	return &Order{
		ID:          o.ID,
		Side:        o.Side,
		Price:       o.Price,
		Quantity:    remainder,
		TimeInForce: o.TimeInForce,
		CreatedAt:   o.CreatedAt,
		UserData:    userData,
	}, nil
}

func (o *Order) String() string {
	return fmt.Sprintf("%s %s %s@%s (filled %s, %s)",
		o.ID, o.Side, o.Quantity, o.Price, o.FilledQuantity, o.TimeInForce)
}
