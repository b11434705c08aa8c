package common

import "fmt"

type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// MarshalText renders the side symbolically on serialized surfaces
// (event JSON, snapshots).
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type OrderType int

const (
	// Limit orders are an order to buy or sell at a specified price or
	// better. Limit orders may rest on the order book until filled.
	LimitOrder OrderType = iota
)

func (t OrderType) String() string {
	switch t {
	case LimitOrder:
		return "LIMIT"
	}
	return fmt.Sprintf("OrderType(%d)", int(t))
}

func (t OrderType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// TimeInForce controls how long an order remains active on the book.
type TimeInForce int

const (
	// GTC (good-till-cancelled) rests any unmatched remainder on the
	// book until it is matched or explicitly cancelled.
	GTC TimeInForce = iota
	// IOC (immediate-or-cancel) cancels any unmatched remainder
	// instead of resting it.
	IOC
)

func (t TimeInForce) String() string {
	switch t {
	case GTC:
		return "GTC"
	case IOC:
		return "IOC"
	}
	return fmt.Sprintf("TimeInForce(%d)", int(t))
}

func (t TimeInForce) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
