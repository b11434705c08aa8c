package net

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"nyx/internal/common"
	"nyx/internal/engine"
)

var (
	ErrInvalidMessageType = errors.New("invalid message type")
	ErrMessageTooShort    = errors.New("message too short")
	ErrInvalidSide        = errors.New("invalid side")
	ErrInvalidTimeInForce = errors.New("invalid time in force")
)

type MessageType int

const (
	Heartbeat MessageType = iota
	NewOrder
	CancelOrder
)

type Message interface {
	GetType() MessageType
}

// Message format constants
const (
	BaseMessageHeaderLen  = 2
	OrderUUIDLen          = 36
	CancelOrderMessageLen = OrderUUIDLen
)

// Generic message type.
type BaseMessage struct {
	TypeOf MessageType // 2 bytes
}

func (m BaseMessage) GetType() MessageType {
	return m.TypeOf
}

func parseMessage(msg []byte) (Message, error) {
	if len(msg) < BaseMessageHeaderLen {
		return BaseMessage{}, fmt.Errorf("%w: missing header", ErrMessageTooShort)
	}

	typeOf := MessageType(binary.BigEndian.Uint16(msg[0:2]))
	msg = msg[2:]
	switch typeOf {
	case Heartbeat:
		return BaseMessage{TypeOf: Heartbeat}, nil
	case NewOrder:
		return parseNewOrder(msg)
	case CancelOrder:
		return parseCancelOrder(msg)
	default:
		return BaseMessage{}, ErrInvalidMessageType
	}
}

// NewOrderMessage carries one order entry request. Price and quantity
// travel as length-prefixed decimal strings so no precision is lost on
// the wire.
type NewOrderMessage struct {
	BaseMessage
	Side        common.Side        // 1 byte
	TimeInForce common.TimeInForce // 1 byte
	Price       string             // 1 length byte + n bytes
	Quantity    string             // 1 length byte + n bytes
	Owner       string             // 1 length byte + n bytes
}

// Order converts the message into a validated engine order with a fresh
// uuid. The owner travels in the order's user data.
func (m *NewOrderMessage) Order() (*engine.Order, error) {
	price, err := decimal.NewFromString(m.Price)
	if err != nil {
		return nil, fmt.Errorf("parsing price: %w", err)
	}
	quantity, err := decimal.NewFromString(m.Quantity)
	if err != nil {
		return nil, fmt.Errorf("parsing quantity: %w", err)
	}

	order, err := engine.NewOrder(
		uuid.New().String(),
		m.Side,
		price,
		quantity,
		common.LimitOrder,
		m.TimeInForce,
	)
	if err != nil {
		return nil, err
	}
	if m.Owner != "" {
		order.UserData = map[string]any{"owner": m.Owner}
	}
	return order, nil
}

func parseNewOrder(msg []byte) (*NewOrderMessage, error) {
	m := &NewOrderMessage{BaseMessage: BaseMessage{TypeOf: NewOrder}}

	if len(msg) < 2 {
		return nil, fmt.Errorf("%w: missing side and time in force", ErrMessageTooShort)
	}
	switch msg[0] {
	case byte(common.Buy):
		m.Side = common.Buy
	case byte(common.Sell):
		m.Side = common.Sell
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidSide, msg[0])
	}
	switch msg[1] {
	case byte(common.GTC):
		m.TimeInForce = common.GTC
	case byte(common.IOC):
		m.TimeInForce = common.IOC
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidTimeInForce, msg[1])
	}
	msg = msg[2:]

	var err error
	if m.Price, msg, err = readString(msg); err != nil {
		return nil, fmt.Errorf("reading price: %w", err)
	}
	if m.Quantity, msg, err = readString(msg); err != nil {
		return nil, fmt.Errorf("reading quantity: %w", err)
	}
	if m.Owner, _, err = readString(msg); err != nil {
		return nil, fmt.Errorf("reading owner: %w", err)
	}

	return m, nil
}

// Serialize packs the message for the wire, header included.
func (m NewOrderMessage) Serialize() []byte {
	buf := make([]byte, 0, BaseMessageHeaderLen+2+3+len(m.Price)+len(m.Quantity)+len(m.Owner))
	buf = binary.BigEndian.AppendUint16(buf, uint16(NewOrder))
	buf = append(buf, byte(m.Side), byte(m.TimeInForce))
	buf = appendString(buf, m.Price)
	buf = appendString(buf, m.Quantity)
	buf = appendString(buf, m.Owner)
	return buf
}

// CancelOrderMessage requests removal of a resting order by uuid.
type CancelOrderMessage struct {
	BaseMessage
	OrderUUID string // 36 bytes
}

func parseCancelOrder(msg []byte) (*CancelOrderMessage, error) {
	if len(msg) < CancelOrderMessageLen {
		return nil, fmt.Errorf("%w: want %d byte uuid", ErrMessageTooShort, OrderUUIDLen)
	}
	return &CancelOrderMessage{
		BaseMessage: BaseMessage{TypeOf: CancelOrder},
		OrderUUID:   string(msg[:OrderUUIDLen]),
	}, nil
}

func (m CancelOrderMessage) Serialize() []byte {
	buf := make([]byte, 0, BaseMessageHeaderLen+OrderUUIDLen)
	buf = binary.BigEndian.AppendUint16(buf, uint16(CancelOrder))
	buf = append(buf, m.OrderUUID[:OrderUUIDLen]...)
	return buf
}

// readString consumes one length-prefixed string from msg and returns
// the remainder.
func readString(msg []byte) (string, []byte, error) {
	if len(msg) < 1 {
		return "", nil, fmt.Errorf("%w: missing length byte", ErrMessageTooShort)
	}
	n := int(msg[0])
	if len(msg) < 1+n {
		return "", nil, fmt.Errorf("%w: want %d bytes, have %d", ErrMessageTooShort, n, len(msg)-1)
	}
	return string(msg[1 : 1+n]), msg[1+n:], nil
}

func appendString(buf []byte, s string) []byte {
	buf = append(buf, byte(len(s)))
	return append(buf, s...)
}
