package engine

import (
	"iter"

	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"

	"nyx/internal/common"
)

// priceLevel is one price paired with the FIFO queue of orders resting
// at that price. A level is indexed iff its queue is non-empty.
type priceLevel struct {
	price  decimal.Decimal
	orders []*Order
}

type priceLevels = btree.BTreeG[*priceLevel]

// bookSide holds all price levels for one direction of the book. The
// comparator is chosen per side so that Min() is always top of book:
// highest price first for bids, lowest first for asks.
type bookSide struct {
	side   common.Side
	levels *priceLevels
}

func newBookSide(side common.Side) *bookSide {
	less := func(a, b *priceLevel) bool {
		return a.price.LessThan(b.price)
	}
	if side == common.Buy {
		less = func(a, b *priceLevel) bool {
			return a.price.GreaterThan(b.price)
		}
	}
	return &bookSide{
		side:   side,
		levels: btree.NewBTreeG(less),
	}
}

// add inserts the order at the tail of the queue for its exact price,
// creating the level if absent.
func (s *bookSide) add(order *Order) {
	// Comparator only reads the price, so a pivot level is enough for
	// the lookup.
	level, ok := s.levels.GetMut(&priceLevel{price: order.Price})
	if ok {
		level.orders = append(level.orders, order)
		return
	}
	s.levels.Set(&priceLevel{
		price:  order.Price,
		orders: []*Order{order},
	})
}

// bestPrice returns the top-of-book price for this side, if any level
// exists.
func (s *bookSide) bestPrice() (decimal.Decimal, bool) {
	level, ok := s.levels.Min()
	if !ok {
		return decimal.Decimal{}, false
	}
	return level.price, true
}

// bestOrder returns the first order with remaining quantity at the best
// price. Filled orders at the head of a queue and levels drained to
// empty are pruned here: fills land on resting orders from the opposite
// side of a trade, so a level's head can go stale between lookups.
func (s *bookSide) bestOrder() *Order {
	for {
		level, ok := s.levels.MinMut()
		if !ok {
			return nil
		}
		for len(level.orders) > 0 && level.orders[0].IsFilled() {
			level.orders = level.orders[1:]
		}
		if len(level.orders) == 0 {
			s.levels.Delete(level)
			continue
		}
		return level.orders[0]
	}
}

// removeOrder strips a specific order from its level, dropping the
// level if it becomes empty. No-op if the order is not present. Used by
// the cancel flow; matching relies on bestOrder's pruning instead.
func (s *bookSide) removeOrder(order *Order) {
	level, ok := s.levels.GetMut(&priceLevel{price: order.Price})
	if !ok {
		return
	}
	for i, o := range level.orders {
		if o.ID == order.ID {
			level.orders = append(level.orders[:i], level.orders[i+1:]...)
			break
		}
	}
	if len(level.orders) == 0 {
		s.levels.Delete(level)
	}
}

// orders yields the currently eligible orders in price-time priority.
// The side comparator already scans best price first; within a level,
// queue order is arrival order. Diagnostics only: this walks the whole
// side.
func (s *bookSide) orders() iter.Seq[*Order] {
	return func(yield func(*Order) bool) {
		s.levels.Scan(func(level *priceLevel) bool {
			for _, order := range level.orders {
				if order.IsFilled() {
					continue
				}
				if !yield(order) {
					return false
				}
			}
			return true
		})
	}
}
