package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyx/internal/common"
)

func TestBookSide_BestPrice(t *testing.T) {
	bids := newBookSide(common.Buy)
	asks := newBookSide(common.Sell)

	_, ok := bids.bestPrice()
	assert.False(t, ok, "empty side has no best price")

	for _, price := range []string{"99", "101", "100"} {
		bids.add(newTestOrder(t, "bid-"+price, common.Buy, price, "1", common.GTC))
		asks.add(newTestOrder(t, "ask-"+price, common.Sell, price, "1", common.GTC))
	}

	// Best is the maximum for bids and the minimum for asks.
	bestBid, ok := bids.bestPrice()
	require.True(t, ok)
	assert.True(t, bestBid.Equal(decimal.RequireFromString("101")))

	bestAsk, ok := asks.bestPrice()
	require.True(t, ok)
	assert.True(t, bestAsk.Equal(decimal.RequireFromString("99")))
}

func TestBookSide_BestOrder_LazyPruning(t *testing.T) {
	asks := newBookSide(common.Sell)
	first := newTestOrder(t, "ask-1", common.Sell, "100", "5", common.GTC)
	second := newTestOrder(t, "ask-2", common.Sell, "100", "5", common.GTC)
	deeper := newTestOrder(t, "ask-3", common.Sell, "101", "5", common.GTC)
	asks.add(first)
	asks.add(second)
	asks.add(deeper)

	assert.Same(t, first, asks.bestOrder())

	// Fill the head out-of-band, the way the opposite side of a trade
	// does. The stale head must be pruned on the next lookup.
	_, err := first.ApplyFill(decimal.RequireFromString("5"))
	require.NoError(t, err)
	assert.Same(t, second, asks.bestOrder())

	// Draining the whole level must drop it from the index and fall
	// through to the next level.
	_, err = second.ApplyFill(decimal.RequireFromString("5"))
	require.NoError(t, err)
	assert.Same(t, deeper, asks.bestOrder())
	assert.Equal(t, 1, asks.levels.Len(), "drained level should be pruned")

	_, err = deeper.ApplyFill(decimal.RequireFromString("5"))
	require.NoError(t, err)
	assert.Nil(t, asks.bestOrder())
	assert.Equal(t, 0, asks.levels.Len())
}

func TestBookSide_RemoveOrder(t *testing.T) {
	bids := newBookSide(common.Buy)
	first := newTestOrder(t, "bid-1", common.Buy, "100", "5", common.GTC)
	second := newTestOrder(t, "bid-2", common.Buy, "100", "5", common.GTC)
	bids.add(first)
	bids.add(second)

	// Removing an order that never rested is a no-op.
	bids.removeOrder(newTestOrder(t, "bid-missing", common.Buy, "100", "5", common.GTC))
	assert.Same(t, first, bids.bestOrder())

	bids.removeOrder(first)
	assert.Same(t, second, bids.bestOrder())

	// The level disappears with its last order.
	bids.removeOrder(second)
	assert.Nil(t, bids.bestOrder())
	assert.Equal(t, 0, bids.levels.Len())
}

func TestBookSide_Orders_PriceTimePriority(t *testing.T) {
	bids := newBookSide(common.Buy)
	// Arrival order deliberately interleaves price levels.
	bids.add(newTestOrder(t, "bid-1", common.Buy, "99", "1", common.GTC))
	bids.add(newTestOrder(t, "bid-2", common.Buy, "100", "1", common.GTC))
	bids.add(newTestOrder(t, "bid-3", common.Buy, "99", "1", common.GTC))
	bids.add(newTestOrder(t, "bid-4", common.Buy, "98", "1", common.GTC))

	collect := func() []string {
		var ids []string
		for order := range bids.orders() {
			ids = append(ids, order.ID)
		}
		return ids
	}

	want := []string{"bid-2", "bid-1", "bid-3", "bid-4"}
	assert.Equal(t, want, collect())
	// The sequence is restartable.
	assert.Equal(t, want, collect())
}

func TestBookSide_Orders_SkipsFilled(t *testing.T) {
	asks := newBookSide(common.Sell)
	filled := newTestOrder(t, "ask-1", common.Sell, "100", "1", common.GTC)
	live := newTestOrder(t, "ask-2", common.Sell, "100", "1", common.GTC)
	asks.add(filled)
	asks.add(live)

	_, err := filled.ApplyFill(decimal.RequireFromString("1"))
	require.NoError(t, err)

	var ids []string
	for order := range asks.orders() {
		ids = append(ids, order.ID)
	}
	assert.Equal(t, []string{"ask-2"}, ids)
}
