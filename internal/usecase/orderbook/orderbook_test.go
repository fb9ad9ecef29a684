package orderbook

import (
	"fmt"
	"testing"

	orderbookv1 "github.com/muhammadchandra19/matching-core/internal/domain/orderbook/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to create a test order with a specific id
func createTestOrder(id string, orderType orderbookv1.OrderType, bid bool, price, quantity, stopPrice float64) *orderbookv1.Order {
	return orderbookv1.NewOrder(id, orderType, bid, price, quantity, stopPrice)
}

func limitOrder(id string, bid bool, price, quantity float64) *orderbookv1.Order {
	return createTestOrder(id, orderbookv1.OrderTypeLimit, bid, price, quantity, 0)
}

// checkConsistency asserts the book's cross-container invariants: every
// indexed id lives in exactly one container, every container entry is
// indexed, level prices match their keys, and no level is empty.
func checkConsistency(t *testing.T, ob *Orderbook) {
	t.Helper()

	containerCount := make(map[string]int)

	for _, s := range []*side{ob.bids, ob.asks} {
		require.Equal(t, len(s.levels), len(s.prices))
		for price, limit := range s.levels {
			require.Equal(t, price, limit.Price)
			require.False(t, limit.IsEmpty(), "empty level at %f", price)
			require.NoError(t, limit.Validate())
			for _, o := range limit.Orders {
				require.Equal(t, s.bids, o.IsBid())
				require.Equal(t, price, o.Price)
				require.Greater(t, o.Quantity, 0.0)
				containerCount[o.ID]++
			}
		}
	}
	for _, entry := range ob.stops {
		require.Equal(t, orderbookv1.OrderTypeStop, entry.order.Type)
		require.Greater(t, entry.order.Quantity, 0.0)
		containerCount[entry.order.ID]++
	}

	for id, n := range containerCount {
		require.Equal(t, 1, n, "order %s in %d containers", id, n)
		_, indexed := ob.orders[id]
		require.True(t, indexed, "order %s not in id index", id)
	}
	for id := range ob.orders {
		require.Equal(t, 1, containerCount[id], "indexed order %s not in any container", id)
	}
}

func TestNewOrderbook(t *testing.T) {
	ob := NewOrderbook()

	assert.NotNil(t, ob)
	assert.Equal(t, 0, ob.OrderCount())
	assert.Equal(t, 0.0, ob.BestBid())
	assert.Equal(t, 0.0, ob.BestAsk())
}

func TestOrderbook_AddOrder_Basic(t *testing.T) {
	ob := NewOrderbook()

	ok := ob.AddOrder(limitOrder("order1", false, 10_000, 10))
	require.True(t, ok)

	assert.Equal(t, 1, ob.OrderCount())
	assert.Equal(t, 10_000.0, ob.BestAsk())
	assert.Equal(t, 0.0, ob.BestBid())
	assert.Equal(t, 10.0, ob.AskTotalVolume())
	checkConsistency(t, ob)
}

func TestOrderbook_AddOrder_Rejections(t *testing.T) {
	ob := NewOrderbook()

	assert.False(t, ob.AddOrder(nil))
	assert.False(t, ob.AddOrder(limitOrder("zero", true, 100, 0)))
	assert.False(t, ob.AddOrder(limitOrder("negative", true, 100, -1)))
	assert.False(t, ob.AddOrder(limitOrder("free", true, 0, 10)))

	// Market orders never rest
	assert.False(t, ob.AddOrder(createTestOrder("market1", orderbookv1.OrderTypeMarket, true, 0, 10, 0)))

	// Duplicate ids are rejected
	require.True(t, ob.AddOrder(limitOrder("dup", true, 100, 10)))
	assert.False(t, ob.AddOrder(limitOrder("dup", true, 101, 10)))

	assert.Equal(t, 1, ob.OrderCount())
	checkConsistency(t, ob)
}

func TestOrderbook_SamePriceLevel_FIFO(t *testing.T) {
	ob := NewOrderbook()

	require.True(t, ob.AddOrder(limitOrder("order1", false, 10_000, 10)))
	require.True(t, ob.AddOrder(limitOrder("order2", false, 10_000, 5)))

	asks := ob.Asks()
	require.Len(t, asks, 1)
	assert.Equal(t, 2, asks[0].OrderCount())
	assert.Equal(t, 15.0, asks[0].TotalVolume)
	assert.Equal(t, "order1", asks[0].GetOrders()[0].ID)
	assert.Equal(t, "order2", asks[0].GetOrders()[1].ID)
}

func TestOrderbook_BestPrices(t *testing.T) {
	// S4: best prices across four resting orders.
	ob := NewOrderbook()

	require.True(t, ob.AddOrder(limitOrder("s1", false, 100.0, 10)))
	require.True(t, ob.AddOrder(limitOrder("s2", false, 101.0, 10)))
	require.True(t, ob.AddOrder(limitOrder("b1", true, 99.0, 10)))
	require.True(t, ob.AddOrder(limitOrder("b2", true, 98.0, 10)))

	assert.Equal(t, 99.0, ob.BestBid())
	assert.Equal(t, 100.0, ob.BestAsk())

	// Sides are sorted best-first
	asks := ob.Asks()
	assert.Equal(t, 100.0, asks[0].Price)
	assert.Equal(t, 101.0, asks[1].Price)
	bids := ob.Bids()
	assert.Equal(t, 99.0, bids[0].Price)
	assert.Equal(t, 98.0, bids[1].Price)

	checkConsistency(t, ob)
}

func TestOrderbook_LimitMatch_PartialFill(t *testing.T) {
	// S1: limit taker partially fills a resting ask.
	ob := NewOrderbook()

	sell1 := limitOrder("sell1", false, 100.0, 10)
	require.True(t, ob.AddOrder(sell1))

	buy1 := limitOrder("buy1", true, 100.0, 5)
	matches := ob.MatchMarketOrder(buy1)

	require.Len(t, matches, 1)
	assert.Equal(t, buy1, matches[0].Taker)
	assert.Equal(t, sell1, matches[0].Maker)
	assert.Equal(t, 100.0, matches[0].Price)
	assert.Equal(t, 5.0, matches[0].SizeFilled)

	assert.Equal(t, 5.0, sell1.Quantity)
	assert.Equal(t, 0.0, buy1.Quantity)
	assert.Equal(t, 100.0, ob.BestAsk())
	assert.Equal(t, 5.0, ob.AskTotalVolume())
	assert.Equal(t, 0.0, ob.BestBid())
	checkConsistency(t, ob)
}

func TestOrderbook_MarketWalksLevels(t *testing.T) {
	// S2: market taker consumes the best level and part of the next.
	ob := NewOrderbook()

	sell1 := limitOrder("sell1", false, 100.0, 10)
	sell2 := limitOrder("sell2", false, 101.0, 10)
	require.True(t, ob.AddOrder(sell1))
	require.True(t, ob.AddOrder(sell2))

	mbuy := createTestOrder("mbuy", orderbookv1.OrderTypeMarket, true, 0, 15, 0)
	matches := ob.MatchMarketOrder(mbuy)

	require.Len(t, matches, 2)
	assert.Equal(t, 100.0, matches[0].Price)
	assert.Equal(t, 10.0, matches[0].SizeFilled)
	assert.Equal(t, 101.0, matches[1].Price)
	assert.Equal(t, 5.0, matches[1].SizeFilled)

	assert.Equal(t, 5.0, sell2.Quantity)
	assert.Equal(t, 101.0, ob.BestAsk())
	assert.Nil(t, ob.GetOrder("sell1"), "filled maker must leave the id index")
	checkConsistency(t, ob)
}

func TestOrderbook_MarketInsufficientLiquidity(t *testing.T) {
	ob := NewOrderbook()

	sell1 := limitOrder("sell1", false, 100.0, 10)
	require.True(t, ob.AddOrder(sell1))

	mbuy := createTestOrder("mbuy", orderbookv1.OrderTypeMarket, true, 0, 25, 0)
	matches := ob.MatchMarketOrder(mbuy)

	require.Len(t, matches, 1)
	assert.Equal(t, 10.0, matches[0].SizeFilled)
	assert.Equal(t, 15.0, mbuy.Quantity, "residual stays on the taker; the caller discards it")
	assert.Equal(t, 0.0, ob.BestAsk())
	checkConsistency(t, ob)
}

func TestOrderbook_LimitAdmissibility(t *testing.T) {
	// A limit taker never crosses beyond its limit price.
	ob := NewOrderbook()

	require.True(t, ob.AddOrder(limitOrder("cheap", false, 100.0, 5)))
	require.True(t, ob.AddOrder(limitOrder("dear", false, 200.0, 5)))

	buy := limitOrder("buy", true, 100.0, 10)
	matches := ob.MatchMarketOrder(buy)

	require.Len(t, matches, 1)
	assert.Equal(t, 100.0, matches[0].Price)
	assert.Equal(t, 5.0, buy.Quantity, "taker stops at its limit")
	assert.Equal(t, 200.0, ob.BestAsk())

	// Symmetric for a sell taker against bids
	require.True(t, ob.AddOrder(limitOrder("high", true, 99.0, 5)))
	require.True(t, ob.AddOrder(limitOrder("low", true, 90.0, 5)))

	sell := limitOrder("sell", false, 95.0, 10)
	matches = ob.MatchMarketOrder(sell)

	require.Len(t, matches, 1)
	assert.Equal(t, 99.0, matches[0].Price)
	assert.Equal(t, 5.0, sell.Quantity)
	assert.Equal(t, 90.0, ob.BestBid())
	checkConsistency(t, ob)
}

func TestOrderbook_PriceTimePriority(t *testing.T) {
	// S6: two asks at the same price fill in arrival order.
	ob := NewOrderbook()

	s1 := limitOrder("s1", false, 100.0, 5)
	s2 := limitOrder("s2", false, 100.0, 5)
	require.True(t, ob.AddOrder(s1))
	require.True(t, ob.AddOrder(s2))

	mbuy := createTestOrder("mbuy", orderbookv1.OrderTypeMarket, true, 0, 6, 0)
	matches := ob.MatchMarketOrder(mbuy)

	require.Len(t, matches, 2)
	assert.Equal(t, s1, matches[0].Maker)
	assert.Equal(t, 5.0, matches[0].SizeFilled)
	assert.Equal(t, s2, matches[1].Maker)
	assert.Equal(t, 1.0, matches[1].SizeFilled)
	assert.Equal(t, 4.0, s2.Quantity)
	checkConsistency(t, ob)
}

func TestOrderbook_NoCrossedBook(t *testing.T) {
	ob := NewOrderbook()

	require.True(t, ob.AddOrder(limitOrder("a1", false, 100.0, 5)))
	require.True(t, ob.AddOrder(limitOrder("b1", true, 99.0, 5)))

	// A marketable limit buy sweeps the ask, then rests nothing here.
	buy := limitOrder("buy", true, 101.0, 5)
	ob.MatchMarketOrder(buy)

	bestBid, bestAsk := ob.BestBid(), ob.BestAsk()
	if bestBid != 0 && bestAsk != 0 {
		assert.Less(t, bestBid, bestAsk)
	}
	checkConsistency(t, ob)
}

func TestOrderbook_CancelOrder(t *testing.T) {
	// S5: cancelling the only order erases the level.
	ob := NewOrderbook()

	require.True(t, ob.AddOrder(limitOrder("s1", false, 100.0, 10)))
	require.True(t, ob.CancelOrder("s1"))

	assert.Equal(t, 0, ob.OrderCount())
	assert.Empty(t, ob.Asks())
	assert.Equal(t, 0.0, ob.BestAsk())

	// Unknown id
	assert.False(t, ob.CancelOrder("s1"))
	assert.False(t, ob.CancelOrder("never-existed"))
	checkConsistency(t, ob)
}

func TestOrderbook_Cancel_RoundTrip(t *testing.T) {
	// add + cancel leaves the book identical to its prior state,
	// including empty-level cleanup.
	ob := NewOrderbook()

	require.True(t, ob.AddOrder(limitOrder("keep", false, 101.0, 3)))

	require.True(t, ob.AddOrder(limitOrder("gone", false, 100.0, 10)))
	require.True(t, ob.CancelOrder("gone"))

	assert.Equal(t, 1, ob.OrderCount())
	require.Len(t, ob.Asks(), 1)
	assert.Equal(t, 101.0, ob.BestAsk())
	assert.Equal(t, 3.0, ob.AskTotalVolume())
	checkConsistency(t, ob)
}

func TestOrderbook_CancelStopOrder(t *testing.T) {
	ob := NewOrderbook()

	stop := createTestOrder("stop1", orderbookv1.OrderTypeStop, false, 95.0, 10, 100.0)
	require.True(t, ob.AddOrder(stop))
	assert.Equal(t, 0.0, ob.BestAsk(), "stop orders do not contribute to best prices")

	require.True(t, ob.CancelOrder("stop1"))
	assert.Equal(t, 0, ob.OrderCount())
	assert.Empty(t, ob.stops)
	checkConsistency(t, ob)
}

func TestOrderbook_ModifyOrder(t *testing.T) {
	ob := NewOrderbook()

	require.True(t, ob.AddOrder(limitOrder("first", false, 100.0, 10)))
	modified := limitOrder("second", false, 100.0, 10)
	require.True(t, ob.AddOrder(modified))

	require.True(t, ob.ModifyOrder("second", 4))
	assert.Equal(t, 4.0, modified.Quantity)
	assert.Equal(t, 14.0, ob.AskTotalVolume())

	// Queue position is preserved
	orders := ob.Asks()[0].GetOrders()
	assert.Equal(t, "first", orders[0].ID)
	assert.Equal(t, "second", orders[1].ID)

	// Unknown id
	assert.False(t, ob.ModifyOrder("missing", 5))

	// Non-positive quantity cancels
	require.True(t, ob.ModifyOrder("second", 0))
	assert.Nil(t, ob.GetOrder("second"))
	assert.Equal(t, 10.0, ob.AskTotalVolume())
	checkConsistency(t, ob)
}

func TestOrderbook_StopActivation_Sell(t *testing.T) {
	// S3 (corrected): a sell stop triggers when the last trade price
	// drops to or below its stop price, not above it.
	ob := NewOrderbook()

	stop := createTestOrder("stop1", orderbookv1.OrderTypeStop, false, 95.0, 10, 100.0)
	require.True(t, ob.AddOrder(stop))

	ob.CheckStopOrders(101.0)
	assert.Len(t, ob.stops, 1, "101 > 100 must not trigger a sell stop")
	assert.Equal(t, 0.0, ob.BestAsk())

	ob.CheckStopOrders(99.0)
	assert.Empty(t, ob.stops)
	assert.Equal(t, 95.0, ob.BestAsk())
	assert.Equal(t, orderbookv1.OrderTypeLimit, stop.Type)
	assert.NotNil(t, ob.GetOrder("stop1"))
	checkConsistency(t, ob)
}

func TestOrderbook_StopActivation_Buy(t *testing.T) {
	ob := NewOrderbook()

	stop := createTestOrder("stop1", orderbookv1.OrderTypeStop, true, 105.0, 10, 100.0)
	require.True(t, ob.AddOrder(stop))

	ob.CheckStopOrders(99.0)
	assert.Len(t, ob.stops, 1, "99 < 100 must not trigger a buy stop")

	ob.CheckStopOrders(100.0)
	assert.Empty(t, ob.stops)
	assert.Equal(t, 105.0, ob.BestBid())
	checkConsistency(t, ob)
}

func TestOrderbook_StopActivation_Deterministic(t *testing.T) {
	// Equal stop prices activate in arrival order; distinct stop prices
	// in price order.
	ob := NewOrderbook()

	require.True(t, ob.AddOrder(createTestOrder("late", orderbookv1.OrderTypeStop, true, 103.0, 1, 102.0)))
	require.True(t, ob.AddOrder(createTestOrder("early-a", orderbookv1.OrderTypeStop, true, 101.0, 1, 100.0)))
	require.True(t, ob.AddOrder(createTestOrder("early-b", orderbookv1.OrderTypeStop, true, 101.0, 1, 100.0)))

	var activated []string
	for _, entry := range ob.stops {
		activated = append(activated, entry.order.ID)
	}
	assert.Equal(t, []string{"early-a", "early-b", "late"}, activated)

	ob.CheckStopOrders(102.0)
	assert.Empty(t, ob.stops)

	// Both resting at 101, arrival order preserved in the queue
	level := ob.Bids()[1]
	assert.Equal(t, 101.0, level.Price)
	assert.Equal(t, "early-a", level.GetOrders()[0].ID)
	assert.Equal(t, "early-b", level.GetOrders()[1].ID)
	checkConsistency(t, ob)
}

func TestOrderbook_StopActivation_DoesNotMatchInline(t *testing.T) {
	ob := NewOrderbook()

	require.True(t, ob.AddOrder(limitOrder("resting-bid", true, 96.0, 10)))
	stop := createTestOrder("stop1", orderbookv1.OrderTypeStop, false, 95.0, 10, 100.0)
	require.True(t, ob.AddOrder(stop))

	ob.CheckStopOrders(98.0)

	// The activated stop rests; it does not sweep the crossing bid.
	assert.Equal(t, 95.0, ob.BestAsk())
	assert.Equal(t, 96.0, ob.BestBid())
	assert.Equal(t, 10.0, stop.Quantity)
	checkConsistency(t, ob)
}

func TestOrderbook_Snapshot_RoundTrip(t *testing.T) {
	ob := NewOrderbook()

	require.True(t, ob.AddOrder(limitOrder("a1", false, 100.0, 10)))
	require.True(t, ob.AddOrder(limitOrder("a2", false, 100.0, 5)))
	require.True(t, ob.AddOrder(limitOrder("b1", true, 99.0, 7)))
	require.True(t, ob.AddOrder(createTestOrder("stop1", orderbookv1.OrderTypeStop, false, 95.0, 3, 98.0)))

	snapshot := ob.CreateSnapshot()
	require.Len(t, snapshot.OrderBookSnapshot.Orders, 3)
	require.Len(t, snapshot.OrderBookSnapshot.StopOrders, 1)

	restored := NewOrderbook()
	require.NoError(t, restored.RestoreOrderbook(snapshot))

	assert.Equal(t, 4, restored.OrderCount())
	assert.Equal(t, 99.0, restored.BestBid())
	assert.Equal(t, 100.0, restored.BestAsk())
	assert.Equal(t, 15.0, restored.AskTotalVolume())

	// FIFO preserved at the 100 level
	orders := restored.Asks()[0].GetOrders()
	assert.Equal(t, "a1", orders[0].ID)
	assert.Equal(t, "a2", orders[1].ID)

	// The stop still activates after restore
	restored.CheckStopOrders(98.0)
	assert.Equal(t, 95.0, restored.BestAsk())
	checkConsistency(t, restored)

	assert.Error(t, restored.RestoreOrderbook(nil))
}

func TestOrderbook_MixedWorkload_Consistency(t *testing.T) {
	ob := NewOrderbook()

	for i := 0; i < 50; i++ {
		price := 100.0 + float64(i%7)
		require.True(t, ob.AddOrder(limitOrder(fmt.Sprintf("ask-%d", i), false, price, 1+float64(i%3))))
		require.True(t, ob.AddOrder(limitOrder(fmt.Sprintf("bid-%d", i), true, 90.0+float64(i%5), 1+float64(i%4))))
	}
	for i := 0; i < 50; i += 3 {
		require.True(t, ob.CancelOrder(fmt.Sprintf("ask-%d", i)))
	}
	for i := 0; i < 10; i++ {
		taker := createTestOrder(fmt.Sprintf("taker-%d", i), orderbookv1.OrderTypeMarket, i%2 == 0, 0, 5, 0)
		ob.MatchMarketOrder(taker)
		checkConsistency(t, ob)
	}

	bestBid, bestAsk := ob.BestBid(), ob.BestAsk()
	if bestBid != 0 && bestAsk != 0 {
		assert.Less(t, bestBid, bestAsk)
	}
}
