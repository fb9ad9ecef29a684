package orderbookv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(id string, bid bool, price, quantity float64) *Order {
	return NewOrder(id, OrderTypeLimit, bid, price, quantity, 0)
}

func TestNewLimit(t *testing.T) {
	limit := NewLimit(10_000)

	assert.Equal(t, 10_000.0, limit.Price)
	assert.True(t, limit.IsEmpty())
	assert.Equal(t, 0, limit.OrderCount())
	assert.Equal(t, 0.0, limit.TotalVolume)
}

func TestLimit_AddOrder(t *testing.T) {
	limit := NewLimit(10_000)

	err := limit.AddOrder(newTestOrder("order1", false, 10_000, 10))
	require.NoError(t, err)
	err = limit.AddOrder(newTestOrder("order2", false, 10_000, 5))
	require.NoError(t, err)

	assert.Equal(t, 2, limit.OrderCount())
	assert.Equal(t, 15.0, limit.TotalVolume)

	// Queue order reflects arrival order
	orders := limit.GetOrders()
	assert.Equal(t, "order1", orders[0].ID)
	assert.Equal(t, "order2", orders[1].ID)
}

func TestLimit_AddOrder_Invalid(t *testing.T) {
	limit := NewLimit(10_000)

	err := limit.AddOrder(nil)
	assert.ErrorIs(t, err, ErrNilOrder)

	err = limit.AddOrder(newTestOrder("order1", false, 10_000, 0))
	assert.ErrorIs(t, err, ErrInvalidSize)

	err = limit.AddOrder(newTestOrder("order2", false, 10_000, -3))
	assert.ErrorIs(t, err, ErrInvalidSize)

	assert.True(t, limit.IsEmpty())
}

func TestLimit_RemoveOrder(t *testing.T) {
	limit := NewLimit(10_000)

	require.NoError(t, limit.AddOrder(newTestOrder("order1", false, 10_000, 10)))
	require.NoError(t, limit.AddOrder(newTestOrder("order2", false, 10_000, 5)))
	require.NoError(t, limit.AddOrder(newTestOrder("order3", false, 10_000, 7)))

	err := limit.RemoveOrder("order2")
	require.NoError(t, err)

	assert.Equal(t, 2, limit.OrderCount())
	assert.Equal(t, 17.0, limit.TotalVolume)

	// Positions of the survivors are preserved
	orders := limit.GetOrders()
	assert.Equal(t, "order1", orders[0].ID)
	assert.Equal(t, "order3", orders[1].ID)

	err = limit.RemoveOrder("order2")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestLimit_Fill_FIFO(t *testing.T) {
	limit := NewLimit(10_000)

	first := newTestOrder("first", false, 10_000, 5)
	second := newTestOrder("second", false, 10_000, 5)
	require.NoError(t, limit.AddOrder(first))
	require.NoError(t, limit.AddOrder(second))

	taker := NewOrder("taker", OrderTypeMarket, true, 0, 6, 0)
	matches := limit.Fill(taker)

	require.Len(t, matches, 2)
	assert.Equal(t, first, matches[0].Maker)
	assert.Equal(t, 5.0, matches[0].SizeFilled)
	assert.Equal(t, second, matches[1].Maker)
	assert.Equal(t, 1.0, matches[1].SizeFilled)
	assert.Equal(t, 10_000.0, matches[0].Price)

	assert.True(t, first.IsFilled())
	assert.Equal(t, 4.0, second.Quantity)
	assert.Equal(t, 0.0, taker.Quantity)

	// first was popped, second stays at the head
	assert.Equal(t, 1, limit.OrderCount())
	assert.Equal(t, "second", limit.GetOrders()[0].ID)
	assert.Equal(t, 4.0, limit.TotalVolume)
}

func TestLimit_Fill_TakerExhausted(t *testing.T) {
	limit := NewLimit(10_000)

	maker := newTestOrder("maker", false, 10_000, 10)
	require.NoError(t, limit.AddOrder(maker))

	taker := newTestOrder("taker", true, 10_000, 4)
	matches := limit.Fill(taker)

	require.Len(t, matches, 1)
	assert.Equal(t, 4.0, matches[0].SizeFilled)
	assert.False(t, matches[0].MakerIsFilled())
	assert.True(t, matches[0].TakerIsFilled())
	assert.Equal(t, 6.0, maker.Quantity)
	assert.Equal(t, 6.0, limit.TotalVolume)
}

func TestLimit_Validate(t *testing.T) {
	limit := NewLimit(10_000)
	require.NoError(t, limit.AddOrder(newTestOrder("order1", false, 10_000, 10)))

	assert.NoError(t, limit.Validate())

	limit.TotalVolume = 3.0
	assert.Error(t, limit.Validate())
}

func TestOrder_Activate(t *testing.T) {
	o := NewOrder("stop1", OrderTypeStop, false, 95, 10, 100)

	assert.Equal(t, OrderTypeStop, o.Type)
	o.Activate()
	assert.Equal(t, OrderTypeLimit, o.Type)
	assert.Equal(t, 95.0, o.Price)
	assert.Equal(t, 100.0, o.StopPrice)
}
