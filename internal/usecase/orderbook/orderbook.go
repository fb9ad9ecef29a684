package orderbook

import (
	"fmt"
	"sort"
	"sync"

	orderbookv1 "github.com/muhammadchandra19/matching-core/internal/domain/orderbook/v1"
	snapshotv1 "github.com/muhammadchandra19/matching-core/internal/domain/snapshot/v1"
)

// stopEntry parks an inactive stop order. seq is the arrival sequence,
// breaking ties between equal stop prices so activation order is
// deterministic.
type stopEntry struct {
	order *orderbookv1.Order
	seq   uint64
}

// Orderbook is the two-sided book for a single pair: price-ordered bid
// and ask sides, an id index over every live order, and the stop table.
// One RWMutex covers all four containers as a unit; writers take the
// exclusive side, best-price readers the shared side.
type Orderbook struct {
	mu      sync.RWMutex
	bids    *side
	asks    *side
	orders  map[string]*orderbookv1.Order
	stops   []stopEntry
	stopSeq uint64
}

// NewOrderbook creates an empty orderbook.
func NewOrderbook() *Orderbook {
	return &Orderbook{
		bids:   newSide(true),
		asks:   newSide(false),
		orders: make(map[string]*orderbookv1.Order),
	}
}

// AddOrder rests a limit order on its side or parks a stop order in the
// stop table. Market orders never rest and are rejected, as are
// non-positive quantities and duplicate ids.
func (ob *Orderbook) AddOrder(o *orderbookv1.Order) bool {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	return ob.addLocked(o)
}

func (ob *Orderbook) addLocked(o *orderbookv1.Order) bool {
	if o == nil || o.Quantity <= 0 {
		return false
	}
	if _, exists := ob.orders[o.ID]; exists {
		return false
	}

	switch o.Type {
	case orderbookv1.OrderTypeStop:
		ob.insertStopLocked(o)
		ob.orders[o.ID] = o
		return true

	case orderbookv1.OrderTypeLimit:
		if o.Price <= 0 {
			return false
		}

		s := ob.sideOf(o)
		if err := s.getOrCreate(o.Price).AddOrder(o); err != nil {
			return false
		}
		ob.orders[o.ID] = o
		return true

	default:
		// Market orders do not rest.
		return false
	}
}

func (ob *Orderbook) sideOf(o *orderbookv1.Order) *side {
	if o.IsBid() {
		return ob.bids
	}
	return ob.asks
}

func (ob *Orderbook) insertStopLocked(o *orderbookv1.Order) {
	ob.stopSeq++
	entry := stopEntry{order: o, seq: ob.stopSeq}

	idx := sort.Search(len(ob.stops), func(i int) bool {
		if ob.stops[i].order.StopPrice == o.StopPrice {
			return ob.stops[i].seq > entry.seq
		}
		return ob.stops[i].order.StopPrice > o.StopPrice
	})

	ob.stops = append(ob.stops, stopEntry{})
	copy(ob.stops[idx+1:], ob.stops[idx:])
	ob.stops[idx] = entry
}

// CancelOrder removes the order with the given id from the book. Returns
// false if the id is unknown.
func (ob *Orderbook) CancelOrder(orderID string) bool {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	return ob.cancelLocked(orderID)
}

func (ob *Orderbook) cancelLocked(orderID string) bool {
	o, exists := ob.orders[orderID]
	if !exists {
		return false
	}

	if o.Type == orderbookv1.OrderTypeStop {
		if !ob.removeStopLocked(orderID, o.StopPrice) {
			// Stop-range miss: do not fall through to the bid/ask sides.
			return false
		}
		delete(ob.orders, orderID)
		return true
	}

	s := ob.sideOf(o)
	limit := s.get(o.Price)
	if limit == nil {
		panic(fmt.Sprintf("orderbook: id index has %s at price %f but the level is gone", orderID, o.Price))
	}
	if err := limit.RemoveOrder(orderID); err != nil {
		panic(fmt.Sprintf("orderbook: id index has %s but level %f does not: %v", orderID, o.Price, err))
	}
	if limit.IsEmpty() {
		s.removeLevel(o.Price)
	}

	delete(ob.orders, orderID)
	return true
}

// removeStopLocked erases the stop entry with the given id, scanning only
// the equal-stop-price range.
func (ob *Orderbook) removeStopLocked(orderID string, stopPrice float64) bool {
	idx := sort.Search(len(ob.stops), func(i int) bool {
		return ob.stops[i].order.StopPrice >= stopPrice
	})

	for ; idx < len(ob.stops) && ob.stops[idx].order.StopPrice == stopPrice; idx++ {
		if ob.stops[idx].order.ID == orderID {
			ob.stops = append(ob.stops[:idx], ob.stops[idx+1:]...)
			return true
		}
	}

	return false
}

// ModifyOrder sets the remaining quantity of a resting order. Queue
// position is preserved; a non-positive quantity cancels instead.
func (ob *Orderbook) ModifyOrder(orderID string, quantity float64) bool {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	o, exists := ob.orders[orderID]
	if !exists {
		return false
	}

	if quantity <= 0 {
		return ob.cancelLocked(orderID)
	}

	if o.Type != orderbookv1.OrderTypeStop {
		limit := ob.sideOf(o).get(o.Price)
		if limit == nil {
			panic(fmt.Sprintf("orderbook: id index has %s at price %f but the level is gone", orderID, o.Price))
		}
		limit.TotalVolume += quantity - o.Quantity
	}

	o.SetQuantity(quantity)
	return true
}

// BestBid returns the highest resting buy price, or 0 if no bids.
func (ob *Orderbook) BestBid() float64 {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	if limit := ob.bids.best(); limit != nil {
		return limit.Price
	}
	return 0.0
}

// BestAsk returns the lowest resting sell price, or 0 if no asks.
func (ob *Orderbook) BestAsk() float64 {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	if limit := ob.asks.best(); limit != nil {
		return limit.Price
	}
	return 0.0
}

// MatchMarketOrder matches the taker against the opposite side under
// price-time priority and returns the fills in execution order. Limit
// takers stop once the best opposing price is worse than their limit;
// market takers walk until filled or the side is exhausted. The whole
// pass runs under the exclusive book lock, so the book is never observed
// crossed from outside.
func (ob *Orderbook) MatchMarketOrder(taker *orderbookv1.Order) []orderbookv1.Match {
	if taker == nil || taker.Quantity <= 0 {
		return nil
	}

	ob.mu.Lock()
	defer ob.mu.Unlock()

	opp := ob.asks
	if taker.IsAsk() {
		opp = ob.bids
	}

	var matches []orderbookv1.Match

	for taker.Quantity > 0 {
		limit := opp.best()
		if limit == nil {
			break
		}

		if taker.Type == orderbookv1.OrderTypeLimit {
			if taker.IsBid() && limit.Price > taker.Price {
				break
			}
			if taker.IsAsk() && limit.Price < taker.Price {
				break
			}
		}

		filled := limit.Fill(taker)
		for i := range filled {
			if filled[i].MakerIsFilled() {
				delete(ob.orders, filled[i].Maker.ID)
			}
		}
		matches = append(matches, filled...)

		if limit.IsEmpty() {
			opp.removeLevel(limit.Price)
		}
	}

	return matches
}

// CheckStopOrders activates every stop order triggered by the last trade
// price: buys trigger at lastTradePrice >= stop, sells at <= stop.
// Triggered orders leave the stop table and rest as limit orders at
// their stated limit price; they do not match until their own
// processing cycle. Activation order is (stop price, arrival).
func (ob *Orderbook) CheckStopOrders(lastTradePrice float64) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	var triggered []*orderbookv1.Order
	remaining := ob.stops[:0]

	for _, entry := range ob.stops {
		o := entry.order
		if (o.IsBid() && lastTradePrice >= o.StopPrice) ||
			(o.IsAsk() && lastTradePrice <= o.StopPrice) {
			triggered = append(triggered, o)
		} else {
			remaining = append(remaining, entry)
		}
	}
	ob.stops = remaining

	for _, o := range triggered {
		o.Activate()
		if err := ob.sideOf(o).getOrCreate(o.Price).AddOrder(o); err != nil {
			panic(fmt.Sprintf("orderbook: activated stop %s rejected by level %f: %v", o.ID, o.Price, err))
		}
	}
}

// Asks returns ask limits sorted by price (ascending).
func (ob *Orderbook) Asks() []*orderbookv1.Limit {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	return ob.asks.sorted()
}

// Bids returns bid limits sorted by price (descending).
func (ob *Orderbook) Bids() []*orderbookv1.Limit {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	return ob.bids.sorted()
}

// AskTotalVolume returns total resting ask volume.
func (ob *Orderbook) AskTotalVolume() float64 {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	total := 0.0
	for _, limit := range ob.asks.levels {
		total += limit.TotalVolume
	}
	return total
}

// BidTotalVolume returns total resting bid volume.
func (ob *Orderbook) BidTotalVolume() float64 {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	total := 0.0
	for _, limit := range ob.bids.levels {
		total += limit.TotalVolume
	}
	return total
}

// OrderCount returns the number of live orders across both sides and the
// stop table.
func (ob *Orderbook) OrderCount() int {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	return len(ob.orders)
}

// GetOrder returns the live order with the given id, or nil.
func (ob *Orderbook) GetOrder(orderID string) *orderbookv1.Order {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	return ob.orders[orderID]
}

// CreateSnapshot captures the current book state: resting limit orders
// in price-then-queue order plus stop orders in activation order.
func (ob *Orderbook) CreateSnapshot() *snapshotv1.Snapshot {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	var bookOrders []snapshotv1.BookOrder

	capture := func(limits []*orderbookv1.Limit) {
		for _, limit := range limits {
			for _, o := range limit.Orders {
				bookOrders = append(bookOrders, snapshotv1.BookOrder{
					OrderID:   o.ID,
					Type:      string(o.Type),
					Bid:       o.Bid,
					Price:     o.Price,
					Quantity:  o.Quantity,
					Timestamp: o.Timestamp,
				})
			}
		}
	}
	capture(ob.asks.sorted())
	capture(ob.bids.sorted())

	var stopOrders []snapshotv1.BookOrder
	for _, entry := range ob.stops {
		o := entry.order
		stopOrders = append(stopOrders, snapshotv1.BookOrder{
			OrderID:   o.ID,
			Type:      string(o.Type),
			Bid:       o.Bid,
			Price:     o.Price,
			Quantity:  o.Quantity,
			StopPrice: o.StopPrice,
			Timestamp: o.Timestamp,
		})
	}

	return &snapshotv1.Snapshot{
		OrderBookSnapshot: snapshotv1.OrderBookSnapshot{
			Orders:     bookOrders,
			StopOrders: stopOrders,
		},
	}
}

// RestoreOrderbook replaces the book state with the given snapshot.
func (ob *Orderbook) RestoreOrderbook(snapshot *snapshotv1.Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}

	ob.mu.Lock()
	defer ob.mu.Unlock()

	ob.bids = newSide(true)
	ob.asks = newSide(false)
	ob.orders = make(map[string]*orderbookv1.Order)
	ob.stops = nil
	ob.stopSeq = 0

	restore := func(bookOrder snapshotv1.BookOrder) error {
		o := &orderbookv1.Order{
			ID:        bookOrder.OrderID,
			Type:      orderbookv1.OrderType(bookOrder.Type),
			Bid:       bookOrder.Bid,
			Price:     bookOrder.Price,
			Quantity:  bookOrder.Quantity,
			StopPrice: bookOrder.StopPrice,
			Timestamp: bookOrder.Timestamp,
		}
		if !ob.addLocked(o) {
			return fmt.Errorf("failed to restore order %s", bookOrder.OrderID)
		}
		return nil
	}

	for _, bookOrder := range snapshot.OrderBookSnapshot.Orders {
		if err := restore(bookOrder); err != nil {
			return err
		}
	}
	for _, bookOrder := range snapshot.OrderBookSnapshot.StopOrders {
		if err := restore(bookOrder); err != nil {
			return err
		}
	}

	return nil
}
