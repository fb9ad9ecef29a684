package orderbookv1

import snapshotv1 "github.com/muhammadchandra19/matching-core/internal/domain/snapshot/v1"

// Orderbook defines the interface for the order book of a single pair.
//
// Mutating operations report success as a boolean: the book surfaces
// booleans, never errors, across this boundary. Internal state
// inconsistencies (id index disagreeing with level membership) panic.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=orderbookv1_mock
type Orderbook interface {
	// AddOrder rests a limit order on its side, or parks a stop order in
	// the stop table. Market orders and non-positive quantities are
	// rejected.
	AddOrder(o *Order) bool
	// CancelOrder removes the order with the given id from the book.
	CancelOrder(orderID string) bool
	// ModifyOrder sets the remaining quantity of a resting order without
	// losing its queue position. A non-positive quantity cancels.
	ModifyOrder(orderID string, quantity float64) bool

	// BestBid returns the highest resting buy price, or 0 if no bids.
	BestBid() float64
	// BestAsk returns the lowest resting sell price, or 0 if no asks.
	BestAsk() float64

	// MatchMarketOrder matches the taker against the opposite side under
	// price-time priority. Limit takers stop at their limit price; market
	// takers walk until filled or the side is exhausted.
	MatchMarketOrder(taker *Order) []Match
	// CheckStopOrders activates every stop order triggered by the given
	// last trade price, re-inserting each as a resting limit order.
	CheckStopOrders(lastTradePrice float64)

	Asks() []*Limit
	Bids() []*Limit
	AskTotalVolume() float64
	BidTotalVolume() float64

	CreateSnapshot() *snapshotv1.Snapshot
	RestoreOrderbook(snapshot *snapshotv1.Snapshot) error
}
