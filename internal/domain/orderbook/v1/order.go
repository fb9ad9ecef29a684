package orderbookv1

import (
	"time"
)

// OrderType represents the type of order.
type OrderType string

const (
	// OrderTypeLimit represents a limit order.
	OrderTypeLimit OrderType = "limit"
	// OrderTypeMarket represents a market order.
	OrderTypeMarket OrderType = "market"
	// OrderTypeStop represents a stop order. It rests in the stop table
	// until a trade crosses its stop price, then becomes a limit order.
	OrderTypeStop OrderType = "stop"
)

// Order represents a single order in the order book.
//
// Identity fields (ID, Bid, Price, StopPrice, Timestamp) are fixed at
// construction; Quantity is the remaining quantity and is the only field
// mutated while the order rests in the book. Type changes once, from stop
// to limit, when a triggered stop order is activated.
type Order struct {
	ID        string    `json:"id"`
	Type      OrderType `json:"type"`
	Bid       bool      `json:"bid"`
	Price     float64   `json:"price"`
	Quantity  float64   `json:"quantity"`
	StopPrice float64   `json:"stopPrice,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

// NewOrder creates a new order with the given parameters.
// The timestamp is captured at construction and is the time-priority key.
func NewOrder(id string, orderType OrderType, bid bool, price, quantity, stopPrice float64) *Order {
	return &Order{
		ID:        id,
		Type:      orderType,
		Bid:       bid,
		Price:     price,
		Quantity:  quantity,
		StopPrice: stopPrice,
		Timestamp: time.Now().UnixNano(),
	}
}

// SetQuantity updates the remaining quantity. Callers only ever decrease
// it; an order must be removed from its container before reaching zero.
func (o *Order) SetQuantity(quantity float64) {
	o.Quantity = quantity
}

// Activate converts a triggered stop order into a limit order at its
// stated limit price. It bypasses the stop branch on re-insertion.
func (o *Order) Activate() {
	o.Type = OrderTypeLimit
}

// IsBid checks if the order is a bid (buy) order.
func (o *Order) IsBid() bool {
	return o.Bid
}

// IsAsk checks if the order is an ask (sell) order.
func (o *Order) IsAsk() bool {
	return !o.Bid
}

// IsFilled checks if the order is filled (quantity is zero).
func (o *Order) IsFilled() bool {
	return o.Quantity <= 0.0
}
