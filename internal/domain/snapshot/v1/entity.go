package snapshotv1

// BookOrder represents a single order captured in a snapshot. Type and
// StopPrice are carried so inactive stop orders survive a restore.
type BookOrder struct {
	OrderID   string  `json:"orderID"`
	Type      string  `json:"type"`
	Bid       bool    `json:"bid"`
	Price     float64 `json:"price"`
	Quantity  float64 `json:"quantity"`
	StopPrice float64 `json:"stopPrice,omitempty"`
	Timestamp int64   `json:"timestamp"`
}

// OrderBookSnapshot represents the full book state: resting limit orders
// in queue order plus parked stop orders in activation order.
type OrderBookSnapshot struct {
	Orders     []BookOrder `json:"orders"`
	StopOrders []BookOrder `json:"stopOrders"`
}

// Snapshot is the stored unit: the book state, the processed-order count
// at capture time, and the offset of the last order-feed message folded
// into the book. OrderOffset lets a restarted engine resume the feed
// right after the last message the snapshot covers; -1 means no feed
// message has been consumed.
type Snapshot struct {
	OrdersProcessed   uint64            `json:"ordersProcessed"`
	OrderOffset       int64             `json:"orderOffset"`
	OrderBookSnapshot OrderBookSnapshot `json:"orderBookSnapshot"`
}
