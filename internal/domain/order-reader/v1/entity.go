package orderreaderv1

// Payload type tags accepted on the order feed. The first three map onto
// book order types; cancel routes to the synchronous cancel path.
const (
	PayloadTypeLimit  = "limit"
	PayloadTypeMarket = "market"
	PayloadTypeStop   = "stop"
	PayloadTypeCancel = "cancel"
)

// PlaceOrderPayload represents an order submission read from the feed.
type PlaceOrderPayload struct {
	OrderID   string  `json:"orderID"`
	Type      string  `json:"type"`
	Bid       bool    `json:"bid"`
	Price     float64 `json:"price"`
	Quantity  float64 `json:"quantity"`
	StopPrice float64 `json:"stopPrice,omitempty"`
	Offset    int64   `json:"-"` // Offset of the message in the stream
}
