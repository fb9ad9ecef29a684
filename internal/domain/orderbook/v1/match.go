package orderbookv1

// Match represents a fill between an incoming taker and a resting maker.
// Price is the maker's level price; SizeFilled is the quantity exchanged
// at this step. Both are recorded at match time because the maker's
// remaining quantity has already been decremented by then.
type Match struct {
	Taker      *Order  `json:"taker"`
	Maker      *Order  `json:"maker"`
	Price      float64 `json:"price"`
	SizeFilled float64 `json:"sizeFilled"`
}

// MakerIsFilled checks if the resting order was fully consumed.
func (m *Match) MakerIsFilled() bool {
	return m.Maker.IsFilled()
}

// TakerIsFilled checks if the incoming order was fully consumed.
func (m *Match) TakerIsFilled() bool {
	return m.Taker.IsFilled()
}
