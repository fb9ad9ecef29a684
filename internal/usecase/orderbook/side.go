package orderbook

import (
	"sort"

	orderbookv1 "github.com/muhammadchandra19/matching-core/internal/domain/orderbook/v1"
)

// side is one half of the book: price levels keyed by price, plus the
// prices kept sorted best-first (descending for bids, ascending for
// asks). Lookup is a binary search; the best level is the front.
type side struct {
	levels map[float64]*orderbookv1.Limit
	prices []float64
	bids   bool
}

func newSide(bids bool) *side {
	return &side{
		levels: make(map[float64]*orderbookv1.Limit),
		bids:   bids,
	}
}

// searchIdx returns the slice position of price, or the position it
// would be inserted at to keep the best-first ordering.
func (s *side) searchIdx(price float64) int {
	if s.bids {
		return sort.Search(len(s.prices), func(i int) bool {
			return s.prices[i] <= price
		})
	}
	return sort.Search(len(s.prices), func(i int) bool {
		return s.prices[i] >= price
	})
}

func (s *side) get(price float64) *orderbookv1.Limit {
	return s.levels[price]
}

func (s *side) getOrCreate(price float64) *orderbookv1.Limit {
	if limit, ok := s.levels[price]; ok {
		return limit
	}

	limit := orderbookv1.NewLimit(price)
	s.levels[price] = limit

	idx := s.searchIdx(price)
	s.prices = append(s.prices, 0)
	copy(s.prices[idx+1:], s.prices[idx:])
	s.prices[idx] = price

	return limit
}

// best returns the front level, or nil if the side is empty.
func (s *side) best() *orderbookv1.Limit {
	if len(s.prices) == 0 {
		return nil
	}
	return s.levels[s.prices[0]]
}

func (s *side) removeLevel(price float64) {
	if _, ok := s.levels[price]; !ok {
		return
	}
	delete(s.levels, price)

	idx := s.searchIdx(price)
	if idx < len(s.prices) && s.prices[idx] == price {
		s.prices = append(s.prices[:idx], s.prices[idx+1:]...)
	}
}

func (s *side) isEmpty() bool {
	return len(s.prices) == 0
}

// sorted returns the levels best-first.
func (s *side) sorted() []*orderbookv1.Limit {
	limits := make([]*orderbookv1.Limit, 0, len(s.prices))
	for _, price := range s.prices {
		limits = append(limits, s.levels[price])
	}
	return limits
}
