package matchpublisherv1

import (
	"encoding/json"
	"time"

	orderbookv1 "github.com/muhammadchandra19/matching-core/internal/domain/orderbook/v1"
	"github.com/oklog/ulid/v2"
)

// MatchEventPayload is the fill record handed to downstream consumers.
type MatchEventPayload struct {
	MatchID      string    `json:"matchID"`
	TakerOrderID string    `json:"takerOrderID"`
	MakerOrderID string    `json:"makerOrderID"`
	TakerSide    string    `json:"takerSide"`
	Price        float64   `json:"price"`
	Volume       float64   `json:"volume"`
	Timestamp    time.Time `json:"timestamp"`
}

// CreateFromMatch creates a match event from a fill.
func CreateFromMatch(match *orderbookv1.Match) *MatchEventPayload {
	matchEvent := &MatchEventPayload{
		MatchID:      ulid.Make().String(),
		TakerOrderID: match.Taker.ID,
		MakerOrderID: match.Maker.ID,
		Timestamp:    time.Now().UTC(),
	}

	if match.Taker.Bid {
		matchEvent.TakerSide = "buy"
	} else {
		matchEvent.TakerSide = "sell"
	}

	matchEvent.Volume = match.SizeFilled
	matchEvent.Price = match.Price

	return matchEvent
}

// ToBytes converts the match event to a byte array.
func ToBytes(matchEvent *MatchEventPayload) []byte {
	json, err := json.Marshal(matchEvent)
	if err != nil {
		return nil
	}

	return json
}

// FromBytes converts a byte array to a match event.
func FromBytes(data []byte) *MatchEventPayload {
	var matchEvent MatchEventPayload
	err := json.Unmarshal(data, &matchEvent)
	if err != nil {
		return nil
	}
	return &matchEvent
}
