package matchpublisherv1

import (
	"context"
)

// MatchPublisher defines the interface for publishing match events. It is
// the fills consumer surface: registered at engine construction, invoked
// after every matching pass that produced fills.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=matchpublisherv1_mock
type MatchPublisher interface {
	// PublishMatchEvent publishes a single match event.
	PublishMatchEvent(ctx context.Context, matchEvent *MatchEventPayload) error
}
