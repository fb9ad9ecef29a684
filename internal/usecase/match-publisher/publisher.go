package matchpublisher

import (
	"context"

	matchpublisherv1 "github.com/muhammadchandra19/matching-core/internal/domain/match-publisher/v1"
	"github.com/muhammadchandra19/matching-core/pkg/config"
	"github.com/muhammadchandra19/matching-core/pkg/errors"
	"github.com/muhammadchandra19/matching-core/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Publisher represents a Kafka Publisher for publishing match events.
type Publisher struct {
	kafkaWriter *kafka.Writer
	logger      logger.Interface
}

// NewPublisher creates a new Kafka publisher for publishing match events.
func NewPublisher(config config.MatchPublisherConfig, logger logger.Interface) *Publisher {
	kafkaWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers: config.Brokers,
		Topic:   config.Topic,
	})

	return &Publisher{
		kafkaWriter: kafkaWriter,
		logger:      logger,
	}
}

// PublishMatchEvent publishes a match event to the Kafka topic.
func (p *Publisher) PublishMatchEvent(ctx context.Context, matchEvent *matchpublisherv1.MatchEventPayload) error {
	msg := kafka.Message{
		Key:   []byte(matchEvent.MatchID),
		Value: matchpublisherv1.ToBytes(matchEvent),
	}

	if err := p.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.Error(err,
			logger.Field{Key: "matchID", Value: matchEvent.MatchID},
		)
		return errors.NewTracer("failed to publish match event").Wrap(err)
	}
	return nil
}

// Close closes the underlying Kafka writer.
func (p *Publisher) Close() error {
	return p.kafkaWriter.Close()
}
