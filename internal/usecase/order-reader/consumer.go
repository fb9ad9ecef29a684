package orderreader

import (
	"context"
	"encoding/json"

	orderreaderv1 "github.com/muhammadchandra19/matching-core/internal/domain/order-reader/v1"
	"github.com/muhammadchandra19/matching-core/pkg/config"
	"github.com/muhammadchandra19/matching-core/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Reader represents a Kafka Reader for consuming order submissions.
type Reader struct {
	kafkaReader *kafka.Reader
	logger      logger.Interface
}

// NewReader creates a new Kafka reader for the order topic.
// It returns an implementation of the OrderReader interface.
func NewReader(config config.KafkaConfig, log logger.Interface) Reader {
	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     config.Brokers,
		Topic:       config.Topic,
		Partition:   0,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})

	return Reader{
		kafkaReader: kafkaReader,
		logger:      log,
	}
}

// logError is a helper method to log errors consistently
func (r Reader) logError(err error, operation string) {
	r.logger.Error(err,
		logger.Field{Key: "operation", Value: operation},
	)
}

// SetOffset sets the offset for the Kafka reader.
func (r Reader) SetOffset(offset int64) error {
	if err := r.kafkaReader.SetOffset(offset); err != nil {
		r.logError(err, "SetOffset")
		return err
	}
	return nil
}

// ReadMessage reads a message from the Kafka topic and parses it as a
// PlaceOrderPayload.
func (r Reader) ReadMessage(ctx context.Context) (kafka.Message, *orderreaderv1.PlaceOrderPayload, error) {
	msg, err := r.kafkaReader.ReadMessage(ctx)
	if err != nil {
		r.logError(err, "ReadMessage")
		return kafka.Message{Offset: 0}, nil, err
	}

	var payload orderreaderv1.PlaceOrderPayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		r.logError(err, "UnmarshalOrder")
		return kafka.Message{Offset: 0}, nil, err
	}

	r.logger.Debug("ReadMessage",
		logger.Field{Key: "orderID", Value: payload.OrderID},
		logger.Field{Key: "type", Value: payload.Type},
		logger.Field{Key: "bid", Value: payload.Bid},
		logger.Field{Key: "price", Value: payload.Price},
		logger.Field{Key: "quantity", Value: payload.Quantity},
	)

	payload.Offset = msg.Offset

	return msg, &payload, nil
}

// CommitMessages commits the messages to Kafka after processing.
func (r Reader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	if err := r.kafkaReader.CommitMessages(ctx, msgs...); err != nil {
		r.logError(err, "CommitMessages")
		return err
	}
	return nil
}

// Close properly closes the Kafka reader.
func (r Reader) Close() error {
	if err := r.kafkaReader.Close(); err != nil {
		r.logError(err, "Close")
		return err
	}
	return nil
}
