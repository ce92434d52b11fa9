package events

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ddouble/money-exchange/internal/model"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher emits exchange-completed events. Publishing is best-effort:
// a broker problem must never fail the exchange itself.
type Publisher interface {
	PublishExchangeCompleted(ctx context.Context, event model.ExchangeCompletedEvent) error
	Close() error
}

// KafkaPublisher publishes events to a Kafka topic
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewKafkaPublisher creates a publisher against the given brokers and topic
func NewKafkaPublisher(brokers, topic string, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(strings.Split(brokers, ",")...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logger,
	}
}

// PublishExchangeCompleted emits one event keyed by session id
func (p *KafkaPublisher) PublishExchangeCompleted(ctx context.Context, event model.ExchangeCompletedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.SessionID),
		Value: payload,
	})
	if err != nil {
		p.logger.Error("Failed to publish exchange event",
			zap.String("sessionId", event.SessionID),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// Close flushes and closes the underlying writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards all events; used when Kafka is disabled
type NopPublisher struct{}

// NewNopPublisher creates a publisher that does nothing
func NewNopPublisher() *NopPublisher {
	return &NopPublisher{}
}

// PublishExchangeCompleted discards the event
func (NopPublisher) PublishExchangeCompleted(ctx context.Context, event model.ExchangeCompletedEvent) error {
	return nil
}

// Close does nothing
func (NopPublisher) Close() error {
	return nil
}
