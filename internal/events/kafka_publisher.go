package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// KafkaEventPublisher publishes events to Kafka via watermill.
type KafkaEventPublisher struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
}

// NewKafkaEventPublisher connects to the given brokers and publishes all
// events to a single topic. Consumers route on the event type field.
func NewKafkaEventPublisher(brokers []string, topic string, logger *slog.Logger) (*KafkaEventPublisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return &KafkaEventPublisher{
		publisher: publisher,
		topic:     topic,
		logger:    logger,
	}, nil
}

// Publish serializes the event and sends it to the configured topic.
func (p *KafkaEventPublisher) Publish(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", event.Type)
	msg.Metadata.Set("source", event.Source)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		p.logger.ErrorContext(ctx, "Failed to publish event",
			"error", err,
			"event_type", event.Type,
			"event_id", event.ID)
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}

	p.logger.DebugContext(ctx, "Event published",
		"event_type", event.Type,
		"event_id", event.ID,
		"topic", p.topic)

	return nil
}

// Close shuts down the underlying publisher.
func (p *KafkaEventPublisher) Close() error {
	return p.publisher.Close()
}
