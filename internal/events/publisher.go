// Package events publishes game events through watermill.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"

	"wordmatch-service/internal/app"
)

// DefaultTopic carries one message per answer check.
const DefaultTopic = "matching.checked"

// PublisherConfig holds configuration for the event publisher.
type PublisherConfig struct {
	// KafkaBrokers selects Kafka; empty means an in-process channel.
	KafkaBrokers []string
	TopicName    string
	Logger       *zap.Logger
}

// Publisher implements app.CheckPublisher on a watermill publisher.
type Publisher struct {
	publisher message.Publisher
	logger    *zap.Logger
	topicName string
	newID     func() string
}

// NewPublisher creates a Kafka publisher when brokers are configured and an
// in-process gochannel pub/sub otherwise. The returned subscriber is non-nil
// only for gochannel and lets in-process consumers read events.
func NewPublisher(cfg PublisherConfig) (*Publisher, message.Subscriber, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	topic := cfg.TopicName
	if topic == "" {
		topic = DefaultTopic
	}
	adapter := NewZapAdapter(logger)

	if len(cfg.KafkaBrokers) > 0 {
		pub, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:   cfg.KafkaBrokers,
			Marshaler: kafka.DefaultMarshaler{},
		}, adapter)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
		}
		return newPublisher(pub, topic, logger), nil, nil
	}

	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, adapter)
	return newPublisher(pubsub, topic, logger), pubsub, nil
}

func newPublisher(pub message.Publisher, topic string, logger *zap.Logger) *Publisher {
	return &Publisher{
		publisher: pub,
		logger:    logger,
		topicName: topic,
		newID:     watermill.NewUUID,
	}
}

// PublishCheck publishes a check result.
func (p *Publisher) PublishCheck(ctx context.Context, event app.CheckEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal check event: %w", err)
	}

	msg := message.NewMessage(p.newID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", "matching.checked")
	msg.Metadata.Set("game_id", event.GameID)
	msg.Metadata.Set("set_id", event.SetID)
	msg.Metadata.Set("timestamp", event.CheckedAt.Format(time.RFC3339))

	if err := p.publisher.Publish(p.topicName, msg); err != nil {
		p.logger.Error("failed to publish check event",
			zap.String("game", event.GameID),
			zap.Error(err))
		return fmt.Errorf("failed to publish check event: %w", err)
	}

	p.logger.Debug("published check event",
		zap.String("game", event.GameID),
		zap.String("topic", p.topicName))
	return nil
}

// Close closes the publisher and releases resources.
func (p *Publisher) Close() error {
	return p.publisher.Close()
}

// DecodeCheck parses a message published by PublishCheck.
func DecodeCheck(msg *message.Message) (app.CheckEvent, error) {
	var event app.CheckEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return app.CheckEvent{}, fmt.Errorf("decode check event %s: %w", msg.UUID, err)
	}
	return event, nil
}
