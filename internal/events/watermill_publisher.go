package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// WatermillPublisher publishes events as JSON messages on topic "{prefix}.{type}"
type WatermillPublisher struct {
	publisher   message.Publisher
	topicPrefix string
	logger      *slog.Logger
	observer    PublishObserver
}

type PublisherConfig struct {
	Brokers     []string
	TopicPrefix string
	Observer    PublishObserver
}

// NewWatermillPublisher publishes to Kafka when brokers are configured, otherwise to an in-process channel
func NewWatermillPublisher(cfg PublisherConfig, logger *slog.Logger) (*WatermillPublisher, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	var publisher message.Publisher
	if len(cfg.Brokers) > 0 {
		kafkaPublisher, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:   cfg.Brokers,
			Marshaler: kafka.DefaultMarshaler{},
		}, wmLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		publisher = kafkaPublisher
		logger.Info("Event publisher using kafka", "brokers", cfg.Brokers)
	} else {
		publisher = gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		logger.Info("Event publisher using in-process channel")
	}

	return newWatermillPublisher(publisher, cfg, logger), nil
}

func newWatermillPublisher(publisher message.Publisher, cfg PublisherConfig, logger *slog.Logger) *WatermillPublisher {
	return &WatermillPublisher{
		publisher:   publisher,
		topicPrefix: cfg.TopicPrefix,
		logger:      logger,
		observer:    cfg.Observer,
	}
}

// Topic returns the topic an event type is published on
func (p *WatermillPublisher) Topic(eventType EventType) string {
	if p.topicPrefix == "" {
		return string(eventType)
	}
	return p.topicPrefix + "." + string(eventType)
}

func (p *WatermillPublisher) Publish(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("source", event.Source)
	msg.SetContext(ctx)

	err = p.publisher.Publish(p.Topic(event.Type), msg)
	if p.observer != nil {
		p.observer.ObservePublish(string(event.Type), err)
	}
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}

	p.logger.Debug("Event published", "event_id", event.ID, "event_type", event.Type)
	return nil
}

func (p *WatermillPublisher) Close() error {
	return p.publisher.Close()
}
