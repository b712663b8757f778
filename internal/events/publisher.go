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

// ActivityPublisher defines the interface for publishing activity events
type ActivityPublisher interface {
	PublishActivity(ctx context.Context, event *ActivityEvent) error
	Close() error
}

// KafkaActivityPublisher implements ActivityPublisher using Watermill with Kafka
type KafkaActivityPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
	topicName string
}

// PublisherConfig holds configuration for the activity publisher
type PublisherConfig struct {
	KafkaBrokers []string
	TopicName    string
	Logger       *slog.Logger
}

// NewKafkaActivityPublisher creates a new Kafka-based activity publisher using Watermill
func NewKafkaActivityPublisher(config PublisherConfig) (*KafkaActivityPublisher, error) {
	logger := watermill.NewSlogLogger(config.Logger)

	publisherConfig := kafka.PublisherConfig{
		Brokers:   config.KafkaBrokers,
		Marshaler: kafka.DefaultMarshaler{},
	}

	publisher, err := kafka.NewPublisher(publisherConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}

	return &KafkaActivityPublisher{
		publisher: publisher,
		logger:    config.Logger,
		topicName: config.TopicName,
	}, nil
}

// PublishActivity publishes an activity event to Kafka
func (p *KafkaActivityPublisher) PublishActivity(ctx context.Context, event *ActivityEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal activity event: %w", err)
	}

	msg := message.NewMessage(event.ID, eventBytes)
	msg.Metadata.Set("action", string(event.Action))
	msg.Metadata.Set("resource_type", event.ResourceType)
	msg.Metadata.Set("source", event.Source)
	msg.Metadata.Set("timestamp", event.Timestamp.Format("2006-01-02T15:04:05Z07:00"))

	if err := p.publisher.Publish(p.topicName, msg); err != nil {
		p.logger.Error("Failed to publish activity event",
			"event_id", event.ID,
			"action", event.Action,
			"error", err)
		return fmt.Errorf("failed to publish activity event: %w", err)
	}

	p.logger.Info("Published activity event",
		"event_id", event.ID,
		"action", event.Action,
		"topic", p.topicName)

	return nil
}

// Close closes the publisher and releases resources
func (p *KafkaActivityPublisher) Close() error {
	return p.publisher.Close()
}

// MockActivityPublisher is a mock implementation for testing
type MockActivityPublisher struct {
	Events []ActivityEvent
	Logger *slog.Logger
}

// NewMockActivityPublisher creates a new mock activity publisher
func NewMockActivityPublisher(logger *slog.Logger) *MockActivityPublisher {
	return &MockActivityPublisher{
		Events: make([]ActivityEvent, 0),
		Logger: logger,
	}
}

// PublishActivity stores the event in memory (for testing)
func (m *MockActivityPublisher) PublishActivity(ctx context.Context, event *ActivityEvent) error {
	m.Events = append(m.Events, *event)
	m.Logger.Info("Mock: Published activity event",
		"event_id", event.ID,
		"action", event.Action)
	return nil
}

// Close is a no-op for the mock publisher
func (m *MockActivityPublisher) Close() error {
	return nil
}

// GetPublishedEvents returns all published events (for testing)
func (m *MockActivityPublisher) GetPublishedEvents() []ActivityEvent {
	return m.Events
}

// ClearEvents clears all published events (for testing)
func (m *MockActivityPublisher) ClearEvents() {
	m.Events = make([]ActivityEvent, 0)
}
