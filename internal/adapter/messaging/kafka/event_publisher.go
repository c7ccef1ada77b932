package kafka

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/iho/paysaga/internal/domain"
)

// DomainEventPublisher publishes domain events to the outbound topic.
// Events are keyed by correlation id so one payment's events share a partition.
// The event-key header repeats DedupKey for consumers that drop republished events.
type DomainEventPublisher struct {
	producer Producer
	topic    string
}

func NewDomainEventPublisher(producer Producer, topic string) *DomainEventPublisher {
	return &DomainEventPublisher{producer: producer, topic: topic}
}

func (p *DomainEventPublisher) Publish(ctx context.Context, event *domain.DomainEvent) error {
	body, err := event.Marshal()
	if err != nil {
		return fmt.Errorf("marshal domain event: %w", err)
	}

	headers := []kafka.Header{{Key: HeaderEventType, Value: []byte(event.Type)}}
	if key := event.DedupKey(); key != "" {
		headers = append(headers, kafka.Header{Key: HeaderEventKey, Value: []byte(key)})
	}
	return p.producer.Produce(ctx, p.topic, event.Key(), body, headers...)
}
