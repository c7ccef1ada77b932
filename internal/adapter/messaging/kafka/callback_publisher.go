package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/iho/paysaga/internal/domain"
)

// CallbackPublisher enqueues canonical events on the inbound callback topic.
type CallbackPublisher struct {
	producer Producer
	topic    string
}

func NewCallbackPublisher(producer Producer, topic string) *CallbackPublisher {
	return &CallbackPublisher{producer: producer, topic: topic}
}

func (p *CallbackPublisher) PublishCallback(ctx context.Context, event *domain.CanonicalEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal canonical event: %w", err)
	}

	var key []byte
	if event.CorrelationID != "" {
		key = []byte(event.CorrelationID)
	}

	return p.producer.Produce(ctx, p.topic, key, body,
		kafka.Header{Key: HeaderCallbackType, Value: []byte(event.Type)})
}
