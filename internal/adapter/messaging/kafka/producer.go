package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// Producer writes a message to a topic.
type Producer interface {
	Produce(ctx context.Context, topic string, key, value []byte, headers ...kafka.Header) error
}

// Header names set on produced messages.
const (
	HeaderEventType       = "event-type"
	HeaderEventKey        = "event-key"
	HeaderCallbackType    = "callback-type"
	HeaderDLQReason       = "x-dlq-reason"
	HeaderDLQError        = "x-dlq-error"
	HeaderSourceTopic     = "x-source-topic"
	HeaderSourceOffset    = "x-source-offset"
	HeaderSourcePartition = "x-source-partition"
)
