package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer the producer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes messages to any topic. Keys select the partition via hashing;
// unkeyed messages are spread round-robin.
type Producer struct {
	writer       MessageWriter
	writeTimeout time.Duration
	logger       zerolog.Logger
}

// NewProducer creates a synchronous producer that waits for all in-sync replicas.
func NewProducer(brokers []string, logger zerolog.Logger) *Producer {
	log := logger.With().Str("component", "kafka_producer").Logger()
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		WriteTimeout:           10 * time.Second,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            3,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
		ErrorLogger:            kafka.LoggerFunc(func(msg string, args ...any) { log.Error().Msgf(msg, args...) }),
	}
	return NewProducerWithWriter(writer, logger)
}

// NewProducerWithWriter wraps an existing writer.
func NewProducerWithWriter(writer MessageWriter, logger zerolog.Logger) *Producer {
	return &Producer{
		writer:       writer,
		writeTimeout: 10 * time.Second,
		logger:       logger.With().Str("component", "kafka_producer").Logger(),
	}
}

// Produce writes one message and waits for the acknowledgement.
func (p *Producer) Produce(ctx context.Context, topic string, key, value []byte, headers ...kafka.Header) error {
	msg := kafka.Message{
		Topic:   topic,
		Key:     key,
		Value:   value,
		Headers: headers,
	}

	produceCtx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(produceCtx, msg); err != nil {
		return fmt.Errorf("failed to produce message to %s: %w", topic, err)
	}

	p.logger.Debug().Str("topic", topic).Str("key", string(key)).Msg("message produced")
	return nil
}

// Close flushes and closes the writer.
func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	p.logger.Info().Msg("kafka producer closed")
	return nil
}
