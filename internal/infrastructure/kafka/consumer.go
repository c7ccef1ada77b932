package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"

	"github.com/iho/paysaga/internal/infrastructure/metrics"
)

// MessageHandler processes one message. A nil error commits the offset.
type MessageHandler func(ctx context.Context, msg kafka.Message) error

// MessageReader is the subset of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerConfig configures a consumer group.
type ConsumerConfig struct {
	Brokers        []string
	GroupID        string
	Topic          string
	Workers        int
	MessageTimeout time.Duration
}

// Consumer runs one reader per worker in a single consumer group.
// Each reader handles its messages sequentially, so per-partition order holds.
type Consumer struct {
	readers        []MessageReader
	topic          string
	messageTimeout time.Duration
	retryInterval  time.Duration
	logger         zerolog.Logger
	metrics        *metrics.Metrics
}

// NewConsumer creates cfg.Workers group readers for cfg.Topic.
func NewConsumer(cfg ConsumerConfig, logger zerolog.Logger, m *metrics.Metrics) *Consumer {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	log := logger.With().Str("component", "kafka_consumer").Str("topic", cfg.Topic).Logger()
	readers := make([]MessageReader, 0, workers)
	for i := 0; i < workers; i++ {
		readers = append(readers, kafka.NewReader(kafka.ReaderConfig{
			Brokers:                cfg.Brokers,
			GroupID:                cfg.GroupID,
			Topic:                  cfg.Topic,
			MinBytes:               1,
			MaxBytes:               10e6,
			MaxWait:                time.Second,
			HeartbeatInterval:      3 * time.Second,
			PartitionWatchInterval: 5 * time.Second,
			StartOffset:            kafka.FirstOffset,
			Logger:                 kafka.LoggerFunc(func(msg string, args ...any) { log.Debug().Msgf(msg, args...) }),
			ErrorLogger:            kafka.LoggerFunc(func(msg string, args ...any) { log.Error().Msgf(msg, args...) }),
		}))
	}

	return NewConsumerWithReaders(readers, cfg.Topic, cfg.MessageTimeout, logger, m)
}

// NewConsumerWithReaders builds a consumer over existing readers.
func NewConsumerWithReaders(readers []MessageReader, topic string, messageTimeout time.Duration, logger zerolog.Logger, m *metrics.Metrics) *Consumer {
	if messageTimeout <= 0 {
		messageTimeout = 30 * time.Second
	}
	return &Consumer{
		readers:        readers,
		topic:          topic,
		messageTimeout: messageTimeout,
		retryInterval:  time.Second,
		logger:         logger.With().Str("component", "kafka_consumer").Str("topic", topic).Logger(),
		metrics:        m,
	}
}

// Run consumes until ctx is cancelled, then closes every reader.
func (c *Consumer) Run(ctx context.Context, handler MessageHandler) error {
	c.logger.Info().Int("workers", len(c.readers)).Msg("kafka consumer starting")

	g, gctx := errgroup.WithContext(ctx)
	for i, reader := range c.readers {
		g.Go(func() error {
			return c.work(gctx, i, reader, handler)
		})
	}

	err := g.Wait()
	for _, reader := range c.readers {
		if cerr := reader.Close(); cerr != nil {
			c.logger.Warn().Err(cerr).Msg("failed to close kafka reader")
		}
	}

	c.logger.Info().Msg("kafka consumer stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *Consumer) work(ctx context.Context, worker int, reader MessageReader, handler MessageHandler) error {
	log := c.logger.With().Int("worker", worker).Logger()

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Msg("failed to fetch kafka message")
			if !sleep(ctx, c.retryInterval) {
				return ctx.Err()
			}
			continue
		}

		msgLog := log.With().
			Int("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Str("key", string(msg.Key)).
			Logger()

		if err := c.handle(ctx, msg, handler, msgLog); err != nil {
			// Only cancellation gets here; the offset stays uncommitted for redelivery.
			return err
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			msgLog.Error().Err(err).Msg("failed to commit kafka offset")
			continue
		}
		msgLog.Debug().Msg("kafka message offset committed")
	}
}

// handle retries handler with backoff until it succeeds or ctx ends.
// Poison messages never reach this loop as errors: the handler dead-letters them.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message, handler MessageHandler, log zerolog.Logger) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	b.MaxInterval = 30 * c.retryInterval
	b.MaxElapsedTime = 0

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		msgCtx, cancel := context.WithTimeout(ctx, c.messageTimeout)
		err := handler(msgCtx, msg)
		cancel()

		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}

		if c.metrics != nil {
			c.metrics.MessagesConsumed.WithLabelValues(msg.Topic, "error").Inc()
		}
		log.Error().Err(err).Int("attempt", attempt).Msg("error handling kafka message, will not commit offset")
		return fmt.Errorf("handle message: %w", err)
	}, backoff.WithContext(b, ctx))
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
