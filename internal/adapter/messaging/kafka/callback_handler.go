package kafka

import (
	"context"
	"errors"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/iho/paysaga/internal/domain"
	"github.com/iho/paysaga/internal/infrastructure/metrics"
	"github.com/iho/paysaga/internal/usecase"
	"github.com/iho/paysaga/internal/webhook"
)

// Dead-letter reasons.
const (
	ReasonUnrecognized = "unrecognized"
	ReasonMalformed    = "malformed"
)

// OutcomeIgnored labels committed callbacks that reported a non-terminal state.
const OutcomeIgnored = "ignored"

// CallbackProcessor runs one raw inbound callback through parsing and the saga.
type CallbackProcessor interface {
	Process(ctx context.Context, raw []byte) (usecase.SagaOutcome, error)
}

// CallbackHandler consumes the inbound callback topic.
type CallbackHandler struct {
	processor CallbackProcessor
	producer  Producer
	dlqTopic  string
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

func NewCallbackHandler(processor CallbackProcessor, producer Producer, dlqTopic string, m *metrics.Metrics, logger zerolog.Logger) *CallbackHandler {
	return &CallbackHandler{
		processor: processor,
		producer:  producer,
		dlqTopic:  dlqTopic,
		metrics:   m,
		logger:    logger.With().Str("component", "callback_handler").Logger(),
	}
}

// Handle processes msg. Payloads that can never be parsed go to the dead-letter
// topic and are committed; every other failure is returned so the offset stays put.
func (h *CallbackHandler) Handle(ctx context.Context, msg kafka.Message) error {
	outcome, err := h.processor.Process(ctx, msg.Value)
	if err == nil {
		h.count(msg.Topic, string(outcome))
		return nil
	}
	if errors.Is(err, domain.ErrNonTerminalCallback) {
		h.count(msg.Topic, OutcomeIgnored)
		return nil
	}

	reason := deadLetterReason(err)
	if reason == "" {
		return err
	}

	log := h.logger.With().
		Str("topic", msg.Topic).
		Int("partition", msg.Partition).
		Int64("offset", msg.Offset).
		Str("reason", reason).
		Logger()

	headers := append([]kafka.Header{
		{Key: HeaderDLQReason, Value: []byte(reason)},
		{Key: HeaderDLQError, Value: []byte(err.Error())},
		{Key: HeaderSourceTopic, Value: []byte(msg.Topic)},
		{Key: HeaderSourcePartition, Value: []byte(strconv.Itoa(msg.Partition))},
		{Key: HeaderSourceOffset, Value: []byte(strconv.FormatInt(msg.Offset, 10))},
	}, msg.Headers...)

	if perr := h.producer.Produce(ctx, h.dlqTopic, msg.Key, msg.Value, headers...); perr != nil {
		log.Error().Err(perr).Msg("failed to dead-letter callback")
		if h.metrics != nil {
			h.metrics.PublishErrors.WithLabelValues("dead_letter").Inc()
		}
		return perr
	}

	log.Warn().Err(err).Msg("callback dead-lettered")
	if h.metrics != nil {
		h.metrics.MessagesDeadLetter.WithLabelValues(reason).Inc()
	}
	h.count(msg.Topic, "dead_letter")
	return nil
}

func (h *CallbackHandler) count(topic, result string) {
	if h.metrics != nil {
		h.metrics.MessagesConsumed.WithLabelValues(topic, result).Inc()
	}
}

func deadLetterReason(err error) string {
	switch {
	case errors.Is(err, webhook.ErrUnrecognizedPayload):
		return ReasonUnrecognized
	case errors.Is(err, domain.ErrMalformedPayload):
		return ReasonMalformed
	default:
		return ""
	}
}
