package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/paysaga/internal/domain"
	"github.com/iho/paysaga/internal/infrastructure/metrics"
	"github.com/iho/paysaga/internal/webhook"
)

// Saga applies a canonical callback to the payment aggregates.
type Saga interface {
	Handle(ctx context.Context, ev *domain.CanonicalEvent) (SagaOutcome, error)
}

// CallbackParser runs the parser selector and records parse metrics.
type CallbackParser struct {
	selector *webhook.Selector
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewCallbackParser(selector *webhook.Selector, metrics *metrics.Metrics, logger zerolog.Logger) *CallbackParser {
	return &CallbackParser{
		selector: selector,
		metrics:  metrics,
		logger:   logger.With().Str("component", "callback_parser").Logger(),
	}
}

// Parse converts raw into a canonical event. It returns webhook.ErrUnrecognizedPayload
// when no parser matches, and an error wrapping domain.ErrMalformedPayload when the
// matched parser cannot decode the payload. A payload reporting a state that is not
// final yields domain.ErrNonTerminalCallback; callers acknowledge and drop it.
func (p *CallbackParser) Parse(raw []byte) (*domain.CanonicalEvent, error) {
	return p.parse("", raw)
}

// ParseFor parses a payload delivered to gateway's own endpoint. The selected
// parser must be gateway's; otherwise it returns webhook.ErrGatewayMismatch
// without parsing.
func (p *CallbackParser) ParseFor(gateway string, raw []byte) (*domain.CanonicalEvent, error) {
	if gateway == "" {
		return nil, fmt.Errorf("%w: no gateway given", webhook.ErrGatewayMismatch)
	}
	return p.parse(gateway, raw)
}

func (p *CallbackParser) parse(gateway string, raw []byte) (*domain.CanonicalEvent, error) {
	parser, ok := p.selector.Select(raw)
	if !ok {
		if p.metrics != nil {
			p.metrics.CallbacksUnrecognized.Inc()
		}
		return nil, webhook.ErrUnrecognizedPayload
	}

	if gateway != "" && parser.Name() != gateway {
		p.logger.Warn().
			Str("gateway", gateway).
			Str("parser", parser.Name()).
			Msg("payload recognized as another gateway's")
		if p.metrics != nil {
			p.metrics.CallbacksUnrecognized.Inc()
		}
		return nil, fmt.Errorf("%w: %s payload sent to %s", webhook.ErrGatewayMismatch, parser.Name(), gateway)
	}

	ev, err := parser.Parse(raw)
	if err != nil {
		if errors.Is(err, domain.ErrNonTerminalCallback) {
			p.logger.Info().Err(err).Str("parser", parser.Name()).Msg("non-terminal callback ignored")
			if p.metrics != nil {
				p.metrics.CallbacksIgnored.WithLabelValues(parser.Name()).Inc()
			}
			return nil, err
		}
		if p.metrics != nil {
			p.metrics.CallbacksMalformed.WithLabelValues(parser.Name()).Inc()
		}
		return nil, err
	}

	if p.metrics != nil {
		p.metrics.CallbacksReceived.WithLabelValues(parser.Name(), string(ev.Type)).Inc()
	}

	// Canonical payloads carry the flag of an earlier mapping; count it where it happened.
	if ev.MappingFallback() && parser.Name() != webhook.GatewayCanonical {
		p.logger.Warn().
			Str("parser", parser.Name()).
			Str("gateway_event", ev.Metadata[domain.MetadataGatewayEvent]).
			Str("callback_type", string(ev.Type)).
			Msg("unknown gateway value mapped to default callback type")
		if p.metrics != nil {
			p.metrics.MappingFallbacks.WithLabelValues(parser.Name()).Inc()
		}
	}

	return ev, nil
}

// CallbackUseCase processes inbound callbacks end to end.
type CallbackUseCase struct {
	parser         *CallbackParser
	saga           Saga
	store          IdempotencyStore
	idempotencyTTL time.Duration
	logger         zerolog.Logger
}

// NewCallbackUseCase wires the pipeline. store may be nil, in which case
// duplicate deliveries are absorbed by the per-aggregate guards alone.
func NewCallbackUseCase(
	parser *CallbackParser,
	saga Saga,
	store IdempotencyStore,
	idempotencyTTL time.Duration,
	logger zerolog.Logger,
) *CallbackUseCase {
	if idempotencyTTL <= 0 {
		idempotencyTTL = IdempotencyKeyTTL
	}
	return &CallbackUseCase{
		parser:         parser,
		saga:           saga,
		store:          store,
		idempotencyTTL: idempotencyTTL,
		logger:         logger.With().Str("component", "callbacks").Logger(),
	}
}

// Process parses raw and hands the canonical event to the saga.
func (uc *CallbackUseCase) Process(ctx context.Context, raw []byte) (SagaOutcome, error) {
	ev, err := uc.parser.Parse(raw)
	if err != nil {
		return "", err
	}
	return uc.Handle(ctx, ev)
}

// Handle runs the saga for ev behind the duplicate-delivery guard.
func (uc *CallbackUseCase) Handle(ctx context.Context, ev *domain.CanonicalEvent) (SagaOutcome, error) {
	key := ev.DedupKey()
	if uc.store == nil || key == "" {
		return uc.saga.Handle(ctx, ev)
	}

	claimed, err := uc.store.Claim(ctx, key, ClaimTTL)
	if err != nil {
		uc.logger.Warn().Err(err).Str("dedup_key", key).Msg("idempotency store unavailable, relying on aggregate guards")
		return uc.saga.Handle(ctx, ev)
	}
	if !claimed {
		uc.logger.Info().Str("dedup_key", key).Str("correlation_id", ev.CorrelationID).Msg("duplicate delivery skipped")
		return OutcomeDuplicate, nil
	}

	outcome, err := uc.saga.Handle(ctx, ev)
	if err != nil || outcome == OutcomeUnmatched {
		// Unmatched callbacks stay retryable: the aggregate may not exist yet.
		if rerr := uc.store.Release(ctx, key); rerr != nil {
			uc.logger.Warn().Err(rerr).Str("dedup_key", key).Msg("failed to release idempotency claim")
		}
		return outcome, err
	}

	if cerr := uc.store.Complete(ctx, key, uc.idempotencyTTL); cerr != nil {
		uc.logger.Warn().Err(cerr).Str("dedup_key", key).Msg("failed to complete idempotency claim")
	}
	return outcome, nil
}
