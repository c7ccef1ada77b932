package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iho/paysaga/internal/domain"
)

// WebhookUseCase accepts gateway webhooks over HTTP and enqueues them on the
// inbound callback topic, so HTTP and topic deliveries share one consumer path.
type WebhookUseCase struct {
	parser    *CallbackParser
	publisher CallbackPublisher
	logger    zerolog.Logger
}

func NewWebhookUseCase(parser *CallbackParser, publisher CallbackPublisher, logger zerolog.Logger) *WebhookUseCase {
	return &WebhookUseCase{
		parser:    parser,
		publisher: publisher,
		logger:    logger.With().Str("component", "webhooks").Logger(),
	}
}

// Accept parses raw as a payload of gateway and publishes the canonical event.
// A payload recognized as another gateway's fails with webhook.ErrGatewayMismatch.
// A non-terminal payload returns domain.ErrNonTerminalCallback and is not enqueued.
func (uc *WebhookUseCase) Accept(ctx context.Context, gateway string, raw []byte) (*domain.CanonicalEvent, error) {
	ev, err := uc.parser.ParseFor(gateway, raw)
	if err != nil {
		if !errors.Is(err, domain.ErrNonTerminalCallback) {
			uc.logger.Warn().Err(err).Str("gateway", gateway).Msg("webhook rejected")
		}
		return nil, err
	}

	if err := uc.publisher.PublishCallback(ctx, ev); err != nil {
		return nil, fmt.Errorf("enqueue callback: %w", err)
	}

	uc.logger.Info().
		Str("gateway", gateway).
		Str("callback_type", string(ev.Type)).
		Str("correlation_id", ev.CorrelationID).
		Msg("webhook accepted")
	return ev, nil
}
