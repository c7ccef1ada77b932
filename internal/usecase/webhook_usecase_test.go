package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/paysaga/internal/domain"
	"github.com/iho/paysaga/internal/usecase"
	"github.com/iho/paysaga/internal/usecase/mocks"
	"github.com/iho/paysaga/internal/webhook"
)

func TestWebhookUseCase_Accept(t *testing.T) {
	parser, _, _ := newParser(t)
	publisher := mocks.NewMockCallbackPublisher()
	uc := usecase.NewWebhookUseCase(parser, publisher, zerolog.Nop())

	ev, err := uc.Accept(context.Background(), webhook.GatewayCanonical, []byte(`{"type": "request_rejected", "request_code": "RC-1", "error_code": "DECLINED"}`))
	require.NoError(t, err)
	assert.Equal(t, domain.CallbackRequestRejected, ev.Type)

	published := publisher.Events()
	require.Len(t, published, 1)
	assert.Equal(t, "RC-1", published[0].RequestCode)
}

func TestWebhookUseCase_AcceptErrors(t *testing.T) {
	t.Run("unrecognized payload is not enqueued", func(t *testing.T) {
		parser, _, _ := newParser(t)
		publisher := mocks.NewMockCallbackPublisher()
		uc := usecase.NewWebhookUseCase(parser, publisher, zerolog.Nop())

		_, err := uc.Accept(context.Background(), webhook.GatewayCanonical, []byte(`{"foo": 1}`))
		assert.ErrorIs(t, err, webhook.ErrUnrecognizedPayload)
		assert.Empty(t, publisher.Events())
	})

	t.Run("enqueue failure is wrapped", func(t *testing.T) {
		parser, _, _ := newParser(t)
		publisher := mocks.NewMockCallbackPublisher()
		brokerErr := errors.New("no leader")
		publisher.PublishCallbackFunc = func(ctx context.Context, event *domain.CanonicalEvent) error {
			return brokerErr
		}
		uc := usecase.NewWebhookUseCase(parser, publisher, zerolog.Nop())

		_, err := uc.Accept(context.Background(), webhook.GatewayCanonical, []byte(`{"type": "PAYMENT_FAILED", "external_transaction_id": "pi_1"}`))
		assert.ErrorIs(t, err, brokerErr)
	})
}

const unsignedStripeRefund = `{
	"id": "evt_forged",
	"object": "event",
	"type": "refund.updated",
	"data": {"object": {"id": "re_1", "object": "refund", "amount": 5000, "currency": "usd", "status": "succeeded"}}
}`

func TestWebhookUseCase_AcceptBindsPayloadToGateway(t *testing.T) {
	tests := []struct {
		name    string
		gateway string
		raw     string
	}{
		{"stripe payload on bank endpoint", webhook.GatewayBank, unsignedStripeRefund},
		{"stripe payload on canonical endpoint", webhook.GatewayCanonical, unsignedStripeRefund},
		{"stripe payload on paypal endpoint", webhook.GatewayPayPal, unsignedStripeRefund},
		{"canonical payload on stripe endpoint", webhook.GatewayStripe, `{"type": "REFUND_SUCCESS", "external_refund_id": "re_1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser, m, _ := newParser(t)
			publisher := mocks.NewMockCallbackPublisher()
			uc := usecase.NewWebhookUseCase(parser, publisher, zerolog.Nop())

			_, err := uc.Accept(context.Background(), tt.gateway, []byte(tt.raw))
			require.ErrorIs(t, err, webhook.ErrGatewayMismatch)
			assert.Empty(t, publisher.Events())
			assert.Equal(t, 1.0, testutil.ToFloat64(m.CallbacksUnrecognized))
		})
	}

	t.Run("stripe payload on stripe endpoint", func(t *testing.T) {
		parser, _, _ := newParser(t)
		publisher := mocks.NewMockCallbackPublisher()
		uc := usecase.NewWebhookUseCase(parser, publisher, zerolog.Nop())

		ev, err := uc.Accept(context.Background(), webhook.GatewayStripe, []byte(unsignedStripeRefund))
		require.NoError(t, err)
		assert.Equal(t, domain.CallbackRefundSuccess, ev.Type)
		assert.Len(t, publisher.Events(), 1)
	})
}

func TestWebhookUseCase_NonTerminalIsNotEnqueued(t *testing.T) {
	parser, m, _ := newParser(t)
	publisher := mocks.NewMockCallbackPublisher()
	uc := usecase.NewWebhookUseCase(parser, publisher, zerolog.Nop())

	raw := strings.Replace(unsignedStripeRefund, `"succeeded"`, `"pending"`, 1)
	_, err := uc.Accept(context.Background(), webhook.GatewayStripe, []byte(raw))
	require.ErrorIs(t, err, domain.ErrNonTerminalCallback)
	assert.Empty(t, publisher.Events())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CallbacksIgnored.WithLabelValues(webhook.GatewayStripe)))
	assert.Zero(t, testutil.ToFloat64(m.CallbacksMalformed.WithLabelValues(webhook.GatewayStripe)))
}
