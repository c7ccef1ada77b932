package webhook

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripewebhook "github.com/stripe/stripe-go/v79/webhook"

	"github.com/iho/paysaga/internal/domain"
)

func parse(t *testing.T, p Parser, payload string) *domain.CanonicalEvent {
	t.Helper()
	require.True(t, p.Supports([]byte(payload)), "%s does not support payload", p.Name())
	ev, err := p.Parse([]byte(payload))
	require.NoError(t, err)
	return ev
}

func TestStripeParser(t *testing.T) {
	p := NewStripeParser()

	t.Run("payment succeeded", func(t *testing.T) {
		ev := parse(t, p, stripePaymentSucceeded)

		assert.Equal(t, domain.CallbackPaymentSuccess, ev.Type)
		assert.Equal(t, "pi_123", ev.ExternalTransactionID)
		assert.Equal(t, "R1", ev.PaymentRequestID)
		assert.Equal(t, "corr-1", ev.CorrelationID)
		assert.True(t, decimal.RequireFromString("25.99").Equal(ev.Amount), "amount %s", ev.Amount)
		assert.Equal(t, "USD", ev.Currency)
		assert.Equal(t, time.Unix(1767225600, 0).UTC(), ev.ReceivedAt)
		assert.Equal(t, "evt_1", ev.Metadata[domain.MetadataGatewayEventID])
		assert.Equal(t, "pi_123", ev.GatewayResponse["id"])
		assert.False(t, ev.MappingFallback())
	})

	t.Run("payment failed carries decline", func(t *testing.T) {
		ev := parse(t, p, stripePaymentFailed)

		assert.Equal(t, domain.CallbackPaymentFailed, ev.Type)
		assert.Equal(t, "pi_456", ev.ExternalTransactionID)
		assert.Equal(t, "card_declined: Your card has insufficient funds.", ev.Reason())
	})

	t.Run("zero-decimal refund", func(t *testing.T) {
		ev := parse(t, p, stripeRefundUpdated)

		assert.Equal(t, domain.CallbackRefundSuccess, ev.Type)
		assert.Equal(t, "re_789", ev.ExternalRefundID)
		assert.Equal(t, "pi_123", ev.ExternalTransactionID)
		assert.True(t, decimal.NewFromInt(500).Equal(ev.Amount), "amount %s", ev.Amount)
		assert.Equal(t, "JPY", ev.Currency)
	})

	t.Run("failed refund status overrides event name", func(t *testing.T) {
		ev := parse(t, p, stripeRefundFailed)

		assert.Equal(t, domain.CallbackRefundFailed, ev.Type)
		assert.Equal(t, "expired_or_canceled_card", ev.ErrorCode)
	})

	t.Run("charge refunded uses latest refund", func(t *testing.T) {
		ev := parse(t, p, stripeChargeRefunded)

		assert.Equal(t, domain.CallbackRefundSuccess, ev.Type)
		assert.Equal(t, "re_900", ev.ExternalRefundID)
		assert.Equal(t, "pi_123", ev.ExternalTransactionID)
		assert.True(t, decimal.RequireFromString("10.00").Equal(ev.Amount), "amount %s", ev.Amount)
	})

	t.Run("unknown event falls back", func(t *testing.T) {
		ev := parse(t, p, stripeUnknownIntentEvent)

		assert.Equal(t, domain.CallbackPaymentSuccess, ev.Type)
		assert.True(t, ev.MappingFallback())
	})
}

func stripeRefundEvent(eventType, status string) string {
	return `{
		"id": "evt_r",
		"object": "event",
		"type": "` + eventType + `",
		"created": 1767225600,
		"data": {"object": {
			"id": "re_100",
			"object": "refund",
			"amount": 1500,
			"currency": "usd",
			"payment_intent": "pi_123",
			"status": "` + status + `"
		}}
	}`
}

func TestStripeParser_RefundStatusDecidesOutcome(t *testing.T) {
	p := NewStripeParser()

	tests := []struct {
		eventType string
		status    string
		want      domain.CallbackType
		ignored   bool
	}{
		{"refund.created", "pending", "", true},
		{"refund.updated", "pending", "", true},
		{"refund.created", "requires_action", "", true},
		{"charge.refund.updated", "requires_action", "", true},
		{"refund.created", "succeeded", domain.CallbackRefundSuccess, false},
		{"refund.updated", "succeeded", domain.CallbackRefundSuccess, false},
		{"refund.updated", "canceled", domain.CallbackRefundFailed, false},
		{"refund.failed", "failed", domain.CallbackRefundFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.eventType+"/"+tt.status, func(t *testing.T) {
			payload := []byte(stripeRefundEvent(tt.eventType, tt.status))
			require.True(t, p.Supports(payload))

			ev, err := p.Parse(payload)
			if tt.ignored {
				require.ErrorIs(t, err, domain.ErrNonTerminalCallback)
				assert.NotErrorIs(t, err, domain.ErrMalformedPayload)
				assert.Contains(t, err.Error(), "re_100")
				assert.Nil(t, ev)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ev.Type)
			assert.Equal(t, "re_100", ev.ExternalRefundID)
			assert.False(t, ev.MappingFallback())
		})
	}
}

func TestStripeParser_ChargeWithPendingRefundIsIgnored(t *testing.T) {
	payload := strings.Replace(stripeChargeRefunded, `"status": "succeeded"`, `"status": "pending"`, 1)
	require.NotEqual(t, stripeChargeRefunded, payload)

	_, err := NewStripeParser().Parse([]byte(payload))
	assert.ErrorIs(t, err, domain.ErrNonTerminalCallback)
}

func TestVerifyStripeSignature(t *testing.T) {
	payload := []byte(stripePaymentSucceeded)
	signed := stripewebhook.GenerateTestSignedPayload(&stripewebhook.UnsignedPayload{
		Payload:   payload,
		Secret:    "whsec_test",
		Timestamp: time.Now(),
	})

	assert.NoError(t, VerifyStripeSignature(payload, signed.Header, "whsec_test"))
	assert.ErrorIs(t, VerifyStripeSignature(payload, signed.Header, "whsec_other"), ErrInvalidSignature)
	assert.ErrorIs(t, VerifyStripeSignature(payload, "", "whsec_test"), ErrInvalidSignature)
}

func TestPayPalParser(t *testing.T) {
	p := NewPayPalParser()

	t.Run("capture completed", func(t *testing.T) {
		ev := parse(t, p, paypalCaptureCompleted)

		assert.Equal(t, domain.CallbackPaymentSuccess, ev.Type)
		assert.Equal(t, "CAP-1", ev.ExternalTransactionID)
		assert.Equal(t, "R1", ev.PaymentRequestID)
		assert.Equal(t, "RC-1", ev.RequestCode)
		assert.Equal(t, "ORD-1", ev.PaymentToken)
		assert.True(t, decimal.RequireFromString("25.99").Equal(ev.Amount))
		assert.Equal(t, time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC), ev.ReceivedAt)
	})

	t.Run("capture denied", func(t *testing.T) {
		ev := parse(t, p, paypalCaptureDenied)

		assert.Equal(t, domain.CallbackPaymentFailed, ev.Type)
		assert.Equal(t, "DECLINED_BY_RISK_FRAUD_FILTERS: Payment denied", ev.Reason())
	})

	t.Run("refund resolves parent capture", func(t *testing.T) {
		ev := parse(t, p, paypalRefunded)

		assert.Equal(t, domain.CallbackRefundSuccess, ev.Type)
		assert.Equal(t, "REF-1", ev.ExternalRefundID)
		assert.Equal(t, "CAP-1", ev.ExternalTransactionID)
	})

	t.Run("order approved", func(t *testing.T) {
		ev := parse(t, p, paypalOrderApproved)

		assert.Equal(t, domain.CallbackRequestApproved, ev.Type)
		assert.Equal(t, "ORD-1", ev.PaymentToken)
		assert.Equal(t, "R1", ev.PaymentRequestID)
		assert.Equal(t, "RC-1", ev.RequestCode)
		assert.True(t, ev.HasIdentity())
	})
}

func TestCanonicalParser(t *testing.T) {
	p := NewCanonicalParser()

	ev := parse(t, p, canonicalApproved)
	assert.Equal(t, domain.CallbackRequestApproved, ev.Type)
	assert.Equal(t, "tok_abc", ev.PaymentToken)
	assert.Equal(t, "corr-9", ev.CorrelationID)
	assert.Equal(t, GatewayCanonical, ev.GatewayName)
	assert.True(t, ev.ReceivedAt.IsZero())

	ev = parse(t, p, canonicalRefund)
	assert.Equal(t, domain.CallbackRefundSuccess, ev.Type)
	assert.Equal(t, "USD", ev.Currency)
	assert.True(t, decimal.RequireFromString("99.99").Equal(ev.Amount))
	assert.Equal(t, time.Date(2026, 1, 2, 22, 0, 0, 0, time.UTC), ev.ReceivedAt)
}

func TestBankTransferParser(t *testing.T) {
	p := NewBankTransferParser()

	t.Run("settled", func(t *testing.T) {
		ev := parse(t, p, bankSettled)

		assert.Equal(t, domain.CallbackPaymentSuccess, ev.Type)
		assert.Equal(t, "TRX-1", ev.ExternalTransactionID)
		assert.Equal(t, "bank:sepa", ev.GatewayName)
		assert.Equal(t, "EUR", ev.Currency)
		assert.True(t, decimal.RequireFromString("120.50").Equal(ev.Amount))
	})

	t.Run("returned with numeric amount", func(t *testing.T) {
		ev := parse(t, p, bankReturned)

		assert.Equal(t, domain.CallbackPaymentFailed, ev.Type)
		assert.Equal(t, "AC04: Closed account", ev.Reason())
		assert.True(t, decimal.NewFromInt(10).Equal(ev.Amount))
		assert.True(t, ev.ReceivedAt.IsZero())
	})

	t.Run("refund", func(t *testing.T) {
		ev := parse(t, p, bankRefunded)

		assert.Equal(t, domain.CallbackRefundSuccess, ev.Type)
		assert.Equal(t, "RF-1", ev.ExternalRefundID)
		assert.Equal(t, "TRX-1", ev.ExternalTransactionID)
	})

	t.Run("unknown status falls back", func(t *testing.T) {
		ev := parse(t, p, `{"status": "IN_TRANSIT", "reference": "TRX-3"}`)

		assert.Equal(t, domain.CallbackPaymentSuccess, ev.Type)
		assert.True(t, ev.MappingFallback())
	})
}
