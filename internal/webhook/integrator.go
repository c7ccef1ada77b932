package webhook

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/paysaga/internal/domain"
)

// IntegratorResponse is the result of a synchronous call to a gateway, fed back
// through the callback pipeline as if it had arrived as a webhook.
type IntegratorResponse struct {
	Status                string
	Gateway               string
	CorrelationID         string
	PaymentRequestID      string
	PaymentToken          string
	RequestCode           string
	ExternalTransactionID string
	ExternalRefundID      string
	Amount                decimal.Decimal
	Currency              string
	ErrorCode             string
	ErrorMessage          string
	Response              map[string]any
	RespondedAt           time.Time
}

// FromIntegratorResponse adapts an integrator result into a canonical event.
func FromIntegratorResponse(r IntegratorResponse) *domain.CanonicalEvent {
	callbackType, exact := MapGenericStatus(r.Status)

	md := map[string]string{domain.MetadataGatewayEvent: r.Status}
	ev := &domain.CanonicalEvent{
		Type:                  callbackType,
		CorrelationID:         r.CorrelationID,
		PaymentRequestID:      r.PaymentRequestID,
		PaymentToken:          r.PaymentToken,
		RequestCode:           r.RequestCode,
		ExternalTransactionID: r.ExternalTransactionID,
		ExternalRefundID:      r.ExternalRefundID,
		Amount:                r.Amount,
		Currency:              strings.ToUpper(r.Currency),
		GatewayName:           r.Gateway,
		GatewayResponse:       r.Response,
		ErrorCode:             r.ErrorCode,
		ErrorMessage:          r.ErrorMessage,
		Metadata:              fallbackMetadata(md, exact),
	}
	if !r.RespondedAt.IsZero() {
		ev.ReceivedAt = r.RespondedAt.UTC()
	}
	return ev
}
