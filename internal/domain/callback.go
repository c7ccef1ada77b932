package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CallbackType is the canonical vocabulary every gateway notification is reduced to.
type CallbackType string

const (
	CallbackRequestApproved CallbackType = "REQUEST_APPROVED"
	CallbackRequestRejected CallbackType = "REQUEST_REJECTED"
	CallbackPaymentSuccess  CallbackType = "PAYMENT_SUCCESS"
	CallbackPaymentFailed   CallbackType = "PAYMENT_FAILED"
	CallbackRefundSuccess   CallbackType = "REFUND_SUCCESS"
	CallbackRefundFailed    CallbackType = "REFUND_FAILED"
)

var callbackTypes = map[CallbackType]struct{}{
	CallbackRequestApproved: {},
	CallbackRequestRejected: {},
	CallbackPaymentSuccess:  {},
	CallbackPaymentFailed:   {},
	CallbackRefundSuccess:   {},
	CallbackRefundFailed:    {},
}

// ParseCallbackType returns the callback type named by s, ignoring case.
func ParseCallbackType(s string) (CallbackType, bool) {
	t := CallbackType(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := callbackTypes[t]
	return t, ok
}

// IsValid reports whether t is one of the canonical callback types.
func (t CallbackType) IsValid() bool {
	_, ok := callbackTypes[t]
	return ok
}

// IsRequestLevel reports whether t targets a payment request.
func (t CallbackType) IsRequestLevel() bool {
	return t == CallbackRequestApproved || t == CallbackRequestRejected
}

// IsTransactionLevel reports whether t targets a payment transaction.
func (t CallbackType) IsTransactionLevel() bool {
	return t == CallbackPaymentSuccess || t == CallbackPaymentFailed
}

// IsRefundLevel reports whether t targets a payment refund.
func (t CallbackType) IsRefundLevel() bool {
	return t == CallbackRefundSuccess || t == CallbackRefundFailed
}

// Metadata keys set by parsers.
const (
	MetadataMappingFallback = "mapping_fallback"
	MetadataGatewayEvent    = "gateway_event"
	MetadataGatewayEventID  = "gateway_event_id"
)

// CanonicalEvent is the gateway-agnostic form of a payment callback.
// It is built once by a parser and never mutated afterwards.
type CanonicalEvent struct {
	Type          CallbackType `json:"type"`
	CorrelationID string       `json:"correlation_id,omitempty"`

	PaymentRequestID      string `json:"payment_request_id,omitempty"`
	PaymentTransactionID  string `json:"payment_transaction_id,omitempty"`
	PaymentRefundID       string `json:"payment_refund_id,omitempty"`
	PaymentToken          string `json:"payment_token,omitempty"`
	RequestCode           string `json:"request_code,omitempty"`
	ExternalTransactionID string `json:"external_transaction_id,omitempty"`
	ExternalRefundID      string `json:"external_refund_id,omitempty"`

	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency,omitempty"`

	GatewayName     string            `json:"gateway_name,omitempty"`
	GatewayResponse map[string]any    `json:"gateway_response,omitempty"`
	ErrorCode       string            `json:"error_code,omitempty"`
	ErrorMessage    string            `json:"error_message,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	ReceivedAt      time.Time         `json:"received_at"`
}

// Reason composes the status reason carried by failure and rejection callbacks.
func (e *CanonicalEvent) Reason() string {
	return ComposeReason(e.ErrorCode, e.ErrorMessage)
}

// MappingFallback reports whether the parser had to fall back to the default callback type.
func (e *CanonicalEvent) MappingFallback() bool {
	return e.Metadata[MetadataMappingFallback] == "true"
}

// HasIdentity reports whether the event carries at least one hint able to resolve its aggregate.
func (e *CanonicalEvent) HasIdentity() bool {
	switch {
	case e.Type.IsRequestLevel():
		return e.PaymentRequestID != "" || e.PaymentToken != "" || e.RequestCode != ""
	case e.Type.IsTransactionLevel():
		return e.ExternalTransactionID != ""
	case e.Type.IsRefundLevel():
		return e.ExternalRefundID != ""
	default:
		return false
	}
}

// DedupKey identifies the logical callback for duplicate-delivery detection.
// Returns "" when the event has no identity hint at all.
func (e *CanonicalEvent) DedupKey() string {
	for _, hint := range []string{
		e.ExternalRefundID,
		e.ExternalTransactionID,
		e.PaymentRefundID,
		e.PaymentTransactionID,
		e.PaymentRequestID,
		e.PaymentToken,
		e.RequestCode,
	} {
		if hint != "" {
			return string(e.Type) + ":" + hint
		}
	}
	return ""
}

// Validate checks the minimum shape required by the orchestrator.
func (e *CanonicalEvent) Validate() error {
	if !e.Type.IsValid() {
		return ErrUnknownCallbackType
	}
	if e.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if e.Currency != "" {
		if _, err := NormalizeCurrency(e.Currency); err != nil {
			return err
		}
	}
	return nil
}
