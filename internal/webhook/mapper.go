package webhook

import (
	"strings"

	"github.com/iho/paysaga/internal/domain"
)

// DefaultCallbackType is returned for any value missing from a mapping table.
// Callers rely on it as the fallback for already-validated call sites; the
// second return value of each mapper reports whether it was taken.
const DefaultCallbackType = domain.CallbackPaymentSuccess

// Mapper names, used as the metric label for fallbacks.
const (
	MapperStripe  = "stripe"
	MapperPayPal  = "paypal"
	MapperBank    = "bank"
	MapperGeneric = "generic"
)

// Lookup tables. Keys are upper-case; never written after init.
var (
	stripeEvents = map[string]domain.CallbackType{
		"PAYMENT_INTENT.SUCCEEDED":      domain.CallbackPaymentSuccess,
		"PAYMENT_INTENT.PAYMENT_FAILED": domain.CallbackPaymentFailed,
		"PAYMENT_INTENT.CANCELED":       domain.CallbackPaymentFailed,
		"CHARGE.REFUNDED":               domain.CallbackRefundSuccess,
		"CHARGE.REFUND.UPDATED":         domain.CallbackRefundSuccess,
		"REFUND.CREATED":                domain.CallbackRefundSuccess,
		"REFUND.UPDATED":                domain.CallbackRefundSuccess,
		"REFUND.FAILED":                 domain.CallbackRefundFailed,
	}

	paypalEvents = map[string]domain.CallbackType{
		"CHECKOUT.ORDER.APPROVED":   domain.CallbackRequestApproved,
		"CHECKOUT.ORDER.DECLINED":   domain.CallbackRequestRejected,
		"CHECKOUT.ORDER.VOIDED":     domain.CallbackRequestRejected,
		"PAYMENT.CAPTURE.COMPLETED": domain.CallbackPaymentSuccess,
		"PAYMENT.CAPTURE.DENIED":    domain.CallbackPaymentFailed,
		"PAYMENT.CAPTURE.DECLINED":  domain.CallbackPaymentFailed,
		"PAYMENT.CAPTURE.REFUNDED":  domain.CallbackRefundSuccess,
		"PAYMENT.CAPTURE.REVERSED":  domain.CallbackRefundSuccess,
		"PAYMENT.REFUND.COMPLETED":  domain.CallbackRefundSuccess,
		"PAYMENT.REFUND.FAILED":     domain.CallbackRefundFailed,
		"PAYMENT.REFUND.DENIED":     domain.CallbackRefundFailed,
	}

	bankStatuses = map[string]domain.CallbackType{
		"APPROVED":      domain.CallbackRequestApproved,
		"AUTHORIZED":    domain.CallbackRequestApproved,
		"REJECTED":      domain.CallbackRequestRejected,
		"SETTLED":       domain.CallbackPaymentSuccess,
		"COMPLETED":     domain.CallbackPaymentSuccess,
		"CREDITED":      domain.CallbackPaymentSuccess,
		"FAILED":        domain.CallbackPaymentFailed,
		"RETURNED":      domain.CallbackPaymentFailed,
		"DECLINED":      domain.CallbackPaymentFailed,
		"REFUNDED":      domain.CallbackRefundSuccess,
		"REFUND_FAILED": domain.CallbackRefundFailed,
	}

	genericStatuses = map[string]domain.CallbackType{
		"APPROVED":       domain.CallbackRequestApproved,
		"REJECTED":       domain.CallbackRequestRejected,
		"SUCCESS":        domain.CallbackPaymentSuccess,
		"SUCCEEDED":      domain.CallbackPaymentSuccess,
		"COMPLETED":      domain.CallbackPaymentSuccess,
		"CAPTURED":       domain.CallbackPaymentSuccess,
		"PAID":           domain.CallbackPaymentSuccess,
		"FAILED":         domain.CallbackPaymentFailed,
		"FAILURE":        domain.CallbackPaymentFailed,
		"DECLINED":       domain.CallbackPaymentFailed,
		"ERROR":          domain.CallbackPaymentFailed,
		"CANCELLED":      domain.CallbackPaymentFailed,
		"REFUNDED":       domain.CallbackRefundSuccess,
		"REFUND_SUCCESS": domain.CallbackRefundSuccess,
		"REFUND_FAILED":  domain.CallbackRefundFailed,
	}
)

func lookup(table map[string]domain.CallbackType, value string) (domain.CallbackType, bool) {
	if t, ok := table[strings.ToUpper(strings.TrimSpace(value))]; ok {
		return t, true
	}
	return DefaultCallbackType, false
}

// MapStripeEvent maps a Stripe event type such as "payment_intent.succeeded".
func MapStripeEvent(eventType string) (domain.CallbackType, bool) {
	return lookup(stripeEvents, eventType)
}

// MapPayPalEvent maps a PayPal webhook event_type such as "PAYMENT.CAPTURE.COMPLETED".
func MapPayPalEvent(eventType string) (domain.CallbackType, bool) {
	return lookup(paypalEvents, eventType)
}

// MapBankStatus maps a bank transfer notification status.
func MapBankStatus(status string) (domain.CallbackType, bool) {
	return lookup(bankStatuses, status)
}

// MapGenericStatus maps a status returned by a synchronous integrator call.
// Canonical callback type names map to themselves.
func MapGenericStatus(status string) (domain.CallbackType, bool) {
	if t, ok := domain.ParseCallbackType(status); ok {
		return t, true
	}
	return lookup(genericStatuses, status)
}
