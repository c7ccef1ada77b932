package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	stripewebhook "github.com/stripe/stripe-go/v79/webhook"

	"github.com/iho/paysaga/internal/domain"
)

// ErrInvalidSignature is returned when a signed webhook fails verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Metadata keys merchants set on Stripe objects to link them to internal aggregates.
const (
	stripeMetaRequestID     = "payment_request_id"
	stripeMetaTransactionID = "payment_transaction_id"
	stripeMetaRefundID      = "payment_refund_id"
	stripeMetaToken         = "payment_token"
	stripeMetaRequestCode   = "request_code"
	stripeMetaCorrelationID = "correlation_id"
)

var stripePrefixes = []string{"payment_intent.", "charge.refund", "refund."}

// Currencies Stripe amounts are expressed in whole units for.
var zeroDecimalCurrencies = map[string]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true, "JPY": true, "KMF": true,
	"KRW": true, "MGA": true, "PYG": true, "RWF": true, "UGX": true, "VND": true,
	"VUV": true, "XAF": true, "XOF": true, "XPF": true,
}

// StripeParser handles Stripe event envelopes for payment intents and refunds.
type StripeParser struct{}

func NewStripeParser() *StripeParser {
	return &StripeParser{}
}

func (p *StripeParser) Name() string { return GatewayStripe }

func (p *StripeParser) Supports(raw []byte) bool {
	s, ok := sniff(raw)
	if !ok || !s.hasType {
		return false
	}
	for _, prefix := range stripePrefixes {
		if strings.HasPrefix(s.Type, prefix) {
			return true
		}
	}
	return false
}

func (p *StripeParser) Parse(raw []byte) (*domain.CanonicalEvent, error) {
	var event stripe.Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, malformed(GatewayStripe, err)
	}
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, malformed(GatewayStripe, errors.New("missing data.object"))
	}

	eventType := string(event.Type)
	callbackType, exact := MapStripeEvent(eventType)

	ev := &domain.CanonicalEvent{
		Type:            callbackType,
		GatewayName:     GatewayStripe,
		GatewayResponse: event.Data.Object,
		Metadata: fallbackMetadata(map[string]string{
			domain.MetadataGatewayEvent:   eventType,
			domain.MetadataGatewayEventID: event.ID,
		}, exact),
	}
	if event.Created > 0 {
		ev.ReceivedAt = time.Unix(event.Created, 0).UTC()
	}

	var err error
	switch objectKind(event.Data.Object) {
	case "payment_intent":
		err = p.fillPaymentIntent(ev, event.Data.Raw)
	case "charge":
		err = p.fillCharge(ev, event.Data.Raw)
	case "refund":
		err = p.fillRefund(ev, event.Data.Raw)
	default:
		err = fmt.Errorf("unsupported data.object kind for %s", eventType)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNonTerminalCallback) {
			return nil, err
		}
		return nil, malformed(GatewayStripe, err)
	}

	return ev, nil
}

func objectKind(obj map[string]interface{}) string {
	kind, _ := obj["object"].(string)
	return kind
}

func (p *StripeParser) fillPaymentIntent(ev *domain.CanonicalEvent, raw json.RawMessage) error {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(raw, &pi); err != nil {
		return err
	}

	amount := pi.AmountReceived
	if amount == 0 {
		amount = pi.Amount
	}
	ev.ExternalTransactionID = pi.ID
	ev.Currency = strings.ToUpper(string(pi.Currency))
	ev.Amount = minorToDecimal(amount, ev.Currency)
	applyStripeMetadata(ev, pi.Metadata)

	if pi.LastPaymentError != nil {
		ev.ErrorCode = string(pi.LastPaymentError.Code)
		if ev.ErrorCode == "" {
			ev.ErrorCode = string(pi.LastPaymentError.DeclineCode)
		}
		ev.ErrorMessage = pi.LastPaymentError.Msg
	} else if pi.CancellationReason != "" {
		ev.ErrorCode = string(pi.CancellationReason)
		ev.ErrorMessage = "payment intent canceled"
	}
	return nil
}

func (p *StripeParser) fillCharge(ev *domain.CanonicalEvent, raw json.RawMessage) error {
	var ch stripe.Charge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return err
	}

	ev.ExternalTransactionID = ch.ID
	if ch.PaymentIntent != nil && ch.PaymentIntent.ID != "" {
		ev.ExternalTransactionID = ch.PaymentIntent.ID
	}
	ev.Currency = strings.ToUpper(string(ch.Currency))
	applyStripeMetadata(ev, ch.Metadata)

	amount := ch.AmountRefunded
	if ch.Refunds != nil && len(ch.Refunds.Data) > 0 {
		latest := ch.Refunds.Data[0]
		ev.ExternalRefundID = latest.ID
		amount = latest.Amount
		applyStripeMetadata(ev, latest.Metadata)
		if err := applyRefundStatus(ev, latest); err != nil {
			return err
		}
	}
	ev.Amount = minorToDecimal(amount, ev.Currency)
	return nil
}

func (p *StripeParser) fillRefund(ev *domain.CanonicalEvent, raw json.RawMessage) error {
	var re stripe.Refund
	if err := json.Unmarshal(raw, &re); err != nil {
		return err
	}

	ev.ExternalRefundID = re.ID
	if re.PaymentIntent != nil {
		ev.ExternalTransactionID = re.PaymentIntent.ID
	}
	ev.Currency = strings.ToUpper(string(re.Currency))
	ev.Amount = minorToDecimal(re.Amount, ev.Currency)
	applyStripeMetadata(ev, re.Metadata)
	return applyRefundStatus(ev, &re)
}

const stripeRefundRequiresAction stripe.RefundStatus = "requires_action"

// applyRefundStatus lets the refund object's own status override the event name.
// Only a succeeded refund settles as REFUND_SUCCESS. Pending and requires_action
// refunds have moved no money and yield domain.ErrNonTerminalCallback.
func applyRefundStatus(ev *domain.CanonicalEvent, re *stripe.Refund) error {
	switch re.Status {
	case stripe.RefundStatusSucceeded:
		ev.Type = domain.CallbackRefundSuccess
	case stripe.RefundStatusFailed, stripe.RefundStatusCanceled:
		ev.Type = domain.CallbackRefundFailed
		ev.ErrorCode = string(re.FailureReason)
		if ev.ErrorCode == "" {
			ev.ErrorCode = string(re.Status)
		}
	case stripe.RefundStatusPending, stripeRefundRequiresAction:
		return fmt.Errorf("%s: %w: refund %s is %s", GatewayStripe, domain.ErrNonTerminalCallback, re.ID, re.Status)
	default:
		return nil
	}
	delete(ev.Metadata, domain.MetadataMappingFallback)
	return nil
}

func applyStripeMetadata(ev *domain.CanonicalEvent, md map[string]string) {
	set := func(dst *string, key string) {
		if *dst == "" {
			*dst = md[key]
		}
	}
	set(&ev.PaymentRequestID, stripeMetaRequestID)
	set(&ev.PaymentTransactionID, stripeMetaTransactionID)
	set(&ev.PaymentRefundID, stripeMetaRefundID)
	set(&ev.PaymentToken, stripeMetaToken)
	set(&ev.RequestCode, stripeMetaRequestCode)
	set(&ev.CorrelationID, stripeMetaCorrelationID)
}

func minorToDecimal(amount int64, currency string) decimal.Decimal {
	if zeroDecimalCurrencies[currency] {
		return decimal.NewFromInt(amount)
	}
	return decimal.New(amount, -2)
}

// VerifyStripeSignature checks the Stripe-Signature header against the endpoint secret.
func VerifyStripeSignature(payload []byte, header, secret string) error {
	if err := stripewebhook.ValidatePayload(payload, header, secret); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}
