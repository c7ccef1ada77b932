package webhook

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/paysaga/internal/domain"
)

type paypalEnvelope struct {
	ID           string          `json:"id"`
	EventType    string          `json:"event_type"`
	ResourceType string          `json:"resource_type"`
	Summary      string          `json:"summary"`
	CreateTime   string          `json:"create_time"`
	Resource     json.RawMessage `json:"resource"`
}

type paypalMoney struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paypalLink struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type paypalPurchaseUnit struct {
	ReferenceID string       `json:"reference_id"`
	CustomID    string       `json:"custom_id"`
	InvoiceID   string       `json:"invoice_id"`
	Amount      *paypalMoney `json:"amount"`
}

type paypalResource struct {
	ID            string               `json:"id"`
	Status        string               `json:"status"`
	CustomID      string               `json:"custom_id"`
	InvoiceID     string               `json:"invoice_id"`
	Amount        *paypalMoney         `json:"amount"`
	Links         []paypalLink         `json:"links"`
	PurchaseUnits []paypalPurchaseUnit `json:"purchase_units"`
	StatusDetails *struct {
		Reason string `json:"reason"`
	} `json:"status_details"`
	SupplementaryData *struct {
		RelatedIDs struct {
			OrderID   string `json:"order_id"`
			CaptureID string `json:"capture_id"`
		} `json:"related_ids"`
	} `json:"supplementary_data"`
}

// PayPalParser handles PayPal webhook notifications, recognized by event_type.
type PayPalParser struct{}

func NewPayPalParser() *PayPalParser {
	return &PayPalParser{}
}

func (p *PayPalParser) Name() string { return GatewayPayPal }

func (p *PayPalParser) Supports(raw []byte) bool {
	s, ok := sniff(raw)
	return ok && s.hasEventType
}

func (p *PayPalParser) Parse(raw []byte) (*domain.CanonicalEvent, error) {
	var env paypalEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, malformed(GatewayPayPal, err)
	}
	if len(env.Resource) == 0 || string(env.Resource) == "null" {
		return nil, malformed(GatewayPayPal, errors.New("missing resource"))
	}

	var res paypalResource
	if err := json.Unmarshal(env.Resource, &res); err != nil {
		return nil, malformed(GatewayPayPal, err)
	}
	var response map[string]any
	if err := json.Unmarshal(env.Resource, &response); err != nil {
		return nil, malformed(GatewayPayPal, err)
	}

	callbackType, exact := MapPayPalEvent(env.EventType)
	ev := &domain.CanonicalEvent{
		Type:            callbackType,
		GatewayName:     GatewayPayPal,
		GatewayResponse: response,
		ReceivedAt:      parseTimestamp(env.CreateTime),
		Metadata: fallbackMetadata(map[string]string{
			domain.MetadataGatewayEvent:   env.EventType,
			domain.MetadataGatewayEventID: env.ID,
		}, exact),
	}

	amount := res.Amount
	switch paypalResourceKind(env) {
	case "checkout-order":
		ev.PaymentToken = res.ID
		if len(res.PurchaseUnits) > 0 {
			pu := res.PurchaseUnits[0]
			ev.PaymentRequestID = pu.CustomID
			ev.RequestCode = pu.InvoiceID
			if ev.RequestCode == "" {
				ev.RequestCode = pu.ReferenceID
			}
			amount = pu.Amount
		}
	case "refund":
		ev.ExternalRefundID = res.ID
		ev.ExternalTransactionID = paypalCaptureID(res)
		ev.PaymentRequestID = res.CustomID
		ev.RequestCode = res.InvoiceID
	default:
		ev.ExternalTransactionID = res.ID
		ev.PaymentRequestID = res.CustomID
		ev.RequestCode = res.InvoiceID
		if res.SupplementaryData != nil {
			ev.PaymentToken = res.SupplementaryData.RelatedIDs.OrderID
		}
	}

	if amount != nil {
		value, err := decimal.NewFromString(amount.Value)
		if err != nil {
			return nil, malformed(GatewayPayPal, err)
		}
		ev.Amount = value
		ev.Currency = strings.ToUpper(amount.CurrencyCode)
	}

	if callbackType == domain.CallbackPaymentFailed || callbackType == domain.CallbackRefundFailed ||
		callbackType == domain.CallbackRequestRejected {
		if res.StatusDetails != nil {
			ev.ErrorCode = res.StatusDetails.Reason
		}
		if ev.ErrorCode == "" {
			ev.ErrorCode = res.Status
		}
		ev.ErrorMessage = env.Summary
	}

	return ev, nil
}

func paypalResourceKind(env paypalEnvelope) string {
	if env.ResourceType != "" {
		return strings.ToLower(env.ResourceType)
	}
	switch {
	case strings.HasPrefix(strings.ToUpper(env.EventType), "CHECKOUT.ORDER."):
		return "checkout-order"
	case strings.HasPrefix(strings.ToUpper(env.EventType), "PAYMENT.REFUND."),
		strings.EqualFold(env.EventType, "PAYMENT.CAPTURE.REFUNDED"):
		return "refund"
	default:
		return "capture"
	}
}

// paypalCaptureID finds the capture a refund belongs to via its "up" link.
func paypalCaptureID(res paypalResource) string {
	if res.SupplementaryData != nil && res.SupplementaryData.RelatedIDs.CaptureID != "" {
		return res.SupplementaryData.RelatedIDs.CaptureID
	}
	for _, l := range res.Links {
		if l.Rel != "up" {
			continue
		}
		if i := strings.LastIndex(l.Href, "/captures/"); i >= 0 {
			return strings.Trim(l.Href[i+len("/captures/"):], "/")
		}
	}
	return ""
}
