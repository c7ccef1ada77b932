package webhook

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/paysaga/internal/domain"
)

type bankNotification struct {
	Status           string          `json:"status"`
	Bank             string          `json:"bank"`
	NotificationID   string          `json:"notification_id"`
	Reference        string          `json:"reference"`
	RefundReference  string          `json:"refund_reference"`
	PaymentRequestID string          `json:"payment_request_id"`
	RequestCode      string          `json:"request_code"`
	PaymentToken     string          `json:"payment_token"`
	CorrelationID    string          `json:"correlation_id"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	ReasonCode       string          `json:"reason_code"`
	Reason           string          `json:"reason"`
	Timestamp        string          `json:"timestamp"`
}

// BankTransferParser handles bank transfer notifications, recognized by a top-level status.
type BankTransferParser struct{}

func NewBankTransferParser() *BankTransferParser {
	return &BankTransferParser{}
}

func (p *BankTransferParser) Name() string { return GatewayBank }

func (p *BankTransferParser) Supports(raw []byte) bool {
	s, ok := sniff(raw)
	return ok && s.hasStatus
}

func (p *BankTransferParser) Parse(raw []byte) (*domain.CanonicalEvent, error) {
	var n bankNotification
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, malformed(GatewayBank, err)
	}
	var response map[string]any
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, malformed(GatewayBank, err)
	}

	callbackType, exact := MapBankStatus(n.Status)
	gateway := GatewayBank
	if n.Bank != "" {
		gateway = GatewayBank + ":" + strings.ToLower(n.Bank)
	}

	ev := &domain.CanonicalEvent{
		Type:             callbackType,
		CorrelationID:    n.CorrelationID,
		PaymentRequestID: n.PaymentRequestID,
		PaymentToken:     n.PaymentToken,
		RequestCode:      n.RequestCode,
		Amount:           n.Amount,
		Currency:         strings.ToUpper(n.Currency),
		GatewayName:      gateway,
		GatewayResponse:  response,
		ErrorCode:        n.ReasonCode,
		ErrorMessage:     n.Reason,
		ReceivedAt:       parseTimestamp(n.Timestamp),
		Metadata: fallbackMetadata(map[string]string{
			domain.MetadataGatewayEvent:   n.Status,
			domain.MetadataGatewayEventID: n.NotificationID,
		}, exact),
	}

	if callbackType.IsRefundLevel() {
		ev.ExternalRefundID = n.RefundReference
		if ev.ExternalRefundID == "" {
			ev.ExternalRefundID = n.Reference
		}
		if n.RefundReference != "" {
			ev.ExternalTransactionID = n.Reference
		}
	} else {
		ev.ExternalTransactionID = n.Reference
	}

	return ev, nil
}
