package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the status of a payment transaction or refund.
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "PENDING"
	TransactionStatusProcessing TransactionStatus = "PROCESSING"
	TransactionStatusSuccess    TransactionStatus = "SUCCESS"
	TransactionStatusFailed     TransactionStatus = "FAILED"
	TransactionStatusCancelled  TransactionStatus = "CANCELLED"

	// transactionStatusCompletedAlias is accepted on input and folded into SUCCESS.
	transactionStatusCompletedAlias = "COMPLETED"
)

// ParseTransactionStatus normalizes a stored or wire status, folding COMPLETED into SUCCESS.
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	switch v := strings.ToUpper(strings.TrimSpace(s)); v {
	case transactionStatusCompletedAlias:
		return TransactionStatusSuccess, nil
	case string(TransactionStatusPending), string(TransactionStatusProcessing),
		string(TransactionStatusSuccess), string(TransactionStatusFailed), string(TransactionStatusCancelled):
		return TransactionStatus(v), nil
	default:
		return "", fmt.Errorf("%w: transaction status %q", ErrInvalidStatus, s)
	}
}

// IsSuccess reports whether s is the terminal success state.
func (s TransactionStatus) IsSuccess() bool {
	return s == TransactionStatusSuccess
}

// IsRetryable reports whether a new attempt may follow s.
func (s TransactionStatus) IsRetryable() bool {
	return s == TransactionStatusFailed || s == TransactionStatusCancelled
}

// UnmarshalJSON accepts the COMPLETED alias.
func (s *TransactionStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTransactionStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// TransactionTransitionSources lists the statuses a transaction or refund may move to target from.
// SUCCESS is final: nothing leaves it.
func TransactionTransitionSources(target TransactionStatus) []TransactionStatus {
	switch target {
	case TransactionStatusSuccess:
		return []TransactionStatus{TransactionStatusPending, TransactionStatusProcessing, TransactionStatusFailed, TransactionStatusCancelled}
	case TransactionStatusFailed:
		return []TransactionStatus{TransactionStatusPending, TransactionStatusProcessing, TransactionStatusCancelled}
	default:
		return nil
	}
}

// PaymentTransaction is one gateway attempt to collect a payment request.
type PaymentTransaction struct {
	ID                    string
	PaymentRequestID      string
	ExternalTransactionID string
	Amount                decimal.Decimal
	Currency              string
	Status                TransactionStatus
	GatewayName           string
	GatewayResponse       map[string]any
	ErrorCode             string
	ErrorMessage          string
	ProcessedAt           *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// PaymentRefund is a refund issued against a settled transaction.
type PaymentRefund struct {
	ID                   string
	PaymentTransactionID string
	ExternalRefundID     string
	Amount               decimal.Decimal
	Currency             string
	Status               TransactionStatus
	GatewayResponse      map[string]any
	ErrorCode            string
	ErrorMessage         string
	ProcessedAt          *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IsFullRefund reports whether refunding amount against the original transaction
// amount settles the whole payment.
func IsFullRefund(transactionAmount, refundAmount decimal.Decimal) bool {
	return refundAmount.GreaterThanOrEqual(transactionAmount)
}
