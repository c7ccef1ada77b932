package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus is the lifecycle status of a payment request.
type RequestStatus string

const (
	RequestStatusDraft         RequestStatus = "DRAFT"
	RequestStatusPending       RequestStatus = "PENDING"
	RequestStatusProcessing    RequestStatus = "PROCESSING"
	RequestStatusCompleted     RequestStatus = "COMPLETED"
	RequestStatusFailed        RequestStatus = "FAILED"
	RequestStatusCancelled     RequestStatus = "CANCELLED"
	RequestStatusVoided        RequestStatus = "VOIDED"
	RequestStatusRefunded      RequestStatus = "REFUNDED"
	RequestStatusPartialRefund RequestStatus = "PARTIAL_REFUND"
	RequestStatusApproved      RequestStatus = "APPROVED"
	RequestStatusRejected      RequestStatus = "REJECTED"
)

// CanAcceptPayment reports whether a payment may be recorded against the request.
func (s RequestStatus) CanAcceptPayment() bool {
	return s == RequestStatusPending
}

// CanCancel reports whether the request may be cancelled.
func (s RequestStatus) CanCancel() bool {
	return s == RequestStatusDraft || s == RequestStatusPending
}

// CanApprove reports whether the request may be approved or rejected by the gateway.
func (s RequestStatus) CanApprove() bool {
	return s == RequestStatusDraft || s == RequestStatusPending || s == RequestStatusProcessing
}

// CanMarkPaid reports whether a settled payment may complete the request.
// A payment accepted while PENDING can settle after the request moved to PROCESSING or APPROVED.
func (s RequestStatus) CanMarkPaid() bool {
	return s == RequestStatusPending || s == RequestStatusProcessing || s == RequestStatusApproved
}

// IsPaid reports whether the request has already been paid.
func (s RequestStatus) IsPaid() bool {
	return s == RequestStatusCompleted || s == RequestStatusPartialRefund || s == RequestStatusRefunded
}

// CanVoid reports whether the request may be voided.
func (s RequestStatus) CanVoid() bool {
	return s == RequestStatusCompleted
}

// CanRefund reports whether the request may be (further) refunded.
func (s RequestStatus) CanRefund() bool {
	return s == RequestStatusCompleted || s == RequestStatusPartialRefund
}

// IsTerminal reports whether no further transition is expected.
// COMPLETED is not terminal: it can still be voided or refunded.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case RequestStatusFailed, RequestStatusCancelled, RequestStatusVoided,
		RequestStatusRefunded, RequestStatusRejected:
		return true
	default:
		return false
	}
}

// IsValid reports whether s is a known request status.
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusDraft, RequestStatusPending, RequestStatusProcessing, RequestStatusCompleted,
		RequestStatusFailed, RequestStatusCancelled, RequestStatusVoided, RequestStatusRefunded,
		RequestStatusPartialRefund, RequestStatusApproved, RequestStatusRejected:
		return true
	default:
		return false
	}
}

var requestStatuses = []RequestStatus{
	RequestStatusDraft, RequestStatusPending, RequestStatusProcessing, RequestStatusCompleted,
	RequestStatusFailed, RequestStatusCancelled, RequestStatusVoided, RequestStatusRefunded,
	RequestStatusPartialRefund, RequestStatusApproved, RequestStatusRejected,
}

// RequestTransitionSources lists the statuses a request may move to target from.
// Stores use it as the precondition of a status update. Nil means no transition leads to target.
func RequestTransitionSources(target RequestStatus) []RequestStatus {
	var allowed func(RequestStatus) bool
	switch target {
	case RequestStatusApproved, RequestStatusRejected:
		allowed = RequestStatus.CanApprove
	case RequestStatusCompleted:
		allowed = RequestStatus.CanMarkPaid
	case RequestStatusFailed:
		allowed = func(s RequestStatus) bool { return !s.IsTerminal() && !s.IsPaid() }
	case RequestStatusRefunded, RequestStatusPartialRefund:
		allowed = RequestStatus.CanRefund
	case RequestStatusCancelled:
		allowed = RequestStatus.CanCancel
	case RequestStatusVoided:
		allowed = RequestStatus.CanVoid
	default:
		return nil
	}

	var sources []RequestStatus
	for _, s := range requestStatuses {
		if s != target && allowed(s) {
			sources = append(sources, s)
		}
	}
	return sources
}

// PaymentRequest is the top-level aggregate a customer pays against.
type PaymentRequest struct {
	ID           string
	RequestCode  string
	PaymentToken string
	Amount       decimal.Decimal
	Currency     string
	Status       RequestStatus
	StatusReason string
	PaidAt       *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
