package domain

import (
	"time"
)

// AuditLog is an append-only record of a transition attempt on an aggregate.
type AuditLog struct {
	ID             string
	AggregateType  string // payment_request, payment_transaction, payment_refund
	AggregateID    string
	Action         string // callback type that triggered the attempt, e.g. PAYMENT_SUCCESS
	PreviousStatus string
	NewStatus      string
	Note           string
	Outcome        AuditOutcome
	CorrelationID  string
	GatewayName    string
	CreatedAt      time.Time
}

// AuditOutcome records whether the attempted transition was applied.
type AuditOutcome string

const (
	AuditOutcomeApplied  AuditOutcome = "applied"
	AuditOutcomeRejected AuditOutcome = "rejected"
)

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	AggregateType string
	AggregateID   string
	Action        string
	CorrelationID string
	StartDate     *time.Time
	EndDate       *time.Time
	Limit         int
	Offset        int
}
