package dto

import (
	"time"

	"github.com/iho/paysaga/internal/domain"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WebhookAcceptedResponse acknowledges an enqueued webhook.
type WebhookAcceptedResponse struct {
	Status        string `json:"status"`
	Type          string `json:"type,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// AuditLogResponse represents an audit entry in API responses.
type AuditLogResponse struct {
	ID             string    `json:"id"`
	AggregateType  string    `json:"aggregate_type"`
	AggregateID    string    `json:"aggregate_id"`
	Action         string    `json:"action"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	NewStatus      string    `json:"new_status,omitempty"`
	Note           string    `json:"note,omitempty"`
	Outcome        string    `json:"outcome"`
	CorrelationID  string    `json:"correlation_id,omitempty"`
	GatewayName    string    `json:"gateway_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// AuditLogFromDomain converts a domain audit log to response.
func AuditLogFromDomain(l *domain.AuditLog) *AuditLogResponse {
	return &AuditLogResponse{
		ID:             l.ID,
		AggregateType:  l.AggregateType,
		AggregateID:    l.AggregateID,
		Action:         l.Action,
		PreviousStatus: l.PreviousStatus,
		NewStatus:      l.NewStatus,
		Note:           l.Note,
		Outcome:        string(l.Outcome),
		CorrelationID:  l.CorrelationID,
		GatewayName:    l.GatewayName,
		CreatedAt:      l.CreatedAt,
	}
}

// AuditListResponse is a page of audit entries.
type AuditListResponse struct {
	Items  []*AuditLogResponse `json:"items"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

// AuditLogsFromDomain converts domain audit logs to a page response.
func AuditLogsFromDomain(logs []*domain.AuditLog, limit, offset int) *AuditListResponse {
	items := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		items[i] = AuditLogFromDomain(l)
	}
	return &AuditListResponse{Items: items, Limit: limit, Offset: offset}
}
