package handler

import (
	"context"
	"net/http"

	"github.com/iho/paysaga/internal/adapter/http/dto"
	"github.com/iho/paysaga/internal/domain"
)

// AuditService defines the interface for audit log queries.
type AuditService interface {
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// AuditHandler serves the audit trail.
type AuditHandler struct {
	service AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(service AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// List handles GET /api/v1/audit.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := domain.AuditFilter{
		AggregateType: q.Get("aggregate_type"),
		AggregateID:   q.Get("aggregate_id"),
		Action:        q.Get("action"),
		CorrelationID: q.Get("correlation_id"),
		Limit:         parseIntQuery(r, "limit", domain.DefaultPageSize),
		Offset:        parseIntQuery(r, "offset", 0),
	}

	var err error
	if filter.StartDate, err = parseTimeQuery(r, "start_date"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date", err.Error())
		return
	}
	if filter.EndDate, err = parseTimeQuery(r, "end_date"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date", err.Error())
		return
	}

	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)

	logs, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list audit logs", "")
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs, filter.Limit, filter.Offset))
}
