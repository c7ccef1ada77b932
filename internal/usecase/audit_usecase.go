package usecase

import (
	"context"

	"github.com/iho/paysaga/internal/domain"
)

type AuditUseCase struct {
	auditRepo AuditRepository
}

func NewAuditUseCase(auditRepo AuditRepository) *AuditUseCase {
	return &AuditUseCase{auditRepo: auditRepo}
}

// List returns audit entries matching filter, newest first, with pagination clamped.
func (uc *AuditUseCase) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)
	return uc.auditRepo.List(ctx, filter)
}
