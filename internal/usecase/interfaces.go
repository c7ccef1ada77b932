package usecase

import (
	"context"
	"time"

	"github.com/iho/paysaga/internal/domain"
)

// PaymentRequestService looks up and mutates payment requests.
// Lookups report a miss as found == false with a nil error.
type PaymentRequestService interface {
	GetByID(ctx context.Context, id string) (*domain.PaymentRequest, bool, error)
	FindByToken(ctx context.Context, token string) (*domain.PaymentRequest, bool, error)
	FindByCode(ctx context.Context, code string) (*domain.PaymentRequest, bool, error)
	UpdateStatus(ctx context.Context, id string, status domain.RequestStatus, reason string) (*domain.PaymentRequest, error)
	MarkPaid(ctx context.Context, id string, paidAt time.Time) (*domain.PaymentRequest, error)
}

// PaymentTransactionService looks up and mutates payment transactions.
type PaymentTransactionService interface {
	GetByID(ctx context.Context, id string) (*domain.PaymentTransaction, bool, error)
	FindByExternalID(ctx context.Context, externalID string) (*domain.PaymentTransaction, bool, error)
	MarkProcessed(ctx context.Context, id, externalID string, response map[string]any) (*domain.PaymentTransaction, error)
	MarkFailed(ctx context.Context, id, code, message string) (*domain.PaymentTransaction, error)
}

// PaymentRefundService looks up and mutates payment refunds.
type PaymentRefundService interface {
	FindByExternalID(ctx context.Context, externalRefundID string) (*domain.PaymentRefund, bool, error)
	MarkProcessed(ctx context.Context, id, externalRefundID string, response map[string]any) (*domain.PaymentRefund, error)
	MarkFailed(ctx context.Context, id, code, message string) (*domain.PaymentRefund, error)
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// EventPublisher hands domain events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.DomainEvent) error
}

// CallbackPublisher enqueues canonical events on the inbound callback topic.
type CallbackPublisher interface {
	PublishCallback(ctx context.Context, event *domain.CanonicalEvent) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore guards against duplicate callback deliveries.
type IdempotencyStore interface {
	// Claim marks key as in progress. It returns false if the key is already
	// claimed or completed.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Complete marks key as done for ttl.
	Complete(ctx context.Context, key string, ttl time.Duration) error
	// Release drops a claim so a redelivery can retry.
	Release(ctx context.Context, key string) error
}
