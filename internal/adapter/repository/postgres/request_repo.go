package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/paysaga/internal/domain"
)

const paymentRequestColumns = `id, request_code, COALESCE(payment_token, ''), amount, currency, status,
	status_reason, paid_at, created_at, updated_at`

// PaymentRequestRepository implements usecase.PaymentRequestService.
type PaymentRequestRepository struct {
	db      DBTX
	retrier *Retrier
}

// NewPaymentRequestRepository creates a new PaymentRequestRepository.
func NewPaymentRequestRepository(db DBTX, retrier *Retrier) *PaymentRequestRepository {
	return &PaymentRequestRepository{db: db, retrier: retrier}
}

func (r *PaymentRequestRepository) GetByID(ctx context.Context, id string) (*domain.PaymentRequest, bool, error) {
	return r.findOne(ctx, "id", id)
}

func (r *PaymentRequestRepository) FindByToken(ctx context.Context, token string) (*domain.PaymentRequest, bool, error) {
	return r.findOne(ctx, "payment_token", token)
}

func (r *PaymentRequestRepository) FindByCode(ctx context.Context, code string) (*domain.PaymentRequest, bool, error) {
	return r.findOne(ctx, "request_code", code)
}

// findOne looks up a request by a unique column. column is never user input.
func (r *PaymentRequestRepository) findOne(ctx context.Context, column, value string) (*domain.PaymentRequest, bool, error) {
	row := r.db.QueryRow(ctx, `SELECT `+paymentRequestColumns+` FROM payment_requests WHERE `+column+` = $1`, value)

	req, err := scanPaymentRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get payment request by %s: %w", column, err)
	}
	return req, true, nil
}

// UpdateStatus sets status and reason and returns the updated request.
// The update applies only while the stored status may still transition to status;
// otherwise it fails with domain.ErrStatusConflict.
func (r *PaymentRequestRepository) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus, reason string) (*domain.PaymentRequest, error) {
	return r.update(ctx, "update_request_status", id, `
		UPDATE payment_requests SET status = $2, status_reason = $3, updated_at = NOW()
		WHERE id = $1 AND status = ANY($4)
		RETURNING `+paymentRequestColumns,
		id, string(status), reason, requestSources(status),
	)
}

// MarkPaid completes the request and stamps the payment time.
func (r *PaymentRequestRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time) (*domain.PaymentRequest, error) {
	return r.update(ctx, "mark_request_paid", id, `
		UPDATE payment_requests SET status = $2, paid_at = $3, updated_at = NOW()
		WHERE id = $1 AND status = ANY($4) AND paid_at IS NULL
		RETURNING `+paymentRequestColumns,
		id, string(domain.RequestStatusCompleted), timeToPgTimestamptz(paidAt), requestSources(domain.RequestStatusCompleted),
	)
}

func (r *PaymentRequestRepository) update(ctx context.Context, operation, id, query string, args ...any) (*domain.PaymentRequest, error) {
	var req *domain.PaymentRequest
	err := r.retry(ctx, operation, func() error {
		var err error
		req, err = scanPaymentRequest(r.db.QueryRow(ctx, query, args...))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, explainNoRows(ctx, r.db, "payment_requests", id, domain.ErrPaymentRequestNotFound)
		}
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return req, nil
}

func (r *PaymentRequestRepository) retry(ctx context.Context, operation string, fn func() error) error {
	if r.retrier == nil {
		return fn()
	}
	return r.retrier.Retry(ctx, operation, fn)
}

func scanPaymentRequest(row pgx.Row) (*domain.PaymentRequest, error) {
	var (
		req       domain.PaymentRequest
		amount    pgtype.Numeric
		status    string
		paidAt    pgtype.Timestamptz
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&req.ID,
		&req.RequestCode,
		&req.PaymentToken,
		&amount,
		&req.Currency,
		&status,
		&req.StatusReason,
		&paidAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	req.Amount = numericToDecimal(amount)
	req.Status = domain.RequestStatus(status)
	req.PaidAt = pgTimestamptzToPtr(paidAt)
	req.CreatedAt = createdAt.Time
	req.UpdatedAt = updatedAt.Time

	return &req, nil
}
