package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/paysaga/internal/domain"
)

const paymentRefundColumns = `id, payment_transaction_id, COALESCE(external_refund_id, ''), amount, currency,
	status, gateway_response, error_code, error_message, processed_at, created_at, updated_at`

// PaymentRefundRepository implements usecase.PaymentRefundService.
type PaymentRefundRepository struct {
	db      DBTX
	retrier *Retrier
}

func NewPaymentRefundRepository(db DBTX, retrier *Retrier) *PaymentRefundRepository {
	return &PaymentRefundRepository{db: db, retrier: retrier}
}

func (r *PaymentRefundRepository) FindByExternalID(ctx context.Context, externalRefundID string) (*domain.PaymentRefund, bool, error) {
	row := r.db.QueryRow(ctx, `SELECT `+paymentRefundColumns+` FROM payment_refunds WHERE external_refund_id = $1`, externalRefundID)

	refund, err := scanPaymentRefund(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get payment refund by external id: %w", err)
	}
	return refund, true, nil
}

func (r *PaymentRefundRepository) MarkProcessed(ctx context.Context, id, externalRefundID string, response map[string]any) (*domain.PaymentRefund, error) {
	payload, err := marshalJSONB(response)
	if err != nil {
		return nil, err
	}

	return r.update(ctx, id, "mark_refund_processed", `
		UPDATE payment_refunds
		SET status = $2, external_refund_id = COALESCE($3, external_refund_id),
			gateway_response = COALESCE($4, gateway_response), processed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = ANY($5)
		RETURNING `+paymentRefundColumns,
		id, string(domain.TransactionStatusSuccess), nullText(externalRefundID), payload,
		transactionSources(domain.TransactionStatusSuccess),
	)
}

func (r *PaymentRefundRepository) MarkFailed(ctx context.Context, id, code, message string) (*domain.PaymentRefund, error) {
	return r.update(ctx, id, "mark_refund_failed", `
		UPDATE payment_refunds
		SET status = $2, error_code = $3, error_message = $4, updated_at = NOW()
		WHERE id = $1 AND status = ANY($5)
		RETURNING `+paymentRefundColumns,
		id, string(domain.TransactionStatusFailed), code, message,
		transactionSources(domain.TransactionStatusFailed),
	)
}

func (r *PaymentRefundRepository) update(ctx context.Context, id, operation, query string, args ...any) (*domain.PaymentRefund, error) {
	var refund *domain.PaymentRefund
	fn := func() error {
		var err error
		refund, err = scanPaymentRefund(r.db.QueryRow(ctx, query, args...))
		return err
	}

	var err error
	if r.retrier != nil {
		err = r.retrier.Retry(ctx, operation, fn)
	} else {
		err = fn()
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, explainNoRows(ctx, r.db, "payment_refunds", id, domain.ErrPaymentRefundNotFound)
		}
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return refund, nil
}

func scanPaymentRefund(row pgx.Row) (*domain.PaymentRefund, error) {
	var (
		refund      domain.PaymentRefund
		amount      pgtype.Numeric
		status      string
		response    []byte
		processedAt pgtype.Timestamptz
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)

	err := row.Scan(
		&refund.ID,
		&refund.PaymentTransactionID,
		&refund.ExternalRefundID,
		&amount,
		&refund.Currency,
		&status,
		&response,
		&refund.ErrorCode,
		&refund.ErrorMessage,
		&processedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	refund.Status, err = domain.ParseTransactionStatus(status)
	if err != nil {
		return nil, err
	}
	refund.Amount = numericToDecimal(amount)
	refund.GatewayResponse = unmarshalJSONB(response)
	refund.ProcessedAt = pgTimestamptzToPtr(processedAt)
	refund.CreatedAt = createdAt.Time
	refund.UpdatedAt = updatedAt.Time

	return &refund, nil
}
