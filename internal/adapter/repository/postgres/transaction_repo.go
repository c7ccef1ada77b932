package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/paysaga/internal/domain"
)

const paymentTransactionColumns = `id, payment_request_id, COALESCE(external_transaction_id, ''), amount, currency,
	status, gateway_name, gateway_response, error_code, error_message, processed_at, created_at, updated_at`

// PaymentTransactionRepository implements usecase.PaymentTransactionService.
type PaymentTransactionRepository struct {
	db      DBTX
	retrier *Retrier
}

// NewPaymentTransactionRepository creates a new PaymentTransactionRepository.
func NewPaymentTransactionRepository(db DBTX, retrier *Retrier) *PaymentTransactionRepository {
	return &PaymentTransactionRepository{db: db, retrier: retrier}
}

func (r *PaymentTransactionRepository) GetByID(ctx context.Context, id string) (*domain.PaymentTransaction, bool, error) {
	return r.findOne(ctx, "id", id)
}

func (r *PaymentTransactionRepository) FindByExternalID(ctx context.Context, externalID string) (*domain.PaymentTransaction, bool, error) {
	return r.findOne(ctx, "external_transaction_id", externalID)
}

func (r *PaymentTransactionRepository) findOne(ctx context.Context, column, value string) (*domain.PaymentTransaction, bool, error) {
	row := r.db.QueryRow(ctx, `SELECT `+paymentTransactionColumns+` FROM payment_transactions WHERE `+column+` = $1`, value)

	txn, err := scanPaymentTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get payment transaction by %s: %w", column, err)
	}
	return txn, true, nil
}

// MarkProcessed records a successful gateway settlement.
func (r *PaymentTransactionRepository) MarkProcessed(ctx context.Context, id, externalID string, response map[string]any) (*domain.PaymentTransaction, error) {
	payload, err := marshalJSONB(response)
	if err != nil {
		return nil, err
	}

	return r.update(ctx, id, "mark_transaction_processed", `
		UPDATE payment_transactions
		SET status = $2, external_transaction_id = COALESCE($3, external_transaction_id),
			gateway_response = COALESCE($4, gateway_response), processed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = ANY($5)
		RETURNING `+paymentTransactionColumns,
		id, string(domain.TransactionStatusSuccess), nullText(externalID), payload,
		transactionSources(domain.TransactionStatusSuccess),
	)
}

// MarkFailed records a declined or failed gateway attempt.
func (r *PaymentTransactionRepository) MarkFailed(ctx context.Context, id, code, message string) (*domain.PaymentTransaction, error) {
	return r.update(ctx, id, "mark_transaction_failed", `
		UPDATE payment_transactions
		SET status = $2, error_code = $3, error_message = $4, updated_at = NOW()
		WHERE id = $1 AND status = ANY($5)
		RETURNING `+paymentTransactionColumns,
		id, string(domain.TransactionStatusFailed), code, message,
		transactionSources(domain.TransactionStatusFailed),
	)
}

func (r *PaymentTransactionRepository) update(ctx context.Context, id, operation, query string, args ...any) (*domain.PaymentTransaction, error) {
	var txn *domain.PaymentTransaction
	fn := func() error {
		var err error
		txn, err = scanPaymentTransaction(r.db.QueryRow(ctx, query, args...))
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
			return nil, explainNoRows(ctx, r.db, "payment_transactions", id, domain.ErrPaymentTransactionNotFound)
		}
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return txn, nil
}

func scanPaymentTransaction(row pgx.Row) (*domain.PaymentTransaction, error) {
	var (
		txn         domain.PaymentTransaction
		amount      pgtype.Numeric
		status      string
		response    []byte
		processedAt pgtype.Timestamptz
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)

	err := row.Scan(
		&txn.ID,
		&txn.PaymentRequestID,
		&txn.ExternalTransactionID,
		&amount,
		&txn.Currency,
		&status,
		&txn.GatewayName,
		&response,
		&txn.ErrorCode,
		&txn.ErrorMessage,
		&processedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Legacy rows may carry COMPLETED; it reads back as SUCCESS.
	txn.Status, err = domain.ParseTransactionStatus(status)
	if err != nil {
		return nil, err
	}
	txn.Amount = numericToDecimal(amount)
	txn.GatewayResponse = unmarshalJSONB(response)
	txn.ProcessedAt = pgTimestamptzToPtr(processedAt)
	txn.CreatedAt = createdAt.Time
	txn.UpdatedAt = updatedAt.Time

	return &txn, nil
}
