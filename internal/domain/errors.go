package domain

import "errors"

var (
	// Callback errors
	ErrMalformedPayload    = errors.New("malformed callback payload")
	ErrUnknownCallbackType = errors.New("unknown callback type")
	ErrInvalidAmount       = errors.New("amount must not be negative")
	ErrNonTerminalCallback = errors.New("callback reports a non-terminal state")

	// Aggregate errors
	ErrPaymentRequestNotFound     = errors.New("payment request not found")
	ErrPaymentTransactionNotFound = errors.New("payment transaction not found")
	ErrPaymentRefundNotFound      = errors.New("payment refund not found")
	ErrInvalidStatus              = errors.New("invalid status")
	ErrStatusConflict             = errors.New("aggregate status changed concurrently")
)
