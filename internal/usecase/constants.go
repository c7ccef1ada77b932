package usecase

import "time"

const (
	// DefaultMessageTimeout bounds one saga run, including collaborator I/O and publish.
	DefaultMessageTimeout = 30 * time.Second

	// IdempotencyKeyTTL is how long processed callback keys are remembered
	IdempotencyKeyTTL = 24 * time.Hour

	// ClaimTTL is how long an in-progress claim blocks redelivered copies.
	// It must outlive DefaultMessageTimeout.
	ClaimTTL = 2 * time.Minute
)
