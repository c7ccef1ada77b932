package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors
var (
	ErrInvalidCurrency = errors.New("invalid currency code")
)

// Pagination limits for audit queries.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NormalizeCurrency upper-cases a currency code and checks it has the ISO 4217
// shape of three ASCII letters. Whether the code is in circulation is the
// gateway's concern; any well-formed code is accepted.
func NormalizeCurrency(currency string) (string, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if len(currency) != 3 {
		return "", fmt.Errorf("%w: %q is not a three-letter code", ErrInvalidCurrency, currency)
	}
	for i := 0; i < len(currency); i++ {
		if currency[i] < 'A' || currency[i] > 'Z' {
			return "", fmt.Errorf("%w: %q is not a three-letter code", ErrInvalidCurrency, currency)
		}
	}

	return currency, nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
