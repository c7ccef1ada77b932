package domain

import (
	"errors"
	"testing"
)

func TestNormalizeCurrency(t *testing.T) {
	tests := []struct {
		input       string
		want        string
		expectError bool
	}{
		{"USD", "USD", false},
		{" eur ", "EUR", false},
		{"jpy", "JPY", false},
		{"AED", "AED", false},
		{"clp", "CLP", false},
		{"XXX", "XXX", false},
		{"", "", true},
		{"US", "", true},
		{"USDT", "", true},
		{"U5D", "", true},
		{"ÜSD", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeCurrency(tt.input)
			if tt.expectError {
				if !errors.Is(err, ErrInvalidCurrency) {
					t.Errorf("expected ErrInvalidCurrency, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValidatePagination(t *testing.T) {
	tests := []struct {
		name              string
		limit, offset     int
		wantLim, wantOffs int
	}{
		{"defaults", 0, 0, DefaultPageSize, 0},
		{"negative", -5, -1, DefaultPageSize, 0},
		{"capped", 500, 10, MaxPageSize, 10},
		{"passthrough", 25, 50, 25, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lim, off := ValidatePagination(tt.limit, tt.offset)
			if lim != tt.wantLim || off != tt.wantOffs {
				t.Errorf("got (%d, %d), want (%d, %d)", lim, off, tt.wantLim, tt.wantOffs)
			}
		})
	}
}
