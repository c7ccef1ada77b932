package webhook

import (
	"errors"

	"github.com/iho/paysaga/internal/domain"
)

// ErrUnrecognizedPayload is returned when no parser supports a payload.
// It is distinct from domain.ErrMalformedPayload.
var ErrUnrecognizedPayload = errors.New("unrecognized callback payload")

// ErrGatewayMismatch is returned when a payload posted to one gateway's endpoint
// is recognized as another gateway's.
var ErrGatewayMismatch = errors.New("payload does not belong to the webhook gateway")

// Selector tries parsers in a fixed priority order; the first match wins.
type Selector struct {
	parsers []Parser
}

// NewSelector returns a selector over the given parsers, in priority order.
func NewSelector(parsers ...Parser) *Selector {
	return &Selector{parsers: append([]Parser(nil), parsers...)}
}

// DefaultSelector returns the production ordering: Stripe, PayPal, canonical, bank.
func DefaultSelector() *Selector {
	return NewSelector(
		NewStripeParser(),
		NewPayPalParser(),
		NewCanonicalParser(),
		NewBankTransferParser(),
	)
}

// Select returns the highest-priority parser supporting raw.
func (s *Selector) Select(raw []byte) (Parser, bool) {
	for _, p := range s.parsers {
		if p.Supports(raw) {
			return p, true
		}
	}
	return nil, false
}

// Parse selects a parser and runs it.
func (s *Selector) Parse(raw []byte) (*domain.CanonicalEvent, error) {
	p, ok := s.Select(raw)
	if !ok {
		return nil, ErrUnrecognizedPayload
	}
	return p.Parse(raw)
}

// Parsers returns the configured parsers in priority order.
func (s *Selector) Parsers() []Parser {
	return append([]Parser(nil), s.parsers...)
}
