// Package webhook turns raw gateway notifications into canonical callback events.
package webhook

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/iho/paysaga/internal/domain"
)

// Gateway names recorded on canonical events.
const (
	GatewayStripe    = "stripe"
	GatewayPayPal    = "paypal"
	GatewayBank      = "bank"
	GatewayCanonical = "canonical"
)

// Parser recognizes one gateway payload shape and converts it to a canonical event.
// Parse must only be called on payloads for which Supports returned true.
type Parser interface {
	Name() string
	Supports(raw []byte) bool
	Parse(raw []byte) (*domain.CanonicalEvent, error)
}

// shape holds the top-level discriminator fields used for detection.
// Only string values count; a field of any other JSON type is treated as absent.
type shape struct {
	Type      string
	EventType string
	Status    string

	hasType, hasEventType, hasStatus bool
}

func sniff(raw []byte) (shape, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return shape{}, false
	}

	var s shape
	s.Type, s.hasType = stringField(fields, "type")
	s.EventType, s.hasEventType = stringField(fields, "event_type")
	s.Status, s.hasStatus = stringField(fields, "status")
	return s, true
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	v, ok := fields[key]
	if !ok || string(v) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

func malformed(gateway string, err error) error {
	return fmt.Errorf("%s: %w: %v", gateway, domain.ErrMalformedPayload, err)
}

func fallbackMetadata(md map[string]string, exact bool) map[string]string {
	if md == nil {
		md = map[string]string{}
	}
	if !exact {
		md[domain.MetadataMappingFallback] = "true"
	}
	return md
}

// parseTimestamp accepts RFC 3339 strings; anything else yields the zero time.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
