package webhook

import (
	"encoding/json"
	"strings"

	"github.com/iho/paysaga/internal/domain"
)

// CanonicalParser accepts events already in canonical wire form, as produced by
// the integrator adapter or by upstream services writing to the inbound topic.
type CanonicalParser struct{}

func NewCanonicalParser() *CanonicalParser {
	return &CanonicalParser{}
}

func (p *CanonicalParser) Name() string { return GatewayCanonical }

func (p *CanonicalParser) Supports(raw []byte) bool {
	s, ok := sniff(raw)
	if !ok || !s.hasType {
		return false
	}
	_, known := domain.ParseCallbackType(s.Type)
	return known
}

func (p *CanonicalParser) Parse(raw []byte) (*domain.CanonicalEvent, error) {
	var ev domain.CanonicalEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, malformed(GatewayCanonical, err)
	}

	t, _ := domain.ParseCallbackType(string(ev.Type))
	ev.Type = t
	ev.Currency = strings.ToUpper(ev.Currency)
	if ev.GatewayName == "" {
		ev.GatewayName = GatewayCanonical
	}
	if !ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = ev.ReceivedAt.UTC()
	}

	if err := ev.Validate(); err != nil {
		return nil, malformed(GatewayCanonical, err)
	}
	return &ev, nil
}
