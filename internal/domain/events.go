package domain

import (
	"encoding/json"
	"time"
)

// Event types
const (
	EventTypeRequestApproved = "request.approved"
	EventTypeRequestRejected = "request.rejected"
	EventTypePaymentSuccess  = "payment.success"
	EventTypePaymentFailed   = "payment.failed"
	EventTypeRefundSuccess   = "refund.success"
	EventTypeRefundFailed    = "refund.failed"
)

// Aggregate types
const (
	AggregateTypePaymentRequest     = "payment_request"
	AggregateTypePaymentTransaction = "payment_transaction"
	AggregateTypePaymentRefund      = "payment_refund"
)

// EventTypeFor returns the dotted domain event name emitted for a callback type.
func EventTypeFor(t CallbackType) string {
	switch t {
	case CallbackRequestApproved:
		return EventTypeRequestApproved
	case CallbackRequestRejected:
		return EventTypeRequestRejected
	case CallbackPaymentSuccess:
		return EventTypePaymentSuccess
	case CallbackPaymentFailed:
		return EventTypePaymentFailed
	case CallbackRefundSuccess:
		return EventTypeRefundSuccess
	case CallbackRefundFailed:
		return EventTypeRefundFailed
	default:
		return ""
	}
}

// DomainEvent is published downstream after a callback has been applied.
type DomainEvent struct {
	ID            string         `json:"-"`
	AggregateType string         `json:"-"`
	AggregateID   string         `json:"-"`
	Type          string         `json:"type"`
	CorrelationID *string        `json:"correlationId"`
	Payload       map[string]any `json:"payload"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// NewDomainEvent builds an event; an empty correlation id is published as null.
func NewDomainEvent(id, eventType, correlationID string, payload map[string]any, createdAt time.Time) *DomainEvent {
	var cid *string
	if correlationID != "" {
		cid = &correlationID
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return &DomainEvent{
		ID:            id,
		Type:          eventType,
		CorrelationID: cid,
		Payload:       payload,
		CreatedAt:     createdAt.UTC(),
	}
}

// PayloadEventKey names the payload field that carries DedupKey on the wire.
const PayloadEventKey = "eventKey"

// DedupKey identifies the transition the event reports: the event type and the
// aggregate it changed. Each aggregate reaches a given event type at most once,
// so a republished event carries the key of the original.
func (e *DomainEvent) DedupKey() string {
	if e.AggregateID == "" {
		return ""
	}
	return e.Type + ":" + e.AggregateID
}

// Key returns the partition key: the correlation id, or nil for unkeyed delivery.
func (e *DomainEvent) Key() []byte {
	if e.CorrelationID == nil || *e.CorrelationID == "" {
		return nil
	}
	return []byte(*e.CorrelationID)
}

// Marshal encodes the event in its wire shape.
func (e *DomainEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// OutboxEvent is a domain event persisted for later relay to the event bus.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	CorrelationID string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// ToDomainEvent rebuilds the wire event from its outbox row.
func (o *OutboxEvent) ToDomainEvent() *DomainEvent {
	ev := NewDomainEvent(o.ID, o.EventType, o.CorrelationID, o.Payload, o.CreatedAt)
	ev.AggregateType = o.AggregateType
	ev.AggregateID = o.AggregateID
	return ev
}

// NewOutboxEvent wraps a domain event for persistence.
func NewOutboxEvent(ev *DomainEvent) *OutboxEvent {
	cid := ""
	if ev.CorrelationID != nil {
		cid = *ev.CorrelationID
	}
	return &OutboxEvent{
		ID:            ev.ID,
		AggregateID:   ev.AggregateID,
		AggregateType: ev.AggregateType,
		EventType:     ev.Type,
		CorrelationID: cid,
		Payload:       ev.Payload,
		CreatedAt:     ev.CreatedAt,
	}
}
