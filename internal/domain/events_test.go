package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewDomainEvent_WireShape(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	ev := NewDomainEvent("01J", EventTypeRequestApproved, "", map[string]any{"requestId": "R1"}, at)
	if ev.Key() != nil {
		t.Errorf("expected nil key without correlation id")
	}

	data, err := ev.Marshal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if decoded["type"] != "request.approved" {
		t.Errorf("unexpected type: %v", decoded["type"])
	}
	if v, present := decoded["correlationId"]; !present || v != nil {
		t.Errorf("expected correlationId to be null, got %v (present=%v)", v, present)
	}
	if decoded["createdAt"] != "2026-03-01T11:00:00Z" {
		t.Errorf("unexpected createdAt: %v", decoded["createdAt"])
	}
	if _, present := decoded["id"]; present {
		t.Errorf("id must not be part of the wire shape")
	}
	payload, _ := decoded["payload"].(map[string]any)
	if payload["requestId"] != "R1" {
		t.Errorf("unexpected payload: %v", decoded["payload"])
	}
}

func TestDomainEvent_Key(t *testing.T) {
	ev := NewDomainEvent("01J", EventTypePaymentSuccess, "corr-1", nil, time.Now())
	if string(ev.Key()) != "corr-1" {
		t.Errorf("unexpected key %q", ev.Key())
	}
	if ev.Payload == nil {
		t.Error("expected empty payload map")
	}
}

func TestEventTypeFor(t *testing.T) {
	for _, ct := range []CallbackType{
		CallbackRequestApproved, CallbackRequestRejected,
		CallbackPaymentSuccess, CallbackPaymentFailed,
		CallbackRefundSuccess, CallbackRefundFailed,
	} {
		if EventTypeFor(ct) == "" {
			t.Errorf("no event type for %s", ct)
		}
	}
	if EventTypeFor("UNKNOWN") != "" {
		t.Error("expected empty event type for unknown callback")
	}
}
