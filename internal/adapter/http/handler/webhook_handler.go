package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/paysaga/internal/adapter/http/dto"
	"github.com/iho/paysaga/internal/domain"
	"github.com/iho/paysaga/internal/webhook"
)

// MaxWebhookBodyBytes caps the size of an accepted webhook body.
const MaxWebhookBodyBytes = 1 << 20

// WebhookService defines the interface for webhook ingestion.
type WebhookService interface {
	Accept(ctx context.Context, gateway string, raw []byte) (*domain.CanonicalEvent, error)
}

// WebhookHandler handles gateway webhook deliveries.
type WebhookHandler struct {
	service      WebhookService
	stripeSecret string
}

// NewWebhookHandler creates a new WebhookHandler. An empty stripeSecret
// disables Stripe signature verification.
func NewWebhookHandler(service WebhookService, stripeSecret string) *WebhookHandler {
	return &WebhookHandler{service: service, stripeSecret: stripeSecret}
}

var knownGateways = map[string]bool{
	webhook.GatewayStripe:    true,
	webhook.GatewayPayPal:    true,
	webhook.GatewayBank:      true,
	webhook.GatewayCanonical: true,
}

// Receive handles POST /webhooks/{gateway}.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	gateway := chi.URLParam(r, "gateway")
	if !knownGateways[gateway] {
		writeError(w, http.StatusNotFound, "unknown gateway", gateway)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxWebhookBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload too large", "")
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read body", err.Error())
		return
	}

	if gateway == webhook.GatewayStripe && h.stripeSecret != "" {
		if err := webhook.VerifyStripeSignature(body, r.Header.Get("Stripe-Signature"), h.stripeSecret); err != nil {
			writeError(w, mapDomainError(err), "invalid signature", "")
			return
		}
	}

	ev, err := h.service.Accept(r.Context(), gateway, body)
	if errors.Is(err, domain.ErrNonTerminalCallback) {
		// Acknowledged so the gateway stops retrying; the final state arrives later.
		writeJSON(w, http.StatusOK, dto.WebhookAcceptedResponse{Status: "ignored"})
		return
	}
	if err != nil {
		status := mapDomainError(err)
		switch status {
		case http.StatusUnprocessableEntity:
			if errors.Is(err, webhook.ErrGatewayMismatch) {
				writeError(w, status, "payload does not match gateway", gateway)
				return
			}
			writeError(w, status, "unrecognized payload", "")
		case http.StatusBadRequest:
			writeError(w, status, "malformed payload", err.Error())
		default:
			writeError(w, status, "failed to accept webhook", "")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, dto.WebhookAcceptedResponse{
		Status:        "accepted",
		Type:          string(ev.Type),
		CorrelationID: ev.CorrelationID,
	})
}
