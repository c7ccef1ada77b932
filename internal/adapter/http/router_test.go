package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/iho/paysaga/internal/adapter/http/handler"
	"github.com/iho/paysaga/internal/domain"
	"github.com/iho/paysaga/internal/infrastructure/metrics"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_WebhookRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.Metrics = m
		cfg.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/canonical", strings.NewReader(`{"type":"PAYMENT_SUCCESS"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	counter := m.HTTPRequests.WithLabelValues(http.MethodPost, "/webhooks/{gateway}", "202")
	if got := testutil.ToFloat64(counter); got != 1 {
		t.Fatalf("expected webhook request to be counted, got %v", got)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "paysaga_http_requests_total") {
		t.Fatalf("expected metrics endpoint to expose http counters")
	}
}

func TestNewRouter_RecoversFromPanics(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.AuditHandler = handler.NewAuditHandler(panickingAuditService{})
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", rec.Code)
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.MetricsHandler = promhttp.Handler()
	}))

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /metrics",
		"POST /webhooks/{gateway}",
		"GET /api/v1/audit",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	cfg := RouterConfig{
		WebhookHandler: handler.NewWebhookHandler(stubWebhookService{}, ""),
		AuditHandler:   handler.NewAuditHandler(stubAuditService{}),
		HealthHandler:  handler.NewHealthHandler(),
		Logger:         zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubWebhookService struct{}

func (stubWebhookService) Accept(ctx context.Context, gateway string, raw []byte) (*domain.CanonicalEvent, error) {
	return &domain.CanonicalEvent{Type: domain.CallbackPaymentSuccess}, nil
}

type stubAuditService struct{}

func (stubAuditService) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	return []*domain.AuditLog{}, nil
}

type panickingAuditService struct{}

func (panickingAuditService) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	panic("boom")
}
