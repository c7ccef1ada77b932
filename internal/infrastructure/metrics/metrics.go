package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Callback metrics
	CallbacksReceived     *prometheus.CounterVec
	CallbacksUnrecognized prometheus.Counter
	CallbacksMalformed    *prometheus.CounterVec
	CallbacksUnmatched    *prometheus.CounterVec
	CallbacksDuplicate    *prometheus.CounterVec
	CallbacksIgnored      *prometheus.CounterVec
	MappingFallbacks      *prometheus.CounterVec

	// Saga metrics
	SagaTransitions *prometheus.CounterVec
	SagaDuration    *prometheus.HistogramVec
	SagaErrors      *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated   *prometheus.CounterVec
	AuditWriteFailures prometheus.Counter

	// Domain event metrics
	DomainEventsPublished *prometheus.CounterVec
	PublishErrors         *prometheus.CounterVec
	OutboxPending         prometheus.Gauge

	// Messaging metrics
	MessagesConsumed   *prometheus.CounterVec
	MessagesDeadLetter *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBErrors  *prometheus.CounterVec
	DBRetries *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		// Callback metrics
		CallbacksReceived: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paysaga_callbacks_received_total",
				Help: "Total callbacks parsed into canonical events",
			},
			[]string{"gateway", "type"},
		),
		CallbacksUnrecognized: f.NewCounter(prometheus.CounterOpts{
			Name: "paysaga_callbacks_unrecognized_total",
			Help: "Total payloads no parser recognized",
		}),
		CallbacksMalformed: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paysaga_callbacks_malformed_total",
				Help: "Total recognized payloads that failed to parse",
			},
			[]string{"parser"},
		),
		CallbacksUnmatched: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paysaga_callbacks_unmatched_total",
				Help: "Total callbacks whose target aggregate could not be resolved",
			},
			[]string{"type"},
		),
		CallbacksDuplicate: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paysaga_callbacks_duplicate_total",
				Help: "Total callbacks skipped as duplicate deliveries",
			},
			[]string{"type"},
		),
		CallbacksIgnored: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paysaga_callbacks_ignored_total",
				Help: "Total callbacks reporting a non-terminal gateway state",
			},
			[]string{"parser"},
		),
		MappingFallbacks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paysaga_mapping_fallbacks_total",
				Help: "Total gateway values mapped through the default callback type",
			},
			[]string{"mapper"},
		),

		// Saga metrics
		SagaTransitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paysaga_saga_transitions_total",
				Help: "Total aggregate transition attempts",
			},
			[]string{"aggregate", "action", "outcome"},
		),
		SagaDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paysaga_saga_duration_seconds",
				Help:    "Duration of saga handling per callback",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		SagaErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paysaga_saga_errors_total",
				Help: "Total saga runs that failed and will be redelivered",
			},
			[]string{"type", "step"},
		),

		// Audit metrics
		AuditLogsCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paysaga_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action", "outcome"},
		),
		AuditWriteFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "paysaga_audit_write_failures_total",
			Help: "Total audit writes that failed after a transition was applied",
		}),

		// Domain event metrics
		DomainEventsPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paysaga_domain_events_published_total",
				Help: "Total domain events handed to the event bus",
			},
			[]string{"type"},
		),
		PublishErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paysaga_publish_errors_total",
				Help: "Total failed publish attempts",
			},
			[]string{"destination"},
		),
		OutboxPending: f.NewGauge(prometheus.GaugeOpts{
			Name: "paysaga_outbox_pending",
			Help: "Unpublished outbox events seen by the last relay poll",
		}),

		// Messaging metrics
		MessagesConsumed: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paysaga_messages_consumed_total",
				Help: "Total inbound messages handled",
			},
			[]string{"topic", "result"},
		),
		MessagesDeadLetter: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paysaga_messages_dead_letter_total",
				Help: "Total inbound messages routed to the dead-letter topic",
			},
			[]string{"reason"},
		),

		// API metrics
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paysaga_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paysaga_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paysaga_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),
		DBRetries: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paysaga_db_retries_total",
				Help: "Total retried database operations",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paysaga_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paysaga_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),
	}
}
