package eventpublisher

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/paysaga/internal/domain"
	"github.com/iho/paysaga/internal/infrastructure/metrics"
	"github.com/iho/paysaga/internal/usecase"
)

// Relay publishes domain events stored in the outbox.
type Relay struct {
	outboxRepo  usecase.OutboxRepository
	publisher   usecase.EventPublisher
	logger      zerolog.Logger
	metrics     *metrics.Metrics
	batchSize   int
	interval    time.Duration
	retention   time.Duration
	lastCleanup time.Time
	now         func() time.Time
}

// Config for Relay.
type Config struct {
	OutboxRepo usecase.OutboxRepository
	Publisher  usecase.EventPublisher
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
	BatchSize  int           // Number of events to fetch per batch
	Interval   time.Duration // Polling interval
	Retention  time.Duration // How long published events are kept
}

// NewRelay creates a new Relay.
func NewRelay(cfg Config) *Relay {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.Retention == 0 {
		cfg.Retention = 7 * 24 * time.Hour
	}

	return &Relay{
		outboxRepo: cfg.OutboxRepo,
		publisher:  cfg.Publisher,
		logger:     cfg.Logger.With().Str("component", "outbox_relay").Logger(),
		metrics:    cfg.Metrics,
		batchSize:  cfg.BatchSize,
		interval:   cfg.Interval,
		retention:  cfg.Retention,
		now:        time.Now,
	}
}

// Start runs the relay until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	r.logger.Info().
		Int("batch_size", r.batchSize).
		Dur("interval", r.interval).
		Msg("outbox relay started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Process immediately on start
	r.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("outbox relay shutting down")
			return ctx.Err()
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Relay) tick(ctx context.Context) {
	if _, err := r.processEvents(ctx); err != nil {
		r.logger.Error().Err(err).Msg("error processing outbox events")
	}
	if err := r.cleanup(ctx); err != nil {
		r.logger.Error().Err(err).Msg("error purging published outbox events")
	}
}

// processEvents publishes one batch in creation order and returns how many were delivered.
// A failed publish ends the batch so later events never overtake it.
func (r *Relay) processEvents(ctx context.Context) (int, error) {
	events, err := r.outboxRepo.GetUnpublished(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	if r.metrics != nil {
		r.metrics.OutboxPending.Set(float64(len(events)))
	}
	if len(events) == 0 {
		return 0, nil
	}

	r.logger.Debug().Int("count", len(events)).Msg("processing outbox events")

	delivered := 0
	for _, event := range events {
		if err := r.publishEvent(ctx, event); err != nil {
			if r.metrics != nil {
				r.metrics.PublishErrors.WithLabelValues("outbox_relay").Inc()
			}
			r.logger.Error().Err(err).
				Str("event_id", event.ID).
				Str("event_type", event.EventType).
				Msg("failed to publish outbox event")
			break
		}

		// A failed mark means the event is delivered again on the next tick.
		if err := r.outboxRepo.MarkPublished(ctx, event.ID, r.now().UTC()); err != nil {
			r.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to mark outbox event as published")
			break
		}
		delivered++
	}

	if r.metrics != nil {
		r.metrics.OutboxPending.Set(float64(len(events) - delivered))
	}
	return delivered, nil
}

func (r *Relay) publishEvent(ctx context.Context, event *domain.OutboxEvent) error {
	if err := r.publisher.Publish(ctx, event.ToDomainEvent()); err != nil {
		return err
	}

	if r.metrics != nil {
		r.metrics.DomainEventsPublished.WithLabelValues(event.EventType).Inc()
	}
	r.logger.Debug().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("aggregate_type", event.AggregateType).
		Str("aggregate_id", event.AggregateID).
		Msg("outbox event published")

	return nil
}

// cleanup purges published events past retention, at most once per hour.
func (r *Relay) cleanup(ctx context.Context) error {
	now := r.now()
	if now.Sub(r.lastCleanup) < time.Hour {
		return nil
	}
	r.lastCleanup = now
	return r.outboxRepo.DeletePublished(ctx, now.Add(-r.retention))
}

// LogPublisher writes domain events to the log instead of a broker.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With().Str("component", "log_publisher").Logger()}
}

// Publish logs the event in its wire shape.
func (p *LogPublisher) Publish(ctx context.Context, event *domain.DomainEvent) error {
	body, err := event.Marshal()
	if err != nil {
		return err
	}

	p.logger.Info().
		Str("event_type", event.Type).
		Str("aggregate_type", event.AggregateType).
		Str("aggregate_id", event.AggregateID).
		RawJSON("event", body).
		Msg("domain event published")

	return nil
}
