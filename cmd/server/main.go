package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/paysaga/internal/adapter/http"
	"github.com/iho/paysaga/internal/adapter/http/handler"
	messaging "github.com/iho/paysaga/internal/adapter/messaging/kafka"
	postgresRepo "github.com/iho/paysaga/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/paysaga/internal/adapter/repository/redis"
	"github.com/iho/paysaga/internal/infrastructure/config"
	"github.com/iho/paysaga/internal/infrastructure/eventpublisher"
	kafkainfra "github.com/iho/paysaga/internal/infrastructure/kafka"
	"github.com/iho/paysaga/internal/infrastructure/logger"
	"github.com/iho/paysaga/internal/infrastructure/metrics"
	"github.com/iho/paysaga/internal/infrastructure/postgres"
	"github.com/iho/paysaga/internal/infrastructure/redis"
	"github.com/iho/paysaga/internal/usecase"
	"github.com/iho/paysaga/internal/webhook"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	m := metrics.New(prometheus.DefaultRegisterer)

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return err
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	checks := []handler.HealthCheck{{Name: "postgres", Ping: pool.Ping}}

	// Connect to Redis
	var store usecase.IdempotencyStore
	if cfg.RedisEnabled {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL, redis.Options{})
		if err != nil {
			return err
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")

		store = redisRepo.NewIdempotencyStore(redisClient, m)
		checks = append(checks, handler.HealthCheck{Name: "redis", Ping: redis.Pinger(redisClient)})
	} else {
		log.Warn().Msg("redis disabled, duplicate deliveries rely on aggregate guards")
	}

	producer := kafkainfra.NewProducer(cfg.KafkaBrokers, log)
	defer producer.Close()

	// Initialize repositories
	retrier := postgresRepo.NewRetrier(log, m)
	requestRepo := postgresRepo.NewPaymentRequestRepository(pool, retrier)
	transactionRepo := postgresRepo.NewPaymentTransactionRepository(pool, retrier)
	refundRepo := postgresRepo.NewPaymentRefundRepository(pool, retrier)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	publisher, relay := newEventPublisher(cfg, producer, outboxRepo, log, m)

	// Initialize use cases
	saga := usecase.NewSagaOrchestrator(requestRepo, transactionRepo, refundRepo, auditRepo, publisher, idGen, m, log)
	parser := usecase.NewCallbackParser(webhook.DefaultSelector(), m, log)
	callbackUC := usecase.NewCallbackUseCase(parser, saga, store, cfg.IdempotencyTTL, log)
	webhookUC := usecase.NewWebhookUseCase(parser, messaging.NewCallbackPublisher(producer, cfg.KafkaInboundTopic), log)
	auditUC := usecase.NewAuditUseCase(auditRepo)

	callbackHandler := messaging.NewCallbackHandler(callbackUC, producer, cfg.KafkaDLQTopic, m, log)
	consumer := kafkainfra.NewConsumer(kafkainfra.ConsumerConfig{
		Brokers:        cfg.KafkaBrokers,
		GroupID:        cfg.KafkaGroupID,
		Topic:          cfg.KafkaInboundTopic,
		Workers:        cfg.KafkaWorkers,
		MessageTimeout: cfg.MessageTimeout,
	}, log, m)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		WebhookHandler: handler.NewWebhookHandler(webhookUC, cfg.StripeWebhookSecret),
		AuditHandler:   handler.NewAuditHandler(auditUC),
		HealthHandler:  handler.NewHealthHandler(checks...),
		MetricsHandler: promhttp.Handler(),
		Metrics:        m,
		Logger:         log,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return consumer.Run(gctx, callbackHandler.Handle)
	})

	if relay != nil {
		g.Go(func() error {
			if err := relay.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

// newEventPublisher picks how domain events leave the saga. In outbox mode
// it also returns the relay that drains the outbox to the outbound topic.
func newEventPublisher(
	cfg *config.Config,
	producer messaging.Producer,
	outboxRepo usecase.OutboxRepository,
	log zerolog.Logger,
	m *metrics.Metrics,
) (usecase.EventPublisher, *eventpublisher.Relay) {
	direct := messaging.NewDomainEventPublisher(producer, cfg.KafkaOutboundTopic)

	switch cfg.EventDelivery {
	case config.DeliveryOutbox:
		relay := eventpublisher.NewRelay(eventpublisher.Config{
			OutboxRepo: outboxRepo,
			Publisher:  direct,
			Logger:     log,
			Metrics:    m,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxInterval,
			Retention:  cfg.OutboxRetention,
		})
		return usecase.NewOutboxPublisher(outboxRepo), relay
	case config.DeliveryLog:
		return eventpublisher.NewLogPublisher(log), nil
	default:
		return direct, nil
	}
}
