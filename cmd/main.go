package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/SergeyBogomolovv/order-lifecycle/docs"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/app"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/cache"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/codec"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/config"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/entities"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/handler"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/postgres"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/repo"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/service"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/tracing"
	localcache "github.com/SergeyBogomolovv/order-lifecycle/pkg/cache"
	"github.com/SergeyBogomolovv/order-lifecycle/pkg/trm"
	"github.com/SergeyBogomolovv/order-lifecycle/pkg/utils"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// @title           Order Lifecycle API
// @version         1.0
// @description     Приём команд по заказам и чтение проекций заказов
func main() {
	conf := config.New()
	logger := newLogger(conf.Env)
	panicIfErr("invalid config", conf.Validate())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, conf.Otel)
	panicIfErr("failed to setup tracing", err)
	defer shutdownTracing(context.Background())

	db, err := postgres.New(ctx, conf.Postgres)
	panicIfErr("failed to connect to db", err)
	defer db.Close()
	logger.Info("postgres connected")

	rdb := redis.NewClient(&redis.Options{
		Addr:        conf.Redis.Addr,
		Password:    conf.Redis.Password,
		DB:          conf.Redis.DB,
		DialTimeout: conf.Redis.DialTimeout,
		ReadTimeout: conf.Redis.ReadTimeout,
	})
	defer rdb.Close()

	orderRepo := repo.NewPostgresRepo(db)
	txManager := trm.NewManager(db)

	monitor := cache.NewMonitor(logger, rdb, conf.Redis.HealthInterval)
	if !monitor.Check(ctx) {
		logger.Warn("redis unavailable at startup", slog.String("addr", conf.Redis.Addr))
	}

	var (
		localOutcomes    *localcache.LRUCache[[]byte]
		localProjections *localcache.LRUCache[entities.Projection]
	)
	if conf.Redis.FallbackEnabled {
		localOutcomes = localcache.NewLRUCache[[]byte](conf.Redis.LocalCapacity, conf.Redis.LocalTTL)
		localProjections = localcache.NewLRUCache[entities.Projection](conf.Redis.LocalCapacity, conf.Redis.LocalTTL)
	}
	idempotency := cache.NewIdempotencyCache(logger, rdb, monitor, localOutcomes)
	projections := cache.NewProjectionStore(logger, rdb, monitor, localProjections, conf.Projection.TTL)

	eventCodec, err := codec.New(codec.Format(conf.Publisher.Format), conf.Publisher.Source)
	panicIfErr("invalid event format", err)

	eventsWriter := &kafka.Writer{
		Addr:         kafka.TCP(conf.Kafka.Brokers...),
		Topic:        conf.Kafka.EventsTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: conf.Kafka.BatchTimeout,
	}
	defer eventsWriter.Close()

	publisher := service.NewPublisher(logger, eventsWriter, eventCodec, orderRepo, service.PublisherConfig{
		Retry: utils.RetryConfig{
			MaxAttempts:  conf.Publisher.Attempts,
			InitialDelay: conf.Publisher.BaseDelay,
			MaxDelay:     conf.Publisher.MaxDelay,
			Jitter:       0.2,
		},
		WriteTimeout: conf.Publisher.WriteTimeout,
	})

	processor := service.NewProcessor(logger, txManager, orderRepo, idempotency, publisher, service.ProcessorConfig{
		MaxInFlight: conf.Pipeline.MaxInFlight,
		Conflict: utils.RetryConfig{
			MaxAttempts:  conf.Pipeline.ConflictAttempts,
			InitialDelay: conf.Pipeline.ConflictBaseDelay,
			MaxDelay:     conf.Pipeline.ConflictMaxDelay,
			Jitter:       0.5,
		},
		Store: utils.RetryConfig{
			MaxAttempts:  conf.Pipeline.StoreAttempts,
			InitialDelay: conf.Pipeline.StoreBaseDelay,
		},
		IdempotencyTTL:  conf.Pipeline.IdempotencyTTL,
		DeferRetryAfter: conf.Pipeline.DeferRetryAfter,
	})

	reconciler := service.NewReconciler(logger, orderRepo, publisher, service.ReconcilerConfig{
		Interval:    conf.Reconciler.Interval,
		GracePeriod: conf.Reconciler.GracePeriod,
		BatchSize:   conf.Reconciler.BatchSize,
	})

	projector := service.NewProjector(logger, projections, orderRepo)
	query := service.NewQueryService(logger, projections, projector)

	commandConsumer := handler.NewCommandConsumer(logger, processor, handler.NewDLQWriter(conf.Kafka),
		handler.NewKafkaReaders(conf.Kafka, conf.Kafka.GroupID, conf.Kafka.CommandsTopic, conf.Kafka.Consumers)...)
	eventConsumer := handler.NewEventConsumer(logger, codec.Decode, projector, handler.NewDLQWriter(conf.Kafka),
		handler.NewKafkaReaders(conf.Kafka, conf.Kafka.ProjectorGroupID, conf.Kafka.EventsTopic, conf.Kafka.Consumers)...)

	httpHandler := handler.NewHTTPHandler(logger, processor, query, monitor)
	healthHandler := handler.NewHealthHandler(logger, map[string]handler.Pinger{
		"postgres": orderRepo,
		"redis": handler.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}),
	})

	handler.RegisterMetrics()

	app := app.New(logger, conf)

	app.SetHTTPHandlers(httpHandler, healthHandler)
	app.SetConsumers(commandConsumer, eventConsumer)
	app.SetStarters(monitor, reconciler)
	if conf.Redis.FallbackEnabled {
		app.SetStarters(localOutcomes, localProjections)
	}

	panicIfErr("failed to start app", app.Start(ctx))
	select {
	case <-ctx.Done():
	case <-app.Done():
		logger.Error("application failed, shutting down")
	}
	panicIfErr("failed to stop app", app.Stop())
}

func init() {
	godotenv.Load()
}

func newLogger(env string) *slog.Logger {
	switch env {
	case "production":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func panicIfErr(prefix string, err error) {
	if err != nil {
		panic(prefix + ": " + err.Error())
	}
}
