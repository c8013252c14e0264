package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	catalogapp "github.com/pharmalink/backend/internal/application/catalog"
	eventapp "github.com/pharmalink/backend/internal/application/event"
	invapp "github.com/pharmalink/backend/internal/application/inventory"
	orderapp "github.com/pharmalink/backend/internal/application/order"
	pricingapp "github.com/pharmalink/backend/internal/application/pricing"
	"github.com/pharmalink/backend/internal/infrastructure/cache"
	"github.com/pharmalink/backend/internal/infrastructure/config"
	"github.com/pharmalink/backend/internal/infrastructure/event"
	"github.com/pharmalink/backend/internal/infrastructure/logger"
	"github.com/pharmalink/backend/internal/infrastructure/notification"
	"github.com/pharmalink/backend/internal/infrastructure/persistence"
	"github.com/pharmalink/backend/internal/infrastructure/queue"
	"github.com/pharmalink/backend/internal/infrastructure/scheduler"
	"github.com/pharmalink/backend/internal/infrastructure/telemetry"
	"github.com/pharmalink/backend/internal/interfaces/http/handler"
	"github.com/pharmalink/backend/internal/interfaces/http/router"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("starting pharmalink backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database", zap.Error(err))
		}
	}()
	log.Info("database connected")

	// Telemetry. Both providers degrade to no-ops when disabled, so the
	// rest of the wiring does not branch on cfg.Telemetry.Enabled.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("failed to initialize meter provider", zap.Error(err))
	}

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	if err := dbTracing.InstrumentGorm(db.DB); err != nil {
		log.Error("failed to instrument database tracing", zap.Error(err))
	}

	// Redis backs the read-side caches and the idempotency store. The
	// service stays up without it: invalidation and caching degrade to
	// no-ops and reads fall through to the database.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	var invalidator invapp.CacheInvalidator
	var stockViewCache invapp.StockViewCache
	var settingsCache catalogapp.SettingsCache
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, stock view caching disabled", zap.Error(err))
		invalidator = cache.NoopCacheInvalidator{}
	} else {
		invalidator = cache.NewRedisCacheInvalidator(redisClient, 500*time.Millisecond, log)
		stockViewCache = cache.NewRedisStockViewCache(redisClient, log)
		settingsCache = cache.NewRedisSettingsCache(redisClient, log)
	}
	defer func() {
		_ = redisClient.Close()
	}()

	// Outbox: domain events are persisted in the order transaction and
	// drained to the in-process bus by the background processor.
	serializer := event.NewEventSerializer()
	event.RegisterDomainEvents(serializer)
	outboxRepo := event.NewGormOutboxRepository(db.DB)
	outboxPublisher := event.NewOutboxPublisher(serializer)
	eventPublisher := event.NewOutboxEventPublisher(db.DB, outboxPublisher)
	eventBus := event.NewInMemoryEventBus(log)

	// Repositories
	stockRepo := persistence.NewGormStockRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	organizationRepo := persistence.NewGormOrganizationRepository(db.DB)
	restockInterestRepo := persistence.NewGormRestockInterestRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	orderGroupRepo := persistence.NewGormOrderGroupRepository(db.DB)
	discountTierRepo := persistence.NewGormDiscountTierRepository(db.DB)
	dynamicDiscountRepo := persistence.NewGormDynamicDiscountRepository(db.DB)
	creditRepo := persistence.NewGormCreditRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)
	taskQueue := queue.NewGormTaskQueue(db.DB)

	// Application services
	lookupService := catalogapp.NewLookupService(productRepo, organizationRepo, settingsCache, log)
	catalogService := catalogapp.NewCatalogService(productRepo, organizationRepo, restockInterestRepo, log)
	discountService := pricingapp.NewDiscountService(discountTierRepo, dynamicDiscountRepo, log)
	creditService := pricingapp.NewCreditService(creditRepo, orderRepo, log)
	ledgerService := invapp.NewLedgerService(txScope, lookupService, invalidator, log)
	reconciliationService := invapp.NewReconciliationService(
		txScope, invalidator, notification.NewLoggingAlertNotifier(log), log)
	stockQueryService := invapp.NewStockQueryService(stockRepo, lookupService, stockViewCache, log)
	orderService := orderapp.NewOrderService(txScope, orderGroupRepo, lookupService, discountService, invalidator, log)
	trackingService := orderapp.NewTrackingService(
		txScope, taskQueue, invalidator, notification.NewLoggingTransitionNotifier(log), log)
	profitService := orderapp.NewProfitService(txScope, notification.NewLoggingAlertNotifier(log), log)
	outboxService := eventapp.NewOutboxService(outboxRepo, log)

	ledgerService.SetEventPublisher(eventPublisher)
	reconciliationService.SetEventPublisher(eventPublisher)
	orderService.SetEventPublisher(eventPublisher)
	trackingService.SetEventPublisher(eventPublisher)
	creditService.SetEventPublisher(eventPublisher)

	// Event subscribers. The restock reminder is wrapped idempotent so a
	// redelivered outbox entry never notifies an organization twice.
	restockHandler := invapp.NewRestockReminderHandler(
		lookupService, notification.NewLoggingRestockNotifier(log), log)
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("failed to create idempotency store", zap.Error(err))
	}
	eventBus.Subscribe(
		event.NewIdempotentHandler(restockHandler, idempotencyStore, log),
		restockHandler.EventTypes()...,
	)

	var businessMetrics *telemetry.BusinessMetrics
	if meterProvider.IsEnabled() {
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:    meterProvider.Meter("pharmalink.business"),
			Logger:   log,
			Provider: telemetry.NewGormOpsMetricsProvider(db.DB),
		})
		if err != nil {
			log.Fatal("failed to create business metrics", zap.Error(err))
		}
		businessMetrics.StartCollection(ctx, 0)
		metricsHandler := telemetry.NewBusinessMetricsHandler(businessMetrics, log)
		eventBus.Subscribe(metricsHandler, metricsHandler.EventTypes()...)
	}

	outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, serializer, event.OutboxProcessorConfig{
		BatchSize:        cfg.Event.BatchSize,
		PollInterval:     cfg.Event.PollInterval,
		CleanupEnabled:   cfg.Event.CleanupEnabled,
		CleanupRetention: cfg.Event.CleanupRetention,
	}, log)
	if cfg.Event.ProcessorEnabled {
		if err := outboxProcessor.Start(ctx); err != nil {
			log.Fatal("failed to start outbox processor", zap.Error(err))
		}
	}

	// Durable task worker: stock sync and profit recomputation run out of
	// band because tracking transitions must stay fast; reconciliation
	// tasks provide a retryable path for on-demand runs.
	worker := queue.NewWorker(db.DB, queue.WorkerConfig{
		PollInterval: cfg.Queue.PollInterval,
		BatchSize:    cfg.Queue.BatchSize,
	}, log)
	worker.RegisterHandler(orderapp.TaskSyncOrderStock, func(ctx context.Context, payload []byte) error {
		var p orderapp.StockSyncPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		return trackingService.SyncStock(ctx, p)
	})
	worker.RegisterHandler(orderapp.TaskRecomputeProfit, func(ctx context.Context, payload []byte) error {
		var p orderapp.ProfitRecomputePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		_, err := profitService.Recompute(ctx, p)
		return err
	})
	worker.RegisterHandler(invapp.TaskReconcileStock, func(ctx context.Context, payload []byte) error {
		var p invapp.ReconcilePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		_, err := reconciliationService.Reconcile(ctx, p.StockID, p.TenantID)
		return err
	})
	if cfg.Queue.WorkerEnabled {
		if err := worker.Start(ctx); err != nil {
			log.Fatal("failed to start task worker", zap.Error(err))
		}
	}

	var reconScheduler *scheduler.ReconciliationScheduler
	if cfg.Reconciliation.Enabled {
		stockProvider := scheduler.NewGormStockProvider(db.DB)
		reconScheduler, err = scheduler.NewReconciliationScheduler(scheduler.Config{
			Schedule:  cfg.Reconciliation.CronSchedule,
			BatchSize: cfg.Reconciliation.BatchSize,
		}, stockProvider, stockProvider, reconciliationService, log)
		if err != nil {
			log.Fatal("failed to create reconciliation scheduler", zap.Error(err))
		}
		if err := reconScheduler.Start(ctx); err != nil {
			log.Fatal("failed to start reconciliation scheduler", zap.Error(err))
		}
	}

	engine := router.New(router.Handlers{
		Inventory: handler.NewInventoryHandler(ledgerService, reconciliationService, stockQueryService, log),
		Order:     handler.NewOrderHandler(orderService, trackingService, log),
		Pricing:   handler.NewPricingHandler(discountService, creditService, log),
		Catalog:   handler.NewCatalogHandler(catalogService, lookupService, log),
		Outbox:    handler.NewOutboxHandler(outboxService, log),
		System:    handler.NewSystemHandler(db.DB, log),
	}, router.Options{
		HTTP:           cfg.HTTP,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		MeterProvider:  meterProvider,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		log.Error("http server failed", zap.Error(err))
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
	if reconScheduler != nil {
		if err := reconScheduler.Stop(shutdownCtx); err != nil {
			log.Error("reconciliation scheduler shutdown failed", zap.Error(err))
		}
	}
	if cfg.Queue.WorkerEnabled {
		worker.Stop()
	}
	if cfg.Event.ProcessorEnabled {
		if err := outboxProcessor.Stop(shutdownCtx); err != nil {
			log.Error("outbox processor shutdown failed", zap.Error(err))
		}
	}
	if businessMetrics != nil {
		businessMetrics.StopCollection()
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("tracer provider shutdown failed", zap.Error(err))
	}
	log.Info("shutdown complete")
}
