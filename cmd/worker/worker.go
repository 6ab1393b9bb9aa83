package main

import (
	"context"
	"net/http"

	"github.com/septivank/rental-billing-worker/internal/analytics"
	"github.com/septivank/rental-billing-worker/internal/billing"
	"github.com/septivank/rental-billing-worker/internal/config"
	"github.com/septivank/rental-billing-worker/internal/db"
	"github.com/septivank/rental-billing-worker/internal/forecast"
	"github.com/septivank/rental-billing-worker/internal/ledger"
	"github.com/septivank/rental-billing-worker/internal/metrics"
	"github.com/septivank/rental-billing-worker/internal/mq"
	"github.com/septivank/rental-billing-worker/internal/repository"
	"github.com/septivank/rental-billing-worker/internal/server"
	"github.com/septivank/rental-billing-worker/internal/service"
	"github.com/septivank/rental-billing-worker/internal/tariff"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func startWorker(
	lc fx.Lifecycle,
	conn *mq.Connection,
	cfg *config.Config,
	logger *zap.Logger,
	processor *service.ProcessorService,
) (*mq.Consumer, error) {
	metrics.Init()

	// Create context for consumer that will be cancelled on shutdown
	ctx, cancel := context.WithCancel(context.Background())

	consumer, err := mq.NewConsumer(mq.ConsumerConfig{
		Connection:    conn,
		Queue:         cfg.RabbitMQ.CommandQueue,
		DLQQueue:      cfg.RabbitMQ.DLQQueue,
		Exchange:      cfg.RabbitMQ.CommandExchange,
		RoutingKey:    cfg.RabbitMQ.CommandRoutingKey,
		PrefetchCount: cfg.RabbitMQ.PrefetchCount,
		Logger:        logger,
		Handler:       processor.ProcessCommand,
	})
	if err != nil {
		cancel()
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			logger.Info("starting billing command consumer",
				zap.String("queue", cfg.RabbitMQ.CommandQueue),
				zap.Int("prefetch", cfg.RabbitMQ.PrefetchCount))
			return consumer.Start(ctx)
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			if err := consumer.Close(); err != nil {
				logger.Error("failed to close consumer", zap.Error(err))
				return err
			}
			logger.Info("worker stopped gracefully")
			return nil
		},
	})

	return consumer, nil
}

func startHTTPServer(lc fx.Lifecycle, handler *server.Handler, cfg *config.Config, logger *zap.Logger) *http.Server {
	return server.NewServer(lc, handler, cfg, logger)
}

// ProvideRepository creates a new repository instance
func ProvideRepository(pool *db.Pool) *repository.Repository {
	return repository.NewRepository(pool)
}

// ProvideTariffCalculator creates a new tariff calculator instance
func ProvideTariffCalculator() *tariff.Calculator {
	return tariff.NewCalculator()
}

// ProvideMeterLedger creates a new meter ledger instance
func ProvideMeterLedger(repo *repository.Repository, logger *zap.Logger) *ledger.Ledger {
	return ledger.NewLedger(repo, logger)
}

// ProvideInvoiceGenerator creates a new invoice generator instance
func ProvideInvoiceGenerator(repo *repository.Repository, calc *tariff.Calculator, logger *zap.Logger) *billing.Generator {
	return billing.NewGenerator(repo, repo, calc, logger)
}

// ProvideBulkCoordinator creates a new bulk invoice coordinator instance
func ProvideBulkCoordinator(repo *repository.Repository, generator *billing.Generator, logger *zap.Logger) *billing.Coordinator {
	return billing.NewCoordinator(repo, repo, generator, logger)
}

// ProvideAggregator creates a new period aggregator instance
func ProvideAggregator(cfg *config.Config, logger *zap.Logger) *analytics.Aggregator {
	return analytics.NewAggregator(analytics.SupplierCategories{
		Electricity: cfg.Billing.ElectricitySupplierCategory,
		Water:       cfg.Billing.WaterSupplierCategory,
	}, logger)
}

// ProvideForecastEngine creates a new forecast engine instance
func ProvideForecastEngine() *forecast.Engine {
	return forecast.NewEngine()
}

// ProvidePublisher creates a new publisher instance
func ProvidePublisher(conn *mq.Connection, cfg *config.Config, logger *zap.Logger) (*mq.Publisher, error) {
	return mq.NewPublisher(conn, cfg.RabbitMQ.EventsExchange, logger)
}

// ProvideProcessorService creates a new processor service instance
func ProvideProcessorService(
	meterLedger *ledger.Ledger,
	generator *billing.Generator,
	coordinator *billing.Coordinator,
	publisher *mq.Publisher,
	cfg *config.Config,
	logger *zap.Logger,
) *service.ProcessorService {
	return service.NewProcessorService(meterLedger, generator, coordinator, publisher, cfg, logger)
}

// ProvideQueryHandler creates a new query handler instance
func ProvideQueryHandler(
	repo *repository.Repository,
	aggregator *analytics.Aggregator,
	engine *forecast.Engine,
	cfg *config.Config,
	logger *zap.Logger,
) *server.Handler {
	return server.NewHandler(repo, aggregator, engine, cfg, logger)
}

// ProvideDBPool creates a new database pool instance
func ProvideDBPool(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) (*db.Pool, error) {
	return db.NewPool(lc, logger, cfg.Database.URL)
}

// ProvideMQConnection creates a new RabbitMQ connection instance
func ProvideMQConnection(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) (*mq.Connection, error) {
	return mq.NewConnection(lc, logger, cfg.RabbitMQ.URL)
}
