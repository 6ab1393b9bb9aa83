package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/septivank/rental-billing-worker/internal/config"
	"go.uber.org/fx"
)

const startTimeout = 30 * time.Second

// loadDotEnv walks from the working directory upward looking for a
// .env file. Containers run without one and rely on the injected
// environment.
func loadDotEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for i := 0; i < 3; i++ {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				fmt.Printf("Loaded environment from: %s\n", path)
				return
			}
		}
		dir = filepath.Dir(dir)
	}
	fmt.Println("No .env file found, using system environment variables")
}

func main() {
	loadDotEnv()

	app := fx.New(
		fx.Provide(
			config.Load,
			newLogger,
			ProvideDBPool,
			ProvideRepository,
			ProvideTariffCalculator,
			ProvideMeterLedger,
			ProvideInvoiceGenerator,
			ProvideBulkCoordinator,
			ProvideAggregator,
			ProvideForecastEngine,
			ProvideMQConnection,
			ProvidePublisher,
			ProvideProcessorService,
			ProvideQueryHandler,
		),
		fx.Invoke(startWorker, startHTTPServer),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	startCtx, startCancel := context.WithTimeout(context.Background(), startTimeout)
	defer startCancel()
	if err := app.Start(startCtx); err != nil {
		if startCtx.Err() == context.DeadlineExceeded {
			fmt.Println("start timed out: check that PostgreSQL and RabbitMQ are reachable")
		}
		panic(err)
	}

	<-ctx.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), startTimeout)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		fmt.Println("error stopping app:", err)
	}
}
