package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	ServiceName string
	ServicePort int
	Database    DatabaseConfig
	RabbitMQ    RabbitMQConfig
	Billing     BillingConfig
	Forecast    ForecastConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// RabbitMQConfig holds RabbitMQ connection and queue settings
type RabbitMQConfig struct {
	URL                      string
	CommandExchange          string
	CommandQueue             string
	CommandRoutingKey        string
	EventsExchange           string
	InvoiceCreatedRoutingKey string
	DLQQueue                 string
	PrefetchCount            int
}

// BillingConfig holds billing and aggregation settings
type BillingConfig struct {
	ElectricitySupplierCategory string
	WaterSupplierCategory       string
}

// ForecastConfig holds forecast settings
type ForecastConfig struct {
	HistoryMonths int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServiceName: getEnv("SERVICE_NAME", "rental-billing-worker"),
		ServicePort: getEnvAsInt("SERVICE_PORT", 8082),
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		RabbitMQ: RabbitMQConfig{
			URL:                      getEnv("RABBITMQ_URL", ""),
			CommandExchange:          getEnv("RABBITMQ_COMMAND_EXCHANGE", "rental-billing.commands.exchange"),
			CommandQueue:             getEnv("RABBITMQ_COMMAND_QUEUE", "rental-billing.commands.queue"),
			CommandRoutingKey:        getEnv("RABBITMQ_COMMAND_ROUTING_KEY", "billing.command.#"),
			EventsExchange:           getEnv("RABBITMQ_EVENTS_EXCHANGE", "rental-billing.events.exchange"),
			InvoiceCreatedRoutingKey: getEnv("RABBITMQ_INVOICE_CREATED_ROUTING_KEY", "billing.invoice.created"),
			DLQQueue:                 getEnv("RABBITMQ_DLQ_QUEUE", "rental-billing.commands.dlq"),
			PrefetchCount:            getEnvAsInt("RABBITMQ_PREFETCH", 10),
		},
		Billing: BillingConfig{
			ElectricitySupplierCategory: getEnv("BILLING_ELECTRICITY_SUPPLIER_CATEGORY", "electricity"),
			WaterSupplierCategory:       getEnv("BILLING_WATER_SUPPLIER_CATEGORY", "water"),
		},
		Forecast: ForecastConfig{
			HistoryMonths: getEnvAsInt("FORECAST_HISTORY_MONTHS", 6),
		},
	}

	// Validate required fields
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set in environment variables")
	}
	if cfg.RabbitMQ.URL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required but not set in environment variables")
	}
	if cfg.Forecast.HistoryMonths < 1 {
		return nil, fmt.Errorf("FORECAST_HISTORY_MONTHS must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
