package config

import (
	"fmt"
	"os"
)

type Config struct {
	Env              string
	Port             string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PaymentURL       string // base URL of the payment service
	PaymentAPIKey    string // x-api-key sent on /payments/initiate and expected on webhooks
	SharedSecret     string // HMAC secret shared with the payment service
	WebhookBaseURL   string // public base URL of this service, used to build webhookUrl
	Currency         string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Env:              getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8085"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PaymentURL:       getEnv("PAYMENT_SERVICE_URL", "http://localhost:8086"),
		PaymentAPIKey:    os.Getenv("PAYMENT_SERVICE_KEY"),
		SharedSecret:     os.Getenv("PAYMENT_SHARED_SECRET"),
		WebhookBaseURL:   getEnv("SUBSCRIPTION_WEBHOOK_URL", "http://localhost:8085"),
		Currency:         getEnv("CURRENCY", "AED"),
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" {
		return nil, fmt.Errorf("missing required postgres environment variables")
	}
	if cfg.SharedSecret == "" || cfg.PaymentAPIKey == "" {
		return nil, fmt.Errorf("PAYMENT_SHARED_SECRET and PAYMENT_SERVICE_KEY must be set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
