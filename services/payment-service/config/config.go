package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
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
	SharedSecret     string // HMAC secret shared with the subscription service
	APIKey           string // x-api-key expected on /payments/initiate and sent on webhooks
	SettlementDelay  time.Duration
	// SuccessRate in [0,1]; 1 means every settlement succeeds, anything lower
	// makes the outcome randomized at that rate.
	SettlementSuccessRate float64
	KafkaBrokers          string // comma separated; empty disables the event stream
	KafkaTopic            string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		Port:                  getEnv("PORT", "8086"),
		PostgresUser:          os.Getenv("POSTGRES_USER"),
		PostgresPassword:      os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:            os.Getenv("POSTGRES_DB"),
		PostgresHost:          getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:          getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:       getEnv("POSTGRES_SSLMODE", "disable"),
		SharedSecret:          os.Getenv("PAYMENT_SHARED_SECRET"),
		APIKey:                os.Getenv("PAYMENT_SERVICE_KEY"),
		SettlementDelay:       getDuration("SETTLEMENT_DELAY_MS", 2000) * time.Millisecond,
		SettlementSuccessRate: getFloat("SETTLEMENT_SUCCESS_RATE", 1.0),
		KafkaBrokers:          os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:            getEnv("KAFKA_SETTLEMENT_TOPIC", "settlement-events"),
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" {
		return nil, fmt.Errorf("missing required postgres environment variables")
	}
	if cfg.SharedSecret == "" || cfg.APIKey == "" {
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

func getDuration(key string, fallback int64) time.Duration {
	if val := os.Getenv(key); val != "" {
		if ms, err := strconv.ParseInt(val, 10, 64); err == nil && ms >= 0 {
			return time.Duration(ms)
		}
	}
	return time.Duration(fallback)
}

func getFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil && f >= 0 && f <= 1 {
			return f
		}
	}
	return fallback
}
