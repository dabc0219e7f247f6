package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is built once at startup and passed into the components that need
// it. Core logic never reads the environment directly.
type Config struct {
	AppName string
	Port    string

	Database DatabaseConfig
	Shipment ShipmentConfig

	// OrderCodeRetries bounds how many times a colliding order code is
	// regenerated before the request fails.
	OrderCodeRetries int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (c DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type ShipmentConfig struct {
	BaseURL string
	Timeout time.Duration
}

func Load() Config {
	return Config{
		AppName: getEnvOrDefault("APP_NAME", "order-service"),
		Port:    getEnvOrDefault("PORT", "8000"),
		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			Name:     getEnvOrDefault("DB_NAME", "order_db"),
			SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
		},
		Shipment: ShipmentConfig{
			BaseURL: getEnvOrDefault("SHIPMENT_API_BASE_URL", "https://swift-cynde-be-demo-4c30490b.koyeb.app"),
			Timeout: getEnvDuration("SHIPMENT_API_TIMEOUT", 30*time.Second),
		},
		OrderCodeRetries: getEnvInt("ORDER_CODE_RETRIES", 5),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
