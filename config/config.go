// Package config loads application configuration from the environment.
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application. Values come from
// environment variables, optionally seeded from a .env file.
type AppConfig struct {
	Port         string
	DatabasePath string
	LogLevel     string

	// Currency is the single reporting currency; data carries bare decimal
	// amounts and adopts this code for formatting.
	Currency string

	// RateLimitPerSecond bounds the request rate accepted by the server.
	RateLimitPerSecond int
}

// Load reads configuration from environment variables or a .env file in the
// current directory.
func Load() *AppConfig {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: error loading .env file: %v", err)
	}

	return &AppConfig{
		Port:               getEnv("PORT", "8080"),
		DatabasePath:       getEnv("DATABASE_PATH", "./folioplan.db"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Currency:           getEnv("CURRENCY", "EUR"),
		RateLimitPerSecond: getEnvAsInt("RATE_LIMIT_PER_SECOND", 30),
	}
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer or returns a
// fallback.
func getEnvAsInt(key string, fallback int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("invalid integer value for %s (%q), using default %d", key, valueStr, fallback)
		return fallback
	}
	return value
}
