package config

import (
	"os"
	"strconv"
	"time"

	"statflow/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	RService RServiceConfig
	Server   ServerConfig
	Storage  StorageConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// RServiceConfig holds the external computation service settings together
// with the resilience knobs applied to calls against it
type RServiceConfig struct {
	BaseURL          string
	APIKey           string
	RequestTimeout   time.Duration
	MaxRetries       int
	InitialBackoff   time.Duration
	JitterFactor     float64
	CacheTTL         time.Duration
	FailureThreshold int
	Cooldown         time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// StorageConfig holds dataset file storage settings
type StorageConfig struct {
	BasePath string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	rServiceURL := os.Getenv("R_SERVICE_URL")
	if rServiceURL == "" {
		return nil, errors.ConfigInvalid("R_SERVICE_URL is required")
	}

	return &Config{
		Database: DatabaseConfig{URL: databaseURL},
		RService: RServiceConfig{
			BaseURL:          rServiceURL,
			APIKey:           os.Getenv("R_SERVICE_API_KEY"),
			RequestTimeout:   getEnvDurationOrDefault("R_SERVICE_TIMEOUT", 30*time.Second),
			MaxRetries:       getEnvIntOrDefault("R_SERVICE_MAX_RETRIES", 3),
			InitialBackoff:   getEnvDurationOrDefault("R_SERVICE_BACKOFF", 500*time.Millisecond),
			JitterFactor:     getEnvFloatOrDefault("R_SERVICE_JITTER", 0.2),
			CacheTTL:         getEnvDurationOrDefault("R_SERVICE_CACHE_TTL", 5*time.Minute),
			FailureThreshold: getEnvIntOrDefault("R_SERVICE_FAILURE_THRESHOLD", 5),
			Cooldown:         getEnvDurationOrDefault("R_SERVICE_COOLDOWN", 30*time.Second),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Storage: StorageConfig{
			BasePath: getEnvOrDefault("DATASET_STORAGE_PATH", "./data"),
		},
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
