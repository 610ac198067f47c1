package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Typesense TypesenseConfig
	RxNav     RxNavConfig
	Clinical  ClinicalConfig
	OTEL      OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL    string
	APIKey string
}

// RxNavConfig holds configuration for the upstream RxNav API
type RxNavConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryBaseDelay time.Duration
}

// ClinicalConfig holds tuning for the update pipeline
type ClinicalConfig struct {
	// ConfidenceThreshold is the minimum mapping confidence a drug pair
	// needs before its interactions are synchronized
	ConfidenceThreshold float64

	// MappingPace / PairPace are the minimum intervals between upstream
	// calls during reconciliation and pair synchronization
	MappingPace time.Duration
	PairPace    time.Duration

	// EmergencyCheckInterval is the cadence of the emergency alert monitor
	EmergencyCheckInterval time.Duration

	// RealtimeLookups enables live upstream lookups on the read path
	RealtimeLookups bool
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "drugreco"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:    getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey: getEnv("TYPESENSE_API_KEY", "xyz"),
		},
		RxNav: RxNavConfig{
			BaseURL:        getEnv("RXNAV_BASE_URL", "https://rxnav.nlm.nih.gov/REST"),
			RequestTimeout: getEnvAsDuration("RXNAV_TIMEOUT", 10*time.Second),
			RetryAttempts:  getEnvAsInt("RXNAV_RETRY_ATTEMPTS", 3),
			RetryBaseDelay: getEnvAsDuration("RXNAV_RETRY_DELAY", time.Second),
		},
		Clinical: ClinicalConfig{
			ConfidenceThreshold:    getEnvAsFloat("CLINICAL_CONFIDENCE_THRESHOLD", 0.75),
			MappingPace:            getEnvAsDuration("CLINICAL_MAPPING_PACE", 100*time.Millisecond),
			PairPace:               getEnvAsDuration("CLINICAL_PAIR_PACE", 200*time.Millisecond),
			EmergencyCheckInterval: getEnvAsDuration("CLINICAL_EMERGENCY_INTERVAL", 6*time.Hour),
			RealtimeLookups:        getEnvAsBool("CLINICAL_REALTIME_LOOKUPS", true),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "drugreco-clinical"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
