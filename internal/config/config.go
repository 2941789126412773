package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Security SecurityConfig
	Jobs     JobsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
	// EventChannel receives one message per committed transition.
	EventChannel string
}

// JWTConfig holds access token verification settings
type JWTConfig struct {
	Secret       string
	Issuer       string
	AccessExpiry time.Duration
}

// SecurityConfig holds encryption keys
type SecurityConfig struct {
	CardCodeKey string // 32-bytes hex string
}

// JobsConfig holds cron schedules for background jobs
type JobsConfig struct {
	Enabled            bool
	SweepSchedule      string
	SweepBatchSize     int
	SweepLockTTL       time.Duration
	FraudScanSchedule  string
	CardExpirySchedule string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "cardswap"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			AutoMigrate:  getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", "redis://localhost:6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			EventChannel: getEnv("REDIS_EVENT_CHANNEL", "cardswap:events"),
		},
		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", "change-this-in-production"),
			Issuer:       getEnv("JWT_ISSUER", "cardswap"),
			AccessExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
		},
		Security: SecurityConfig{
			CardCodeKey: getEnv("CARD_CODE_KEY", "0000000000000000000000000000000000000000000000000000000000000000"),
		},
		Jobs: JobsConfig{
			Enabled:            getEnvAsBool("JOBS_ENABLED", true),
			SweepSchedule:      getEnv("SWEEP_SCHEDULE", "@every 1m"),
			SweepBatchSize:     getEnvAsInt("SWEEP_BATCH_SIZE", 100),
			SweepLockTTL:       getEnvAsDuration("SWEEP_LOCK_TTL", 50*time.Second),
			FraudScanSchedule:  getEnv("FRAUD_SCAN_SCHEDULE", "@every 15m"),
			CardExpirySchedule: getEnv("CARD_EXPIRY_SCHEDULE", "0 0 * * *"),
		},
	}
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
