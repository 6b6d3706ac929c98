package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Redis (staging store)
	RedisURL string

	// Kafka
	KafkaBrokers string

	// API Configuration
	APIPort string
	APIHost string

	// Loyverse
	LoyverseAPIBase string
	LoyverseToken   string

	// WooCommerce
	WooBaseURL        string
	WooConsumerKey    string
	WooConsumerSecret string

	// Extraction
	PageSize       int
	MaxRetries     int
	RetryBaseDelay time.Duration

	// Environment
	Env      string
	LogLevel string
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	return &Config{
		DatabaseURL:       getEnv("DATABASE_URL", "sqlite://catalog-sync.db"),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379"),
		KafkaBrokers:      getEnv("KAFKA_BROKERS", "localhost:9092"),
		APIPort:           getEnv("API_PORT", "8080"),
		APIHost:           getEnv("API_HOST", "0.0.0.0"),
		LoyverseAPIBase:   getEnv("LOYVERSE_API_BASE", "https://api.loyverse.com/v1.0"),
		LoyverseToken:     getEnv("LOYVERSE_TOKEN", ""),
		WooBaseURL:        getEnv("WOO_BASE_URL", ""),
		WooConsumerKey:    getEnv("WOO_CONSUMER_KEY", ""),
		WooConsumerSecret: getEnv("WOO_CONSUMER_SECRET", ""),
		PageSize:          getEnvAsInt("PAGE_SIZE", 250),
		MaxRetries:        getEnvAsInt("MAX_RETRIES", 5),
		RetryBaseDelay:    getEnvAsDuration("RETRY_BASE_DELAY", 500*time.Millisecond),
		Env:               getEnv("ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
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
