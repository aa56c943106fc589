// Package config provides environment configuration for the API server.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort        string
	ServerReadTimeout time.Duration
	// ServerWriteTimeout of zero disables the write deadline so event
	// streams can run long.
	ServerWriteTimeout time.Duration
	CORSAllowedOrigins string

	// Model provider settings
	Provider        string
	Model           string
	AnthropicAPIKey string
	OpenAIAPIKey    string
	Temperature     float64
	MaxTokens       int64

	// Negotiation settings
	MinRounds       int
	MaxRounds       int
	ParallelSellers int
	MaxModelCalls   int
	EventBufferSize int

	// Storage settings. An empty SQLitePath keeps rooms in memory.
	SQLitePath string

	// NATS settings. An empty NATSURL disables the event bus.
	NATSURL   string
	NATSToken string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Intake
	IntakeCapacity int

	// Streaming
	SSEHeartbeat time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 0),
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),

		// Model provider
		Provider:        getEnv("HAGGLE_PROVIDER", "openai"),
		Model:           getEnv("HAGGLE_MODEL", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		Temperature:     getFloatEnv("HAGGLE_TEMPERATURE", 0.7),
		MaxTokens:       getInt64Env("HAGGLE_MAX_TOKENS", 512),

		// Negotiation
		MinRounds:       getIntEnv("HAGGLE_MIN_ROUNDS", 2),
		MaxRounds:       getIntEnv("HAGGLE_MAX_ROUNDS", 10),
		ParallelSellers: getIntEnv("HAGGLE_PARALLEL_SELLERS", 3),
		MaxModelCalls:   getIntEnv("HAGGLE_MAX_MODEL_CALLS", 100),
		EventBufferSize: getIntEnv("HAGGLE_EVENT_BUFFER", 100),

		// Storage
		SQLitePath: getEnv("HAGGLE_SQLITE_PATH", ""),

		// NATS
		NATSURL:   getEnv("NATS_URL", ""),
		NATSToken: getEnv("NATS_TOKEN", ""),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Intake
		IntakeCapacity: getIntEnv("HAGGLE_INTAKE_CAPACITY", 100),

		// Streaming
		SSEHeartbeat: getDurationEnv("HAGGLE_SSE_HEARTBEAT", 15*time.Second),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
