package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("defaults apply when the environment is empty", func(t *testing.T) {
		// Blank out anything the host machine may have exported.
		for _, key := range []string{
			"PORT", "HAGGLE_PROVIDER", "HAGGLE_TEMPERATURE", "HAGGLE_MAX_TOKENS",
			"HAGGLE_MAX_ROUNDS", "HAGGLE_PARALLEL_SELLERS", "HAGGLE_SQLITE_PATH",
			"NATS_URL", "RATE_LIMIT_WINDOW", "HAGGLE_SSE_HEARTBEAT", "LOG_LEVEL",
		} {
			t.Setenv(key, "")
		}

		cfg := Load()

		assert.Equal(t, "8080", cfg.ServerPort)
		assert.Equal(t, "openai", cfg.Provider)
		assert.Equal(t, 0.7, cfg.Temperature)
		assert.Equal(t, int64(512), cfg.MaxTokens)
		assert.Equal(t, 10, cfg.MaxRounds)
		assert.Equal(t, 3, cfg.ParallelSellers)
		assert.Empty(t, cfg.SQLitePath)
		assert.Empty(t, cfg.NATSURL)
		assert.Equal(t, time.Minute, cfg.RateLimitWindow)
		assert.Equal(t, 15*time.Second, cfg.SSEHeartbeat)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("HAGGLE_PROVIDER", "anthropic")
		t.Setenv("HAGGLE_TEMPERATURE", "0.2")
		t.Setenv("HAGGLE_MAX_TOKENS", "1024")
		t.Setenv("HAGGLE_MAX_ROUNDS", "4")
		t.Setenv("HAGGLE_SQLITE_PATH", "/tmp/haggle.db")
		t.Setenv("RATE_LIMIT_WINDOW", "30s")

		cfg := Load()

		assert.Equal(t, "9090", cfg.ServerPort)
		assert.Equal(t, "anthropic", cfg.Provider)
		assert.Equal(t, 0.2, cfg.Temperature)
		assert.Equal(t, int64(1024), cfg.MaxTokens)
		assert.Equal(t, 4, cfg.MaxRounds)
		assert.Equal(t, "/tmp/haggle.db", cfg.SQLitePath)
		assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	})

	t.Run("malformed values fall back to defaults", func(t *testing.T) {
		t.Setenv("HAGGLE_MAX_ROUNDS", "lots")
		t.Setenv("HAGGLE_TEMPERATURE", "warm")
		t.Setenv("RATE_LIMIT_WINDOW", "soon")

		cfg := Load()

		assert.Equal(t, 10, cfg.MaxRounds)
		assert.Equal(t, 0.7, cfg.Temperature)
		assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	})
}
