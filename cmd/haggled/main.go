// Package main is the entry point for the negotiation API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/haggle"
	"github.com/hupe1980/haggle/bus"
	"github.com/hupe1980/haggle/config"
	"github.com/hupe1980/haggle/core"
	"github.com/hupe1980/haggle/intake"
	"github.com/hupe1980/haggle/logging"
	"github.com/hupe1980/haggle/model"
	anthropicmodel "github.com/hupe1980/haggle/model/anthropic"
	openaimodel "github.com/hupe1980/haggle/model/openai"
	"github.com/hupe1980/haggle/room"
	roomsqlite "github.com/hupe1980/haggle/room/sqlite"
	"github.com/hupe1980/haggle/server"
)

func main() {
	cfg := config.Load()

	log := logging.NewSlogLogger(logLevel(cfg.LogLevel), cfg.LogFormat, false)

	log.Info("starting haggled")

	m, err := newModel(cfg)
	if err != nil {
		log.Error("failed to create model: %v", err)
		os.Exit(1)
	}

	info := m.Info()
	log.Info("using %s model %s", info.Provider, info.Name)

	var store core.RoomStore = room.NewInMemoryStore()

	if cfg.SQLitePath != "" {
		sqliteStore, err := roomsqlite.Open(cfg.SQLitePath)
		if err != nil {
			log.Error("failed to open room database: %v", err)
			os.Exit(1)
		}
		defer sqliteStore.Close()

		store = sqliteStore

		log.Info("rooms persisted to %s", cfg.SQLitePath)
	}

	ctx := context.Background()

	var publisher *bus.Publisher

	if cfg.NATSURL != "" {
		publisher, err = bus.Connect(ctx, cfg.NATSURL, func(o *bus.Options) {
			o.Token = cfg.NATSToken
			o.Logger = log.WithComponent("bus")
		})
		if err != nil {
			log.Error("failed to connect to nats: %v", err)
			os.Exit(1)
		}
		defer publisher.Close()

		log.Info("mirroring events to %s", cfg.NATSURL)
	}

	h := haggle.New(m, func(o *haggle.Options) {
		o.MinRounds = cfg.MinRounds
		o.ParallelLimit = cfg.ParallelSellers
		o.Temperature = cfg.Temperature
		o.MaxTokens = cfg.MaxTokens
		o.MaxModelCalls = cfg.MaxModelCalls
		o.EventBufferSize = cfg.EventBufferSize
		o.RoomStore = store
		o.Logger = log
	})

	queue := intake.NewQueue(func(o *intake.QueueOptions) {
		o.Capacity = cfg.IntakeCapacity
	})

	srv := server.New(h, func(o *server.Options) {
		o.Queue = queue
		o.Bus = publisher
		o.DefaultMaxRounds = cfg.MaxRounds
		o.SSEHeartbeat = cfg.SSEHeartbeat
		o.RateLimitRequests = cfg.RateLimitRequests
		o.RateLimitWindow = cfg.RateLimitWindow
		o.CORSAllowedOrigins = corsOrigins(cfg.CORSAllowedOrigins)
		o.Logger = log.WithComponent("server")
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening on :%s", cfg.ServerPort)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown: %v", err)
	}

	log.Info("server stopped")
}

// newModel builds the generation model named by the provider setting.
func newModel(cfg *config.Config) (model.Model, error) {
	switch cfg.Provider {
	case "anthropic":
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			o.Temperature = cfg.Temperature
			o.MaxTokens = cfg.MaxTokens
			o.APIKey = cfg.AnthropicAPIKey

			if cfg.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Model)
			}
		}), nil

	case "openai":
		var clientOpts []option.RequestOption
		if cfg.OpenAIAPIKey != "" {
			clientOpts = append(clientOpts, option.WithAPIKey(cfg.OpenAIAPIKey))
		}

		client := openaisdk.NewClient(clientOpts...)

		return openaimodel.NewModelFromClient(&client, func(o *openaimodel.Options) {
			o.Temperature = cfg.Temperature
			o.MaxCompletionTokens = cfg.MaxTokens

			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		}), nil

	case "mock":
		return model.NewMockModel("mock", "mock"), nil

	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

func logLevel(s string) logging.LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}

func corsOrigins(s string) []string {
	parts := strings.Split(s, ",")

	origins := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	if len(origins) == 0 {
		return []string{"*"}
	}

	return origins
}
