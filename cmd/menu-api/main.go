package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bellavista/menu-api/pkg/api"
	"github.com/bellavista/menu-api/pkg/logging"
	"github.com/bellavista/menu-api/pkg/repository"
	"github.com/bellavista/menu-api/pkg/responder"
	"github.com/bellavista/menu-api/pkg/store"
	"github.com/bellavista/menu-api/pkg/version"
)

func main() {
	// Configuration from environment
	redisURL := getEnv("REDIS_URL", "localhost:6379")
	port := getEnv("PORT", "8080")
	backend := getEnv("STORE_BACKEND", "redis")
	logLevel := getEnv("LOG_LEVEL", "info")
	logPretty := getEnv("LOG_PRETTY", "") != ""

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(logLevel),
		Pretty: logPretty,
		Output: os.Stderr,
	})

	docStore, err := buildStore(backend, redisURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize document store")
	}

	tracker := version.NewTracker(docStore, logger)
	repo := repository.New(docStore, tracker, logger)
	res := responder.New(repo, tracker, logger)
	server := api.NewServer(res, repo, logger)

	addr := ":" + port
	logger.Info().
		Str("addr", addr).
		Str("store", backend).
		Msg("Starting menu API server")

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	if err := httpServer.ListenAndServe(); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

// buildStore selects the document store backend. Redis is the production
// default; memory runs a standalone instance with no persistence.
func buildStore(backend, redisURL string, logger zerolog.Logger) (store.Store, error) {
	switch backend {
	case "memory":
		logger.Warn().Msg("Using in-memory store, data will not survive restarts")
		return store.NewMemoryStore(), nil
	default:
		redisClient := redis.NewClient(&redis.Options{
			Addr: redisURL,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return nil, err
		}
		logger.Info().Str("addr", redisURL).Msg("Connected to Redis")

		return store.NewRedisStore(redisClient, logger), nil
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
