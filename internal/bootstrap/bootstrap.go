// Package bootstrap wires the ambient stack (logging, config, database,
// cache, the engine session) the same way for both cmd/server and the
// cmd/cli "serve" subcommand, so the two entry points never drift.
package bootstrap

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/chromabeam/engine/internal/cache"
	appconfig "github.com/chromabeam/engine/internal/config"
	"github.com/chromabeam/engine/internal/database"
	"github.com/chromabeam/engine/internal/logger"
	"github.com/chromabeam/engine/internal/registry"
	"github.com/chromabeam/engine/internal/session"
)

// Engine bundles the constructed dependencies a server needs to run.
type Engine struct {
	Session     *session.Session
	Config      session.Config
	KeyRegistry *registry.Registry
	RedisClient *cache.RedisClient // nil if Redis is not configured
}

// Start initializes logging, loads .env, connects to Postgres and
// (optionally) Redis, and constructs the engine session. Callers are
// responsible for calling logger.Close() and closing RedisClient/database
// when done.
func Start() (*Engine, error) {
	logLevel := getEnvOrDefault("LOG_LEVEL", "info")
	logFile := getEnvOrDefault("LOG_FILE", "server.log")
	if err := logger.Initialize(logLevel, logFile); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := godotenv.Load(); err != nil {
		logger.Log.Warn("Warning: .env file not found, using system environment variables")
	}

	var redisClient *cache.RedisClient
	if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" || port != "" {
		var err error
		redisClient, err = cache.NewRedisClient(
			getEnvOrDefault("REDIS_HOST", "localhost"),
			getEnvOrDefault("REDIS_PORT", "6379"),
			os.Getenv("REDIS_PASSWORD"),
		)
		if err != nil {
			logger.Log.Warn("Failed to connect to Redis, extraction cache disabled", zap.Error(err))
			redisClient = nil
		}
	} else {
		logger.Log.Info("Redis not configured (REDIS_HOST not set), extraction cache disabled")
	}

	if err := database.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := database.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	keyRegistry, err := registry.New(database.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize key registry: %w", err)
	}

	cfg, err := appconfig.Load(os.Getenv("CHROMABEAM_CONFIG_FILE"))
	if err != nil {
		return nil, fmt.Errorf("failed to load engine configuration: %w", err)
	}

	sess, err := session.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to construct engine session: %w", err)
	}

	logger.Log.Info("Engine session constructed",
		zap.Int("sample_rate", cfg.Extractor.SampleRate),
		zap.Int("window_size", cfg.Extractor.WindowSize),
		zap.Int("search_beam_count", cfg.Database.SearchBeamCount),
	)

	return &Engine{Session: sess, Config: cfg, KeyRegistry: keyRegistry, RedisClient: redisClient}, nil
}

// Close releases the Redis connection and database handle.
func (e *Engine) Close() {
	if e.RedisClient != nil {
		_ = e.RedisClient.Close()
	}
	_ = database.Close()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
