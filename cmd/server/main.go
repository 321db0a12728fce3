package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/chromabeam/engine/internal/apiserver"
	"github.com/chromabeam/engine/internal/bootstrap"
	"github.com/chromabeam/engine/internal/logger"
	"github.com/chromabeam/engine/internal/telemetry"
)

func main() {
	eng, err := bootstrap.Start()
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer logger.Close()
	defer eng.Close()

	logger.Log.Info("=== chromabeam engine starting ===")

	var tracerProvider *trace.TracerProvider
	tracingOn := os.Getenv("OTEL_ENABLED") == "true"
	if tracingOn {
		cfg := telemetry.Config{
			ServiceName:  getEnvOrDefault("OTEL_SERVICE_NAME", "chromabeam-engine"),
			Environment:  getEnvOrDefault("OTEL_ENVIRONMENT", "development"),
			OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			Enabled:      true,
			SamplingRate: getEnvFloat("OTEL_TRACE_SAMPLER_RATE", 1.0),
		}

		var tracerErr error
		tracerProvider, tracerErr = telemetry.InitTracer(cfg)
		if tracerErr != nil {
			logger.Log.Warn("Failed to initialize OpenTelemetry", zap.Error(tracerErr))
			tracingOn = false
		} else {
			logger.Log.Info("OpenTelemetry tracing enabled", zap.String("service", cfg.ServiceName))
			defer func() {
				if tracerProvider != nil {
					if shutdownErr := tracerProvider.Shutdown(context.Background()); shutdownErr != nil {
						logger.Log.Error("Failed to shutdown tracer provider", zap.Error(shutdownErr))
					}
				}
			}()
		}
	}

	srv := apiserver.New(apiserver.Deps{
		Session:      eng.Session,
		KeyRegistry:  eng.KeyRegistry,
		RedisClient:  eng.RedisClient,
		ExtractorCfg: eng.Config.Extractor,
		Addr:         ":" + getEnvOrDefault("PORT", "8787"),
		TracingOn:    tracingOn,
	})

	go func() {
		logger.Log.Info("chromabeam engine listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithFields("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorWithFields("Server forced to shutdown", err)
	}
	logger.Log.Info("Server exited")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
