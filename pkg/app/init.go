package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"go-guildsync/pkg/config"
	"go-guildsync/pkg/database"
	"go-guildsync/pkg/handlers"
	"go-guildsync/pkg/logging"
	"go-guildsync/pkg/version"

	"github.com/joho/godotenv"
)

// AppContext holds the shared application context and dependencies
type AppContext struct {
	MongoDB          *database.MongoDB
	Redis            *database.Redis
	Tuning           *config.Tuning
	TelemetryManager *logging.TelemetryManager
	ServiceName      string
	shutdownFuncs    []func(context.Context) error
}

// InitializeApp loads .env, sets up telemetry and tuning, and connects the
// optional stores. MongoDB and Redis are used only when MONGODB_URI or
// REDIS_URL is set; a failed connection is logged and the store left nil.
func InitializeApp(ctx context.Context, serviceName string) (*AppContext, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading it: %v", err)
	}

	telemetryManager := logging.NewTelemetryManager(serviceName, version.Version)
	if err := telemetryManager.Initialize(ctx); err != nil {
		log.Printf("Warning: Failed to initialize telemetry: %v", err)
	}

	tuning, err := config.LoadTuning()
	if err != nil {
		return nil, fmt.Errorf("invalid tuning: %w", err)
	}

	appCtx := &AppContext{
		Tuning:           tuning,
		TelemetryManager: telemetryManager,
		ServiceName:      serviceName,
	}

	if config.GetEnv("MONGODB_URI", "") != "" {
		mongodb, err := database.NewMongoDB(ctx, serviceName)
		if err != nil {
			slog.Error("Failed to connect to MongoDB, pulls will not be persisted", "error", err)
		} else {
			appCtx.MongoDB = mongodb
			appCtx.shutdownFuncs = append(appCtx.shutdownFuncs, mongodb.Close)
		}
	}

	if config.GetEnv("REDIS_URL", "") != "" {
		redis, err := database.NewRedis(ctx)
		if err != nil {
			slog.Error("Failed to connect to Redis, events stay local", "error", err)
		} else {
			appCtx.Redis = redis
			appCtx.shutdownFuncs = append(appCtx.shutdownFuncs, func(ctx context.Context) error {
				return redis.Close()
			})
		}
	}

	appCtx.shutdownFuncs = append(appCtx.shutdownFuncs, telemetryManager.Shutdown)
	return appCtx, nil
}

// HealthChecks returns a check for every connected store
func (a *AppContext) HealthChecks() map[string]handlers.HealthCheck {
	checks := make(map[string]handlers.HealthCheck)
	if a.MongoDB != nil {
		checks["mongodb"] = a.MongoDB.HealthCheck
	}
	if a.Redis != nil {
		checks["redis"] = a.Redis.HealthCheck
	}
	return checks
}

// Shutdown gracefully shuts down all application dependencies
func (a *AppContext) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down application", "service", a.ServiceName)

	for _, shutdown := range a.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			slog.Error("Error during shutdown", "error", err)
		}
	}

	slog.Info("Application shutdown completed", "service", a.ServiceName)
	return nil
}

// GetPort returns the port from environment or default
func GetPort(defaultPort string) string {
	return config.GetEnv("PORT", defaultPort)
}
