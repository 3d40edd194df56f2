package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// TelemetryConfig is read from unprefixed environment variables
type TelemetryConfig struct {
	EnableTelemetry   bool    `envconfig:"ENABLE_TELEMETRY" default:"true"`
	ServiceName       string  `envconfig:"SERVICE_NAME"`
	ServiceVersion    string  `ignored:"true"`
	OTLPEndpoint      string  `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"http://localhost:4318"`
	SampleRatio       float64 `envconfig:"OTEL_TRACE_SAMPLE_RATIO" default:"1"`
	LogLevel          string  `envconfig:"LOG_LEVEL" default:"info"`
	EnablePrettyLogs  bool    `envconfig:"ENABLE_PRETTY_LOGS" default:"false"`
	DisableConsoleLog bool    `envconfig:"DISABLE_CONSOLE_LOG" default:"false"`
	Environment       string  `envconfig:"NODE_ENV" default:"development"`
}

type TelemetryManager struct {
	config        TelemetryConfig
	shutdownFuncs []func(context.Context) error
	logger        *slog.Logger
}

// NewTelemetryManager reads the telemetry settings. SERVICE_NAME overrides
// serviceName; malformed values fall back to the defaults.
func NewTelemetryManager(serviceName, serviceVersion string) *TelemetryManager {
	var cfg TelemetryConfig
	if err := envconfig.Process("", &cfg); err != nil {
		slog.Warn("Invalid telemetry settings, using defaults", "error", err)
		cfg = TelemetryConfig{
			EnableTelemetry: true,
			OTLPEndpoint:    "http://localhost:4318",
			SampleRatio:     1,
			LogLevel:        "info",
			Environment:     "development",
		}
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = serviceName
	}
	cfg.ServiceVersion = serviceVersion

	return &TelemetryManager{config: cfg}
}

// Config returns the resolved settings
func (tm *TelemetryManager) Config() TelemetryConfig {
	return tm.config
}

func (tm *TelemetryManager) Initialize(ctx context.Context) error {
	tm.setupLogger()

	if !tm.config.EnableTelemetry {
		slog.Info("Telemetry disabled", "service", tm.config.ServiceName)
		return nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(tm.config.ServiceName),
			semconv.ServiceVersionKey.String(tm.config.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(tm.config.Environment),
		),
	)
	if err != nil {
		return err
	}

	if err := tm.initTracing(ctx, res); err != nil {
		slog.Warn("Failed to initialize tracing", "error", err)
	}
	if err := tm.initLogging(ctx, res); err != nil {
		slog.Warn("Failed to initialize OpenTelemetry logging", "error", err)
	}

	slog.Info("Telemetry initialized",
		"service", tm.config.ServiceName,
		"version", tm.config.ServiceVersion,
		"endpoint", tm.config.OTLPEndpoint,
		"sample_ratio", tm.config.SampleRatio,
		"log_level", tm.config.LogLevel,
	)
	return nil
}

func (tm *TelemetryManager) initTracing(ctx context.Context, res *resource.Resource) error {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(tm.config.OTLPEndpoint+"/v1/traces"),
	)
	if err != nil {
		return err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(tm.config.SampleRatio))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	tm.shutdownFuncs = append(tm.shutdownFuncs, tp.Shutdown)
	return nil
}

func (tm *TelemetryManager) initLogging(ctx context.Context, res *resource.Resource) error {
	exporter, err := otlploghttp.New(ctx,
		otlploghttp.WithEndpointURL(tm.config.OTLPEndpoint+"/v1/logs"),
	)
	if err != nil {
		return err
	}

	lp := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(res),
	)

	global.SetLoggerProvider(lp)
	tm.shutdownFuncs = append(tm.shutdownFuncs, lp.Shutdown)
	return nil
}

func (tm *TelemetryManager) setupLogger() {
	out := io.Writer(os.Stdout)
	if tm.config.DisableConsoleLog {
		out = io.Discard
	}
	tm.logger = slog.New(tm.newHandler(out))
	slog.SetDefault(tm.logger)
}

// newHandler builds the console handler, mirrored to OpenTelemetry when enabled
func (tm *TelemetryManager) newHandler(w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLogLevel(tm.config.LogLevel)}

	var handler slog.Handler
	if tm.config.EnablePrettyLogs {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	if tm.config.EnableTelemetry {
		handler = NewOTelHandler(handler, tm.config.ServiceName)
	}
	return handler
}

// Shutdown flushes the exporters and reports every failure
func (tm *TelemetryManager) Shutdown(ctx context.Context) error {
	var errs []error
	for _, shutdown := range tm.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	tm.shutdownFuncs = nil
	return errors.Join(errs...)
}

func (tm *TelemetryManager) Logger() *slog.Logger {
	return tm.logger
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
