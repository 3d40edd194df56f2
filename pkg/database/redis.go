package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go-guildsync/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrCacheMiss is returned by Get/GetJSON when the key does not exist.
var ErrCacheMiss = errors.New("cache miss")

// Redis wraps a go-redis client with optional tracing.
type Redis struct {
	Client *redis.Client
	tracer trace.Tracer
}

// NewRedis connects to REDIS_URL (default redis://localhost:6379) and pings it.
func NewRedis(ctx context.Context) (*Redis, error) {
	opt, err := redis.ParseURL(config.GetEnv("REDIS_URL", "redis://localhost:6379"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Connected to Redis", "addr", opt.Addr)
	return NewRedisFromClient(client), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client) *Redis {
	r := &Redis{Client: client}
	if config.GetBoolEnv("ENABLE_TELEMETRY", true) {
		r.tracer = otel.Tracer("go-guildsync/redis")
	}
	return r
}

func (r *Redis) Close() error {
	return r.Client.Close()
}

func (r *Redis) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return r.Client.Ping(ctx).Err()
}

// trace runs fn inside a span when tracing is enabled.
func (r *Redis) trace(ctx context.Context, op string, key string, fn func(context.Context) error, attrs ...attribute.KeyValue) error {
	if r.tracer == nil {
		return fn(ctx)
	}

	ctx, span := r.tracer.Start(ctx, "redis."+op,
		trace.WithAttributes(
			attribute.String("redis.key", key),
			attribute.String("redis.operation", op),
		),
	)
	defer span.End()
	span.SetAttributes(attrs...)

	err := fn(ctx)
	if err != nil && !errors.Is(err, ErrCacheMiss) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// SetJSON stores a JSON-serializable value. A zero expiration keeps the key indefinitely.
func (r *Redis) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return r.trace(ctx, "set_json", key, func(ctx context.Context) error {
		return r.Client.Set(ctx, key, data, expiration).Err()
	}, attribute.Int("redis.data_size", len(data)))
}

// GetJSON retrieves and unmarshals a JSON value.
func (r *Redis) GetJSON(ctx context.Context, key string, dest interface{}) error {
	var data []byte
	err := r.trace(ctx, "get_json", key, func(ctx context.Context) error {
		v, err := r.Client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		data = v
		return err
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return nil
}
