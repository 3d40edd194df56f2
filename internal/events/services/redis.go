package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"go-guildsync/internal/events/models"
	"go-guildsync/pkg/database"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventsChannel is the Redis channel events are relayed on
const EventsChannel = "guildsync:events"

// RedisRelay shares events between instances over Redis pub/sub
type RedisRelay struct {
	redis    *database.Redis
	hub      *Hub
	serverID string
	pubsub   *redis.PubSub
}

// NewRedisRelay creates a relay for hub and installs it
func NewRedisRelay(redis *database.Redis, hub *Hub) *RedisRelay {
	r := &RedisRelay{
		redis:    redis,
		hub:      hub,
		serverID: uuid.New().String(),
	}
	hub.SetRelay(r)
	return r
}

// Start subscribes to the events channel and delivers remote events locally
func (r *RedisRelay) Start(ctx context.Context) error {
	r.pubsub = r.redis.Client.Subscribe(ctx, EventsChannel)
	if _, err := r.pubsub.Receive(ctx); err != nil {
		r.pubsub.Close()
		return err
	}

	slog.Info("Event relay started", "server_id", r.serverID, "channel", EventsChannel)
	go r.listen(ctx)
	return nil
}

func (r *RedisRelay) Stop() error {
	if r.pubsub != nil {
		return r.pubsub.Close()
	}
	return nil
}

func (r *RedisRelay) listen(ctx context.Context) {
	ch := r.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			r.handle(msg.Payload)
		}
	}
}

func (r *RedisRelay) handle(payload string) {
	var env models.RedisEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		slog.Error("Failed to unmarshal relayed event", "error", err)
		return
	}
	if env.ServerID == r.serverID {
		return
	}
	r.hub.deliver(env.Event)
}

// Forward publishes an event to other instances without blocking the caller
func (r *RedisRelay) Forward(event models.Event) {
	data, err := json.Marshal(models.RedisEnvelope{ServerID: r.serverID, Event: event})
	if err != nil {
		slog.Error("Failed to marshal event for relay", "error", err, "event_type", event.Type)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.redis.Client.Publish(ctx, EventsChannel, data).Err(); err != nil {
			slog.Warn("Failed to relay event", "error", err, "event_type", event.Type)
		}
	}()
}
