package events

import (
	"context"
	"log/slog"

	"go-guildsync/internal/events/routes"
	"go-guildsync/internal/events/services"
	"go-guildsync/pkg/config"
	"go-guildsync/pkg/database"
	"go-guildsync/pkg/middleware"
	"go-guildsync/pkg/module"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
)

// Module owns the event hub and its websocket feed
type Module struct {
	*module.BaseModule
	hub    *services.Hub
	relay  *services.RedisRelay
	routes *routes.Routes
}

// NewModule creates the events module. Redis is optional; without it events stay in-process.
// EVENTS_BUFFER sizes each subscriber's queue.
func NewModule(redis *database.Redis, authMw *middleware.AuthMiddleware) *Module {
	hub := services.NewHub(config.GetIntEnv("EVENTS_BUFFER", 0))

	m := &Module{
		BaseModule: module.NewBaseModule("events"),
		hub:        hub,
		routes:     routes.NewRoutes(hub, authMw),
	}
	if redis != nil {
		m.relay = services.NewRedisRelay(redis, hub)
	}
	return m
}

// Hub returns the shared event hub
func (m *Module) Hub() *services.Hub {
	return m.hub
}

func (m *Module) RegisterUnifiedRoutes(api huma.API, basePath string) {
	m.routes.RegisterRoutes(api, basePath)
}

// RegisterHTTPHandler mounts the websocket endpoint on the raw router
func (m *Module) RegisterHTTPHandler(r chi.Router, path string) {
	r.Get(path, m.routes.HandleWebSocket)
}

func (m *Module) StartBackgroundTasks(ctx context.Context) {
	if m.relay != nil {
		if err := m.relay.Start(ctx); err != nil {
			slog.Warn("Event relay unavailable, events stay local", "error", err)
		}
	}
	m.BaseModule.StartBackgroundTasks(ctx)
}

func (m *Module) Stop() {
	if m.relay != nil {
		m.relay.Stop()
	}
	m.BaseModule.Stop()
}

var _ module.Module = (*Module)(nil)
