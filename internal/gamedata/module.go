package gamedata

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go-guildsync/internal/gamedata/routes"
	"go-guildsync/internal/gamedata/services"
	"go-guildsync/pkg/config"
	"go-guildsync/pkg/database"
	"go-guildsync/pkg/middleware"
	"go-guildsync/pkg/module"

	"github.com/danielgtaylor/huma/v2"
)

// Notifier receives change events and branch errors
type Notifier interface {
	services.Publisher
	services.ErrorReporter
}

// LoginChecker reports whether remote calls can be authorised
type LoginChecker interface {
	IsLoggedIn() bool
}

// Module owns the game data cache and its scheduled refresh
type Module struct {
	*module.BaseModule
	service  *services.Service
	authMw   *middleware.AuthMiddleware
	login    LoginChecker
	schedule string
}

// NewModule builds the cache over the configured store and loads the persisted snapshot.
// Redis backs the snapshot only when tuning selects it and a connection exists.
func NewModule(ctx context.Context, source services.Source, redis *database.Redis, notifier Notifier, login LoginChecker, authMw *middleware.AuthMiddleware, tuning *config.Tuning) *Module {
	var store services.Store = services.NewFileStore(config.GetDataDir())
	if tuning.GameDataStore == "redis" {
		if redis != nil {
			store = services.NewRedisStore(redis)
		} else {
			slog.Warn("Redis store requested but Redis is unavailable, using file store")
		}
	}

	cache := services.NewCache(store, time.Now)
	refresher := services.NewRefresher(source, notifier, time.Now)
	service := services.NewService(cache, refresher, notifier, tuning.GameDataMaxAge, time.Now)
	service.Load(ctx)

	return &Module{
		BaseModule: module.NewBaseModule("gamedata"),
		service:    service,
		authMw:     authMw,
		login:      login,
		schedule:   tuning.GameDataSchedule,
	}
}

func (m *Module) Service() *services.Service {
	return m.service
}

func (m *Module) RegisterUnifiedRoutes(api huma.API, basePath string) {
	routes.RegisterGameDataRoutes(api, basePath, m.service, m.authMw)
}

// StartBackgroundTasks schedules refreshes of stale game data
func (m *Module) StartBackgroundTasks(ctx context.Context) {
	if err := m.Schedule(m.schedule, func() { m.refreshIfStale(ctx) }); err != nil {
		slog.Error("Invalid game data schedule", "schedule", m.schedule, "error", err)
	}
	m.BaseModule.StartBackgroundTasks(ctx)
}

func (m *Module) refreshIfStale(ctx context.Context) {
	if m.login != nil && !m.login.IsLoggedIn() {
		slog.Debug("Skipping scheduled game data refresh, not logged in")
		return
	}
	if !m.service.NeedsRefresh() {
		return
	}

	_, err := m.service.Refresh(ctx, false)
	switch {
	case errors.Is(err, services.ErrRefreshInProgress):
		slog.Debug("Scheduled game data refresh skipped, another is running")
	case err != nil:
		slog.Warn("Scheduled game data refresh failed", "error", err)
	}
}

var _ module.Module = (*Module)(nil)
