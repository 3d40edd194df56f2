package roster

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go-guildsync/internal/roster/routes"
	"go-guildsync/internal/roster/services"
	"go-guildsync/pkg/config"
	"go-guildsync/pkg/database"
	"go-guildsync/pkg/middleware"
	"go-guildsync/pkg/module"

	"github.com/danielgtaylor/huma/v2"
)

// Settings remembers credentials and the alliance list
type Settings interface {
	services.CredentialSaver
	routes.AllianceCodes
}

// Module owns guild pulls, roster snapshots and roster analytics
type Module struct {
	*module.BaseModule
	service  *services.SyncService
	gamedata services.GameDataProvider
	settings Settings
	authMw   *middleware.AuthMiddleware
	session  services.Session
	schedule string
}

// NewModule wires the sync service. With MongoDB, completed pulls are persisted
// and the last one is restored immediately.
func NewModule(ctx context.Context, mongodb *database.MongoDB, source services.GuildSource, session services.Session, gamedata services.GameDataProvider, settings Settings, notifier services.Notifier, authMw *middleware.AuthMiddleware, tuning *config.Tuning) *Module {
	var store services.PullStore
	if mongodb != nil {
		repo := services.NewRepository(mongodb)
		if err := repo.CreateIndexes(ctx); err != nil {
			slog.Warn("Failed to create roster indexes", "error", err)
		}
		store = repo
	}

	fetcher := services.NewBatchFetcher(source, notifier, tuning.ChunkSize, tuning.MaxInFlight)
	service := services.NewSyncService(session, source, fetcher, gamedata, settings, store, notifier, services.SyncOptions{
		RefreshWindow:   tuning.GuildRefreshWindow,
		RelicPowerScale: tuning.RelicPowerScale,
		Now:             time.Now,
	})

	if err := service.Restore(ctx); err != nil {
		slog.Warn("Failed to restore last guild pull", "error", err)
	}

	return &Module{
		BaseModule: module.NewBaseModule("roster"),
		service:    service,
		gamedata:   gamedata,
		settings:   settings,
		authMw:     authMw,
		session:    session,
		schedule:   tuning.GuildSchedule,
	}
}

func (m *Module) Service() *services.SyncService {
	return m.service
}

func (m *Module) RegisterUnifiedRoutes(api huma.API, basePath string) {
	routes.RegisterRosterRoutes(api, basePath, m.service, m.gamedata, m.settings, m.authMw)
}

// StartBackgroundTasks schedules periodic guild pulls when configured
func (m *Module) StartBackgroundTasks(ctx context.Context) {
	if err := m.Schedule(m.schedule, func() { m.scheduledPull(ctx) }); err != nil {
		slog.Error("Invalid guild pull schedule", "schedule", m.schedule, "error", err)
	}
	m.BaseModule.StartBackgroundTasks(ctx)
}

func (m *Module) scheduledPull(ctx context.Context) {
	if !m.session.Credentials().Complete() {
		slog.Debug("Skipping scheduled guild pull, credentials incomplete")
		return
	}

	_, err := m.service.PullData(ctx)
	switch {
	case errors.Is(err, services.ErrPullInProgress):
		slog.Debug("Scheduled guild pull skipped, another is running")
	case err != nil:
		slog.Warn("Scheduled guild pull failed", "error", err)
	}
}

var _ module.Module = (*Module)(nil)
