package squads

import (
	"path/filepath"
	"time"

	"go-guildsync/internal/squads/routes"
	"go-guildsync/internal/squads/services"
	"go-guildsync/pkg/config"
	"go-guildsync/pkg/database"
	"go-guildsync/pkg/middleware"
	"go-guildsync/pkg/module"

	"github.com/danielgtaylor/huma/v2"
)

// Module serves squad searches and preset reports
type Module struct {
	*module.BaseModule
	service *services.Service
	authMw  *middleware.AuthMiddleware
}

// NewModule wires the squad service. Reports are retained only with Redis.
func NewModule(redis *database.Redis, roster services.RosterSource, catalog services.CatalogSource, authMw *middleware.AuthMiddleware) *Module {
	var store services.ReportStore
	if redis != nil {
		store = services.NewRedisReportStore(redis, config.GetDurationEnv("REPORT_TTL", services.DefaultReportTTL))
	}

	presetsPath := config.GetEnv("PRESETS_FILE", filepath.Join(config.GetDataDir(), services.PresetFileName))
	return &Module{
		BaseModule: module.NewBaseModule("squads"),
		service:    services.NewService(roster, catalog, presetsPath, store, time.Now),
		authMw:     authMw,
	}
}

func (m *Module) Service() *services.Service {
	return m.service
}

func (m *Module) RegisterUnifiedRoutes(api huma.API, basePath string) {
	routes.RegisterSquadRoutes(api, basePath, m.service, m.authMw)
}

var _ module.Module = (*Module)(nil)
