package session

import (
	"time"

	"go-guildsync/internal/session/routes"
	"go-guildsync/internal/session/services"
	"go-guildsync/pkg/config"
	"go-guildsync/pkg/middleware"
	"go-guildsync/pkg/module"

	"github.com/danielgtaylor/huma/v2"
)

// Module owns upstream sign-in and API tokens
type Module struct {
	*module.BaseModule
	service *services.Service
	authMw  *middleware.AuthMiddleware
}

// NewModule creates the session module and the auth middleware every other
// module validates API tokens with
func NewModule(session services.Session, settings services.Settings) *Module {
	issuer := services.NewTokenIssuer(config.GetEnv("JWT_SECRET", ""), time.Now)
	return &Module{
		BaseModule: module.NewBaseModule("session"),
		service:    services.NewService(session, settings, issuer),
		authMw:     middleware.NewAuthMiddleware(issuer),
	}
}

func (m *Module) Service() *services.Service {
	return m.service
}

// AuthMiddleware validates API tokens issued at login
func (m *Module) AuthMiddleware() *middleware.AuthMiddleware {
	return m.authMw
}

func (m *Module) RegisterUnifiedRoutes(api huma.API, basePath string) {
	routes.RegisterSessionRoutes(api, basePath, m.service, m.authMw)
}

var _ module.Module = (*Module)(nil)
