// Package engine wires the modules over one upstream client.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"go-guildsync/internal/events"
	"go-guildsync/internal/gamedata"
	"go-guildsync/internal/roster"
	"go-guildsync/internal/session"
	"go-guildsync/internal/settings"
	"go-guildsync/internal/squads"
	"go-guildsync/pkg/app"
	"go-guildsync/pkg/config"
	"go-guildsync/pkg/module"
	"go-guildsync/pkg/swgoh"
)

// Engine holds every module and the shared upstream client
type Engine struct {
	Client   *swgoh.Client
	Settings *settings.Store

	Session  *session.Module
	Events   *events.Module
	GameData *gamedata.Module
	Roster   *roster.Module
	Squads   *squads.Module
}

// New builds the engine. Remembered settings seed the upstream session,
// with the password taken from SWGOH_PASSWORD when set.
func New(ctx context.Context, appCtx *app.AppContext) (*Engine, error) {
	client, err := swgoh.NewClient(swgoh.OptionsFromEnv())
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream client: %w", err)
	}
	upstream := client.Session()

	store := settings.NewStore(config.GetDataDir())
	remembered := store.LoadOrCreate()
	if err := remembered.Apply(upstream, config.GetEnv("SWGOH_PASSWORD", "")); err != nil {
		slog.Warn("Ignoring remembered credentials", "error", err)
	}

	sessionModule := session.NewModule(upstream, store)
	authMw := sessionModule.AuthMiddleware()

	eventsModule := events.NewModule(appCtx.Redis, authMw)
	hub := eventsModule.Hub()

	gamedataModule := gamedata.NewModule(ctx, client, appCtx.Redis, hub, upstream, authMw, appCtx.Tuning)
	gd := gamedataModule.Service()

	rosterModule := roster.NewModule(ctx, appCtx.MongoDB, client, upstream, gd, store, hub, authMw, appCtx.Tuning)
	// a replaced game data snapshot re-enriches the roster
	gd.OnReplace(rosterModule.Service().GameDataReplaced)
	squadsModule := squads.NewModule(appCtx.Redis, rosterModule.Service(), gd, authMw)

	return &Engine{
		Client:   client,
		Settings: store,
		Session:  sessionModule,
		Events:   eventsModule,
		GameData: gamedataModule,
		Roster:   rosterModule,
		Squads:   squadsModule,
	}, nil
}

// Modules lists every module in start order
func (e *Engine) Modules() []module.Module {
	return []module.Module{e.Session, e.Events, e.GameData, e.Roster, e.Squads}
}
