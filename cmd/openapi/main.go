package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"go-guildsync/internal/engine"
	eventsRoutes "go-guildsync/internal/events/routes"
	gamedataRoutes "go-guildsync/internal/gamedata/routes"
	rosterRoutes "go-guildsync/internal/roster/routes"
	sessionRoutes "go-guildsync/internal/session/routes"
	squadsRoutes "go-guildsync/internal/squads/routes"
	"go-guildsync/pkg/config"
	"go-guildsync/pkg/middleware"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
)

// Routes are registered without backing services; only their schemas are read.
func buildAPI(prefix string) huma.API {
	cfg := engine.APIConfig()
	if prefix != "" {
		cfg.Servers = []*huma.Server{{URL: prefix}}
	}
	api := humachi.New(chi.NewRouter(), cfg)

	authMw := middleware.NewAuthMiddleware(nil)
	sessionRoutes.RegisterSessionRoutes(api, "/session", nil, authMw)
	eventsRoutes.NewRoutes(nil, authMw).RegisterRoutes(api, "/events")
	gamedataRoutes.RegisterGameDataRoutes(api, "/gamedata", nil, authMw)
	rosterRoutes.RegisterRosterRoutes(api, "/roster", nil, nil, nil, authMw)
	squadsRoutes.RegisterSquadRoutes(api, "/squads", nil, authMw)
	return api
}

func main() {
	out := flag.String("out", "", "file to write (default stdout)")
	format := flag.String("format", "json", "output format: json or yaml")
	flag.Parse()

	api := buildAPI(config.GetAPIPrefix())

	var (
		data []byte
		err  error
	)
	switch *format {
	case "json":
		data, err = json.MarshalIndent(api.OpenAPI(), "", "  ")
	case "yaml":
		data, err = api.OpenAPI().YAML()
	default:
		log.Fatalf("Unknown format: %s", *format)
	}
	if err != nil {
		log.Fatalf("Failed to render OpenAPI document: %v", err)
	}

	if *out == "" {
		os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}
	log.Printf("OpenAPI document written to %s", *out)
}
