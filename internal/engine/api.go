package engine

import (
	"go-guildsync/pkg/version"

	"github.com/danielgtaylor/huma/v2"
)

// APIConfig is the huma configuration shared by the server and the OpenAPI exporter
func APIConfig() huma.Config {
	cfg := huma.DefaultConfig("guildsync API", version.Version)
	cfg.Info.Description = "Guild data synchronization and roster analytics"
	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearerAuth": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	return cfg
}
