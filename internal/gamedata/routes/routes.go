package routes

import (
	"context"
	"errors"
	"net/http"

	"go-guildsync/internal/gamedata/dto"
	"go-guildsync/internal/gamedata/services"
	"go-guildsync/pkg/middleware"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterGameDataRoutes registers game data routes on a shared Huma API
func RegisterGameDataRoutes(api huma.API, basePath string, service *services.Service, authMw *middleware.AuthMiddleware) {
	huma.Register(api, huma.Operation{
		OperationID: "gamedata-get-status",
		Method:      http.MethodGet,
		Path:        basePath + "/status",
		Summary:     "Get game data status",
		Description: "Returns whether the cached game data is populated and fresh",
		Tags:        []string{"Game Data"},
	}, func(ctx context.Context, input *struct{}) (*dto.StatusOutput, error) {
		return &dto.StatusOutput{Body: service.Status()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "gamedata-refresh",
		Method:      http.MethodPost,
		Path:        basePath + "/refresh",
		Summary:     "Refresh game data",
		Description: "Fetches titles, relic table, unit catalog and zeta hints concurrently. A refresh that yields incomplete data keeps the previous snapshot.",
		Tags:        []string{"Game Data"},
		Security:    []map[string][]string{{"bearerAuth": {}}},
	}, func(ctx context.Context, input *dto.RefreshInput) (*dto.RefreshOutput, error) {
		if _, err := authMw.ValidateAuthFromHeaders(input.Authorization, input.Cookie); err != nil {
			return nil, err
		}

		result, err := service.Refresh(ctx, input.Force)
		switch {
		case errors.Is(err, services.ErrRefreshInProgress):
			return nil, huma.Error409Conflict("Game data refresh already in progress")
		case errors.Is(err, services.ErrIncompleteRefresh):
			return nil, huma.Error502BadGateway("Game data refresh incomplete", err)
		case err != nil:
			return nil, huma.Error500InternalServerError("Failed to refresh game data", err)
		}

		out := &dto.RefreshOutput{}
		out.Body.Refreshed = !result.Skipped
		out.Body.Duration = result.Duration.String()
		for _, be := range result.Errors {
			out.Body.Errors = append(out.Body.Errors, be.Error())
		}

		current := service.Current()
		out.Body.HasData = current.HasData()
		out.Body.Updated = current.Updated
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "gamedata-list-units",
		Method:      http.MethodGet,
		Path:        basePath + "/units",
		Summary:     "List units",
		Description: "Lists the cached unit catalog with resolved tags",
		Tags:        []string{"Game Data"},
		Security:    []map[string][]string{{"bearerAuth": {}}},
	}, func(ctx context.Context, input *dto.ListUnitsInput) (*dto.ListUnitsOutput, error) {
		if _, err := authMw.ValidateAuthFromHeaders(input.Authorization, input.Cookie); err != nil {
			return nil, err
		}

		units := service.Units(services.UnitFilter{
			Tag:        input.Tag,
			CombatType: input.CombatType,
			Alignment:  input.Alignment,
			Name:       input.Name,
		})
		out := &dto.ListUnitsOutput{}
		out.Body.Units = units
		out.Body.Tags = service.Current().Tags()
		out.Body.Total = len(units)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "gamedata-list-zetas",
		Method:      http.MethodGet,
		Path:        basePath + "/zetas",
		Summary:     "List zeta ratings",
		Description: "Lists zeta recommendations, best PvP rating first",
		Tags:        []string{"Game Data"},
		Security:    []map[string][]string{{"bearerAuth": {}}},
	}, func(ctx context.Context, input *dto.ListZetasInput) (*dto.ListZetasOutput, error) {
		if _, err := authMw.ValidateAuthFromHeaders(input.Authorization, input.Cookie); err != nil {
			return nil, err
		}

		zetas := service.Zetas(input.Toon)
		out := &dto.ListZetasOutput{}
		out.Body.Zetas = zetas
		out.Body.Total = len(zetas)
		return out, nil
	})
}
