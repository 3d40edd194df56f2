package routes

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	gdservices "go-guildsync/internal/gamedata/services"
	"go-guildsync/internal/roster/dto"
	"go-guildsync/internal/roster/services"
	"go-guildsync/pkg/handlers"
	"go-guildsync/pkg/middleware"
	"go-guildsync/pkg/swgoh"

	"github.com/danielgtaylor/huma/v2"
)

// AllianceCodes supplies the saved alliance ally codes
type AllianceCodes interface {
	AllianceCodes() []swgoh.AllyCode
}

// rosterError maps roster failures onto API errors
func rosterError(err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrPullInProgress):
		return huma.Error409Conflict("A guild data pull is already in progress")
	case errors.Is(err, services.ErrToolsLocked):
		return huma.Error409Conflict("Roster data is not ready")
	case errors.Is(err, services.ErrNoRosterData):
		return huma.Error404NotFound("No roster data available")
	case errors.Is(err, services.ErrDataUnavailable):
		return huma.Error409Conflict(services.ErrDataUnavailable.Error())
	case errors.Is(err, services.ErrLoginRejected):
		return huma.Error401Unauthorized("Login was rejected", err)
	case errors.Is(err, gdservices.ErrIncompleteRefresh):
		return huma.Error502BadGateway("Game data refresh incomplete", err)
	default:
		return handlers.UpstreamError(err, fallback)
	}
}

func status(service *services.SyncService) dto.RosterStatus {
	state := service.State()
	st := dto.RosterStatus{
		State:         state,
		Activity:      state.Activity(),
		ToolsUnlocked: state.ToolsUnlocked(),
		FetchUnlocked: state.FetchUnlocked(),
	}
	if snap := service.Snapshot(); snap != nil {
		st.SnapshotID = snap.ID
		st.PlayerName = snap.PlayerName
		st.Players = len(snap.Roster)
		st.IsAllDataPresent = snap.IsAllDataAvailable()
		pulledAt := snap.PulledAt
		st.PulledAt = &pulledAt
		if snap.Guild != nil {
			st.GuildName = snap.Guild.Name
		}
	}
	return st
}

// RegisterRosterRoutes registers roster routes on a shared Huma API
func RegisterRosterRoutes(api huma.API, basePath string, service *services.SyncService, gamedata services.GameDataProvider, alliance AllianceCodes, authMw *middleware.AuthMiddleware) {
	security := []map[string][]string{{"bearerAuth": {}}}

	huma.Register(api, huma.Operation{
		OperationID: "roster-get-status",
		Method:      http.MethodGet,
		Path:        basePath + "/status",
		Summary:     "Get roster status",
		Description: "Returns the program state and a summary of the held roster snapshot",
		Tags:        []string{"Roster"},
		Security:    security,
	}, func(ctx context.Context, input *dto.AuthInput) (*dto.StatusOutput, error) {
		if _, err := authMw.ValidateAuthFromHeaders(input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		return &dto.StatusOutput{Body: status(service)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "roster-pull",
		Method:      http.MethodPost,
		Path:        basePath + "/pull",
		Summary:     "Pull guild data",
		Description: "Signs in if needed, refetches guild and member data older than the refresh window, refreshes stale game data and publishes a new roster snapshot",
		Tags:        []string{"Roster"},
		Security:    security,
	}, func(ctx context.Context, input *dto.AuthInput) (*dto.PullOutput, error) {
		if _, err := authMw.ValidateAuthFromHeaders(input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		if _, err := service.PullData(ctx); err != nil {
			return nil, rosterError(err, "Failed to pull guild data")
		}
		return &dto.PullOutput{Body: status(service)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "roster-enrich",
		Method:      http.MethodPost,
		Path:        basePath + "/enrich",
		Summary:     "Rebuild roster",
		Description: "Recomputes relic-corrected power and derived player data against the current game data",
		Tags:        []string{"Roster"},
		Security:    security,
	}, func(ctx context.Context, input *dto.AuthInput) (*dto.PullOutput, error) {
		if _, err := authMw.ValidateAuthFromHeaders(input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		if _, err := service.Enrich(ctx); err != nil {
			return nil, rosterError(err, "Failed to rebuild roster")
		}
		return &dto.PullOutput{Body: status(service)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "roster-list-players",
		Method:      http.MethodGet,
		Path:        basePath + "/players",
		Summary:     "List players",
		Description: "Lists every member with power figures",
		Tags:        []string{"Roster"},
		Security:    security,
	}, func(ctx context.Context, input *dto.AuthInput) (*dto.ListPlayersOutput, error) {
		if _, err := authMw.ValidateAuthFromHeaders(input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		snap, err := service.ReadySnapshot()
		if err != nil {
			return nil, rosterError(err, "Failed to list players")
		}

		out := &dto.ListPlayersOutput{}
		out.Body.Players = make([]dto.PlayerSummary, 0, len(snap.Roster))
		for i := range snap.Roster {
			out.Body.Players = append(out.Body.Players, dto.NewPlayerSummary(&snap.Roster[i]))
		}
		out.Body.Total = len(out.Body.Players)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "roster-get-player",
		Method:      http.MethodGet,
		Path:        basePath + "/players/{player}",
		Summary:     "Get player",
		Description: "Returns one member with roster and unlocked zetas",
		Tags:        []string{"Roster"},
		Security:    security,
	}, func(ctx context.Context, input *dto.GetPlayerInput) (*dto.PlayerOutput, error) {
		if _, err := authMw.ValidateAuthFromHeaders(input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		snap, err := service.ReadySnapshot()
		if err != nil {
			return nil, rosterError(err, "Failed to get player")
		}
		player, ok := services.FindPlayer(snap, input.Key)
		if !ok {
			return nil, huma.Error404NotFound("Player not found")
		}

		out := &dto.PlayerOutput{}
		out.Body.Player = *player
		out.Body.Zetas = services.ZetaList(player)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "roster-list-units",
		Method:      http.MethodGet,
		Path:        basePath + "/units",
		Summary:     "List unit names",
		Description: "Lists unit names from the catalog, or from the rosters when no catalog is cached",
		Tags:        []string{"Roster"},
		Security:    security,
	}, func(ctx context.Context, input *dto.ListUnitsInput) (*dto.ListUnitsOutput, error) {
		if _, err := authMw.ValidateAuthFromHeaders(input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		snap, err := service.ReadySnapshot()
		if err != nil {
			return nil, rosterError(err, "Failed to list units")
		}

		gd := gamedata.Current()
		out := &dto.ListUnitsOutput{}
		out.Body.Units = services.UnitNames(gd, snap.Roster, input.Filter)
		out.Body.Filters = services.UnitFilters(gd)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "roster-lookup-unit",
		Method:      http.MethodGet,
		Path:        basePath + "/units/{name}",
		Summary:     "Look up unit",
		Description: "Lists every member's copy of a unit, strongest first",
		Tags:        []string{"Roster"},
		Security:    security,
	}, func(ctx context.Context, input *dto.UnitLookupInput) (*dto.UnitLookupOutput, error) {
		if _, err := authMw.ValidateAuthFromHeaders(input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		snap, err := service.ReadySnapshot()
		if err != nil {
			return nil, rosterError(err, "Failed to look up unit")
		}

		out := &dto.UnitLookupOutput{}
		out.Body.Unit = input.Name
		out.Body.Owners = services.UnitLookup(snap.Roster, input.Name)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "roster-pit-report",
		Method:      http.MethodGet,
		Path:        basePath + "/pit",
		Summary:     "Challenge raid readiness",
		Description: "Lists members with relic 5 or better characters and who owns each of them",
		Tags:        []string{"Roster"},
		Security:    security,
	}, func(ctx context.Context, input *dto.AuthInput) (*dto.PitOutput, error) {
		if _, err := authMw.ValidateAuthFromHeaders(input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		snap, err := service.ReadySnapshot()
		if err != nil {
			return nil, rosterError(err, "Failed to build report")
		}
		return &dto.PitOutput{Body: services.PitReport(snap)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "roster-alliance",
		Method:      http.MethodGet,
		Path:        basePath + "/alliance",
		Summary:     "Alliance summary",
		Description: "Looks up the guild of each alliance ally code. Failed lookups are left out.",
		Tags:        []string{"Roster"},
		Security:    security,
	}, func(ctx context.Context, input *dto.AllianceInput) (*dto.AllianceOutput, error) {
		if _, err := authMw.ValidateAuthFromHeaders(input.Authorization, input.Cookie); err != nil {
			return nil, err
		}

		var codes []swgoh.AllyCode
		if input.Codes != "" {
			for _, raw := range handlers.ParseCommaSeparated(input.Codes) {
				code, err := swgoh.ParseAllyCode(raw)
				if err != nil {
					return nil, handlers.UpstreamError(err, "Invalid ally code")
				}
				codes = append(codes, code)
			}
		} else if alliance != nil {
			codes = alliance.AllianceCodes()
		}

		out := &dto.AllianceOutput{}
		out.Body.Guilds = service.AllianceSummary(ctx, codes)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "roster-csv",
		Method:      http.MethodGet,
		Path:        basePath + "/csv",
		Summary:     "Export roster CSV",
		Description: "One row of power figures per member",
		Tags:        []string{"Roster"},
		Security:    security,
	}, func(ctx context.Context, input *dto.AuthInput) (*dto.FileOutput, error) {
		if _, err := authMw.ValidateAuthFromHeaders(input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		snap, err := service.ReadySnapshot()
		if err != nil {
			return nil, rosterError(err, "Failed to export roster")
		}

		var buf bytes.Buffer
		if err := services.WriteRosterCSV(&buf, snap.Roster); err != nil {
			return nil, huma.Error500InternalServerError("Failed to write CSV", err)
		}
		return &dto.FileOutput{
			ContentType:        "text/csv",
			ContentDisposition: `attachment; filename="roster.csv"`,
			Body:               buf.Bytes(),
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "roster-export",
		Method:      http.MethodGet,
		Path:        basePath + "/export",
		Summary:     "Export snapshot",
		Description: "Writes the guild and every member record as one JSON document",
		Tags:        []string{"Roster"},
		Security:    security,
	}, func(ctx context.Context, input *dto.AuthInput) (*dto.FileOutput, error) {
		if _, err := authMw.ValidateAuthFromHeaders(input.Authorization, input.Cookie); err != nil {
			return nil, err
		}

		var buf bytes.Buffer
		if err := service.Export(&buf); err != nil {
			return nil, rosterError(err, "Failed to export snapshot")
		}
		return &dto.FileOutput{
			ContentType:        "application/json",
			ContentDisposition: `attachment; filename="guild.json"`,
			Body:               buf.Bytes(),
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "roster-import",
		Method:      http.MethodPost,
		Path:        basePath + "/import",
		Summary:     "Import snapshot",
		Description: "Replaces the held guild and members with a previously exported snapshot",
		Tags:        []string{"Roster"},
		Security:    security,
	}, func(ctx context.Context, input *dto.ImportInput) (*dto.PullOutput, error) {
		if _, err := authMw.ValidateAuthFromHeaders(input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		if _, err := service.ImportFrom(ctx, bytes.NewReader(input.RawBody)); err != nil {
			var de *swgoh.DeserializationError
			if errors.As(err, &de) {
				return nil, huma.Error422UnprocessableEntity("Snapshot is not valid JSON", err)
			}
			return nil, rosterError(err, "Failed to import snapshot")
		}
		return &dto.PullOutput{Body: status(service)}, nil
	})
}
