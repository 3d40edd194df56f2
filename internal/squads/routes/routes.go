package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	rosterservices "go-guildsync/internal/roster/services"
	"go-guildsync/internal/squads/dto"
	"go-guildsync/internal/squads/models"
	"go-guildsync/internal/squads/services"
	"go-guildsync/pkg/handlers"
	"go-guildsync/pkg/middleware"
	"go-guildsync/pkg/validation"

	"github.com/danielgtaylor/huma/v2"
)

// squadError maps squad failures onto API errors
func squadError(err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrNoPresets):
		return huma.Error404NotFound("Unable to load squad presets.")
	case errors.Is(err, services.ErrReportNotFound):
		return huma.Error404NotFound("Report not found or expired")
	case errors.Is(err, rosterservices.ErrToolsLocked):
		return huma.Error409Conflict("Roster data is not ready")
	case errors.Is(err, rosterservices.ErrNoRosterData):
		return huma.Error404NotFound("No roster data available")
	default:
		return handlers.UpstreamError(err, fallback)
	}
}

func reportOutput(report *models.PresetReport, format string) (*dto.ReportOutput, error) {
	var buf bytes.Buffer
	if format == dto.FormatCSV {
		if err := report.WriteCSV(&buf); err != nil {
			return nil, huma.Error500InternalServerError("Failed to write CSV", err)
		}
		return &dto.ReportOutput{
			ContentType:        "text/csv",
			ContentDisposition: `attachment; filename="squads-` + report.ID + `.csv"`,
			Body:               buf.Bytes(),
		}, nil
	}

	if err := json.NewEncoder(&buf).Encode(report); err != nil {
		return nil, huma.Error500InternalServerError("Failed to encode report", err)
	}
	return &dto.ReportOutput{ContentType: "application/json", Body: buf.Bytes()}, nil
}

// RegisterSquadRoutes registers squad routes on a shared Huma API
func RegisterSquadRoutes(api huma.API, basePath string, service *services.Service, authMw *middleware.AuthMiddleware) {
	security := []map[string][]string{{"bearerAuth": {}}}

	huma.Register(api, huma.Operation{
		OperationID: "squads-search",
		Method:      http.MethodPost,
		Path:        basePath + "/search",
		Summary:     "Search squad",
		Description: "Lists the members owning all five units, strongest squad first",
		Tags:        []string{"Squads"},
		Security:    security,
	}, func(ctx context.Context, input *dto.SearchInput) (*dto.SearchOutput, error) {
		if _, err := authMw.ValidateAuthFromHeaders(input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		if msgs := validation.ValidateStruct(input.Body); len(msgs) > 0 {
			return nil, huma.Error422UnprocessableEntity(strings.Join(msgs, "; "))
		}

		results, err := service.Search(ctx, input.Body.Units)
		if err != nil {
			return nil, squadError(err, "Failed to search squad")
		}

		out := &dto.SearchOutput{}
		out.Body.Units = input.Body.Units
		out.Body.Results = results
		out.Body.Total = len(results)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "squads-report",
		Method:      http.MethodPost,
		Path:        basePath + "/report",
		Summary:     "Preset report",
		Description: "Scores every preset squad for every member. The report is retained for a day when Redis is available.",
		Tags:        []string{"Squads"},
		Security:    security,
	}, func(ctx context.Context, input *dto.ReportInput) (*dto.ReportOutput, error) {
		if _, err := authMw.ValidateAuthFromHeaders(input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		report, err := service.Report(ctx, input.Body)
		if err != nil {
			return nil, squadError(err, "Failed to generate report")
		}
		return reportOutput(report, input.Format)
	})

	huma.Register(api, huma.Operation{
		OperationID: "squads-get-report",
		Method:      http.MethodGet,
		Path:        basePath + "/reports/{id}",
		Summary:     "Get retained report",
		Description: "Returns a previously generated report",
		Tags:        []string{"Squads"},
		Security:    security,
	}, func(ctx context.Context, input *dto.GetReportInput) (*dto.ReportOutput, error) {
		if _, err := authMw.ValidateAuthFromHeaders(input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		report, err := service.GetReport(ctx, input.ID)
		if err != nil {
			return nil, squadError(err, "Failed to load report")
		}
		return reportOutput(report, input.Format)
	})

	huma.Register(api, huma.Operation{
		OperationID: "squads-list-presets",
		Method:      http.MethodGet,
		Path:        basePath + "/presets",
		Summary:     "List presets",
		Description: "Lists the squad presets from the preset file",
		Tags:        []string{"Squads"},
		Security:    security,
	}, func(ctx context.Context, input *dto.AuthInput) (*dto.PresetsOutput, error) {
		if _, err := authMw.ValidateAuthFromHeaders(input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		presets, err := service.Presets()
		if err != nil {
			return nil, squadError(err, "Failed to load presets")
		}

		out := &dto.PresetsOutput{}
		out.Body.Presets = presets
		out.Body.Total = len(presets)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "squads-list-units",
		Method:      http.MethodGet,
		Path:        basePath + "/units",
		Summary:     "List squad units",
		Description: "Lists the characters a squad can be built from",
		Tags:        []string{"Squads"},
		Security:    security,
	}, func(ctx context.Context, input *dto.AuthInput) (*dto.UnitsOutput, error) {
		if _, err := authMw.ValidateAuthFromHeaders(input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		units, err := service.UnitNames()
		if err != nil {
			return nil, squadError(err, "Failed to list units")
		}

		out := &dto.UnitsOutput{}
		out.Body.Units = units
		return out, nil
	})
}
