package routes

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go-guildsync/internal/session/dto"
	"go-guildsync/internal/session/services"
	"go-guildsync/pkg/handlers"
	"go-guildsync/pkg/middleware"
	"go-guildsync/pkg/validation"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterSessionRoutes registers session routes on a shared Huma API
func RegisterSessionRoutes(api huma.API, basePath string, service *services.Service, authMw *middleware.AuthMiddleware) {
	security := []map[string][]string{{"bearerAuth": {}}}

	huma.Register(api, huma.Operation{
		OperationID: "session-login",
		Method:      http.MethodPost,
		Path:        basePath + "/login",
		Summary:     "Log in",
		Description: "Signs in to the upstream API and returns an API token valid as long as the upstream token",
		Tags:        []string{"Session"},
	}, func(ctx context.Context, input *dto.LoginInput) (*dto.LoginOutput, error) {
		if msgs := validation.ValidateStruct(input.Body); len(msgs) > 0 {
			return nil, huma.Error422UnprocessableEntity(strings.Join(msgs, "; "))
		}

		result, err := service.Login(ctx, services.LoginRequest{
			Username: input.Body.Username,
			Password: input.Body.Password,
			UserID:   input.Body.UserID,
			AllyCode: input.Body.AllyCode,
		})
		if err != nil {
			if errors.Is(err, services.ErrLoginRejected) {
				return nil, huma.Error401Unauthorized(err.Error())
			}
			return nil, handlers.UpstreamError(err, "Login failed")
		}

		maxAge := int(time.Until(result.ExpiresAt).Seconds())
		if maxAge < 0 {
			maxAge = 0
		}
		return &dto.LoginOutput{
			SetCookie: middleware.CreateAuthCookieHeader(result.Token, maxAge),
			Body: dto.LoginResponse{
				Token:     result.Token,
				AllyCode:  result.AllyCode,
				Username:  result.Username,
				ExpiresAt: result.ExpiresAt,
			},
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "session-logout",
		Method:      http.MethodPost,
		Path:        basePath + "/logout",
		Summary:     "Log out",
		Description: "Clears the authentication cookie",
		Tags:        []string{"Session"},
	}, func(ctx context.Context, input *struct{}) (*dto.LogoutOutput, error) {
		out := &dto.LogoutOutput{SetCookie: middleware.CreateClearCookieHeader()}
		out.Body.Success = true
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "session-get-status",
		Method:      http.MethodGet,
		Path:        basePath + "/status",
		Summary:     "Get session status",
		Description: "Reports whether credentials are stored and the upstream token is valid",
		Tags:        []string{"Session"},
	}, func(ctx context.Context, input *dto.StatusInput) (*dto.StatusOutput, error) {
		return &dto.StatusOutput{Body: service.Status()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "session-get-alliance",
		Method:      http.MethodGet,
		Path:        basePath + "/alliance",
		Summary:     "Get alliance",
		Description: "Returns the saved alliance ally codes",
		Tags:        []string{"Session"},
		Security:    security,
	}, func(ctx context.Context, input *dto.AuthInput) (*dto.AllianceOutput, error) {
		if _, err := authMw.ValidateAuthFromHeaders(input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		out := &dto.AllianceOutput{}
		out.Body.AllyCodes = service.Alliance()
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "session-set-alliance",
		Method:      http.MethodPut,
		Path:        basePath + "/alliance",
		Summary:     "Set alliance",
		Description: "Replaces the saved alliance ally codes",
		Tags:        []string{"Session"},
		Security:    security,
	}, func(ctx context.Context, input *dto.SetAllianceInput) (*dto.AllianceOutput, error) {
		if _, err := authMw.ValidateAuthFromHeaders(input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		if msgs := validation.ValidateStruct(input.Body); len(msgs) > 0 {
			return nil, huma.Error422UnprocessableEntity(strings.Join(msgs, "; "))
		}

		codes, err := service.SetAlliance(input.Body.AllyCodes)
		if err != nil {
			return nil, handlers.UpstreamError(err, "Failed to save alliance")
		}
		out := &dto.AllianceOutput{}
		out.Body.AllyCodes = codes
		return out, nil
	})
}
