package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"go-guildsync/internal/session/services"
	"go-guildsync/pkg/middleware"
	"go-guildsync/pkg/swgoh"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSession struct {
	creds swgoh.Credentials
	token swgoh.AccessToken
}

func (s *stubSession) UpdateCredentials(username, password, userID, allyCode string) (bool, error) {
	code, err := swgoh.ParseAllyCode(allyCode)
	if err != nil {
		return false, err
	}
	s.creds = swgoh.Credentials{Username: username, Password: password, UserID: 7, AllyCode: code}
	return true, nil
}

func (s *stubSession) LogIn(context.Context) (bool, error) {
	if s.creds.Password != "secret" {
		return false, nil
	}
	s.token = swgoh.NewAccessToken("upstream", 3600, time.Now())
	return true, nil
}

func (s *stubSession) Credentials() swgoh.Credentials { return s.creds }
func (s *stubSession) Token() swgoh.AccessToken       { return s.token }
func (s *stubSession) IsLoggedIn() bool               { return s.token.IsValid(time.Now()) }
func (s *stubSession) LastLoginFailure() string       { return "Invalid credentials" }

type stubSettings struct {
	alliance []swgoh.AllyCode
}

func (s *stubSettings) SaveCredentials(swgoh.Credentials) error { return nil }
func (s *stubSettings) SetAlliance(codes []swgoh.AllyCode) error {
	s.alliance = codes
	return nil
}
func (s *stubSettings) AllianceCodes() []swgoh.AllyCode { return s.alliance }

func newTestAPI(t *testing.T) humatest.TestAPI {
	t.Helper()
	issuer := services.NewTokenIssuer("test-secret", nil)
	service := services.NewService(&stubSession{token: swgoh.NullToken()}, &stubSettings{}, issuer)

	_, api := humatest.New(t)
	RegisterSessionRoutes(api, "/session", service, middleware.NewAuthMiddleware(issuer))
	return api
}

func loginBody(password string) map[string]any {
	return map[string]any{
		"username":  "rey",
		"password":  password,
		"user_id":   "7",
		"ally_code": "123-456-789",
	}
}

func TestLoginRoute(t *testing.T) {
	api := newTestAPI(t)

	resp := api.Post("/session/login", loginBody("secret"))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.True(t, strings.HasPrefix(resp.Header().Get("Set-Cookie"), middleware.AuthCookieName+"="))

	var body struct {
		Token    string `json:"token"`
		AllyCode uint32 `json:"ally_code"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, uint32(123456789), body.AllyCode)

	resp = api.Get("/session/alliance", "Authorization: Bearer "+body.Token)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = api.Put("/session/alliance", "Authorization: Bearer "+body.Token, map[string]any{
		"ally_codes": []string{"111-111-111"},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), "111111111")

	resp = api.Get("/session/status")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"logged_in":true`)
}

func TestLoginRouteFailures(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{"rejected", loginBody("wrong"), http.StatusUnauthorized},
		{"bad ally code", func() map[string]any {
			b := loginBody("secret")
			b["ally_code"] = "12-34"
			return b
		}(), http.StatusUnprocessableEntity},
		{"bad user id", func() map[string]any {
			b := loginBody("secret")
			b["user_id"] = "abc"
			return b
		}(), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := api.Post("/session/login", tt.body)
			assert.Equal(t, tt.status, resp.Code, resp.Body.String())
		})
	}
}

func TestAllianceRequiresToken(t *testing.T) {
	api := newTestAPI(t)

	resp := api.Get("/session/alliance")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = api.Get("/session/alliance", "Authorization: Bearer nonsense")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
