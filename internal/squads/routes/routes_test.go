package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gdmodels "go-guildsync/internal/gamedata/models"
	rostermodels "go-guildsync/internal/roster/models"
	rosterservices "go-guildsync/internal/roster/services"
	"go-guildsync/internal/squads/models"
	"go-guildsync/internal/squads/services"
	"go-guildsync/pkg/middleware"
	"go-guildsync/pkg/swgoh"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bearer = "Authorization: Bearer good"

var rebels = []string{"Rey", "Finn", "Poe Dameron", "BB-8", "Resistance Trooper"}

type staticValidator struct{}

func (staticValidator) ValidateJWT(token string) (*middleware.Principal, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &middleware.Principal{Subject: "123456789"}, nil
}

type stubRoster struct {
	snap *rostermodels.RosterSnapshot
	err  error
}

func (s *stubRoster) ReadySnapshot() (*rostermodels.RosterSnapshot, error) {
	return s.snap, s.err
}

type stubCatalog struct{}

func (stubCatalog) Current() *gdmodels.GameData { return nil }

type memoryStore struct {
	reports map[string]*models.PresetReport
}

func (m *memoryStore) SaveReport(_ context.Context, r *models.PresetReport) error {
	m.reports[r.ID] = r
	return nil
}

func (m *memoryStore) LoadReport(_ context.Context, id string) (*models.PresetReport, error) {
	if r, ok := m.reports[id]; ok {
		return r, nil
	}
	return nil, services.ErrReportNotFound
}

func roster() *rostermodels.RosterSnapshot {
	squad := func(power int64) []swgoh.Character {
		units := make([]swgoh.Character, 0, len(rebels))
		for _, name := range rebels {
			units = append(units, swgoh.Character{
				Name:       name,
				CombatType: swgoh.CombatTypeCharacter,
				Level:      85,
				Rarity:     7,
				Gear:       13,
				GP:         power,
				TruePower:  power,
			})
		}
		return units
	}
	return &rostermodels.RosterSnapshot{Roster: []rostermodels.Player{
		{Name: "Alice", AllyCode: 111111111, Roster: squad(20000)},
		{Name: "Bob", AllyCode: 222222222, Roster: squad(25000)},
	}}
}

func newTestAPI(t *testing.T, src *stubRoster, presets string) humatest.TestAPI {
	t.Helper()
	path := filepath.Join(t.TempDir(), services.PresetFileName)
	if presets != "" {
		require.NoError(t, os.WriteFile(path, []byte(presets), 0o600))
	}

	store := &memoryStore{reports: map[string]*models.PresetReport{}}
	service := services.NewService(src, stubCatalog{}, path, store, func() time.Time {
		return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	})

	_, api := humatest.New(t)
	RegisterSquadRoutes(api, "/squads", service, middleware.NewAuthMiddleware(staticValidator{}))
	return api
}

func TestSearchRoute(t *testing.T) {
	api := newTestAPI(t, &stubRoster{snap: roster()}, "")

	resp := api.Post("/squads/search", bearer, map[string]any{"units": rebels})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body struct {
		Total   int `json:"total"`
		Results []struct {
			Player     string `json:"player"`
			TotalPower int64  `json:"total_power"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, "Bob", body.Results[0].Player)
	assert.Equal(t, int64(125000), body.Results[0].TotalPower)
}

func TestSearchRouteErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    *stubRoster
		auth   string
		units  []string
		status int
	}{
		{"missing token", &stubRoster{snap: roster()}, "", rebels, http.StatusUnauthorized},
		{"bad token", &stubRoster{snap: roster()}, "Authorization: Bearer nope", rebels, http.StatusUnauthorized},
		{"too few units", &stubRoster{snap: roster()}, bearer, rebels[:3], http.StatusUnprocessableEntity},
		{"tools locked", &stubRoster{err: rosterservices.ErrToolsLocked}, bearer, rebels, http.StatusConflict},
		{"no roster", &stubRoster{err: rosterservices.ErrNoRosterData}, bearer, rebels, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, tt.src, "")
			args := []any{map[string]any{"units": tt.units}}
			if tt.auth != "" {
				args = append([]any{tt.auth}, args...)
			}
			resp := api.Post("/squads/search", args...)
			assert.Equal(t, tt.status, resp.Code, resp.Body.String())
		})
	}
}

func TestReportRoutes(t *testing.T) {
	presets := "Resistance," + strings.Join(rebels, ",") + "\n"
	api := newTestAPI(t, &stubRoster{snap: roster()}, presets)

	resp := api.Post("/squads/report", bearer, map[string]any{"min_stars": 7})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))

	var report models.PresetReport
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &report))
	assert.Equal(t, []string{"Resistance"}, report.Presets)
	require.Len(t, report.Rows, 2)
	require.NotNil(t, report.Rows[0].Squads[0])
	assert.Equal(t, int64(100000), *report.Rows[0].Squads[0])

	t.Run("retained as csv", func(t *testing.T) {
		resp := api.Get("/squads/reports/"+report.ID+"?format=csv", bearer)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		assert.Equal(t, "text/csv", resp.Header().Get("Content-Type"))
		assert.Contains(t, resp.Header().Get("Content-Disposition"), report.ID)
		assert.Equal(t, "Player,Resistance\nAlice,100000\nBob,125000\n", resp.Body.String())
	})

	t.Run("unknown report", func(t *testing.T) {
		resp := api.Get("/squads/reports/5b0d6f5e-3c1a-4f55-9a43-7e1f1c0a2b3c", bearer)
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("invalid filter", func(t *testing.T) {
		resp := api.Post("/squads/report", bearer, map[string]any{"min_gear": 14})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		assert.Contains(t, resp.Body.String(), "Invalid gear level selected.")
	})
}

func TestPresetRoutes(t *testing.T) {
	t.Run("missing preset file", func(t *testing.T) {
		api := newTestAPI(t, &stubRoster{snap: roster()}, "")
		resp := api.Get("/squads/presets", bearer)
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Contains(t, resp.Body.String(), "Unable to load squad presets.")
	})

	t.Run("lists presets", func(t *testing.T) {
		api := newTestAPI(t, &stubRoster{snap: roster()}, "# comment\nResistance,"+strings.Join(rebels, ",")+"\n")
		resp := api.Get("/squads/presets", bearer)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"total":1`)
	})
}

func TestUnitsRoute(t *testing.T) {
	api := newTestAPI(t, &stubRoster{snap: roster()}, "")
	resp := api.Get("/squads/units", bearer)
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Units []string `json:"units"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, []string{"BB-8", "Finn", "Poe Dameron", "Resistance Trooper", "Rey"}, body.Units)
}
