package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	gdmodels "go-guildsync/internal/gamedata/models"
	rostermodels "go-guildsync/internal/roster/models"
	"go-guildsync/pkg/swgoh"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errLocked = errors.New("locked")

type fakeRoster struct {
	snap *rostermodels.RosterSnapshot
	err  error
}

func (f *fakeRoster) ReadySnapshot() (*rostermodels.RosterSnapshot, error) {
	return f.snap, f.err
}

type fakeCatalog struct {
	gd *gdmodels.GameData
}

func (f *fakeCatalog) Current() *gdmodels.GameData {
	return f.gd
}

func newTestService(t *testing.T, store ReportStore) (*Service, *fakeRoster) {
	t.Helper()
	t.Setenv("ENABLE_TELEMETRY", "false")

	path := filepath.Join(t.TempDir(), PresetFileName)
	require.NoError(t, os.WriteFile(path, []byte(presetFile), 0o600))

	roster := &fakeRoster{snap: &rostermodels.RosterSnapshot{Roster: squadRoster()}}
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	return NewService(roster, &fakeCatalog{}, path, store, func() time.Time { return now }), roster
}

func TestServiceReport(t *testing.T) {
	store := &memoryReports{}
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	report, err := svc.Report(ctx, FilterInput{MinStars: intPtr(7)})
	require.NoError(t, err)
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC), report.GeneratedAt)
	assert.Equal(t, []string{"Resistance", "Empire", "Extra"}, report.Presets)
	assert.Equal(t, []string{"100000", "", "100000"}, deref(report.Rows[0].Squads))
	assert.Equal(t, []string{"", "", ""}, deref(report.Rows[1].Squads))

	retained, err := svc.GetReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Same(t, report, retained)

	_, err = svc.GetReport(ctx, "unknown")
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestServiceReportFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid filter", func(t *testing.T) {
		svc, _ := newTestService(t, nil)
		_, err := svc.Report(ctx, FilterInput{MinGear: intPtr(20)})
		var ve *swgoh.ValidationError
		assert.True(t, errors.As(err, &ve))
	})

	t.Run("roster not ready", func(t *testing.T) {
		svc, roster := newTestService(t, nil)
		roster.err = errLocked
		_, err := svc.Report(ctx, FilterInput{})
		assert.ErrorIs(t, err, errLocked)
	})

	t.Run("missing preset file", func(t *testing.T) {
		svc, _ := newTestService(t, nil)
		svc.presetsPath = filepath.Join(t.TempDir(), "none.csv")
		_, err := svc.Report(ctx, FilterInput{})
		assert.ErrorIs(t, err, ErrNoPresets)
	})

	t.Run("retention failure still returns the report", func(t *testing.T) {
		svc, _ := newTestService(t, &memoryReports{saveErr: errors.New("redis down")})
		report, err := svc.Report(ctx, FilterInput{})
		require.NoError(t, err)
		assert.Len(t, report.Rows, 3)
	})

	t.Run("no store", func(t *testing.T) {
		svc, _ := newTestService(t, nil)
		_, err := svc.GetReport(ctx, "any")
		assert.ErrorIs(t, err, ErrReportNotFound)
	})
}

func TestServiceSearch(t *testing.T) {
	svc, roster := newTestService(t, nil)
	ctx := context.Background()

	results, err := svc.Search(ctx, rebels)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	names, err := svc.UnitNames()
	require.NoError(t, err)
	assert.Contains(t, names, "Rey")

	roster.err = errLocked
	_, err = svc.Search(ctx, rebels)
	assert.ErrorIs(t, err, errLocked)
	_, err = svc.UnitNames()
	assert.ErrorIs(t, err, errLocked)
}
