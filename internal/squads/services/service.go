package services

import (
	"context"
	"log/slog"
	"time"

	gdmodels "go-guildsync/internal/gamedata/models"
	rostermodels "go-guildsync/internal/roster/models"
	"go-guildsync/internal/squads/models"
	"go-guildsync/pkg/config"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RosterSource supplies the roster once it is ready for analysis
type RosterSource interface {
	ReadySnapshot() (*rostermodels.RosterSnapshot, error)
}

// CatalogSource supplies the cached game data
type CatalogSource interface {
	Current() *gdmodels.GameData
}

// Service runs squad searches and preset reports over the current roster
type Service struct {
	roster      RosterSource
	catalog     CatalogSource
	presetsPath string
	store       ReportStore
	now         func() time.Time
	tracer      trace.Tracer
}

// NewService creates the squad service. A nil store disables report retention.
func NewService(roster RosterSource, catalog CatalogSource, presetsPath string, store ReportStore, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	s := &Service{
		roster:      roster,
		catalog:     catalog,
		presetsPath: presetsPath,
		store:       store,
		now:         now,
	}
	if config.GetBoolEnv("ENABLE_TELEMETRY", true) {
		s.tracer = otel.Tracer("go-guildsync/squads")
	}
	return s
}

// Search finds the members owning all five named units
func (s *Service) Search(ctx context.Context, names []string) ([]models.SquadLookupResult, error) {
	snap, err := s.roster.ReadySnapshot()
	if err != nil {
		return nil, err
	}
	return Search(snap.Roster, names)
}

// UnitNames lists the characters a squad can be built from
func (s *Service) UnitNames() ([]string, error) {
	snap, err := s.roster.ReadySnapshot()
	if err != nil {
		return nil, err
	}
	return UnitNames(s.catalog.Current(), snap.Roster), nil
}

// Presets reads the preset file. A missing file yields no presets.
func (s *Service) Presets() ([]models.SquadPreset, error) {
	presets, err := LoadPresetFile(s.presetsPath)
	if err != nil {
		slog.Warn("Failed to load squad presets", "path", s.presetsPath, "error", err)
		return nil, ErrNoPresets
	}
	return presets, nil
}

// Report validates the filter and scores every preset for every member.
// The report is retained for download when a store is configured.
func (s *Service) Report(ctx context.Context, in FilterInput) (report *models.PresetReport, err error) {
	if s.tracer != nil {
		var span trace.Span
		ctx, span = s.tracer.Start(ctx, "squads.Report")
		defer func() {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetAttributes(
					attribute.Int("squads.presets", len(report.Presets)),
					attribute.Int("squads.rows", len(report.Rows)),
				)
			}
			span.End()
		}()
	}

	filter, err := ParseReportFilter(in)
	if err != nil {
		return nil, err
	}
	snap, err := s.roster.ReadySnapshot()
	if err != nil {
		return nil, err
	}
	presets, err := s.Presets()
	if err != nil {
		return nil, err
	}

	var catalog []string
	if gd := s.catalog.Current(); gd != nil {
		catalog = make([]string, 0, len(gd.Units))
		for i := range gd.Units {
			catalog = append(catalog, gd.Units[i].Name)
		}
	}

	report, err = Generate(snap.Roster, presets, reportUnits(catalog, snap.Roster), filter)
	if err != nil {
		return nil, err
	}
	report.ID = uuid.New().String()
	report.GeneratedAt = s.now().UTC()

	if s.store != nil {
		if err := s.store.SaveReport(ctx, report); err != nil {
			slog.WarnContext(ctx, "Failed to retain squad report", "report_id", report.ID, "error", err)
		}
	}

	slog.InfoContext(ctx, "Squad report generated", "report_id", report.ID, "presets", len(report.Presets), "members", len(report.Rows))
	return report, nil
}

// GetReport returns a retained report
func (s *Service) GetReport(ctx context.Context, id string) (*models.PresetReport, error) {
	if s.store == nil {
		return nil, ErrReportNotFound
	}
	return s.store.LoadReport(ctx, id)
}
