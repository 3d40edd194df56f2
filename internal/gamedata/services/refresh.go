package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go-guildsync/internal/gamedata/models"
	"go-guildsync/pkg/config"
	"go-guildsync/pkg/swgoh"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Source is the remote metadata API
type Source interface {
	Titles(ctx context.Context) ([]swgoh.TitleInfo, error)
	RelicTable(ctx context.Context) ([]int, error)
	UnitCatalog(ctx context.Context) ([]swgoh.UnitDetails, error)
	Categories(ctx context.Context) ([]swgoh.Category, error)
	ZetaRecommendations(ctx context.Context) ([]swgoh.ZetaStats, error)
}

// ErrorReporter receives branch failures
type ErrorReporter interface {
	ReportError(ctx context.Context, message string, err error)
}

// Branch names one of the four independent fetches
type Branch string

const (
	BranchTitles Branch = "titles"
	BranchRelics Branch = "relics"
	BranchUnits  Branch = "units"
	BranchZetas  Branch = "zetas"
)

var fetchLabels = map[Branch]string{
	BranchTitles: "Error fetching titles",
	BranchRelics: "Error fetching relic metadata",
	BranchUnits:  "Error fetching unit metadata",
	BranchZetas:  "Error fetching zeta hints",
}

const deserializeLabel = "Error deserializing JSON"

// BranchError is a failed refresh branch
type BranchError struct {
	Branch Branch
	Label  string
	Err    error
}

func (e *BranchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Label, e.Err)
}

func (e *BranchError) Unwrap() error {
	return e.Err
}

func newBranchError(branch Branch, err error) *BranchError {
	label := fetchLabels[branch]
	var de *swgoh.DeserializationError
	if errors.As(err, &de) {
		label = deserializeLabel
	}
	return &BranchError{Branch: branch, Label: label, Err: err}
}

// RefreshResult is the outcome of one refresh
type RefreshResult struct {
	Data     *models.GameData
	Errors   []*BranchError
	Duration time.Duration
	// Skipped is set when the snapshot was fresh and nothing was fetched
	Skipped bool
}

// Refresher builds snapshots from the four metadata sources
type Refresher struct {
	source   Source
	reporter ErrorReporter
	now      func() time.Time
	tracer   trace.Tracer
}

func NewRefresher(source Source, reporter ErrorReporter, now func() time.Time) *Refresher {
	if now == nil {
		now = time.Now
	}
	r := &Refresher{source: source, reporter: reporter, now: now}
	if config.GetBoolEnv("ENABLE_TELEMETRY", true) {
		r.tracer = otel.Tracer("go-guildsync/gamedata")
	}
	return r
}

// Refresh fetches all four branches concurrently. A failed branch leaves its
// field empty and never cancels the others. Updated is stamped once after all settle.
func (r *Refresher) Refresh(ctx context.Context) *RefreshResult {
	start := r.now()

	var span trace.Span
	if r.tracer != nil {
		ctx, span = r.tracer.Start(ctx, "gamedata.Refresh")
		defer span.End()
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		errs   []*BranchError
		titles map[string]string
		relics []int
		units  []swgoh.UnitDetails
		zetas  []swgoh.ZetaStats
	)

	fail := func(branch Branch, err error) {
		be := newBranchError(branch, err)
		mu.Lock()
		errs = append(errs, be)
		mu.Unlock()
		if r.reporter != nil {
			r.reporter.ReportError(ctx, be.Label, err)
		} else {
			slog.ErrorContext(ctx, be.Label, "branch", branch, "error", err)
		}
	}

	wg.Add(4)

	go func() {
		defer wg.Done()
		list, err := r.source.Titles(ctx)
		if err != nil {
			fail(BranchTitles, err)
			return
		}
		titles = models.TitleMap(list)
	}()

	go func() {
		defer wg.Done()
		table, err := r.source.RelicTable(ctx)
		if err != nil {
			fail(BranchRelics, err)
			return
		}
		relics = table
	}()

	go func() {
		defer wg.Done()
		catalog, err := r.source.UnitCatalog(ctx)
		if err != nil {
			fail(BranchUnits, err)
			return
		}
		// Category resolution depends on the catalog and runs only after it.
		categories, err := r.source.Categories(ctx)
		if err != nil {
			fail(BranchUnits, err)
			return
		}
		units = ResolveTags(catalog, categories)
	}()

	go func() {
		defer wg.Done()
		list, err := r.source.ZetaRecommendations(ctx)
		if err != nil {
			fail(BranchZetas, err)
			return
		}
		zetas = list
	}()

	wg.Wait()

	data := &models.GameData{
		Units:            units,
		Titles:           titles,
		RelicMultipliers: relics,
		Zetas:            zetas,
		Updated:          r.now(),
	}
	result := &RefreshResult{Data: data, Errors: errs, Duration: r.now().Sub(start)}

	if span != nil {
		span.SetAttributes(
			attribute.Int("gamedata.units", len(units)),
			attribute.Int("gamedata.titles", len(titles)),
			attribute.Int("gamedata.failed_branches", len(errs)),
		)
		if len(errs) > 0 {
			span.SetStatus(codes.Error, "partial refresh")
		}
	}

	slog.InfoContext(ctx, "Game data refresh finished",
		"units", len(units),
		"titles", len(titles),
		"relic_tiers", len(relics),
		"zetas", len(zetas),
		"failed_branches", len(errs),
		"duration", result.Duration,
	)
	return result
}
