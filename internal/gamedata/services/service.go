package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	eventmodels "go-guildsync/internal/events/models"
	"go-guildsync/internal/gamedata/models"
	"go-guildsync/pkg/swgoh"
)

var (
	// ErrRefreshInProgress is returned when a manual refresh overlaps another
	ErrRefreshInProgress = errors.New("game data refresh already in progress")
	// ErrIncompleteRefresh means the refresh did not produce a usable snapshot
	ErrIncompleteRefresh = errors.New("game data refresh incomplete")
)

// Publisher delivers change notifications
type Publisher interface {
	Publish(event eventmodels.Event)
}

// Status summarises the cached snapshot
type Status struct {
	HasData         bool          `json:"has_data"`
	IsOutdated      bool          `json:"is_outdated"`
	Updated         time.Time     `json:"updated"`
	Units           int           `json:"units"`
	Titles          int           `json:"titles"`
	RelicTiers      int           `json:"relic_tiers"`
	Zetas           int           `json:"zetas"`
	Store           string        `json:"store"`
	Refreshing      bool          `json:"refreshing"`
	LastRefreshErrs []string      `json:"last_refresh_errors,omitempty"`
	LastRefreshTook time.Duration `json:"last_refresh_duration,omitempty"`
}

// ReplaceFunc is called after a refresh publishes a new snapshot
type ReplaceFunc func(ctx context.Context, data *models.GameData)

// Service owns the game data cache and its refresh policy
type Service struct {
	cache     *Cache
	refresher *Refresher
	publisher Publisher
	maxAge    time.Duration
	now       func() time.Time

	mu         sync.Mutex
	refreshing atomic.Bool
	last       atomic.Pointer[RefreshResult]

	listenersMu sync.RWMutex
	listeners   []ReplaceFunc
}

func NewService(cache *Cache, refresher *Refresher, publisher Publisher, maxAge time.Duration, now func() time.Time) *Service {
	if maxAge <= 0 {
		maxAge = models.DefaultMaxAge
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		cache:     cache,
		refresher: refresher,
		publisher: publisher,
		maxAge:    maxAge,
		now:       now,
	}
}

// OnReplace registers fn to run after every refresh that replaces the snapshot.
// Listeners run synchronously, in registration order.
func (s *Service) OnReplace(fn ReplaceFunc) {
	s.listenersMu.Lock()
	s.listeners = append(s.listeners, fn)
	s.listenersMu.Unlock()
}

func (s *Service) notifyReplaced(ctx context.Context, data *models.GameData) {
	s.listenersMu.RLock()
	listeners := append([]ReplaceFunc(nil), s.listeners...)
	s.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(ctx, data)
	}
}

// Current returns the published snapshot
func (s *Service) Current() *models.GameData {
	return s.cache.Current()
}

// Load reads the persisted snapshot into the cache
func (s *Service) Load(ctx context.Context) *models.GameData {
	return s.cache.LoadOrCreate(ctx)
}

// NeedsRefresh reports whether the snapshot is missing data or outdated
func (s *Service) NeedsRefresh() bool {
	current := s.cache.Current()
	return !current.HasData() || current.IsOlderThan(s.now(), s.maxAge)
}

// EnsureFresh refreshes when the snapshot is empty or outdated and returns the
// snapshot in effect afterwards. A refresh that yields no usable data keeps the
// previous snapshot and returns ErrIncompleteRefresh alongside it.
func (s *Service) EnsureFresh(ctx context.Context) (*models.GameData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.NeedsRefresh() {
		return s.cache.Current(), nil
	}
	_, err := s.refreshLocked(ctx)
	return s.cache.Current(), err
}

// Refresh runs a refresh now. Unless force is set, a fresh snapshot is left alone.
func (s *Service) Refresh(ctx context.Context, force bool) (*RefreshResult, error) {
	if !s.mu.TryLock() {
		return nil, ErrRefreshInProgress
	}
	defer s.mu.Unlock()

	if !force && !s.NeedsRefresh() {
		return &RefreshResult{Data: s.cache.Current(), Skipped: true}, nil
	}
	return s.refreshLocked(ctx)
}

func (s *Service) refreshLocked(ctx context.Context) (*RefreshResult, error) {
	s.refreshing.Store(true)
	defer s.refreshing.Store(false)

	result := s.refresher.Refresh(ctx)
	s.last.Store(result)

	if !result.Data.HasData() {
		errs := make([]error, 0, len(result.Errors))
		for _, be := range result.Errors {
			errs = append(errs, be)
		}
		slog.WarnContext(ctx, "Game data refresh incomplete, keeping previous snapshot", "failed_branches", len(result.Errors))
		if len(errs) == 0 {
			return result, ErrIncompleteRefresh
		}
		return result, fmt.Errorf("%w: %w", ErrIncompleteRefresh, errors.Join(errs...))
	}

	s.cache.Replace(result.Data)
	if err := s.cache.Persist(ctx, result.Data); err != nil {
		slog.ErrorContext(ctx, "Failed to persist game data", "error", err)
	}

	s.publish(eventmodels.Event{
		Type:    eventmodels.EventGameDataUpdated,
		Message: "Game data refreshed",
		Data: map[string]interface{}{
			"units":   len(result.Data.Units),
			"updated": result.Data.Updated,
		},
	})
	s.notifyReplaced(ctx, result.Data)
	return result, nil
}

func (s *Service) publish(ev eventmodels.Event) {
	if s.publisher != nil {
		s.publisher.Publish(ev)
	}
}

// Status describes the current snapshot and the last refresh
func (s *Service) Status() Status {
	current := s.cache.Current()
	st := Status{
		HasData:    current.HasData(),
		IsOutdated: current.IsOlderThan(s.now(), s.maxAge),
		Updated:    current.Updated,
		Units:      len(current.Units),
		Titles:     len(current.Titles),
		RelicTiers: len(current.RelicMultipliers),
		Zetas:      len(current.Zetas),
		Store:      s.cache.store.Name(),
		Refreshing: s.refreshing.Load(),
	}
	if last := s.last.Load(); last != nil {
		st.LastRefreshTook = last.Duration
		for _, be := range last.Errors {
			st.LastRefreshErrs = append(st.LastRefreshErrs, be.Error())
		}
	}
	return st
}

// UnitFilter narrows a catalog listing. Empty fields match everything.
type UnitFilter struct {
	Tag        string
	CombatType string
	Alignment  string
	Name       string
}

// Units lists catalog entries matching the filter, sorted by name
func (s *Service) Units(filter UnitFilter) []swgoh.UnitDetails {
	current := s.cache.Current()
	out := make([]swgoh.UnitDetails, 0, len(current.Units))
	for _, u := range current.Units {
		if filter.Tag != "" && !u.HasTag(filter.Tag) {
			continue
		}
		if filter.CombatType != "" && !strings.EqualFold(u.CombatType, filter.CombatType) {
			continue
		}
		if filter.Alignment != "" && !strings.EqualFold(u.ForceAlignment, filter.Alignment) {
			continue
		}
		if filter.Name != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(filter.Name)) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Zetas lists zeta ratings, optionally for one unit, best PvP rating first
func (s *Service) Zetas(toon string) []swgoh.ZetaStats {
	current := s.cache.Current()
	out := make([]swgoh.ZetaStats, 0, len(current.Zetas))
	for _, z := range current.Zetas {
		if toon != "" && !strings.EqualFold(z.Toon, toon) {
			continue
		}
		out = append(out, z)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PvP < out[j].PvP })
	return out
}
