package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	eventmodels "go-guildsync/internal/events/models"
	gdmodels "go-guildsync/internal/gamedata/models"
	"go-guildsync/internal/roster/models"
	"go-guildsync/pkg/config"
	"go-guildsync/pkg/swgoh"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultRefreshWindow is how long pulled guild and player data stay current
const DefaultRefreshWindow = 8 * time.Hour

// defaultPlayerName labels the user when an imported guild does not contain them
const defaultPlayerName = "Member"

var (
	// ErrPullInProgress is returned when a pull or import overlaps another
	ErrPullInProgress = errors.New("guild data pull already in progress")
	// ErrLoginRejected is returned when the upstream refuses the stored credentials
	ErrLoginRejected = errors.New("login rejected")
	// ErrNoRosterData is returned by operations that need a pulled roster
	ErrNoRosterData = errors.New("no roster data available")
	// ErrToolsLocked is returned while a pull is running or before any data exists
	ErrToolsLocked = errors.New("roster tools are unavailable until data is ready")
)

// Session signs in to the upstream API
type Session interface {
	IsLoggedIn() bool
	LogIn(ctx context.Context) (bool, error)
	Credentials() swgoh.Credentials
	LastLoginFailure() string
}

// GuildSource fetches guild and player records
type GuildSource interface {
	PlayerSource
	Player(ctx context.Context, code swgoh.AllyCode) (*swgoh.PlayerInfo, error)
	Guild(ctx context.Context, code swgoh.AllyCode) (*swgoh.GuildInfo, error)
}

// GameDataProvider exposes the metadata cache
type GameDataProvider interface {
	Current() *gdmodels.GameData
	NeedsRefresh() bool
	EnsureFresh(ctx context.Context) (*gdmodels.GameData, error)
}

// CredentialSaver remembers the non-secret credentials after a successful login
type CredentialSaver interface {
	SaveCredentials(creds swgoh.Credentials) error
}

// Notifier receives state changes, roster updates and non-fatal errors
type Notifier interface {
	Publish(event eventmodels.Event)
	ErrorReporter
}

// SyncOptions tunes a SyncService. Zero values use the defaults.
type SyncOptions struct {
	RefreshWindow   time.Duration
	RelicPowerScale float64
	Now             func() time.Time
}

// SyncService pulls guild data, enriches it and publishes immutable roster snapshots
type SyncService struct {
	session  Session
	source   GuildSource
	fetcher  *BatchFetcher
	gamedata GameDataProvider
	settings CredentialSaver
	store    PullStore
	notifier Notifier

	window time.Duration
	scale  float64
	now    func() time.Time
	tracer trace.Tracer

	mu       sync.Mutex
	state    atomic.Value
	snapshot atomic.Pointer[models.RosterSnapshot]

	// game data the published snapshot was enriched with
	enrichedWith  atomic.Pointer[gdmodels.GameData]
	pendingEnrich atomic.Bool
}

// NewSyncService creates a sync service. settings and store may be nil.
func NewSyncService(session Session, source GuildSource, fetcher *BatchFetcher, gamedata GameDataProvider, settings CredentialSaver, store PullStore, notifier Notifier, opts SyncOptions) *SyncService {
	if opts.RefreshWindow <= 0 {
		opts.RefreshWindow = DefaultRefreshWindow
	}
	if opts.RelicPowerScale <= 0 {
		opts.RelicPowerScale = DefaultRelicPowerScale
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &SyncService{
		session:  session,
		source:   source,
		fetcher:  fetcher,
		gamedata: gamedata,
		settings: settings,
		store:    store,
		notifier: notifier,
		window:   opts.RefreshWindow,
		scale:    opts.RelicPowerScale,
		now:      opts.Now,
	}
	s.state.Store(models.StateNoDataAvailable)
	if config.GetBoolEnv("ENABLE_TELEMETRY", true) {
		s.tracer = otel.Tracer("go-guildsync/roster")
	}
	return s
}

// State returns the current program state
func (s *SyncService) State() models.ProgramState {
	return s.state.Load().(models.ProgramState)
}

// Snapshot returns the published roster snapshot, or nil
func (s *SyncService) Snapshot() *models.RosterSnapshot {
	return s.snapshot.Load()
}

// ReadySnapshot returns the snapshot when analytics may run on it
func (s *SyncService) ReadySnapshot() (*models.RosterSnapshot, error) {
	if !s.State().ToolsUnlocked() {
		return nil, ErrToolsLocked
	}
	snap := s.snapshot.Load()
	if snap == nil || len(snap.Roster) == 0 {
		return nil, ErrNoRosterData
	}
	return snap, nil
}

func (s *SyncService) setState(ctx context.Context, state models.ProgramState) {
	prev := s.state.Swap(state)
	if prev == state {
		return
	}
	slog.DebugContext(ctx, "Program state changed", "from", prev, "to", state)
	s.publish(eventmodels.Event{
		Type:     eventmodels.EventStateChanged,
		State:    string(state),
		Activity: state.Activity(),
	})
}

// settle returns to the state matching whatever snapshot is held
func (s *SyncService) settle(ctx context.Context) {
	if snap := s.snapshot.Load(); snap != nil && len(snap.Roster) > 0 {
		s.setState(ctx, models.StateReady)
		return
	}
	s.setState(ctx, models.StateNoDataAvailable)
}

func (s *SyncService) clear(ctx context.Context) {
	s.snapshot.Store(nil)
	s.setState(ctx, models.StateNoDataAvailable)
}

func (s *SyncService) publish(ev eventmodels.Event) {
	if s.notifier != nil {
		s.notifier.Publish(ev)
	}
}

func (s *SyncService) report(ctx context.Context, message string, err error) {
	if s.notifier != nil {
		s.notifier.ReportError(ctx, message, err)
		return
	}
	slog.ErrorContext(ctx, message, "error", err)
}

func (s *SyncService) stale(ts swgoh.Timestamp) bool {
	return s.now().Sub(ts.Time()) > s.window
}

// PullData brings the roster up to date: sign in if needed, refetch the guild
// and its members when they are older than the refresh window, refresh stale
// game data, then enrich and publish a new snapshot. A player without a guild
// is pulled on their own.
func (s *SyncService) PullData(ctx context.Context) (snap *models.RosterSnapshot, err error) {
	if !s.mu.TryLock() {
		return nil, ErrPullInProgress
	}
	defer s.release(ctx)

	if s.tracer != nil {
		var span trace.Span
		ctx, span = s.tracer.Start(ctx, "roster.PullData")
		defer func() {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetAttributes(attribute.Int("roster.players", len(snap.Roster)))
			}
			span.End()
		}()
	}

	if err := s.ensureLoggedIn(ctx); err != nil {
		return nil, err
	}

	creds := s.session.Credentials()
	prev := s.snapshot.Load()

	var guild *swgoh.GuildInfo
	var players []swgoh.PlayerInfo
	if prev != nil && prev.Guild != nil && memberName(prev.Guild, creds.AllyCode) != "" {
		guild = prev.Guild
		players = prev.Players
	}

	s.setState(ctx, models.StateGettingGuildData)
	if guild == nil || s.stale(guild.Updated) {
		fetched, err := s.source.Guild(ctx, creds.AllyCode)
		switch {
		case errors.Is(err, swgoh.ErrNotInGuild):
			slog.InfoContext(ctx, "Player is not in a guild, pulling player only", "ally_code", creds.AllyCode.String())
			return s.pullSinglePlayer(ctx, creds.AllyCode)
		case err != nil:
			s.report(ctx, "Error fetching guild", err)
			s.clear(ctx)
			return nil, err
		}
		guild = fetched
	}

	if len(players) == 0 || s.stale(players[0].Updated) || len(players) != guild.Members {
		s.setState(ctx, models.StateGettingGuildMemberData)
		fetched, _, err := s.fetcher.FetchPlayers(ctx, guild.AllyCodes())
		if err != nil {
			s.clear(ctx)
			return nil, err
		}
		players = fetched
	}

	gd, err := s.freshGameData(ctx)
	if err != nil {
		return nil, err
	}

	snap = s.build(guild, players, gd, memberName(guild, creds.AllyCode))
	s.install(ctx, snap, true)
	return snap, nil
}

func (s *SyncService) pullSinglePlayer(ctx context.Context, code swgoh.AllyCode) (*models.RosterSnapshot, error) {
	s.setState(ctx, models.StateGettingPlayerData)
	info, err := s.source.Player(ctx, code)
	if err != nil {
		s.report(ctx, "Error fetching player", err)
		s.clear(ctx)
		return nil, err
	}

	gd, err := s.freshGameData(ctx)
	if err != nil {
		return nil, err
	}

	snap := s.build(nil, []swgoh.PlayerInfo{*info}, gd, info.Name)
	s.install(ctx, snap, true)
	return snap, nil
}

func (s *SyncService) ensureLoggedIn(ctx context.Context) error {
	if s.session.IsLoggedIn() {
		return nil
	}

	s.setState(ctx, models.StateLoggingIn)
	ok, err := s.session.LogIn(ctx)
	if err != nil {
		s.settle(ctx)
		return err
	}
	if !ok {
		s.settle(ctx)
		return fmt.Errorf("%w: %s", ErrLoginRejected, s.session.LastLoginFailure())
	}

	if s.settings != nil {
		if err := s.settings.SaveCredentials(s.session.Credentials()); err != nil {
			slog.WarnContext(ctx, "Failed to save settings", "error", err)
		}
	}
	return nil
}

func (s *SyncService) freshGameData(ctx context.Context) (*gdmodels.GameData, error) {
	if !s.gamedata.NeedsRefresh() {
		return s.gamedata.Current(), nil
	}

	s.setState(ctx, models.StateGettingMiscData)
	gd, err := s.gamedata.EnsureFresh(ctx)
	if err != nil {
		s.clear(ctx)
		return nil, err
	}
	return gd, nil
}

// build enriches copies of players so published snapshots are never mutated
func (s *SyncService) build(guild *swgoh.GuildInfo, players []swgoh.PlayerInfo, gd *gdmodels.GameData, playerName string) *models.RosterSnapshot {
	cloned := clonePlayers(players)
	if gd.HasData() {
		ComputeTruePower(cloned, gd.RelicMultipliers, s.scale)
	}
	s.enrichedWith.Store(gd)
	return &models.RosterSnapshot{
		ID:         uuid.New().String(),
		Guild:      guild,
		Players:    cloned,
		Roster:     BuildRoster(cloned, gd),
		PlayerName: playerName,
		PulledAt:   s.now().UTC(),
	}
}

func (s *SyncService) install(ctx context.Context, snap *models.RosterSnapshot, persist bool) {
	s.snapshot.Store(snap)

	if persist && s.store != nil {
		if err := s.store.SavePull(ctx, snap.Guild, snap.Players, snap.PulledAt); err != nil {
			slog.WarnContext(ctx, "Failed to persist guild pull", "error", err)
		}
	}

	guildName := ""
	if snap.Guild != nil {
		guildName = snap.Guild.Name
	}
	slog.InfoContext(ctx, "Roster updated", "snapshot_id", snap.ID, "guild", guildName, "players", len(snap.Roster))
	s.publish(eventmodels.Event{
		Type:    eventmodels.EventRosterUpdated,
		Message: "Roster updated",
		Data: map[string]interface{}{
			"snapshot_id": snap.ID,
			"guild":       guildName,
			"players":     len(snap.Roster),
		},
	})
	s.setState(ctx, models.StateReady)
}

// Enrich recomputes true power and the derived roster against the current game data
func (s *SyncService) Enrich(ctx context.Context) (*models.RosterSnapshot, error) {
	if !s.mu.TryLock() {
		return nil, ErrPullInProgress
	}
	defer s.release(ctx)

	prev := s.snapshot.Load()
	if prev == nil || len(prev.Players) == 0 {
		return nil, ErrNoRosterData
	}

	snap := s.build(prev.Guild, prev.Players, s.gamedata.Current(), prev.PlayerName)
	s.install(ctx, snap, false)
	return snap, nil
}

// GameDataReplaced re-enriches the published roster after the game data
// snapshot changes. When the roster is busy the work runs as soon as the
// holder releases it.
func (s *SyncService) GameDataReplaced(ctx context.Context, _ *gdmodels.GameData) {
	s.pendingEnrich.Store(true)
	if !s.mu.TryLock() {
		slog.DebugContext(ctx, "Roster busy, re-enrichment deferred")
		return
	}
	s.release(ctx)
}

// release unlocks the roster and runs any re-enrichment requested meanwhile
func (s *SyncService) release(ctx context.Context) {
	s.mu.Unlock()

	if !s.pendingEnrich.Swap(false) {
		return
	}
	snap := s.snapshot.Load()
	if snap == nil || len(snap.Players) == 0 || s.enrichedWith.Load() == s.gamedata.Current() {
		return
	}

	_, err := s.Enrich(ctx)
	switch {
	case errors.Is(err, ErrPullInProgress):
		s.pendingEnrich.Store(true)
	case err != nil:
		slog.WarnContext(ctx, "Failed to re-enrich roster", "error", err)
	default:
		slog.InfoContext(ctx, "Roster re-enriched with new game data")
	}
}

// Import replaces the current state with the given guild and players.
// Players are enriched only when game data is available.
func (s *SyncService) Import(ctx context.Context, guild *swgoh.GuildInfo, players []swgoh.PlayerInfo) (*models.RosterSnapshot, error) {
	if !s.mu.TryLock() {
		return nil, ErrPullInProgress
	}
	defer s.release(ctx)

	name := defaultPlayerName
	if s.session != nil && guild != nil {
		if n := memberName(guild, s.session.Credentials().AllyCode); n != "" {
			name = n
		}
	}

	snap := s.build(guild, players, s.gamedata.Current(), name)
	s.install(ctx, snap, false)
	return snap, nil
}

// Restore loads the last persisted pull, if any, without contacting the upstream
func (s *SyncService) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	s.mu.Lock()
	defer s.release(ctx)

	guild, players, pulledAt, err := s.store.LoadLatest(ctx)
	if err != nil {
		if errors.Is(err, ErrNoSavedPull) {
			return nil
		}
		return err
	}

	name := defaultPlayerName
	if n := memberName(guild, s.session.Credentials().AllyCode); n != "" {
		name = n
	}
	snap := s.build(guild, players, s.gamedata.Current(), name)
	snap.PulledAt = pulledAt
	s.install(ctx, snap, false)
	return nil
}

// memberName returns the roster name for code, or "" when absent
func memberName(guild *swgoh.GuildInfo, code swgoh.AllyCode) string {
	if guild == nil {
		return ""
	}
	for _, m := range guild.Roster {
		if m.AllyCode == code {
			return m.Name
		}
	}
	return ""
}
