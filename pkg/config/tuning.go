package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Tuning holds the sync engine's tunable constants.
// Values are read from GUILDSYNC_* environment variables.
type Tuning struct {
	ChunkSize          int           `envconfig:"CHUNK_SIZE" default:"5"`
	MaxInFlight        int           `envconfig:"MAX_IN_FLIGHT" default:"3"`
	RelicPowerScale    float64       `envconfig:"RELIC_POWER_SCALE" default:"2.2587"`
	GuildRefreshWindow time.Duration `envconfig:"GUILD_REFRESH_WINDOW" default:"8h"`
	GameDataMaxAge     time.Duration `envconfig:"GAMEDATA_MAX_AGE" default:"168h"`
	GameDataSchedule   string        `envconfig:"GAMEDATA_SCHEDULE" default:"0 0 */6 * * *"`
	GuildSchedule      string        `envconfig:"GUILD_SCHEDULE" default:""`
	GameDataStore      string        `envconfig:"GAMEDATA_STORE" default:"file"`
}

// DefaultTuning returns the tuning used when nothing is configured.
func DefaultTuning() Tuning {
	return Tuning{
		ChunkSize:          5,
		MaxInFlight:        3,
		RelicPowerScale:    2.2587,
		GuildRefreshWindow: 8 * time.Hour,
		GameDataMaxAge:     7 * 24 * time.Hour,
		GameDataSchedule:   "0 0 */6 * * *",
		GameDataStore:      "file",
	}
}

// LoadTuning reads the tuning from the environment and validates it.
func LoadTuning() (*Tuning, error) {
	var t Tuning
	if err := envconfig.Process("guildsync", &t); err != nil {
		return nil, fmt.Errorf("failed to load tuning: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate rejects values the orchestrators cannot work with.
func (t Tuning) Validate() error {
	if t.ChunkSize < 1 {
		return fmt.Errorf("invalid chunk size %d: must be at least 1", t.ChunkSize)
	}
	if t.MaxInFlight < 1 {
		return fmt.Errorf("invalid max in flight %d: must be at least 1", t.MaxInFlight)
	}
	if t.RelicPowerScale <= 0 {
		return fmt.Errorf("invalid relic power scale %v: must be positive", t.RelicPowerScale)
	}
	switch t.GameDataStore {
	case "file", "redis":
	default:
		return fmt.Errorf("invalid gamedata store %q: expected file or redis", t.GameDataStore)
	}
	return nil
}
