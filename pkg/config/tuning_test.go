package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTuningDefaults(t *testing.T) {
	tuning, err := LoadTuning()
	require.NoError(t, err)

	assert.Equal(t, DefaultTuning(), *tuning)
}

func TestLoadTuningFromEnv(t *testing.T) {
	t.Setenv("GUILDSYNC_CHUNK_SIZE", "10")
	t.Setenv("GUILDSYNC_MAX_IN_FLIGHT", "2")
	t.Setenv("GUILDSYNC_RELIC_POWER_SCALE", "2.5")
	t.Setenv("GUILDSYNC_GUILD_REFRESH_WINDOW", "1h")
	t.Setenv("GUILDSYNC_GAMEDATA_STORE", "redis")

	tuning, err := LoadTuning()
	require.NoError(t, err)

	assert.Equal(t, 10, tuning.ChunkSize)
	assert.Equal(t, 2, tuning.MaxInFlight)
	assert.Equal(t, 2.5, tuning.RelicPowerScale)
	assert.Equal(t, time.Hour, tuning.GuildRefreshWindow)
	assert.Equal(t, "redis", tuning.GameDataStore)
}

func TestTuningValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Tuning)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Tuning) {}, wantErr: false},
		{name: "zero chunk size", mutate: func(t *Tuning) { t.ChunkSize = 0 }, wantErr: true},
		{name: "zero in flight", mutate: func(t *Tuning) { t.MaxInFlight = 0 }, wantErr: true},
		{name: "negative scale", mutate: func(t *Tuning) { t.RelicPowerScale = -1 }, wantErr: true},
		{name: "unknown store", mutate: func(t *Tuning) { t.GameDataStore = "s3" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tuning := DefaultTuning()
			tt.mutate(&tuning)
			err := tuning.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetAPIPrefix(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"", ""},
		{"api", "/api"},
		{"/api/", "/api"},
		{"/v1", "/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("API_PREFIX", tt.value)
			if got := GetAPIPrefix(); got != tt.want {
				t.Errorf("GetAPIPrefix() = %q, want %q", got, tt.want)
			}
		})
	}
}
