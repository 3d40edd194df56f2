package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go-guildsync/internal/squads/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const presetFile = `# name, five units
Resistance, Rey, Finn, Poe Dameron, BB-8, Resistance Trooper

Empire,Darth Vader,Emperor Palpatine,Grand Moff Tarkin,TIE Fighter Pilot,Royal Guard # trailing comment
Short,Rey,Finn
Blank,Rey,,Poe Dameron,BB-8,Resistance Trooper
   # indented comment
Extra,Rey,Finn,Poe Dameron,BB-8,Resistance Trooper,ignored
Trailing,Rey,Finn,Poe Dameron,BB-8,Resistance Trooper,
Gap,Rey,Finn,Poe Dameron,BB-8,Resistance Trooper, ,ignored
`

func TestLoadPresets(t *testing.T) {
	presets, err := LoadPresets(strings.NewReader(presetFile))
	require.NoError(t, err)

	assert.Equal(t, []models.SquadPreset{
		{Name: "Resistance", Units: [5]string{"Rey", "Finn", "Poe Dameron", "BB-8", "Resistance Trooper"}},
		{Name: "Empire", Units: [5]string{"Darth Vader", "Emperor Palpatine", "Grand Moff Tarkin", "TIE Fighter Pilot", "Royal Guard"}},
		{Name: "Extra", Units: [5]string{"Rey", "Finn", "Poe Dameron", "BB-8", "Resistance Trooper"}},
	}, presets)
}

func TestLoadPresetsEmpty(t *testing.T) {
	presets, err := LoadPresets(strings.NewReader("# nothing here\n\n"))
	require.NoError(t, err)
	assert.Empty(t, presets)
}

func TestLoadPresetFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, PresetFileName)
	require.NoError(t, os.WriteFile(path, []byte(presetFile), 0o600))

	presets, err := LoadPresetFile(path)
	require.NoError(t, err)
	assert.Len(t, presets, 3)

	_, err = LoadPresetFile(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}
