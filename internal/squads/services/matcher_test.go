package services

import (
	"errors"
	"testing"
	"time"

	gdmodels "go-guildsync/internal/gamedata/models"
	"go-guildsync/pkg/swgoh"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	players := squadRoster()

	results, err := Search(players, rebels)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Alice", results[0].Player)
	assert.Equal(t, int64(100000), results[0].TotalPower)
	assert.Equal(t, "Bob", results[1].Player)
	assert.Equal(t, int64(75000), results[1].TotalPower)

	require.Len(t, results[1].Units, 5)
	assert.Equal(t, "Rey", results[1].Units[0].Name)
	assert.Equal(t, 6, results[1].Units[0].Stars)
	assert.Equal(t, 11, results[1].Units[0].GearLevel)
	assert.Equal(t, 85, results[1].Units[0].Level)
}

func TestSearchSelection(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		valid bool
	}{
		{"five names", rebels, true},
		{"blanks ignored", append([]string{"", " "}, rebels...), true},
		{"duplicate collapses", append([]string{"Rey"}, rebels...), true},
		{"four names", rebels[:4], false},
		{"four distinct of five", []string{"Rey", "Rey", "Finn", "BB-8", "Poe Dameron"}, false},
		{"six names", append([]string{"Jawa"}, rebels...), false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Search(squadRoster(), tt.names)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			var ve *swgoh.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, "Invalid squad selection", ve.Message)
		})
	}
}

func TestSearchNoMatches(t *testing.T) {
	results, err := Search(squadRoster(), []string{"Rey", "Finn", "Poe Dameron", "BB-8", "Jawa"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSquadUnitNames(t *testing.T) {
	players := squadRoster()
	players[0].Roster = append(players[0].Roster, swgoh.Character{Name: "Millennium Falcon", CombatType: swgoh.CombatTypeShip})

	t.Run("catalog characters", func(t *testing.T) {
		gd := &gdmodels.GameData{
			Units: []swgoh.UnitDetails{
				{Name: "Rey", CombatType: swgoh.CombatTypeCharacter},
				{Name: "Millennium Falcon", CombatType: swgoh.CombatTypeShip},
				{Name: "Darth Vader", CombatType: swgoh.CombatTypeCharacter},
			},
			Updated: time.Now(),
		}
		assert.Equal(t, []string{"Darth Vader", "Rey"}, UnitNames(gd, players))
	})

	t.Run("roster fallback", func(t *testing.T) {
		assert.Equal(t, []string{"BB-8", "Finn", "Poe Dameron", "Resistance Trooper", "Rey"}, UnitNames(nil, players))
		assert.Equal(t, []string{"BB-8", "Finn", "Poe Dameron", "Resistance Trooper", "Rey"}, UnitNames(&gdmodels.GameData{}, players))
	})
}

func TestFindUnit(t *testing.T) {
	units := []string{"Rey", "Padmé Amidala", "Chirrut Îmwe", "Darth Vader"}

	tests := []struct {
		name  string
		input string
		want  string
		found bool
	}{
		{"exact", "Rey", "Rey", true},
		{"case insensitive", "darth vader", "Darth Vader", true},
		{"trimmed", "  Rey ", "Rey", true},
		{"padme spelling", "Padme Amidala", "Padmé Amidala", true},
		{"chirrut spelling", "Chirrut Imwe", "Chirrut Îmwe", true},
		{"blank", "  ", "", false},
		{"unknown", "Jawa", "", false},
		{"prefix only applies to known names", "Darth", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindUnit(tt.input, units)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnitPower(t *testing.T) {
	tests := []struct {
		name string
		unit swgoh.Character
		want int64
	}{
		{"enriched", swgoh.Character{GP: 20000, TruePower: 22259}, 22259},
		{"not enriched", swgoh.Character{GP: 20000}, 20000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, unitPower(&tt.unit))
		})
	}
}
