package services

import (
	"strings"

	gdmodels "go-guildsync/internal/gamedata/models"
	"go-guildsync/internal/roster/models"
	"go-guildsync/pkg/swgoh"

	"github.com/shopspring/decimal"
)

// Profile stat labels.
const (
	StatGalacticPower           = "Galactic Power:"
	StatGalacticPowerCharacters = "Galactic Power (Characters):"
	StatGalacticPowerShips      = "Galactic Power (Ships):"
)

// Thresholds for a character to count towards meaningful power.
const (
	meaningfulMinLevel  = 85
	meaningfulMinRarity = 7
	meaningfulMinGear   = 10
	meaningfulMinPower  = 13000
)

// uselessCharacters never count towards meaningful power.
var uselessCharacters = map[string]struct{}{
	"CORUSCANTUNDERWORLDPOLICE": {},
	"JEDIKNIGHTGUARDIAN":        {},
	"TUSKENRAIDER":              {},
	"TUSKENSHAMAN":              {},
	"URORRURRR":                 {},
	"UGNAUGHT":                  {},
	"GARSAXON":                  {},
	"IMPERIALSUPERCOMMANDO":     {},
	"LOBOT":                     {},
	"BODHIROOK":                 {},
	"HUMANTHUG":                 {},
	"ROSETICO":                  {},
	"EETHKOTH":                  {},
	"KITFISTO":                  {},
}

// MeaningfulPower sums the raw power of characters that matter in territory wars
func MeaningfulPower(roster []swgoh.Character) int64 {
	var total int64
	for i := range roster {
		c := &roster[i]
		if !c.IsCharacter() ||
			c.Level < meaningfulMinLevel ||
			c.Rarity < meaningfulMinRarity ||
			c.Gear < meaningfulMinGear ||
			c.GP < meaningfulMinPower {
			continue
		}
		if _, useless := uselessCharacters[c.DefID]; useless {
			continue
		}
		total += c.GP
	}
	return total
}

// TwEfficiency is meaningful power as a percentage of total power, rounded to two places.
// A player with no power has zero efficiency.
func TwEfficiency(meaningful, power int64) float64 {
	if power == 0 {
		return 0
	}
	pct := decimal.NewFromInt(meaningful).
		Div(decimal.NewFromInt(power)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	return pct.InexactFloat64()
}

// NewPlayer derives the player view. Titles decode the selected title when known.
func NewPlayer(info swgoh.PlayerInfo, titles *gdmodels.GameData) models.Player {
	power, _ := info.Stat(StatGalacticPower)
	charPower, _ := info.Stat(StatGalacticPowerCharacters)
	shipPower, _ := info.Stat(StatGalacticPowerShips)

	p := models.Player{
		Name:           info.Name,
		Level:          info.Level,
		AllyCode:       info.AllyCode,
		Power:          power,
		CharacterPower: charPower,
		ShipPower:      shipPower,
		Stats:          info.Stats,
		Roster:         info.Roster,
	}

	if len(p.Roster) > 0 {
		p.MeaningfulPower = MeaningfulPower(p.Roster)
		p.TwEfficiency = TwEfficiency(p.MeaningfulPower, p.Power)
	}
	for i := range p.Roster {
		p.NumZetas += p.Roster[i].NumZetas()
	}

	if selected := strings.TrimSpace(info.Titles.Selected); selected != "" {
		if name, ok := titles.TitleName(selected); ok {
			p.Title = name
		}
	}
	return p
}

// BuildRoster derives the player views in input order
func BuildRoster(players []swgoh.PlayerInfo, titles *gdmodels.GameData) []models.Player {
	roster := make([]models.Player, 0, len(players))
	for _, info := range players {
		roster = append(roster, NewPlayer(info, titles))
	}
	return roster
}
