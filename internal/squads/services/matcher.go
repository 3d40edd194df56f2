package services

import (
	"sort"
	"strings"

	gdmodels "go-guildsync/internal/gamedata/models"
	rostermodels "go-guildsync/internal/roster/models"
	"go-guildsync/internal/squads/models"
	"go-guildsync/pkg/swgoh"
)

// Name prefixes whose catalog spelling varies between data sources
var fuzzyPrefixes = []string{"Padm", "Chirrut"}

// Search lists the members owning all five named units, strongest squad first
func Search(players []rostermodels.Player, names []string) ([]models.SquadLookupResult, error) {
	squad, err := selection(names)
	if err != nil {
		return nil, err
	}

	var results []models.SquadLookupResult
	for i := range players {
		p := &players[i]
		result := models.SquadLookupResult{Player: p.Name, AllyCode: p.AllyCode}
		for _, name := range squad {
			c, ok := p.Unit(name)
			if !ok {
				break
			}
			power := unitPower(c)
			result.Units = append(result.Units, models.SquadUnit{
				Name:      c.Name,
				Level:     c.Level,
				Stars:     c.Rarity,
				GearLevel: c.Gear,
				Power:     power,
			})
			result.TotalPower += power
		}
		if len(result.Units) == models.SquadSize {
			results = append(results, result)
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].TotalPower > results[j].TotalPower })
	return results, nil
}

// selection drops blank names and requires exactly five distinct ones
func selection(names []string) ([]string, error) {
	seen := make(map[string]struct{}, len(names))
	squad := make([]string, 0, models.SquadSize)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		squad = append(squad, name)
	}
	if len(squad) != models.SquadSize {
		return nil, &swgoh.ValidationError{Message: "Invalid squad selection"}
	}
	return squad, nil
}

// UnitNames lists character names from the catalog, or from the rosters
// when no catalog is cached
func UnitNames(gd *gdmodels.GameData, players []rostermodels.Player) []string {
	if gd != nil && len(gd.Units) > 0 {
		return gd.CharacterNames()
	}

	seen := make(map[string]struct{})
	var names []string
	for _, p := range players {
		for i := range p.Roster {
			c := &p.Roster[i]
			if !c.IsCharacter() {
				continue
			}
			if _, ok := seen[c.Name]; ok {
				continue
			}
			seen[c.Name] = struct{}{}
			names = append(names, c.Name)
		}
	}
	sort.Strings(names)
	return names
}

// FindUnit resolves a preset name against known unit names
func FindUnit(name string, units []string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	for _, u := range units {
		if strings.EqualFold(u, name) {
			return u, true
		}
	}
	for _, prefix := range fuzzyPrefixes {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		for _, u := range units {
			if strings.HasPrefix(u, prefix) {
				return u, true
			}
		}
	}
	return "", false
}

// unitPower is the unit's TruePower. Raw GP stands in only for a roster that
// has not been enriched yet, where TruePower is still zero.
func unitPower(c *swgoh.Character) int64 {
	if c.TruePower > 0 {
		return c.TruePower
	}
	return c.GP
}
