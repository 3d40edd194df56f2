package services

import (
	"errors"
	"strconv"
	"strings"

	rostermodels "go-guildsync/internal/roster/models"
	"go-guildsync/internal/squads/models"
	"go-guildsync/pkg/swgoh"
)

// ErrNoPresets is returned when a report is requested without any presets
var ErrNoPresets = errors.New("no squad presets loaded")

const (
	minStars = 1
	maxStars = 7
	minGear  = 1
)

// FilterInput is the report filter as entered. A nil field disables that check.
type FilterInput struct {
	MinStars      *int    `json:"min_stars,omitempty"`
	MinGear       *int    `json:"min_gear,omitempty"`
	MinUnitPower  *string `json:"min_unit_power,omitempty"`
	MinSquadPower *string `json:"min_squad_power,omitempty"`
}

// ParseReportFilter validates the entered filter values
func ParseReportFilter(in FilterInput) (models.ReportFilter, error) {
	var filter models.ReportFilter

	if in.MinStars != nil {
		if *in.MinStars < minStars || *in.MinStars > maxStars {
			return filter, &swgoh.ValidationError{Field: "min_stars", Message: "Invalid star level selected."}
		}
		stars := *in.MinStars
		filter.MinStars = &stars
	}

	if in.MinGear != nil {
		if *in.MinGear < minGear || *in.MinGear > swgoh.MaxGearLevel {
			return filter, &swgoh.ValidationError{Field: "min_gear", Message: "Invalid gear level selected."}
		}
		gear := *in.MinGear
		filter.MinGear = &gear
	}

	if in.MinUnitPower != nil {
		power, err := parsePower(*in.MinUnitPower, "min_unit_power",
			"Minimum character power not specified.",
			"Character power must be a number greater than zero.")
		if err != nil {
			return filter, err
		}
		filter.MinUnitPower = &power
	}

	if in.MinSquadPower != nil {
		power, err := parsePower(*in.MinSquadPower, "min_squad_power",
			"Minimum squad power not specified.",
			"Squad power must be a number greater than zero.")
		if err != nil {
			return filter, err
		}
		filter.MinSquadPower = &power
	}

	return filter, nil
}

func parsePower(raw, field, missing, invalid string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, &swgoh.ValidationError{Field: field, Message: missing}
	}
	power, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || power < 0 {
		return 0, &swgoh.ValidationError{Field: field, Message: invalid}
	}
	return power, nil
}

// Generate computes each member's qualifying squad power for every preset.
// Preset names are resolved against units; an unresolved name never qualifies.
func Generate(players []rostermodels.Player, presets []models.SquadPreset, units []string, filter models.ReportFilter) (*models.PresetReport, error) {
	if len(presets) == 0 {
		return nil, ErrNoPresets
	}

	report := &models.PresetReport{
		Filter:  filter,
		Presets: make([]string, len(presets)),
		Rows:    make([]models.PresetRow, 0, len(players)),
	}
	resolved := make([][]string, len(presets))
	for i, preset := range presets {
		report.Presets[i] = preset.Name
		for _, name := range preset.Units {
			if unit, ok := FindUnit(name, units); ok {
				resolved[i] = append(resolved[i], unit)
			}
		}
	}

	for i := range players {
		p := &players[i]
		row := models.PresetRow{
			Player:   p.Name,
			AllyCode: p.AllyCode,
			Squads:   make([]*int64, len(presets)),
		}
		for j, names := range resolved {
			if power, ok := qualify(p, names, filter); ok {
				row.Squads[j] = &power
			}
		}
		report.Rows = append(report.Rows, row)
	}
	return report, nil
}

// qualify returns the squad power when the member owns all five units and
// every enabled filter passes
func qualify(p *rostermodels.Player, names []string, filter models.ReportFilter) (int64, bool) {
	if len(names) != models.SquadSize {
		return 0, false
	}

	var total int64
	for _, name := range names {
		c, ok := p.Unit(name)
		if !ok {
			return 0, false
		}
		power := unitPower(c)
		switch {
		case filter.MinStars != nil && c.Rarity < *filter.MinStars:
			return 0, false
		case filter.MinGear != nil && c.Gear < *filter.MinGear:
			return 0, false
		case filter.MinUnitPower != nil && power < *filter.MinUnitPower:
			return 0, false
		}
		total += power
	}

	if filter.MinSquadPower != nil && total < *filter.MinSquadPower {
		return 0, false
	}
	return total, true
}

// reportUnits lists every unit name preset names may resolve to
func reportUnits(catalog []string, players []rostermodels.Player) []string {
	if len(catalog) > 0 {
		return catalog
	}
	seen := make(map[string]struct{})
	var names []string
	for _, p := range players {
		for i := range p.Roster {
			name := p.Roster[i].Name
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}
