package models

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"go-guildsync/pkg/swgoh"
)

// SquadSize is the number of units in a squad
const SquadSize = 5

// SquadPreset is a named five-unit squad loaded from the preset file
type SquadPreset struct {
	Name  string            `json:"name"`
	Units [SquadSize]string `json:"units"`
}

// SquadUnit is one member's copy of a squad unit
type SquadUnit struct {
	Name      string `json:"name"`
	Level     int    `json:"level"`
	Stars     int    `json:"stars"`
	GearLevel int    `json:"gear_level"`
	Power     int64  `json:"power"`
}

// SquadLookupResult is a member owning every unit of the searched squad
type SquadLookupResult struct {
	Player     string         `json:"player"`
	AllyCode   swgoh.AllyCode `json:"ally_code"`
	Units      []SquadUnit    `json:"units"`
	TotalPower int64          `json:"total_power"`
}

// ReportFilter restricts which squads qualify. A nil field is not checked.
type ReportFilter struct {
	MinStars      *int   `json:"min_stars,omitempty"`
	MinGear       *int   `json:"min_gear,omitempty"`
	MinUnitPower  *int64 `json:"min_unit_power,omitempty"`
	MinSquadPower *int64 `json:"min_squad_power,omitempty"`
}

// PresetRow holds one member's squad power per preset; nil means not qualified
type PresetRow struct {
	Player   string         `json:"player"`
	AllyCode swgoh.AllyCode `json:"ally_code"`
	Squads   []*int64       `json:"squads"`
}

// PresetReport is the qualifying squad power of every member for every preset
type PresetReport struct {
	ID          string       `json:"id"`
	GeneratedAt time.Time    `json:"generated_at"`
	Filter      ReportFilter `json:"filter"`
	Presets     []string     `json:"presets"`
	Rows        []PresetRow  `json:"rows"`
}

// WriteCSV writes a header of preset names and one row per member
func (r *PresetReport) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"Player"}, r.Presets...)); err != nil {
		return err
	}
	for _, row := range r.Rows {
		record := make([]string, 0, len(row.Squads)+1)
		record = append(record, row.Player)
		for _, power := range row.Squads {
			if power == nil {
				record = append(record, "")
				continue
			}
			record = append(record, strconv.FormatInt(*power, 10))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
