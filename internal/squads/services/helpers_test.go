package services

import (
	"context"
	"fmt"

	rostermodels "go-guildsync/internal/roster/models"
	"go-guildsync/internal/squads/models"
	"go-guildsync/pkg/swgoh"
)

var rebels = []string{"Rey", "Finn", "Poe Dameron", "BB-8", "Resistance Trooper"}

func unit(name string, stars, gear int, power int64) swgoh.Character {
	return swgoh.Character{
		Name:       name,
		CombatType: swgoh.CombatTypeCharacter,
		Level:      85,
		Rarity:     stars,
		Gear:       gear,
		GP:         power,
		TruePower:  power,
	}
}

func member(i int, name string, units ...swgoh.Character) rostermodels.Player {
	return rostermodels.Player{
		Name:     name,
		AllyCode: swgoh.AllyCode(100000000 + i),
		Roster:   units,
	}
}

// squadRoster gives Alice and Bob the full rebel squad and Carol four of five
func squadRoster() []rostermodels.Player {
	full := func(stars, gear int, power int64) []swgoh.Character {
		units := make([]swgoh.Character, 0, len(rebels))
		for _, name := range rebels {
			units = append(units, unit(name, stars, gear, power))
		}
		return units
	}
	return []rostermodels.Player{
		member(1, "Alice", full(7, 13, 20000)...),
		member(2, "Bob", full(6, 11, 15000)...),
		member(3, "Carol", full(7, 13, 30000)[:4]...),
	}
}

type memoryReports struct {
	reports map[string]*models.PresetReport
	saveErr error
}

func (m *memoryReports) SaveReport(_ context.Context, report *models.PresetReport) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.reports == nil {
		m.reports = make(map[string]*models.PresetReport)
	}
	m.reports[report.ID] = report
	return nil
}

func (m *memoryReports) LoadReport(_ context.Context, id string) (*models.PresetReport, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	return r, nil
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func i64Ptr(v int64) *int64   { return &v }

func deref(cells []*int64) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		if c != nil {
			out[i] = fmt.Sprint(*c)
		}
	}
	return out
}
