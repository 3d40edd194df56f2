package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	gdmodels "go-guildsync/internal/gamedata/models"
	"go-guildsync/internal/roster/models"
	"go-guildsync/pkg/swgoh"
)

// Unit list filters. Any other value is treated as a category tag.
const (
	FilterAll        = "All"
	FilterCharacters = "Characters"
	FilterShips      = "Ships"
	FilterLightSide  = "Light Side"
	FilterDarkSide   = "Dark Side"
)

// Relic levels counted by the challenge raid report.
const (
	pitMinRelic  = 5
	pitHighRelic = 7
)

// UnitFilters lists the built-in filters followed by every resolved tag
func UnitFilters(gd *gdmodels.GameData) []string {
	filters := []string{FilterAll, FilterCharacters, FilterShips, FilterLightSide, FilterDarkSide}
	if gd.HasData() {
		filters = append(filters, gd.Tags()...)
	}
	return filters
}

// UnitNames lists unit names matching filter, sorted. Without a catalog the
// names come from the rosters, and only the combat type filters can apply.
func UnitNames(gd *gdmodels.GameData, players []models.Player, filter string) []string {
	if filter == "" {
		filter = FilterAll
	}

	var names []string
	if gd.HasData() && len(gd.Units) > 0 {
		for i := range gd.Units {
			if catalogMatches(&gd.Units[i], filter) {
				names = append(names, gd.Units[i].Name)
			}
		}
	} else {
		seen := make(map[string]struct{})
		for _, p := range players {
			for i := range p.Roster {
				c := &p.Roster[i]
				if _, ok := seen[c.Name]; ok || !rosterMatches(c, filter) {
					continue
				}
				seen[c.Name] = struct{}{}
				names = append(names, c.Name)
			}
		}
	}

	sort.Strings(names)
	return names
}

func catalogMatches(u *swgoh.UnitDetails, filter string) bool {
	switch filter {
	case FilterAll:
		return true
	case FilterCharacters:
		return u.CombatType == swgoh.CombatTypeCharacter
	case FilterShips:
		return u.CombatType == swgoh.CombatTypeShip
	case FilterLightSide:
		return u.ForceAlignment == swgoh.AlignmentLight
	case FilterDarkSide:
		return u.ForceAlignment == swgoh.AlignmentDark
	default:
		return u.HasTag(filter)
	}
}

func rosterMatches(c *swgoh.Character, filter string) bool {
	switch filter {
	case FilterAll:
		return true
	case FilterCharacters:
		return c.IsCharacter()
	case FilterShips:
		return c.IsShip()
	default:
		return false
	}
}

// unitPower prefers the relic-corrected power when it has been computed
func unitPower(c *swgoh.Character) int64 {
	if c.TruePower > 0 {
		return c.TruePower
	}
	return c.GP
}

// UnitLookup lists every member's copy of the named unit, strongest first
func UnitLookup(players []models.Player, name string) []models.UnitOwnership {
	var out []models.UnitOwnership
	for i := range players {
		c, ok := players[i].Unit(name)
		if !ok {
			continue
		}
		out = append(out, models.UnitOwnership{
			Player:               players[i].Name,
			Level:                c.Level,
			Stars:                c.Rarity,
			GearLevel:            c.Gear,
			GearLevelSortable:    c.GearLevelSortable(),
			GearLevelDescription: c.GearLevelDescription(),
			Power:                unitPower(c),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Power > out[j].Power })
	return out
}

// PitReport lists members with relic 5 or better characters and who owns each of them
func PitReport(snap *models.RosterSnapshot) models.PitReport {
	report := models.PitReport{}
	total := len(snap.Roster)
	if snap.Guild != nil {
		report.GuildName = snap.Guild.Name
		total = snap.Guild.Members
	}

	owners := make(map[string][]string)
	for _, p := range snap.Roster {
		member := models.PitPlayer{Name: p.Name, AllyCode: p.AllyCode}
		for i := range p.Roster {
			c := &p.Roster[i]
			relic := c.RelicLevel()
			if !c.IsCharacter() || relic < pitMinRelic {
				continue
			}
			member.CharacterPower += c.TruePower
			member.NumR5++
			if relic >= pitHighRelic {
				member.NumR7++
			}
			member.Units = append(member.Units, c.Name)
			owners[c.Name] = append(owners[c.Name], p.Name)
		}
		if member.NumR5 > 0 {
			report.Members = append(report.Members, member)
		}
	}

	for unit, players := range owners {
		sort.Strings(players)
		report.Units = append(report.Units, models.PitUnit{Unit: unit, Players: players})
	}
	sort.Slice(report.Units, func(i, j int) bool { return report.Units[i].Unit < report.Units[j].Unit })

	report.NumEligibleMessage = fmt.Sprintf("%d/%d members eligible", len(report.Members), total)
	return report
}

// WriteRosterCSV writes one row of power figures per member
func WriteRosterCSV(w io.Writer, players []models.Player) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Name", "Total Power", "Character Power", "Meaningful Power"}); err != nil {
		return err
	}
	for _, p := range players {
		if err := cw.Write([]string{
			p.Name,
			strconv.FormatInt(p.Power, 10),
			strconv.FormatInt(p.CharacterPower, 10),
			strconv.FormatInt(p.MeaningfulPower, 10),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ZetaList lists every unlocked zeta of a player, in roster order
func ZetaList(p *models.Player) []models.ZetaEntry {
	var out []models.ZetaEntry
	for i := range p.Roster {
		for _, ability := range p.Roster[i].Zetas() {
			out = append(out, models.ZetaEntry{Unit: p.Roster[i].Name, Ability: ability})
		}
	}
	return out
}

// FindPlayer locates a member by ally code or case-insensitive name
func FindPlayer(snap *models.RosterSnapshot, key string) (*models.Player, bool) {
	if code, err := swgoh.ParseAllyCode(key); err == nil {
		if p, ok := snap.Member(code); ok {
			return p, true
		}
	}
	for i := range snap.Roster {
		if strings.EqualFold(snap.Roster[i].Name, key) {
			return &snap.Roster[i], true
		}
	}
	return nil, false
}

// AllianceSummary looks up the guild of each ally code. Failed lookups are
// reported and left out; a player without a guild is skipped.
func (s *SyncService) AllianceSummary(ctx context.Context, codes []swgoh.AllyCode) []models.GuildSummary {
	summaries := make([]models.GuildSummary, 0, len(codes))
	for _, code := range codes {
		guild, err := s.source.Guild(ctx, code)
		switch {
		case errors.Is(err, swgoh.ErrNotInGuild):
			continue
		case err != nil:
			s.report(ctx, "Error fetching alliance guild "+code.String(), err)
			continue
		}
		summaries = append(summaries, models.GuildSummary{
			AllyCode: code,
			Name:     guild.Name,
			Members:  guild.Members,
			Power:    guild.GP,
		})
	}
	return summaries
}
