package swgoh

import (
	"fmt"
	"sort"
	"time"
)

// Combat types reported for roster units.
const (
	CombatTypeCharacter = "CHARACTER"
	CombatTypeShip      = "SHIP"
)

// Force alignments reported by the unit catalog.
const (
	AlignmentLight = "LIGHT"
	AlignmentDark  = "DARK"
)

// Gear and relic thresholds.
const (
	MaxGearLevel = 13
	// A relic tier of 1 or 2 means no relic; tier N > 2 is relic level N-2.
	relicTierOffset = 2
)

// Timestamp is a server-side Unix timestamp in milliseconds.
type Timestamp int64

// Time converts the timestamp to a time.Time.
func (ts Timestamp) Time() time.Time {
	return time.UnixMilli(int64(ts))
}

// NewTimestamp converts a time.Time to a Timestamp.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.UnixMilli())
}

// GuildInfo is a guild and its member summaries.
type GuildInfo struct {
	ID          string        `json:"id,omitempty"`
	Name        string        `json:"name"`
	Desc        string        `json:"desc"`
	Members     int           `json:"members"`
	Status      int           `json:"status"`
	Required    int           `json:"required"`
	BannerColor string        `json:"bannerColor"`
	BannerLogo  string        `json:"bannerLogo"`
	Message     string        `json:"message"`
	GP          int64         `json:"gp"`
	Raid        RaidLevels    `json:"raid"`
	Roster      []GuildMember `json:"roster"`
	Updated     Timestamp     `json:"updated"`
}

// RaidLevels holds the guild's unlocked raid difficulties.
type RaidLevels struct {
	Rancor   string `json:"rancor,omitempty"`
	AAT      string `json:"aat,omitempty"`
	SithRaid string `json:"sith_raid,omitempty"`
}

// GuildMember is a member summary within GuildInfo.
type GuildMember struct {
	ID               string    `json:"id,omitempty"`
	Name             string    `json:"name"`
	GuildMemberLevel int       `json:"guildMemberLevel"`
	Level            int       `json:"level"`
	AllyCode         AllyCode  `json:"allyCode"`
	GP               int64     `json:"gp"`
	GPChar           int64     `json:"gpChar"`
	GPShip           int64     `json:"gpShip"`
	Updated          Timestamp `json:"updated"`
}

// AllyCodes returns the ally codes of every roster member, in roster order.
func (g *GuildInfo) AllyCodes() []AllyCode {
	codes := make([]AllyCode, 0, len(g.Roster))
	for _, m := range g.Roster {
		codes = append(codes, m.AllyCode)
	}
	return codes
}

// PlayerInfo is the full detail of a single player.
type PlayerInfo struct {
	ID         string       `json:"id,omitempty"`
	Name       string       `json:"name"`
	Level      int          `json:"level"`
	AllyCode   AllyCode     `json:"allyCode"`
	GuildRefID string       `json:"guildRefId,omitempty"`
	GuildName  string       `json:"guildName"`
	GPFull     int64        `json:"gpFull,omitempty"`
	GPChar     int64        `json:"gpChar,omitempty"`
	GPShip     int64        `json:"gpShip,omitempty"`
	Titles     PlayerTitles `json:"titles"`
	Stats      []PlayerStat `json:"stats"`
	Roster     []Character  `json:"roster"`
	Arena      PlayerArena  `json:"arena"`
	Updated    Timestamp    `json:"updated"`
}

// PlayerTitles lists the selected and unlocked title ids.
type PlayerTitles struct {
	Selected string   `json:"selected"`
	Unlocked []string `json:"unlocked"`
}

// PlayerStat is a labelled profile statistic.
type PlayerStat struct {
	Index int    `json:"index,omitempty"`
	Name  string `json:"nameKey"`
	Value int64  `json:"value"`
}

// PlayerArena holds squad arena and fleet arena standings.
type PlayerArena struct {
	Char ArenaInfo `json:"char"`
	Ship ArenaInfo `json:"ship"`
}

// ArenaInfo is a single arena rank and defensive squad.
type ArenaInfo struct {
	Rank  int         `json:"rank"`
	Squad []ArenaUnit `json:"squad"`
}

// ArenaUnit is one member of an arena squad.
type ArenaUnit struct {
	ID            string `json:"id"`
	DefID         string `json:"defId"`
	SquadUnitType string `json:"squadUnitType"`
}

// Stat returns the value of the named profile stat and whether it was present.
func (p *PlayerInfo) Stat(name string) (int64, bool) {
	for _, s := range p.Stats {
		if s.Name == name {
			return s.Value, true
		}
	}
	return 0, false
}

// Unit returns the first roster unit with the given name.
func (p *PlayerInfo) Unit(name string) (*Character, bool) {
	for i := range p.Roster {
		if p.Roster[i].Name == name {
			return &p.Roster[i], true
		}
	}
	return nil, false
}

// Character is a unit owned by a player: a character or a ship.
type Character struct {
	ID         string      `json:"id"`
	DefID      string      `json:"defId"`
	Name       string      `json:"nameKey"`
	Rarity     int         `json:"rarity"`
	Level      int         `json:"level"`
	XP         int64       `json:"xp"`
	GP         int64       `json:"gp"`
	CombatType string      `json:"combatType"`
	Gear       int         `json:"gear"`
	Equipped   []Equipment `json:"equipped"`
	Skills     []Skill     `json:"skills"`
	Crew       []Crew      `json:"crew"`
	Mods       []Mod       `json:"mods"`
	Relic      *RelicInfo  `json:"relic,omitempty"`

	// TruePower is GP corrected for relic bonuses; set only by power enrichment.
	TruePower int64 `json:"TruePower"`
}

// Equipment is a gear piece in one of six slots.
type Equipment struct {
	EquipmentID string `json:"equipmentId"`
	Slot        int    `json:"slot"`
}

// Skill is an ability and its upgrade tier.
type Skill struct {
	ID     string `json:"id"`
	Tier   int    `json:"tier"`
	Tiers  int    `json:"tiers"`
	Name   string `json:"nameKey"`
	IsZeta bool   `json:"isZeta"`
}

// Crew is a pilot assigned to a ship.
type Crew struct {
	UnitID string `json:"unitId"`
	Slot   int    `json:"slot"`
	GP     int64  `json:"gp"`
}

// Mod is an equipped mod.
type Mod struct {
	ID    string `json:"id"`
	Slot  int    `json:"slot"`
	SetID int    `json:"setId"`
	Set   int    `json:"set"`
	Level int    `json:"level"`
	Pips  int    `json:"pips"`
}

// Mod set identifiers.
const (
	ModSetHealth     = 1
	ModSetOffense    = 2
	ModSetDefense    = 3
	ModSetSpeed      = 4
	ModSetCritChance = 5
	ModSetCritDamage = 6
	ModSetPotency    = 7
	ModSetTenacity   = 8
)

// RelicInfo carries the raw relic tier.
type RelicInfo struct {
	CurrentTier int `json:"currentTier"`
}

// IsCharacter reports whether the unit is a character rather than a ship.
func (c *Character) IsCharacter() bool {
	return c.CombatType == CombatTypeCharacter
}

// IsShip reports whether the unit is a ship.
func (c *Character) IsShip() bool {
	return c.CombatType == CombatTypeShip
}

// RelicTier returns the raw relic tier, or 0 when unknown.
func (c *Character) RelicTier() int {
	if c.Relic == nil {
		return 0
	}
	return c.Relic.CurrentTier
}

// RelicLevel returns the displayed relic level (0 when no relic).
func (c *Character) RelicLevel() int {
	if c.Gear < MaxGearLevel || c.RelicTier() <= relicTierOffset {
		return 0
	}
	return c.RelicTier() - relicTierOffset
}

// GearLevelSortable orders gear levels with relics after G13: G13 R5 is 13.5.
func (c *Character) GearLevelSortable() float64 {
	return float64(c.Gear) + 0.1*float64(c.RelicLevel())
}

// GearLevelDescription returns "R<n>" for relic units, otherwise the gear number.
func (c *Character) GearLevelDescription() string {
	if level := c.RelicLevel(); level > 0 {
		return fmt.Sprintf("R%d", level)
	}
	return fmt.Sprintf("%d", c.Gear)
}

// Zetas returns the names of abilities with an unlocked zeta.
func (c *Character) Zetas() []string {
	var zetas []string
	for _, s := range c.Skills {
		if s.IsZeta && s.Tier == s.Tiers {
			zetas = append(zetas, s.Name)
		}
	}
	return zetas
}

// NumZetas returns the number of unlocked zetas.
func (c *Character) NumZetas() int {
	return len(c.Zetas())
}

// ModSets lists the active set bonuses; four-piece sets first, then two-piece sets.
func (c *Character) ModSets() []string {
	counts := make(map[int]int)
	for _, m := range c.Mods {
		counts[m.Set]++
	}

	var sets []string
	for _, s := range []struct {
		id   int
		name string
	}{
		{ModSetCritDamage, "Crit Damage"},
		{ModSetOffense, "Offense"},
		{ModSetSpeed, "Speed"},
	} {
		if counts[s.id] >= 4 {
			sets = append(sets, s.name)
		}
	}
	for _, s := range []struct {
		id   int
		name string
	}{
		{ModSetHealth, "Health"},
		{ModSetDefense, "Defense"},
		{ModSetCritChance, "Crit Chance"},
		{ModSetPotency, "Potency"},
		{ModSetTenacity, "Tenacity"},
	} {
		for i := 0; i < counts[s.id]/2; i++ {
			sets = append(sets, s.name)
		}
	}

	sort.Strings(sets)
	return sets
}

// TitleInfo is a player title from the metadata collections.
type TitleInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"nameKey"`
	Desc       string    `json:"descKey"`
	Obtainable bool      `json:"obtainable"`
	Hidden     bool      `json:"hidden"`
	ShortDesc  string    `json:"shortDescKey"`
	Updated    Timestamp `json:"updated"`
}

// DataTable is a generic key/value table from the metadata collections.
type DataTable struct {
	ID   string    `json:"id"`
	Rows []DataRow `json:"rowList"`
}

// DataRow is a single row of a DataTable.
type DataRow struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// UnitDetails is a catalog entry for an obtainable unit.
type UnitDetails struct {
	BaseID         string   `json:"baseId"`
	Name           string   `json:"nameKey"`
	ForceAlignment string   `json:"forceAlignment"`
	CombatType     string   `json:"combatType"`
	CategoryIDs    []string `json:"categoryIdList"`
	Tags           []string `json:"tags,omitempty"`
}

// IsCharacter reports whether the catalog entry is a character.
func (u *UnitDetails) IsCharacter() bool {
	return u.CombatType == CombatTypeCharacter
}

// HasTag reports whether the unit carries the given resolved tag.
func (u *UnitDetails) HasTag(tag string) bool {
	for _, t := range u.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Category is a unit category definition.
type Category struct {
	ID        string `json:"id"`
	Desc      string `json:"descKey"`
	Visible   bool   `json:"visible"`
	UIFilters []int  `json:"uiFilterList"`
}

// ZetaStats rates an ability's zeta across game modes: 1 is best, 10 is worst.
type ZetaStats struct {
	Name  string  `json:"name"`
	Type  string  `json:"type"`
	Toon  string  `json:"toon"`
	PvP   float64 `json:"pvp"`
	TW    float64 `json:"tw"`
	TB    float64 `json:"tb"`
	Pit   float64 `json:"pit"`
	Tank  float64 `json:"tank"`
	Sith  float64 `json:"sith"`
	Versa float64 `json:"versa"`
}
