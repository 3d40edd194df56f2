package models

import (
	"time"

	"go-guildsync/pkg/swgoh"
)

// ProgramState is the stage of the data pull
type ProgramState string

const (
	StateNoDataAvailable        ProgramState = "NO_DATA_AVAILABLE"
	StateReady                  ProgramState = "READY"
	StateLoggingIn              ProgramState = "LOGGING_IN"
	StateGettingGuildData       ProgramState = "GETTING_GUILD_DATA"
	StateGettingGuildMemberData ProgramState = "GETTING_GUILD_MEMBER_DATA"
	StateGettingPlayerData      ProgramState = "GETTING_PLAYER_DATA"
	StateGettingMiscData        ProgramState = "GETTING_MISC_DATA"
)

// Activity returns the human-readable description of the state
func (s ProgramState) Activity() string {
	switch s {
	case StateNoDataAvailable:
		return "No data available"
	case StateReady:
		return "Ready"
	case StateLoggingIn:
		return "Logging in"
	case StateGettingGuildData:
		return "Fetching guild information"
	case StateGettingGuildMemberData:
		return "Fetching member details"
	case StateGettingPlayerData:
		return "Fetching player details"
	case StateGettingMiscData:
		return "Fetching game data"
	default:
		return "Unknown"
	}
}

// ToolsUnlocked reports whether roster analytics may run
func (s ProgramState) ToolsUnlocked() bool {
	return s == StateReady
}

// FetchUnlocked reports whether a new pull may start
func (s ProgramState) FetchUnlocked() bool {
	return s == StateReady || s == StateNoDataAvailable
}

// Player is the derived view of a guild member
type Player struct {
	Name            string             `json:"name"`
	Level           int                `json:"level"`
	AllyCode        swgoh.AllyCode     `json:"ally_code"`
	Title           string             `json:"title,omitempty"`
	Power           int64              `json:"power"`
	CharacterPower  int64              `json:"character_power"`
	ShipPower       int64              `json:"ship_power"`
	MeaningfulPower int64              `json:"meaningful_power"`
	TwEfficiency    float64            `json:"tw_efficiency"`
	NumZetas        int                `json:"num_zetas"`
	Stats           []swgoh.PlayerStat `json:"stats,omitempty"`
	Roster          []swgoh.Character  `json:"roster,omitempty"`
}

// Unit returns the first roster unit with the given name
func (p *Player) Unit(name string) (*swgoh.Character, bool) {
	for i := range p.Roster {
		if p.Roster[i].Name == name {
			return &p.Roster[i], true
		}
	}
	return nil, false
}

// RosterSnapshot is one consistent view of the guild. Snapshots are replaced wholesale.
type RosterSnapshot struct {
	ID         string             `json:"id"`
	Guild      *swgoh.GuildInfo   `json:"guild,omitempty"`
	Players    []swgoh.PlayerInfo `json:"-"`
	Roster     []Player           `json:"-"`
	PlayerName string             `json:"player_name"`
	PulledAt   time.Time          `json:"pulled_at"`
}

// IsAllDataAvailable reports whether guild and every member's detail are present
func (s *RosterSnapshot) IsAllDataAvailable() bool {
	if s == nil || s.Guild == nil || s.Players == nil || s.Roster == nil {
		return false
	}
	return s.Guild.Members == len(s.Roster)
}

// Member finds a roster member by ally code
func (s *RosterSnapshot) Member(code swgoh.AllyCode) (*Player, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.Roster {
		if s.Roster[i].AllyCode == code {
			return &s.Roster[i], true
		}
	}
	return nil, false
}

// UnitOwnership is one member's copy of a looked-up unit
type UnitOwnership struct {
	Player               string  `json:"player"`
	Level                int     `json:"level"`
	Stars                int     `json:"stars"`
	GearLevel            int     `json:"gear_level"`
	GearLevelSortable    float64 `json:"gear_level_sortable"`
	GearLevelDescription string  `json:"gear_level_description"`
	Power                int64   `json:"power"`
}

// PitPlayer is a member with relic 5+ characters
type PitPlayer struct {
	Name           string         `json:"name"`
	AllyCode       swgoh.AllyCode `json:"ally_code"`
	CharacterPower int64          `json:"character_power"`
	NumR5          int            `json:"num_r5"`
	NumR7          int            `json:"num_r7"`
	Units          []string       `json:"units"`
}

// PitUnit lists the members owning an eligible unit
type PitUnit struct {
	Unit    string   `json:"unit"`
	Players []string `json:"players"`
}

// PitReport summarises challenge raid readiness
type PitReport struct {
	GuildName          string      `json:"guild_name"`
	NumEligibleMessage string      `json:"num_eligible_message"`
	Members            []PitPlayer `json:"members"`
	Units              []PitUnit   `json:"units"`
}

// GuildSummary is a compact alliance guild entry
type GuildSummary struct {
	AllyCode swgoh.AllyCode `json:"ally_code"`
	Name     string         `json:"name"`
	Members  int            `json:"members"`
	Power    int64          `json:"power"`
}

// ZetaEntry is one unlocked zeta on a player's unit
type ZetaEntry struct {
	Unit    string `json:"unit"`
	Ability string `json:"ability"`
}

// Collection names
const (
	PlayersCollection = "players"
	GuildsCollection  = "guilds"
)

// PlayerRecord is the persisted form of a pulled player
type PlayerRecord struct {
	AllyCode  swgoh.AllyCode   `bson:"ally_code"`
	Name      string           `bson:"name"`
	GuildName string           `bson:"guild_name"`
	Info      swgoh.PlayerInfo `bson:"info"`
	PulledAt  time.Time        `bson:"pulled_at"`
	CreatedAt time.Time        `bson:"created_at"`
	UpdatedAt time.Time        `bson:"updated_at"`
}

// GuildRecord is the persisted form of a pulled guild
type GuildRecord struct {
	Name      string          `bson:"name"`
	Members   int             `bson:"members"`
	Info      swgoh.GuildInfo `bson:"info"`
	PulledAt  time.Time       `bson:"pulled_at"`
	CreatedAt time.Time       `bson:"created_at"`
	UpdatedAt time.Time       `bson:"updated_at"`
}
