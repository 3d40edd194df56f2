package dto

import (
	"time"

	"go-guildsync/internal/roster/models"
	"go-guildsync/pkg/swgoh"
)

// RosterStatus describes the program state and the held snapshot
type RosterStatus struct {
	State            models.ProgramState `json:"state"`
	Activity         string              `json:"activity"`
	ToolsUnlocked    bool                `json:"tools_unlocked"`
	FetchUnlocked    bool                `json:"fetch_unlocked"`
	SnapshotID       string              `json:"snapshot_id,omitempty"`
	GuildName        string              `json:"guild_name,omitempty"`
	PlayerName       string              `json:"player_name,omitempty"`
	Players          int                 `json:"players"`
	IsAllDataPresent bool                `json:"is_all_data_available"`
	PulledAt         *time.Time          `json:"pulled_at,omitempty"`
}

type StatusOutput struct {
	Body RosterStatus `json:"body"`
}

// PlayerSummary is a member without roster detail
type PlayerSummary struct {
	Name            string         `json:"name"`
	Level           int            `json:"level"`
	AllyCode        swgoh.AllyCode `json:"ally_code"`
	Title           string         `json:"title,omitempty"`
	Power           int64          `json:"power"`
	CharacterPower  int64          `json:"character_power"`
	ShipPower       int64          `json:"ship_power"`
	MeaningfulPower int64          `json:"meaningful_power"`
	TwEfficiency    float64        `json:"tw_efficiency"`
	NumZetas        int            `json:"num_zetas"`
	Units           int            `json:"units"`
}

// NewPlayerSummary drops the roster detail from a player
func NewPlayerSummary(p *models.Player) PlayerSummary {
	return PlayerSummary{
		Name:            p.Name,
		Level:           p.Level,
		AllyCode:        p.AllyCode,
		Title:           p.Title,
		Power:           p.Power,
		CharacterPower:  p.CharacterPower,
		ShipPower:       p.ShipPower,
		MeaningfulPower: p.MeaningfulPower,
		TwEfficiency:    p.TwEfficiency,
		NumZetas:        p.NumZetas,
		Units:           len(p.Roster),
	}
}

type PullOutput struct {
	Body RosterStatus `json:"body"`
}

type ListPlayersOutput struct {
	Body struct {
		Players []PlayerSummary `json:"players"`
		Total   int             `json:"total"`
	}
}

type PlayerOutput struct {
	Body struct {
		Player models.Player      `json:"player"`
		Zetas  []models.ZetaEntry `json:"zetas"`
	}
}

type ListUnitsOutput struct {
	Body struct {
		Units   []string `json:"units"`
		Filters []string `json:"filters" doc:"Every accepted filter"`
	}
}

type UnitLookupOutput struct {
	Body struct {
		Unit   string                 `json:"unit"`
		Owners []models.UnitOwnership `json:"owners"`
	}
}

type PitOutput struct {
	Body models.PitReport `json:"body"`
}

type AllianceOutput struct {
	Body struct {
		Guilds []models.GuildSummary `json:"guilds"`
	}
}

// FileOutput streams a generated file
type FileOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}
