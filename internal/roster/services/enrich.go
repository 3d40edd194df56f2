package services

import (
	"math"

	"go-guildsync/pkg/swgoh"
)

// DefaultRelicPowerScale converts relic table values into displayed galactic power
const DefaultRelicPowerScale = 2.2587

// firstRelicTier is the raw tier of relic level 1; it maps to index 0 of the bonus table
const firstRelicTier = 3

// ComputeTruePower sets TruePower on every unit of every player. Characters at
// gear 13 with a relic get the scaled bonus for their tier when the table covers it.
// It is idempotent and must be re-run whenever the bonus table changes.
func ComputeTruePower(players []swgoh.PlayerInfo, relicBonus []int, scale float64) {
	for p := range players {
		roster := players[p].Roster
		for i := range roster {
			c := &roster[i]
			c.TruePower = c.GP

			tier := c.RelicTier()
			if !c.IsCharacter() || c.Gear < swgoh.MaxGearLevel || tier < firstRelicTier {
				continue
			}
			if idx := tier - firstRelicTier; idx < len(relicBonus) {
				c.TruePower += int64(math.Round(float64(relicBonus[idx]) * scale))
			}
		}
	}
}

// clonePlayers copies players and their rosters so enrichment never touches a published snapshot
func clonePlayers(players []swgoh.PlayerInfo) []swgoh.PlayerInfo {
	if players == nil {
		return nil
	}
	out := make([]swgoh.PlayerInfo, len(players))
	for i, p := range players {
		p.Roster = append([]swgoh.Character(nil), p.Roster...)
		out[i] = p
	}
	return out
}
