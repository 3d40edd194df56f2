package models

import (
	"sort"
	"time"

	"go-guildsync/pkg/swgoh"
)

// DefaultMaxAge is how long a snapshot stays fresh
const DefaultMaxAge = 7 * 24 * time.Hour

// emptyAge backdates an empty snapshot so it is immediately outdated
const emptyAge = 365 * 24 * time.Hour

// GameData is an immutable snapshot of the game metadata.
// Snapshots are replaced wholesale and must not be modified once published.
type GameData struct {
	Units            []swgoh.UnitDetails `json:"units"`
	Titles           map[string]string   `json:"titles"`
	RelicMultipliers []int               `json:"relicMultipliers"`
	Zetas            []swgoh.ZetaStats   `json:"zetas"`
	Updated          time.Time           `json:"updated"`
}

// Empty returns a snapshot with no data that is already outdated at now.
func Empty(now time.Time) *GameData {
	return &GameData{Updated: now.Add(-emptyAge)}
}

// HasData reports whether all four collections are populated.
func (g *GameData) HasData() bool {
	if g == nil {
		return false
	}
	return len(g.Units) > 0 && len(g.Titles) > 0 && len(g.RelicMultipliers) > 0 && len(g.Zetas) > 0
}

// IsOutdated reports whether the snapshot is older than DefaultMaxAge.
func (g *GameData) IsOutdated(now time.Time) bool {
	return g.IsOlderThan(now, DefaultMaxAge)
}

// IsOlderThan reports whether the snapshot is older than maxAge.
func (g *GameData) IsOlderThan(now time.Time, maxAge time.Duration) bool {
	if g == nil {
		return true
	}
	return now.Sub(g.Updated) > maxAge
}

// TitleName returns the localized name of a title id.
func (g *GameData) TitleName(id string) (string, bool) {
	if g == nil || g.Titles == nil {
		return "", false
	}
	name, ok := g.Titles[id]
	return name, ok
}

// CharacterNames returns the sorted names of every character in the catalog.
func (g *GameData) CharacterNames() []string {
	if g == nil {
		return nil
	}
	names := make([]string, 0, len(g.Units))
	for i := range g.Units {
		if g.Units[i].IsCharacter() {
			names = append(names, g.Units[i].Name)
		}
	}
	sort.Strings(names)
	return names
}

// Unit finds a catalog entry by display name.
func (g *GameData) Unit(name string) (*swgoh.UnitDetails, bool) {
	if g == nil {
		return nil, false
	}
	for i := range g.Units {
		if g.Units[i].Name == name {
			return &g.Units[i], true
		}
	}
	return nil, false
}

// Tags returns every distinct resolved tag in the catalog, sorted.
func (g *GameData) Tags() []string {
	if g == nil {
		return nil
	}
	seen := make(map[string]struct{})
	for i := range g.Units {
		for _, tag := range g.Units[i].Tags {
			seen[tag] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Zeta finds the rating of an ability by name.
func (g *GameData) Zeta(name string) (*swgoh.ZetaStats, bool) {
	if g == nil {
		return nil, false
	}
	for i := range g.Zetas {
		if g.Zetas[i].Name == name {
			return &g.Zetas[i], true
		}
	}
	return nil, false
}

// TitleMap converts the title catalog into an id to name lookup.
func TitleMap(titles []swgoh.TitleInfo) map[string]string {
	m := make(map[string]string, len(titles))
	for _, t := range titles {
		m[t.ID] = t.Name
	}
	return m
}
