package services

import (
	"sort"
	"strings"
	"unicode"

	"go-guildsync/pkg/swgoh"
)

const selfTagPrefix = "selftag_"

// manualTags translates category ids whose official description is missing or untranslated.
var manualTags = map[string]string{
	"alignment_light":             "Light Side",
	"alignment_dark":              "Dark Side",
	"alignment_neutral":           "Neutral",
	"role_attacker":               "Attacker",
	"role_tank":                   "Tank",
	"role_support":                "Support",
	"role_healer":                 "Healer",
	"role_leader":                 "Leader",
	"role_capital":                "Capital Ship",
	"role_galactic_legend":        "Galactic Legend",
	"affiliation_empire":          "Empire",
	"affiliation_rebels":          "Rebel",
	"affiliation_rebelfighters":   "Rebel Fighter",
	"affiliation_firstorder":      "First Order",
	"affiliation_resistance":      "Resistance",
	"affiliation_separatist":      "Separatist",
	"affiliation_republic":        "Galactic Republic",
	"affiliation_oldrepublic":     "Old Republic",
	"affiliation_nightsisters":    "Nightsister",
	"affiliation_phoenix":         "Phoenix",
	"affiliation_rogue_one":       "Rogue One",
	"affiliation_imperialtrooper": "Imperial Trooper",
	"affiliation_501st":           "Clone Trooper",
	"affiliation_sithempire":      "Sith Empire",
	"affiliation_huttcartel":      "Hutt Cartel",
	"affiliation_mandalorian":     "Mandalorian",
	"profession_jedi":             "Jedi",
	"profession_sith":             "Sith",
	"profession_bountyhunter":     "Bounty Hunter",
	"profession_scoundrel":        "Scoundrel",
	"profession_smuggler":         "Smuggler",
	"profession_clonetrooper":     "Clone Trooper",
	"species_droid":               "Droid",
	"species_ewok":                "Ewok",
	"species_geonosian":           "Geonosian",
	"species_jawa":                "Jawa",
	"species_tusken":              "Tusken",
	"species_wookiee":             "Wookiee",
	"shipclass_capitalship":       "Capital Ship",
	"shipclass_cargoship":         "Cargo Ship",
}

// fallbackPrefixes are id prefixes whose remainder can stand in as a tag.
var fallbackPrefixes = []string{
	"role_",
	"affiliation_",
	"profession_",
	"species_",
	"alignment_",
	"shipclass_",
}

// ResolveTags returns copies of units with Tags filled from their category ids.
func ResolveTags(units []swgoh.UnitDetails, categories []swgoh.Category) []swgoh.UnitDetails {
	index := make(map[string]string, len(categories))
	for _, c := range categories {
		index[c.ID] = c.Desc
	}

	out := make([]swgoh.UnitDetails, len(units))
	for i, u := range units {
		u.Tags = unitTags(u.CategoryIDs, index)
		out[i] = u
	}
	return out
}

func unitTags(ids []string, index map[string]string) []string {
	seen := make(map[string]struct{}, len(ids))
	tags := make([]string, 0, len(ids))
	for _, id := range ids {
		if strings.HasPrefix(id, selfTagPrefix) {
			continue
		}
		tag, ok := categoryTag(id, index[id])
		if !ok {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// categoryTag prefers the official description and falls back to the manual table.
func categoryTag(id, desc string) (string, bool) {
	desc = strings.TrimSpace(desc)
	if desc != "" && !isPlaceholder(desc) && !isUntranslated(desc) {
		return desc, true
	}

	if tag, ok := manualTags[id]; ok {
		return tag, true
	}
	for _, prefix := range fallbackPrefixes {
		if rest, ok := strings.CutPrefix(id, prefix); ok && rest != "" {
			return titleCase(rest), true
		}
	}
	return "", false
}

func isPlaceholder(desc string) bool {
	return strings.EqualFold(desc, "placeholder")
}

// isUntranslated matches raw localization keys such as CATEGORY_REBEL_NAME.
func isUntranslated(desc string) bool {
	if strings.HasSuffix(desc, "_NAME") || strings.HasSuffix(desc, "_DESC") {
		return true
	}
	if !strings.Contains(desc, "_") {
		return false
	}
	for _, r := range desc {
		if r != '_' && !unicode.IsUpper(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' })
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
