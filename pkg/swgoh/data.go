package swgoh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"
)

// Metadata collections.
const (
	CollectionTitles     = "playerTitleList"
	CollectionTables     = "tableList"
	CollectionUnits      = "unitsList"
	CollectionCategories = "categoryList"

	RelicTableID = "galactic_power_per_relic_tier"
)

// notInGuildReason is the reason phrase the guild endpoint returns for a guildless player.
const notInGuildReason = "None"

func decode[T any](op string, body []byte) (T, error) {
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return out, &DeserializationError{Op: op, Err: err}
	}
	return out, nil
}

// Players fetches full player detail for the given ally codes.
func (c *Client) Players(ctx context.Context, codes []AllyCode) ([]PlayerInfo, error) {
	body, err := c.Post(ctx, "Player Info", PathPlayers, NewPlayerCommand(codes...))
	if err != nil {
		return nil, err
	}
	return decode[[]PlayerInfo]("Player Info", body)
}

// Player fetches a single player's detail.
func (c *Client) Player(ctx context.Context, code AllyCode) (*PlayerInfo, error) {
	players, err := c.Players(ctx, []AllyCode{code})
	if err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return nil, &APIError{Op: "Player Info", Reason: fmt.Sprintf("no player found for ally code %s", code)}
	}
	return &players[0], nil
}

// Guild fetches the guild of the player with the given ally code.
// ErrNotInGuild is returned when the player has no guild.
func (c *Client) Guild(ctx context.Context, code AllyCode) (*GuildInfo, error) {
	body, err := c.Post(ctx, "Guild Info", PathGuilds, NewPlayerCommand(code))
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Reason == notInGuildReason {
			return nil, ErrNotInGuild
		}
		return nil, err
	}

	guilds, err := decode[[]GuildInfo]("Guild Info", body)
	if err != nil {
		return nil, err
	}
	if len(guilds) == 0 {
		return nil, ErrNotInGuild
	}
	return &guilds[0], nil
}

// Titles fetches the player title catalog.
func (c *Client) Titles(ctx context.Context) ([]TitleInfo, error) {
	body, err := c.Post(ctx, "Title Info", PathData, NewGameDataCommand(CollectionTitles))
	if err != nil {
		return nil, err
	}
	return decode[[]TitleInfo]("Title Info", body)
}

// RelicTable fetches the per-relic-tier power bonus table, sorted ascending.
// Values that are not integers are reported as -1.
func (c *Client) RelicTable(ctx context.Context) ([]int, error) {
	cmd := NewGameDataCommand(CollectionTables)
	cmd.Match = map[string]any{"id": RelicTableID}

	body, err := c.Post(ctx, "Relic Info", PathData, cmd)
	if err != nil {
		return nil, err
	}
	return parseRelicTable(body)
}

func parseRelicTable(body []byte) ([]int, error) {
	if !gjson.ValidBytes(body) {
		return nil, &DeserializationError{Op: "Relic Info", Err: errors.New("invalid JSON")}
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, &DeserializationError{Op: "Relic Info", Err: fmt.Errorf("expected array, got %s", root.Type)}
	}

	rows := root.Get("0.rowList.#.value").Array()
	values := make([]int, 0, len(rows))
	for _, row := range rows {
		v, err := strconv.Atoi(row.String())
		if err != nil {
			v = -1
		}
		values = append(values, v)
	}
	sort.Ints(values)
	return values, nil
}

// UnitCatalog fetches obtainable max-rarity units with a minimal projection.
// Category ids are returned raw; tags are resolved separately.
func (c *Client) UnitCatalog(ctx context.Context) ([]UnitDetails, error) {
	cmd := NewGameDataCommand(CollectionUnits)
	cmd.Match = map[string]any{
		"rarity":         7,
		"obtainable":     true,
		"obtainableTime": 0,
	}
	cmd.Project = map[string]any{
		"baseId":         1,
		"nameKey":        1,
		"forceAlignment": 1,
		"combatType":     1,
		"categoryIdList": 1,
	}

	body, err := c.Post(ctx, "Unit Info", PathData, cmd)
	if err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "Unit catalog received", "bytes", len(body))
	return decode[[]UnitDetails]("Unit Info", body)
}

// Categories fetches the unit category table.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	cmd := NewGameDataCommand(CollectionCategories)
	cmd.Project = map[string]any{
		"id":           1,
		"descKey":      1,
		"visible":      1,
		"uiFilterList": 1,
	}

	body, err := c.Post(ctx, "Category Info", PathData, cmd)
	if err != nil {
		return nil, err
	}
	return decode[[]Category]("Category Info", body)
}

// ZetaRecommendations fetches the zeta rating list.
func (c *Client) ZetaRecommendations(ctx context.Context) ([]ZetaStats, error) {
	body, err := c.Post(ctx, "Zeta Info", PathZetas, ZetaRecommendationsCommand{})
	if err != nil {
		return nil, err
	}
	resp, err := decode[zetaResponse]("Zeta Info", body)
	if err != nil {
		return nil, err
	}
	return resp.Zetas, nil
}
